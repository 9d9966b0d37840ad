/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/cardreg/storagemodels"
)

// DataStore persists entities of type T. Keys are expanded through the
// index map registered for T.
type DataStore[T any] interface {
	// GetOne returns the entity stored under key, or a NotFoundError.
	GetOne(ctx context.Context, key string) (*T, error)

	// Put stores entity, replacing any existing item with the same key.
	Put(ctx context.Context, entity T) error

	// Create stores entity only if no item has the same key; otherwise it
	// returns an AlreadyExistsError.
	Create(ctx context.Context, entity T) error

	UpdateWithCondition(ctx context.Context, keyInput any, updates map[string]any, condition string) error

	// Query returns one page of items, each decoded through the type
	// registry by its EntityType.
	Query(ctx context.Context, params *storagemodels.QueryParams) ([]any, error)

	// Stream pages through every item matching params.
	Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]

	Delete(ctx context.Context, key string) error
}
