/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package cache wraps a DataStore with a read-through LRU cache for GetOne.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/suparena/cardreg/datastore"
	"github.com/suparena/cardreg/storagemodels"
)

// DataStore caches GetOne results of the wrapped store. Writes through the
// decorator invalidate affected entries; Query and Stream are not cached.
type DataStore[T any] struct {
	next    datastore.DataStore[T]
	entries *expirable.LRU[string, T]
	keyFunc func(T) string
}

// Option configures a cache DataStore.
type Option[T any] func(*DataStore[T])

// WithKeyFunc tells the cache which GetOne key an entity is stored under,
// so Put and Create evict only that key. Without it they purge the cache.
func WithKeyFunc[T any](f func(T) string) Option[T] {
	return func(d *DataStore[T]) {
		d.keyFunc = f
	}
}

// New wraps next with a cache of up to size entries that expire after ttl.
// A ttl of zero keeps entries until they are evicted.
func New[T any](next datastore.DataStore[T], size int, ttl time.Duration, opts ...Option[T]) (*DataStore[T], error) {
	if next == nil {
		return nil, fmt.Errorf("cache: nil datastore")
	}
	if size <= 0 {
		return nil, fmt.Errorf("cache: size must be positive, got %d", size)
	}

	d := &DataStore[T]{
		next:    next,
		entries: expirable.NewLRU[string, T](size, nil, ttl),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// GetOne serves key from the cache, loading it from the wrapped store on a
// miss. Errors, including not-found, are never cached.
func (d *DataStore[T]) GetOne(ctx context.Context, key string) (*T, error) {
	if entity, ok := d.entries.Get(key); ok {
		return &entity, nil
	}

	entity, err := d.next.GetOne(ctx, key)
	if err != nil {
		return nil, err
	}
	d.entries.Add(key, *entity)
	return entity, nil
}

func (d *DataStore[T]) Put(ctx context.Context, entity T) error {
	err := d.next.Put(ctx, entity)
	d.invalidate(entity)
	return err
}

func (d *DataStore[T]) Create(ctx context.Context, entity T) error {
	if err := d.next.Create(ctx, entity); err != nil {
		return err
	}
	d.invalidate(entity)
	return nil
}

func (d *DataStore[T]) UpdateWithCondition(ctx context.Context, keyInput any, updates map[string]any, condition string) error {
	err := d.next.UpdateWithCondition(ctx, keyInput, updates, condition)
	if key, ok := keyInput.(string); ok {
		d.entries.Remove(key)
	} else {
		d.entries.Purge()
	}
	return err
}

func (d *DataStore[T]) Query(ctx context.Context, params *storagemodels.QueryParams) ([]any, error) {
	return d.next.Query(ctx, params)
}

func (d *DataStore[T]) Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	return d.next.Stream(ctx, params, opts...)
}

func (d *DataStore[T]) Delete(ctx context.Context, key string) error {
	err := d.next.Delete(ctx, key)
	d.entries.Remove(key)
	return err
}

// Len reports the number of cached entries.
func (d *DataStore[T]) Len() int {
	return d.entries.Len()
}

func (d *DataStore[T]) invalidate(entity T) {
	if d.keyFunc == nil {
		d.entries.Purge()
		return
	}
	d.entries.Remove(d.keyFunc(entity))
}
