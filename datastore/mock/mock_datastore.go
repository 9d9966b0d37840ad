/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory DataStore for tests.
package mock

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/suparena/cardreg/errors"
	"github.com/suparena/cardreg/storagemodels"
)

// QueryFunc replaces the default Query behavior.
type QueryFunc func(ctx context.Context, params *storagemodels.QueryParams) ([]any, error)

// StreamFunc replaces the default Stream behavior.
type StreamFunc[T any] func(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]

// Update records one UpdateWithCondition call.
type Update struct {
	Key       string
	Updates   map[string]any
	Condition string
}

// DataStore is an in-memory implementation of datastore.DataStore[T].
// Query and Stream return every stored entity in key order unless a
// QueryFunc or StreamFunc is installed.
type DataStore[T any] struct {
	mu          sync.RWMutex
	data        map[string]T
	updates     []Update
	queryFunc   QueryFunc
	streamFunc  StreamFunc[T]
	getKeyFunc  func(entity T) string
	putError    error
	deleteError error
	updateError error
}

// New creates an empty mock DataStore.
func New[T any]() *DataStore[T] {
	return &DataStore[T]{
		data: make(map[string]T),
	}
}

// WithGetKeyFunc sets the function that derives a storage key from an entity.
func (m *DataStore[T]) WithGetKeyFunc(f func(T) string) *DataStore[T] {
	m.getKeyFunc = f
	return m
}

// WithQueryFunc installs a custom query function.
func (m *DataStore[T]) WithQueryFunc(f QueryFunc) *DataStore[T] {
	m.queryFunc = f
	return m
}

// WithStreamFunc installs a custom stream function.
func (m *DataStore[T]) WithStreamFunc(f StreamFunc[T]) *DataStore[T] {
	m.streamFunc = f
	return m
}

// WithPutError makes Put and Create return err.
func (m *DataStore[T]) WithPutError(err error) *DataStore[T] {
	m.putError = err
	return m
}

// WithDeleteError makes Delete return err.
func (m *DataStore[T]) WithDeleteError(err error) *DataStore[T] {
	m.deleteError = err
	return m
}

// WithUpdateError makes UpdateWithCondition return err.
func (m *DataStore[T]) WithUpdateError(err error) *DataStore[T] {
	m.updateError = err
	return m
}

func (m *DataStore[T]) GetOne(ctx context.Context, key string) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if entity, exists := m.data[key]; exists {
		return &entity, nil
	}
	return nil, errors.NewNotFoundError(typeName[T](), key)
}

func (m *DataStore[T]) Put(ctx context.Context, entity T) error {
	if m.putError != nil {
		return m.putError
	}

	key := m.extractKey(entity)
	if key == "" {
		return errors.NewValidationError("key", "unable to extract key from entity")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = entity
	return nil
}

func (m *DataStore[T]) Create(ctx context.Context, entity T) error {
	if m.putError != nil {
		return m.putError
	}

	key := m.extractKey(entity)
	if key == "" {
		return errors.NewValidationError("key", "unable to extract key from entity")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.data[key]; exists {
		return errors.NewAlreadyExistsError(typeName[T](), key)
	}
	m.data[key] = entity
	return nil
}

// UpdateWithCondition applies updates to the stored entity by round-tripping
// it through its attribute value form. Only string keys are supported and
// the condition is recorded but not evaluated.
func (m *DataStore[T]) UpdateWithCondition(ctx context.Context, keyInput any, updates map[string]any, condition string) error {
	if m.updateError != nil {
		return m.updateError
	}

	key, ok := keyInput.(string)
	if !ok {
		return errors.NewValidationError("keyInput", "must be a string for mock")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entity, exists := m.data[key]
	if !exists {
		return errors.NewNotFoundError(typeName[T](), key)
	}

	av, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	for field, value := range updates {
		v, err := attributevalue.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal update %s: %w", field, err)
		}
		av[field] = v
	}

	var updated T
	if err := attributevalue.UnmarshalMap(av, &updated); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	m.data[key] = updated
	m.updates = append(m.updates, Update{Key: key, Updates: maps.Clone(updates), Condition: condition})
	return nil
}

func (m *DataStore[T]) Query(ctx context.Context, params *storagemodels.QueryParams) ([]any, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, params)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]any, 0, len(m.data))
	for _, k := range slices.Sorted(maps.Keys(m.data)) {
		results = append(results, m.data[k])
	}
	return results, nil
}

func (m *DataStore[T]) Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	if m.streamFunc != nil {
		return m.streamFunc(ctx, params, opts...)
	}

	options := storagemodels.NewStreamOptions(opts...)
	resultChan := make(chan storagemodels.StreamResult[T], options.BufferSize)

	m.mu.RLock()
	items := make([]T, 0, len(m.data))
	for _, k := range slices.Sorted(maps.Keys(m.data)) {
		items = append(items, m.data[k])
	}
	m.mu.RUnlock()

	go func() {
		defer close(resultChan)

		for i, v := range items {
			select {
			case <-ctx.Done():
				return
			case resultChan <- storagemodels.StreamResult[T]{
				Item: v,
				Meta: storagemodels.StreamMeta{
					Index:      int64(i),
					PageNumber: 1,
					Timestamp:  time.Now(),
				},
			}:
			}
		}
	}()

	return resultChan
}

func (m *DataStore[T]) Delete(ctx context.Context, key string) error {
	if m.deleteError != nil {
		return m.deleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[key]; !exists {
		return errors.NewNotFoundError(typeName[T](), key)
	}
	delete(m.data, key)
	return nil
}

// Helper methods for testing

// SetData replaces the stored entities.
func (m *DataStore[T]) SetData(data map[string]T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]T, len(data))
	maps.Copy(m.data, data)
}

// GetData returns a copy of the stored entities.
func (m *DataStore[T]) GetData() map[string]T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.data)
}

// Updates returns the UpdateWithCondition calls that succeeded, oldest first.
func (m *DataStore[T]) Updates() []Update {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.updates)
}

func (m *DataStore[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *DataStore[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]T)
	m.updates = nil
}

func (m *DataStore[T]) extractKey(entity T) string {
	if m.getKeyFunc != nil {
		return m.getKeyFunc(entity)
	}
	return fmt.Sprintf("key_%v", entity)
}

func typeName[T any]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}
