/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cardreg

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/suparena/cardreg/config"
	"github.com/suparena/cardreg/datastore"
	"github.com/suparena/cardreg/datastore/ddb"
	"github.com/suparena/cardreg/searchindex"
	"github.com/suparena/cardreg/tracking"
)

// Names of the stores OpenStores registers.
const (
	RegistrationsStore = "registrations"
	DocumentsStore     = "documents"
)

// TypedStores holds the named datastores for one entity type T.
type TypedStores[T any] struct {
	mu     sync.RWMutex
	stores map[string]datastore.DataStore[T]
}

func NewTypedStores[T any]() *TypedStores[T] {
	return &TypedStores[T]{
		stores: make(map[string]datastore.DataStore[T]),
	}
}

// Register adds ds under name. Names are unique per type.
func (ts *TypedStores[T]) Register(name string, ds datastore.DataStore[T]) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, exists := ts.stores[name]; exists {
		return fmt.Errorf("datastore with key %q already registered", name)
	}
	ts.stores[name] = ds
	return nil
}

func (ts *TypedStores[T]) Get(name string) (datastore.DataStore[T], error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	ds, exists := ts.stores[name]
	if !exists {
		return nil, fmt.Errorf("datastore with key %q not found", name)
	}
	return ds, nil
}

func (ts *TypedStores[T]) Remove(name string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, exists := ts.stores[name]; !exists {
		return fmt.Errorf("datastore with key %q not found", name)
	}
	delete(ts.stores, name)
	return nil
}

// List returns the registered names, sorted.
func (ts *TypedStores[T]) List() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	names := make([]string, 0, len(ts.stores))
	for k := range ts.stores {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Stores holds a TypedStores per entity type.
type Stores struct {
	mu     sync.Mutex
	byType map[reflect.Type]any
}

func NewStores() *Stores {
	return &Stores{
		byType: make(map[reflect.Type]any),
	}
}

// StoresFor returns the TypedStores for T, creating it if necessary.
func StoresFor[T any](s *Stores) *TypedStores[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	typ := reflect.TypeFor[T]()
	if ts, exists := s.byType[typ]; exists {
		return ts.(*TypedStores[T])
	}
	ts := NewTypedStores[T]()
	s.byType[typ] = ts
	return ts
}

func RegisterStore[T any](s *Stores, name string, ds datastore.DataStore[T]) error {
	return StoresFor[T](s).Register(name, ds)
}

func GetStore[T any](s *Stores, name string) (datastore.DataStore[T], error) {
	return StoresFor[T](s).Get(name)
}

func RemoveStore[T any](s *Stores, name string) error {
	return StoresFor[T](s).Remove(name)
}

func ListStores[T any](s *Stores) []string {
	return StoresFor[T](s).List()
}

// OpenStores connects to DynamoDB and registers the registration and
// search document stores described by cfg.
func OpenStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := ddb.NewDynamoDBClient(ctx, cfg.AWS.AccessKey, cfg.AWS.SecretKey, cfg.AWS.Region)
	if err != nil {
		return nil, err
	}

	s := NewStores()
	regs := ddb.NewWithClient[tracking.Registration](client, cfg.AWS.Table, ddb.WithLogger(logger))
	if err := RegisterStore[tracking.Registration](s, RegistrationsStore, regs); err != nil {
		return nil, err
	}
	docTable := cfg.Search.Table
	if docTable == "" {
		docTable = cfg.AWS.Table
	}
	docs := ddb.NewWithClient[searchindex.Document](client, docTable, ddb.WithLogger(logger))
	if err := RegisterStore[searchindex.Document](s, DocumentsStore, docs); err != nil {
		return nil, err
	}

	logger.Info("stores opened",
		"region", cfg.AWS.Region,
		"registrations_table", cfg.AWS.Table,
		"documents_table", docTable)
	return s, nil
}

// NewRegistrarFromStores builds the tracking store, search indexer and
// Registrar over the stores registered by OpenStores.
func NewRegistrarFromStores(s *Stores, cfg *config.Config, api PatronAPI, opts ...RegistrarOption) (*Registrar, error) {
	regs, err := GetStore[tracking.Registration](s, RegistrationsStore)
	if err != nil {
		return nil, err
	}
	docs, err := GetStore[searchindex.Document](s, DocumentsStore)
	if err != nil {
		return nil, err
	}

	tracker := tracking.NewStore(regs, tracking.WithLookupCache(cfg.Tracking.CacheSize, cfg.Tracking.CacheTTL))

	indexOpts := []searchindex.Option{searchindex.WithIndexName(cfg.Search.Index)}
	if cfg.Search.MappingFile != "" {
		m, err := searchindex.LoadMapping(cfg.Search.MappingFile)
		if err != nil {
			return nil, err
		}
		indexOpts = append(indexOpts, searchindex.WithMapping(m))
	}
	indexer, err := searchindex.NewIndexer(docs, indexOpts...)
	if err != nil {
		return nil, err
	}

	opts = append([]RegistrarOption{
		WithPatronType(cfg.Registration.DefaultPatronType),
		WithDefaultLocation(cfg.Registration.Location),
	}, opts...)
	return NewRegistrar(api, tracker, indexer, opts...)
}
