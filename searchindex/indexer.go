/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package searchindex

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/suparena/cardreg/datastore"
	"github.com/suparena/cardreg/datastore/ddb"
	cerrors "github.com/suparena/cardreg/errors"
	"github.com/suparena/cardreg/registry"
	"github.com/suparena/cardreg/sierra"
)

// DocumentEntityType names search documents in the single-table store.
const DocumentEntityType = "SearchDocument"

// Document is the search projection of a patron at the time it was
// indexed.
type Document struct {
	ID        string         `dynamodbav:"ID" json:"id"`
	PatronID  string         `dynamodbav:"PatronID" json:"patron_id"`
	Index     string         `dynamodbav:"Index" json:"index"`
	Body      map[string]any `dynamodbav:"Body" json:"body"`
	IndexedAt string         `dynamodbav:"IndexedAt" json:"indexed_at"`
}

func init() {
	registry.RegisterEntity[Document](DocumentEntityType, map[string]string{
		"PK":  "DOC#{ID}",
		"SK":  "DOC#{ID}",
		"PK1": "PATRON#{PatronID}",
		"SK1": "{IndexedAt}",
		"PK2": "INDEX#{Index}",
		"SK2": "{IndexedAt}",
	})
}

// Indexer stores search documents for patrons.
type Indexer struct {
	docs    datastore.DataStore[Document]
	mapping *Mapping
	index   string
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithMapping replaces the built-in patron mapping.
func WithMapping(m *Mapping) Option {
	return func(ix *Indexer) {
		ix.mapping = m
	}
}

// WithIndexName overrides the index name taken from the mapping.
func WithIndexName(name string) Option {
	return func(ix *Indexer) {
		ix.index = name
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) {
		ix.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(ix *Indexer) {
		ix.now = now
	}
}

// NewIndexer returns an Indexer writing to docs.
func NewIndexer(docs datastore.DataStore[Document], opts ...Option) (*Indexer, error) {
	ix := &Indexer{
		docs:   docs,
		logger: slog.Default(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(ix)
	}
	if ix.mapping == nil {
		m, err := DefaultMapping()
		if err != nil {
			return nil, err
		}
		ix.mapping = m
	}
	if ix.index == "" {
		ix.index = ix.mapping.Index
	}
	return ix, nil
}

// Mapping returns the mapping documents are checked against.
func (ix *Indexer) Mapping() *Mapping {
	return ix.mapping
}

// IndexName returns the index documents are written to.
func (ix *Indexer) IndexName() string {
	return ix.index
}

// Index stores the search projection of patron. An empty patronID falls
// back to the patron's own id. Fields the mapping does not declare are
// stored anyway and logged.
func (ix *Indexer) Index(ctx context.Context, patronID string, patron *sierra.Patron) (*Document, error) {
	if patron == nil {
		return nil, cerrors.NewValidationError("patron", "required")
	}
	patronID = strings.TrimSpace(patronID)
	if patronID == "" {
		patronID = patron.ID()
	}
	if patronID == "" {
		return nil, cerrors.NewValidationError("patronID", "required")
	}

	body := patron.SearchDocument()
	if unmapped := ix.mapping.Unmapped(body); len(unmapped) > 0 {
		ix.logger.Debug("search document has unmapped fields",
			"index", ix.index,
			"patron_id", patronID,
			"fields", unmapped)
	}

	doc := Document{
		ID:        ix.newID(),
		PatronID:  patronID,
		Index:     ix.index,
		Body:      body,
		IndexedAt: ddb.TimeKey(ix.now()),
	}
	if err := ix.docs.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("index patron %s: %w", patronID, err)
	}

	ix.logger.Info("patron indexed", "index", ix.index, "patron_id", patronID, "document_id", doc.ID)
	return &doc, nil
}

// Latest returns the most recently indexed document for patronID, or nil
// if the patron was never indexed.
func (ix *Indexer) Latest(ctx context.Context, patronID string) (*Document, error) {
	params, err := ddb.NewGSIQuery[Document]().
		OnIndex("GSI1").
		WithPartitionKey(patronID).
		Ascending(false).
		Build()
	if err != nil {
		return nil, err
	}

	results, err := ix.docs.Query(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("latest document for %s: %w", patronID, err)
	}

	var latest *Document
	for _, r := range results {
		var doc *Document
		switch v := r.(type) {
		case Document:
			doc = &v
		case *Document:
			doc = v
		}
		if doc == nil || doc.PatronID != patronID {
			continue
		}
		if latest == nil || doc.IndexedAt > latest.IndexedAt {
			latest = doc
		}
	}
	return latest, nil
}
