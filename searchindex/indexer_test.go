/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package searchindex_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/cardreg/datastore/mock"
	"github.com/suparena/cardreg/errors"
	"github.com/suparena/cardreg/registry"
	"github.com/suparena/cardreg/searchindex"
	"github.com/suparena/cardreg/sierra"
)

func newDocStore() *mock.DataStore[searchindex.Document] {
	return mock.New[searchindex.Document]().
		WithGetKeyFunc(func(d searchindex.Document) string { return d.ID })
}

func testPatron(t *testing.T) *sierra.Patron {
	t.Helper()
	p, err := sierra.LoadPatron(map[string]any{
		"id":     "1234567",
		"names":  []any{"DOE, JANE"},
		"emails": []any{"jane@example.org"},
		"pin":    "8888",
		"addresses": []any{
			map[string]any{"lines": []any{"123 MAIN ST", "DURHAM NC"}, "type": "a"},
		},
	})
	require.NoError(t, err)
	return p
}

func TestDocumentEntity(t *testing.T) {
	name, ok := registry.EntityType[searchindex.Document]()
	require.True(t, ok)
	assert.Equal(t, searchindex.DocumentEntityType, name)
}

func TestIndex(t *testing.T) {
	ctx := context.Background()
	docs := newDocStore()
	at := time.Date(2025, time.June, 3, 9, 0, 0, 0, time.UTC)

	ix, err := searchindex.NewIndexer(docs, searchindex.WithClock(func() time.Time { return at }))
	require.NoError(t, err)
	assert.Equal(t, "patron", ix.IndexName())

	doc, err := ix.Index(ctx, "", testPatron(t))
	require.NoError(t, err)

	_, err = uuid.Parse(doc.ID)
	assert.NoError(t, err)
	assert.Equal(t, "1234567", doc.PatronID)
	assert.Equal(t, "patron", doc.Index)
	assert.Equal(t, "2025-06-03T09:00:00.000Z", doc.IndexedAt)

	assert.Equal(t, []any{sierra.HashEmail("jane@example.org")}, doc.Body["emails"])
	assert.NotContains(t, doc.Body, "names")
	assert.NotContains(t, doc.Body, "pin")
	assert.Equal(t, []any{map[string]any{"city": "DURHAM", "state": "NC", "addr_type": "a"}}, doc.Body["addresses"])

	stored, err := docs.GetOne(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.PatronID, stored.PatronID)
}

func TestIndexOptions(t *testing.T) {
	m, err := searchindex.ParseMapping([]byte("index: patron_test\nproperties:\n  id:\n    type: keyword\n"))
	require.NoError(t, err)

	ix, err := searchindex.NewIndexer(newDocStore(), searchindex.WithMapping(m))
	require.NoError(t, err)
	assert.Equal(t, "patron_test", ix.IndexName())
	assert.Same(t, m, ix.Mapping())

	ix, err = searchindex.NewIndexer(newDocStore(), searchindex.WithMapping(m), searchindex.WithIndexName("patron_v3"))
	require.NoError(t, err)
	assert.Equal(t, "patron_v3", ix.IndexName())
}

func TestIndexValidation(t *testing.T) {
	ctx := context.Background()
	ix, err := searchindex.NewIndexer(newDocStore())
	require.NoError(t, err)

	_, err = ix.Index(ctx, "1", nil)
	assert.True(t, errors.IsValidationError(err))

	_, err = ix.Index(ctx, " ", sierra.NewPatron())
	assert.True(t, errors.IsValidationError(err))
}

func TestIndexStoreError(t *testing.T) {
	docs := newDocStore().WithPutError(errors.NewConditionFailedError("put", "throttled"))
	ix, err := searchindex.NewIndexer(docs)
	require.NoError(t, err)

	_, err = ix.Index(context.Background(), "1", testPatron(t))
	assert.True(t, errors.IsConditionFailed(err))
}

func TestLatest(t *testing.T) {
	ctx := context.Background()
	docs := newDocStore()
	clock := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	ix, err := searchindex.NewIndexer(docs, searchindex.WithClock(func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}))
	require.NoError(t, err)

	_, err = ix.Index(ctx, "1", testPatron(t))
	require.NoError(t, err)
	second, err := ix.Index(ctx, "1", testPatron(t))
	require.NoError(t, err)
	_, err = ix.Index(ctx, "2", testPatron(t))
	require.NoError(t, err)

	latest, err := ix.Latest(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)

	none, err := ix.Latest(ctx, "3")
	require.NoError(t, err)
	assert.Nil(t, none)
}
