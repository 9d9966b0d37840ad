/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package record_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/cardreg/record"
)

func TestCanonicalPrunesEmptyValues(t *testing.T) {
	r := newItem(t, map[string]any{
		"names":  []any{},
		"count":  0,
		"origin": map[string]any{},
		"points": []any{map[string]any{}, map[string]any{"kind": "k"}},
		"tags":   map[string]any{"1": map[string]any{}},
		"extra":  nil,
		"empty":  []any{},
	})

	doc := record.Canonical(r)
	assert.Equal(t, map[string]any{
		"count":  0,
		"points": []any{map[string]any{"kind": "k"}},
	}, doc)
}

func TestCanonicalUsesCanonicalProjector(t *testing.T) {
	r := newItem(t, map[string]any{
		"tags": map[string]any{"3": map[string]any{"name": "n", "value": "v"}},
	})

	assert.Equal(t, map[string]any{
		"tags": map[string]any{"3": map[string]any{"name": "n", "value": "v"}},
	}, record.Canonical(r))
}

func TestTopLevelProjectionsRenderSelf(t *testing.T) {
	t.Run("bare value keyed by first field", func(t *testing.T) {
		l, err := labelSchema.New("x")
		require.NoError(t, err)

		assert.Equal(t, map[string]any{"text": "x"}, record.Canonical(l))
		assert.Equal(t, map[string]any{"text": "x"}, record.Search(l))

		back, err := labelSchema.New(record.Canonical(l))
		require.NoError(t, err)
		assert.Equal(t, "x", back.Base().GetString("text"))
	})

	t.Run("suppressed", func(t *testing.T) {
		l, err := labelSchema.New(nil)
		require.NoError(t, err)
		assert.Empty(t, record.Canonical(l))
		assert.Empty(t, record.Search(l))

		secret, err := tagSchema.New(map[string]any{"name": "secret", "value": "v"})
		require.NoError(t, err)
		assert.Empty(t, record.Search(secret))
		assert.Equal(t, map[string]any{"name": "secret", "value": "v"}, record.Canonical(secret))
	})

	t.Run("document", func(t *testing.T) {
		tg, err := tagSchema.New(map[string]any{"name": "color", "value": "red"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"color": "red"}, record.Search(tg))
		assert.Equal(t, map[string]any{"name": "color", "value": "red"}, record.Canonical(tg))
	})
}

func TestCanonicalRoundTrip(t *testing.T) {
	doc := map[string]any{
		"names":  []any{"a", "b"},
		"count":  4,
		"ratio":  0.5,
		"active": true,
		"origin": map[string]any{"coords": []any{1, 2}, "kind": "home"},
		"points": []any{map[string]any{"kind": "p"}},
		"notes":  []any{"free", 2},
		"tags":   map[string]any{"1": map[string]any{"name": "n", "value": "v"}},
		"id":     "i-9",
	}

	first := record.Canonical(newItem(t, doc))
	assert.Equal(t, doc, first)

	second := record.Canonical(newItem(t, first))
	assert.Equal(t, first, second)
}

func TestSearchProjection(t *testing.T) {
	r := newItem(t, map[string]any{
		"names":  []any{"a", "b", "c"},
		"count":  2,
		"secret": "hidden",
		"origin": map[string]any{"kind": "home"},
		"tags": map[string]any{
			"1": map[string]any{"name": "colour", "value": "red"},
			"2": map[string]any{"name": "secret", "value": "x"},
			"3": map[string]any{"name": "size", "value": "L"},
		},
	})

	doc := record.Search(r)
	assert.Equal(t, map[string]any{
		"name_count": 3,
		"count":      2,
		"origin":     map[string]any{"kind": "home"},
		"colour":     "red",
		"size":       "L",
	}, doc)
	assert.NotContains(t, doc, "tags", "document-valued maps are flattened into the parent")
	assert.NotContains(t, doc, "secret")
}

func TestSearchKeepsScalarMapValuesUnderField(t *testing.T) {
	holder := record.NewSchema("Holder", []record.Field{
		record.F("labels", record.Map(record.String, labelSchema)),
	})
	typed, err := holder.New(map[string]any{
		"labels": map[string]any{"a": "x", "b": ""},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"labels": map[string]any{"a": "x"},
	}, record.Search(typed))
}

func TestSearchFallsBackToCanonicalForExtras(t *testing.T) {
	r := newItem(t, map[string]any{"id": "i-1", "meta": map[string]any{"k": "v", "e": []any{}}})

	doc := record.Search(r)
	assert.Equal(t, "i-1", doc["id"])
	assert.Equal(t, map[string]any{"k": "v"}, doc["meta"])
}

func TestMarshalJSON(t *testing.T) {
	r := newItem(t, map[string]any{
		"count": 1,
		"tags":  map[string]any{"7": map[string]any{"name": "n", "value": "v"}},
	})

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1,"tags":{"7":{"name":"n","value":"v"}}}`, string(b))

	typed, err := labelSchema.New("bare")
	require.NoError(t, err)
	b, err = json.Marshal(typed)
	require.NoError(t, err)
	assert.JSONEq(t, `"bare"`, string(b))
}
