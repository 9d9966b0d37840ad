/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package searchindex

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMapping(t *testing.T) {
	m, err := DefaultMapping()
	require.NoError(t, err)

	assert.Equal(t, "patron", m.Index)
	fields := m.Fields()
	assert.Equal(t, "keyword", fields["emails"])
	assert.Equal(t, "keyword", fields["age_range"])
	assert.Equal(t, "nested", fields["addresses"])
	assert.Equal(t, "text", fields["addresses.city"])
	assert.Equal(t, "object", fields["patronCodes"])
	assert.Equal(t, "keyword", fields["patronCodes.pcode3"])
	assert.Equal(t, "text", fields["varFields.subfields.content"])
	assert.Equal(t, "keyword", fields["HOME LIBR"])

	for _, personal := range []string{"names", "pin", "phones", "birthDate", "uniqueIds", "barcodes"} {
		assert.NotContains(t, fields, personal)
	}
}

func TestIndexDefinition(t *testing.T) {
	m, err := DefaultMapping()
	require.NoError(t, err)

	def := m.IndexDefinition("")
	assert.Equal(t, "patron", def["index"])

	b, err := json.Marshal(m.IndexDefinition("patron_v2"))
	require.NoError(t, err)

	var got struct {
		Index string `json:"index"`
		Body  struct {
			Mappings map[string]struct {
				Properties map[string]Property `json:"properties"`
			} `json:"mappings"`
			Settings struct {
				Index struct {
					Analysis struct {
						Analyzer map[string]map[string]any `json:"analyzer"`
					} `json:"analysis"`
				} `json:"index"`
			} `json:"settings"`
		} `json:"body"`
	}
	require.NoError(t, json.Unmarshal(b, &got))

	assert.Equal(t, "patron_v2", got.Index)
	require.Contains(t, got.Body.Mappings, "patron_v2")
	props := got.Body.Mappings["patron_v2"].Properties
	assert.Equal(t, KeywordLowerAnalyzer, props["addresses"].Properties["city"].Analyzer)

	analyzer := got.Body.Settings.Index.Analysis.Analyzer[KeywordLowerAnalyzer]
	assert.Equal(t, "keyword", analyzer["tokenizer"])
	assert.Equal(t, "lowercase", analyzer["filter"])
	assert.Equal(t, "custom", analyzer["type"])
}

func TestParseMappingErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "index: [unclosed"},
		{"no index", "properties:\n  id:\n    type: keyword\n"},
		{"no properties", "index: patron\n"},
		{"untyped leaf", "index: patron\nproperties:\n  id: {}\n"},
		{"nested untyped leaf", "index: patron\nproperties:\n  a:\n    properties:\n      b: {}\n"},
		{"analyzer on keyword", "index: patron\nproperties:\n  id:\n    type: keyword\n    analyzer: keylower\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMapping([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "branch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("index: branch\nproperties:\n  code:\n    type: keyword\n"), 0o644))

	m, err := LoadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, "branch", m.Index)
	assert.Equal(t, map[string]string{"code": "keyword"}, m.Fields())

	_, err = LoadMapping(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestUnmapped(t *testing.T) {
	m, err := DefaultMapping()
	require.NoError(t, err)

	doc := map[string]any{
		"emails":  []any{"abc"},
		"PCODE3":  "1",
		"message": map[string]any{"code": "-"},
		"addresses": []any{
			map[string]any{"city": "Durham", "state": "NC", "zip": "27701"},
		},
		"patronCodes": map[string]any{"pcode1": "-", "pcode9": "x"},
	}
	assert.Equal(t, []string{"addresses.zip", "message", "patronCodes.pcode9"}, m.Unmapped(doc))
	assert.Empty(t, m.Unmapped(map[string]any{"id": "1"}))
}
