/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package searchindex

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeywordLowerAnalyzer is the custom analyzer every index definition
// declares: the whole value as one token, lower-cased.
const KeywordLowerAnalyzer = "keylower"

//go:embed mapping.yaml
var defaultMapping []byte

// Property is one mapped field. Object fields carry Properties instead of,
// or in addition to, a Type.
type Property struct {
	Type       string              `yaml:"type,omitempty" json:"type,omitempty"`
	Analyzer   string              `yaml:"analyzer,omitempty" json:"analyzer,omitempty"`
	Properties map[string]Property `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// Mapping describes the fields of the documents stored in one index.
type Mapping struct {
	Index      string              `yaml:"index"`
	Properties map[string]Property `yaml:"properties"`
}

// DefaultMapping returns the built-in patron mapping.
func DefaultMapping() (*Mapping, error) {
	return ParseMapping(defaultMapping)
}

// LoadMapping reads a mapping from a YAML file.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}
	return ParseMapping(data)
}

// ParseMapping parses and validates a YAML mapping.
func ParseMapping(data []byte) (*Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}
	if m.Index == "" {
		return nil, fmt.Errorf("mapping: index name is required")
	}
	if len(m.Properties) == 0 {
		return nil, fmt.Errorf("mapping %s: no properties", m.Index)
	}
	if err := validate(m.Properties, nil); err != nil {
		return nil, fmt.Errorf("mapping %s: %w", m.Index, err)
	}
	return &m, nil
}

func validate(props map[string]Property, parent []string) error {
	for name, p := range props {
		path := append(slices.Clone(parent), name)
		if p.Type == "" && len(p.Properties) == 0 {
			return fmt.Errorf("field %s has neither type nor properties", strings.Join(path, "."))
		}
		if p.Analyzer != "" && p.Type != "text" {
			return fmt.Errorf("field %s: analyzer requires type text", strings.Join(path, "."))
		}
		if err := validate(p.Properties, path); err != nil {
			return err
		}
	}
	return nil
}

// IndexDefinition renders the create-index request for the mapping. An
// empty index uses the mapping's own index name.
func (m *Mapping) IndexDefinition(index string) map[string]any {
	if index == "" {
		index = m.Index
	}
	return map[string]any{
		"index": index,
		"body": map[string]any{
			"mappings": map[string]any{
				index: map[string]any{
					"properties": m.Properties,
				},
			},
			"settings": map[string]any{
				"index": map[string]any{
					"analysis": map[string]any{
						"analyzer": map[string]any{
							KeywordLowerAnalyzer: map[string]any{
								"tokenizer":    "keyword",
								"type":         "custom",
								"filter":       "lowercase",
								"ignore_above": 256,
							},
						},
					},
				},
			},
		},
	}
}

// Fields lists every mapped field in dot notation with its type. Object
// fields without a type map to "object".
func (m *Mapping) Fields() map[string]string {
	out := make(map[string]string)
	collectFields(m.Properties, "", out)
	return out
}

func collectFields(props map[string]Property, prefix string, out map[string]string) {
	for name, p := range props {
		key := prefix + name
		typ := p.Type
		if typ == "" {
			typ = "object"
		}
		out[key] = typ
		collectFields(p.Properties, key+".", out)
	}
}

// Unmapped returns the dotted paths in doc that the mapping does not
// declare, sorted. List elements are checked against the same path as the
// list itself.
func (m *Mapping) Unmapped(doc map[string]any) []string {
	fields := m.Fields()
	missing := make(map[string]struct{})
	collectUnmapped(doc, "", fields, missing)
	return slices.Sorted(maps.Keys(missing))
}

func collectUnmapped(v any, path string, fields map[string]string, missing map[string]struct{}) {
	switch tv := v.(type) {
	case map[string]any:
		for k, child := range tv {
			key := k
			if path != "" {
				key = path + "." + k
			}
			if _, ok := fields[key]; !ok {
				missing[key] = struct{}{}
				continue
			}
			collectUnmapped(child, key, fields, missing)
		}
	case []any:
		for _, child := range tv {
			collectUnmapped(child, path, fields, missing)
		}
	}
}
