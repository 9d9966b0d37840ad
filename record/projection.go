/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package record

import "reflect"

// CanonicalProjector is implemented by types that render themselves in the
// write projection instead of being walked field by field.
type CanonicalProjector interface {
	CanonicalValue() any
}

// SearchProjector is implemented by types that render themselves in the
// search projection. Returning false suppresses the value.
type SearchProjector interface {
	SearchValue() (any, bool)
}

// Canonical renders the write projection of t: every field that carries
// information, with nested records projected recursively and empty lists,
// maps and records left out. Map keys are rendered as strings. A record
// implementing CanonicalProjector renders itself; see document.
func Canonical(t Typed) map[string]any {
	r := t.Base()
	if r == nil {
		return map[string]any{}
	}
	if cp, ok := r.typed.(CanonicalProjector); ok {
		out := cp.CanonicalValue()
		return document(r, out, present(out))
	}
	return canonicalFields(r)
}

func canonicalFields(r *Record) map[string]any {
	doc := make(map[string]any)
	for _, a := range r.Attributes(true) {
		if v, ok := CanonicalValue(a.Value); ok {
			doc[a.Name] = v
		}
	}
	return doc
}

// CanonicalValue renders one field value of the write projection and
// reports whether it should be emitted.
func CanonicalValue(v any) (any, bool) {
	switch tv := v.(type) {
	case nil:
		return nil, false
	case CanonicalProjector:
		out := tv.CanonicalValue()
		return out, present(out)
	case Typed:
		doc := canonicalFields(tv.Base())
		return doc, len(doc) > 0
	case []any:
		out := make([]any, 0, len(tv))
		for _, item := range tv {
			if pv, ok := CanonicalValue(item); ok {
				out = append(out, pv)
			}
		}
		return out, len(out) > 0
	case map[any]any:
		out := make(map[string]any, len(tv))
		for _, k := range sortedKeys(tv) {
			if pv, ok := CanonicalValue(tv[k]); ok {
				out[keyString(k)] = pv
			}
		}
		return out, len(out) > 0
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			if pv, ok := CanonicalValue(item); ok {
				out[k] = pv
			}
		}
		return out, len(out) > 0
	}
	return v, present(v)
}

// Search renders the search projection of t. It follows the write
// projection except that fields ignored by the schema are skipped, fields
// with a SearchAs transform are rendered by it, values implementing
// SearchProjector render themselves, and a map field whose values render
// as documents is flattened: the keys of those documents are merged into
// the parent and the map's own keys are dropped. A record implementing
// SearchProjector renders itself; see document.
func Search(t Typed) map[string]any {
	r := t.Base()
	if r == nil {
		return map[string]any{}
	}
	if sp, ok := r.typed.(SearchProjector); ok {
		out, ok := sp.SearchValue()
		return document(r, out, ok && present(out))
	}
	return searchFields(r)
}

func searchFields(r *Record) map[string]any {
	doc := make(map[string]any)
	if r == nil {
		return doc
	}
	s := r.schema
	for _, a := range r.Attributes(true) {
		if s.IgnoredInSearch(a.Name) {
			continue
		}
		if fn, ok := s.search[a.Name]; ok {
			if key, out, ok := fn(a.Value); ok {
				doc[key] = out
			}
			continue
		}
		if m, ok := a.Value.(map[any]any); ok {
			flatten(doc, a.Name, m)
			continue
		}
		if v, ok := SearchValue(a.Value); ok {
			doc[a.Name] = v
		}
	}
	return doc
}

// SearchValue renders one field value of the search projection and
// reports whether it should be emitted.
func SearchValue(v any) (any, bool) {
	switch tv := v.(type) {
	case nil:
		return nil, false
	case SearchProjector:
		return tv.SearchValue()
	case Typed:
		doc := searchFields(tv.Base())
		return doc, len(doc) > 0
	case []any:
		out := make([]any, 0, len(tv))
		for _, item := range tv {
			if sv, ok := SearchValue(item); ok {
				out = append(out, sv)
			}
		}
		return out, len(out) > 0
	case map[any]any:
		out := make(map[string]any, len(tv))
		for _, k := range sortedKeys(tv) {
			if sv, ok := SearchValue(tv[k]); ok {
				out[keyString(k)] = sv
			}
		}
		return out, len(out) > 0
	}
	return CanonicalValue(v)
}

// document turns the self-rendered projection v of r into a document. A
// suppressed value yields an empty document and a document is returned as
// is. A bare value is keyed by the first declared field, the field a bare
// value is routed to on construction, so the document reads back into an
// equal record.
func document(r *Record, v any, ok bool) map[string]any {
	if !ok {
		return map[string]any{}
	}
	if doc, isDoc := v.(map[string]any); isDoc {
		return doc
	}
	if len(r.schema.fields) == 0 {
		return map[string]any{}
	}
	return map[string]any{r.schema.fields[0].Name: v}
}

func flatten(doc map[string]any, name string, m map[any]any) {
	rest := make(map[string]any)
	for _, k := range sortedKeys(m) {
		v, ok := SearchValue(m[k])
		if !ok {
			continue
		}
		if inner, isDoc := v.(map[string]any); isDoc {
			for ik, iv := range inner {
				doc[ik] = iv
			}
			continue
		}
		rest[keyString(k)] = v
	}
	if len(rest) > 0 {
		doc[name] = rest
	}
}

// present reports whether a verbatim value carries information: it is not
// nil and, when it is a collection, not empty.
func present(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return !rv.IsNil() && rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
