/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package record

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/suparena/cardreg/errors"
)

// Typed is implemented by *Record and by every catalog type embedding it.
type Typed interface {
	Base() *Record
}

// Attribute is a field name and its current value.
type Attribute struct {
	Name     string
	Value    any
	Declared bool
}

// slot holds the loaded and working values of one declared field.
type slot struct {
	loaded  any
	working any
	dirty   bool
}

// Record is an instance of a Schema. A Record must not be shared between
// goroutines without external synchronization. A nil *Record reads as an
// empty record with no schema; it cannot be assigned to.
type Record struct {
	schema       *Schema
	typed        Typed
	slots        []slot
	extras       map[string]any
	extraKeys    []string
	initialLoad  bool
	constructing bool
}

func newRecord(s *Schema, raw any, initialLoad bool, self Typed) (*Record, error) {
	r := &Record{
		schema:       s,
		slots:        make([]slot, len(s.fields)),
		initialLoad:  initialLoad,
		constructing: true,
	}
	for i, f := range s.fields {
		r.slots[i] = slot{loaded: f.Shape.empty()}
	}
	switch {
	case self != nil:
		r.typed = self
	case s.wrap != nil:
		r.typed = s.wrap(r)
	default:
		r.typed = r
	}

	if raw != nil {
		if pairs, ok := asMapping(raw); ok {
			for _, p := range pairs {
				if err := r.Set(fmt.Sprint(p.key), p.value); err != nil {
					return nil, err
				}
			}
		} else if len(s.fields) > 0 {
			if err := r.Set(s.fields[0].Name, raw); err != nil {
				return nil, err
			}
		}
	}
	r.constructing = false
	return r, nil
}

// Base returns r itself.
func (r *Record) Base() *Record {
	return r
}

// Schema returns the record's declaration.
func (r *Record) Schema() *Schema {
	if r == nil {
		return nil
	}
	return r.schema
}

// Set assigns value to the named field. Declared fields are coerced to
// their shape: a sequence replaces a list and a single item is appended,
// mapping input is upserted into a map, and nil clears a scalar while
// leaving collections untouched. Undeclared names are stored verbatim.
func (r *Record) Set(name string, value any) error {
	if r == nil {
		return fmt.Errorf("set %s: record is not initialized", name)
	}
	i, ok := r.schema.index[name]
	if !ok {
		r.setExtra(name, value)
		return nil
	}
	shape := r.schema.fields[i].Shape
	if shape.Kind == KindUntyped {
		r.store(i, value)
		return nil
	}

	v, err := r.assign(name, shape, r.current(i), value)
	if err != nil {
		return err
	}
	r.store(i, v)
	return nil
}

// Get returns the current value of a field: the working value when one was
// written, else the loaded value. Undeclared names return the verbatim
// input or nil.
func (r *Record) Get(name string) any {
	if r == nil {
		return nil
	}
	if i, ok := r.schema.index[name]; ok {
		return r.value(i)
	}
	return r.extras[name]
}

// Loaded returns the value kept for a declared field by the initial load.
func (r *Record) Loaded(name string) any {
	if r == nil {
		return nil
	}
	if i, ok := r.schema.index[name]; ok {
		return r.slots[i].loaded
	}
	return nil
}

// Modified lists the declared fields holding a working value, in
// declaration order.
func (r *Record) Modified() []string {
	if r == nil {
		return nil
	}
	var names []string
	for i, f := range r.schema.fields {
		if r.slots[i].dirty {
			names = append(names, f.Name)
		}
	}
	return names
}

// Attributes returns the declared fields with their current values in
// declaration order. With includeAll, undeclared input keys follow in the
// order they were first seen.
func (r *Record) Attributes(includeAll bool) []Attribute {
	if r == nil {
		return nil
	}
	attrs := make([]Attribute, 0, len(r.slots)+len(r.extraKeys))
	for i, f := range r.schema.fields {
		attrs = append(attrs, Attribute{Name: f.Name, Value: r.value(i), Declared: true})
	}
	if includeAll {
		for _, k := range r.extraKeys {
			attrs = append(attrs, Attribute{Name: k, Value: r.extras[k]})
		}
	}
	return attrs
}

// GetString returns a scalar string field, or "" when unset.
func (r *Record) GetString(name string) string {
	s, _ := r.Get(name).(string)
	return s
}

// GetInt returns a scalar int field and whether it is set.
func (r *Record) GetInt(name string) (int, bool) {
	n, ok := r.Get(name).(int)
	return n, ok
}

// GetList returns a copy of a list field.
func (r *Record) GetList(name string) []any {
	l, _ := r.Get(name).([]any)
	return slices.Clone(l)
}

// GetStrings returns the string items of a list field.
func (r *Record) GetStrings(name string) []string {
	l, _ := r.Get(name).([]any)
	out := make([]string, 0, len(l))
	for _, item := range l {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// GetMap returns a copy of a map field.
func (r *Record) GetMap(name string) map[any]any {
	m, _ := r.Get(name).(map[any]any)
	return maps.Clone(m)
}

// MarshalJSON renders the write projection.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	if cp, ok := r.typed.(CanonicalProjector); ok {
		return json.Marshal(cp.CanonicalValue())
	}
	return json.Marshal(Canonical(r.typed))
}

func (r *Record) String() string {
	if r == nil {
		return "<nil>"
	}
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf("%s<%v>", r.schema.name, err)
	}
	return r.schema.name + string(b)
}

func (r *Record) loading() bool {
	return r.initialLoad && r.constructing
}

func (r *Record) value(i int) any {
	if r.slots[i].dirty {
		return r.slots[i].working
	}
	return r.slots[i].loaded
}

// current returns the value an assignment builds on. A working collection
// starts from a copy of the loaded one.
func (r *Record) current(i int) any {
	s := r.slots[i]
	if r.loading() {
		return s.loaded
	}
	if s.dirty {
		return s.working
	}
	switch v := s.loaded.(type) {
	case []any:
		return slices.Clone(v)
	case map[any]any:
		return maps.Clone(v)
	}
	return s.loaded
}

func (r *Record) store(i int, v any) {
	if r.loading() {
		r.slots[i].loaded = v
		return
	}
	r.slots[i].working = v
	r.slots[i].dirty = true
}

func (r *Record) setExtra(name string, value any) {
	if r.extras == nil {
		r.extras = make(map[string]any)
	}
	if _, seen := r.extras[name]; !seen {
		r.extraKeys = append(r.extraKeys, name)
	}
	r.extras[name] = value
}

func (r *Record) assign(name string, shape Shape, current, raw any) (any, error) {
	flag := r.initialLoad
	switch shape.Kind {
	case KindScalar:
		if raw == nil {
			return nil, nil
		}
		v, err := shape.Elem.coerce(raw, flag)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", r.schema.name, name, err)
		}
		return v, nil

	case KindList:
		list, _ := current.([]any)
		if raw == nil {
			return list, nil
		}
		if items, ok := asSequence(raw); ok {
			out := make([]any, 0, len(items))
			for idx, item := range items {
				v, err := coerceElem(shape.Elem, item, flag)
				if err != nil {
					return nil, fmt.Errorf("%s.%s[%d]: %w", r.schema.name, name, idx, err)
				}
				out = append(out, v)
			}
			return out, nil
		}
		v, err := coerceElem(shape.Elem, raw, flag)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", r.schema.name, name, err)
		}
		return append(slices.Clone(list), v), nil

	case KindMap:
		m, _ := current.(map[any]any)
		if raw == nil {
			if m == nil {
				m = map[any]any{}
			}
			return m, nil
		}
		pairs, ok := asMapping(raw)
		if !ok {
			return nil, errors.NewMalformedInputError(r.schema.name, name,
				fmt.Sprintf("expected a mapping, got %T", raw))
		}
		m = maps.Clone(m)
		if m == nil {
			m = make(map[any]any, len(pairs))
		}
		for _, p := range pairs {
			key := p.key
			if shape.Key != nil {
				key = CoerceOrDefault(shape.Key, p.key)
			}
			v, err := coerceElem(shape.Elem, p.value, flag)
			if err != nil {
				return nil, fmt.Errorf("%s.%s[%v]: %w", r.schema.name, name, key, err)
			}
			m[key] = v
		}
		return m, nil
	}
	return raw, nil
}

func coerceElem(t Type, raw any, initialLoad bool) (any, error) {
	if t == nil {
		return raw, nil
	}
	return t.coerce(raw, initialLoad)
}
