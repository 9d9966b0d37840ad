/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package record

// Field is one entry of a schema's declaration table.
type Field struct {
	Name  string
	Shape Shape
}

// F declares a field.
func F(name string, shape Shape) Field {
	return Field{Name: name, Shape: shape}
}

// FieldTransform renders one field into a search document. It returns the
// key to emit the value under, or false when the field contributes nothing.
type FieldTransform func(value any) (key string, out any, ok bool)

// Schema is the static declaration of a record type.
type Schema struct {
	name   string
	fields []Field
	index  map[string]int
	wrap   func(*Record) Typed
	ignore map[string]struct{}
	search map[string]FieldTransform
}

// Option configures a Schema.
type Option func(*Schema)

// Wrap sets the function that wraps freshly constructed records into their
// catalog type. Coercion hands out the wrapped value.
func Wrap(fn func(*Record) Typed) Option {
	return func(s *Schema) {
		s.wrap = fn
	}
}

// IgnoreInSearch drops the named fields from search documents.
func IgnoreInSearch(names ...string) Option {
	return func(s *Schema) {
		for _, n := range names {
			s.ignore[n] = struct{}{}
		}
	}
}

// SearchAs replaces the search rendering of one field.
func SearchAs(field string, fn FieldTransform) Option {
	return func(s *Schema) {
		s.search[field] = fn
	}
}

// NewSchema declares a record type. Field order is significant: raw scalar
// input is routed to the first declared field.
func NewSchema(name string, fields []Field, opts ...Option) *Schema {
	s := &Schema{
		name:   name,
		fields: append([]Field(nil), fields...),
		index:  make(map[string]int, len(fields)),
		ignore: make(map[string]struct{}),
		search: make(map[string]FieldTransform),
	}
	for i, f := range s.fields {
		if _, dup := s.index[f.Name]; dup {
			panic("record: schema " + name + " declares field " + f.Name + " twice")
		}
		s.index[f.Name] = i
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TypeName returns the declared record type name.
func (s *Schema) TypeName() string {
	return s.name
}

// Fields returns a copy of the declaration table.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Shape resolves the declared shape of a field. Undeclared names are Untyped.
func (s *Schema) Shape(name string) Shape {
	if i, ok := s.index[name]; ok {
		return s.fields[i].Shape
	}
	return Untyped
}

// Declares reports whether name is a declared field.
func (s *Schema) Declares(name string) bool {
	_, ok := s.index[name]
	return ok
}

// IgnoredInSearch reports whether the field is dropped from search documents.
func (s *Schema) IgnoredInSearch(name string) bool {
	_, ok := s.ignore[name]
	return ok
}

// New constructs a record from raw input: nil, a mapping, or a scalar that
// is routed to the first declared field.
func (s *Schema) New(raw any) (Typed, error) {
	r, err := newRecord(s, raw, false, nil)
	if err != nil {
		return nil, err
	}
	return r.typed, nil
}

// Load constructs a record as an initial load, keeping the input in the
// loaded slots.
func (s *Schema) Load(raw any) (Typed, error) {
	r, err := newRecord(s, raw, true, nil)
	if err != nil {
		return nil, err
	}
	return r.typed, nil
}

// Bind constructs a record as an initial load whose projections dispatch
// through self. It is meant for UnmarshalJSON implementations of catalog
// types, which then store the returned record in themselves.
func (s *Schema) Bind(self Typed, raw any) (*Record, error) {
	return newRecord(s, raw, true, self)
}

func (s *Schema) coerce(raw any, initialLoad bool) (any, error) {
	if t, ok := raw.(Typed); ok {
		if r := t.Base(); r != nil && r.schema == s {
			return t, nil
		}
	}
	r, err := newRecord(s, raw, !initialLoad, nil)
	if err != nil {
		return nil, err
	}
	return r.typed, nil
}
