/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package record

import "fmt"

// Kind enumerates the declared shapes a field can take.
type Kind int

const (
	KindUntyped Kind = iota
	KindScalar
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindUntyped:
		return "untyped"
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Type is the element type a shape is declared over. It is implemented by
// *Primitive and *Schema only.
type Type interface {
	TypeName() string
	coerce(raw any, initialLoad bool) (any, error)
}

// Shape describes what a field may hold.
type Shape struct {
	Kind Kind
	// Key is the key type of a map shape.
	Key *Primitive
	// Elem is the scalar type, the list element type or the map value type.
	Elem Type
}

// Untyped is the shape of fields a schema does not declare.
var Untyped = Shape{Kind: KindUntyped}

// Scalar declares a field holding exactly one value of t.
func Scalar(t Type) Shape {
	return Shape{Kind: KindScalar, Elem: t}
}

// List declares a field holding an ordered sequence of t. A nil t declares
// an untyped list whose items are stored verbatim.
func List(t Type) Shape {
	return Shape{Kind: KindList, Elem: t}
}

// Map declares a field holding a mapping from k keys to v values.
func Map(k *Primitive, v Type) Shape {
	return Shape{Kind: KindMap, Key: k, Elem: v}
}

func (s Shape) String() string {
	switch s.Kind {
	case KindScalar:
		return typeName(s.Elem)
	case KindList:
		return "[" + typeName(s.Elem) + "]"
	case KindMap:
		return "{" + typeName(s.Key) + ":" + typeName(s.Elem) + "}"
	}
	return s.Kind.String()
}

// empty returns the default a field of this shape starts with.
func (s Shape) empty() any {
	switch s.Kind {
	case KindList:
		return []any{}
	case KindMap:
		return map[any]any{}
	}
	return nil
}

func typeName(t Type) string {
	if t == nil {
		return "any"
	}
	if p, ok := t.(*Primitive); ok && p == nil {
		return "any"
	}
	return t.TypeName()
}
