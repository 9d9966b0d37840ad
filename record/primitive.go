/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package record

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Primitive is a scalar element type with a best-effort converter.
type Primitive struct {
	name    string
	zero    any
	convert func(raw any) (any, bool)
}

// Built-in primitives.
var (
	String = &Primitive{name: "string", zero: "", convert: toString}
	Int    = &Primitive{name: "int", zero: 0, convert: toInt}
	Bool   = &Primitive{name: "bool", zero: false, convert: toBool}
	Float  = &Primitive{name: "float", zero: 0.0, convert: toFloat}
)

// TypeName returns the primitive's name.
func (p *Primitive) TypeName() string {
	return p.name
}

// Zero returns the value produced when a conversion fails.
func (p *Primitive) Zero() any {
	return p.zero
}

func (p *Primitive) coerce(raw any, _ bool) (any, error) {
	return CoerceOrDefault(p, raw), nil
}

// CoerceOrDefault converts raw to p, falling back to p's zero value when the
// conversion is not possible. It never fails.
func CoerceOrDefault(p *Primitive, raw any) any {
	if v, ok := p.convert(raw); ok {
		return v
	}
	return p.zero
}

func toString(raw any) (any, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case fmt.Stringer:
		return v.String(), true
	}
	return nil, false
}

func toInt(raw any) (any, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		if v > math.MaxInt64 {
			return nil, false
		}
		return int(v), true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return nil, false
		}
		return int(v), true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		if f, err := v.Float64(); err == nil {
			return floatToInt(f)
		}
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, true
		}
	}
	return nil, false
}

func floatToInt(f float64) (any, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, false
	}
	return int(f), true
}

func toBool(raw any) (any, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b, true
		}
		return nil, false
	}
	if f, ok := toFloat(raw); ok {
		return f.(float64) != 0, true
	}
	return nil, false
}

func toFloat(raw any) (any, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
		return nil, false
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
		return nil, false
	case bool:
		return nil, false
	}
	if n, ok := toInt(raw); ok {
		return float64(n.(int)), true
	}
	return nil, false
}
