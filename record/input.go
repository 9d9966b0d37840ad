/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package record

import (
	"fmt"
	"reflect"
	"sort"
)

type pair struct {
	key   any
	value any
}

// asMapping flattens any Go map into key/value pairs ordered by the
// printed key, so construction is deterministic.
func asMapping(raw any) ([]pair, bool) {
	if m, ok := raw.(map[string]any); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]pair, 0, len(m))
		for _, k := range keys {
			pairs = append(pairs, pair{key: k, value: m[k]})
		}
		return pairs, true
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	pairs := make([]pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, pair{key: iter.Key().Interface(), value: iter.Value().Interface()})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return keyLess(pairs[i].key, pairs[j].key)
	})
	return pairs, true
}

// asSequence returns the items of a slice or array. Strings and byte
// slices are scalars.
func asSequence(raw any) ([]any, bool) {
	if l, ok := raw.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, true
	}
	return nil, false
}

// keyLess orders numeric keys numerically and everything else by its
// printed form.
func keyLess(a, b any) bool {
	ai, aok := toInt(a)
	bi, bok := toInt(b)
	if aok && bok {
		if _, isStr := a.(string); !isStr {
			if _, isStr := b.(string); !isStr {
				return ai.(int) < bi.(int)
			}
		}
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func sortedKeys(m map[any]any) []any {
	keys := make([]any, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return keyLess(keys[i], keys[j])
	})
	return keys
}

func keyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}
