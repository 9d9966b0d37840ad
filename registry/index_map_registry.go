/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"maps"
	"reflect"
	"sync"
)

type entity struct {
	name     string
	indexMap map[string]string
}

var (
	entityMu       sync.RWMutex
	entityRegistry = make(map[reflect.Type]entity)
)

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// RegisterIndexMap associates T with the key templates used to store it,
// such as {"PK": "REG#{EmailHash}", "SK": "REG#{EmailHash}"}.
func RegisterIndexMap[T any](idxMap map[string]string) {
	t := typeOf[T]()

	entityMu.Lock()
	defer entityMu.Unlock()
	e := entityRegistry[t]
	e.indexMap = maps.Clone(idxMap)
	entityRegistry[t] = e
}

// GetIndexMap returns the key templates registered for T.
func GetIndexMap[T any]() (map[string]string, bool) {
	entityMu.RLock()
	defer entityMu.RUnlock()
	e, ok := entityRegistry[typeOf[T]()]
	if !ok || e.indexMap == nil {
		return nil, false
	}
	return maps.Clone(e.indexMap), true
}

// RegisterEntity registers T under an EntityType name together with its
// key templates, and installs an unmarshal function for the name.
func RegisterEntity[T any](entityType string, idxMap map[string]string) {
	RegisterType(entityType, UnmarshalInto[T]())

	entityMu.Lock()
	defer entityMu.Unlock()
	entityRegistry[typeOf[T]()] = entity{name: entityType, indexMap: maps.Clone(idxMap)}
}

// EntityType returns the EntityType name registered for T.
func EntityType[T any]() (string, bool) {
	entityMu.RLock()
	defer entityMu.RUnlock()
	e, ok := entityRegistry[typeOf[T]()]
	if !ok || e.name == "" {
		return "", false
	}
	return e.name, true
}
