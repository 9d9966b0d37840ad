/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// UnmarshalFunc turns a raw DynamoDB item into a typed entity.
type UnmarshalFunc func(item map[string]types.AttributeValue) (any, error)

var (
	typeMu       sync.RWMutex
	typeRegistry = make(map[string]UnmarshalFunc)
)

// RegisterType registers an unmarshal function for an EntityType value.
// Registering the same name twice panics.
func RegisterType(entityType string, fn UnmarshalFunc) {
	typeMu.Lock()
	defer typeMu.Unlock()
	if _, exists := typeRegistry[entityType]; exists {
		panic(fmt.Sprintf("type registry: entity type %q already registered", entityType))
	}
	typeRegistry[entityType] = fn
}

// GetUnmarshalFunc returns the unmarshal function registered for entityType.
func GetUnmarshalFunc(entityType string) (UnmarshalFunc, error) {
	typeMu.RLock()
	defer typeMu.RUnlock()
	fn, ok := typeRegistry[entityType]
	if !ok {
		return nil, fmt.Errorf("type registry: no type registered for %q", entityType)
	}
	return fn, nil
}

// UnmarshalInto returns an UnmarshalFunc decoding items into a new *T.
func UnmarshalInto[T any]() UnmarshalFunc {
	return func(item map[string]types.AttributeValue) (any, error) {
		v := new(T)
		if err := attributevalue.UnmarshalMap(item, v); err != nil {
			return nil, err
		}
		return v, nil
	}
}
