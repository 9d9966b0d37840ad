/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/suparena/cardreg/record"
)

var (
	recordMu       sync.RWMutex
	recordRegistry = make(map[string]*record.Schema)
)

// RegisterRecord makes a record schema available by its type name.
// Registering a different schema under a taken name panics.
func RegisterRecord(s *record.Schema) {
	recordMu.Lock()
	defer recordMu.Unlock()
	if prev, exists := recordRegistry[s.TypeName()]; exists && prev != s {
		panic(fmt.Sprintf("record registry: record type %q already registered", s.TypeName()))
	}
	recordRegistry[s.TypeName()] = s
}

// LookupRecord returns the schema registered under name.
func LookupRecord(name string) (*record.Schema, bool) {
	recordMu.RLock()
	defer recordMu.RUnlock()
	s, ok := recordRegistry[name]
	return s, ok
}

// RecordNames lists the registered record type names in sorted order.
func RecordNames() []string {
	recordMu.RLock()
	defer recordMu.RUnlock()
	names := make([]string, 0, len(recordRegistry))
	for name := range recordRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
