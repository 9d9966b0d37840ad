/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

// GSIConfig names a global secondary index and its key attributes.
type GSIConfig struct {
	IndexName        string
	PartitionKeyName string
	SortKeyName      string
}

// DefaultGSIConfigs are the secondary indexes of the cardreg table. Index
// maps use the key attribute names, e.g. "PK1": "PATRON#{PatronID}".
var DefaultGSIConfigs = map[string]GSIConfig{
	"GSI1": {
		IndexName:        "GSI1",
		PartitionKeyName: "PK1",
		SortKeyName:      "SK1",
	},
	"GSI2": {
		IndexName:        "GSI2",
		PartitionKeyName: "PK2",
		SortKeyName:      "SK2",
	},
}

// GetGSIConfig returns the configuration of a secondary index.
func GetGSIConfig(indexName string) (GSIConfig, bool) {
	cfg, ok := DefaultGSIConfigs[indexName]
	return cfg, ok
}
