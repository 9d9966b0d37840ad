/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// QueryParams describes a key-condition query against the store's table or
// one of its secondary indexes. The table itself is chosen by the store.
type QueryParams struct {
	// KeyConditionExpression is the primary condition, e.g. "PK1 = :pk".
	KeyConditionExpression string
	// FilterExpression is applied after the key condition.
	FilterExpression *string
	// ExpressionAttributeValues binds the placeholders of both expressions.
	ExpressionAttributeValues map[string]types.AttributeValue
	// IndexName selects a secondary index; nil queries the table.
	IndexName *string
	// Limit caps the items evaluated per page.
	Limit *int32
	// ExclusiveStartKey resumes a previous page.
	ExclusiveStartKey map[string]types.AttributeValue
	// ScanIndexForward orders by sort key, ascending when nil or true.
	ScanIndexForward *bool
}
