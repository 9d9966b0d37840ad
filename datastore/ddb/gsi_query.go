/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/cardreg/storagemodels"
)

// GSIQueryBuilder builds a query against one secondary index. Key values
// are expanded through the templates of T's index map, so "1234567" becomes
// "PATRON#1234567" when PK1 is "PATRON#{PatronID}".
type GSIQueryBuilder[T any] struct {
	store      *DynamodbDataStore[T]
	indexName  string
	pkValue    string
	skValue    string
	skEnd      string
	skOperator string // "=", "begins_with", ">", "<", ">=", "<=", "BETWEEN"
	filters    []string
	filterVals map[string]types.AttributeValue
	limit      *int32
	forward    *bool
	startKey   map[string]types.AttributeValue
}

// QueryGSI starts a query on GSI1.
func (d *DynamodbDataStore[T]) QueryGSI() *GSIQueryBuilder[T] {
	return &GSIQueryBuilder[T]{
		store:      d,
		indexName:  "GSI1",
		filterVals: make(map[string]types.AttributeValue),
	}
}

// NewGSIQuery starts a GSI1 query that is not bound to a store. Its Build
// output can be passed to any DataStore[T]; Execute and Stream fail.
func NewGSIQuery[T any]() *GSIQueryBuilder[T] {
	return &GSIQueryBuilder[T]{
		indexName:  "GSI1",
		filterVals: make(map[string]types.AttributeValue),
	}
}

// OnIndex selects the secondary index to query.
func (q *GSIQueryBuilder[T]) OnIndex(indexName string) *GSIQueryBuilder[T] {
	q.indexName = indexName
	return q
}

func (q *GSIQueryBuilder[T]) WithPartitionKey(value string) *GSIQueryBuilder[T] {
	q.pkValue = value
	return q
}

func (q *GSIQueryBuilder[T]) WithSortKey(value string) *GSIQueryBuilder[T] {
	return q.sortKey("=", value)
}

func (q *GSIQueryBuilder[T]) WithSortKeyPrefix(prefix string) *GSIQueryBuilder[T] {
	return q.sortKey("begins_with", prefix)
}

func (q *GSIQueryBuilder[T]) WithSortKeyGreaterThan(value string) *GSIQueryBuilder[T] {
	return q.sortKey(">", value)
}

func (q *GSIQueryBuilder[T]) WithSortKeyLessThan(value string) *GSIQueryBuilder[T] {
	return q.sortKey("<", value)
}

// WithSortKeyBetween matches sort keys in the inclusive range [start, end].
func (q *GSIQueryBuilder[T]) WithSortKeyBetween(start, end string) *GSIQueryBuilder[T] {
	q.skEnd = end
	return q.sortKey("BETWEEN", start)
}

func (q *GSIQueryBuilder[T]) sortKey(op, value string) *GSIQueryBuilder[T] {
	q.skOperator = op
	q.skValue = value
	return q
}

// WithFilter adds a filter expression; several filters are joined with AND.
func (q *GSIQueryBuilder[T]) WithFilter(expression string, values map[string]types.AttributeValue) *GSIQueryBuilder[T] {
	q.filters = append(q.filters, expression)
	for k, v := range values {
		q.filterVals[k] = v
	}
	return q
}

func (q *GSIQueryBuilder[T]) WithLimit(limit int32) *GSIQueryBuilder[T] {
	q.limit = aws.Int32(limit)
	return q
}

// Ascending orders results by sort key, oldest or smallest first.
func (q *GSIQueryBuilder[T]) Ascending(asc bool) *GSIQueryBuilder[T] {
	q.forward = aws.Bool(asc)
	return q
}

// StartAfter resumes from the key returned by a previous page.
func (q *GSIQueryBuilder[T]) StartAfter(key map[string]types.AttributeValue) *GSIQueryBuilder[T] {
	q.startKey = key
	return q
}

// Build constructs the query parameters.
func (q *GSIQueryBuilder[T]) Build() (*storagemodels.QueryParams, error) {
	if q.pkValue == "" {
		return nil, fmt.Errorf("GSI partition key value is required")
	}
	cfg, ok := GetGSIConfig(q.indexName)
	if !ok {
		return nil, fmt.Errorf("unknown secondary index %q", q.indexName)
	}
	indexMap, err := indexMapFor[T]()
	if err != nil {
		return nil, err
	}
	pkTemplate, ok := indexMap[cfg.PartitionKeyName]
	if !ok {
		return nil, fmt.Errorf("%s not found in index map", cfg.PartitionKeyName)
	}

	values := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: expandTemplate(pkTemplate, q.pkValue)},
	}
	conditions := []string{cfg.PartitionKeyName + " = :pk"}

	if q.skOperator != "" {
		skTemplate := indexMap[cfg.SortKeyName]
		sk := cfg.SortKeyName
		values[":sk"] = &types.AttributeValueMemberS{Value: expandTemplate(skTemplate, q.skValue)}
		switch q.skOperator {
		case "begins_with":
			conditions = append(conditions, "begins_with("+sk+", :sk)")
		case "BETWEEN":
			conditions = append(conditions, sk+" BETWEEN :sk AND :sk2")
			values[":sk2"] = &types.AttributeValueMemberS{Value: expandTemplate(skTemplate, q.skEnd)}
		default:
			conditions = append(conditions, sk+" "+q.skOperator+" :sk")
		}
	}

	params := &storagemodels.QueryParams{
		KeyConditionExpression:    strings.Join(conditions, " AND "),
		ExpressionAttributeValues: values,
		IndexName:                 aws.String(cfg.IndexName),
		Limit:                     q.limit,
		ScanIndexForward:          q.forward,
		ExclusiveStartKey:         q.startKey,
	}
	if len(q.filters) > 0 {
		params.FilterExpression = aws.String(strings.Join(q.filters, " AND "))
		for k, v := range q.filterVals {
			values[k] = v
		}
	}
	return params, nil
}

// expandTemplate renders a key value for a template. The value replaces
// everything from the first macro on, unless it already carries the
// template's static prefix.
func expandTemplate(template, value string) string {
	loc := macroPattern.FindStringIndex(template)
	if loc == nil {
		return value
	}
	prefix := template[:loc[0]]
	if strings.HasPrefix(value, prefix) {
		return value
	}
	return prefix + value
}

var errUnbound = errors.New("query is not bound to a store")

// Execute runs the query and returns the items of type T.
func (q *GSIQueryBuilder[T]) Execute(ctx context.Context) ([]T, error) {
	items, _, err := q.ExecuteWithPagination(ctx)
	return items, err
}

// ExecuteWithPagination runs one page of the query and returns the key to
// pass to StartAfter for the next page.
func (q *GSIQueryBuilder[T]) ExecuteWithPagination(ctx context.Context) ([]T, map[string]types.AttributeValue, error) {
	if q.store == nil {
		return nil, nil, errUnbound
	}
	params, err := q.Build()
	if err != nil {
		return nil, nil, err
	}
	results, lastKey, err := q.store.QueryPage(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return typed[T](results), lastKey, nil
}

// Stream runs the query across all pages.
func (q *GSIQueryBuilder[T]) Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	params, err := q.Build()
	if err == nil && q.store == nil {
		err = errUnbound
	}
	if err != nil {
		ch := make(chan storagemodels.StreamResult[T], 1)
		ch <- storagemodels.StreamResult[T]{Error: fmt.Errorf("failed to build query: %w", err)}
		close(ch)
		return ch
	}
	return q.store.Stream(ctx, params, opts...)
}

func typed[T any](results []any) []T {
	out := make([]T, 0, len(results))
	for _, r := range results {
		switch v := r.(type) {
		case T:
			out = append(out, v)
		case *T:
			out = append(out, *v)
		}
	}
	return out
}
