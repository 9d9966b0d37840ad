/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/cardreg/storagemodels"
)

// TimeKey renders t the way time-ordered sort keys are stored: a UTC
// strfmt.DateTime string, which sorts lexically in time order.
func TimeKey(t time.Time) string {
	return strfmt.DateTime(t.UTC()).String()
}

// TimeRangeQueryBuilder queries an index whose sort key holds TimeKey
// values.
type TimeRangeQueryBuilder[T any] struct {
	*GSIQueryBuilder[T]
	now func() time.Time
}

// QueryByTimeRange starts a time-range query for partitionKey on GSI1.
func (d *DynamodbDataStore[T]) QueryByTimeRange(partitionKey string) *TimeRangeQueryBuilder[T] {
	return &TimeRangeQueryBuilder[T]{
		GSIQueryBuilder: d.QueryGSI().WithPartitionKey(partitionKey),
		now:             time.Now,
	}
}

func (q *TimeRangeQueryBuilder[T]) OnIndex(indexName string) *TimeRangeQueryBuilder[T] {
	q.GSIQueryBuilder.OnIndex(indexName)
	return q
}

// InLastDays matches items from the last n days.
func (q *TimeRangeQueryBuilder[T]) InLastDays(n int) *TimeRangeQueryBuilder[T] {
	return q.After(q.now().AddDate(0, 0, -n))
}

// ThisMonth matches items since the first day of the current month.
func (q *TimeRangeQueryBuilder[T]) ThisMonth() *TimeRangeQueryBuilder[T] {
	now := q.now()
	return q.After(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()))
}

func (q *TimeRangeQueryBuilder[T]) Between(start, end time.Time) *TimeRangeQueryBuilder[T] {
	q.WithSortKeyBetween(TimeKey(start), TimeKey(end))
	return q
}

func (q *TimeRangeQueryBuilder[T]) After(t time.Time) *TimeRangeQueryBuilder[T] {
	q.WithSortKeyGreaterThan(TimeKey(t))
	return q
}

func (q *TimeRangeQueryBuilder[T]) Before(t time.Time) *TimeRangeQueryBuilder[T] {
	q.WithSortKeyLessThan(TimeKey(t))
	return q
}

// Latest orders results newest first.
func (q *TimeRangeQueryBuilder[T]) Latest() *TimeRangeQueryBuilder[T] {
	q.Ascending(false)
	return q
}

// Oldest orders results oldest first.
func (q *TimeRangeQueryBuilder[T]) Oldest() *TimeRangeQueryBuilder[T] {
	q.Ascending(true)
	return q
}

func (q *TimeRangeQueryBuilder[T]) WithLimit(limit int32) *TimeRangeQueryBuilder[T] {
	q.GSIQueryBuilder.WithLimit(limit)
	return q
}

// QueryItemsSince returns the items of partitionKey on indexName newer than
// since, oldest first.
func (d *DynamodbDataStore[T]) QueryItemsSince(ctx context.Context, indexName, partitionKey string, since time.Time) ([]T, error) {
	return d.QueryByTimeRange(partitionKey).
		OnIndex(indexName).
		After(since).
		Oldest().
		Execute(ctx)
}

// StreamItemsSince streams the items of partitionKey on indexName newer
// than since, oldest first.
func (d *DynamodbDataStore[T]) StreamItemsSince(ctx context.Context, indexName, partitionKey string, since time.Time, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	return d.QueryByTimeRange(partitionKey).
		OnIndex(indexName).
		After(since).
		Oldest().
		Stream(ctx, opts...)
}
