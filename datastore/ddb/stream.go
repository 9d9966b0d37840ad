/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/cardreg/storagemodels"
)

// Stream pages through every item matching params and delivers them on the
// returned channel, which is closed when the query is exhausted, fails, or
// ctx is done. A failed page is retried on throttling and server errors;
// when retries run out the error is delivered as the last result unless
// the ErrorHandler option asks for the page to be tried again.
func (d *DynamodbDataStore[T]) Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	options := storagemodels.NewStreamOptions(opts...)
	resultCh := make(chan storagemodels.StreamResult[T], options.BufferSize)
	go d.streamWorker(ctx, params, options, resultCh)
	return resultCh
}

func (d *DynamodbDataStore[T]) streamWorker(
	ctx context.Context,
	params *storagemodels.QueryParams,
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult[T],
) {
	defer close(resultCh)

	var (
		index     int64
		page      int
		startTime = time.Now()
		failures  []error
	)

	report := func(lastKey map[string]types.AttributeValue) {
		if options.ProgressHandler == nil {
			return
		}
		p := storagemodels.StreamProgress{
			ItemsProcessed: index,
			PagesProcessed: page,
			LastKey:        lastKey,
			Errors:         failures,
			StartTime:      startTime,
		}
		if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
			p.CurrentRate = float64(index) / elapsed
		}
		options.ProgressHandler(p)
	}

	send := func(r storagemodels.StreamResult[T]) bool {
		select {
		case <-ctx.Done():
			return false
		case resultCh <- r:
			return true
		}
	}

	input := d.queryInput(params)
	input.Limit = aws.Int32(options.PageSize)

	for {
		if ctx.Err() != nil {
			return
		}

		out, err := d.queryWithRetry(ctx, input, options)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if options.ErrorHandler == nil || !options.ErrorHandler(err) {
				send(storagemodels.StreamResult[T]{
					Error: fmt.Errorf("query failed: %w", err),
					Meta:  storagemodels.StreamMeta{Index: index, PageNumber: page, Timestamp: time.Now()},
				})
				return
			}
			d.logger.Warn("retrying failed stream page", "page", page+1, "error", err)
			failures = append(failures, err)
			continue
		}

		page++
		for _, item := range out.Items {
			result := processItem[T](item, index, page)
			index++
			if result.Error != nil {
				failures = append(failures, result.Error)
			}
			if !send(result) {
				return
			}
		}
		report(out.LastEvaluatedKey)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	d.logger.Debug("stream finished", "items", index, "pages", page)
}

func (d *DynamodbDataStore[T]) queryWithRetry(ctx context.Context, input *sdk.QueryInput, options storagemodels.StreamOptions) (*sdk.QueryOutput, error) {
	var lastErr error
	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		out, err := d.client.Query(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !isRetryableError(err) {
			return nil, err
		}
		if attempt < options.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt+1) * options.RetryBackoff):
			}
		}
	}
	return nil, fmt.Errorf("query failed after %d retries: %w", options.MaxRetries, lastErr)
}

func processItem[T any](item map[string]types.AttributeValue, index int64, page int) storagemodels.StreamResult[T] {
	result := storagemodels.StreamResult[T]{
		Raw: maps.Clone(item),
		Meta: storagemodels.StreamMeta{
			Index:      index,
			PageNumber: page,
			Timestamp:  time.Now(),
		},
	}
	if err := attributevalue.UnmarshalMap(item, &result.Item); err != nil {
		result.Error = fmt.Errorf("failed to unmarshal item %d: %w", index, err)
	}
	return result
}

func isRetryableError(err error) bool {
	var (
		throughput *types.ProvisionedThroughputExceededException
		limit      *types.RequestLimitExceeded
		internal   *types.InternalServerError
	)
	if errors.As(err, &throughput) || errors.As(err, &limit) || errors.As(err, &internal) {
		return true
	}
	var retryable interface{ IsRetryable() bool }
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}
