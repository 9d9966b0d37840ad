/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/cardreg/registry"
	"github.com/suparena/cardreg/storagemodels"
)

// Query returns one page of results. Each item is decoded by the unmarshal
// function registered for its EntityType; items of unknown type come back
// as map[string]any.
func (d *DynamodbDataStore[T]) Query(ctx context.Context, params *storagemodels.QueryParams) ([]any, error) {
	results, _, err := d.QueryPage(ctx, params)
	return results, err
}

// QueryPage is Query that also returns the key to resume from, nil on the
// last page.
func (d *DynamodbDataStore[T]) QueryPage(ctx context.Context, params *storagemodels.QueryParams) ([]any, map[string]types.AttributeValue, error) {
	out, err := d.client.Query(ctx, d.queryInput(params))
	if err != nil {
		return nil, nil, fmt.Errorf("query error: %w", err)
	}

	results := make([]any, 0, len(out.Items))
	for _, item := range out.Items {
		obj, err := decodeItem(item)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, obj)
	}
	if len(out.LastEvaluatedKey) == 0 {
		return results, nil, nil
	}
	return results, out.LastEvaluatedKey, nil
}

func (d *DynamodbDataStore[T]) queryInput(params *storagemodels.QueryParams) *sdk.QueryInput {
	return &sdk.QueryInput{
		TableName:                 aws.String(d.tableName),
		KeyConditionExpression:    aws.String(params.KeyConditionExpression),
		ExpressionAttributeValues: params.ExpressionAttributeValues,
		FilterExpression:          params.FilterExpression,
		IndexName:                 params.IndexName,
		Limit:                     params.Limit,
		ExclusiveStartKey:         params.ExclusiveStartKey,
		ScanIndexForward:          params.ScanIndexForward,
	}
}

func decodeItem(item map[string]types.AttributeValue) (any, error) {
	attr, ok := item[EntityTypeAttribute]
	if !ok {
		return nil, fmt.Errorf("missing %s attribute in item", EntityTypeAttribute)
	}
	var entityType string
	if err := attributevalue.Unmarshal(attr, &entityType); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", EntityTypeAttribute, err)
	}

	unmarshal, err := registry.GetUnmarshalFunc(entityType)
	if err != nil {
		var generic map[string]any
		if err := attributevalue.UnmarshalMap(item, &generic); err != nil {
			return nil, fmt.Errorf("failed to unmarshal generic item: %w", err)
		}
		return generic, nil
	}
	obj, err := unmarshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal item for %s %q: %w", EntityTypeAttribute, entityType, err)
	}
	return obj, nil
}
