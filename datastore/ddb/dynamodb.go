/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	cerrors "github.com/suparena/cardreg/errors"
	"github.com/suparena/cardreg/registry"
)

// EntityTypeAttribute names the attribute that records which registered
// type an item holds.
const EntityTypeAttribute = "EntityType"

// Client is the part of the DynamoDB API the store uses. *dynamodb.Client
// implements it.
type Client interface {
	GetItem(ctx context.Context, in *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, in *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, in *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
	Query(ctx context.Context, in *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
}

// DynamodbDataStore implements datastore.DataStore[T] on a single DynamoDB
// table.
type DynamodbDataStore[T any] struct {
	client    Client
	tableName string
	logger    *slog.Logger
}

type options struct {
	logger *slog.Logger
}

// Option configures a DynamodbDataStore.
type Option func(*options)

// WithLogger sets the store's logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// NewDynamoDBClient creates a DynamoDB client for awsRegion. Static
// credentials are used when an access key is given, otherwise the default
// credential chain.
func NewDynamoDBClient(ctx context.Context, awsAccessKey, awsSecretKey, awsRegion string) (*sdk.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(awsRegion)}
	if awsAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return sdk.NewFromConfig(cfg), nil
}

// NewDynamodbDataStore connects to DynamoDB and returns a store for T on
// tableName.
func NewDynamodbDataStore[T any](ctx context.Context, awsAccessKey, awsSecretKey, awsRegion, tableName string, opts ...Option) (*DynamodbDataStore[T], error) {
	client, err := NewDynamoDBClient(ctx, awsAccessKey, awsSecretKey, awsRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	store := NewWithClient[T](client, tableName, opts...)
	store.logger.Info("dynamodb store initialized", "table", tableName, "region", awsRegion)
	return store, nil
}

// NewWithClient returns a store for T using an existing client.
func NewWithClient[T any](client Client, tableName string, opts ...Option) *DynamodbDataStore[T] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &DynamodbDataStore[T]{
		client:    client,
		tableName: tableName,
		logger:    o.logger.With("table", tableName),
	}
}

// TableName returns the table the store reads and writes.
func (d *DynamodbDataStore[T]) TableName() string {
	return d.tableName
}

func indexMapFor[T any]() (map[string]string, error) {
	indexMap, ok := registry.GetIndexMap[T]()
	if !ok {
		var zero T
		return nil, fmt.Errorf("%w: %T", cerrors.ErrNoIndexMap, zero)
	}
	return indexMap, nil
}

func entityName[T any]() string {
	if name, ok := registry.EntityType[T](); ok {
		return name
	}
	var zero T
	return fmt.Sprintf("%T", zero)
}

// GetOne expands key through every template of T's index map and reads the
// item at the resulting PK and SK.
func (d *DynamodbDataStore[T]) GetOne(ctx context.Context, key string) (*T, error) {
	indexMap, err := indexMapFor[T]()
	if err != nil {
		return nil, err
	}
	keyMap, err := buildKeyFromExpanded(expandStringKey(indexMap, key))
	if err != nil {
		return nil, fmt.Errorf("failed to build key: %w", err)
	}

	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: aws.String(d.tableName),
		Key:       keyMap,
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, cerrors.NewNotFoundError(entityName[T](), key)
	}

	result := new(T)
	if err := attributevalue.UnmarshalMap(out.Item, result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return result, nil
}

// Put writes entity with its expanded keys and EntityType attribute.
func (d *DynamodbDataStore[T]) Put(ctx context.Context, entity T) error {
	item, err := d.item(entity)
	if err != nil {
		return err
	}
	if _, err := d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// Create writes entity unless an item with the same primary key exists.
func (d *DynamodbDataStore[T]) Create(ctx context.Context, entity T) error {
	item, err := d.item(entity)
	if err != nil {
		return err
	}
	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:           aws.String(d.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			pk := item["PK"].(*types.AttributeValueMemberS).Value
			return cerrors.NewAlreadyExistsError(entityName[T](), pk)
		}
		return fmt.Errorf("PutItem failed: %w", err)
	}
	d.logger.Debug("item created", "entity_type", entityName[T]())
	return nil
}

// item marshals entity and adds the attributes named by its index map.
// Primary key attributes must expand completely; secondary index
// attributes with a missing value are left out so the item stays out of
// that index.
func (d *DynamodbDataStore[T]) item(entity T) (map[string]types.AttributeValue, error) {
	indexMap, err := indexMapFor[T]()
	if err != nil {
		return nil, err
	}
	av, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}

	expanded, incomplete := expandMacros(indexMap, av)
	for _, k := range []string{"PK", "SK"} {
		if _, missing := incomplete[k]; missing {
			return nil, cerrors.NewValidationError(k, fmt.Sprintf("template %q has no value", indexMap[k]))
		}
	}
	for k, v := range expanded {
		if _, missing := incomplete[k]; missing {
			continue
		}
		av[k] = &types.AttributeValueMemberS{Value: v}
	}
	if name, ok := registry.EntityType[T](); ok {
		av[EntityTypeAttribute] = &types.AttributeValueMemberS{Value: name}
	}
	return av, nil
}

// Delete removes the item stored under key.
func (d *DynamodbDataStore[T]) Delete(ctx context.Context, key string) error {
	indexMap, err := indexMapFor[T]()
	if err != nil {
		return err
	}
	keyMap, err := buildKeyFromExpanded(expandStringKey(indexMap, key))
	if err != nil {
		return fmt.Errorf("failed to build key for Delete: %w", err)
	}

	if _, err := d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key:       keyMap,
	}); err != nil {
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	return nil
}

// UpdateWithCondition sets the given attributes on the item addressed by
// keyInput, a string key or a value carrying the key fields. A non-empty
// condition must hold for the update to apply.
func (d *DynamodbDataStore[T]) UpdateWithCondition(ctx context.Context, keyInput any, updates map[string]any, condition string) error {
	indexMap, err := indexMapFor[T]()
	if err != nil {
		return err
	}
	key, err := d.getKey(keyInput, indexMap)
	if err != nil {
		return fmt.Errorf("failed to build key: %w", err)
	}

	updateExpr, names, values, err := buildUpdateExpression(updates)
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	input := &sdk.UpdateItemInput{
		TableName:                 aws.String(d.tableName),
		Key:                       key,
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueNone,
	}
	if condition != "" {
		input.ConditionExpression = aws.String(condition)
	}

	if _, err := d.client.UpdateItem(ctx, input); err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return fmt.Errorf("%w: %w", cerrors.NewConditionFailedError("update", condition), err)
		}
		return fmt.Errorf("UpdateWithCondition failed: %w", err)
	}
	return nil
}

func (d *DynamodbDataStore[T]) getKey(keyInput any, indexMap map[string]string) (map[string]types.AttributeValue, error) {
	if s, ok := keyInput.(string); ok {
		return buildKeyFromExpanded(expandStringKey(indexMap, s))
	}
	av, err := attributevalue.MarshalMap(keyInput)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key input: %w", err)
	}
	expanded, incomplete := expandMacros(indexMap, av)
	for _, k := range []string{"PK", "SK"} {
		if _, missing := incomplete[k]; missing {
			return nil, fmt.Errorf("key input has no value for %s", k)
		}
	}
	return buildKeyFromExpanded(expanded)
}

// expandMacros fills the templates of indexMap from the attributes in av.
// Keys whose templates reference an absent or non-scalar attribute are
// reported in incomplete.
func expandMacros(indexMap map[string]string, av map[string]types.AttributeValue) (expanded map[string]string, incomplete map[string]struct{}) {
	expanded = make(map[string]string, len(indexMap))
	incomplete = make(map[string]struct{})
	for field, template := range indexMap {
		expanded[field] = macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			v, ok := scalarString(av[strings.Trim(macro, "{}")])
			if !ok {
				incomplete[field] = struct{}{}
			}
			return v
		})
	}
	return expanded, incomplete
}

func scalarString(av types.AttributeValue) (string, bool) {
	switch tv := av.(type) {
	case *types.AttributeValueMemberS:
		return tv.Value, tv.Value != ""
	case *types.AttributeValueMemberN:
		return tv.Value, true
	case *types.AttributeValueMemberBOOL:
		return fmt.Sprint(tv.Value), true
	}
	return "", false
}

// expandStringKey substitutes key for every macro of every template.
func expandStringKey(indexMap map[string]string, key string) map[string]string {
	expanded := make(map[string]string, len(indexMap))
	for field, template := range indexMap {
		expanded[field] = macroPattern.ReplaceAllLiteralString(template, key)
	}
	return expanded
}

func buildKeyFromExpanded(expanded map[string]string) (map[string]types.AttributeValue, error) {
	pk, sk := expanded["PK"], expanded["SK"]
	if pk == "" || sk == "" {
		return nil, errors.New("expanded index map missing valid PK or SK")
	}
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}, nil
}

// buildUpdateExpression turns field/value pairs into a SET expression with
// placeholder names and values, in field-name order.
func buildUpdateExpression(updates map[string]any) (string, map[string]string, map[string]types.AttributeValue, error) {
	if len(updates) == 0 {
		return "", nil, nil, errors.New("no updates provided")
	}

	fields := make([]string, 0, len(updates))
	for f := range updates {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	clauses := make([]string, 0, len(fields))
	names := make(map[string]string, len(fields))
	values := make(map[string]types.AttributeValue, len(fields))
	for i, field := range fields {
		name, value := fmt.Sprintf("#f%d", i), fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(updates[field])
		if err != nil {
			return "", nil, nil, fmt.Errorf("field %q: %w", field, err)
		}
		clauses = append(clauses, name+" = "+value)
		names[name] = field
		values[value] = av
	}
	return "SET " + strings.Join(clauses, ", "), names, values, nil
}
