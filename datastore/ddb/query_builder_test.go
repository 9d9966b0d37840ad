/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sval(params map[string]types.AttributeValue, name string) string {
	if v, ok := params[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func TestGSIQueryBuilder(t *testing.T) {
	store, _ := newLoanStore()

	tests := []struct {
		name    string
		builder *GSIQueryBuilder[loanRecord]
		cond    string
		pk      string
		sk      string
		sk2     string
	}{
		{
			name:    "partition only",
			builder: store.QueryGSI().WithPartitionKey("42"),
			cond:    "PK1 = :pk",
			pk:      "PATRON#42",
		},
		{
			name:    "prefixed partition value kept",
			builder: store.QueryGSI().WithPartitionKey("PATRON#42"),
			cond:    "PK1 = :pk",
			pk:      "PATRON#42",
		},
		{
			name:    "sort key equality",
			builder: store.QueryGSI().WithPartitionKey("42").WithSortKey("L1"),
			cond:    "PK1 = :pk AND SK1 = :sk",
			pk:      "PATRON#42",
			sk:      "LOAN#L1",
		},
		{
			name:    "sort key prefix",
			builder: store.QueryGSI().WithPartitionKey("42").WithSortKeyPrefix("LOAN#L"),
			cond:    "PK1 = :pk AND begins_with(SK1, :sk)",
			pk:      "PATRON#42",
			sk:      "LOAN#L",
		},
		{
			name:    "sort key range",
			builder: store.QueryGSI().WithPartitionKey("42").WithSortKeyBetween("L1", "L9"),
			cond:    "PK1 = :pk AND SK1 BETWEEN :sk AND :sk2",
			pk:      "PATRON#42",
			sk:      "LOAN#L1",
			sk2:     "LOAN#L9",
		},
		{
			name:    "second index with static partition",
			builder: store.QueryGSI().OnIndex("GSI2").WithPartitionKey("LOANS").WithSortKeyLessThan("2025"),
			cond:    "PK2 = :pk AND SK2 < :sk",
			pk:      "LOANS",
			sk:      "2025",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := tt.builder.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.cond, params.KeyConditionExpression)
			assert.Equal(t, tt.pk, sval(params.ExpressionAttributeValues, ":pk"))
			assert.Equal(t, tt.sk, sval(params.ExpressionAttributeValues, ":sk"))
			assert.Equal(t, tt.sk2, sval(params.ExpressionAttributeValues, ":sk2"))
		})
	}
}

func TestGSIQueryBuilderOptions(t *testing.T) {
	store, _ := newLoanStore()

	params, err := store.QueryGSI().
		WithPartitionKey("42").
		WithFilter("Branch = :branch", map[string]types.AttributeValue{
			":branch": &types.AttributeValueMemberS{Value: "main"},
		}).
		WithLimit(10).
		Ascending(false).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "GSI1", *params.IndexName)
	assert.Equal(t, "Branch = :branch", *params.FilterExpression)
	assert.Equal(t, "main", sval(params.ExpressionAttributeValues, ":branch"))
	assert.Equal(t, int32(10), *params.Limit)
	assert.False(t, *params.ScanIndexForward)
}

func TestGSIQueryBuilderValidation(t *testing.T) {
	store, _ := newLoanStore()

	_, err := store.QueryGSI().Build()
	assert.Error(t, err)

	_, err = store.QueryGSI().OnIndex("GSI9").WithPartitionKey("42").Build()
	assert.Error(t, err)

	other := NewWithClient[unmapped](newFakeClient(), "cardreg-test")
	_, err = other.QueryGSI().WithPartitionKey("42").Build()
	assert.Error(t, err)
}

func TestUnboundGSIQuery(t *testing.T) {
	params, err := NewGSIQuery[loanRecord]().OnIndex("GSI2").WithPartitionKey("LOANS").Build()
	require.NoError(t, err)
	assert.Equal(t, "PK2 = :pk", params.KeyConditionExpression)
	assert.Equal(t, "GSI2", *params.IndexName)

	_, err = NewGSIQuery[loanRecord]().WithPartitionKey("42").Execute(context.Background())
	assert.ErrorIs(t, err, errUnbound)

	var errs []error
	for r := range NewGSIQuery[loanRecord]().WithPartitionKey("42").Stream(context.Background()) {
		errs = append(errs, r.Error)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], errUnbound)
}

func TestExpandTemplate(t *testing.T) {
	assert.Equal(t, "PATRON#7", expandTemplate("PATRON#{PatronID}", "7"))
	assert.Equal(t, "PATRON#7", expandTemplate("PATRON#{PatronID}", "PATRON#7"))
	assert.Equal(t, "abc", expandTemplate("{CreatedAt}", "abc"))
	assert.Equal(t, "LOANS", expandTemplate("LOANS", "LOANS"))
	assert.Equal(t, "TIME#x", expandTemplate("TIME#{CreatedAt}#ID#{ID}", "x"))
}

func TestTimeRangeQuery(t *testing.T) {
	store, _ := newLoanStore()
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	params, err := store.QueryByTimeRange("LOANS").OnIndex("GSI2").Between(start, end).Oldest().Build()
	require.NoError(t, err)
	assert.Equal(t, "PK2 = :pk AND SK2 BETWEEN :sk AND :sk2", params.KeyConditionExpression)
	assert.Equal(t, TimeKey(start), sval(params.ExpressionAttributeValues, ":sk"))
	assert.Equal(t, TimeKey(end), sval(params.ExpressionAttributeValues, ":sk2"))
	assert.True(t, *params.ScanIndexForward)

	q := store.QueryByTimeRange("LOANS").OnIndex("GSI2")
	q.now = func() time.Time { return time.Date(2025, time.March, 20, 15, 0, 0, 0, time.UTC) }
	params, err = q.ThisMonth().Latest().Build()
	require.NoError(t, err)
	assert.Equal(t, "PK2 = :pk AND SK2 > :sk", params.KeyConditionExpression)
	assert.Equal(t, TimeKey(start), sval(params.ExpressionAttributeValues, ":sk"))
	assert.False(t, *params.ScanIndexForward)
}

func TestTimeKeyOrdersLexically(t *testing.T) {
	a := TimeKey(time.Date(2025, time.January, 9, 23, 0, 0, 0, time.UTC))
	b := TimeKey(time.Date(2025, time.January, 10, 1, 0, 0, 0, time.FixedZone("x", 3600)))
	assert.Less(t, a, b)
	assert.Equal(t, "2025-01-10T00:00:00.000Z", b)
}
