/*
Package storagemodels defines the query and streaming types shared by the
datastore implementations.

QueryParams carries a key condition and optional index:

	params := &storagemodels.QueryParams{
	    IndexName:              aws.String("GSI1"),
	    KeyConditionExpression: "PK1 = :pk",
	    ExpressionAttributeValues: map[string]types.AttributeValue{
	        ":pk": &types.AttributeValueMemberS{Value: "PATRON#1234567"},
	    },
	}

Streams deliver StreamResult values and are tuned with options:

	results := store.Stream(ctx, params,
	    storagemodels.WithPageSize(25),
	    storagemodels.WithMaxRetries(3),
	)
*/
package storagemodels
