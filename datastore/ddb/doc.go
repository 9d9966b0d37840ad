/*
Package ddb implements datastore.DataStore on a single DynamoDB table.

Every stored type registers an index map whose templates name the key
attributes. Macros in braces are replaced with the entity's own attribute
values when it is written:

	registry.RegisterEntity[tracking.Registration]("Registration", map[string]string{
	    "PK":  "REG#{EmailHash}",
	    "SK":  "REG#{EmailHash}",
	    "PK1": "PATRON#{PatronID}",  // GSI1
	    "SK1": "REG#{EmailHash}",
	    "PK2": "REGISTRATION",       // GSI2
	    "SK2": "{CreatedAt}",
	})

Reads by key substitute the key string for every macro, so GetOne(ctx, hash)
addresses PK = SK = "REG#<hash>". Items carry an EntityType attribute so
that Query can decode mixed result sets through the type registry.

Secondary indexes are queried with QueryGSI or, for time-ordered sort keys,
QueryByTimeRange:

	regs, err := store.QueryByTimeRange("REGISTRATION").
	    OnIndex("GSI2").
	    ThisMonth().
	    Execute(ctx)

Stream pages through large result sets with retries on throttling.
*/
package ddb
