/*
Package registry holds the process-wide lookup tables used by cardreg.

Record types:
Record schemas are registered by their type name so that raw input can be
decoded by name, as the patronmap command does:

	s, ok := registry.LookupRecord("Patron")

Entity types:
Stored entities carry an EntityType attribute. The registry maps that name
to an unmarshal function and maps the Go type to its key templates:

	registry.RegisterEntity[tracking.Registration]("Registration", map[string]string{
	    "PK":  "REG#{EmailHash}",
	    "SK":  "REG#{EmailHash}",
	    "PK1": "PATRON#{PatronID}",
	    "SK1": "REG#{EmailHash}",
	})

Registration normally happens in init functions. All tables are safe for
concurrent use.
*/
package registry
