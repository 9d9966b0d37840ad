/*
Package sierra declares the patron record of the remote library system and
its sub-records on top of package record.

Record types and their fields follow the remote API's vocabulary exactly,
so the write projection of a Patron can be sent as a create or update body:

	p := sierra.NewPatron()
	_ = p.Set("names", "DOE, JANE")
	_ = p.Set("emails", "jane@example.org")
	_ = p.Set("addresses", map[string]any{
	    "type":  "a",
	    "lines": []any{"123 MAIN ST", "ANYTOWN NC 27514"},
	})
	body, _ := json.Marshal(p)

Patron responses from the API are decoded with LoadPatron (or
json.Unmarshal), which keeps the received values as the loaded state.

The search projection (record.Search) hashes e-mail addresses, replaces the
birth date with an age bucket, reduces addresses to city and state, drops
phones, names, PINs, barcodes and unique IDs, keeps only message-like
variable fields and flattens fixed fields into label/value pairs.
*/
package sierra
