/*
Package record implements schema-driven typed records.

A Schema declares, per field, the shape of value the field may hold:

	Untyped            stored verbatim
	Scalar(T)          one value of T
	List(T)            an ordered sequence of T (List(nil) is untyped)
	Map(K, V)          a mapping from K keys to V values

T and V are either primitives (String, Int, Bool, Float) or other schemas,
which makes nested record graphs possible:

	var Address = record.NewSchema("Address", []record.Field{
	    record.F("lines", record.List(record.String)),
	    record.F("type", record.Scalar(record.String)),
	})

Every assignment is routed through the declared shape. Scalars are coerced
with a best-effort fallback to the zero value, a whole sequence replaces a
list while a single item is appended, and mapping input is upserted into a
map field key by key. Keys that a schema does not declare are kept verbatim.

Records keep two slots per declared field. Values written while a record is
being constructed with an initial load land in the loaded slot; everything
written afterwards lands in the working slot. Reads prefer the working slot.

Two projections render a record graph:

	record.Canonical(r)   sparse document with only the fields carrying data
	record.Search(r)      redacted document for a search index

Types customise the projections by implementing CanonicalProjector or
SearchProjector, and schemas add per-field search transforms with SearchAs.
*/
package record
