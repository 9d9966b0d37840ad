/*
Package searchindex stores patron search documents and describes the index
they are served from.

The field mapping is YAML. A built-in mapping for patrons is embedded; a
replacement can be loaded with LoadMapping. IndexDefinition renders the
create-index request, including the "keylower" analyzer used for
case-insensitive exact matching:

	m, _ := searchindex.DefaultMapping()
	def := m.IndexDefinition("patron_v2")

Indexer.Index writes the search projection of a patron as a Document. The
projection never contains raw e-mail addresses, names or PINs.
*/
package searchindex
