/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sierra

import "strings"

// PatronField names a field of the remote patron API.
type PatronField string

const (
	FieldID              PatronField = "id"
	FieldUpdatedDate     PatronField = "updatedDate"
	FieldCreatedDate     PatronField = "createdDate"
	FieldDeletedDate     PatronField = "deletedDate"
	FieldDeleted         PatronField = "deleted"
	FieldSuppressed      PatronField = "suppressed"
	FieldNames           PatronField = "names"
	FieldBarcodes        PatronField = "barcodes"
	FieldExpirationDate  PatronField = "expirationDate"
	FieldBirthDate       PatronField = "birthDate"
	FieldEmails          PatronField = "emails"
	FieldPatronType      PatronField = "patronType"
	FieldPatronCodes     PatronField = "patronCodes"
	FieldHomeLibraryCode PatronField = "homeLibraryCode"
	FieldMessage         PatronField = "message"
	FieldBlockInfo       PatronField = "blockInfo"
	FieldAddresses       PatronField = "addresses"
	FieldPhones          PatronField = "phones"
	FieldUniqueIDs       PatronField = "uniqueIds"
	FieldMoneyOwed       PatronField = "moneyOwed"
	FieldPMessage        PatronField = "pMessage"
	FieldLangPref        PatronField = "langPref"
	FieldFixedFields     PatronField = "fixedFields"
	FieldVarFields       PatronField = "varFields"
)

type patronFields []PatronField

// PatronFields is the field vocabulary of the remote patron API, in the
// order the API documents it.
var PatronFields = patronFields{
	FieldID,
	FieldUpdatedDate,
	FieldCreatedDate,
	FieldDeletedDate,
	FieldDeleted,
	FieldSuppressed,
	FieldNames,
	FieldBarcodes,
	FieldExpirationDate,
	FieldBirthDate,
	FieldEmails,
	FieldPatronType,
	FieldPatronCodes,
	FieldHomeLibraryCode,
	FieldMessage,
	FieldBlockInfo,
	FieldAddresses,
	FieldPhones,
	FieldUniqueIDs,
	FieldMoneyOwed,
	FieldPMessage,
	FieldLangPref,
	FieldFixedFields,
	FieldVarFields,
}

// ListAll joins every field name with commas, for a fields= query parameter.
func (f patronFields) ListAll() string {
	names := make([]string, len(f))
	for i, field := range f {
		names[i] = string(field)
	}
	return strings.Join(names, ",")
}
