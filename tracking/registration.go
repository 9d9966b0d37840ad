/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tracking

import (
	"github.com/suparena/cardreg/registry"
)

// EntityType names registrations in the single-table store.
const EntityType = "Registration"

// RegistrationPartition is the GSI2 partition holding every registration,
// ordered by CreatedAt.
const RegistrationPartition = "REGISTRATION"

// DefaultLocation is recorded when the caller does not know where the
// request came from.
const DefaultLocation = "unknown"

// Boundary records whether the registrant lives inside the library's
// service area.
type Boundary int

const (
	BoundaryUnknown Boundary = -1
	BoundaryOutside Boundary = 0
	BoundaryInside  Boundary = 1
)

func (b Boundary) String() string {
	switch b {
	case BoundaryUnknown:
		return "unknown"
	case BoundaryOutside:
		return "outside"
	case BoundaryInside:
		return "inside"
	}
	return "invalid"
}

func (b Boundary) valid() bool {
	return b >= BoundaryUnknown && b <= BoundaryInside
}

// Registration is one card request. The e-mail address is only ever stored
// hashed.
type Registration struct {
	EmailHash   string   `dynamodbav:"EmailHash" json:"email_hash"`
	PatronID    string   `dynamodbav:"PatronID" json:"patron_id"`
	Location    string   `dynamodbav:"Location" json:"location"`
	Boundary    Boundary `dynamodbav:"Boundary" json:"boundary"`
	CreatedAt   string   `dynamodbav:"CreatedAt" json:"created_at"`
	RetrievedAt string   `dynamodbav:"RetrievedAt,omitempty" json:"retrieved_at,omitempty"`
}

func init() {
	registry.RegisterEntity[Registration](EntityType, map[string]string{
		"PK":  "REG#{EmailHash}",
		"SK":  "REG#{EmailHash}",
		"PK1": "PATRON#{PatronID}",
		"SK1": "REG#{EmailHash}",
		"PK2": RegistrationPartition,
		"SK2": "{CreatedAt}",
	})
}
