/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sierra

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/suparena/cardreg/record"
)

// Patron is a library patron as exchanged with the remote API.
type Patron struct {
	*record.Record
}

// NewPatron returns an empty patron for building a create or update body.
func NewPatron() *Patron {
	return empty[*Patron](patronSchema)
}

// ParsePatron constructs a patron from locally built input.
func ParsePatron(raw any) (*Patron, error) {
	return build[*Patron](patronSchema, raw, false)
}

// LoadPatron constructs a patron from an API response, keeping the
// received values as the loaded state.
func LoadPatron(raw any) (*Patron, error) {
	return build[*Patron](patronSchema, raw, true)
}

// UnmarshalJSON decodes an API response into p as an initial load.
func (p *Patron) UnmarshalJSON(data []byte) error {
	raw, err := decodeJSON(data)
	if err != nil {
		return err
	}
	rec, err := patronSchema.Bind(p, raw)
	if err != nil {
		return err
	}
	p.Record = rec
	return nil
}

// ID returns the identifier assigned by the remote system, or "" for a
// patron that has not been created yet.
func (p *Patron) ID() string {
	switch id := p.Get("id").(type) {
	case nil:
		return ""
	case json.Number:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

func (p *Patron) Emails() []string { return p.GetStrings("emails") }
func (p *Patron) Names() []string { return p.GetStrings("names") }
func (p *Patron) Barcodes() []string { return p.GetStrings("barcodes") }
func (p *Patron) UniqueIDs() []string { return p.GetStrings("uniqueIds") }
func (p *Patron) Pin() string { return p.GetString("pin") }
func (p *Patron) BirthDate() string { return p.GetString("birthDate") }
func (p *Patron) PMessage() string { return p.GetString("pMessage") }
func (p *Patron) LangPref() string { return p.GetString("langPref") }
func (p *Patron) HomeLibrary() string { return p.GetString("homeLibraryCode") }
func (p *Patron) Expiration() string { return p.GetString("expirationDate") }
func (p *Patron) Addresses() []*Address { return listOf[*Address](p.Record, "addresses") }
func (p *Patron) Phones() []*Phone { return listOf[*Phone](p.Record, "phones") }
func (p *Patron) VarFields() []*VarField { return listOf[*VarField](p.Record, "varFields") }
func (p *Patron) Codes() *Codes { return scalarOf[*Codes](p.Record, "patronCodes") }
func (p *Patron) Block() *Block { return scalarOf[*Block](p.Record, "blockInfo") }

// PatronType returns the patron type code and whether it is set.
func (p *Patron) PatronType() (int, bool) {
	return p.GetInt("patronType")
}

// FixedFields returns the fixed fields keyed by their numeric code.
func (p *Patron) FixedFields() map[int]*FixedField {
	out := make(map[int]*FixedField)
	for k, v := range p.GetMap("fixedFields") {
		code, ok := k.(int)
		if !ok {
			continue
		}
		if ff, ok := v.(*FixedField); ok {
			out[code] = ff
		}
	}
	return out
}

// SearchDocument renders the patron's search projection.
func (p *Patron) SearchDocument() map[string]any {
	return record.Search(p)
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return raw, nil
}
