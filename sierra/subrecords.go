/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sierra

import (
	"strings"

	"github.com/suparena/cardreg/record"
)

// Address types used by the remote system.
const (
	AddressPrimary   = "a"
	AddressSecondary = "h"
)

// Phone types used by the remote system.
const (
	PhoneTelephone = "t"
	PhoneMobile    = "o"
)

// IgnoredFixedFieldLabels are fixed-field labels left out of search
// documents.
var IgnoredFixedFieldLabels = []string{"BIRTH DATE"}

// SearchVarFieldTags are the variable-field tags kept in search documents.
var SearchVarFieldTags = []string{"x", "m"}

// Address is a postal address: free-form lines and an address type.
type Address struct {
	*record.Record
}

func NewAddress() *Address { return empty[*Address](addressSchema) }

func ParseAddress(raw any) (*Address, error) {
	return build[*Address](addressSchema, raw, false)
}

func (a *Address) Lines() []string { return a.GetStrings("lines") }
func (a *Address) Type() string { return a.GetString("type") }

// SearchValue reduces the address to city and state taken from its last
// line: the last whitespace-separated token is the state and the tokens
// before it, with commas removed, are the city. A line with fewer than two
// tokens yields the "unk" placeholder.
func (a *Address) SearchValue() (any, bool) {
	lines := a.Lines()
	if len(lines) > 0 {
		parts := strings.Fields(lines[len(lines)-1])
		if len(parts) >= 2 {
			city := strings.ReplaceAll(strings.Join(parts[:len(parts)-1], " "), ",", "")
			return map[string]any{
				"city":      city,
				"state":     parts[len(parts)-1],
				"addr_type": a.Type(),
			}, true
		}
	}
	return map[string]any{"city": "unk", "state": "unk"}, true
}

// Phone is a phone number and its type.
type Phone struct {
	*record.Record
}

func NewPhone() *Phone { return empty[*Phone](phoneSchema) }

func ParsePhone(raw any) (*Phone, error) {
	return build[*Phone](phoneSchema, raw, false)
}

func (p *Phone) Number() string { return p.GetString("number") }
func (p *Phone) Type() string { return p.GetString("type") }

// SearchValue suppresses phone numbers in search documents.
func (p *Phone) SearchValue() (any, bool) {
	return nil, false
}

// Block is a circulation block on a patron account.
type Block struct {
	*record.Record
}

func ParseBlock(raw any) (*Block, error) {
	return build[*Block](blockSchema, raw, false)
}

func (b *Block) Code() string { return b.GetString("code") }
func (b *Block) Until() string { return b.GetString("until") }

// Codes holds the four patron statistical codes.
type Codes struct {
	*record.Record
}

func ParseCodes(raw any) (*Codes, error) {
	return build[*Codes](codesSchema, raw, false)
}

// Code returns pcode1 through pcode4 for n in 1..4.
func (c *Codes) Code(n int) string {
	switch n {
	case 1:
		return c.GetString("pcode1")
	case 2:
		return c.GetString("pcode2")
	case 3:
		return c.GetString("pcode3")
	case 4:
		return c.GetString("pcode4")
	}
	return ""
}

// FixedFieldVal wraps the value of a fixed field. It projects to the bare
// value in both projections.
type FixedFieldVal struct {
	*record.Record
}

func (v *FixedFieldVal) Value() string { return v.GetString("value") }

func (v *FixedFieldVal) CanonicalValue() any {
	return v.Get("value")
}

func (v *FixedFieldVal) SearchValue() (any, bool) {
	return record.CanonicalValue(v.Get("value"))
}

// FixedField is a labelled fixed-length field of the patron record.
type FixedField struct {
	*record.Record
}

// ParseFixedField constructs a fixed field from input such as
// {"label": "PCODE3", "value": "1"}.
func ParseFixedField(raw any) (*FixedField, error) {
	return build[*FixedField](fixedFieldSchema, raw, false)
}

func (f *FixedField) Label() string { return f.GetString("label") }
func (f *FixedField) Display() string { return f.GetString("display") }

// Value returns the bare value, or "" when unset.
func (f *FixedField) Value() string {
	if v := scalarOf[*FixedFieldVal](f.Record, "value"); v != nil {
		return v.Value()
	}
	return ""
}

// SearchValue renders the field as {label: value}. Fields with an ignored
// label or without a value are suppressed.
func (f *FixedField) SearchValue() (any, bool) {
	label := f.Label()
	for _, ignored := range IgnoredFixedFieldLabels {
		if label == ignored {
			return nil, false
		}
	}
	v, ok := record.SearchValue(f.Get("value"))
	if !ok {
		return nil, false
	}
	return map[string]any{label: v}, true
}

// VarField is a variable-length field, either free content or MARC
// subfields.
type VarField struct {
	*record.Record
}

func ParseVarField(raw any) (*VarField, error) {
	return build[*VarField](varFieldSchema, raw, false)
}

func (v *VarField) FieldTag() string { return v.GetString("fieldTag") }
func (v *VarField) MarcTag() string { return v.GetString("marcTag") }
func (v *VarField) Content() string { return v.GetString("content") }
func (v *VarField) SubFields() []*SubField {
	return listOf[*SubField](v.Record, "subfields")
}

// SearchValue keeps only fields tagged as notes or messages, rendered as in
// the write projection.
func (v *VarField) SearchValue() (any, bool) {
	tag := v.FieldTag()
	for _, allowed := range SearchVarFieldTags {
		if tag == allowed {
			doc := record.Canonical(v)
			return doc, len(doc) > 0
		}
	}
	return nil, false
}

// SubField is one MARC subfield.
type SubField struct {
	*record.Record
}

func (s *SubField) Tag() string { return s.GetString("tag") }
func (s *SubField) Content() string { return s.GetString("content") }
