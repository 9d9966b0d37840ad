/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cardreg

import (
	"fmt"
	"strings"
	"time"

	"github.com/invopop/jsonschema"

	cerrors "github.com/suparena/cardreg/errors"
	"github.com/suparena/cardreg/sierra"
)

// Form is a self-registration request as submitted by the web form.
type Form struct {
	FirstName  string `json:"g587-firstname" jsonschema:"minLength=1,title=First name"`
	LastName   string `json:"g587-lastname" jsonschema:"minLength=1,title=Last name"`
	Birthday   string `json:"g587-birthday" jsonschema:"minLength=1,title=Birthday,description=Date of birth such as 1990-04-01 or 04/01/1990"`
	Street     string `json:"g587-address" jsonschema:"minLength=1,title=Street address"`
	City       string `json:"g587-city" jsonschema:"minLength=1,title=City"`
	State      string `json:"g587-state" jsonschema:"minLength=2,maxLength=2,title=State"`
	PostalCode string `json:"g587-zipcode" jsonschema:"minLength=5,title=ZIP code"`
	Phone      string `json:"g587-telephone,omitempty" jsonschema:"title=Telephone"`
	Email      string `json:"g587-email" jsonschema:"format=email,title=E-mail"`
	Password   string `json:"g587-password" jsonschema:"minLength=4,title=PIN"`
}

// birthdayLayouts are tried after the ISO forms sierra.ParseBirthDate
// accepts.
var birthdayLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Validate checks that every required field is present.
func (f Form) Validate() error {
	required := []struct {
		field, value string
	}{
		{"g587-firstname", f.FirstName},
		{"g587-lastname", f.LastName},
		{"g587-birthday", f.Birthday},
		{"g587-address", f.Street},
		{"g587-city", f.City},
		{"g587-state", f.State},
		{"g587-zipcode", f.PostalCode},
		{"g587-email", f.Email},
		{"g587-password", f.Password},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return cerrors.NewValidationError(r.field, "required")
		}
	}
	return nil
}

// BuildPatron converts f into a new patron record of the given type.
// Names and address lines are upper-cased, the birthday is normalised to
// YYYY-MM-DD and the e-mail address is lower-cased.
func BuildPatron(f Form, patronType int) (*sierra.Patron, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	birth, err := parseBirthday(f.Birthday)
	if err != nil {
		return nil, cerrors.NewValidationError("g587-birthday", err.Error())
	}

	upper := func(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
	raw := map[string]any{
		string(sierra.FieldNames):      fmt.Sprintf("%s, %s", upper(f.LastName), upper(f.FirstName)),
		string(sierra.FieldBirthDate):  birth.Format("2006-01-02"),
		string(sierra.FieldPatronType): patronType,
		string(sierra.FieldEmails):     strings.ToLower(strings.TrimSpace(f.Email)),
		"pin":                          strings.TrimSpace(f.Password),
	}
	raw[string(sierra.FieldAddresses)] = map[string]any{
		"type": sierra.AddressPrimary,
		"lines": []any{
			upper(f.Street),
			fmt.Sprintf("%s %s %s", upper(f.City), upper(f.State), upper(f.PostalCode)),
		},
	}
	if phone := strings.TrimSpace(f.Phone); phone != "" {
		raw[string(sierra.FieldPhones)] = map[string]any{
			"type":   sierra.PhoneTelephone,
			"number": phone,
		}
	}
	return sierra.ParsePatron(raw)
}

func parseBirthday(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := sierra.ParseBirthDate(s); err == nil {
		return t, nil
	}
	for _, layout := range birthdayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// FormSchema returns the JSON Schema describing Form.
func FormSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(new(Form))
	s.Title = "Library card registration"
	return s
}
