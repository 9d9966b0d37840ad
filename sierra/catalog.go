/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sierra

import (
	"github.com/suparena/cardreg/record"
	"github.com/suparena/cardreg/registry"
)

var (
	codesSchema = record.NewSchema("Codes", []record.Field{
		record.F("pcode1", record.Scalar(record.String)),
		record.F("pcode2", record.Scalar(record.String)),
		record.F("pcode3", record.Scalar(record.String)),
		record.F("pcode4", record.Scalar(record.String)),
	}, record.Wrap(func(r *record.Record) record.Typed { return &Codes{r} }))

	addressSchema = record.NewSchema("Address", []record.Field{
		record.F("lines", record.List(record.String)),
		record.F("type", record.Scalar(record.String)),
	}, record.Wrap(func(r *record.Record) record.Typed { return &Address{r} }))

	phoneSchema = record.NewSchema("Phone", []record.Field{
		record.F("number", record.Scalar(record.String)),
		record.F("type", record.Scalar(record.String)),
	}, record.Wrap(func(r *record.Record) record.Typed { return &Phone{r} }))

	blockSchema = record.NewSchema("Block", []record.Field{
		record.F("code", record.Scalar(record.String)),
		record.F("until", record.Scalar(record.String)),
	}, record.Wrap(func(r *record.Record) record.Typed { return &Block{r} }))

	fixedFieldValSchema = record.NewSchema("FixedFieldVal", []record.Field{
		record.F("value", record.Scalar(record.String)),
	}, record.Wrap(func(r *record.Record) record.Typed { return &FixedFieldVal{r} }))

	fixedFieldSchema = record.NewSchema("FixedField", []record.Field{
		record.F("label", record.Scalar(record.String)),
		record.F("value", record.Scalar(fixedFieldValSchema)),
		record.F("display", record.Scalar(record.String)),
	}, record.Wrap(func(r *record.Record) record.Typed { return &FixedField{r} }))

	subFieldSchema = record.NewSchema("SubField", []record.Field{
		record.F("tag", record.Scalar(record.String)),
		record.F("content", record.Scalar(record.String)),
	}, record.Wrap(func(r *record.Record) record.Typed { return &SubField{r} }))

	varFieldSchema = record.NewSchema("VarField", []record.Field{
		record.F("fieldTag", record.Scalar(record.String)),
		record.F("marcTag", record.Scalar(record.String)),
		record.F("ind1", record.Scalar(record.String)),
		record.F("ind2", record.Scalar(record.String)),
		record.F("content", record.Scalar(record.String)),
		record.F("subfields", record.List(subFieldSchema)),
	}, record.Wrap(func(r *record.Record) record.Typed { return &VarField{r} }))

	patronSchema = record.NewSchema("Patron", []record.Field{
		record.F("emails", record.List(record.String)),
		record.F("names", record.List(record.String)),
		record.F("addresses", record.List(addressSchema)),
		record.F("phones", record.List(phoneSchema)),
		record.F("pin", record.Scalar(record.String)),
		record.F("barcodes", record.List(record.String)),
		record.F("patronType", record.Scalar(record.Int)),
		record.F("expirationDate", record.Scalar(record.String)),
		record.F("birthDate", record.Scalar(record.String)),
		record.F("patronCodes", record.Scalar(codesSchema)),
		record.F("blockInfo", record.Scalar(blockSchema)),
		record.F("uniqueIds", record.List(record.String)),
		record.F("pMessage", record.Scalar(record.String)),
		record.F("homeLibraryCode", record.Scalar(record.String)),
		record.F("langPref", record.Scalar(record.String)),
		record.F("fixedFields", record.Map(record.Int, fixedFieldSchema)),
		record.F("varFields", record.List(varFieldSchema)),
	},
		record.Wrap(func(r *record.Record) record.Typed { return &Patron{r} }),
		record.IgnoreInSearch("uniqueIds", "phones", "names", "pin", "barcodes"),
		record.SearchAs("emails", searchEmails),
		record.SearchAs("birthDate", searchBirthDate),
	)
)

// Schemas returns every record type of the catalog, Patron first.
func Schemas() []*record.Schema {
	return []*record.Schema{
		patronSchema,
		addressSchema,
		phoneSchema,
		blockSchema,
		codesSchema,
		fixedFieldSchema,
		fixedFieldValSchema,
		varFieldSchema,
		subFieldSchema,
	}
}

func init() {
	for _, s := range Schemas() {
		registry.RegisterRecord(s)
	}
}

func build[T record.Typed](s *record.Schema, raw any, initialLoad bool) (T, error) {
	var (
		typed record.Typed
		err   error
		zero  T
	)
	if initialLoad {
		typed, err = s.Load(raw)
	} else {
		typed, err = s.New(raw)
	}
	if err != nil {
		return zero, err
	}
	return typed.(T), nil
}

func empty[T record.Typed](s *record.Schema) T {
	// construction without input cannot fail
	v, _ := build[T](s, nil, false)
	return v
}

func listOf[T any](r *record.Record, name string) []T {
	items := r.GetList(name)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if v, ok := item.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func scalarOf[T any](r *record.Record, name string) T {
	v, _ := r.Get(name).(T)
	return v
}
