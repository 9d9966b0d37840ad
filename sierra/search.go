/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sierra

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
)

// now is the clock used for age buckets.
var now = time.Now

type ageBucket struct {
	upTo  int
	label string
}

// ageBuckets are ordered by their inclusive upper bound.
var ageBuckets = []ageBucket{
	{12, "0-12"},
	{17, "13-17"},
	{24, "18-24"},
	{34, "25-34"},
	{44, "35-44"},
	{54, "45-54"},
	{64, "55-64"},
	{120, "65+"},
}

// HashEmail returns the hex SHA-512 digest of the trimmed, lower-cased
// address. Search documents and the registration log store only digests.
func HashEmail(email string) string {
	sum := sha512.Sum512([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// AgeRange returns the bucket label for an age in years.
func AgeRange(age int) (string, bool) {
	if age < 0 {
		return "", false
	}
	for _, b := range ageBuckets {
		if age <= b.upTo {
			return b.label, true
		}
	}
	return "", false
}

// Age returns the number of whole years between birth and at.
func Age(birth, at time.Time) int {
	years := at.Year() - birth.Year()
	if at.Month() < birth.Month() || (at.Month() == birth.Month() && at.Day() < birth.Day()) {
		years--
	}
	return years
}

// ParseBirthDate accepts an ISO date (2006-01-02) or an RFC 3339 date-time.
func ParseBirthDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var d strfmt.Date
	if err := d.UnmarshalText([]byte(s)); err == nil {
		return time.Time(d), nil
	}
	dt, err := strfmt.ParseDateTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse birth date %q: %w", s, err)
	}
	return time.Time(dt), nil
}

// AgeRangeOf returns the bucket for a birth date string relative to the
// current time.
func AgeRangeOf(birthDate string) (string, bool) {
	birth, err := ParseBirthDate(birthDate)
	if err != nil {
		return "", false
	}
	return AgeRange(Age(birth, now()))
}

func searchEmails(v any) (string, any, bool) {
	emails, _ := v.([]any)
	hashes := make([]any, 0, len(emails))
	for _, e := range emails {
		s, ok := e.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		hashes = append(hashes, HashEmail(s))
	}
	if len(hashes) == 0 {
		return "", nil, false
	}
	return "emails", hashes, true
}

func searchBirthDate(v any) (string, any, bool) {
	s, _ := v.(string)
	if s == "" {
		return "", nil, false
	}
	bucket, ok := AgeRangeOf(s)
	if !ok {
		return "", nil, false
	}
	return "age_range", bucket, true
}
