/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/cardreg/datastore"
	"github.com/suparena/cardreg/datastore/cache"
	"github.com/suparena/cardreg/datastore/ddb"
	cerrors "github.com/suparena/cardreg/errors"
	"github.com/suparena/cardreg/sierra"
	"github.com/suparena/cardreg/storagemodels"
)

// MonthCount is the number of registrations created in one calendar month.
type MonthCount struct {
	Month string `json:"month"` // YYYY-MM, UTC
	Count int    `json:"count"`
}

// Store reads and writes registrations.
type Store struct {
	registrations datastore.DataStore[Registration]
	logger        *slog.Logger
	now           func() time.Time
	cacheSize     int
	cacheTTL      time.Duration
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock replaces time.Now for registration timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLookupCache serves e-mail lookups from an LRU cache of size entries.
// Entries written through the Store are evicted on write.
func WithLookupCache(size int, ttl time.Duration) Option {
	return func(s *Store) {
		s.cacheSize = size
		s.cacheTTL = ttl
	}
}

// NewStore returns a Store over ds.
func NewStore(ds datastore.DataStore[Registration], opts ...Option) *Store {
	s := &Store{
		registrations: ds,
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cacheSize > 0 {
		cached, err := cache.New(ds, s.cacheSize, s.cacheTTL,
			cache.WithKeyFunc(func(r Registration) string { return r.EmailHash }))
		if err != nil {
			s.logger.Warn("registration lookup cache disabled", "error", err)
		} else {
			s.registrations = cached
		}
	}
	return s
}

// Add records a registration for patronID. Both the e-mail address and the
// patron ID may be registered only once; repeats return an
// AlreadyExistsError. An empty location is recorded as DefaultLocation.
func (s *Store) Add(ctx context.Context, patronID, email, location string, boundary Boundary) (*Registration, error) {
	patronID = strings.TrimSpace(patronID)
	if patronID == "" {
		return nil, cerrors.NewValidationError("patronID", "required")
	}
	if strings.TrimSpace(email) == "" {
		return nil, cerrors.NewValidationError("email", "required")
	}
	if !boundary.valid() {
		return nil, cerrors.NewValidationError("boundary", fmt.Sprintf("must be -1, 0 or 1, got %d", boundary))
	}
	if location == "" {
		location = DefaultLocation
	}

	existing, err := s.LookupCardNumber(ctx, patronID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, cerrors.NewAlreadyExistsError(EntityType, patronID)
	}

	reg := Registration{
		EmailHash: sierra.HashEmail(email),
		PatronID:  patronID,
		Location:  location,
		Boundary:  boundary,
		CreatedAt: ddb.TimeKey(s.now()),
	}
	if err := s.registrations.Create(ctx, reg); err != nil {
		if cerrors.IsAlreadyExists(err) {
			return nil, cerrors.NewAlreadyExistsError(EntityType, reg.EmailHash)
		}
		return nil, fmt.Errorf("add registration: %w", err)
	}

	s.logger.Info("registration recorded",
		"patron_id", patronID,
		"location", location,
		"boundary", boundary.String())
	return &reg, nil
}

// LookupEmail returns the registration for email, or nil if there is none.
func (s *Store) LookupEmail(ctx context.Context, email string) (*Registration, error) {
	reg, err := s.registrations.GetOne(ctx, sierra.HashEmail(email))
	if cerrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	return reg, nil
}

// CheckEmail returns an AlreadyExistsError if email has been registered.
func (s *Store) CheckEmail(ctx context.Context, email string) error {
	reg, err := s.LookupEmail(ctx, email)
	if err != nil {
		return err
	}
	if reg != nil {
		return cerrors.NewAlreadyExistsError(EntityType, reg.EmailHash)
	}
	return nil
}

// LookupCardNumber returns the registration for patronID, or nil if there
// is none.
func (s *Store) LookupCardNumber(ctx context.Context, patronID string) (*Registration, error) {
	params, err := ddb.NewGSIQuery[Registration]().
		OnIndex("GSI1").
		WithPartitionKey(patronID).
		WithLimit(1).
		Build()
	if err != nil {
		return nil, err
	}

	results, err := s.registrations.Query(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("lookup card number: %w", err)
	}
	for _, r := range results {
		if reg, ok := asRegistration(r); ok && reg.PatronID == patronID {
			return reg, nil
		}
	}
	return nil, nil
}

// MarkRetrieved records when the card for email was picked up. It fails
// with a ConditionFailedError if the card was already marked.
func (s *Store) MarkRetrieved(ctx context.Context, email string) error {
	err := s.registrations.UpdateWithCondition(ctx,
		sierra.HashEmail(email),
		map[string]any{"RetrievedAt": ddb.TimeKey(s.now())},
		"attribute_exists(PK) AND attribute_not_exists(RetrievedAt)")
	if err != nil {
		return fmt.Errorf("mark retrieved: %w", err)
	}
	return nil
}

// ByMonth counts registrations per calendar month, oldest month first.
func (s *Store) ByMonth(ctx context.Context, opts ...storagemodels.StreamOption) ([]MonthCount, error) {
	params, err := ddb.NewGSIQuery[Registration]().
		OnIndex("GSI2").
		WithPartitionKey(RegistrationPartition).
		Ascending(true).
		Build()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for result := range s.registrations.Stream(ctx, params, opts...) {
		if result.Error != nil {
			return nil, fmt.Errorf("registrations by month: %w", result.Error)
		}
		created, err := strfmt.ParseDateTime(result.Item.CreatedAt)
		if err != nil {
			s.logger.Warn("skipping registration with bad timestamp",
				"patron_id", result.Item.PatronID,
				"created_at", result.Item.CreatedAt)
			continue
		}
		counts[time.Time(created).UTC().Format("2006-01")]++
	}

	out := make([]MonthCount, 0, len(counts))
	for _, month := range slices.Sorted(maps.Keys(counts)) {
		out = append(out, MonthCount{Month: month, Count: counts[month]})
	}
	return out, nil
}

func asRegistration(v any) (*Registration, bool) {
	switch r := v.(type) {
	case Registration:
		return &r, true
	case *Registration:
		return r, r != nil
	}
	return nil, false
}
