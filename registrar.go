/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cardreg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	cerrors "github.com/suparena/cardreg/errors"
	"github.com/suparena/cardreg/record"
	"github.com/suparena/cardreg/searchindex"
	"github.com/suparena/cardreg/sierra"
	"github.com/suparena/cardreg/tracking"
)

// PatronAPI creates patrons in the library system.
type PatronAPI interface {
	// CreatePatron submits the write projection of a patron and returns
	// the id the library system assigned.
	CreatePatron(ctx context.Context, patron map[string]any) (string, error)
}

// Tracker records registrations. *tracking.Store implements it.
type Tracker interface {
	CheckEmail(ctx context.Context, email string) error
	Add(ctx context.Context, patronID, email, location string, boundary tracking.Boundary) (*tracking.Registration, error)
}

// Indexer stores search documents. *searchindex.Indexer implements it.
type Indexer interface {
	Index(ctx context.Context, patronID string, patron *sierra.Patron) (*searchindex.Document, error)
}

// Result describes a completed registration. Document is nil when the
// search document could not be stored.
type Result struct {
	PatronID     string
	Patron       *sierra.Patron
	Registration *tracking.Registration
	Document     *searchindex.Document
}

// Registrar turns registration forms into patrons.
type Registrar struct {
	api        PatronAPI
	tracker    Tracker
	indexer    Indexer
	patronType int
	location   string
	metrics    *Metrics
	tracer     trace.Tracer
	logger     *slog.Logger
	now        func() time.Time
}

// RegistrarOption configures a Registrar.
type RegistrarOption func(*Registrar)

// WithPatronType sets the patron type given to new patrons.
func WithPatronType(patronType int) RegistrarOption {
	return func(r *Registrar) {
		r.patronType = patronType
	}
}

// WithDefaultLocation sets the location recorded when Register is not
// given one.
func WithDefaultLocation(location string) RegistrarOption {
	return func(r *Registrar) {
		r.location = location
	}
}

func WithMetrics(m *Metrics) RegistrarOption {
	return func(r *Registrar) {
		r.metrics = m
	}
}

// WithTracer replaces the tracer taken from the global provider.
func WithTracer(t trace.Tracer) RegistrarOption {
	return func(r *Registrar) {
		r.tracer = t
	}
}

func WithLogger(logger *slog.Logger) RegistrarOption {
	return func(r *Registrar) {
		r.logger = logger
	}
}

// NewRegistrar returns a Registrar. A nil indexer disables search indexing.
func NewRegistrar(api PatronAPI, tracker Tracker, indexer Indexer, opts ...RegistrarOption) (*Registrar, error) {
	if api == nil {
		return nil, errors.New("registrar: patron API is required")
	}
	if tracker == nil {
		return nil, errors.New("registrar: tracker is required")
	}
	r := &Registrar{
		api:      api,
		tracker:  tracker,
		indexer:  indexer,
		location: tracking.DefaultLocation,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer("github.com/suparena/cardreg")
	}
	return r, nil
}

// RegisterOption adjusts a single registration.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	location string
	boundary tracking.Boundary
}

// AtLocation records where the request was made, such as "internal" for
// in-branch kiosks.
func AtLocation(location string) RegisterOption {
	return func(o *registerOptions) {
		o.location = location
	}
}

// InBoundary records whether the registrant lives in the service area.
func InBoundary(b tracking.Boundary) RegisterOption {
	return func(o *registerOptions) {
		o.boundary = b
	}
}

// Register creates a patron from form. The e-mail address must not have
// been registered before; a repeat fails with an AlreadyExistsError and
// an incomplete form with a ValidationError. Once the library system accepts the patron, the
// registration is recorded and the search document stored concurrently;
// a failure to store the search document is logged and does not fail the
// registration.
func (r *Registrar) Register(ctx context.Context, form Form, opts ...RegisterOption) (res *Result, err error) {
	o := registerOptions{location: r.location, boundary: tracking.BoundaryUnknown}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, span := r.tracer.Start(ctx, "cardreg.Register", trace.WithAttributes(
		attribute.String("cardreg.location", o.location),
		attribute.String("cardreg.boundary", o.boundary.String()),
	))
	start := r.now()
	outcome := OutcomeRegistered
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("cardreg.outcome", outcome))
		span.End()
		if r.metrics != nil {
			r.metrics.observe(outcome, r.now().Sub(start).Seconds())
		}
	}()

	if err := form.Validate(); err != nil {
		outcome = OutcomeInvalid
		return nil, err
	}
	if err := r.tracker.CheckEmail(ctx, form.Email); err != nil {
		outcome = OutcomeTrackingError
		if cerrors.IsAlreadyExists(err) {
			outcome = OutcomeDuplicate
		}
		return nil, err
	}

	patron, err := BuildPatron(form, r.patronType)
	if err != nil {
		outcome = OutcomeInvalid
		return nil, err
	}

	patronID, err := r.api.CreatePatron(ctx, record.Canonical(patron))
	if err == nil && patronID == "" {
		err = errors.New("library system returned no patron id")
	}
	if err != nil {
		outcome = OutcomeAPIError
		return nil, fmt.Errorf("create patron: %w", err)
	}
	span.SetAttributes(attribute.String("cardreg.patron_id", patronID))
	if err := patron.Set(string(sierra.FieldID), patronID); err != nil {
		return nil, err
	}

	res = &Result{PatronID: patronID, Patron: patron}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reg, err := r.tracker.Add(gctx, patronID, form.Email, o.location, o.boundary)
		if err != nil {
			return fmt.Errorf("record registration: %w", err)
		}
		res.Registration = reg
		return nil
	})
	if r.indexer != nil {
		g.Go(func() error {
			doc, err := r.indexer.Index(gctx, patronID, patron)
			if err != nil {
				r.logger.Warn("search indexing failed", "patron_id", patronID, "error", err)
				if r.metrics != nil {
					r.metrics.IndexFailures.Inc()
				}
				return nil
			}
			res.Document = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		outcome = OutcomeTrackingError
		return res, err
	}

	r.logger.Info("patron registered",
		"patron_id", patronID,
		"location", o.location,
		"boundary", o.boundary.String())
	return res, nil
}
