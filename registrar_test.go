/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cardreg_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/suparena/cardreg"
	dsmock "github.com/suparena/cardreg/datastore/mock"
	"github.com/suparena/cardreg/errors"
	"github.com/suparena/cardreg/searchindex"
	"github.com/suparena/cardreg/sierra"
	"github.com/suparena/cardreg/tracking"
)

type patronAPIMock struct {
	mock.Mock
}

func (m *patronAPIMock) CreatePatron(ctx context.Context, patron map[string]any) (string, error) {
	args := m.Called(ctx, patron)
	return args.String(0), args.Error(1)
}

type fixture struct {
	api       *patronAPIMock
	regs      *dsmock.DataStore[tracking.Registration]
	docs      *dsmock.DataStore[searchindex.Document]
	tracker   *tracking.Store
	metrics   *prometheus.Registry
	registrar *cardreg.Registrar
}

func newFixture(t *testing.T, opts ...cardreg.RegistrarOption) *fixture {
	t.Helper()
	f := &fixture{
		api: new(patronAPIMock),
		regs: dsmock.New[tracking.Registration]().
			WithGetKeyFunc(func(r tracking.Registration) string { return r.EmailHash }),
		docs: dsmock.New[searchindex.Document]().
			WithGetKeyFunc(func(d searchindex.Document) string { return d.ID }),
		metrics: prometheus.NewRegistry(),
	}
	f.tracker = tracking.NewStore(f.regs)

	indexer, err := searchindex.NewIndexer(f.docs)
	require.NoError(t, err)

	opts = append([]cardreg.RegistrarOption{
		cardreg.WithPatronType(15),
		cardreg.WithMetrics(cardreg.NewMetrics(f.metrics)),
	}, opts...)
	f.registrar, err = cardreg.NewRegistrar(f.api, f.tracker, indexer, opts...)
	require.NoError(t, err)
	return f
}

// counter returns the value of the named counter, restricted to the given
// outcome label when one is set.
func (f *fixture) counter(t *testing.T, name, outcome string) float64 {
	t.Helper()
	families, err := f.metrics.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if outcome == "" {
				return m.GetCounter().GetValue()
			}
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "outcome" && lp.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestNewRegistrarRequiresDependencies(t *testing.T) {
	tracker := tracking.NewStore(dsmock.New[tracking.Registration]())

	_, err := cardreg.NewRegistrar(nil, tracker, nil)
	assert.Error(t, err)

	_, err = cardreg.NewRegistrar(new(patronAPIMock), nil, nil)
	assert.Error(t, err)

	r, err := cardreg.NewRegistrar(new(patronAPIMock), tracker, nil)
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.api.On("CreatePatron", mock.Anything, mock.MatchedBy(func(body map[string]any) bool {
		return assert.ObjectsAreEqual([]any{"DOE, JANE"}, body["names"]) &&
			assert.ObjectsAreEqual([]any{"jane.doe@example.org"}, body["emails"]) &&
			body["patronType"] == 15 &&
			body["pin"] == "8888"
	})).Return("1234567", nil).Once()

	res, err := f.registrar.Register(ctx, testForm(),
		cardreg.AtLocation("internal"),
		cardreg.InBoundary(tracking.BoundaryInside))
	require.NoError(t, err)
	f.api.AssertExpectations(t)

	assert.Equal(t, "1234567", res.PatronID)
	assert.Equal(t, "1234567", res.Patron.ID())

	require.NotNil(t, res.Registration)
	assert.Equal(t, "1234567", res.Registration.PatronID)
	assert.Equal(t, sierra.HashEmail("jane.doe@example.org"), res.Registration.EmailHash)
	assert.Equal(t, "internal", res.Registration.Location)
	assert.Equal(t, tracking.BoundaryInside, res.Registration.Boundary)

	require.NotNil(t, res.Document)
	assert.Equal(t, "1234567", res.Document.PatronID)
	assert.Equal(t, []any{sierra.HashEmail("jane.doe@example.org")}, res.Document.Body["emails"])
	assert.NotContains(t, res.Document.Body, "pin")

	assert.Equal(t, 1, f.regs.Count())
	assert.Equal(t, 1, f.docs.Count())
	assert.Equal(t, float64(1), f.counter(t, "cardreg_registrations_total", cardreg.OutcomeRegistered))

	err = f.tracker.CheckEmail(ctx, "JANE.DOE@example.org")
	assert.True(t, errors.IsAlreadyExists(err))
}

func TestRegisterDefaults(t *testing.T) {
	f := newFixture(t, cardreg.WithDefaultLocation("external"))
	f.api.On("CreatePatron", mock.Anything, mock.Anything).Return("42", nil).Once()

	res, err := f.registrar.Register(context.Background(), testForm())
	require.NoError(t, err)
	assert.Equal(t, "external", res.Registration.Location)
	assert.Equal(t, tracking.BoundaryUnknown, res.Registration.Boundary)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.tracker.Add(ctx, "7654321", "jane.doe@example.org", "", tracking.BoundaryUnknown)
	require.NoError(t, err)

	res, err := f.registrar.Register(ctx, testForm())
	assert.Nil(t, res)
	assert.True(t, errors.IsAlreadyExists(err))
	f.api.AssertNotCalled(t, "CreatePatron", mock.Anything, mock.Anything)
	assert.Equal(t, float64(1), f.counter(t, "cardreg_registrations_total", cardreg.OutcomeDuplicate))
}

func TestRegisterInvalidForm(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*cardreg.Form)
	}{
		{"missing email", func(f *cardreg.Form) { f.Email = "" }},
		{"bad birthday", func(f *cardreg.Form) { f.Birthday = "yesterday" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			form := testForm()
			tt.mutate(&form)

			_, err := f.registrar.Register(context.Background(), form)
			assert.True(t, errors.IsValidationError(err))
			f.api.AssertNotCalled(t, "CreatePatron", mock.Anything, mock.Anything)
			assert.Equal(t, 0, f.regs.Count())
			assert.Equal(t, float64(1), f.counter(t, "cardreg_registrations_total", cardreg.OutcomeInvalid))
		})
	}
}

func TestRegisterAPIFailure(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		f := newFixture(t)
		f.api.On("CreatePatron", mock.Anything, mock.Anything).Return("", stderrors.New("503 service unavailable")).Once()

		res, err := f.registrar.Register(context.Background(), testForm())
		assert.Nil(t, res)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "create patron")
		assert.Equal(t, 0, f.regs.Count())
		assert.Equal(t, 0, f.docs.Count())
		assert.Equal(t, float64(1), f.counter(t, "cardreg_registrations_total", cardreg.OutcomeAPIError))
	})

	t.Run("no id", func(t *testing.T) {
		f := newFixture(t)
		f.api.On("CreatePatron", mock.Anything, mock.Anything).Return("", nil).Once()

		_, err := f.registrar.Register(context.Background(), testForm())
		require.Error(t, err)
		assert.Equal(t, 0, f.regs.Count())
		assert.Equal(t, float64(1), f.counter(t, "cardreg_registrations_total", cardreg.OutcomeAPIError))
	})
}

func TestRegisterToleratesIndexFailure(t *testing.T) {
	f := newFixture(t)
	f.docs.WithPutError(stderrors.New("throttled"))
	f.api.On("CreatePatron", mock.Anything, mock.Anything).Return("1234567", nil).Once()

	res, err := f.registrar.Register(context.Background(), testForm())
	require.NoError(t, err)
	assert.Nil(t, res.Document)
	assert.NotNil(t, res.Registration)
	assert.Equal(t, 1, f.regs.Count())
	assert.Equal(t, float64(1), f.counter(t, "cardreg_search_index_failures_total", ""))
	assert.Equal(t, float64(1), f.counter(t, "cardreg_registrations_total", cardreg.OutcomeRegistered))
}

func TestRegisterTrackingFailure(t *testing.T) {
	f := newFixture(t)
	f.regs.WithPutError(stderrors.New("table unavailable"))
	f.api.On("CreatePatron", mock.Anything, mock.Anything).Return("1234567", nil).Once()

	res, err := f.registrar.Register(context.Background(), testForm())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record registration")

	require.NotNil(t, res)
	assert.Equal(t, "1234567", res.PatronID)
	assert.Nil(t, res.Registration)
	assert.Equal(t, float64(1), f.counter(t, "cardreg_registrations_total", cardreg.OutcomeTrackingError))
}

func TestRegisterWithoutIndexer(t *testing.T) {
	api := new(patronAPIMock)
	api.On("CreatePatron", mock.Anything, mock.Anything).Return("1234567", nil).Once()
	tracker := tracking.NewStore(dsmock.New[tracking.Registration]().
		WithGetKeyFunc(func(r tracking.Registration) string { return r.EmailHash }))

	r, err := cardreg.NewRegistrar(api, tracker, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := r.Register(ctx, testForm())
	require.NoError(t, err)
	assert.NotNil(t, res.Registration)
	assert.Nil(t, res.Document)
}
