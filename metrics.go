/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cardreg

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registration outcomes recorded by Metrics.
const (
	OutcomeRegistered    = "registered"
	OutcomeDuplicate     = "duplicate"
	OutcomeInvalid       = "invalid"
	OutcomeAPIError      = "api_error"
	OutcomeTrackingError = "tracking_error"
)

// Metrics holds Prometheus collectors for registrations.
type Metrics struct {
	Registrations       *prometheus.CounterVec
	RegistrationLatency prometheus.Histogram
	IndexFailures       prometheus.Counter
}

// NewMetrics registers the registration collectors with reg. A nil reg
// uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardreg_registrations_total",
			Help: "Total number of registration attempts, labeled by outcome",
		}, []string{"outcome"}),
		RegistrationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cardreg_registration_latency_seconds",
			Help:    "Latency of registration requests in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		IndexFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardreg_search_index_failures_total",
			Help: "Total number of registrations whose search document could not be stored",
		}),
	}
}

func (m *Metrics) observe(outcome string, seconds float64) {
	m.Registrations.WithLabelValues(outcome).Inc()
	m.RegistrationLatency.Observe(seconds)
}
