// Package metrics exposes Prometheus counters for recipe generation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes. Upstream and parse failures are both reported to the
// caller as the same 500, so these labels are the only place they differ.
const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeUpstreamError   = "upstream_error"
	OutcomeParseError      = "parse_error"
	OutcomeInternalError   = "internal_error"
	OutcomeRateLimited     = "rate_limited"
)

var outcomes = []string{
	OutcomeSuccess,
	OutcomeValidationError,
	OutcomeUpstreamError,
	OutcomeParseError,
	OutcomeInternalError,
	OutcomeRateLimited,
}

// Metrics holds the generation collectors. A nil *Metrics is a no-op.
type Metrics struct {
	generations  *prometheus.CounterVec
	modelLatency prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		generations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "anong_ulam_generations_total",
				Help: "Recipe generation requests by outcome",
			},
			[]string{"outcome"},
		),
		modelLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "anong_ulam_generation_duration_seconds",
				Help:    "Latency of the generative model call in seconds",
				Buckets: []float64{0.5, 1, 2, 4, 8, 15, 30, 60},
			},
		),
	}
	for _, o := range outcomes {
		m.generations.WithLabelValues(o)
	}
	return m
}

// RecordOutcome counts one request with the given outcome.
func (m *Metrics) RecordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(outcome).Inc()
}

// ObserveModelLatency records how long the model call took.
func (m *Metrics) ObserveModelLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.modelLatency.Observe(d.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
