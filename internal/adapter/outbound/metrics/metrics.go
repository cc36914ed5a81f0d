// Package metrics exposes Prometheus instrumentation for the availability
// engine, the same promauto-backed pattern the teacher uses for its HTTP
// transport metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the engine and its adapters
// record against. Pass the same instance to every component that needs to
// observe evaluation behavior.
type Metrics struct {
	EvaluationsTotal    *prometheus.CounterVec
	EvaluationDuration  prometheus.Histogram
	CacheHitsTotal      prometheus.Counter
	CacheMissesTotal    prometheus.Counter
	RegistryCacheSize   prometheus.Gauge
	PredicateErrorTotal *prometheus.CounterVec
}

// New creates and registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		EvaluationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "availabilityd",
				Name:      "evaluations_total",
				Help:      "Total number of IsAvailable evaluations, partitioned by result.",
			},
			[]string{"result"}, // result=allow/deny
		),
		EvaluationDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "availabilityd",
				Name:      "evaluation_duration_seconds",
				Help:      "Time spent evaluating a single IsAvailable call.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		CacheHitsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "availabilityd",
				Name:      "decision_cache_hits_total",
				Help:      "Total decision cache hits.",
			},
		),
		CacheMissesTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "availabilityd",
				Name:      "decision_cache_misses_total",
				Help:      "Total decision cache misses.",
			},
		),
		RegistryCacheSize: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "availabilityd",
				Name:      "registry_cache_size",
				Help:      "Number of predicates currently resolved and cached in the evaluator registry.",
			},
		),
		PredicateErrorTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "availabilityd",
				Name:      "predicate_errors_total",
				Help:      "Total predicate construction or evaluation errors, partitioned by rule type.",
			},
			[]string{"rule_type"},
		),
	}
}

// RecordEvaluation is a convenience wrapper around EvaluationsTotal used by
// the engine's instrumented path.
func (m *Metrics) RecordEvaluation(allowed bool) {
	if m == nil {
		return
	}
	result := "deny"
	if allowed {
		result = "allow"
	}
	m.EvaluationsTotal.WithLabelValues(result).Inc()
}
