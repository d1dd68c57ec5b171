package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the expression engine.
type Metrics struct {
	// Compilation
	parses      prometheus.Counter
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	// Evaluation
	evaluations       *prometheus.CounterVec
	evalDuration      prometheus.Histogram
	rateLimitDenials  prometheus.Counter

	// Interpolation
	interpolations     prometheus.Counter
	placeholders       prometheus.Counter
	truncatedTemplates prometheus.Counter
}

// NewMetrics creates engine metrics registered with reg. A nil registerer
// creates working but unregistered collectors, which keeps tests free of
// global registry collisions.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		parses: factory.NewCounter(prometheus.CounterOpts{
			Name: "enclave_expr_parses_total",
			Help: "Total number of expression parses (cache misses compiled)",
		}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "enclave_expr_cache_hits_total",
			Help: "Total number of compiled-expression cache hits",
		}),

		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "enclave_expr_cache_misses_total",
			Help: "Total number of compiled-expression cache misses",
		}),

		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enclave_expr_evaluations_total",
			Help: "Total number of expression evaluations by outcome",
		}, []string{"outcome"}),

		evalDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "enclave_expr_evaluation_duration_seconds",
			Help:    "Expression evaluation duration including compilation",
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10),
		}),

		rateLimitDenials: factory.NewCounter(prometheus.CounterOpts{
			Name: "enclave_expr_rate_limit_denials_total",
			Help: "Total number of evaluations skipped by the rate limiter",
		}),

		interpolations: factory.NewCounter(prometheus.CounterOpts{
			Name: "enclave_expr_interpolations_total",
			Help: "Total number of template interpolations",
		}),

		placeholders: factory.NewCounter(prometheus.CounterOpts{
			Name: "enclave_expr_placeholders_total",
			Help: "Total number of template placeholders resolved",
		}),

		truncatedTemplates: factory.NewCounter(prometheus.CounterOpts{
			Name: "enclave_expr_truncated_templates_total",
			Help: "Total number of templates truncated at the length ceiling",
		}),
	}
}

// Unregister removes the engine's collectors from reg. A host that rebuilds
// an engine against the same registerer must unregister the old engine's
// metrics first, or the rebuild panics on duplicate registration.
func (m *Metrics) Unregister(reg prometheus.Registerer) {
	if m == nil || reg == nil {
		return
	}
	for _, collector := range []prometheus.Collector{
		m.parses,
		m.cacheHits,
		m.cacheMisses,
		m.evaluations,
		m.evalDuration,
		m.rateLimitDenials,
		m.interpolations,
		m.placeholders,
		m.truncatedTemplates,
	} {
		reg.Unregister(collector)
	}
}

// RecordParse counts one compilation of a previously unseen expression.
func (m *Metrics) RecordParse() {
	if m == nil {
		return
	}
	m.parses.Inc()
}

// RecordCacheLookup counts one cache lookup.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// RecordEvaluation counts one finished evaluation with its outcome and
// duration.
func (m *Metrics) RecordEvaluation(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(outcome).Inc()
	m.evalDuration.Observe(elapsed.Seconds())
}

// RecordRateLimitDenial counts one evaluation skipped by the rate limiter.
func (m *Metrics) RecordRateLimitDenial() {
	if m == nil {
		return
	}
	m.rateLimitDenials.Inc()
}

// RecordInterpolation counts one template interpolation and the number of
// placeholders it resolved.
func (m *Metrics) RecordInterpolation(placeholders int, truncated bool) {
	if m == nil {
		return
	}
	m.interpolations.Inc()
	m.placeholders.Add(float64(placeholders))
	if truncated {
		m.truncatedTemplates.Inc()
	}
}
