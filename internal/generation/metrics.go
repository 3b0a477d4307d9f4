package generation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records generation attempts. A nil *Metrics records nothing.
type Metrics struct {
	attempts *prometheus.CounterVec
	retries  *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the generation metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "introbird_generation_attempts_total",
				Help: "Total number of generation attempts, by operation and attempt result.",
			},
			[]string{"operation", "result"},
		),
		retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "introbird_generation_retries_total",
				Help: "Total number of retries scheduled after a transient failure.",
			},
			[]string{"operation"},
		),
		outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "introbird_generation_requests_total",
				Help: "Total number of generation operations, by final outcome.",
			},
			[]string{"operation", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "introbird_generation_attempt_duration_seconds",
				Help:    "Histogram of single generation attempt durations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (m *Metrics) observeAttempt(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "success"
	switch {
	case err == nil:
	case IsRetryable(err):
		result = "retryable_error"
	default:
		result = "fatal_error"
	}
	m.attempts.WithLabelValues(operation, result).Inc()
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) observeRetry(operation string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(operation).Inc()
}

func (m *Metrics) observeOutcome(operation, outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(operation, outcome).Inc()
}
