package pipeline

import (
	"github.com/dgallion1/doccheck/internal/retry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Check outcomes used as the outcome label.
const (
	OutcomePassed   = "passed"
	OutcomeFailed   = "failed"
	OutcomeError    = "error"
	OutcomeDisabled = "disabled"
)

var (
	// ChecksTotal counts finished jobs by outcome
	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doccheck_checks_total",
			Help: "Total number of structure checks by outcome",
		},
		[]string{"outcome"},
	)

	// CheckDuration tracks wall time from dequeue to a terminal status
	CheckDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "doccheck_check_duration_seconds",
			Help:    "Structure check job duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 180},
		},
	)

	// RetryAttempts counts backoff retries per operation
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doccheck_retry_attempts_total",
			Help: "Total number of retries after a failed attempt",
		},
		[]string{"operation"},
	)

	// SemanticFallback counts model lookups for critical chapters
	SemanticFallback = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doccheck_semantic_fallback_total",
			Help: "Total number of semantic matcher calls by outcome",
		},
		[]string{"outcome"},
	)

	// QueueDepth tracks jobs waiting for a worker
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "doccheck_queue_depth",
			Help: "Number of jobs waiting in the queue",
		},
	)

	// JobsTracked tracks jobs held in the job store
	JobsTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "doccheck_jobs_tracked",
			Help: "Number of jobs held in memory",
		},
	)
)

// ObserveRetry returns a retry hook that counts attempts for operation.
func ObserveRetry(operation string) func(retry.Attempt) {
	c := RetryAttempts.WithLabelValues(operation)
	return func(retry.Attempt) { c.Inc() }
}

// ObserveSemantic records one semantic matcher outcome.
func ObserveSemantic(outcome string) {
	SemanticFallback.WithLabelValues(outcome).Inc()
}
