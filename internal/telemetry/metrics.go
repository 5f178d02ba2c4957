package telemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once

	// Pipeline metrics
	PipelineRuns     *prometheus.CounterVec
	PipelineDuration prometheus.Histogram

	// Rubric oracle metrics
	RubricFailures prometheus.Counter
)

// Init registers all collectors with a private registry. Safe to call from
// multiple entry points; registration happens once.
func Init() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()

		PipelineRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callaudit_pipeline_runs_total",
				Help: "Pipeline runs by terminal status (ok, degraded, failed)",
			},
			[]string{"status"},
		)

		PipelineDuration = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "callaudit_pipeline_duration_seconds",
				Help:    "Wall-clock duration of one pipeline run",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		)

		RubricFailures = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "callaudit_rubric_failures_total",
				Help: "Oracle calls absorbed into a degraded partial result",
			},
		)

		registry.MustRegister(PipelineRuns, PipelineDuration, RubricFailures)
	})
}

// Handler exposes the registry for the /metrics endpoint.
func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ObserveRun records one finished pipeline run.
func ObserveRun(status string, elapsed time.Duration) {
	Init()
	PipelineRuns.WithLabelValues(status).Inc()
	PipelineDuration.Observe(elapsed.Seconds())
}

// RecordRubricFailure counts one degraded oracle outcome.
func RecordRubricFailure() {
	Init()
	RubricFailures.Inc()
}
