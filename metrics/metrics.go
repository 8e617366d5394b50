package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric the engine exposes. Construct one per process
// with NewCollector; tests pass their own registry to avoid global state.
type Collector struct {
	registry *prometheus.Registry

	documentsProcessed *prometheus.CounterVec
	stepOutcomes       *prometheus.CounterVec
	stepDuration       *prometheus.HistogramVec
	reviewQueued       *prometheus.CounterVec
	reviewResolved     *prometheus.CounterVec
	reviewQueueDepth   *prometheus.GaugeVec
	jobRuns            *prometheus.CounterVec
	jobItemsProcessed  *prometheus.CounterVec
	jobProgress        *prometheus.GaugeVec
}

func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	c := &Collector{
		registry: registry,
		documentsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docpilot_documents_processed_total",
			Help: "Pipeline runs by final outcome (completed, paused, failed).",
		}, []string{"outcome"}),
		stepOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docpilot_pipeline_steps_total",
			Help: "Completed pipeline steps by step name and status.",
		}, []string{"step", "status"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docpilot_pipeline_step_duration_seconds",
			Help:    "Wall time per pipeline step.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"step"}),
		reviewQueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docpilot_review_items_queued_total",
			Help: "Items added to the pending review queue by category.",
		}, []string{"category"}),
		reviewResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docpilot_review_items_resolved_total",
			Help: "Review resolutions by action (approved, rejected).",
		}, []string{"action"}),
		reviewQueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "docpilot_review_queue_depth",
			Help: "Current pending review items by category.",
		}, []string{"category"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docpilot_job_runs_total",
			Help: "Background job runs by kind and final status.",
		}, []string{"kind", "status"}),
		jobItemsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docpilot_job_items_processed_total",
			Help: "Items processed by background jobs, by kind.",
		}, []string{"kind"}),
		jobProgress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "docpilot_job_progress_ratio",
			Help: "Progress of the running job of each kind, 0 to 1.",
		}, []string{"kind"}),
	}

	registry.MustRegister(
		c.documentsProcessed,
		c.stepOutcomes,
		c.stepDuration,
		c.reviewQueued,
		c.reviewResolved,
		c.reviewQueueDepth,
		c.jobRuns,
		c.jobItemsProcessed,
		c.jobProgress,
	)
	return c
}

func (c *Collector) DocumentProcessed(outcome string) {
	c.documentsProcessed.WithLabelValues(outcome).Inc()
}

func (c *Collector) StepCompleted(step, status string, seconds float64) {
	c.stepOutcomes.WithLabelValues(step, status).Inc()
	c.stepDuration.WithLabelValues(step).Observe(seconds)
}

func (c *Collector) ReviewQueued(category string) {
	c.reviewQueued.WithLabelValues(category).Inc()
}

func (c *Collector) ReviewResolved(action string) {
	c.reviewResolved.WithLabelValues(action).Inc()
}

// SetQueueDepth replaces the depth gauges from a category count snapshot.
func (c *Collector) SetQueueDepth(counts map[string]int) {
	for category, n := range counts {
		c.reviewQueueDepth.WithLabelValues(category).Set(float64(n))
	}
}

func (c *Collector) JobFinished(kind, status string) {
	c.jobRuns.WithLabelValues(kind, status).Inc()
	c.jobProgress.WithLabelValues(kind).Set(0)
}

func (c *Collector) JobItemProcessed(kind string, processed, total int) {
	c.jobItemsProcessed.WithLabelValues(kind).Inc()
	if total > 0 {
		c.jobProgress.WithLabelValues(kind).Set(float64(processed) / float64(total))
	}
}

// Handler serves the registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve blocks on a plain HTTP server exposing /metrics on the given port.
func (c *Collector) Serve(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
