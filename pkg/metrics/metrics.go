package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CronJobMetrics records metadata for scheduled jobs.
type CronJobMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewCronJobMetrics registers the cron job metrics on the provided registerer.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_duration_seconds",
		Help:    "Duration of cron jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_success",
		Help: "Successful cron job executions.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_failure",
		Help: "Failed cron job executions.",
	}, []string{"job"})
	reg.MustRegister(duration, success, failure)
	return &CronJobMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named job.
func (c *CronJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named job.
func (c *CronJobMetrics) IncSuccess(job string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncFailure increments the failure counter for the named job.
func (c *CronJobMetrics) IncFailure(job string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// CatalogMetrics tracks catalog mutation outcomes.
type CatalogMetrics struct {
	reassignments  *prometheus.CounterVec
	cascadeDeletes *prometheus.CounterVec
	remoteFailures prometheus.Counter
}

// NewCatalogMetrics registers the catalog mutation metrics.
func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	if reg == nil {
		return &CatalogMetrics{}
	}
	reassignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_color_reassignments_total",
		Help: "Color reassignment requests by outcome.",
	}, []string{"outcome"})
	cascadeDeletes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_vehicle_cascade_deletes_total",
		Help: "Vehicle cascade delete requests by outcome.",
	}, []string{"outcome"})
	remoteFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_remote_delete_failures_total",
		Help: "Object storage delete calls that failed or timed out.",
	})
	reg.MustRegister(reassignments, cascadeDeletes, remoteFailures)
	return &CatalogMetrics{
		reassignments:  reassignments,
		cascadeDeletes: cascadeDeletes,
		remoteFailures: remoteFailures,
	}
}

// IncReassignment records a reassignment outcome (ok, blocked, error).
func (c *CatalogMetrics) IncReassignment(outcome string) {
	if c == nil || c.reassignments == nil {
		return
	}
	c.reassignments.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncCascadeDelete records a cascade delete outcome (ok, aborted, error).
func (c *CatalogMetrics) IncCascadeDelete(outcome string) {
	if c == nil || c.cascadeDeletes == nil {
		return
	}
	c.cascadeDeletes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncRemoteFailure counts a failed object storage delete.
func (c *CatalogMetrics) IncRemoteFailure() {
	if c == nil || c.remoteFailures == nil {
		return
	}
	c.remoteFailures.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
