package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCronJobMetricsRecord(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.IncSuccess("orphan-cleanup")
	m.IncSuccess("orphan-cleanup")
	m.IncFailure("orphan-cleanup")
	m.ObserveDuration("orphan-cleanup", 2*time.Second)

	if got := testutil.ToFloat64(m.success.WithLabelValues("orphan-cleanup")); got != 2 {
		t.Fatalf("success count %v", got)
	}
	if got := testutil.ToFloat64(m.failure.WithLabelValues("orphan-cleanup")); got != 1 {
		t.Fatalf("failure count %v", got)
	}
}

func TestCatalogMetricsNormalizeEmptyOutcome(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewCatalogMetrics(reg)

	m.IncReassignment("")
	if got := testutil.ToFloat64(m.reassignments.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("empty outcome should count as unknown, got %v", got)
	}
}

func TestNilRegisterersAreSafe(t *testing.T) {
	t.Parallel()

	var cron *CronJobMetrics
	cron.IncSuccess("x")

	catalog := NewCatalogMetrics(nil)
	catalog.IncCascadeDelete("ok")
	catalog.IncRemoteFailure()
}
