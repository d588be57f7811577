package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCheckoutMetricsRegistersAndCounts(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)

	m.AddCommitted(3)
	m.AddUpgraded(1)
	m.IncRejected("program_full")
	m.ObserveDuration("ok", 120*time.Millisecond)

	if got := testutil.ToFloat64(m.committed); got != 3 {
		t.Fatalf("expected 3 committed, got %v", got)
	}
	if got := testutil.ToFloat64(m.upgraded); got != 1 {
		t.Fatalf("expected 1 upgrade, got %v", got)
	}
	if got := testutil.ToFloat64(m.rejected.WithLabelValues("program_full")); got != 1 {
		t.Fatalf("expected 1 rejection, got %v", got)
	}
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var m *CheckoutMetrics
	m.AddCommitted(1)
	m.IncRejected("any")
	m.ObserveDuration("ok", time.Second)

	empty := NewCheckoutMetrics(nil)
	empty.AddCommitted(1)
	empty.AddUpgraded(-1)
}
