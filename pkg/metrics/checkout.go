package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records commitment outcomes for the checkout engine.
type CheckoutMetrics struct {
	duration  *prometheus.HistogramVec
	committed prometheus.Counter
	upgraded  prometheus.Counter
	rejected  *prometheus.CounterVec
}

// NewCheckoutMetrics registers the commitment metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_commitment_duration_seconds",
		Help:    "Duration of checkout commitment calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	committed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_enrollments_committed_total",
		Help: "Enrollment rows created by the commitment engine.",
	})
	upgraded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_waitlist_upgrades_total",
		Help: "Waitlist rows promoted to active by the commitment engine.",
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_rejections_total",
		Help: "Commitment calls rejected before any write.",
	}, []string{"reason"})
	reg.MustRegister(duration, committed, upgraded, rejected)
	return &CheckoutMetrics{
		duration:  duration,
		committed: committed,
		upgraded:  upgraded,
		rejected:  rejected,
	}
}

// ObserveDuration records the duration of one commitment call.
func (c *CheckoutMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// AddCommitted increments the committed-enrollments counter.
func (c *CheckoutMetrics) AddCommitted(n int) {
	if c == nil || c.committed == nil || n <= 0 {
		return
	}
	c.committed.Add(float64(n))
}

// AddUpgraded increments the waitlist-upgrade counter.
func (c *CheckoutMetrics) AddUpgraded(n int) {
	if c == nil || c.upgraded == nil || n <= 0 {
		return
	}
	c.upgraded.Add(float64(n))
}

// IncRejected increments the rejection counter for the given reason.
func (c *CheckoutMetrics) IncRejected(reason string) {
	if c == nil || c.rejected == nil {
		return
	}
	c.rejected.WithLabelValues(reason).Inc()
}
