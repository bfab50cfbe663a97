package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartMutationTotal counts cart mutations by operation and result.
	CartMutationTotal *prometheus.CounterVec
	// CartMergeTotal counts add operations that merged into an existing line item.
	CartMergeTotal prometheus.Counter
	// CouponApplyTotal counts coupon application outcomes.
	CouponApplyTotal *prometheus.CounterVec
	// QuoteFailureTotal counts price computations rejected by the catalog.
	QuoteFailureTotal *prometheus.CounterVec
	// SnapshotWriteFailures counts best-effort cart persistence failures.
	SnapshotWriteFailures prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartMutationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutation_total",
			Help:      "Count of cart mutations by operation and result.",
		}, []string{"op", "result"})
		CartMergeTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_merge_total",
			Help:      "Count of add operations merged into an existing line item.",
		})
		CouponApplyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_apply_total",
			Help:      "Count of coupon application outcomes.",
		}, []string{"result"})
		QuoteFailureTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_failure_total",
			Help:      "Count of price computations rejected by the catalog.",
		}, []string{"reason"})
		SnapshotWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_snapshot_write_failures_total",
			Help:      "Count of failed best-effort cart snapshot writes.",
		})
		reg.MustRegister(CartMutationTotal, CartMergeTotal, CouponApplyTotal, QuoteFailureTotal, SnapshotWriteFailures)
	})
}
