package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// NotificationsTotal counts inbound gateway notifications by outcome.
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "donation",
			Name:      "gateway_notifications_total",
			Help:      "Total gateway payment notifications received, by outcome",
		},
		[]string{"outcome"},
	)

	// CheckoutsTotal counts checkout authorization requests by result.
	CheckoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "donation",
			Name:      "checkout_authorizations_total",
			Help:      "Total checkout authorization digests issued, by result",
		},
		[]string{"result"},
	)

	// ReconcileDuration observes how long a notification takes to verify
	// and apply.
	ReconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "donation",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of notification verification and ledger update",
			Buckets: []float64{
				0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2,
			},
		},
	)
)

func init() {
	prometheus.MustRegister(NotificationsTotal, CheckoutsTotal, ReconcileDuration)
}

// Notification outcome labels.
const (
	OutcomeApplied      = "applied"
	OutcomeDuplicate    = "duplicate"
	OutcomeBadSignature = "bad_signature"
	OutcomeUnknownOrder = "unknown_order"
	OutcomeError        = "error"
)

// IncNotification records one processed notification.
func IncNotification(outcome string) {
	NotificationsTotal.WithLabelValues(outcome).Inc()
}

// IncCheckout records one checkout authorization request.
func IncCheckout(result string) {
	CheckoutsTotal.WithLabelValues(result).Inc()
}
