package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DepositDuration tracks the latency of deposit matching
	DepositDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "stakevault_deposit_duration_seconds",
			Help: "Duration of deposit-notification processing in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
				5.0,   // 5s
			},
		},
		[]string{"kind", "status"}, // nft/token, success or failed
	)

	// LifecycleDuration tracks the latency of claim and retire operations
	LifecycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "stakevault_lifecycle_duration_seconds",
			Help: "Duration of claim/retire operations in seconds",
			Buckets: []float64{
				0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0,
			},
		},
		[]string{"op", "status"}, // claim or retire
	)

	// OutboundTransfers counts fire-and-forget sends issued to custody
	OutboundTransfers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stakevault_outbound_transfers_total",
			Help: "Outbound custody transfers issued after commit",
		},
		[]string{"kind", "status"}, // published or dropped
	)
)

// RecordDepositDuration records the duration of a deposit-matching run
func RecordDepositDuration(kind, status string, duration float64) {
	DepositDuration.WithLabelValues(kind, status).Observe(duration)
}

// RecordLifecycleDuration records the duration of a claim or retire
func RecordLifecycleDuration(op, status string, duration float64) {
	LifecycleDuration.WithLabelValues(op, status).Observe(duration)
}

// RecordOutboundTransfer counts an issued (or failed-to-publish) send
func RecordOutboundTransfer(kind, status string) {
	OutboundTransfers.WithLabelValues(kind, status).Inc()
}
