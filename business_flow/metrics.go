package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "topup_orders_created_total",
			Help: "Pending top-up orders handed out to the payment provider",
		},
	)

	// Callback outcomes; reason is approved, duplicate, bad_signature, foreign_merchant or declined
	callbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topup_callbacks_total",
			Help: "Provider callbacks partitioned by acknowledgement status and reason",
		},
		[]string{"status", "reason"},
	)

	creditedAmountTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topup_credited_amount_total",
			Help: "Sum of balance credits in UAH partitioned by ledger entry kind",
		},
		[]string{"kind"},
	)
)
