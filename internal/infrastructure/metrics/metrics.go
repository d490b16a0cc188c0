package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// FulfillmentMetrics covers the webhook intake and fulfillment pipeline.
type FulfillmentMetrics struct {
	// Webhook intake
	WebhooksReceivedTotal   prometheus.CounterVec
	WebhooksDuplicateTotal  prometheus.Counter
	WebhooksFailedTotal     prometheus.CounterVec
	WebhookSignatureRejects prometheus.Counter

	// Orders
	OrdersCreatedTotal       prometheus.CounterVec
	OrdersCreatedAmountTotal prometheus.CounterVec
	OrderStatusChangesTotal  prometheus.CounterVec

	// Inventory
	InventoryConflictRetries  prometheus.Counter
	InventoryRetriesExhausted prometheus.Counter
	OversellRejectionsTotal   prometheus.Counter

	// Processing time
	FulfillmentDuration prometheus.HistogramVec
}

// NewFulfillmentMetrics registers on the default registry.
func NewFulfillmentMetrics() *FulfillmentMetrics {
	return NewFulfillmentMetricsWith(prometheus.DefaultRegisterer)
}

// NewFulfillmentMetricsWith registers on the given registerer. Tests use
// a fresh registry to avoid duplicate-registration panics.
func NewFulfillmentMetricsWith(reg prometheus.Registerer) *FulfillmentMetrics {
	factory := promauto.With(reg)

	return &FulfillmentMetrics{
		WebhooksReceivedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillment_webhooks_received_total",
				Help: "Webhook deliveries accepted for processing",
			},
			[]string{"event_type"},
		),

		WebhooksDuplicateTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fulfillment_webhooks_duplicate_total",
				Help: "Webhook deliveries short-circuited as duplicates",
			},
		),

		WebhooksFailedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillment_webhooks_failed_total",
				Help: "Webhook processing attempts that ended in an infrastructure error",
			},
			[]string{"event_type"},
		),

		WebhookSignatureRejects: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fulfillment_webhook_signature_rejects_total",
				Help: "Webhook deliveries rejected for a missing or invalid signature",
			},
		),

		OrdersCreatedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillment_orders_created_total",
				Help: "Orders created by the fulfillment pipeline",
			},
			[]string{"status", "currency"},
		),

		OrdersCreatedAmountTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillment_orders_created_amount_total",
				Help: "Total amount of created orders",
			},
			[]string{"currency"},
		),

		OrderStatusChangesTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillment_order_status_changes_total",
				Help: "Order status transitions applied",
			},
			[]string{"from", "to"},
		),

		InventoryConflictRetries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fulfillment_inventory_conflict_retries_total",
				Help: "Optimistic-concurrency version conflicts that triggered a retry",
			},
		),

		InventoryRetriesExhausted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fulfillment_inventory_retries_exhausted_total",
				Help: "Inventory adjustments abandoned after exhausting retries",
			},
		),

		OversellRejectionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fulfillment_oversell_rejections_total",
				Help: "Decrements rejected because they would drive stock negative",
			},
		),

		FulfillmentDuration: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fulfillment_processing_duration_seconds",
				Help:    "End-to-end webhook processing time",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"outcome"},
		),
	}
}
