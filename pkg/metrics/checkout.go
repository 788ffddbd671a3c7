package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order placement and payment callback outcomes.
type CheckoutMetrics struct {
	ordersPlaced     *prometheus.CounterVec
	paymentCallbacks *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders placed, labelled by payment method.",
	}, []string{"payment_method"})
	paymentCallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_callbacks_total",
		Help: "Gateway callbacks processed, labelled by kind and outcome.",
	}, []string{"kind", "outcome"})
	checkoutDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of order placement in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(ordersPlaced, paymentCallbacks, checkoutDuration)
	return &CheckoutMetrics{
		ordersPlaced:     ordersPlaced,
		paymentCallbacks: paymentCallbacks,
		checkoutDuration: checkoutDuration,
	}
}

// IncOrderPlaced increments the placed-order counter for the payment method.
func (c *CheckoutMetrics) IncOrderPlaced(method string) {
	if c == nil || c.ordersPlaced == nil {
		return
	}
	c.ordersPlaced.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncPaymentCallback increments the callback counter for a kind/outcome pair.
func (c *CheckoutMetrics) IncPaymentCallback(kind, outcome string) {
	if c == nil || c.paymentCallbacks == nil {
		return
	}
	c.paymentCallbacks.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

// ObserveCheckoutDuration records how long order placement took.
func (c *CheckoutMetrics) ObserveCheckoutDuration(duration time.Duration) {
	if c == nil || c.checkoutDuration == nil {
		return
	}
	c.checkoutDuration.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
