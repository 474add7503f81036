package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"restaurant-checkout-system/models"
)

type checkoutMetrics struct {
	attempts  *prometheus.CounterVec
	latencyMS *prometheus.HistogramVec
}

func newCheckoutMetrics() *checkoutMetrics {
	return newCheckoutMetricsWith(prometheus.DefaultRegisterer)
}

func newCheckoutMetricsWith(reg prometheus.Registerer) *checkoutMetrics {
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restaurant",
		Subsystem: "checkout",
		Name:      "attempts_total",
		Help:      "Checkout attempts by payment method and outcome.",
	}, []string{"payment_method", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "restaurant",
		Subsystem: "checkout",
		Name:      "duration_ms",
		Help:      "End-to-end checkout latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"payment_method"})

	reg.MustRegister(attempts, latency)

	return &checkoutMetrics{
		attempts:  attempts,
		latencyMS: latency,
	}
}

func (m *checkoutMetrics) observe(method models.PaymentMethod, outcome string, elapsed time.Duration) {
	m.attempts.WithLabelValues(string(method), outcome).Inc()
	if elapsed > 0 {
		m.latencyMS.WithLabelValues(string(method)).Observe(float64(elapsed.Milliseconds()))
	}
}
