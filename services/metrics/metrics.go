// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AuthAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "academy", Name: "auth_attempts_total", Help: "Session operations by outcome",
	}, []string{"operation", "result"})
	GateDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "academy", Name: "gate_decisions_total", Help: "Access gate decisions by state",
	}, []string{"state"})
	PaymentReviews = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "academy", Name: "payment_reviews_total", Help: "Payment reviews by outcome",
	}, []string{"status"})
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "academy", Name: "active_sessions", Help: "Browser contexts with a session manager",
	})
)

func init() {
	prometheus.MustRegister(AuthAttempts, GateDecisions, PaymentReviews, ActiveSessions)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveAuth(operation, result string) { AuthAttempts.WithLabelValues(operation, result).Inc() }

func ObserveGate(state string) { GateDecisions.WithLabelValues(state).Inc() }

func ObservePaymentReview(status string) { PaymentReviews.WithLabelValues(status).Inc() }
