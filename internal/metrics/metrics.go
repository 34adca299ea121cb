package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes counters for the reservation flows. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	wizardAdvances  *prometheus.CounterVec
	cartMutations   *prometheus.CounterVec
	clientRequests  *prometheus.CounterVec
	backendRequests *prometheus.CounterVec
	clientLatency   *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		wizardAdvances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotelres",
			Subsystem: "wizard",
			Name:      "advance_total",
			Help:      "Wizard advance attempts by step and result",
		}, []string{"step", "result"}),
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotelres",
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Cart mutations by operation and result",
		}, []string{"op", "result"}),
		clientRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotelres",
			Subsystem: "booking_client",
			Name:      "requests_total",
			Help:      "Booking API calls by endpoint and result",
		}, []string{"endpoint", "result"}),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotelres",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Requests served by the booking backend by route and status",
		}, []string{"route", "status"}),
		clientLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hotelres",
			Subsystem: "booking_client",
			Name:      "request_seconds",
			Help:      "Latency of booking API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	m.registry.MustRegister(m.wizardAdvances, m.cartMutations, m.clientRequests, m.backendRequests, m.clientLatency)
	return m
}

// Registry is the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAdvance(step string, ok bool) {
	if m == nil {
		return
	}
	m.wizardAdvances.WithLabelValues(step, result(ok)).Inc()
}

func (m *Metrics) ObserveCart(op string, ok bool) {
	if m == nil {
		return
	}
	m.cartMutations.WithLabelValues(op, result(ok)).Inc()
}

func (m *Metrics) ObserveClient(endpoint string, ok bool, seconds float64) {
	if m == nil {
		return
	}
	m.clientRequests.WithLabelValues(endpoint, result(ok)).Inc()
	m.clientLatency.WithLabelValues(endpoint).Observe(seconds)
}

func (m *Metrics) ObserveBackend(route, status string) {
	if m == nil {
		return
	}
	m.backendRequests.WithLabelValues(route, status).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
