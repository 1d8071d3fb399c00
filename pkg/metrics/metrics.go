package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the process registry. A fresh registry per instance keeps
// tests independent of global prometheus state.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	AdmissionsTotal     *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventbook_http_requests_total",
			Help: "HTTP requests by method, path and status code.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eventbook_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		AdmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventbook_booking_admissions_total",
			Help: "Booking admission attempts by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(m.HTTPRequestsTotal, m.HTTPRequestDuration, m.AdmissionsTotal)
	return m
}

// ObserveAdmission records one admission attempt. Outcome is "admitted" or
// the error code that rejected it.
func (m *Metrics) ObserveAdmission(outcome string) {
	m.AdmissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
