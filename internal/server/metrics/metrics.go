// Package metrics exposes Prometheus collectors for the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transition labels.
const (
	Submitted = "submitted"
	Reopened  = "reopened"
	Approved  = "approved"
	Rejected  = "rejected"
	Withdrawn = "withdrawn"
	Refused   = "refused"
)

// Metrics owns its own registry so tests can create as many as they like.
// All methods are safe on a nil *Metrics.
type Metrics struct {
	registry     *prometheus.Registry
	transitions  *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	uploads      prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gophshare",
			Name:      "access_request_transitions_total",
			Help:      "Access request state changes by kind.",
		}, []string{"transition"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gophshare",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gophshare",
			Name:      "file_uploads_total",
			Help:      "Presigned uploads handed out.",
		}),
	}
	reg.MustRegister(
		m.transitions,
		m.httpDuration,
		m.uploads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Transition(name string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(name).Inc()
}

func (m *Metrics) Upload() {
	if m == nil {
		return
	}
	m.uploads.Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
