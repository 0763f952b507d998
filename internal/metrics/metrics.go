// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "artexplorer"

// Upstream outcomes
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeNotFound = "not_found"
)

// Metrics is a private registry plus the collectors the service updates.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	upstream     *prometheus.CounterVec
	pages        *prometheus.CounterVec
	renderTime   *prometheus.HistogramVec
	measurements *prometheus.CounterVec
	rateLimited  prometheus.Counter
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Backend API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_requests_total",
			Help:      "Page requests by route and status code.",
		}, []string{"route", "status"}),
		renderTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_duration_seconds",
			Help:      "Time to serve a page, including backend calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		measurements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_measurements_total",
			Help:      "Image dimension lookups by outcome (hit, measured, skipped, error).",
		}, []string{"outcome"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Inbound requests rejected by the per-client limiter.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.upstream,
		m.pages,
		m.renderTime,
		m.measurements,
		m.rateLimited,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests, extra collectors)
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Upstream records one backend request
func (m *Metrics) Upstream(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.upstream.WithLabelValues(endpoint, outcome).Inc()
}

// Page records one served page
func (m *Metrics) Page(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.pages.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.renderTime.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Measurement records one image dimension lookup
func (m *Metrics) Measurement(outcome string) {
	if m == nil {
		return
	}
	m.measurements.WithLabelValues(outcome).Inc()
}

// RateLimited records one rejected inbound request
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
