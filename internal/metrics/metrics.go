// Package metrics exposes the Prometheus collectors of the API server.
//
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bmdexpress"

type Metrics struct {
	registry *prometheus.Registry

	httpInFlight  prometheus.Gauge
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	uploads       *prometheus.CounterVec
	jobsSubmitted *prometheus.CounterVec
	jobsFinished  *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	jobsByStatus  *prometheus.GaugeVec
	projects      prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projects",
			Name:      "uploads_total",
			Help:      "Project bundle uploads by outcome.",
		}, []string{"source", "outcome"}),
		jobsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "submitted_total",
			Help:      "Category analysis jobs submitted.",
		}, []string{"analysis_type"}),
		jobsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "finished_total",
			Help:      "Category analysis jobs that reached a terminal status.",
		}, []string{"status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "run_duration_seconds",
			Help:      "Time from start to terminal status of analysis jobs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
		}, []string{"status"}),
		jobsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "by_status",
			Help:      "Jobs currently held, by status.",
		}, []string{"status"}),
		projects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "projects",
			Name:      "loaded",
			Help:      "Projects currently registered.",
		}),
	}
	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.uploads,
		m.jobsSubmitted,
		m.jobsFinished,
		m.jobDuration,
		m.jobsByStatus,
		m.projects,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RequestStarted increments the in-flight gauge and returns a func that
// records the finished request.
func (m *Metrics) RequestStarted() func(method, route string, status int) {
	if m == nil {
		return func(string, string, int) {}
	}
	start := time.Now()
	m.httpInFlight.Inc()
	return func(method, route string, status int) {
		m.httpInFlight.Dec()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordUpload counts a bundle upload. source is "upload" or "file".
func (m *Metrics) RecordUpload(source, outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) RecordJobSubmitted(analysisType string) {
	if m == nil {
		return
	}
	m.jobsSubmitted.WithLabelValues(analysisType).Inc()
}

func (m *Metrics) RecordJobFinished(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobsFinished.WithLabelValues(status).Inc()
	m.jobDuration.WithLabelValues(status).Observe(d.Seconds())
}

// SetJobCounts replaces the per-status job gauge.
func (m *Metrics) SetJobCounts(counts map[string]int) {
	if m == nil {
		return
	}
	m.jobsByStatus.Reset()
	for status, n := range counts {
		m.jobsByStatus.WithLabelValues(status).Set(float64(n))
	}
}

func (m *Metrics) SetProjects(n int) {
	if m == nil {
		return
	}
	m.projects.Set(float64(n))
}
