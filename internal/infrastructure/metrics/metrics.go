// Package metrics exposes Prometheus metrics for authorization decisions,
// collaborator calls and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shadowiq/shadowiq/internal/application/access"
)

const namespace = "shadowiq"

var _ access.DecisionObserver = (*Collector)(nil)

type Collector struct {
	authzDecisions    *prometheus.CounterVec
	auditFailures     *prometheus.CounterVec
	collaboratorCalls *prometheus.CounterVec
	collaboratorTime  *prometheus.HistogramVec
	httpInFlight      prometheus.Gauge
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	buildInfo         *prometheus.GaugeVec
}

// NewCollector creates the collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authzDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authz_decisions_total",
			Help:      "Access gate decisions by requirement and outcome.",
		}, []string{"requirement", "outcome"}),
		auditFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_write_failures_total",
			Help:      "Audit entries that could not be written.",
		}, []string{"action"}),
		collaboratorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_calls_total",
			Help:      "Calls to external collaborators by result.",
		}, []string{"collaborator", "operation", "result"}),
		collaboratorTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collaborator_call_duration_seconds",
			Help:      "Latency of external collaborator calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collaborator", "operation"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "In-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		buildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information.",
		}, []string{"version"}),
	}

	reg.MustRegister(
		c.authzDecisions,
		c.auditFailures,
		c.collaboratorCalls,
		c.collaboratorTime,
		c.httpInFlight,
		c.httpRequests,
		c.httpDuration,
		c.buildInfo,
	)
	return c
}

// NewRegistry returns a registry with the Go runtime and process
// collectors already registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (c *Collector) ObserveDecision(requirement, outcome string) {
	c.authzDecisions.WithLabelValues(requirement, outcome).Inc()
}

func (c *Collector) ObserveAuditFailure(action string) {
	c.auditFailures.WithLabelValues(action).Inc()
}

// ObserveCollaborator records one collaborator call.
func (c *Collector) ObserveCollaborator(collaborator, operation string, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.collaboratorCalls.WithLabelValues(collaborator, operation, result).Inc()
	c.collaboratorTime.WithLabelValues(collaborator, operation).Observe(d.Seconds())
}

// HTTPStarted marks a request in flight and returns the function that
// completes it. route is the matched route template, not the raw path.
func (c *Collector) HTTPStarted() func(method, route string, status int) {
	c.httpInFlight.Inc()
	start := time.Now()
	return func(method, route string, status int) {
		c.httpInFlight.Dec()
		code := strconv.Itoa(status)
		c.httpRequests.WithLabelValues(method, route, code).Inc()
		c.httpDuration.WithLabelValues(method, route, code).Observe(time.Since(start).Seconds())
	}
}

func (c *Collector) SetBuildInfo(version string) {
	c.buildInfo.WithLabelValues(version).Set(1)
}

// Handler serves the Prometheus scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
