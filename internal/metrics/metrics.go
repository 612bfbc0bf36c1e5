// Package metrics exposes the Prometheus collectors shared by the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payvost",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "payvost",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	// FXFetches counts calls to the upstream rate provider by outcome.
	FXFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payvost",
			Subsystem: "fx",
			Name:      "provider_fetches_total",
			Help:      "Upstream exchange rate fetches.",
		},
		[]string{"provider", "result"},
	)

	// FXCacheLookups counts rate cache hits and misses.
	FXCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payvost",
			Subsystem: "fx",
			Name:      "cache_lookups_total",
			Help:      "Exchange rate cache lookups.",
		},
		[]string{"result"},
	)

	// AuditWrites counts audit entries by outcome.
	AuditWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payvost",
			Subsystem: "audit",
			Name:      "writes_total",
			Help:      "Audit log writes.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		FXFetches,
		FXCacheLookups,
		AuditWrites,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one completed HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
