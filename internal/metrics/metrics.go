// Package metrics defines the Prometheus instruments for the gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiscalgw_http_requests_total",
			Help: "Total HTTP requests served, by endpoint and status code",
		},
		[]string{"endpoint", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "fiscalgw_http_request_duration_seconds",
			Help: "HTTP request handling duration in seconds",
		},
		[]string{"endpoint"},
	)

	UpstreamCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiscalgw_upstream_calls_total",
			Help: "Total upstream MCP calls, by JSON-RPC method and outcome",
		},
		[]string{"method", "outcome"},
	)

	UpstreamFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fiscalgw_upstream_fallbacks_total",
			Help: "Total REST fallback calls triggered by JSON-RPC invalid request errors",
		},
	)
)
