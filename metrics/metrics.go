// Package metrics provides Prometheus metrics for the DokuWiki MCP server.
// It tracks tool calls, XML-RPC round trips, decode failures and the
// random article resolver.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "dokuwiki_mcp"
)

var (
	// RequestsTotal counts MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures tool call latency
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "request_duration_seconds",
		Help:      "Tool call latency distribution by tool",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"tool"})

	// RequestInFlight tracks currently executing tool calls
	RequestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "requests_in_flight",
		Help:      "Number of tool calls currently being processed",
	}, []string{"tool"})

	// RPCCallsTotal counts XML-RPC round trips by method and status
	RPCCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "rpc_calls_total",
		Help:      "Total XML-RPC round trips by method and status",
	}, []string{"method", "status"})

	// RPCLatency measures XML-RPC round trip latency
	RPCLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "rpc_latency_seconds",
		Help:      "XML-RPC round trip latency by method",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	// RPCErrors counts failed round trips by method and error class
	RPCErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "rpc_errors_total",
		Help:      "XML-RPC errors by method and class (transport, parse)",
	}, []string{"method", "class"})

	// ResponseSize tracks response body sizes
	ResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "response_size_bytes",
		Help:      "XML-RPC response size distribution in bytes",
		Buckets:   []float64{100, 1000, 10000, 50000, 100000, 250000, 500000, 1000000},
	}, []string{"method"})

	// RandomArticleAttempts counts access-control probes made by the resolver
	RandomArticleAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "random_article_attempts_total",
		Help:      "Access-control probes made while resolving a random article, by outcome",
	}, []string{"outcome"})

	// RandomArticleResults counts resolver outcomes
	RandomArticleResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "random_article_results_total",
		Help:      "Random article resolutions by result (found, exhausted, empty, error)",
	}, []string{"result"})

	// BreakerRejections counts requests refused by the circuit breaker
	BreakerRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "circuit_breaker_rejections_total",
		Help:      "Requests rejected because the circuit breaker was open",
	})

	// RateLimitWaits counts requests that had to wait for a transport slot
	RateLimitWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "rate_limit_waits_total",
		Help:      "Requests that waited for the concurrency semaphore",
	})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})
)

// RecordRequest records a completed tool call with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	RequestsTotal.WithLabelValues(tool, status(success)).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}

// RecordRPC records an XML-RPC round trip. errorClass is empty on success.
func RecordRPC(method string, duration float64, size int, errorClass string) {
	RPCCallsTotal.WithLabelValues(method, status(errorClass == "")).Inc()
	RPCLatency.WithLabelValues(method).Observe(duration)
	if size > 0 {
		ResponseSize.WithLabelValues(method).Observe(float64(size))
	}
	if errorClass != "" {
		RPCErrors.WithLabelValues(method, errorClass).Inc()
	}
}

// RecordRandomAttempt records one access-control probe by the resolver
func RecordRandomAttempt(outcome string) {
	RandomArticleAttempts.WithLabelValues(outcome).Inc()
}

// RecordRandomResult records the final outcome of a resolution
func RecordRandomResult(result string) {
	RandomArticleResults.WithLabelValues(result).Inc()
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
