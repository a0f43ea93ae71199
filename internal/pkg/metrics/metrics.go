package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LLM 呼叫結果標籤
const (
	OutcomeSuccess      = "success"
	OutcomeTimeout      = "timeout"
	OutcomeOverloaded   = "overloaded"
	OutcomeFatal        = "fatal"
	OutcomeParseMiss    = "parse_miss"
	OutcomeUnconfigured = "unconfigured"
)

var (
	llmAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_chef_llm_attempts_total",
			Help: "Total number of LLM generation attempts by outcome",
		},
		[]string{"outcome"},
	)

	llmRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ai_chef_llm_retries_total",
			Help: "Total number of LLM retries after a retryable failure",
		},
	)

	generationResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_chef_generation_results_total",
			Help: "Total number of generation results by provenance",
		},
		[]string{"source"},
	)

	generationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ai_chef_generation_duration_seconds",
			Help:    "Duration of a full recipe generation request in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 20},
		},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_chef_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_chef_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// ObserveLLMAttempt 記錄一次 LLM 呼叫結果
func ObserveLLMAttempt(outcome string) {
	llmAttempts.WithLabelValues(outcome).Inc()
}

// ObserveLLMRetry 記錄一次重試
func ObserveLLMRetry() {
	llmRetries.Inc()
}

// ObserveGeneration 記錄一次生成結果與耗時
func ObserveGeneration(source string, elapsed time.Duration) {
	generationResults.WithLabelValues(source).Inc()
	generationDuration.Observe(elapsed.Seconds())
}

// ObserveHTTPRequest 記錄 HTTP 請求
func ObserveHTTPRequest(method, route, status string, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
