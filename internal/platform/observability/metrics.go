package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values shared across counters.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	// Embedding provider metrics.
	EmbeddingRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "briefing_embedding_requests_total",
		Help: "Total number of embedding batch requests",
	}, []string{"provider", "status"})

	EmbeddingBatchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "briefing_embedding_batch_size",
		Help:    "Number of texts per embedding batch request",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
	}, []string{"provider"})

	EmbeddingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "briefing_embedding_request_latency_seconds",
		Help:    "Latency of embedding batch requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	EmbeddingPayloadTooLarge = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "briefing_embedding_payload_too_large_total",
		Help: "Total number of HTTP 413 responses recovered by splitting or trimming",
	}, []string{"provider"})

	EmbeddingProviderAvailable = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "briefing_embedding_provider_available",
		Help: "Whether an embedding provider is currently available (0=no, 1=yes)",
	}, []string{"provider"})

	// LLM provider metrics.
	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "briefing_llm_requests_total",
		Help: "Total number of LLM structured-generation requests",
	}, []string{"provider", "stage", "status"})

	LLMRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "briefing_llm_request_latency_seconds",
		Help:    "Latency of LLM structured-generation requests",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"provider", "stage"})

	LLMTokensPrompt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "briefing_llm_tokens_prompt_total",
		Help: "Total number of prompt tokens used",
	}, []string{"provider", "stage"})

	LLMTokensCompletion = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "briefing_llm_tokens_completion_total",
		Help: "Total number of completion tokens used",
	}, []string{"provider", "stage"})

	LLMCircuitBreakerOpens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "briefing_llm_circuit_breaker_opens_total",
		Help: "Total number of times an LLM provider's circuit breaker opened",
	}, []string{"provider"})

	LLMCircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "briefing_llm_circuit_breaker_state",
		Help: "Current state of an LLM provider's circuit breaker (0=closed, 1=open)",
	}, []string{"provider"})

	LLMSchemaViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "briefing_llm_schema_violations_total",
		Help: "Total number of LLM responses that failed schema validation",
	}, []string{"provider", "stage"})

	// Pipeline-level metrics.
	ClustersProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "briefing_clusters_processed_total",
		Help: "Total number of clusters processed by the multi-stage pipeline",
	}, []string{"status"})

	PipelineRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "briefing_pipeline_run_duration_seconds",
		Help:    "Duration of a full pipeline run",
		Buckets: prometheus.DefBuckets,
	})

	TopicsEmitted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "briefing_topics_emitted",
		Help: "Number of topics emitted by the most recent pipeline run",
	})
)
