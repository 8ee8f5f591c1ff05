// Package config loads the briefing pipeline's configuration surface from
// the environment, grounded on the teacher's env/v11 + godotenv style
// (internal/platform/config.Load) but scoped to spec.md §6's
// "Configuration surface" instead of the teacher's Telegram/Postgres
// settings.
package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ProcessingConfig covers spec.md §6's `processing.*` keys: the
// time-window/dedup/clustering/candidate-selection knobs shared across a
// run, independent of which LLM provider renders the final topics.
type ProcessingConfig struct {
	TimeWindowHours         int     `env:"PROCESSING_TIME_WINDOW_HOURS" envDefault:"24"`
	SimNearDup              float32 `env:"PROCESSING_SIM_NEAR_DUP" envDefault:"0.92"`
	MinClusterSize          int     `env:"PROCESSING_MIN_CLUSTER_SIZE" envDefault:"3"`
	InitialTopK             int     `env:"PROCESSING_INITIAL_TOPK" envDefault:"1000"`
	MaxCandidatesPerCluster int     `env:"PROCESSING_MAX_CANDIDATES_PER_CLUSTER" envDefault:"300"`
	RerankerModel           string  `env:"PROCESSING_RERANKER_MODEL" envDefault:"BAAI/bge-reranker-v2-m3"`
	MultiStage              bool    `env:"PROCESSING_MULTI_STAGE" envDefault:"true"`
	AgenticSection          bool    `env:"PROCESSING_AGENTIC_SECTION" envDefault:"true"`

	EmbeddingMaxBatchTokens int     `env:"PROCESSING_EMBEDDING_MAX_BATCH_TOKENS" envDefault:"8000"`
	EmbeddingMaxItemChars   int     `env:"PROCESSING_EMBEDDING_MAX_ITEM_CHARS" envDefault:"4000"`
	EmbeddingCharsPerToken  float64 `env:"PROCESSING_EMBEDDING_CHARS_PER_TOKEN" envDefault:"4"`
}

// SummarizationConfig covers spec.md §6's `summarization.*` keys: which
// LLM provider drives stages 1-3 and the per-call invocation parameters.
type SummarizationConfig struct {
	LLMProvider string `env:"SUMMARIZATION_LLM_PROVIDER" envDefault:"openai"`

	OpenAIModel    string `env:"SUMMARIZATION_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	GeminiModel    string `env:"SUMMARIZATION_GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	AnthropicModel string `env:"SUMMARIZATION_ANTHROPIC_MODEL" envDefault:"claude-3-5-sonnet-20241022"`

	Temperature float64       `env:"SUMMARIZATION_TEMPERATURE" envDefault:"0.2"`
	Timeout     time.Duration `env:"SUMMARIZATION_TIMEOUT" envDefault:"60s"`
	Retries     int           `env:"SUMMARIZATION_RETRIES" envDefault:"2"`
}

// Config is the complete environment-sourced configuration for one
// pipeline run.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	OutputDir string `env:"OUTPUT_DIR" envDefault:"./output"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	EmbeddingServiceOrigin string        `env:"EMBEDDING_SERVICE_ORIGIN,required"`
	EmbeddingProvider      string        `env:"EMBEDDING_PROVIDER" envDefault:"tei"`
	EmbeddingTimeout       time.Duration `env:"EMBEDDING_TIMEOUT" envDefault:"30s"`
	EmbeddingRateLimitRPS  float64       `env:"EMBEDDING_RATE_LIMIT_RPS" envDefault:"5"`

	RerankerOrigin  string        `env:"RERANKER_ORIGIN,required"`
	RerankerTimeout time.Duration `env:"RERANKER_TIMEOUT" envDefault:"15s"`

	LLMRateLimitRPS float64 `env:"LLM_RATE_LIMIT_RPS" envDefault:"2"`
	WorkerPoolSize  int     `env:"WORKER_POOL_SIZE" envDefault:"4"`

	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`

	Processing    ProcessingConfig
	Summarization SummarizationConfig
}

// Load reads .env (if present) then parses the process environment into a
// Config, applying envDefault tags for every unset key.
func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}

var secretPattern = regexp.MustCompile(`(?i)(api[_-]?key|token|secret|password|authorization)\s*[:=]\s*\S+`)

// Redact masks substrings that look like "key=value" secrets in s, so log
// lines that echo a request body or error message don't leak credentials.
// Grounded on the original's redact_secrets helper (utils.py).
func Redact(s string) string {
	return secretPattern.ReplaceAllStringFunc(s, func(match string) string {
		idx := regexp.MustCompile(`[:=]`).FindStringIndex(match)
		if idx == nil {
			return match
		}

		return match[:idx[1]] + " ***REDACTED***"
	})
}
