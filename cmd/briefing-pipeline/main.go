// Package main is the entrypoint for the briefing pipeline CLI.
//
// It loads configuration from the environment, wires every component
// (embedding client, reranker, LLM provider registry, the RSS source
// adapter) and runs one end-to-end pipeline pass, rendering and
// publishing the resulting briefing before exiting.
//
// Example:
//
//	go run ./cmd/briefing-pipeline --feed https://example.com/feed.xml
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/briefing-pipeline/internal/assemble"
	"github.com/lueurxax/briefing-pipeline/internal/candidates"
	"github.com/lueurxax/briefing-pipeline/internal/embeddings"
	"github.com/lueurxax/briefing-pipeline/internal/llm"
	"github.com/lueurxax/briefing-pipeline/internal/pipeline"
	"github.com/lueurxax/briefing-pipeline/internal/platform/config"
	"github.com/lueurxax/briefing-pipeline/internal/platform/healthwait"
	"github.com/lueurxax/briefing-pipeline/internal/platform/observability"
	"github.com/lueurxax/briefing-pipeline/internal/publish"
	"github.com/lueurxax/briefing-pipeline/internal/render"
	"github.com/lueurxax/briefing-pipeline/internal/sources"
	"github.com/lueurxax/briefing-pipeline/internal/stages"
	"github.com/lueurxax/briefing-pipeline/internal/timewindow"
)

const (
	userAgent              = "briefing-pipeline/1.0"
	collaboratorWaitTotal  = 60 * time.Second
	collaboratorWaitPoll   = 2 * time.Second
	collaboratorWaitStatus = http.StatusOK
)

func main() {
	feedURL := flag.String("feed", "", "RSS/Atom feed URL to ingest")
	feedName := flag.String("feed-name", "default", "label for the feed's source attribution")
	runHealthServer := flag.Bool("health-server", false, "run the liveness/readiness/metrics HTTP server alongside the run")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if *feedURL == "" {
		logger.Fatal().Msg("--feed is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ready := &atomic.Bool{}

	if *runHealthServer {
		srv := observability.NewServer(cfg.HealthPort, ready, &logger)

		go func() {
			if err := srv.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("health server error")
			}
		}()
	}

	if err := waitForCollaborators(ctx, cfg); err != nil {
		logger.Fatal().Err(err).Msg("collaborator readiness check failed")
	}

	p := buildPipeline(cfg, &logger)

	adapter := sources.NewRSSAdapter(*feedURL, *feedName, userAgent, &logger)

	items, err := adapter.Fetch(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to fetch source feed")
	}

	logger.Info().Int("items", len(items)).Str("feed", *feedURL).Msg("fetched source items")

	ready.Store(true)

	result, err := p.Run(ctx, items)
	if err != nil {
		logger.Fatal().Err(err).Msg("pipeline run failed")
	}

	rendered, err := render.Markdown{}.Render(result.Briefing)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to render briefing")
	}

	pub := publish.FileSystem{Dir: cfg.OutputDir}

	artifactName := result.Briefing.Date.Format("2006-01-02") + ".md"
	if err := pub.Publish(artifactName, rendered); err != nil {
		logger.Fatal().Err(err).Msg("failed to publish briefing")
	}

	logger.Info().
		Str("run_id", result.RunID).
		Int("topics", len(result.Briefing.Topics)).
		Int("facts_picked", result.Metrics.FactsPicked).
		Msg("pipeline run complete")
}

// waitForCollaborators blocks until the embedding and reranker services
// report healthy, or ctx's deadline/cancellation wins first.
func waitForCollaborators(ctx context.Context, cfg *config.Config) error {
	waitCtx, cancel := context.WithTimeout(ctx, collaboratorWaitTotal)
	defer cancel()

	if err := healthwait.WaitUntilReady(waitCtx, cfg.EmbeddingServiceOrigin+"/health", collaboratorWaitStatus, cfg.EmbeddingTimeout, collaboratorWaitPoll); err != nil {
		return fmt.Errorf("embedding service not ready: %w", err)
	}

	if err := healthwait.WaitUntilReady(waitCtx, cfg.RerankerOrigin+"/health", collaboratorWaitStatus, cfg.RerankerTimeout, collaboratorWaitPoll); err != nil {
		return fmt.Errorf("reranker service not ready: %w", err)
	}

	return nil
}

// buildPipeline wires the embedding client, reranker, LLM provider
// registry, and stage configuration into a pipeline.Pipeline, following
// spec.md §6's configuration surface.
func buildPipeline(cfg *config.Config, logger *zerolog.Logger) *pipeline.Pipeline {
	transport := embeddings.NewHTTPTransport(cfg.EmbeddingServiceOrigin, cfg.EmbeddingTimeout)
	embedder := embeddings.New(transport, cfg.EmbeddingProvider, embeddings.Config{
		MaxBatchTokens: cfg.Processing.EmbeddingMaxBatchTokens,
		MaxItemChars:   cfg.Processing.EmbeddingMaxItemChars,
		CharsPerToken:  cfg.Processing.EmbeddingCharsPerToken,
	}, logger)

	reranker := candidates.NewHTTPReranker(cfg.RerankerOrigin, cfg.Processing.RerankerModel, cfg.RerankerTimeout)
	selector := candidates.New(candidates.Config{
		InitialTopK:             cfg.Processing.InitialTopK,
		MaxCandidatesPerCluster: cfg.Processing.MaxCandidatesPerCluster,
	}, reranker)

	registry := llm.NewRegistry(logger)
	registry.Register(llm.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.LLMRateLimitRPS))
	registry.Register(llm.NewAnthropicProvider(cfg.AnthropicAPIKey))
	registry.Register(llm.NewGeminiProvider(cfg.GeminiAPIKey))

	horizon := time.Duration(cfg.Processing.TimeWindowHours) * time.Hour
	filter := timewindow.New(horizon, logger, nil)

	pcfg := pipeline.Config{
		TimeWindow:     horizon,
		SimNearDup:     cfg.Processing.SimNearDup,
		MinClusterSize: cfg.Processing.MinClusterSize,
		Candidates: candidates.Config{
			InitialTopK:             cfg.Processing.InitialTopK,
			MaxCandidatesPerCluster: cfg.Processing.MaxCandidatesPerCluster,
		},
		LLMProviderName: llm.ProviderName(cfg.Summarization.LLMProvider),
		CallParams: stages.CallParams{
			Model:       summarizationModel(cfg),
			Temperature: cfg.Summarization.Temperature,
			Timeout:     cfg.Summarization.Timeout,
			Retries:     cfg.Summarization.Retries,
		},
		AssembleConfig: assemble.Config{AgenticSection: cfg.Processing.AgenticSection},
		BriefingTitle:  "Daily Briefing",
		OutputDir:      cfg.OutputDir,
		WorkerPoolSize: cfg.WorkerPoolSize,
	}

	return pipeline.New(pcfg, filter, embedder, selector, registry, logger, nil)
}

func summarizationModel(cfg *config.Config) string {
	switch llm.ProviderName(cfg.Summarization.LLMProvider) {
	case llm.ProviderAnthropic:
		return cfg.Summarization.AnthropicModel
	case llm.ProviderGemini:
		return cfg.Summarization.GeminiModel
	default:
		return cfg.Summarization.OpenAIModel
	}
}
