// Package pipeline wires components A-K into the single driver thread of
// control spec.md §5 describes: time window filter -> text sanitizer ->
// embedding client -> near-duplicate suppressor -> density clusterer ->
// candidate selector/reranker -> per-cluster stages 1-3 (bounded worker
// pool) -> assembler -> artifact writer. This is the only package that
// imports every other component package.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lueurxax/briefing-pipeline/internal/artifacts"
	"github.com/lueurxax/briefing-pipeline/internal/assemble"
	"github.com/lueurxax/briefing-pipeline/internal/candidates"
	"github.com/lueurxax/briefing-pipeline/internal/clustering"
	"github.com/lueurxax/briefing-pipeline/internal/core/domain"
	"github.com/lueurxax/briefing-pipeline/internal/dedup"
	"github.com/lueurxax/briefing-pipeline/internal/embeddings"
	"github.com/lueurxax/briefing-pipeline/internal/llm"
	"github.com/lueurxax/briefing-pipeline/internal/platform/worker"
	"github.com/lueurxax/briefing-pipeline/internal/stages"
	"github.com/lueurxax/briefing-pipeline/internal/timewindow"
)

// Config bounds a single run, drawn from spec.md §6's configuration
// surface (processing.*, summarization.*, output.dir).
type Config struct {
	TimeWindow     time.Duration
	SimNearDup     float32
	MinClusterSize int

	Candidates candidates.Config

	LLMProviderName llm.ProviderName
	CallParams      stages.CallParams

	AssembleConfig assemble.Config
	BriefingTitle  string

	OutputDir      string
	WorkerPoolSize int
}

// Pipeline drives one end-to-end briefing run over its configured
// collaborators.
type Pipeline struct {
	cfg       Config
	filter    *timewindow.Filter
	embedder  *embeddings.Client
	selector  *candidates.Selector
	providers *llm.Registry
	logger    *zerolog.Logger
	now       func() time.Time
}

// New constructs a Pipeline from its already-configured collaborators.
// now defaults to time.Now if nil, overridable for deterministic tests.
func New(cfg Config, filter *timewindow.Filter, embedder *embeddings.Client, selector *candidates.Selector, providers *llm.Registry, logger *zerolog.Logger, now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}

	return &Pipeline{cfg: cfg, filter: filter, embedder: embedder, selector: selector, providers: providers, logger: logger, now: now}
}

// Result is the terminal output of one Run: the assembled briefing plus
// the full per-cluster run state and computed metrics, mirroring what the
// artifact writer persists.
type Result struct {
	RunID    string
	Briefing domain.Briefing
	State    *domain.PipelineState
	Metrics  artifacts.Metrics
}

// Run executes one full pipeline pass over items: time filtering, text
// sanitization, embedding, dedup, clustering, candidate selection, then
// bounded-parallel stages 1-3 per cluster, assembly, and artifact
// persistence. A failing cluster is logged and skipped (its state records
// the error) rather than aborting the run, per spec.md §7.
func (p *Pipeline) Run(ctx context.Context, items []domain.RawItem) (Result, error) {
	runID := uuid.NewString()

	writer, err := artifacts.NewWriter(p.cfg.OutputDir, runID)
	if err != nil {
		return Result{}, fmt.Errorf("create artifact writer for run %s: %w", runID, err)
	}

	state := domain.NewPipelineState(runID, writer.Root())

	provider, err := p.providers.Provider(p.cfg.LLMProviderName)
	if err != nil {
		return Result{}, fmt.Errorf("resolve llm provider %s: %w", p.cfg.LLMProviderName, err)
	}

	kept := p.filter.Apply(items)

	bundles, err := p.embedAndCluster(ctx, kept)
	if err != nil {
		return Result{}, err
	}

	selections, drafts := p.runStages(ctx, bundles, provider, writer, state)

	briefing := assemble.Assemble(drafts, selections, p.cfg.AssembleConfig, p.cfg.BriefingTitle, p.now())

	if _, err := writer.WriteBriefing(briefing); err != nil {
		return Result{}, fmt.Errorf("write briefing for run %s: %w", runID, err)
	}

	selList := make([]domain.ClusterSelection, 0, len(selections))
	for _, sel := range selections {
		selList = append(selList, sel)
	}

	clustersFailed := 0

	for _, cs := range state.Topics {
		if !cs.Succeeded() {
			clustersFailed++
		}
	}

	metrics := artifacts.Compute(selList, briefing, len(state.Topics), clustersFailed)
	if _, err := writer.WriteMetrics(metrics); err != nil {
		return Result{}, fmt.Errorf("write metrics for run %s: %w", runID, err)
	}

	return Result{RunID: runID, Briefing: briefing, State: state, Metrics: metrics}, nil
}

// embedAndCluster runs sanitize -> embed -> dedup -> cluster ->
// candidate-selection (components B-F), returning one ClusterBundle per
// surviving, non-noise cluster.
func (p *Pipeline) embedAndCluster(ctx context.Context, items []domain.RawItem) ([]domain.ClusterBundle, error) {
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Text
	}

	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed items: %w", err)
	}

	kept := dedup.Suppress(vectors, p.cfg.SimNearDup)

	survivorItems := make([]domain.RawItem, 0, len(items))
	survivorVectors := make([][]float32, 0, len(vectors))

	for i, keep := range kept {
		if keep {
			survivorItems = append(survivorItems, items[i])
			survivorVectors = append(survivorVectors, vectors[i])
		}
	}

	clusters := clustering.Cluster(survivorVectors, p.cfg.MinClusterSize)

	bundles := make([]domain.ClusterBundle, 0, len(clusters))

	for _, c := range clusters {
		if c.IsNoise() {
			continue
		}

		clusterItems := make([]domain.ClusterItem, len(c.Indices))
		clusterVectors := make([][]float32, len(c.Indices))

		for i, idx := range c.Indices {
			item := survivorItems[idx]
			clusterItems[i] = domain.ClusterItem{
				ItemID:    item.ID,
				Text:      item.Text,
				URL:       item.URL,
				Author:    item.Author,
				Source:    item.Source(),
				Timestamp: item.Timestamp,
			}
			clusterVectors[i] = survivorVectors[idx]
		}

		clusterID := fmt.Sprintf("cluster-%d", c.Label)

		bundle, err := p.selector.Select(ctx, clusterID, clusterItems, clusterVectors)
		if err != nil {
			if p.logger != nil {
				p.logger.Warn().Err(err).Str("cluster_id", clusterID).Msg("candidate selection failed, skipping cluster")
			}

			continue
		}

		bundles = append(bundles, bundle)
	}

	bundles = candidates.BundlesBySizeDescending(bundles)

	return bundles, nil
}

// runStages runs stages 1-3 for each bundle with bounded parallelism
// (worker.RunPool), writing each stage's artifact as it completes and
// recording terminal state per cluster. Returns the stage-2 selections
// (needed for assembly's score-based sort) and the stage-3 drafts that
// survived validation.
func (p *Pipeline) runStages(ctx context.Context, bundles []domain.ClusterBundle, provider llm.Provider, writer *artifacts.Writer, state *domain.PipelineState) (map[string]domain.ClusterSelection, []domain.TopicDraft) {
	selections := make(map[string]domain.ClusterSelection, len(bundles))
	drafts := make([]domain.TopicDraft, 0, len(bundles))

	tasks := make([]worker.PoolTask, len(bundles))

	for i, bundle := range bundles {
		bundle := bundle
		runState := &domain.ClusterRunState{ClusterID: bundle.ClusterID}
		state.Topics[bundle.ClusterID] = runState

		tasks[i] = worker.PoolTask{
			ClusterID: bundle.ClusterID,
			Run: func(ctx context.Context) error {
				return p.runCluster(ctx, bundle, provider, writer, runState)
			},
		}
	}

	size := p.cfg.WorkerPoolSize
	if size <= 0 {
		size = 1
	}

	worker.RunPool(ctx, worker.PoolConfig{Name: "stage-pipeline", Size: size, Logger: p.logger}, tasks)

	for _, bundle := range bundles {
		runState := state.Topics[bundle.ClusterID]
		if runState.Stage2 != nil {
			selections[bundle.ClusterID] = *runState.Stage2
		}

		if runState.Succeeded() {
			drafts = append(drafts, *runState.Stage3)
		}
	}

	return selections, drafts
}

// runCluster runs one cluster's stage 1-3 sequence, writing each stage's
// artifact as soon as it is produced. A failure at any stage ends the
// cluster (recorded on runState.Err) without aborting the run.
func (p *Pipeline) runCluster(ctx context.Context, bundle domain.ClusterBundle, provider llm.Provider, writer *artifacts.Writer, runState *domain.ClusterRunState) error {
	facts, err := stages.ExtractFacts(ctx, provider, bundle, p.cfg.CallParams, p.logger)
	if err != nil {
		runState.Err = err

		return err
	}

	if _, err := writer.WriteStage1(facts); err != nil {
		runState.Err = err

		return err
	}

	runState.Stage1 = &facts

	selection, err := stages.Score(ctx, provider, facts, p.cfg.CallParams, p.logger)
	if err != nil {
		runState.Err = err

		return err
	}

	if _, err := writer.WriteStage2(selection); err != nil {
		runState.Err = err

		return err
	}

	runState.Stage2 = &selection

	if len(selection.Picked) == 0 {
		runState.Err = fmt.Errorf("cluster %s: no facts survived scoring", bundle.ClusterID)

		return runState.Err
	}

	draft, err := stages.Draft(ctx, provider, bundle.ClusterID, selection, p.cfg.CallParams, p.logger)
	if err != nil {
		runState.Err = err

		return err
	}

	path, err := writer.WriteStage3(bundle.ClusterID, draft)
	if err != nil {
		runState.Err = err

		return err
	}

	runState.Stage3 = &draft
	runState.ArtifactPath = path

	return nil
}
