package stages

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lueurxax/briefing-pipeline/internal/core/domain"
	"github.com/lueurxax/briefing-pipeline/internal/llm"
)

// Score runs stage 2 (H): prompts provider to score and pick facts from
// clusterFacts, returning a ClusterSelection with every score dimension
// clamped to its spec.md §3 bound (the schema constrains the LLM to
// integers but not the exact range, so this guards the invariant
// defensively rather than trusting provider compliance).
func Score(ctx context.Context, provider llm.Provider, clusterFacts domain.ClusterFacts, params CallParams, logger *zerolog.Logger) (domain.ClusterSelection, error) {
	result, err := llm.Invoke(ctx, provider, llm.Request{
		Prompt:      renderScorePrompt(clusterFacts.Facts),
		Model:       params.Model,
		Schema:      clusterSelectionSchema,
		Temperature: params.Temperature,
		Timeout:     params.Timeout,
		Retries:     params.Retries,
	}, logger)
	if err != nil {
		return domain.ClusterSelection{}, fmt.Errorf("score cluster %s: %w", clusterFacts.ClusterID, err)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return domain.ClusterSelection{}, fmt.Errorf("marshal scoring response: %w", err)
	}

	var parsed struct {
		Picked  []domain.ScoredFact  `json:"picked"`
		Dropped []domain.DroppedFact `json:"dropped"`
		Notes   string               `json:"notes"`
	}

	if err := json.Unmarshal(raw, &parsed); err != nil {
		return domain.ClusterSelection{}, fmt.Errorf("decode scoring response: %w", err)
	}

	for i := range parsed.Picked {
		parsed.Picked[i].Scores = clampScores(parsed.Picked[i].Scores)
	}

	return domain.ClusterSelection{
		ClusterID: clusterFacts.ClusterID,
		Picked:    parsed.Picked,
		Dropped:   parsed.Dropped,
		Notes:     parsed.Notes,
	}, nil
}

func clampScores(s domain.FactScores) domain.FactScores {
	return domain.FactScores{
		Actionability: clamp(s.Actionability, 0, 3),
		Novelty:       clamp(s.Novelty, 0, 2),
		Impact:        clamp(s.Impact, 0, 2),
		Reusability:   clamp(s.Reusability, 0, 2),
		Reliability:   clamp(s.Reliability, 0, 1),
		AgenticBonus:  clamp(s.AgenticBonus, 0, 1),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
