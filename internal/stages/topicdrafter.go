package stages

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lueurxax/briefing-pipeline/internal/core/domain"
	pipelineerrors "github.com/lueurxax/briefing-pipeline/internal/core/errors"
	"github.com/lueurxax/briefing-pipeline/internal/llm"
)

// Draft runs stage 3 (I): prompts provider for a TopicDraft from
// selection's picked facts, then validates the draft's invariants
// (bullet count, URL distinctness, fact_id/URL membership). Per spec.md
// §7, an invariant violation discards the whole draft rather than
// trimming it — the caller treats the returned error as "this cluster
// produced no topic," not a fatal pipeline error.
func Draft(ctx context.Context, provider llm.Provider, clusterID string, selection domain.ClusterSelection, params CallParams, logger *zerolog.Logger) (domain.TopicDraft, error) {
	result, err := llm.Invoke(ctx, provider, llm.Request{
		Prompt:      renderTopicDraftPrompt(selection.Picked),
		Model:       params.Model,
		Schema:      topicDraftSchema,
		Temperature: params.Temperature,
		Timeout:     params.Timeout,
		Retries:     params.Retries,
	}, logger)
	if err != nil {
		return domain.TopicDraft{}, fmt.Errorf("draft topic for cluster %s: %w", clusterID, err)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return domain.TopicDraft{}, fmt.Errorf("marshal topic-draft response: %w", err)
	}

	var draft domain.TopicDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return domain.TopicDraft{}, fmt.Errorf("decode topic-draft response: %w", err)
	}

	draft.ClusterID = clusterID

	if err := validateDraft(draft, selection); err != nil {
		return domain.TopicDraft{}, fmt.Errorf("cluster %s: %w", clusterID, err)
	}

	return draft, nil
}

func validateDraft(draft domain.TopicDraft, selection domain.ClusterSelection) error {
	if !draft.ValidBulletCount() {
		return fmt.Errorf("%w: %d bullets", pipelineerrors.ErrBulletCountOutOfRange, len(draft.Bullets))
	}

	if !draft.DistinctBulletURLs() {
		return fmt.Errorf("%w: duplicate bullet URL in draft", pipelineerrors.ErrDuplicateBulletURL)
	}

	pickedFactIDs := make(map[string]bool, len(selection.Picked))
	pickedURLs := make(map[string]bool, len(selection.Picked))

	for _, f := range selection.Picked {
		pickedFactIDs[f.FactID] = true
		pickedURLs[f.URL] = true
	}

	for _, b := range draft.Bullets {
		if !pickedURLs[b.URL] {
			return fmt.Errorf("%w: %s", pipelineerrors.ErrURLNotInBundle, b.URL)
		}

		for _, fid := range b.FactIDs {
			if !pickedFactIDs[fid] {
				return fmt.Errorf("%w: fact_id %s not among picked facts", pipelineerrors.ErrInvalidInput, fid)
			}
		}
	}

	return nil
}
