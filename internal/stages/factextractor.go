package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/briefing-pipeline/internal/core/domain"
	"github.com/lueurxax/briefing-pipeline/internal/llm"
)

// CallParams bundles the LLM invocation parameters shared by all three
// per-cluster stages, sourced from spec.md §6's `summarization.*`
// configuration surface.
type CallParams struct {
	Model       string
	Temperature float64
	Timeout     time.Duration
	Retries     int
}

// ExtractFacts runs stage 1 (G): filters invalid-URL items out of the
// bundle, prompts provider for a ClusterFacts-shaped response, then
// validates every returned fact's URL against the (filtered) bundle,
// moving URL-membership failures into Rejected rather than dropping the
// cluster. Per spec.md §4.7, a cluster with some valid and some invalid
// items is not dropped — it proceeds with only the valid items.
func ExtractFacts(ctx context.Context, provider llm.Provider, bundle domain.ClusterBundle, params CallParams, logger *zerolog.Logger) (domain.ClusterFacts, error) {
	validItems := make([]domain.ClusterItem, 0, len(bundle.Items))

	for _, it := range bundle.Items {
		if it.HasValidURL() {
			validItems = append(validItems, it)
		} else {
			logger.Warn().Str("cluster_id", bundle.ClusterID).Str("item_id", it.ItemID).Msg("dropping item with invalid URL before fact extraction")
		}
	}

	filtered := domain.ClusterBundle{ClusterID: bundle.ClusterID, Items: validItems}

	result, err := llm.Invoke(ctx, provider, llm.Request{
		Prompt:      renderFactExtractPrompt(filtered),
		Model:       params.Model,
		Schema:      clusterFactsSchema,
		Temperature: params.Temperature,
		Timeout:     params.Timeout,
		Retries:     params.Retries,
	}, logger)
	if err != nil {
		return domain.ClusterFacts{}, fmt.Errorf("extract facts for cluster %s: %w", bundle.ClusterID, err)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return domain.ClusterFacts{}, fmt.Errorf("marshal fact-extraction response: %w", err)
	}

	var parsed struct {
		Facts []domain.Fact `json:"facts"`
	}

	if err := json.Unmarshal(raw, &parsed); err != nil {
		return domain.ClusterFacts{}, fmt.Errorf("decode fact-extraction response: %w", err)
	}

	validURLs := filtered.URLs()

	out := domain.ClusterFacts{ClusterID: bundle.ClusterID}

	for _, f := range parsed.Facts {
		if validURLs[f.URL] {
			out.Facts = append(out.Facts, f)
		} else {
			out.Rejected = append(out.Rejected, domain.RejectedFact{
				FactID: f.FactID,
				Reason: "url not in cluster bundle",
			})
		}
	}

	return out, nil
}
