package stages

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/briefing-pipeline/internal/core/domain"
	"github.com/lueurxax/briefing-pipeline/internal/llm"
)

func selectionFixture() domain.ClusterSelection {
	return domain.ClusterSelection{
		ClusterID: "c1",
		Picked: []domain.ScoredFact{
			{FactID: "f1", Text: "t1", URL: "https://example.com/a"},
			{FactID: "f2", Text: "t2", URL: "https://example.com/b"},
		},
	}
}

func TestDraft_ValidDraft(t *testing.T) {
	logger := zerolog.Nop()
	provider := &llm.MockProvider{
		Response: map[string]any{
			"topic_id": "t1",
			"headline": "Headline",
			"bullets": []any{
				map[string]any{"text": "bullet one", "url": "https://example.com/a", "fact_ids": []any{"f1"}},
				map[string]any{"text": "bullet two", "url": "https://example.com/b", "fact_ids": []any{"f2"}},
			},
			"annotations": map[string]any{"agentic": true},
		},
	}

	draft, err := Draft(context.Background(), provider, "c1", selectionFixture(), CallParams{}, &logger)
	require.NoError(t, err)
	assert.Equal(t, "c1", draft.ClusterID)
	assert.True(t, draft.Annotations.Agentic)
	assert.Len(t, draft.Bullets, 2)
}

func TestDraft_DiscardsOnDuplicateBulletURL(t *testing.T) {
	logger := zerolog.Nop()
	provider := &llm.MockProvider{
		Response: map[string]any{
			"topic_id": "t1",
			"headline": "Headline",
			"bullets": []any{
				map[string]any{"text": "bullet one", "url": "https://example.com/a", "fact_ids": []any{"f1"}},
				map[string]any{"text": "bullet two", "url": "https://example.com/a", "fact_ids": []any{"f1"}},
			},
			"annotations": map[string]any{},
		},
	}

	_, err := Draft(context.Background(), provider, "c1", selectionFixture(), CallParams{}, &logger)
	require.Error(t, err)
}

func TestDraft_DiscardsOnTooManyBullets(t *testing.T) {
	logger := zerolog.Nop()

	bullets := make([]any, 5)
	for i := range bullets {
		bullets[i] = map[string]any{"text": "b", "url": "https://example.com/a", "fact_ids": []any{"f1"}}
	}

	provider := &llm.MockProvider{
		Response: map[string]any{
			"topic_id":    "t1",
			"headline":    "Headline",
			"bullets":     bullets,
			"annotations": map[string]any{},
		},
	}

	_, err := Draft(context.Background(), provider, "c1", selectionFixture(), CallParams{}, &logger)
	require.Error(t, err)
}

func TestDraft_DiscardsOnFactIDOutsidePicked(t *testing.T) {
	logger := zerolog.Nop()
	provider := &llm.MockProvider{
		Response: map[string]any{
			"topic_id": "t1",
			"headline": "Headline",
			"bullets": []any{
				map[string]any{"text": "bullet one", "url": "https://example.com/a", "fact_ids": []any{"f99"}},
			},
			"annotations": map[string]any{},
		},
	}

	_, err := Draft(context.Background(), provider, "c1", selectionFixture(), CallParams{}, &logger)
	require.Error(t, err)
}
