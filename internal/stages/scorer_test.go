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

func TestScore_ClampsOutOfRangeScores(t *testing.T) {
	logger := zerolog.Nop()

	clusterFacts := domain.ClusterFacts{
		ClusterID: "c1",
		Facts:     []domain.Fact{{FactID: "f1", Text: "t", URL: "https://example.com/a"}},
	}

	provider := &llm.MockProvider{
		Response: map[string]any{
			"picked": []any{
				map[string]any{
					"fact_id": "f1",
					"text":    "t",
					"url":     "https://example.com/a",
					"scores": map[string]any{
						"actionability": 99,
						"novelty":       -5,
						"impact":        2,
						"reusability":   1,
						"reliability":   1,
						"agentic_bonus": 7,
					},
				},
			},
		},
	}

	selection, err := Score(context.Background(), provider, clusterFacts, CallParams{}, &logger)
	require.NoError(t, err)
	require.Len(t, selection.Picked, 1)

	scores := selection.Picked[0].Scores
	assert.Equal(t, 3, scores.Actionability)
	assert.Equal(t, 0, scores.Novelty)
	assert.Equal(t, 2, scores.Impact)
	assert.Equal(t, 1, scores.Reliability)
	assert.Equal(t, 1, scores.AgenticBonus)
	assert.Equal(t, 8, scores.WeightedTotal())
}

func TestScore_PropagatesProviderError(t *testing.T) {
	logger := zerolog.Nop()
	provider := &llm.MockProvider{Err: assert.AnError}

	_, err := Score(context.Background(), provider, domain.ClusterFacts{ClusterID: "c1"}, CallParams{}, &logger)
	require.Error(t, err)
}
