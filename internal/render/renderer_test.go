package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/briefing-pipeline/internal/core/domain"
)

func TestMarkdown_RendersTitleAndTopics(t *testing.T) {
	briefing := domain.Briefing{
		Title: "Daily Briefing",
		Date:  time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC),
		Topics: []domain.Topic{
			{
				TopicID:  "acme",
				Headline: "Acme CLI 降低调试开销",
				Bullets: []domain.Bullet{
					{Text: "Acme CLI's new debug flag cuts session time.", URL: "https://example.com/acme-cli-1"},
				},
			},
		},
	}

	out, err := Markdown{}.Render(briefing)
	require.NoError(t, err)

	assert.Contains(t, out, "# Daily Briefing")
	assert.Contains(t, out, "2026-07-29")
	assert.Contains(t, out, "## Acme CLI 降低调试开销")
	assert.Contains(t, out, "(https://example.com/acme-cli-1)")
}

func TestMarkdown_EmptyBriefingRendersTitleOnly(t *testing.T) {
	briefing := domain.Briefing{Title: "Empty Run", Date: time.Now()}

	out, err := Markdown{}.Render(briefing)
	require.NoError(t, err)
	assert.Contains(t, out, "# Empty Run")
}
