// Package assemble implements the stage-4 assembler (component J,
// spec.md §4.10): ranks surviving topic drafts, optionally synthesizes a
// leading "Agentic Focus" topic, and projects drafts into the rendered
// Briefing.
package assemble

import (
	"sort"
	"time"

	"github.com/lueurxax/briefing-pipeline/internal/core/domain"
)

const maxAgenticFocusBullets = 4

// Config controls whether agentic promotion runs, per spec.md §6's
// processing.agentic_section flag.
type Config struct {
	AgenticSection bool
}

// Assemble runs spec.md §4.10 steps 1-5: drop empty drafts, sort by
// max_score descending (stable), optionally synthesize a leading
// "Agentic Focus" topic, project to Topic, and set Title/Date.
func Assemble(drafts []domain.TopicDraft, selections map[string]domain.ClusterSelection, cfg Config, title string, now time.Time) domain.Briefing {
	nonEmpty := make([]domain.TopicDraft, 0, len(drafts))

	for _, d := range drafts {
		if len(d.Bullets) > 0 {
			nonEmpty = append(nonEmpty, d)
		}
	}

	sort.SliceStable(nonEmpty, func(i, j int) bool {
		si, sj := maxScore(nonEmpty[i], selections), maxScore(nonEmpty[j], selections)
		if si != sj {
			return si > sj
		}

		return nonEmpty[i].ClusterID < nonEmpty[j].ClusterID
	})

	topics := make([]domain.Topic, 0, len(nonEmpty)+1)

	if cfg.AgenticSection {
		if focus, ok := buildAgenticFocus(nonEmpty); ok {
			topics = append(topics, focus)
			nonEmpty = removeAgentic(nonEmpty)
		}
	}

	for _, d := range nonEmpty {
		topics = append(topics, projectTopic(d))
	}

	return domain.Briefing{Title: title, Date: now, Topics: topics}
}

func maxScore(d domain.TopicDraft, selections map[string]domain.ClusterSelection) int {
	return selections[d.ClusterID].MaxScore()
}

// buildAgenticFocus concatenates the bullets of every agentic-flagged
// draft, in the callers' already-sorted order, capped at
// maxAgenticFocusBullets, per spec.md §4.10 step 3.
func buildAgenticFocus(sorted []domain.TopicDraft) (domain.Topic, bool) {
	var bullets []domain.Bullet

	for _, d := range sorted {
		if !d.Annotations.Agentic {
			continue
		}

		for _, b := range d.Bullets {
			if len(bullets) >= maxAgenticFocusBullets {
				break
			}

			bullets = append(bullets, domain.Bullet{Text: b.Text, URL: b.URL})
		}
	}

	if len(bullets) == 0 {
		return domain.Topic{}, false
	}

	return domain.Topic{
		TopicID:  "agentic-focus",
		Headline: domain.AgenticFocusHeadline,
		Bullets:  bullets,
	}, true
}

func removeAgentic(drafts []domain.TopicDraft) []domain.TopicDraft {
	out := make([]domain.TopicDraft, 0, len(drafts))

	for _, d := range drafts {
		if !d.Annotations.Agentic {
			out = append(out, d)
		}
	}

	return out
}

func projectTopic(d domain.TopicDraft) domain.Topic {
	bullets := make([]domain.Bullet, len(d.Bullets))
	for i, b := range d.Bullets {
		bullets[i] = domain.Bullet{Text: b.Text, URL: b.URL}
	}

	return domain.Topic{TopicID: d.TopicID, Headline: d.Headline, Bullets: bullets}
}
