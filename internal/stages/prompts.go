// Package stages implements the per-cluster LLM stages G/H/I (spec.md
// §4.7-4.9): fact extraction, scoring, and topic drafting, each a
// structured llm.Invoke call against the prior stage's output.
package stages

import (
	"fmt"
	"strings"

	"github.com/lueurxax/briefing-pipeline/internal/core/domain"
)

// Prompt bodies follow the teacher's internal/core/llm/prompts.go idiom:
// raw string constants with placeholder substitution via strings.Replace,
// not a templating library.
const (
	itemPlaceholder = "{{ITEMS}}"

	factExtractPrompt = `You are a fact extraction assistant. Read the following items from one news cluster and extract distinct, atomic facts as a JSON object conforming to the ClusterFacts schema.

Rules:
- Every fact's "url" must be copied verbatim from one of the items below; do not invent a URL.
- Prefer concrete, actionable claims over vague summaries.
- If two items state the same fact, extract it once.

Items:
{{ITEMS}}
`

	scorePrompt = `You are scoring the following candidate facts extracted from one news cluster. Return a JSON object conforming to the ClusterSelection schema.

Score every fact you pick on these six dimensions:
- actionability (0-3): can a reader act on this directly?
- novelty (0-2): is this new information?
- impact (0-2): how consequential is it?
- reusability (0-2): does it generalize beyond this one event?
- reliability (0-1): is the source credible?
- agentic_bonus (0-1): does this concern autonomous coding agents/agentic tooling?

Every fact you do not include in "picked" must appear in "dropped" with a one-sentence reason.

Facts:
{{ITEMS}}
`

	topicDraftPrompt = `You are drafting one topic for a briefing from the following scored facts, all from the same news cluster. Return a JSON object conforming to the TopicDraft schema.

Rules:
- Write 1 to 4 bullets, each citing one or more fact_ids from the picked facts below.
- Every bullet's URL must be unique within this draft.
- Set annotations.agentic true if any of the underlying facts concern autonomous coding agents/agentic tooling.
- Set annotations.strategic true if any of the underlying facts were flagged strategic.

Picked facts:
{{ITEMS}}
`
)

func renderFactExtractPrompt(bundle domain.ClusterBundle) string {
	var items strings.Builder

	for i, it := range bundle.Items {
		fmt.Fprintf(&items, "[%d] url=%s author=%s\n%s\n\n", i, it.URL, it.Author, it.Text)
	}

	return strings.Replace(factExtractPrompt, itemPlaceholder, items.String(), 1)
}

func renderScorePrompt(facts []domain.Fact) string {
	var items strings.Builder

	for _, f := range facts {
		fmt.Fprintf(&items, "fact_id=%s url=%s\n%s\n\n", f.FactID, f.URL, f.Text)
	}

	return strings.Replace(scorePrompt, itemPlaceholder, items.String(), 1)
}

func renderTopicDraftPrompt(picked []domain.ScoredFact) string {
	var items strings.Builder

	for _, f := range picked {
		fmt.Fprintf(&items, "fact_id=%s url=%s weighted_total=%d\n%s\n\n", f.FactID, f.URL, f.Scores.WeightedTotal(), f.Text)
	}

	return strings.Replace(topicDraftPrompt, itemPlaceholder, items.String(), 1)
}
