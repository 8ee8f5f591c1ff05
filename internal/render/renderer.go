// Package render defines the output-rendering external collaborator
// (spec.md §1's "Output rendering (Markdown/JSON/HTML)"). Only a minimal
// interface plus a Markdown implementation are provided — rendering depth
// beyond the one concrete format is out of scope for this module.
package render

import (
	"fmt"
	"strings"

	"github.com/lueurxax/briefing-pipeline/internal/core/domain"
)

// Renderer projects an assembled Briefing into a presentation format.
type Renderer interface {
	Render(briefing domain.Briefing) (string, error)
}

// Markdown renders a Briefing as a flat Markdown document: one H2 per
// topic, bullets as a list, each bullet linking its source URL.
type Markdown struct{}

// Render implements Renderer.
func (Markdown) Render(briefing domain.Briefing) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", briefing.Title)
	fmt.Fprintf(&b, "_%s_\n\n", briefing.Date.Format("2006-01-02"))

	for _, topic := range briefing.Topics {
		fmt.Fprintf(&b, "## %s\n\n", topic.Headline)

		for _, bullet := range topic.Bullets {
			fmt.Fprintf(&b, "- %s ([source](%s))\n", bullet.Text, bullet.URL)
		}

		b.WriteString("\n")
	}

	return b.String(), nil
}
