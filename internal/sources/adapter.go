// Package sources implements the source adapter contract (spec.md §6):
// a function taking an adapter-specific config and returning a uniform
// list of domain.RawItem. Adapters own URL normalization and timestamp
// parsing; items failing either are dropped here rather than passed
// downstream for the time-window filter to catch.
package sources

import (
	"context"

	"github.com/lueurxax/briefing-pipeline/internal/core/domain"
)

// Adapter fetches raw content from one external source and normalizes it
// into RawItems. Kept deliberately minimal — source ingestion beyond the
// concrete RSS adapter is out of scope (spec.md §1).
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.RawItem, error)
}
