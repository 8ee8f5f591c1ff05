// Package timewindow filters raw items to those inside a recency horizon
// and carrying a parseable timestamp, logging and dropping anything that
// fails either check rather than failing the run. URL validity is left
// to stage G's per-bundle filtering (spec.md §4.7) rather than checked
// here, so a cluster with some invalid-URL items still reaches the LLM
// stages with its valid items intact.
package timewindow

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"

	"github.com/lueurxax/briefing-pipeline/internal/core/domain"
	pipelineerrors "github.com/lueurxax/briefing-pipeline/internal/core/errors"
)

// Filter keeps items whose timestamp is not before now-horizon (timestamps
// later than now are kept too), dropping everything else with a logged
// reason.
type Filter struct {
	horizon time.Duration
	now     func() time.Time
	logger  *zerolog.Logger
}

// New constructs a Filter with the given recency horizon. now defaults to
// time.Now if nil, overridable for deterministic tests.
func New(horizon time.Duration, logger *zerolog.Logger, now func() time.Time) *Filter {
	if now == nil {
		now = time.Now
	}

	return &Filter{horizon: horizon, now: now, logger: logger}
}

// Apply parses each item's timestamp (falling back to dateparse for
// sources that hand back raw strings), drops items outside the horizon
// or with an unparseable timestamp, and returns the survivors in their
// original relative order.
func (f *Filter) Apply(items []domain.RawItem) []domain.RawItem {
	cutoff := f.now().Add(-f.horizon)

	kept := make([]domain.RawItem, 0, len(items))

	for _, item := range items {
		ts, err := f.resolveTimestamp(item)
		if err != nil {
			f.logf(item, "invalid timestamp, dropping")

			continue
		}

		item.Timestamp = ts

		if ts.Before(cutoff) {
			f.logf(item, "outside recency horizon, dropping")

			continue
		}

		kept = append(kept, item)
	}

	return kept
}

// resolveTimestamp returns item.Timestamp if it is already set, otherwise
// attempts to parse a raw string left in Metadata["raw_timestamp"].
func (f *Filter) resolveTimestamp(item domain.RawItem) (time.Time, error) {
	if !item.Timestamp.IsZero() {
		return item.Timestamp, nil
	}

	raw, ok := item.Metadata["raw_timestamp"]
	if !ok || raw == "" {
		return time.Time{}, pipelineerrors.ErrInvalidTimestamp
	}

	return dateparse.ParseAny(raw)
}

func (f *Filter) logf(item domain.RawItem, reason string) {
	if f.logger == nil {
		return
	}

	f.logger.Warn().Str("item_id", item.ID).Str("url", item.URL).Msg(reason)
}
