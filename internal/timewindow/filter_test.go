package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/briefing-pipeline/internal/core/domain"
)

func TestFilter_Apply(t *testing.T) {
	fixedNow := time.Date(2026, 7, 29, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return fixedNow }

	items := []domain.RawItem{
		{ID: "fresh", URL: "https://example.com/a", Timestamp: fixedNow.Add(-1 * time.Hour)},
		{ID: "stale", URL: "https://example.com/b", Timestamp: fixedNow.Add(-48 * time.Hour)},
		{ID: "bad-url", URL: "not-a-url", Timestamp: fixedNow.Add(-1 * time.Hour)},
		{ID: "raw-string", URL: "https://example.com/c", Metadata: map[string]string{
			"raw_timestamp": fixedNow.Add(-2 * time.Hour).Format(time.RFC3339),
		}},
		{ID: "unparseable", URL: "https://example.com/d", Metadata: map[string]string{
			"raw_timestamp": "not a timestamp at all !!",
		}},
	}

	f := New(24*time.Hour, nil, now)
	kept := f.Apply(items)

	// bad-url survives: URL validity is stage G's job (spec.md §4.7), not
	// component A's. Only recency and timestamp parseability are checked
	// here.
	require.Len(t, kept, 3)
	assert.Equal(t, "fresh", kept[0].ID)
	assert.Equal(t, "bad-url", kept[1].ID)
	assert.Equal(t, "raw-string", kept[2].ID)
}

func TestFilter_Apply_EmptyInput(t *testing.T) {
	f := New(time.Hour, nil, nil)
	assert.Empty(t, f.Apply(nil))
}
