package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <item>
      <title>Acme CLI ships a new debug flag</title>
      <description>A closer look at the new flag.</description>
      <link>https://example.com/acme-cli-1</link>
      <guid>https://example.com/acme-cli-1</guid>
      <pubDate>Mon, 02 Jan 2006 15:04:05 MST</pubDate>
      <author>jane@example.com (Jane Doe)</author>
    </item>
    <item>
      <title>Entry with no link</title>
      <description>Should be dropped.</description>
      <pubDate>Mon, 02 Jan 2006 15:04:05 MST</pubDate>
    </item>
    <item>
      <title>Entry with no timestamp</title>
      <description>Should also be dropped.</description>
      <link>https://example.com/no-timestamp</link>
    </item>
  </channel>
</rss>`

func TestRSSAdapter_FetchNormalizesAndDropsInvalidEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(fixtureFeed))
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	adapter := NewRSSAdapter(srv.URL, "example-feed", "test-agent/1.0", &logger)

	items, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "https://example.com/acme-cli-1", item.URL)
	assert.Equal(t, "example-feed", item.Metadata["source"])
	assert.False(t, item.Timestamp.IsZero())
	assert.Contains(t, item.Text, "Acme CLI ships a new debug flag")
	assert.True(t, item.HasValidURL())
}

func TestRSSAdapter_FetchPropagatesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	adapter := NewRSSAdapter(srv.URL, "example-feed", "test-agent/1.0", &logger)

	_, err := adapter.Fetch(context.Background())
	assert.Error(t, err)
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		wantOK bool
	}{
		{"valid https", "https://example.com/a", true},
		{"valid http", "http://example.com/a", true},
		{"missing scheme", "example.com/a", false},
		{"empty", "", false},
		{"ftp scheme", "ftp://example.com/a", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := normalizeURL(tc.in)
			assert.Equal(t, tc.wantOK, ok)
		})
	}
}
