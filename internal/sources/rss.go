package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/lueurxax/briefing-pipeline/internal/core/domain"
)

const (
	rssFetchTimeout = 15 * time.Second
	headerUserAgent = "User-Agent"
)

// RSSAdapter fetches one RSS/Atom feed and normalizes its entries into
// RawItems, grounded on the teacher's crawler.Discovery (gofeed.Parser
// over a timeout-bounded http.Client) but narrowed to the single
// "parse a known feed URL" case spec.md §6 actually needs — discovery of
// feed URLs from an arbitrary domain is out of scope.
type RSSAdapter struct {
	feedURL    string
	source     string
	userAgent  string
	httpClient *http.Client
	parser     *gofeed.Parser
	logger     *zerolog.Logger
}

// NewRSSAdapter constructs an adapter for one feed URL. source labels
// RawItem.Metadata["source"] for downstream attribution.
func NewRSSAdapter(feedURL, source, userAgent string, logger *zerolog.Logger) *RSSAdapter {
	return &RSSAdapter{
		feedURL:    feedURL,
		source:     source,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: rssFetchTimeout},
		parser:     gofeed.NewParser(),
		logger:     logger,
	}
}

// Name implements Adapter.
func (a *RSSAdapter) Name() string { return a.source }

// Fetch implements Adapter: GETs the feed, parses every entry, normalizes
// its URL and timestamp, and drops entries failing either — per the
// source adapter contract's "adapters are responsible for URL
// normalization and timestamp parsing; items failing either are
// dropped by the adapter."
func (a *RSSAdapter) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request for %s: %w", a.feedURL, err)
	}

	req.Header.Set(headerUserAgent, a.userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", a.feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned status %d", a.feedURL, resp.StatusCode)
	}

	feed, err := a.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", a.feedURL, err)
	}

	items := make([]domain.RawItem, 0, len(feed.Items))

	for _, entry := range feed.Items {
		item, ok := a.normalize(entry)
		if !ok {
			continue
		}

		items = append(items, item)
	}

	return items, nil
}

// normalize converts one gofeed.Item into a RawItem, reporting ok=false
// if its URL or timestamp cannot be resolved.
func (a *RSSAdapter) normalize(entry *gofeed.Item) (domain.RawItem, bool) {
	normalizedURL, ok := normalizeURL(entry.Link)
	if !ok {
		a.logWarn(entry.Link, "invalid url, dropping feed entry")

		return domain.RawItem{}, false
	}

	ts, ok := resolveTimestamp(entry)
	if !ok {
		a.logWarn(entry.Link, "unparseable timestamp, dropping feed entry")

		return domain.RawItem{}, false
	}

	id := entry.GUID
	if id == "" {
		id = normalizedURL
	}

	return domain.RawItem{
		ID:        id,
		Text:      entryText(entry),
		URL:       normalizedURL,
		Author:    entryAuthor(entry),
		Timestamp: ts,
		Metadata:  map[string]string{"source": a.source},
	}, true
}

func normalizeURL(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}

	u.Fragment = ""

	return u.String(), true
}

func resolveTimestamp(entry *gofeed.Item) (time.Time, bool) {
	if entry.PublishedParsed != nil {
		return *entry.PublishedParsed, true
	}

	if entry.UpdatedParsed != nil {
		return *entry.UpdatedParsed, true
	}

	raw := entry.Published
	if raw == "" {
		raw = entry.Updated
	}

	if raw == "" {
		return time.Time{}, false
	}

	ts, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, false
	}

	return ts, true
}

func entryText(entry *gofeed.Item) string {
	if entry.Description != "" {
		return strings.TrimSpace(entry.Title + "\n\n" + entry.Description)
	}

	return strings.TrimSpace(entry.Title)
}

func (a *RSSAdapter) logWarn(link, reason string) {
	if a.logger == nil {
		return
	}

	a.logger.Warn().Str("feed", a.feedURL).Str("link", link).Msg(reason)
}

func entryAuthor(entry *gofeed.Item) string {
	if entry.Author != nil && entry.Author.Name != "" {
		return entry.Author.Name
	}

	if len(entry.Authors) > 0 && entry.Authors[0] != nil {
		return entry.Authors[0].Name
	}

	return ""
}
