package embeddings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	pipelineerrors "github.com/lueurxax/briefing-pipeline/internal/core/errors"
	"github.com/lueurxax/briefing-pipeline/internal/platform/observability"
	"github.com/lueurxax/briefing-pipeline/internal/text"
)

const (
	maxTransportAttempts = 3
	payloadTrimFraction  = 0.7
)

// Config bounds the dynamic batching algorithm.
type Config struct {
	MaxBatchTokens int
	MaxItemChars   int
	CharsPerToken  float64 // must be >= 0.1
}

// workItem is one (index, text, force_single) entry in the batching work
// queue, per spec's explicit "small state machine, not call-stack
// recursion" design note.
type workItem struct {
	index       int
	text        string
	forceSingle bool
}

// Client implements the embedding client contract: embed(texts) -> vectors,
// preserving index alignment, with dynamic batching and 413 recovery.
type Client struct {
	transport Transport
	provider  string
	cfg       Config
	logger    *zerolog.Logger
}

// New constructs a Client. provider is a label used for metrics only.
func New(transport Transport, provider string, cfg Config, logger *zerolog.Logger) *Client {
	if cfg.CharsPerToken < 0.1 {
		cfg.CharsPerToken = 0.1
	}

	return &Client{transport: transport, provider: provider, cfg: cfg, logger: logger}
}

// Embed sanitizes and batches texts, calls the transport per batch with
// 413 recovery and transport retry, and returns vectors aligned 1:1 with
// the input order. Every slot is guaranteed filled or an error is
// returned — a hole would be a fatal coding bug per spec's "missing
// embedding" invariant.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	queue := c.buildQueue(texts)

	results := make([][]float32, len(texts))
	filled := make([]bool, len(texts))

	for len(queue) > 0 {
		front := queue[0]

		if tok := tokenCount(front.text, c.cfg.CharsPerToken); tok > c.cfg.MaxBatchTokens {
			reduced, ok := reduceText(front.text, c.cfg.MaxBatchTokens, c.cfg.CharsPerToken)
			if !ok {
				return nil, fmt.Errorf("%w: cannot reduce oversized text at index %d below max_batch_tokens",
					pipelineerrors.ErrInvalidInput, front.index)
			}

			queue[0] = workItem{index: front.index, text: reduced, forceSingle: true}

			continue
		}

		var batch []workItem
		batch, queue = popBatch(queue, c.cfg.MaxBatchTokens, c.cfg.CharsPerToken)

		vectors, err := c.callBatch(ctx, batch)
		if err != nil {
			if errors.Is(err, pipelineerrors.ErrPayloadTooLarge) {
				observability.EmbeddingPayloadTooLarge.WithLabelValues(c.provider).Inc()
				queue = append(recoverFrom413(batch), queue...)

				continue
			}

			return nil, err
		}

		for i, item := range batch {
			results[item.index] = vectors[i]
			filled[item.index] = true
		}
	}

	for i, ok := range filled {
		if !ok {
			return nil, fmt.Errorf("%w: no embedding produced for index %d", pipelineerrors.ErrEmptyResponse, i)
		}
	}

	return results, nil
}

// buildQueue sanitizes and truncates each text, then seeds the work
// queue in original index order.
func (c *Client) buildQueue(texts []string) []workItem {
	maxChars := c.cfg.MaxItemChars
	if byTokens := int(float64(c.cfg.MaxBatchTokens) * c.cfg.CharsPerToken); byTokens < maxChars {
		maxChars = byTokens
	}

	queue := make([]workItem, len(texts))

	for i, t := range texts {
		cleaned := text.CleanForEmbedding(t)
		if maxChars > 0 && len(cleaned) > maxChars {
			cleaned = cleaned[:maxChars]
		}

		queue[i] = workItem{index: i, text: cleaned}
	}

	return queue
}

// popBatch pops items off the front of the queue while the running token
// sum stays within maxBatchTokens, stopping at budget overflow or at a
// force_single entry (which is always popped alone).
func popBatch(queue []workItem, maxBatchTokens int, charsPerToken float64) (batch, rest []workItem) {
	sum := 0

	i := 0
	for ; i < len(queue); i++ {
		item := queue[i]
		tok := tokenCount(item.text, charsPerToken)

		if len(batch) > 0 && (sum+tok > maxBatchTokens || item.forceSingle) {
			break
		}

		batch = append(batch, item)
		sum += tok

		if item.forceSingle {
			i++

			break
		}
	}

	return batch, queue[i:]
}

// recoverFrom413 splits a rejected batch in half (or trims a singleton)
// and re-marks the pieces force_single, per spec §4.2: this recovery path
// does not consume a transport-retry attempt.
func recoverFrom413(batch []workItem) []workItem {
	if len(batch) == 1 {
		item := batch[0]
		newLen := int(float64(len(item.text)) * payloadTrimFraction)

		if newLen < 1 {
			newLen = 1
		}

		if newLen < len(item.text) {
			item.text = item.text[:newLen]
		}

		item.forceSingle = true

		return []workItem{item}
	}

	mid := len(batch) / 2
	out := make([]workItem, 0, len(batch))

	for _, half := range [][]workItem{batch[:mid], batch[mid:]} {
		for _, item := range half {
			item.forceSingle = true
			out = append(out, item)
		}
	}

	return out
}

// callBatch invokes the transport with up to 3 attempts and exponential
// backoff (2^attempt seconds) for transient failures. A payload-too-large
// error is returned immediately without consuming a retry attempt.
func (c *Client) callBatch(ctx context.Context, batch []workItem) ([][]float32, error) {
	texts := make([]string, len(batch))
	for i, item := range batch {
		texts[i] = item.text
	}

	start := time.Now()

	var lastErr error

	for attempt := 0; attempt < maxTransportAttempts; attempt++ {
		vectors, err := c.transport.Embed(ctx, texts)

		observability.EmbeddingLatency.WithLabelValues(c.provider).Observe(time.Since(start).Seconds())

		if err == nil {
			observability.EmbeddingRequests.WithLabelValues(c.provider, observability.StatusSuccess).Inc()
			observability.EmbeddingBatchSize.WithLabelValues(c.provider).Observe(float64(len(batch)))

			return vectors, nil
		}

		if errors.Is(err, pipelineerrors.ErrPayloadTooLarge) {
			return nil, err
		}

		lastErr = err

		observability.EmbeddingRequests.WithLabelValues(c.provider, observability.StatusError).Inc()

		if c.logger != nil {
			c.logger.Warn().Err(err).Int("attempt", attempt).Int("batch_size", len(batch)).Msg("embedding transport call failed")
		}

		if attempt < maxTransportAttempts-1 {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, lastErr
}

// tokenCount estimates the token count of text: ceil(len(text)/charsPerToken),
// floored at 1.
func tokenCount(t string, charsPerToken float64) int {
	if len(t) == 0 {
		return 1
	}

	n := int(math.Ceil(float64(len(t)) / charsPerToken))
	if n < 1 {
		n = 1
	}

	return n
}

// reduceText halves text's length (or caps it at maxBatchTokens*charsPerToken,
// whichever is smaller), reporting ok=false if no shorter, non-empty
// result is possible.
func reduceText(t string, maxBatchTokens int, charsPerToken float64) (reduced string, ok bool) {
	half := len(t) / 2

	capChars := int(float64(maxBatchTokens) * charsPerToken)
	if capChars < half {
		half = capChars
	}

	if half < 1 || half >= len(t) {
		return "", false
	}

	return t[:half], true
}
