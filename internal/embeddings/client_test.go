package embeddings

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pipelineerrors "github.com/lueurxax/briefing-pipeline/internal/core/errors"
)

// recordingTransport captures each batch's text lengths and echoes back
// zero vectors, optionally rejecting batches per a custom predicate.
type recordingTransport struct {
	mu          sync.Mutex
	batchLens   [][]int
	rejectBatch func(texts []string) bool
}

func (t *recordingTransport) Embed(_ context.Context, texts []string) ([][]float32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rejectBatch != nil && t.rejectBatch(texts) {
		return nil, fmt.Errorf("%w", pipelineerrors.ErrPayloadTooLarge)
	}

	lens := make([]int, len(texts))
	vectors := make([][]float32, len(texts))

	for i, text := range texts {
		lens[i] = len(text)
		vectors[i] = []float32{float32(len(text))}
	}

	t.batchLens = append(t.batchLens, lens)

	return vectors, nil
}

func TestClient_Embed_RespectsMaxBatchTokens(t *testing.T) {
	transport := &recordingTransport{}
	client := New(transport, "test", Config{
		MaxBatchTokens: 100,
		MaxItemChars:   240,
		CharsPerToken:  2.0,
	}, nil)

	texts := []string{
		repeat("a", 400),
		repeat("b", 400),
		repeat("c", 120),
	}

	vectors, err := client.Embed(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	// max_item_chars truncation caps every text at
	// min(240, 100*2.0)=200 chars, so the inputs become 200, 200 and 120
	// chars, i.e. 100, 100 and 60 tokens at 2 chars per token. Each fits
	// the 100-token budget alone but no two fit together, so each is sent
	// as its own singleton request.
	assert.Len(t, transport.batchLens, 3)

	for _, batch := range transport.batchLens {
		require.Len(t, batch, 1)
		assert.LessOrEqual(t, batch[0], 200)
	}
}

func TestClient_Embed_Recovers413(t *testing.T) {
	transport := &recordingTransport{
		rejectBatch: func(texts []string) bool {
			if len(texts) > 1 {
				return true
			}

			return len(texts[0]) > 120
		},
	}

	client := New(transport, "test", Config{
		MaxBatchTokens: 1000,
		MaxItemChars:   1000,
		CharsPerToken:  1.0,
	}, nil)

	texts := []string{repeat("x", 280), repeat("y", 280)}

	vectors, err := client.Embed(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 2)

	for _, batch := range transport.batchLens {
		require.Len(t, batch, 1)
		assert.LessOrEqual(t, batch[0], 120)
	}
}

func TestClient_Embed_PreservesIndexAlignment(t *testing.T) {
	transport := &recordingTransport{}
	client := New(transport, "test", Config{
		MaxBatchTokens: 1000,
		MaxItemChars:   1000,
		CharsPerToken:  4.0,
	}, nil)

	texts := []string{"short", "a bit longer text", "x"}

	vectors, err := client.Embed(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))

	for i, v := range vectors {
		require.Len(t, v, 1)
		assert.Equal(t, float32(len(texts[i])), v[0])
	}
}

func TestClient_Embed_Empty(t *testing.T) {
	client := New(&recordingTransport{}, "test", Config{MaxBatchTokens: 10, MaxItemChars: 10, CharsPerToken: 1}, nil)

	vectors, err := client.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func repeat(s string, n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = s[0]
	}

	return string(out)
}
