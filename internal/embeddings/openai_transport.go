package embeddings

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	pipelineerrors "github.com/lueurxax/briefing-pipeline/internal/core/errors"
)

// OpenAITransport is an alternate Transport backed directly by OpenAI's
// embeddings API instead of a generic TEI endpoint, grounded on the
// teacher's internal/core/embeddings/openai.go provider.
type OpenAITransport struct {
	client *openai.Client
	model  string
}

// NewOpenAITransport constructs a Transport using the given API key and
// embedding model (e.g. "text-embedding-3-small").
func NewOpenAITransport(apiKey, model string) *OpenAITransport {
	return &OpenAITransport{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Embed implements Transport. OpenAI's batch embeddings endpoint does not
// distinguish payload-too-large with a dedicated status the go-openai SDK
// surfaces separately, so any SDK error here is treated as transient and
// left to the caller's retry policy.
func (t *OpenAITransport) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := t.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(t.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", pipelineerrors.ErrEmptyResponse, len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		vectors[d.Index] = d.Embedding
	}

	return vectors, nil
}
