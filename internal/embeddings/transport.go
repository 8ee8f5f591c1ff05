// Package embeddings implements the embedding client contract (component
// C): cooperative dynamic batching under a token budget, HTTP 413
// recovery, and index-aligned vector results.
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	pipelineerrors "github.com/lueurxax/briefing-pipeline/internal/core/errors"
)

// Transport performs the actual remote embedding call for one batch of
// texts, returning vectors in the same order as the input. Implementations
// must distinguish an HTTP 413 (payload too large) from every other
// failure by wrapping pipelineerrors.ErrPayloadTooLarge.
type Transport interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// HTTPTransport calls a generic TEI-style embedding endpoint:
// POST ${origin}/embeddings with body {"input": [text, ...]}, accepting
// either {"data": [{"embedding": [...]}]} or {"embeddings": [[...]]}.
// Grounded on the teacher's hand-rolled Cohere client
// (internal/core/embeddings/cohere.go) — the pack carries no SDK for a
// generic embedding endpoint, so the same raw net/http pattern is reused.
type HTTPTransport struct {
	origin     string
	httpClient *http.Client
}

// NewHTTPTransport constructs a transport against the given origin
// (scheme + host, no trailing slash), using timeout as the per-request
// deadline.
func NewHTTPTransport(origin string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		origin:     origin,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type embedRequest struct {
	Input []string `json:"input"`
}

type embedDataEntry struct {
	Embedding []float32 `json:"embedding"`
}

type embedResponse struct {
	Data       []embedDataEntry `json:"data"`
	Embeddings [][]float32      `json:"embeddings"`
}

// Embed implements Transport.
func (t *HTTPTransport) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.origin+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embed response: %w", err)
	}

	if resp.StatusCode == http.StatusRequestEntityTooLarge {
		return nil, fmt.Errorf("%w: batch of %d texts", pipelineerrors.ErrPayloadTooLarge, len(texts))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding service returned status %d", resp.StatusCode)
	}

	var parsed embedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}

	vectors := parsed.Embeddings
	if len(vectors) == 0 && len(parsed.Data) > 0 {
		vectors = make([][]float32, len(parsed.Data))
		for i, d := range parsed.Data {
			vectors[i] = d.Embedding
		}
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", pipelineerrors.ErrEmptyResponse, len(vectors), len(texts))
	}

	return vectors, nil
}
