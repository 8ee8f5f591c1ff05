package candidates

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// Reranker scores candidates[] against query and returns their indices
// sorted by descending relevance, per spec.md §6's
// `rerank(model_ref, query_text, candidates[]) -> order[]` contract.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []string) ([]int, error)
}

// HTTPReranker calls a remote cross-encoder service. Grounded on the same
// raw net/http POST pattern as internal/embeddings.HTTPTransport — the
// pack carries no Go SDK for a cross-encoder/rerank model (the original
// loads BAAI/bge-reranker-v2-m3 as a local sentence-transformers
// CrossEncoder), so a generic HTTP reranker endpoint stands in for it.
type HTTPReranker struct {
	origin     string
	model      string
	httpClient *http.Client
}

// NewHTTPReranker constructs a reranker against origin using model as the
// model_ref, with timeout as the per-request deadline.
func NewHTTPReranker(origin, model string, timeout time.Duration) *HTTPReranker {
	return &HTTPReranker{
		origin:     origin,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type rerankRequest struct {
	Model      string   `json:"model"`
	Query      string   `json:"query"`
	Candidates []string `json:"candidates"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

type rerankResponse struct {
	Results []rerankResult `json:"results"`
}

// Rerank implements Reranker.
func (r *HTTPReranker) Rerank(ctx context.Context, query string, candidates []string) ([]int, error) {
	body, err := json.Marshal(rerankRequest{Model: r.model, Query: query, Candidates: candidates})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.origin+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create rerank request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rerank response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reranker service returned status %d", resp.StatusCode)
	}

	var parsed rerankResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}

	sort.SliceStable(parsed.Results, func(i, j int) bool {
		return parsed.Results[i].Score > parsed.Results[j].Score
	})

	order := make([]int, len(parsed.Results))
	for i, res := range parsed.Results {
		order[i] = res.Index
	}

	return order, nil
}
