// Package candidates implements the candidate selector + reranker
// (component F): per-cluster centroid top-K selection, cluster-centrality
// query-text selection, and cross-encoder reranking, producing the
// ClusterBundle list consumed by the LLM stages.
package candidates

import (
	"context"
	"fmt"
	"sort"

	"github.com/lueurxax/briefing-pipeline/internal/core/domain"
	"github.com/lueurxax/briefing-pipeline/internal/dedup"
)

// Config bounds the selection steps, grounded on spec.md §6's
// processing.initial_topk / processing.max_candidates_per_cluster.
type Config struct {
	InitialTopK            int
	MaxCandidatesPerCluster int
}

// Selector runs steps 1-5 of spec.md §4.5 over a single cluster's member
// embeddings, then BundlesBySizeDescending sorts the resulting per-cluster lists by size
// descending.
type Selector struct {
	cfg      Config
	reranker Reranker
}

// New constructs a Selector against the given reranker.
func New(cfg Config, reranker Reranker) *Selector {
	return &Selector{cfg: cfg, reranker: reranker}
}

// member is one cluster item paired with its embedding, kept together
// through selection and reranking.
type member struct {
	item   domain.ClusterItem
	vector []float32
}

// Select runs the full per-cluster pipeline: centroid top-k, truncation,
// query selection, and rerank, returning the ClusterBundle for this
// cluster. clusterID labels the resulting bundle.
func (s *Selector) Select(ctx context.Context, clusterID string, items []domain.ClusterItem, vectors [][]float32) (domain.ClusterBundle, error) {
	if len(items) != len(vectors) {
		return domain.ClusterBundle{}, fmt.Errorf("candidates: %d items but %d vectors", len(items), len(vectors))
	}

	if len(items) == 0 {
		return domain.ClusterBundle{ClusterID: clusterID}, nil
	}

	members := make([]member, len(items))
	for i := range items {
		members[i] = member{item: items[i], vector: vectors[i]}
	}

	centroid := meanVector(vectors)

	// Centrality is computed over the full cluster, independent of the
	// top-k/max-candidates truncation applied to the candidate list below,
	// so the query text the reranker sorts against doesn't silently shift
	// for any cluster larger than max_candidates_per_cluster.
	queryText := members[mostCentralIndex(members)].item.Text

	topK := topKByCentroidSimilarity(members, centroid, s.cfg.InitialTopK)
	if s.cfg.MaxCandidatesPerCluster > 0 && len(topK) > s.cfg.MaxCandidatesPerCluster {
		topK = topK[:s.cfg.MaxCandidatesPerCluster]
	}

	order, err := s.reranker.Rerank(ctx, queryText, textsOf(topK))
	if err != nil {
		return domain.ClusterBundle{}, fmt.Errorf("rerank cluster %s: %w", clusterID, err)
	}

	ordered := make([]domain.ClusterItem, 0, len(order))
	for _, idx := range order {
		if idx < 0 || idx >= len(topK) {
			continue
		}

		ordered = append(ordered, topK[idx].item)
	}

	return domain.ClusterBundle{ClusterID: clusterID, Items: ordered}, nil
}

// BundlesBySizeDescending sorts bundles by item count descending, stable
// on ties, per spec.md §4.5's final ordering requirement.
func BundlesBySizeDescending(bundles []domain.ClusterBundle) []domain.ClusterBundle {
	sort.SliceStable(bundles, func(i, j int) bool {
		return len(bundles[i].Items) > len(bundles[j].Items)
	})

	return bundles
}

func meanVector(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}

	dim := len(vectors[0])
	centroid := make([]float32, dim)

	for _, v := range vectors {
		for i := 0; i < dim && i < len(v); i++ {
			centroid[i] += v[i]
		}
	}

	n := float32(len(vectors))
	for i := range centroid {
		centroid[i] /= n
	}

	return centroid
}

// topKByCentroidSimilarity selects min(k, len(members)) members by
// descending cosine similarity to the centroid, ties broken by original
// index to keep the selection deterministic.
func topKByCentroidSimilarity(members []member, centroid []float32, k int) []member {
	type scored struct {
		m     member
		idx   int
		score float32
	}

	ranked := make([]scored, len(members))
	for i, m := range members {
		ranked[i] = scored{m: m, idx: i, score: dedup.CosineSimilarity(m.vector, centroid)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}

		return ranked[i].idx < ranked[j].idx
	})

	if k <= 0 || k > len(ranked) {
		k = len(ranked)
	}

	out := make([]member, k)
	for i := 0; i < k; i++ {
		out[i] = ranked[i].m
	}

	return out
}

// mostCentralIndex returns the index of the member whose mean pairwise
// cosine similarity to all other members is highest, ties broken by the
// lowest index.
func mostCentralIndex(members []member) int {
	best := 0
	bestScore := float32(-2)

	for i := range members {
		if len(members) == 1 {
			return 0
		}

		var sum float32

		for j := range members {
			if i == j {
				continue
			}

			sum += dedup.CosineSimilarity(members[i].vector, members[j].vector)
		}

		mean := sum / float32(len(members)-1)
		if mean > bestScore {
			bestScore = mean
			best = i
		}
	}

	return best
}

func textsOf(members []member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.item.Text
	}

	return out
}
