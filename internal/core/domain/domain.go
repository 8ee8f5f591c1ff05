// Package domain holds the tagged records that flow through the briefing
// pipeline: raw ingested items, embeddings, clusters, facts, and the final
// briefing. Entities are created in pipeline order and are treated as
// immutable once a component hands them to the next stage.
package domain

import (
	"net/url"
	"strings"
	"time"
)

// RawItem is a single piece of content pulled from a source adapter.
type RawItem struct {
	ID        string
	Text      string
	URL       string
	Author    string
	Timestamp time.Time
	Metadata  map[string]string
}

// HasValidURL reports whether the item's URL parses as an http/https URL.
// The time-window filter does not apply this check; stage 1 filters each
// bundle's items through ClusterItem.HasValidURL instead.
func (r RawItem) HasValidURL() bool {
	u, err := url.Parse(strings.TrimSpace(r.URL))
	if err != nil || u.Host == "" {
		return false
	}

	return u.Scheme == "http" || u.Scheme == "https"
}

// Source returns the originating source label from Metadata, if present.
func (r RawItem) Source() string {
	return r.Metadata["source"]
}

// ItemEmbedding pairs a RawItem with its embedding vector, preserving the
// 1:1 alignment the embedding client is required to guarantee.
type ItemEmbedding struct {
	Item   RawItem
	Vector []float32
}

// Cluster is an ordered sequence of surviving item indices sharing a
// density-clustering label. Label -1 is the clusterer's noise bucket.
type Cluster struct {
	Label   int
	Indices []int
}

// IsNoise reports whether this cluster is the density clusterer's noise
// bucket.
func (c Cluster) IsNoise() bool {
	return c.Label == -1
}

// ClusterItem is a single item as seen by the LLM stages: already
// reranked, carrying only the fields a prompt needs.
type ClusterItem struct {
	ItemID    string
	Text      string
	URL       string
	Author    string
	Source    string
	Timestamp time.Time
}

// HasValidURL reports whether the item's URL parses as an http/https URL.
// The fact extractor filters out items failing this check before
// prompting the LLM, per spec.md §4.7 — the time-window filter does not
// check URLs, so a cluster bundle can reach this stage carrying an item
// with an invalid URL.
func (c ClusterItem) HasValidURL() bool {
	return RawItem{URL: c.URL}.HasValidURL()
}

// ClusterBundle is the post-reranking representation of one cluster, ready
// for stage-1 fact extraction.
type ClusterBundle struct {
	ClusterID string
	Items     []ClusterItem
}

// URLs returns the set of item URLs belonging to this bundle.
func (b ClusterBundle) URLs() map[string]bool {
	out := make(map[string]bool, len(b.Items))
	for _, it := range b.Items {
		out[it.URL] = true
	}

	return out
}

// Fact is a single atomic claim extracted from a cluster, carrying a
// source URL that must belong to the originating ClusterBundle.
type Fact struct {
	FactID string `json:"fact_id"`
	Text   string `json:"text"`
	URL    string `json:"url"`
}

// RejectedFact records a fact the extractor proposed that failed
// validation, e.g. its URL did not belong to the bundle's items.
type RejectedFact struct {
	FactID string `json:"fact_id,omitempty"`
	Reason string `json:"reason"`
}

// ClusterFacts is the stage-1 output: the facts extracted from one
// cluster, plus anything rejected along the way.
type ClusterFacts struct {
	ClusterID string         `json:"cluster_id"`
	Facts     []Fact         `json:"facts"`
	Rejected  []RejectedFact `json:"rejected,omitempty"`
}

// FactScores holds the six bounded scoring dimensions assigned by stage 2.
type FactScores struct {
	Actionability int `json:"actionability"` // 0-3
	Novelty       int `json:"novelty"`       // 0-2
	Impact        int `json:"impact"`        // 0-2
	Reusability   int `json:"reusability"`   // 0-2
	Reliability   int `json:"reliability"`   // 0-1
	AgenticBonus  int `json:"agentic_bonus"` // 0-1
}

// WeightedTotal sums the six score dimensions.
func (s FactScores) WeightedTotal() int {
	return s.Actionability + s.Novelty + s.Impact + s.Reusability + s.Reliability + s.AgenticBonus
}

// ScoredFact augments a Fact with its stage-2 scores and rationale.
type ScoredFact struct {
	FactID        string     `json:"fact_id"`
	Text          string     `json:"text"`
	URL           string     `json:"url"`
	Scores        FactScores `json:"scores"`
	StrategicFlag bool       `json:"strategic_flag,omitempty"`
	Rationale     string     `json:"rationale,omitempty"`
}

// DroppedFact records a fact omitted from ClusterSelection.Picked.
type DroppedFact struct {
	FactID string `json:"fact_id"`
	Reason string `json:"reason"`
}

// ClusterSelection is the stage-2 output.
type ClusterSelection struct {
	ClusterID string        `json:"cluster_id"`
	Picked    []ScoredFact  `json:"picked"`
	Dropped   []DroppedFact `json:"dropped,omitempty"`
	Notes     string        `json:"notes,omitempty"`
}

// MaxScore returns the highest weighted total among picked facts, or 0 if
// none were picked.
func (s ClusterSelection) MaxScore() int {
	max := 0

	for i, f := range s.Picked {
		total := f.Scores.WeightedTotal()
		if i == 0 || total > max {
			max = total
		}
	}

	return max
}

// HasAgentic reports whether any picked fact earned an agentic bonus.
func (s ClusterSelection) HasAgentic() bool {
	for _, f := range s.Picked {
		if f.Scores.AgenticBonus > 0 {
			return true
		}
	}

	return false
}

// HasStrategic reports whether any picked fact is flagged strategic.
func (s ClusterSelection) HasStrategic() bool {
	for _, f := range s.Picked {
		if f.StrategicFlag {
			return true
		}
	}

	return false
}

// BulletDraft is one bullet in a stage-3 TopicDraft, still carrying the
// fact_ids that justify it.
type BulletDraft struct {
	Text    string   `json:"text"`
	URL     string   `json:"url"`
	FactIDs []string `json:"fact_ids,omitempty"`
}

// DraftAnnotations carries flags set by stage 3 that influence stage-4
// assembly without appearing in the rendered Briefing.
type DraftAnnotations struct {
	Agentic   bool `json:"agentic,omitempty"`
	Strategic bool `json:"strategic,omitempty"`
}

// TopicDraft is the stage-3 output for one cluster.
type TopicDraft struct {
	ClusterID   string           `json:"-"`
	TopicID     string           `json:"topic_id"`
	Headline    string           `json:"headline"`
	Bullets     []BulletDraft    `json:"bullets"`
	Annotations DraftAnnotations `json:"annotations"`
	Notes       string           `json:"notes,omitempty"`
}

// DistinctBulletURLs reports whether every bullet in the draft has a
// unique URL, one of the invariants stage 3 checks before accepting a
// draft.
func (d TopicDraft) DistinctBulletURLs() bool {
	seen := make(map[string]bool, len(d.Bullets))
	for _, b := range d.Bullets {
		if seen[b.URL] {
			return false
		}

		seen[b.URL] = true
	}

	return true
}

// ValidBulletCount reports whether the draft has between 1 and 4
// bullets, inclusive.
func (d TopicDraft) ValidBulletCount() bool {
	return len(d.Bullets) >= 1 && len(d.Bullets) <= 4
}

// Bullet is the rendered form of a BulletDraft: annotations and fact_ids
// dropped.
type Bullet struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Topic is the rendered form of a TopicDraft.
type Topic struct {
	TopicID  string   `json:"topic_id"`
	Headline string   `json:"headline"`
	Bullets  []Bullet `json:"bullets"`
}

// Briefing is the pipeline's terminal artifact.
type Briefing struct {
	Title  string    `json:"title"`
	Date   time.Time `json:"date"`
	Topics []Topic   `json:"topics"`
}

// AgenticFocusHeadline is the fixed headline used for the synthesized
// leading topic when agentic promotion applies.
const AgenticFocusHeadline = "Agentic Focus"

// ClusterRunState records, per cluster, the terminal state of a pipeline
// run: which stage artifacts exist and whether the cluster contributed a
// topic to the final briefing. Kept separately from Briefing so a failed
// cluster's partial history survives even when no topic was emitted.
type ClusterRunState struct {
	ClusterID    string
	Stage1       *ClusterFacts
	Stage2       *ClusterSelection
	Stage3       *TopicDraft
	Err          error
	ArtifactPath string
}

// Succeeded reports whether this cluster produced a stage-3 draft without
// error.
func (s ClusterRunState) Succeeded() bool {
	return s.Err == nil && s.Stage3 != nil
}

// PipelineState is the accumulated per-run state handed between pipeline
// stages and to the artifact writer; Topics keys by cluster ID, mirroring
// the original implementation's run-scoped state object.
type PipelineState struct {
	RunID        string
	ArtifactRoot string
	Topics       map[string]*ClusterRunState
}

// NewPipelineState allocates a state with an initialized Topics map.
func NewPipelineState(runID, artifactRoot string) *PipelineState {
	return &PipelineState{
		RunID:        runID,
		ArtifactRoot: artifactRoot,
		Topics:       make(map[string]*ClusterRunState),
	}
}
