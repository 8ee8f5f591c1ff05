// Package artifacts implements the artifact writer (component K):
// write-then-rename JSON persistence of per-stage and final pipeline
// output under ${output.dir}/${briefing_id}/, per spec.md §5/§6.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lueurxax/briefing-pipeline/internal/core/domain"
)

// Writer persists pipeline artifacts under a fixed root, one
// sub-directory per briefing run. Grounded on original's utils.write_output
// (os.makedirs + json.dump), extended with the write-then-rename
// discipline spec.md §5 requires ("no cross-cluster locks... paths are
// disjoint by cluster_id") since the original writes its single combined
// output file directly.
type Writer struct {
	root string
}

// NewWriter constructs a Writer rooted at outputDir/briefingID, creating
// the directory if needed.
func NewWriter(outputDir, briefingID string) (*Writer, error) {
	root := filepath.Join(outputDir, briefingID)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root %s: %w", root, err)
	}

	return &Writer{root: root}, nil
}

// Root returns the briefing's artifact root directory.
func (w *Writer) Root() string { return w.root }

// WriteStage1 persists a cluster's fact-extraction output.
func (w *Writer) WriteStage1(facts domain.ClusterFacts) (string, error) {
	return w.writeClusterStage(facts.ClusterID, "stage1", facts)
}

// WriteStage2 persists a cluster's scoring/selection output.
func (w *Writer) WriteStage2(selection domain.ClusterSelection) (string, error) {
	return w.writeClusterStage(selection.ClusterID, "stage2", selection)
}

// WriteStage3 persists a cluster's topic-draft output.
func (w *Writer) WriteStage3(clusterID string, draft domain.TopicDraft) (string, error) {
	return w.writeClusterStage(clusterID, "stage3", draft)
}

// WriteBriefing persists the final assembled briefing.
func (w *Writer) WriteBriefing(briefing domain.Briefing) (string, error) {
	return w.writeJSON(filepath.Join(w.root, "stage4_briefing.json"), briefing)
}

// WriteMetrics persists the run's summary metrics.
func (w *Writer) WriteMetrics(metrics Metrics) (string, error) {
	return w.writeJSON(filepath.Join(w.root, "metrics.json"), metrics)
}

func (w *Writer) writeClusterStage(clusterID, stage string, value any) (string, error) {
	dir := filepath.Join(w.root, clusterID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create cluster artifact dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", clusterID, stage))

	return w.writeJSON(path, value)
}

// writeJSON marshals value with stable key ordering (encoding/json sorts
// map keys; struct field order is already declaration order) to a
// temporary file in the same directory as path, then renames it into
// place — an atomic replace on any POSIX filesystem, avoiding partial
// files a crash mid-write would otherwise leave behind.
func (w *Writer) writeJSON(path string, value any) (string, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal artifact %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write temp artifact %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("rename artifact %s into place: %w", path, err)
	}

	return path, nil
}
