// Package publish defines the publishing external collaborator (spec.md §1's
// "publishing to chat channels"). Only a minimal interface plus a filesystem
// implementation are provided — delivery to actual chat channels is out of
// scope for this module.
package publish

import (
	"fmt"
	"os"
	"path/filepath"
)

// Publisher delivers a rendered briefing document somewhere a reader can see
// it. name is a publisher-specific identifier for the artifact (e.g. a date
// stamp) used to derive a destination.
type Publisher interface {
	Publish(name, rendered string) error
}

// FileSystem publishes by writing the rendered document to <dir>/<name>.
// Stands in for the channel-specific publishers (Telegram, Slack, ...) spec.md
// §1 names but excludes from this module's scope.
type FileSystem struct {
	Dir string
}

// Publish implements Publisher.
func (f FileSystem) Publish(name, rendered string) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("create publish dir %s: %w", f.Dir, err)
	}

	path := filepath.Join(f.Dir, name)

	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("write published artifact %s: %w", path, err)
	}

	return nil
}
