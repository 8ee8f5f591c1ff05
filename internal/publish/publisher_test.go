package publish

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystem_PublishWritesFile(t *testing.T) {
	dir := t.TempDir()
	pub := FileSystem{Dir: filepath.Join(dir, "nested")}

	err := pub.Publish("2026-07-30.md", "# Daily Briefing\n")
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "nested", "2026-07-30.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Daily Briefing\n", string(content))
}
