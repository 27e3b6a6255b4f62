package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestFileSourceCyclesThroughDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", "frame-a")
	writeFile(t, dir, "b.png", "frame-b")
	writeFile(t, dir, "notes.txt", "not an image")

	source := NewFileSource(dir)
	ctx := context.Background()
	require.NoError(t, source.Start(ctx))
	defer func() { _ = source.Close() }()

	for _, want := range []string{"frame-a", "frame-b", "frame-a"} {
		frame, err := source.Capture(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, string(frame))
	}
}

func TestFileSourceAcceptsSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "only.jpg", "the-frame")

	source := NewFileSource(path)
	ctx := context.Background()
	require.NoError(t, source.Start(ctx))
	defer func() { _ = source.Close() }()

	frame, err := source.Capture(ctx)
	require.NoError(t, err)
	assert.Equal(t, "the-frame", string(frame))
}

func TestFileSourceRejectsEmptyDirectory(t *testing.T) {
	source := NewFileSource(t.TempDir())
	err := source.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image files")
}

func TestFileSourceCaptureBeforeStart(t *testing.T) {
	source := NewFileSource(t.TempDir())
	_, err := source.Capture(context.Background())
	require.Error(t, err)
}
