package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/pkg/errno"
)

func TestArtifactsFor(t *testing.T) {
	artifacts := ArtifactsFor("20260901120000")

	assert.Equal(t, "20260901120000.mp4", artifacts.Video)
	assert.Equal(t, "20260901120000.gif", artifacts.Animation)
	assert.Equal(t, "20260901120000_000000010.png", artifacts.Preview)
}

func TestArtifactMoverMove(t *testing.T) {
	srcDir := t.TempDir()
	destDir := filepath.Join(t.TempDir(), "processed")
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "out.mp4"), []byte("video"), 0o644))

	mover := NewArtifactMover(destDir, "")
	moved, err := mover.Move(srcDir, "out.mp4", true)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(destDir, "out.mp4"), moved)

	data, err := os.ReadFile(moved)
	require.NoError(t, err)
	assert.Equal(t, "video", string(data))

	_, err = os.Stat(filepath.Join(srcDir, "out.mp4"))
	assert.True(t, os.IsNotExist(err), "source must be gone after the move")
}

func TestArtifactMoverPreviewDirectory(t *testing.T) {
	srcDir := t.TempDir()
	processedDir := filepath.Join(t.TempDir(), "processed")
	previewDir := filepath.Join(t.TempDir(), "preview")
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "out.gif"), []byte("gif"), 0o644))

	mover := NewArtifactMover(processedDir, previewDir)
	moved, err := mover.MovePreview(srcDir, "out.gif")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(previewDir, "out.gif"), moved)

	_, err = os.Stat(filepath.Join(processedDir, "out.gif"))
	assert.True(t, os.IsNotExist(err), "preview artifact must not land in the processed directory")
}

func TestArtifactMoverRequiredMissing(t *testing.T) {
	mover := NewArtifactMover(t.TempDir(), "")

	_, err := mover.Move(t.TempDir(), "out.mp4", true)
	require.Error(t, err)

	var bizErr *errno.BizError
	require.True(t, errors.As(err, &bizErr))
	assert.Equal(t, errno.ErrArtifactMissing.Code, bizErr.Code)
}

func TestArtifactMoverOptionalMissing(t *testing.T) {
	mover := NewArtifactMover(t.TempDir(), "")

	moved, err := mover.MovePreview(t.TempDir(), "out.gif")
	require.NoError(t, err)
	assert.Empty(t, moved)
}
