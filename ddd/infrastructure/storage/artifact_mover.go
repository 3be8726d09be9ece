package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"videogen-service/pkg/errno"
	"videogen-service/pkg/logger"
)

// ArtifactSet names the files one finished render is expected to leave in
// the backend's output directory, keyed by the backend's timestring.
type ArtifactSet struct {
	Video     string // {timestring}.mp4
	Animation string // {timestring}.gif
	Preview   string // {timestring}_000000010.png
}

// ArtifactsFor derives artifact names from the backend's batch timestring.
func ArtifactsFor(timestring string) ArtifactSet {
	return ArtifactSet{
		Video:     timestring + ".mp4",
		Animation: timestring + ".gif",
		Preview:   timestring + "_000000010.png",
	}
}

// ArtifactMover relocates backend output files out of the backend's scratch
// directory: the finished video into the processed directory, the preview
// gif and frame into the preview directory.
type ArtifactMover struct {
	processedDir string
	previewDir   string
}

func NewArtifactMover(processedDir, previewDir string) *ArtifactMover {
	if previewDir == "" {
		previewDir = processedDir
	}
	return &ArtifactMover{processedDir: processedDir, previewDir: previewDir}
}

// Move relocates the finished video into the processed directory, returning
// its new absolute path. The video is mandatory for a finished render.
func (m *ArtifactMover) Move(srcDir, name string, required bool) (string, error) {
	return m.relocate(srcDir, name, m.processedDir, required)
}

// MovePreview relocates a preview artifact into the preview directory. The
// gif and preview frame are optional and a missing one is only logged.
func (m *ArtifactMover) MovePreview(srcDir, name string) (string, error) {
	return m.relocate(srcDir, name, m.previewDir, false)
}

func (m *ArtifactMover) relocate(srcDir, name, destDir string, required bool) (string, error) {
	src := filepath.Join(srcDir, name)
	dst := filepath.Join(destDir, name)

	if _, err := os.Stat(src); err != nil {
		if required {
			return "", errno.NewBizError(errno.ErrArtifactMissing, fmt.Errorf("%s: %w", src, err))
		}
		logger.Infof("optional artifact missing src=%s", src)
		return "", nil
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination directory: %w", err)
	}

	if err := os.Rename(src, dst); err != nil {
		// Rename fails across filesystems; fall back to copy and remove.
		if copyErr := copyFile(src, dst); copyErr != nil {
			return "", fmt.Errorf("relocate artifact %s: %w", name, copyErr)
		}
		if rmErr := os.Remove(src); rmErr != nil {
			logger.Warnf("remove source artifact failed src=%s err=%v", src, rmErr)
		}
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
