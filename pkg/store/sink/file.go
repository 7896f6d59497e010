package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

type fileSink struct{}

// NewFileSink writes documents to the local file system. The target appears
// only once fully written.
func NewFileSink() Sink {
	return &fileSink{}
}

func (s *fileSink) Put(ctx context.Context, destination string, content []byte, _ string) (string, error) {
	logger := zerolog.Ctx(ctx)

	dir := filepath.Dir(destination)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(destination)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, destination); err != nil {
		return "", fmt.Errorf("failed to move report into %s: %w", destination, err)
	}

	abs, err := filepath.Abs(destination)
	if err != nil {
		abs = destination
	}
	logger.Debug().Str("path", abs).Int("bytes", len(content)).Msg("report written")
	return abs, nil
}
