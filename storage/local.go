package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalSource reads batch files from the local filesystem
type LocalSource struct {
	basePath string
}

// NewLocalSource creates a local source. basePath is prepended to relative
// paths; an empty basePath leaves paths untouched.
func NewLocalSource(basePath string) *LocalSource {
	return &LocalSource{basePath: basePath}
}

// Open opens a batch file for reading
func (s *LocalSource) Open(_ context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(s.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (s *LocalSource) resolve(path string) string {
	if s.basePath == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.basePath, path)
}
