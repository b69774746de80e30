// Package source opens model artifacts from the local filesystem, S3 or Google Cloud Storage.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// ErrNotFound is returned when the referenced artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// FileSource opens artifacts from the local filesystem.
type FileSource struct{}

// NewFileSource creates a new filesystem source.
func NewFileSource() *FileSource {
	return &FileSource{}
}

// Open opens a plain path or a file:// URI.
func (s *FileSource) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := strings.TrimPrefix(ref, "file://")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}
