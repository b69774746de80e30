package ports

import (
	"context"
	"io"
)

// ArtifactSource opens persisted model artifacts by reference (path or URI).
type ArtifactSource interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}
