package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"cloud.google.com/go/storage"
)

// GCSSource opens gs://bucket/object artifacts using application default credentials.
type GCSSource struct {
	once   sync.Once
	client *storage.Client
	err    error
}

// NewGCSSource creates a new Google Cloud Storage source.
func NewGCSSource() *GCSSource {
	return &GCSSource{}
}

// Open reads the object referenced by a gs:// URI.
func (s *GCSSource) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	bucket, object, err := splitURI(ref, "gs")
	if err != nil {
		return nil, err
	}

	s.once.Do(func() {
		s.client, s.err = storage.NewClient(ctx)
		if s.err != nil {
			s.err = fmt.Errorf("failed to create storage client: %w", s.err)
		}
	})
	if s.err != nil {
		return nil, s.err
	}

	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	return r, nil
}

// Close releases the storage client if one was created.
func (s *GCSSource) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
