package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/baditaflorin/go_comment_classifier/internal/ports"
)

// Router dispatches artifact references to a source by URI scheme.
// References without a scheme are treated as local paths.
type Router struct {
	sources map[string]ports.ArtifactSource
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithSource registers src for the given URI scheme.
func WithSource(scheme string, src ports.ArtifactSource) RouterOption {
	return func(r *Router) {
		r.sources[strings.ToLower(scheme)] = src
	}
}

// WithS3Config replaces the default S3 source with one using config.
func WithS3Config(config S3Config) RouterOption {
	return WithSource("s3", NewS3Source(config))
}

// NewRouter creates a router serving file, s3 and gs references.
func NewRouter(opts ...RouterOption) *Router {
	file := NewFileSource()
	r := &Router{
		sources: map[string]ports.ArtifactSource{
			"":     file,
			"file": file,
			"s3":   NewS3Source(S3Config{}),
			"gs":   NewGCSSource(),
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open implements ports.ArtifactSource.
func (r *Router) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	scheme := schemeOf(ref)
	src, ok := r.sources[scheme]
	if !ok {
		return nil, fmt.Errorf("unsupported artifact scheme %q in %s", scheme, ref)
	}
	return src.Open(ctx, ref)
}

// Close releases any clients held by registered sources.
func (r *Router) Close() error {
	var first error
	for _, src := range r.sources {
		if c, ok := src.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

func schemeOf(ref string) string {
	i := strings.Index(ref, "://")
	if i <= 0 {
		return ""
	}
	return strings.ToLower(ref[:i])
}

// splitURI splits scheme://bucket/key into bucket and key.
func splitURI(ref, scheme string) (string, string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("invalid artifact URI %s: %w", ref, err)
	}
	if !strings.EqualFold(u.Scheme, scheme) {
		return "", "", fmt.Errorf("expected %s:// URI, got %s", scheme, ref)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("artifact URI %s must name a bucket and an object", ref)
	}
	return u.Host, key, nil
}
