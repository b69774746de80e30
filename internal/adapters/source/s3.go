package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used to fetch artifacts.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config configures the S3 client.
type S3Config struct {
	// Region overrides the region from the default AWS configuration.
	Region string
	// Endpoint points the client at an S3 compatible server, e.g. "http://127.0.0.1:9000".
	Endpoint string
}

// S3Source opens s3://bucket/key artifacts. The client is created on first use
// from the default AWS credential chain.
type S3Source struct {
	config S3Config

	once   sync.Once
	client S3API
	err    error
}

// NewS3Source creates a new S3 source.
func NewS3Source(config S3Config) *S3Source {
	return &S3Source{config: config}
}

// NewS3SourceWithClient creates an S3 source around an existing client.
func NewS3SourceWithClient(client S3API) *S3Source {
	s := &S3Source{client: client}
	s.once.Do(func() {})
	return s
}

// Open fetches the object referenced by an s3:// URI.
func (s *S3Source) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	bucket, key, err := splitURI(ref, "s3")
	if err != nil {
		return nil, err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("failed to get %s: %w", ref, err)
	}
	return out.Body, nil
}

func (s *S3Source) getClient(ctx context.Context) (S3API, error) {
	s.once.Do(func() {
		var opts []func(*config.LoadOptions) error
		if s.config.Region != "" {
			opts = append(opts, config.WithRegion(s.config.Region))
		}
		cfg, err := config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			s.err = fmt.Errorf("failed to load AWS config: %w", err)
			return
		}
		s.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			if s.config.Endpoint != "" {
				o.BaseEndpoint = aws.String(s.config.Endpoint)
				o.UsePathStyle = true
			}
		})
	})
	return s.client, s.err
}
