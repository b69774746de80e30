package warmup

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/baditaflorin/go_comment_classifier/internal/adapters/logger"
	"github.com/baditaflorin/go_comment_classifier/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

type countingNormalizer struct {
	calls atomic.Int64
}

func (n *countingNormalizer) Normalize(text string) string {
	n.calls.Add(1)
	return text
}

type countingClassifier struct {
	calls atomic.Int64
	err   error
}

func (c *countingClassifier) Classify(_ context.Context, comment string) (domain.Response, error) {
	c.calls.Add(1)
	return domain.UnknownResponse(), c.err
}

func (c *countingClassifier) Ready() bool      { return c.err == nil }
func (c *countingClassifier) Labels() []string { return []string{} }

func TestWarmUpRunsAllComponents(t *testing.T) {
	norm := &countingNormalizer{}
	ok := &countingClassifier{}
	failing := &countingClassifier{err: errors.New("models not loaded")}

	mgr := NewManager(logger.NewNopLogger(), WarmupConfig{
		Concurrency:    2,
		Iterations:     10,
		SampleTextSize: 100,
	})
	mgr.RegisterNormalizer(norm)
	mgr.RegisterClassifier(ok)
	mgr.RegisterClassifier(failing)
	mgr.WarmUp(context.Background())

	assert.Equal(t, int64(20), norm.calls.Load())
	assert.Equal(t, int64(20), ok.calls.Load())
	assert.Equal(t, int64(20), failing.calls.Load())
}

func TestWarmUpStopsOnCancel(t *testing.T) {
	c := &countingClassifier{}
	mgr := NewManager(logger.NewNopLogger(), WarmupConfig{
		Concurrency: 4,
		Iterations:  1000,
		Duration:    time.Second,
	})
	mgr.RegisterClassifier(c)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mgr.WarmUp(ctx)
	assert.Zero(t, c.calls.Load())
}

func TestGenerateSampleComments(t *testing.T) {
	comments := generateSampleComments(50)
	assert.Len(t, comments, 6)
	assert.LessOrEqual(t, len(comments[len(comments)-1]), 50)
	assert.NotEmpty(t, comments[len(comments)-1])
}
