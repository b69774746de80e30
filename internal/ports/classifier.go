package ports

import (
	"context"

	"github.com/baditaflorin/go_comment_classifier/internal/core/domain"
)

// TextScorer scores already normalized text against a model set.
type TextScorer interface {
	Score(ctx context.Context, text string) (domain.Response, error)
}

// Classifier classifies raw comments.
type Classifier interface {
	// Classify normalizes and scores a raw comment.
	Classify(ctx context.Context, comment string) (domain.Response, error)
	// Ready reports whether at least one label model is loaded.
	Ready() bool
	// Labels returns the loaded labels in model order.
	Labels() []string
}
