package model

import (
	"errors"
	"fmt"

	"github.com/baditaflorin/go_comment_classifier/internal/core/domain"
	"github.com/baditaflorin/go_comment_classifier/internal/core/features"
)

// Pipeline scores normalized text with a TF-IDF vectorizer, optional custom text
// features appended after the TF-IDF columns, and a fitted estimator.
// It is immutable and safe for concurrent use.
type Pipeline struct {
	vectorizer     *features.TfidfVectorizer
	customFeatures bool
	estimator      Estimator
}

var _ domain.Scorer = (*Pipeline)(nil)

// NewPipeline assembles a pipeline and checks that the estimator accepts its vectors.
func NewPipeline(vectorizer *features.TfidfVectorizer, customFeatures bool, estimator Estimator) (*Pipeline, error) {
	if vectorizer == nil {
		return nil, errors.New("pipeline requires a vectorizer")
	}
	if estimator == nil {
		return nil, errors.New("pipeline requires an estimator")
	}

	p := &Pipeline{
		vectorizer:     vectorizer,
		customFeatures: customFeatures,
		estimator:      estimator,
	}
	if err := estimator.Validate(p.Dim()); err != nil {
		return nil, fmt.Errorf("invalid estimator: %w", err)
	}
	return p, nil
}

// Dim returns the width of the feature vectors produced by the pipeline.
func (p *Pipeline) Dim() int {
	if p.customFeatures {
		return p.vectorizer.Dim() + features.CustomFeatureCount
	}
	return p.vectorizer.Dim()
}

// Vectorize builds the estimator input for text.
func (p *Pipeline) Vectorize(text string) features.Vector {
	vec := p.vectorizer.Transform(text)
	if p.customFeatures {
		offset := p.vectorizer.Dim()
		for i, v := range features.ExtractCustomFeatures(text) {
			if v != 0 {
				vec[offset+i] = v
			}
		}
	}
	return vec
}

// PredictProbability implements domain.Scorer.
func (p *Pipeline) PredictProbability(text string) (float64, error) {
	return p.estimator.PredictProbability(p.Vectorize(text)), nil
}
