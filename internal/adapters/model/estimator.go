// Package model loads fitted per-label pipelines and exposes them as domain scorers.
package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/baditaflorin/go_comment_classifier/internal/core/features"
)

// Estimator maps a feature vector to the probability of the positive class.
type Estimator interface {
	// Validate checks that the estimator accepts vectors of dim columns.
	Validate(dim int) error
	// PredictProbability returns the positive class probability for x.
	PredictProbability(x features.Vector) float64
}

// Logistic is a fitted binary logistic regression.
type Logistic struct {
	Coef      []float64
	Intercept float64
}

// Validate implements Estimator.
func (e *Logistic) Validate(dim int) error {
	if len(e.Coef) != dim {
		return fmt.Errorf("logistic estimator has %d coefficients for %d features", len(e.Coef), dim)
	}
	for i, c := range e.Coef {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("logistic coefficient %d is not finite", i)
		}
	}
	if math.IsNaN(e.Intercept) || math.IsInf(e.Intercept, 0) {
		return errors.New("logistic intercept is not finite")
	}
	return nil
}

// PredictProbability implements Estimator.
func (e *Logistic) PredictProbability(x features.Vector) float64 {
	z := e.Intercept
	for _, col := range x.Columns() {
		z += e.Coef[col] * x[col]
	}
	return sigmoid(z)
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	ez := math.Exp(z)
	return ez / (1 + ez)
}
