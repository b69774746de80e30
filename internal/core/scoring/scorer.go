// Package scoring implements multi-label scoring of normalized text against per-label thresholds.
package scoring

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/baditaflorin/go_comment_classifier/internal/core/domain"
	"github.com/baditaflorin/go_comment_classifier/internal/ports"
)

// Score runs every model on text in order, applies its threshold and selects the primary label.
// An empty model list yields the Unknown response. A scorer error aborts the whole computation.
func Score(text string, models []domain.LabelModel, thresholds domain.ThresholdTable) (domain.Response, error) {
	return ScoreContext(context.Background(), text, models, thresholds)
}

// ScoreContext is Score with a cancellation check before each label.
func ScoreContext(ctx context.Context, text string, models []domain.LabelModel, thresholds domain.ThresholdTable) (domain.Response, error) {
	if err := ctx.Err(); err != nil {
		return domain.Response{}, err
	}
	if len(models) == 0 {
		return domain.UnknownResponse(), nil
	}

	resp := domain.Response{
		AllPredictions: make(map[string]domain.Prediction, len(models)),
		Labels:         make([]string, 0, len(models)),
	}
	best := -1.0

	for _, m := range models {
		if err := ctx.Err(); err != nil {
			return domain.Response{}, err
		}

		th, ok := thresholds[m.Label]
		if !ok {
			return domain.Response{}, fmt.Errorf("%w: no threshold for %s", domain.ErrThresholdMismatch, m.Label)
		}

		prob, err := m.Scorer.PredictProbability(text)
		if err != nil {
			return domain.Response{}, fmt.Errorf("scoring label %s: %w", m.Label, err)
		}
		if math.IsNaN(prob) || prob < 0 || prob > 1 {
			return domain.Response{}, fmt.Errorf("%w: %s=%v", domain.ErrInvalidProbability, m.Label, prob)
		}

		p := domain.Prediction{
			Predicted:  prob >= th,
			Confidence: RoundPercent(prob),
		}
		resp.AllPredictions[m.Label] = p
		resp.Labels = append(resp.Labels, m.Label)

		// Strict comparison keeps the first label on ties.
		if p.Confidence > best {
			best = p.Confidence
			resp.Category = m.Label
			resp.Confidence = p.Confidence
		}
	}

	return resp, nil
}

// RoundPercent converts a probability to a percentage rounded to two decimals.
// Rounding is done on the exact binary value with ties to even.
func RoundPercent(prob float64) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(prob*100, 'f', 2, 64), 64)
	if err != nil {
		return math.Round(prob*10000) / 100
	}
	return v
}

// Scorer binds a model set to the scoring algorithm.
type Scorer struct {
	models *domain.ModelSet
	logger ports.Logger
}

var _ ports.TextScorer = (*Scorer)(nil)

// NewScorer creates a new scorer over an immutable model set.
func NewScorer(models *domain.ModelSet, logger ports.Logger) *Scorer {
	if models == nil {
		models = domain.EmptyModelSet()
	}
	return &Scorer{models: models, logger: logger}
}

// Models returns the model set the scorer was built with.
func (s *Scorer) Models() *domain.ModelSet {
	return s.models
}

// Score scores normalized text against every label model.
func (s *Scorer) Score(ctx context.Context, text string) (domain.Response, error) {
	s.logger.Debug("Starting multi-label scoring",
		"text", text,
		"labels", s.models.Len(),
	)

	resp, err := ScoreContext(ctx, text, s.models.Models(), s.models.Thresholds())
	if err != nil {
		if ctx.Err() != nil {
			s.logger.Error("Scoring cancelled", "error", err)
			return domain.Response{}, err
		}
		s.logger.Error("Scoring failed", "error", err)
		return domain.Response{}, err
	}

	s.logger.Debug("Computed predictions",
		"category", resp.Category,
		"confidence", resp.Confidence,
	)
	return resp, nil
}
