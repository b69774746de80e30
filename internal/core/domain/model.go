package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// UnknownCategory is the primary category reported when no label was scored.
const UnknownCategory = "Unknown"

var (
	// ErrEmptyComment is returned for an empty or whitespace-only comment.
	ErrEmptyComment = errors.New("comment is empty")
	// ErrModelsUnavailable is returned when a classification is requested but no models are loaded.
	ErrModelsUnavailable = errors.New("models not loaded")
	// ErrThresholdMismatch indicates that the threshold table and the model labels differ.
	ErrThresholdMismatch = errors.New("threshold table does not match model labels")
	// ErrDuplicateLabel indicates two models bound to the same label.
	ErrDuplicateLabel = errors.New("duplicate label")
	// ErrInvalidThreshold indicates a threshold outside [0,1].
	ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")
	// ErrInvalidProbability indicates a scorer returned a value outside [0,1].
	ErrInvalidProbability = errors.New("probability must be between 0 and 1")
)

// Scorer returns the probability that a normalized text belongs to a label.
type Scorer interface {
	PredictProbability(text string) (float64, error)
}

// ScorerFunc adapts an ordinary function to the Scorer interface.
type ScorerFunc func(text string) (float64, error)

// PredictProbability calls f(text).
func (f ScorerFunc) PredictProbability(text string) (float64, error) {
	return f(text)
}

// LabelModel binds a scoring capability to a label name.
type LabelModel struct {
	Label  string
	Scorer Scorer
}

// ThresholdTable maps a label to its decision threshold.
type ThresholdTable map[string]float64

// Prediction is the per-label outcome of a classification.
type Prediction struct {
	Predicted  bool
	Confidence float64
}

// Response is the outcome of classifying one comment.
type Response struct {
	Category       string
	Confidence     float64
	AllPredictions map[string]Prediction
	// Labels lists the scored labels in model order.
	Labels []string
}

// UnknownResponse returns the response used when no label was scored.
func UnknownResponse() Response {
	return Response{
		Category:       UnknownCategory,
		Confidence:     0,
		AllPredictions: map[string]Prediction{},
		Labels:         []string{},
	}
}

// ModelSet is the immutable, validated collection of label models and their thresholds.
type ModelSet struct {
	models     []LabelModel
	thresholds ThresholdTable
}

// EmptyModelSet returns a model set with no labels.
func EmptyModelSet() *ModelSet {
	return &ModelSet{thresholds: ThresholdTable{}}
}

// NewModelSet validates models against thresholds and returns an immutable model set.
// Model order is preserved and defines tie-break order during scoring.
func NewModelSet(models []LabelModel, thresholds ThresholdTable) (*ModelSet, error) {
	seen := make(map[string]struct{}, len(models))
	for _, m := range models {
		if m.Label == "" {
			return nil, errors.New("model label must not be empty")
		}
		if m.Scorer == nil {
			return nil, fmt.Errorf("model %q has no scorer", m.Label)
		}
		if _, ok := seen[m.Label]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLabel, m.Label)
		}
		seen[m.Label] = struct{}{}
	}

	var missing, extra []string
	for label := range seen {
		if _, ok := thresholds[label]; !ok {
			missing = append(missing, label)
		}
	}
	for label, th := range thresholds {
		if _, ok := seen[label]; !ok {
			extra = append(extra, label)
			continue
		}
		if math.IsNaN(th) || th < 0 || th > 1 {
			return nil, fmt.Errorf("%w: %s=%v", ErrInvalidThreshold, label, th)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		sort.Strings(missing)
		sort.Strings(extra)
		return nil, fmt.Errorf("%w: missing thresholds [%s], unknown labels [%s]",
			ErrThresholdMismatch, strings.Join(missing, ", "), strings.Join(extra, ", "))
	}

	set := &ModelSet{
		models:     make([]LabelModel, len(models)),
		thresholds: make(ThresholdTable, len(thresholds)),
	}
	copy(set.models, models)
	for k, v := range thresholds {
		set.thresholds[k] = v
	}
	return set, nil
}

// Len returns the number of label models.
func (s *ModelSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.models)
}

// Labels returns the label names in model order.
func (s *ModelSet) Labels() []string {
	labels := make([]string, 0, s.Len())
	if s == nil {
		return labels
	}
	for _, m := range s.models {
		labels = append(labels, m.Label)
	}
	return labels
}

// Models returns a copy of the label models in order.
func (s *ModelSet) Models() []LabelModel {
	if s == nil {
		return nil
	}
	out := make([]LabelModel, len(s.models))
	copy(out, s.models)
	return out
}

// Thresholds returns a copy of the threshold table.
func (s *ModelSet) Thresholds() ThresholdTable {
	out := make(ThresholdTable)
	if s == nil {
		return out
	}
	for k, v := range s.thresholds {
		out[k] = v
	}
	return out
}

// Threshold returns the decision threshold for label.
func (s *ModelSet) Threshold(label string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	th, ok := s.thresholds[label]
	return th, ok
}
