// comment_classifier.go
// Package commentclassifier scores free-text comments against a set of binary label classifiers.
// A comment is first normalized (lower-cased, contractions expanded, punctuation stripped,
// stopwords removed, stemmed) and the normalized text is then scored by every label model:
//
//	predicted  = probability >= threshold[label]
//	confidence = round(probability * 100, 2)
//
// The primary category is the label with the highest confidence; ties go to the label
// listed first. With no models the category is "Unknown".
//
// For a configurable, concurrent-safe service with artifact loading see pkg/classifier.
package commentclassifier

import (
	"strings"

	"github.com/baditaflorin/go_comment_classifier/internal/adapters/normalizer"
	"github.com/baditaflorin/go_comment_classifier/internal/core/domain"
	"github.com/baditaflorin/go_comment_classifier/internal/core/scoring"
)

// Types shared with the scoring core.
type (
	Response       = domain.Response
	Prediction     = domain.Prediction
	LabelModel     = domain.LabelModel
	ThresholdTable = domain.ThresholdTable
	Scorer         = domain.Scorer
	ScorerFunc     = domain.ScorerFunc
)

// UnknownCategory is reported when there are no label models.
const UnknownCategory = domain.UnknownCategory

var defaultNormalizer = normalizer.NewDefaultNormalizer()

// Normalize converts raw comment text into the canonical token stream scored by the models.
// It is deterministic and never fails; input made only of stopwords or punctuation yields "".
func Normalize(text string) string {
	return defaultNormalizer.Normalize(text)
}

// CleanText applies only the character level normalization steps. CleanText is idempotent.
func CleanText(text string) string {
	return normalizer.CleanText(text)
}

// Score scores already normalized text against models in order. Every label must have a
// threshold. A scorer error aborts scoring and no partial result is returned.
func Score(text string, models []LabelModel, thresholds ThresholdTable) (Response, error) {
	return scoring.Score(text, models, thresholds)
}

// Classify normalizes comment and scores it. Blank comments are still scored; callers
// that must reject them should check IsBlank first.
func Classify(comment string, models []LabelModel, thresholds ThresholdTable) (Response, error) {
	return Score(Normalize(comment), models, thresholds)
}

// IsBlank reports whether comment is empty or whitespace only.
func IsBlank(comment string) bool {
	return strings.TrimSpace(comment) == ""
}
