package normalizer

import "github.com/baditaflorin/go_comment_classifier/internal/ports"

// NormalizerFactory creates the appropriate normalizer for a processing stage
type NormalizerFactory struct{}

// NewNormalizerFactory creates a new normalizer factory
func NewNormalizerFactory() *NormalizerFactory {
	return &NormalizerFactory{}
}

// NormalizerType selects a normalizer implementation
type NormalizerType int

const (
	// DefaultNormalizerType runs the full pipeline including stopwords and stemming
	DefaultNormalizerType NormalizerType = iota
	// CleanNormalizerType stops after punctuation and whitespace cleanup
	CleanNormalizerType
)

// CreateNormalizer creates a normalizer of the specified type
func (f *NormalizerFactory) CreateNormalizer(normalizerType NormalizerType) ports.Normalizer {
	switch normalizerType {
	case CleanNormalizerType:
		return NewCleanNormalizer()
	default:
		return NewDefaultNormalizer()
	}
}
