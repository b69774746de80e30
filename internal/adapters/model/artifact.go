package model

import (
	"errors"
	"fmt"
	"io"

	"github.com/baditaflorin/go_comment_classifier/internal/core/domain"
	"github.com/baditaflorin/go_comment_classifier/internal/core/features"
	"gopkg.in/yaml.v3"
)

// Estimator types accepted in a models artifact.
const (
	EstimatorLogistic = "logistic"
	EstimatorForest   = "forest"
)

// ErrMalformedArtifact is returned when an artifact cannot be decoded or describes an invalid pipeline.
var ErrMalformedArtifact = errors.New("malformed model artifact")

// ModelsArtifact is the persisted form of the ordered label pipelines.
// Both YAML and JSON documents are accepted.
type ModelsArtifact struct {
	Labels []LabelArtifact `yaml:"labels"`
}

// LabelArtifact binds a label to its fitted pipeline.
type LabelArtifact struct {
	Name     string           `yaml:"name"`
	Pipeline PipelineArtifact `yaml:"pipeline"`
}

// PipelineArtifact describes one fitted pipeline.
type PipelineArtifact struct {
	Vectorizer     VectorizerArtifact `yaml:"vectorizer"`
	CustomFeatures bool               `yaml:"custom_features"`
	Estimator      EstimatorArtifact  `yaml:"estimator"`
}

// VectorizerArtifact describes a fitted TF-IDF vectorizer.
type VectorizerArtifact struct {
	Vocabulary  map[string]int `yaml:"vocabulary"`
	IDF         []float64      `yaml:"idf"`
	NgramRange  []int          `yaml:"ngram_range"`
	SublinearTF bool           `yaml:"sublinear_tf"`
	Norm        *string        `yaml:"norm"`
}

// EstimatorArtifact describes a fitted estimator; Type selects which fields apply.
type EstimatorArtifact struct {
	Type string `yaml:"type"`

	Coef      []float64 `yaml:"coef"`
	Intercept float64   `yaml:"intercept"`

	Trees         []TreeArtifact `yaml:"trees"`
	PositiveClass *int           `yaml:"positive_class"`
}

// TreeArtifact is a decision tree in array encoding.
type TreeArtifact struct {
	ChildrenLeft  []int       `yaml:"children_left"`
	ChildrenRight []int       `yaml:"children_right"`
	Feature       []int       `yaml:"feature"`
	Threshold     []float64   `yaml:"threshold"`
	Value         [][]float64 `yaml:"value"`
}

// DecodeModels reads a models artifact and builds the ordered label models.
func DecodeModels(r io.Reader) ([]domain.LabelModel, error) {
	var artifact ModelsArtifact
	if err := yaml.NewDecoder(r).Decode(&artifact); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrMalformedArtifact)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
	}
	return artifact.Build()
}

// DecodeThresholds reads a thresholds artifact mapping label to threshold.
func DecodeThresholds(r io.Reader) (domain.ThresholdTable, error) {
	var table map[string]float64
	if err := yaml.NewDecoder(r).Decode(&table); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrMalformedArtifact)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
	}
	return domain.ThresholdTable(table), nil
}

// Build turns the decoded artifact into label models in artifact order.
func (a ModelsArtifact) Build() ([]domain.LabelModel, error) {
	models := make([]domain.LabelModel, 0, len(a.Labels))
	for i, la := range a.Labels {
		if la.Name == "" {
			return nil, fmt.Errorf("%w: label %d has no name", ErrMalformedArtifact, i)
		}
		pipeline, err := la.Pipeline.Build()
		if err != nil {
			return nil, fmt.Errorf("%w: label %s: %v", ErrMalformedArtifact, la.Name, err)
		}
		models = append(models, domain.LabelModel{Label: la.Name, Scorer: pipeline})
	}
	return models, nil
}

// Build creates the pipeline described by the artifact.
func (a PipelineArtifact) Build() (*Pipeline, error) {
	vectorizer, err := a.Vectorizer.Build()
	if err != nil {
		return nil, fmt.Errorf("vectorizer: %w", err)
	}
	estimator, err := a.Estimator.Build()
	if err != nil {
		return nil, fmt.Errorf("estimator: %w", err)
	}
	return NewPipeline(vectorizer, a.CustomFeatures, estimator)
}

// Build creates the vectorizer described by the artifact.
func (a VectorizerArtifact) Build() (*features.TfidfVectorizer, error) {
	config := features.TfidfConfig{
		Vocabulary:  a.Vocabulary,
		IDF:         a.IDF,
		NgramMin:    1,
		NgramMax:    1,
		SublinearTF: a.SublinearTF,
		Norm:        features.NormL2,
	}
	switch len(a.NgramRange) {
	case 0:
	case 2:
		config.NgramMin, config.NgramMax = a.NgramRange[0], a.NgramRange[1]
	default:
		return nil, fmt.Errorf("ngram_range must have two values, got %d", len(a.NgramRange))
	}
	if a.Norm != nil {
		config.Norm = features.Norm(*a.Norm)
		if *a.Norm == "none" {
			config.Norm = features.NormNone
		}
	}
	if config.Vocabulary == nil {
		config.Vocabulary = map[string]int{}
	}
	return features.NewTfidfVectorizer(config)
}

// Build creates the estimator described by the artifact.
func (a EstimatorArtifact) Build() (Estimator, error) {
	switch a.Type {
	case EstimatorLogistic:
		return &Logistic{Coef: a.Coef, Intercept: a.Intercept}, nil
	case EstimatorForest:
		forest := &Forest{Trees: make([]Tree, len(a.Trees)), PositiveClass: 1}
		if a.PositiveClass != nil {
			forest.PositiveClass = *a.PositiveClass
		}
		for i, t := range a.Trees {
			forest.Trees[i] = Tree{
				ChildrenLeft:  t.ChildrenLeft,
				ChildrenRight: t.ChildrenRight,
				Feature:       t.Feature,
				Threshold:     t.Threshold,
				Value:         t.Value,
			}
		}
		return forest, nil
	default:
		return nil, fmt.Errorf("unsupported estimator type %q", a.Type)
	}
}
