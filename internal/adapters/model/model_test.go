package model

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/baditaflorin/go_comment_classifier/internal/adapters/logger"
	"github.com/baditaflorin/go_comment_classifier/internal/adapters/source"
	"github.com/baditaflorin/go_comment_classifier/internal/core/domain"
	"github.com/baditaflorin/go_comment_classifier/internal/core/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modelsYAML = `
labels:
  - name: toxic
    pipeline:
      vectorizer:
        vocabulary: {stupid: 0, nice: 1}
        idf: [1, 1]
        norm: none
      estimator:
        type: logistic
        coef: [2, -1]
        intercept: 0
  - name: insult
    pipeline:
      vectorizer:
        vocabulary: {idiot: 0}
        idf: [1]
        ngram_range: [1, 1]
      custom_features: true
      estimator:
        type: forest
        trees:
          - children_left: [1, -1, -1]
            children_right: [2, -1, -1]
            feature: [0, -2, -2]
            threshold: [0.5, -2, -2]
            value: [[11, 9], [9, 1], [2, 8]]
`

const modelsJSON = `{
  "labels": [
    {"name": "toxic", "pipeline": {
      "vectorizer": {"vocabulary": {"stupid": 0}, "idf": [1.0], "sublinear_tf": true, "norm": "l2"},
      "estimator": {"type": "logistic", "coef": [1.5], "intercept": -0.5}
    }}
  ]
}`

func stupidVectorizer(t *testing.T) *features.TfidfVectorizer {
	t.Helper()
	v, err := features.NewTfidfVectorizer(features.TfidfConfig{
		Vocabulary: map[string]int{"stupid": 0},
		IDF:        []float64{1},
		NgramMin:   1,
		NgramMax:   1,
		Norm:       features.NormNone,
	})
	require.NoError(t, err)
	return v
}

func TestLogisticPipeline(t *testing.T) {
	p, err := NewPipeline(stupidVectorizer(t), false, &Logistic{Coef: []float64{2}, Intercept: 0})
	require.NoError(t, err)

	prob, err := p.PredictProbability("stupid")
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-2)), prob, 1e-12)

	prob, err = p.PredictProbability("")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, prob, 1e-12)
}

func TestLogisticSumsInColumnOrder(t *testing.T) {
	e := &Logistic{Coef: []float64{1e16, 1, -1e16, 1}}
	x := features.Vector{0: 1, 1: 1, 2: 1, 3: 1}

	// (1e16 + 1) - 1e16 + 1 == 1
	want := 1 / (1 + math.Exp(-1))
	for i := 0; i < 2000; i++ {
		got := e.PredictProbability(x)
		require.Equal(t, math.Float64bits(want), math.Float64bits(got), "run %d", i)
	}
}

func TestPipelineCustomFeatures(t *testing.T) {
	forest := &Forest{
		PositiveClass: 1,
		Trees: []Tree{{
			ChildrenLeft:  []int{1, LeafNode, LeafNode},
			ChildrenRight: []int{2, LeafNode, LeafNode},
			Feature:       []int{2, 0, 0},
			Threshold:     []float64{1.5, 0, 0},
			Value:         [][]float64{{1, 1}, {1, 0}, {0, 1}},
		}},
	}
	p, err := NewPipeline(stupidVectorizer(t), true, forest)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Dim())

	vec := p.Vectorize("stupid idiot")
	assert.Equal(t, features.Vector{0: 1, 1: 12, 2: 2}, vec)

	// Column 2 is the word count.
	prob, _ := p.PredictProbability("stupid idiot")
	assert.Equal(t, 1.0, prob)
	prob, _ = p.PredictProbability("stupid")
	assert.Equal(t, 0.0, prob)
}

func TestPipelineDimensionMismatch(t *testing.T) {
	_, err := NewPipeline(stupidVectorizer(t), true, &Logistic{Coef: []float64{1}})
	assert.Error(t, err)

	_, err = NewPipeline(stupidVectorizer(t), false, &Forest{
		Trees: []Tree{{
			ChildrenLeft:  []int{1, LeafNode, LeafNode},
			ChildrenRight: []int{2, LeafNode, LeafNode},
			Feature:       []int{3, 0, 0},
			Threshold:     []float64{0.5, 0, 0},
			Value:         [][]float64{{1, 1}, {1, 0}, {0, 1}},
		}},
		PositiveClass: 1,
	})
	assert.Error(t, err)
}

func TestForestValidate(t *testing.T) {
	valid := Tree{
		ChildrenLeft:  []int{1, LeafNode, LeafNode},
		ChildrenRight: []int{2, LeafNode, LeafNode},
		Feature:       []int{0, 0, 0},
		Threshold:     []float64{0.5, 0, 0},
		Value:         [][]float64{{1, 1}, {1, 0}, {0, 1}},
	}
	assert.NoError(t, (&Forest{Trees: []Tree{valid}, PositiveClass: 1}).Validate(1))
	assert.Error(t, (&Forest{PositiveClass: 1}).Validate(1))
	assert.Error(t, (&Forest{Trees: []Tree{valid}, PositiveClass: 2}).Validate(1))

	cyclic := valid
	cyclic.ChildrenLeft = []int{0, LeafNode, LeafNode}
	assert.Error(t, (&Forest{Trees: []Tree{cyclic}, PositiveClass: 1}).Validate(1))

	oneChild := valid
	oneChild.ChildrenRight = []int{LeafNode, LeafNode, LeafNode}
	assert.Error(t, (&Forest{Trees: []Tree{oneChild}, PositiveClass: 1}).Validate(1))

	short := valid
	short.Value = [][]float64{{1, 1}}
	assert.Error(t, (&Forest{Trees: []Tree{short}, PositiveClass: 1}).Validate(1))
}

func TestDecodeModelsYAML(t *testing.T) {
	models, err := DecodeModels(strings.NewReader(modelsYAML))
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "toxic", models[0].Label)
	assert.Equal(t, "insult", models[1].Label)

	prob, err := models[0].Scorer.PredictProbability("stupid")
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-2)), prob, 1e-12)

	prob, err = models[1].Scorer.PredictProbability("idiot")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, prob, 1e-12)

	prob, err = models[1].Scorer.PredictProbability("hello")
	require.NoError(t, err)
	assert.InDelta(t, 0.1, prob, 1e-12)
}

func TestDecodeModelsJSON(t *testing.T) {
	models, err := DecodeModels(strings.NewReader(modelsJSON))
	require.NoError(t, err)
	require.Len(t, models, 1)

	prob, err := models[0].Scorer.PredictProbability("stupid stupid")
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-1)), prob, 1e-12)
}

func TestDecodeModelsMalformed(t *testing.T) {
	tests := map[string]string{
		"empty":            "",
		"not yaml":         "labels: [",
		"unknown type":     `{"labels": [{"name": "toxic", "pipeline": {"vectorizer": {"vocabulary": {}, "idf": []}, "estimator": {"type": "svm"}}}]}`,
		"missing name":     `{"labels": [{"pipeline": {"vectorizer": {"vocabulary": {}, "idf": []}, "estimator": {"type": "logistic"}}}]}`,
		"bad ngram range":  `{"labels": [{"name": "toxic", "pipeline": {"vectorizer": {"vocabulary": {}, "idf": [], "ngram_range": [1]}, "estimator": {"type": "logistic"}}}]}`,
		"coef width":       `{"labels": [{"name": "toxic", "pipeline": {"vectorizer": {"vocabulary": {"a": 0}, "idf": [1]}, "estimator": {"type": "logistic", "coef": [1, 2]}}}]}`,
		"idf width":        `{"labels": [{"name": "toxic", "pipeline": {"vectorizer": {"vocabulary": {"a": 0}, "idf": [1, 2]}, "estimator": {"type": "logistic", "coef": [1, 2]}}}]}`,
		"wrong value type": `{"labels": "toxic"}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeModels(strings.NewReader(doc))
			assert.ErrorIs(t, err, ErrMalformedArtifact)
		})
	}
}

func TestDecodeThresholds(t *testing.T) {
	table, err := DecodeThresholds(strings.NewReader(`{"toxic": 0.45, "insult": 0.3}`))
	require.NoError(t, err)
	assert.Equal(t, domain.ThresholdTable{"toxic": 0.45, "insult": 0.3}, table)

	_, err = DecodeThresholds(strings.NewReader(`["toxic"]`))
	assert.ErrorIs(t, err, ErrMalformedArtifact)

	_, err = DecodeThresholds(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMalformedArtifact)
}

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	modelsPath := writeArtifact(t, dir, "models.yaml", modelsYAML)
	thresholdsPath := writeArtifact(t, dir, "thresholds.json", `{"toxic": 0.5, "insult": 0.4}`)

	loader := NewLoader(source.NewFileSource(), logger.NewNopLogger())
	set, err := loader.Load(context.Background(), modelsPath, thresholdsPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"toxic", "insult"}, set.Labels())
	th, ok := set.Threshold("insult")
	assert.True(t, ok)
	assert.Equal(t, 0.4, th)
}

func TestLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	modelsPath := writeArtifact(t, dir, "models.yaml", modelsYAML)
	loader := NewLoader(source.NewFileSource(), logger.NewNopLogger())

	_, err := loader.Load(context.Background(), modelsPath, filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, source.ErrNotFound)

	mismatch := writeArtifact(t, dir, "mismatch.json", `{"toxic": 0.5}`)
	_, err = loader.Load(context.Background(), modelsPath, mismatch)
	assert.ErrorIs(t, err, domain.ErrThresholdMismatch)

	broken := writeArtifact(t, dir, "broken.yaml", "labels: [")
	_, err = loader.Load(context.Background(), broken, mismatch)
	assert.ErrorIs(t, err, ErrMalformedArtifact)
}
