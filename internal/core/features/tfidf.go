package features

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"unicode"
)

// Vector is a sparse feature vector keyed by column index.
type Vector map[int]float64

// Columns returns the populated column indices in ascending order.
// Sums over a vector must follow this order to be reproducible.
func (v Vector) Columns() []int {
	return slices.Sorted(maps.Keys(v))
}

// Norm selects the per-document normalization applied after TF-IDF weighting.
type Norm string

const (
	NormL2   Norm = "l2"
	NormL1   Norm = "l1"
	NormNone Norm = ""
)

// TfidfConfig describes a fitted TF-IDF vectorizer.
type TfidfConfig struct {
	Vocabulary  map[string]int
	IDF         []float64
	NgramMin    int
	NgramMax    int
	SublinearTF bool
	Norm        Norm
}

// Validate checks if the configuration is consistent.
func (c TfidfConfig) Validate() error {
	if len(c.IDF) != len(c.Vocabulary) {
		return fmt.Errorf("idf has %d weights for %d vocabulary terms", len(c.IDF), len(c.Vocabulary))
	}
	if c.NgramMin < 1 || c.NgramMax < c.NgramMin {
		return fmt.Errorf("invalid ngram range [%d, %d]", c.NgramMin, c.NgramMax)
	}
	for term, col := range c.Vocabulary {
		if col < 0 || col >= len(c.IDF) {
			return fmt.Errorf("term %q maps to column %d outside [0, %d)", term, col, len(c.IDF))
		}
	}
	switch c.Norm {
	case NormL1, NormL2, NormNone:
	default:
		return fmt.Errorf("unsupported norm %q", c.Norm)
	}
	return nil
}

// TfidfVectorizer converts text into TF-IDF weighted term vectors over a fixed vocabulary.
// It is immutable and safe for concurrent use.
type TfidfVectorizer struct {
	config TfidfConfig
}

// NewTfidfVectorizer creates a vectorizer from a fitted configuration.
func NewTfidfVectorizer(config TfidfConfig) (*TfidfVectorizer, error) {
	if config.Vocabulary == nil {
		return nil, errors.New("vocabulary is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &TfidfVectorizer{config: config}, nil
}

// Dim returns the number of columns produced by the vectorizer.
func (v *TfidfVectorizer) Dim() int {
	return len(v.config.IDF)
}

// Transform returns the normalized TF-IDF vector for text.
func (v *TfidfVectorizer) Transform(text string) Vector {
	counts := make(map[int]int)
	tokens := Tokenize(text)
	for n := v.config.NgramMin; n <= v.config.NgramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			term := tokens[i]
			if n > 1 {
				term = strings.Join(tokens[i:i+n], " ")
			}
			if col, ok := v.config.Vocabulary[term]; ok {
				counts[col]++
			}
		}
	}

	vec := make(Vector, len(counts))
	for col, c := range counts {
		tf := float64(c)
		if v.config.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		vec[col] = tf * v.config.IDF[col]
	}

	normalize(vec, v.config.Norm)
	return vec
}

// Tokenize splits text into runs of at least two word runes (letters, numbers, underscore).
func Tokenize(text string) []string {
	var tokens []string
	start, runes := -1, 0
	flush := func(end int) {
		if start >= 0 && runes >= 2 {
			tokens = append(tokens, text[start:end])
		}
		start, runes = -1, 0
	}
	for i, r := range text {
		if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			if start < 0 {
				start = i
			}
			runes++
			continue
		}
		flush(i)
	}
	flush(len(text))
	return tokens
}

func normalize(vec Vector, norm Norm) {
	var total float64
	switch norm {
	case NormL2:
		for _, col := range vec.Columns() {
			total += vec[col] * vec[col]
		}
		total = math.Sqrt(total)
	case NormL1:
		for _, col := range vec.Columns() {
			total += math.Abs(vec[col])
		}
	default:
		return
	}
	if total == 0 {
		return
	}
	for col, x := range vec {
		vec[col] = x / total
	}
}
