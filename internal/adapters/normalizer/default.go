package normalizer

import (
	"strings"
	"unicode"

	"github.com/baditaflorin/go_comment_classifier/internal/pool"
	"github.com/baditaflorin/go_comment_classifier/internal/ports"
	"github.com/kljensen/snowball/english"
)

var (
	builderPool = pool.NewStringBuilderPool()
	lowerPool   = pool.NewLowerCaserPool()
)

// DefaultNormalizer implements the full comment normalization pipeline:
// lower-case, contraction expansion, punctuation stripping, whitespace collapsing,
// stopword removal and Snowball English stemming.
type DefaultNormalizer struct {
	rules []Rule
}

// NewDefaultNormalizer creates a new default normalizer.
func NewDefaultNormalizer() ports.Normalizer {
	return &DefaultNormalizer{rules: ContractionRules}
}

// Normalize converts raw comment text into the canonical token stream used by the models.
func (n *DefaultNormalizer) Normalize(text string) string {
	cleaned := cleanText(text, n.rules)
	if cleaned == "" {
		return ""
	}

	sb := builderPool.Get()
	defer builderPool.Put(sb)
	sb.Grow(len(cleaned))

	for _, token := range strings.Split(cleaned, " ") {
		if IsStopword(token) {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteRune(' ')
		}
		sb.WriteString(Stem(token))
	}

	return sb.String()
}

// CleanNormalizer runs only the character level steps of the pipeline.
type CleanNormalizer struct {
	rules []Rule
}

// NewCleanNormalizer creates a normalizer that stops before stopword removal.
func NewCleanNormalizer() ports.Normalizer {
	return &CleanNormalizer{rules: ContractionRules}
}

// Normalize lower-cases, expands contractions and strips punctuation.
func (n *CleanNormalizer) Normalize(text string) string {
	return cleanText(text, n.rules)
}

// CleanText lower-cases text, expands contractions, replaces every non-word rune with a
// space, collapses whitespace and trims. The result is a fixed point of CleanText.
func CleanText(text string) string {
	return cleanText(text, ContractionRules)
}

// Stem reduces a token to its Snowball English stem.
func Stem(token string) string {
	return english.Stem(token, true)
}

func cleanText(text string, rules []Rule) string {
	if text == "" {
		return ""
	}

	text = lowerPool.String(text)
	text = ExpandContractions(text, rules)

	sb := builderPool.Get()
	defer builderPool.Put(sb)
	sb.Grow(len(text))

	pendingSpace := false
	for _, r := range text {
		if !isWordRune(r) {
			pendingSpace = sb.Len() > 0
			continue
		}
		if pendingSpace {
			sb.WriteRune(' ')
			pendingSpace = false
		}
		sb.WriteRune(r)
	}

	return sb.String()
}

// isWordRune matches the Unicode word class: letters, numbers and underscore.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
