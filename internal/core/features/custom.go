// Package features turns normalized comment text into numeric feature vectors.
package features

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CustomFeatureCount is the number of hand-rolled text features.
const CustomFeatureCount = 4

// ExtractCustomFeatures returns the text length in runes, the word count, the number of
// all-uppercase words and the number of exclamation marks.
func ExtractCustomFeatures(text string) [CustomFeatureCount]float64 {
	words := strings.Fields(text)
	upper := 0
	for _, w := range words {
		if isUpperWord(w) {
			upper++
		}
	}
	return [CustomFeatureCount]float64{
		float64(utf8.RuneCountInString(text)),
		float64(len(words)),
		float64(upper),
		float64(strings.Count(text, "!")),
	}
}

// isUpperWord reports whether w has at least one cased rune and no lower or title case runes.
func isUpperWord(w string) bool {
	cased := false
	for _, r := range w {
		switch {
		case unicode.IsLower(r), unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			cased = true
		}
	}
	return cased
}
