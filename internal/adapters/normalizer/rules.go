package normalizer

import "strings"

// Rule is a literal substitution applied to lower-cased text.
type Rule struct {
	Pattern     string
	Replacement string
}

// ContractionRules are applied in order, each over the whole text. Order matters:
// "can't" and "don't" must expand before the generic "n't" rule.
var ContractionRules = []Rule{
	{Pattern: "what's", Replacement: "what is "},
	{Pattern: "'s", Replacement: " "},
	{Pattern: "'ve", Replacement: " have "},
	{Pattern: "can't", Replacement: "can not "},
	{Pattern: "don't", Replacement: "do not"},
	{Pattern: "n't", Replacement: " not "},
	{Pattern: "i'm", Replacement: "i am "},
}

// ExpandContractions applies rules sequentially; every occurrence of a pattern is
// replaced left to right before the next rule runs.
func ExpandContractions(text string, rules []Rule) string {
	for _, r := range rules {
		if r.Pattern == "" {
			continue
		}
		text = strings.ReplaceAll(text, r.Pattern, r.Replacement)
	}
	return text
}
