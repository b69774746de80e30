// comment_classifier_test.go
package commentclassifier

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Stopwords and stems", input: "The dogs were running quickly", expected: "dog run quick"},
		{name: "Case and punctuation", input: "You are a STUPID idiot!", expected: "stupid idiot"},
		{name: "Only stopwords", input: "What's up!!", expected: ""},
		{name: "Whitespace", input: "   ", expected: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.input); got != tc.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	for _, input := range []string{"Don't STOP!!  me now...", "I'm what's-up?", "  tabs\tand\nnewlines "} {
		once := CleanText(input)
		if twice := CleanText(once); twice != once {
			t.Errorf("CleanText not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestClassify(t *testing.T) {
	models := []LabelModel{
		{Label: "toxic", Scorer: ScorerFunc(func(text string) (float64, error) {
			if text == "stupid idiot" {
				return 0.8, nil
			}
			return 0.2, nil
		})},
		{Label: "threat", Scorer: ScorerFunc(func(string) (float64, error) { return 0.3, nil })},
	}
	thresholds := ThresholdTable{"toxic": 0.8, "threat": 0.5}

	resp, err := Classify("You are a STUPID idiot!", models, thresholds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Category != "toxic" || resp.Confidence != 80 {
		t.Errorf("expected toxic at 80, got %s at %v", resp.Category, resp.Confidence)
	}
	if !resp.AllPredictions["toxic"].Predicted {
		t.Error("expected toxic to be predicted at the threshold")
	}
	if resp.AllPredictions["threat"].Predicted {
		t.Error("expected threat not to be predicted")
	}
}

func TestScoreWithoutModels(t *testing.T) {
	resp, err := Score("anything", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Category != UnknownCategory || resp.Confidence != 0 || len(resp.AllPredictions) != 0 {
		t.Errorf("expected Unknown response, got %+v", resp)
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank(" \t\n") || IsBlank(" a ") {
		t.Error("IsBlank misclassified input")
	}
}
