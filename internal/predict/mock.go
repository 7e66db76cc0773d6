package predict

import (
	"context"
	"regexp"
	"strings"

	"or-extraction-service/internal/models"
)

func init() {
	Register("mock",
		func(cfg Config) (Predictor, error) { return &Mock{}, nil },
		func(cfg Config) (bool, []string, error) { return true, nil, nil },
	)
}

// Mock is a deterministic lexicon-driven predictor so the full
// decode→map pipeline can run without model weights. It tokenizes on
// whitespace and tags a few dictation patterns: dates, in/out times,
// and surgeon names.
type Mock struct{}

var (
	mockMonths = map[string]struct{}{
		"january": {}, "february": {}, "march": {}, "april": {}, "may": {}, "june": {},
		"july": {}, "august": {}, "september": {}, "october": {}, "november": {}, "december": {},
	}
	mockDayOrYear = regexp.MustCompile(`^\d{1,4}(st|nd|rd|th)?$`)
	mockClock     = regexp.MustCompile(`^\d{1,2}[:.]\d{2}$|^\d{3,4}$`)
	mockMeridiem  = regexp.MustCompile(`^(am|pm|a\.m\.?|p\.m\.?)$`)
	mockNameStop  = map[string]struct{}{
		"in": {}, "out": {}, "end": {}, "surgeon": {}, "one": {}, "two": {},
	}
)

const mockConfidence = 0.90

// Predict tags whitespace tokens of text with byte offsets into the
// original string.
func (m *Mock) Predict(_ context.Context, text string) ([]models.RawPrediction, error) {
	tokens := tokenize(text)
	preds := make([]models.RawPrediction, len(tokens))
	for i := range tokens {
		preds[i] = models.RawPrediction{Token: tokens[i], Tag: "O", Confidence: mockConfidence}
	}

	for i := 0; i < len(tokens); i++ {
		low := strings.ToLower(tokens[i].Text)
		switch {
		case isMonth(low):
			preds[i].Tag = "B-DATE"
			for j := i + 1; j < len(tokens) && mockDayOrYear.MatchString(strings.ToLower(tokens[j].Text)); j++ {
				preds[j].Tag = "I-DATE"
				i = j
			}
		case mockClock.MatchString(low) && i+1 < len(tokens) && mockMeridiem.MatchString(strings.ToLower(tokens[i+1].Text)):
			tag := "TIME_IN"
			if i > 0 && strings.ToLower(tokens[i-1].Text) == "out" {
				tag = "TIME_OUT"
			}
			preds[i].Tag = "B-" + tag
			preds[i+1].Tag = "I-" + tag
			i++
		case low == "surgeon":
			j := i + 1
			// skip slot words ("one", "two", "1", "2") and titles
			for j < len(tokens) {
				w := strings.ToLower(tokens[j].Text)
				if w == "one" || w == "two" || w == "1" || w == "2" || w == "dr" || w == "doctor" {
					j++
					continue
				}
				break
			}
			first := true
			for ; j < len(tokens); j++ {
				w := strings.ToLower(tokens[j].Text)
				if _, stop := mockNameStop[w]; stop || !isAlpha(w) {
					break
				}
				if first {
					preds[j].Tag = "B-PERSON_SURGEON"
					first = false
				} else {
					preds[j].Tag = "I-PERSON_SURGEON"
				}
				i = j
			}
		}
	}
	return preds, nil
}

func (m *Mock) Available() bool { return true }

func (m *Mock) Info() map[string]string {
	return map[string]string{
		"provider": "mock",
		"status":   "available",
	}
}

// tokenize splits on whitespace, keeping byte offsets into text.
func tokenize(text string) []models.Token {
	var tokens []models.Token
	start := -1
	for i, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if start >= 0 {
				tokens = append(tokens, models.Token{Text: text[start:i], Start: start, End: i})
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, models.Token{Text: text[start:], Start: start, End: len(text)})
	}
	return tokens
}

func isMonth(w string) bool {
	_, ok := mockMonths[w]
	return ok
}

func isAlpha(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if (r < 'a' || r > 'z') && r != '-' {
			return false
		}
	}
	return true
}
