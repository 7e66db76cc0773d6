package form

import (
	"regexp"
	"strings"
)

// Rule-based extraction straight from the raw transcript. These
// patterns are more reliable than model spans for the dictation
// phrases nurses actually use ("surgeon one doctor smith", "in 930
// pm"), so they override the model-derived values when they match.

var (
	rePunctNoise = regexp.MustCompile(`[,\.;]+`)
	reNameToken  = regexp.MustCompile(`^[a-z\-]+$`)
	reTitle      = regexp.MustCompile(`^(dr|doctor)\b\s*`)

	timePattern = `\d{1,2}:\d{2}\s*(?:am|pm)|\d{3,4}\s*(?:am|pm)`
)

// cleanTranscript lowercasable normalization of dictated text:
// meridiem abbreviations folded, punctuation noise dropped, whitespace
// collapsed.
func cleanTranscript(t string) string {
	t = strings.TrimSpace(t)
	t = strings.ReplaceAll(t, "p.m.", "pm")
	t = strings.ReplaceAll(t, "a.m.", "am")
	t = strings.ReplaceAll(t, "p.m", "pm")
	t = strings.ReplaceAll(t, "a.m", "am")
	t = rePunctNoise.ReplaceAllString(t, " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(t, " "))
}

// surgeonsFromText extracts surgeon names dictated as "surgeon one
// doctor smith" or "first surgeon smith". Returned slots are empty
// strings when not found.
func surgeonsFromText(transcript string) (surgeon1, surgeon2 string) {
	t := strings.ToLower(cleanTranscript(transcript))
	t = strings.ReplaceAll(t, "surgeon one", "surgeon 1")
	t = strings.ReplaceAll(t, "first surgeon", "surgeon 1")
	t = strings.ReplaceAll(t, "surgeon two", "surgeon 2")
	t = strings.ReplaceAll(t, "second surgeon", "surgeon 2")

	grab := func(slot string) string {
		re := regexp.MustCompile(`(?:^|\b)surgeon\s*` + slot + `\b\s+(.*?)(?:\bsurgeon\b|\bin\b|\bout\b|\bend\b|$)`)
		m := re.FindStringSubmatch(t)
		if m == nil {
			return ""
		}
		val := reTitle.ReplaceAllString(strings.TrimSpace(m[1]), "")
		var names []string
		for _, w := range strings.Fields(val) {
			if reNameToken.MatchString(w) {
				names = append(names, w)
			}
		}
		return strings.Join(names, " ")
	}
	return grab("1"), grab("2")
}

// timeFromText extracts a clock time adjacent to a keyword, covering
// both "in 930 pm" and "930 pm in" orders. The result is normalized
// to 24h HH:MM; empty when no match.
func timeFromText(transcript, keyword string) string {
	t := strings.ToLower(cleanTranscript(transcript))

	after := regexp.MustCompile(`\b` + keyword + `\b\s+(` + timePattern + `)`)
	if m := after.FindStringSubmatch(t); m != nil {
		if norm, ok := normalizeTime(m[1]); ok {
			return norm
		}
	}
	before := regexp.MustCompile(`(` + timePattern + `)\s+\b` + keyword + `\b`)
	if m := before.FindStringSubmatch(t); m != nil {
		if norm, ok := normalizeTime(m[1]); ok {
			return norm
		}
	}
	return ""
}
