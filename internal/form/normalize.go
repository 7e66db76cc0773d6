package form

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reInt        = regexp.MustCompile(`\d+`)
	reFloat      = regexp.MustCompile(`\d+(\.\d+)?`)
	reWordChar   = regexp.MustCompile(`[A-Za-z0-9]`)
	reSpaces     = regexp.MustCompile(`\s+`)
	reOrdinal    = regexp.MustCompile(`\b(\d{1,2})(st|nd|rd|th)\b`)
	reClockMer   = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*(am|pm)\b`)
	reCompactMer = regexp.MustCompile(`\b(\d{3,4})\s*(am|pm)\b`)
	reClock24    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
)

// joinClean joins word pieces from the token classifier, dropping
// pieces that contain no letter or digit (pure punctuation noise).
func joinClean(pieces []string) string {
	kept := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if reWordChar.MatchString(p) {
			kept = append(kept, p)
		}
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

// dateLayouts are tried in order; the first successful parse wins.
var dateLayouts = []string{
	"2006-01-02", // ISO
	"2006-1-2",
	"January 2 2006", // Month Day Year
	"Jan 2 2006",
	"2/1/2006", // numeric, day first
	"2-1-2006",
	"2 January 2006", // spelled-out month, day first
	"2 Jan 2006",
}

// normalizeDate parses a date span into YYYY-MM-DD. Ordinal day
// suffixes ("15th") are stripped and month names are case-folded
// before parsing.
func normalizeDate(text string) (string, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return "", false
	}
	t = reOrdinal.ReplaceAllString(strings.ToLower(t), "$1")
	t = reSpaces.ReplaceAllString(t, " ")
	t = strings.Trim(t, " ,.")
	t = titleWords(t)
	for _, layout := range dateLayouts {
		if dt, err := time.Parse(layout, t); err == nil {
			return dt.Format("2006-01-02"), true
		}
	}
	return "", false
}

// titleWords capitalizes the first letter of each alphabetic word so
// that "january" matches time.Parse month names.
func titleWords(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if len(w) > 0 && w[0] >= 'a' && w[0] <= 'z' {
			words[i] = string(w[0]-'a'+'A') + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// normalizeTime parses "HH:MM" (24h), "H:MM am/pm", "H.MM pm" and the
// compact "930 pm" form into zero-padded 24h HH:MM.
func normalizeTime(text string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.ReplaceAll(t, "p.m", "pm")
	t = strings.ReplaceAll(t, "a.m", "am")
	t = strings.ReplaceAll(t, ".", ":")
	t = reSpaces.ReplaceAllString(t, " ")

	if m := reClockMer.FindStringSubmatch(t); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		return clock24(h, min, m[3])
	}
	if m := reCompactMer.FindStringSubmatch(t); m != nil {
		digits := m[1]
		var h, min int
		if len(digits) == 3 {
			h, _ = strconv.Atoi(digits[:1])
			min, _ = strconv.Atoi(digits[1:])
		} else {
			h, _ = strconv.Atoi(digits[:2])
			min, _ = strconv.Atoi(digits[2:])
		}
		return clock24(h, min, m[2])
	}
	if m := reClock24.FindStringSubmatch(t); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if h < 24 && min < 60 {
			return fmt.Sprintf("%02d:%02d", h, min), true
		}
	}
	return "", false
}

func clock24(h, min int, meridiem string) (string, bool) {
	if h < 1 || h > 12 || min > 59 {
		return "", false
	}
	if meridiem == "pm" && h != 12 {
		h += 12
	}
	if meridiem == "am" && h == 12 {
		h = 0
	}
	return fmt.Sprintf("%02d:%02d", h, min), true
}

// firstInt extracts the first integer in the text.
func firstInt(s string) (int, bool) {
	m := reInt.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// firstFloat extracts the first decimal number in the text.
func firstFloat(s string) (float64, bool) {
	m := reFloat.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
