package wiki

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	bornMonthFirst = regexp.MustCompile(`(?i)born\s+([A-Z][a-z]+\s+\d{1,2},?\s+\d{4})`)
	bornDayFirst   = regexp.MustCompile(`(?i)born\s+(\d{1,2}\s+[A-Z][a-z]+\s+\d{4})`)
	bornYearOnly   = regexp.MustCompile(`(?i)born\b[^.\n]{0,40}?\b(1[89]\d{2}|20\d{2})\b`)
)

// ExtractBirthDate scans article text for a birth date and normalizes it
// to YYYY-MM-DD. Month-day-year forms are tried first, then day-month-year,
// then a bare year which maps to January 1st. Returns "" when nothing
// matches.
func ExtractBirthDate(text string) string {
	if m := bornMonthFirst.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		raw = collapseSpaces(raw)
		if t, err := time.Parse("January 2 2006", raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if m := bornDayFirst.FindStringSubmatch(text); m != nil {
		raw := collapseSpaces(m[1])
		if t, err := time.Parse("2 January 2006", raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if m := bornYearOnly.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("%s-01-01", m[1])
	}
	return ""
}

var educationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)graduated from\s+([^.,;\n]+)`),
	regexp.MustCompile(`(?i)attended\s+([^.,;\n]+)`),
	regexp.MustCompile(`(?i)studied at\s+([^.,;\n]+)`),
	regexp.MustCompile(`(?i)degree from\s+([^.,;\n]+)`),
	regexp.MustCompile(`(?i)education at\s+([^.,;\n]+)`),
	regexp.MustCompile(`(?i)alma mater[:\s]+([^.,;\n]+)`),
}

// ExtractEducation collects institutions mentioned with common education
// phrasings. Captures longer than 100 characters are discarded, duplicates
// are dropped case-insensitively preserving first appearance, and results
// are joined with "; ". Returns "" when nothing matches.
func ExtractEducation(text string) string {
	seen := make(map[string]bool)
	var out []string
	for _, pat := range educationPatterns {
		for _, m := range pat.FindAllStringSubmatch(text, -1) {
			inst := strings.TrimSpace(m[1])
			if inst == "" || len(inst) >= 100 {
				continue
			}
			key := strings.ToLower(inst)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, inst)
		}
	}
	return strings.Join(out, "; ")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
