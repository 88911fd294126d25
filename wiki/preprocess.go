package wiki

import (
	"regexp"
	"strings"
)

var (
	citationMarker = regexp.MustCompile(`\[\d+\]`)
	editorialNote  = regexp.MustCompile(`(?i)\[(citation needed|clarification needed)\]`)
	pronunciation  = regexp.MustCompile(`/[^/\s][^/]*?/`)
	sectionHeading = regexp.MustCompile(`(?m)^==\s*([^=]+?)\s*==\s*$`)
)

// Sections that never carry biographical prose.
var boilerplateSections = map[string]bool{
	"see also":               true,
	"references":             true,
	"external links":         true,
	"notes":                  true,
	"bibliography":           true,
	"further reading":        true,
	"gallery":                true,
	"filmography":            true,
	"discography":            true,
	"awards and nominations": true,
	"electoral history":      true,
}

// Preprocess cleans converted article text for downstream chunking and
// prompting: citation markers, editorial notes, and IPA pronunciation
// slashes are stripped, and boilerplate sections are dropped entirely.
func Preprocess(text string) string {
	text = citationMarker.ReplaceAllString(text, "")
	text = editorialNote.ReplaceAllString(text, "")
	text = pronunciation.ReplaceAllString(text, "")
	text = dropBoilerplate(text)
	text = manyNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func dropBoilerplate(text string) string {
	matches := sectionHeading.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.WriteString(text[:matches[0][0]])
	for i, m := range matches {
		title := strings.ToLower(strings.TrimSpace(text[m[2]:m[3]]))
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		if boilerplateSections[title] {
			continue
		}
		b.WriteString(text[m[0]:end])
	}
	return b.String()
}
