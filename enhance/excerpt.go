package enhance

import (
	"sort"
	"strings"

	"github.com/lzy234/dataprocessing/chunker"
)

// buildExcerpt assembles the most relevant chunks into a budgeted prompt
// excerpt. The introduction always scores highest, then chunks containing
// the requested keywords. Chunks are joined with their section headers
// until the character budget runs out; at least one chunk is always
// included, truncated to the budget if needed.
func buildExcerpt(chunks []chunker.Chunk, keywords []string, budget int) string {
	if len(chunks) == 0 {
		return ""
	}

	type scored struct {
		chunk chunker.Chunk
		score int
	}
	ranked := make([]scored, 0, len(chunks))
	for _, ch := range chunks {
		s := 0
		if ch.IsIntro {
			s += 100
		}
		lower := strings.ToLower(ch.Text)
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				s += 10
			}
		}
		ranked = append(ranked, scored{ch, s})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	var b strings.Builder
	for _, r := range ranked {
		part := "=== " + r.chunk.Section + " ===\n" + r.chunk.Text
		if b.Len() == 0 {
			if len(part) > budget {
				part = part[:budget]
			}
			b.WriteString(part)
			continue
		}
		if b.Len()+len(part)+2 > budget {
			continue
		}
		b.WriteString("\n\n")
		b.WriteString(part)
	}
	return b.String()
}
