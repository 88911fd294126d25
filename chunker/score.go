package chunker

import (
	"regexp"
	"sort"
	"strings"
)

// biographicalSections are section names that reliably carry the facts
// the enrichment stages ask about.
var biographicalSections = []string{
	"early life", "education", "career", "personal life",
	"biography", "background", "youth",
}

// biographicalKeywords are content markers of biographical prose.
var biographicalKeywords = []string{
	"born", "graduated", "attended", "studied", "degree",
	"university", "college", "school", "family", "married",
	"raised", "childhood", "parents",
}

var yearToken = regexp.MustCompile(`\b\d{4}\b`)

// Score rates a chunk's relevance for biographical extraction, biased
// toward the requested keywords. Introduction chunks always score
// highest; known biographical sections next; each keyword and 4-digit
// year adds incrementally; substantial chunks get a small bonus.
func Score(ch Chunk, keywords []string) float64 {
	score := 0.0
	text := strings.ToLower(ch.Text)
	sec := strings.ToLower(ch.Section)

	if ch.IsIntro {
		score += 100
	}
	for _, s := range biographicalSections {
		if strings.Contains(sec, s) {
			score += 50
			break
		}
	}
	for _, kw := range biographicalKeywords {
		if strings.Contains(text, kw) {
			score += 5
		}
	}
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			score += 10
		}
	}
	score += float64(len(yearToken.FindAllString(text, -1))) * 2
	if len(text) > 500 {
		score += 10
	}
	return score
}

// SelectTop returns the k highest-scoring chunks. The introduction chunk
// is always placed first regardless of its score rank.
func SelectTop(chunks []Chunk, k int, keywords []string) []Chunk {
	if len(chunks) <= k {
		return chunks
	}

	scored := make([]Chunk, len(chunks))
	copy(scored, chunks)
	sort.SliceStable(scored, func(i, j int) bool {
		return Score(scored[i], keywords) > Score(scored[j], keywords)
	})

	var result []Chunk
	for _, ch := range scored {
		if ch.IsIntro {
			result = append([]Chunk{ch}, result...)
		} else {
			result = append(result, ch)
		}
	}
	if len(result) > k {
		result = result[:k]
	}
	return result
}
