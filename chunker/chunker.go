// Package chunker splits biographical article text into bounded-size
// chunks tagged with their source section, and scores chunks by topical
// relevance so callers can build a focused excerpt for a generation call.
package chunker

import (
	"regexp"
	"strings"
)

// Config controls chunk sizing. Zero-value fields get defaults.
type Config struct {
	MaxChunkSize int // maximum characters per chunk
	MinChunkSize int // minimum characters before a chunk is emitted on split
	Overlap      int // trailing characters carried into the next chunk
}

// Chunk is a bounded contiguous excerpt of article text.
type Chunk struct {
	Text    string `json:"text"`
	Section string `json:"section"`
	Index   int    `json:"chunk_index"`
	IsIntro bool   `json:"is_intro"`
}

// Chunker converts article text into section-tagged chunks.
type Chunker struct {
	cfg Config
}

// New returns a Chunker with the given configuration.
func New(cfg Config) *Chunker {
	if cfg.MaxChunkSize == 0 {
		cfg.MaxChunkSize = 2000
	}
	if cfg.MinChunkSize == 0 {
		cfg.MinChunkSize = 500
	}
	if cfg.Overlap == 0 {
		cfg.Overlap = 100
	}
	return &Chunker{cfg: cfg}
}

var sectionHeading = regexp.MustCompile(`\n==\s*([^=]+?)\s*==\n`)

type section struct {
	name    string
	text    string
	isIntro bool
}

// Segment splits text into chunks. Text before the first heading is the
// Introduction section and is always retained; each section becomes one
// chunk when it fits, otherwise it is split on paragraph boundaries with
// a trailing overlap carried across the split.
func (c *Chunker) Segment(text string) []Chunk {
	if len(text) < c.cfg.MaxChunkSize {
		return []Chunk{{Text: text, Section: "Full Article", Index: 0, IsIntro: true}}
	}

	var chunks []Chunk
	idx := 0
	for _, sec := range parseSections(text) {
		if len(sec.text) <= c.cfg.MaxChunkSize {
			chunks = append(chunks, Chunk{
				Text:    sec.text,
				Section: sec.name,
				Index:   idx,
				IsIntro: sec.isIntro,
			})
			idx++
			continue
		}
		for _, frag := range c.splitByParagraphs(sec.text) {
			chunks = append(chunks, Chunk{
				Text:    frag,
				Section: sec.name,
				Index:   idx,
				IsIntro: sec.isIntro,
			})
			idx++
		}
	}
	return chunks
}

// parseSections splits article text on == Heading == markers. Sections
// shorter than 50 characters are dropped as navigation stubs; the
// introduction is always kept.
func parseSections(text string) []section {
	matches := sectionHeading.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []section{{name: "Introduction", text: strings.TrimSpace(text), isIntro: true}}
	}

	var sections []section
	if intro := strings.TrimSpace(text[:matches[0][0]]); intro != "" {
		sections = append(sections, section{name: "Introduction", text: intro, isIntro: true})
	}
	for i, m := range matches {
		name := strings.TrimSpace(text[m[2]:m[3]])
		start := m[1]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(text[start:end])
		if len(body) > 50 {
			sections = append(sections, section{name: name, text: body})
		}
	}
	return sections
}

// splitByParagraphs breaks a long section into fragments within the size
// bounds, carrying a trailing overlap of the previous fragment forward.
func (c *Chunker) splitByParagraphs(text string) []string {
	paragraphs := regexp.MustCompile(`\n\n+`).Split(text, -1)

	var fragments []string
	var current string
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len(current)+len(para)+2 > c.cfg.MaxChunkSize {
			if len(current) > c.cfg.MinChunkSize {
				fragments = append(fragments, strings.TrimSpace(current))
				current = c.overlapTail(current) + "\n\n" + para
			} else if current != "" {
				current += "\n\n" + para
			} else {
				current = para
			}
		} else if current != "" {
			current += "\n\n" + para
		} else {
			current = para
		}
	}
	if strings.TrimSpace(current) != "" {
		fragments = append(fragments, strings.TrimSpace(current))
	}
	return fragments
}

// overlapTail returns the last Overlap characters of text, preferring to
// start at a sentence boundary so the carried context reads cleanly.
func (c *Chunker) overlapTail(text string) string {
	if len(text) <= c.cfg.Overlap {
		return text
	}
	tail := text[len(text)-c.cfg.Overlap:]
	if cut := strings.LastIndex(tail, ". "); cut > 0 {
		return tail[cut+2:]
	}
	return tail
}
