package enhance

import (
	"encoding/json"

	"github.com/lzy234/dataprocessing/model"
)

// finalizeSources deduplicates a person's citations by URL, keeping at
// most one citation without a URL, and serializes the result into
// SourcesRaw for export.
func finalizeSources(p *model.Person) {
	seen := make(map[string]bool)
	urlless := false
	deduped := p.Sources[:0]
	for _, c := range p.Sources {
		if c.SourceURL == "" {
			if urlless {
				continue
			}
			urlless = true
		} else {
			if seen[c.SourceURL] {
				continue
			}
			seen[c.SourceURL] = true
		}
		deduped = append(deduped, c)
	}
	p.Sources = deduped

	if len(p.Sources) == 0 {
		p.SourcesRaw = ""
		return
	}
	raw, err := json.Marshal(p.Sources)
	if err != nil {
		return
	}
	p.SourcesRaw = string(raw)
}
