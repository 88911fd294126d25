// Package orgs normalizes the organization set: merging name variants
// that denote the same entity and resolving parent organizations.
package orgs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lzy234/dataprocessing/limiter"
	"github.com/lzy234/dataprocessing/llm"
	"github.com/lzy234/dataprocessing/model"
	"github.com/lzy234/dataprocessing/retry"
	"github.com/lzy234/dataprocessing/store"
)

// Deduplicator merges organization records whose names are variants of
// the same real entity, e.g. "U.S. Senate" and "United States Senate".
type Deduplicator struct {
	provider llm.Provider
	cache    store.Cache
	limiter  *limiter.Limiter
	policy   retry.Policy
	model    string
	log      *slog.Logger
}

// NewDeduplicator wires a Deduplicator. The limiter may be nil.
func NewDeduplicator(provider llm.Provider, cache store.Cache, lim *limiter.Limiter, modelName string, log *slog.Logger) *Deduplicator {
	if log == nil {
		log = slog.Default()
	}
	return &Deduplicator{
		provider: provider,
		cache:    cache,
		limiter:  lim,
		policy:   retry.DefaultPolicy(llm.IsTransient),
		model:    modelName,
		log:      log,
	}
}

type duplicateGroups struct {
	DuplicateGroups []struct {
		CanonicalName string   `json:"canonicalName"`
		Variants      []string `json:"variants"`
	} `json:"duplicateGroups"`
}

// Dedup returns the canonical organization list and a total mapping from
// every input name to its canonical name. Lists with at most one entry
// map to themselves without a generation call. On a generation failure
// the identity mapping is returned so the pipeline can proceed.
func (d *Deduplicator) Dedup(ctx context.Context, orgList []*model.Organization) ([]*model.Organization, map[string]string, error) {
	mapping := make(map[string]string, len(orgList))
	for _, o := range orgList {
		mapping[o.Name] = o.Name
	}
	if len(orgList) <= 1 {
		return orgList, mapping, nil
	}

	groups, err := d.findGroups(ctx, orgList)
	if err != nil {
		d.log.Warn("organization dedup failed, keeping all names distinct", "error", err)
		return orgList, mapping, nil
	}

	byName := make(map[string]*model.Organization, len(orgList))
	for _, o := range orgList {
		byName[o.Name] = o
	}
	for _, g := range groups.DuplicateGroups {
		canonical := strings.TrimSpace(g.CanonicalName)
		if canonical == "" {
			continue
		}
		for _, v := range g.Variants {
			if _, known := mapping[v]; known {
				mapping[v] = canonical
			}
		}
		mapping[canonical] = canonical
	}

	// The canonical record keeps the first existing variant's data under
	// the canonical name.
	kept := make(map[string]*model.Organization)
	var order []string
	for _, o := range orgList {
		canonical := mapping[o.Name]
		if _, ok := kept[canonical]; ok {
			continue
		}
		merged := *o
		merged.Name = canonical
		kept[canonical] = &merged
		order = append(order, canonical)
	}
	out := make([]*model.Organization, 0, len(order))
	for _, name := range order {
		out = append(out, kept[name])
	}
	d.log.Info("organizations deduplicated", "before", len(orgList), "after", len(out))
	return out, mapping, nil
}

func (d *Deduplicator) findGroups(ctx context.Context, orgList []*model.Organization) (*duplicateGroups, error) {
	names := make([]string, len(orgList))
	for i, o := range orgList {
		names[i] = o.Name
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, "\x00")))
	key := "dedup_" + hex.EncodeToString(sum[:])

	var groups duplicateGroups
	if ok, err := d.cache.Get(key, &groups); err != nil {
		d.log.Warn("dedup cache read failed", "error", err)
	} else if ok {
		return &groups, nil
	}

	prompt := fmt.Sprintf(`These organization names come from one dataset. Identify groups of
names that refer to the same real organization. Only group names you are
certain denote the same entity. Answer with a single JSON object and
nothing else.

Names:
- %s

JSON shape:
{"duplicateGroups": [{"canonicalName": "...", "variants": ["...", "..."]}]}
Return {"duplicateGroups": []} if every name is distinct.`,
		strings.Join(names, "\n- "))

	if d.limiter != nil {
		if err := d.limiter.Admit(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limit: %w", err)
		}
	}
	var content string
	err := retry.Do(ctx, "org dedup", d.policy, func() error {
		resp, err := d.provider.Complete(ctx, llm.Request{Model: d.model, Prompt: prompt})
		if err != nil {
			return err
		}
		content = resp.Content
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(llm.StripFences(content)), &groups); err != nil {
		return nil, fmt.Errorf("%w: decoding dedup answer: %v", llm.ErrBadResponse, err)
	}
	if err := d.cache.Put(key, &groups); err != nil {
		d.log.Warn("dedup cache write failed", "error", err)
	}
	return &groups, nil
}
