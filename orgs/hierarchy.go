package orgs

import (
	"context"
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

// maxContextExcerpts bounds how many article excerpts back one parent
// resolution call.
const maxContextExcerpts = 3

// Hierarchy resolves parent organizations using article text mentioning
// each organization as grounding.
type Hierarchy struct {
	provider llm.Provider
	cache    store.Cache
	limiter  *limiter.Limiter
	policy   retry.Policy
	model    string
	log      *slog.Logger
}

// NewHierarchy wires a Hierarchy resolver. The limiter may be nil.
func NewHierarchy(provider llm.Provider, cache store.Cache, lim *limiter.Limiter, modelName string, log *slog.Logger) *Hierarchy {
	if log == nil {
		log = slog.Default()
	}
	return &Hierarchy{
		provider: provider,
		cache:    cache,
		limiter:  lim,
		policy:   retry.DefaultPolicy(llm.IsTransient),
		model:    modelName,
		log:      log,
	}
}

type parentAnswer struct {
	HasParent          bool   `json:"hasParent"`
	ParentOrganization string `json:"parentOrganization"`
	Reasoning          string `json:"reasoning"`
}

// ResolveAll fills ParentName for organizations that lack one. Articles
// supplies grounding text keyed by article title; excerpts mentioning the
// organization are passed as context. Failures and uncertain answers
// leave the organization without a parent.
func (h *Hierarchy) ResolveAll(ctx context.Context, orgList []*model.Organization, articles map[string]string) {
	for _, o := range orgList {
		if o.ParentName != "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return
		}
		parent, err := h.resolve(ctx, o.Name, articles)
		if err != nil {
			h.log.Warn("parent resolution failed", "organization", o.Name, "error", err)
			continue
		}
		if parent != "" {
			o.ParentName = parent
		}
	}
}

func (h *Hierarchy) resolve(ctx context.Context, name string, articles map[string]string) (string, error) {
	key := "parent_" + name

	var ans parentAnswer
	if ok, err := h.cache.Get(key, &ans); err != nil {
		h.log.Warn("parent cache read failed", "organization", name, "error", err)
	} else if ok {
		return acceptedParent(ans, name), nil
	}

	excerpts := collectExcerpts(name, articles)
	prompt := fmt.Sprintf(`Does the organization "%s" have a parent organization it formally
belongs to? Use only the context below; answer uncertain cases with
hasParent=false. Answer with a single JSON object and nothing else.

Guidelines:
- A federal agency or department belongs to its national government
  (for example "U.S. Federal Government").
- A legislative committee or subcommittee belongs to its chamber
  (Senate or House).
- A chamber of a legislature has no parent.
- A head-of-state residence or office has no parent.
- A top-level government entity has no parent.
- A private company, think tank, or media outlet has no parent unless
  the context states it is a subsidiary.
- Use the parent's full formal English name.

Context:
%s

JSON shape:
{"hasParent": true|false, "parentOrganization": "...", "reasoning": "..."}`,
		name, excerpts)

	if h.limiter != nil {
		if err := h.limiter.Admit(ctx); err != nil {
			return "", fmt.Errorf("waiting for rate limit: %w", err)
		}
	}
	var content string
	err := retry.Do(ctx, "org parent", h.policy, func() error {
		resp, err := h.provider.Complete(ctx, llm.Request{Model: h.model, Prompt: prompt})
		if err != nil {
			return err
		}
		content = resp.Content
		return nil
	})
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal([]byte(llm.StripFences(content)), &ans); err != nil {
		return "", fmt.Errorf("%w: decoding parent answer: %v", llm.ErrBadResponse, err)
	}
	if err := h.cache.Put(key, &ans); err != nil {
		h.log.Warn("parent cache write failed", "organization", name, "error", err)
	}
	return acceptedParent(ans, name), nil
}

// acceptedParent filters out empty and self-referential answers.
func acceptedParent(ans parentAnswer, name string) string {
	parent := strings.TrimSpace(ans.ParentOrganization)
	if !ans.HasParent || parent == "" || strings.EqualFold(parent, name) {
		return ""
	}
	return parent
}

// collectExcerpts pulls up to maxContextExcerpts article snippets that
// mention the organization, each truncated to 500 characters.
func collectExcerpts(name string, articles map[string]string) string {
	lower := strings.ToLower(name)
	titles := make([]string, 0, len(articles))
	for t := range articles {
		titles = append(titles, t)
	}
	sort.Strings(titles)

	var parts []string
	for _, title := range titles {
		if len(parts) >= maxContextExcerpts {
			break
		}
		text := articles[title]
		idx := strings.Index(strings.ToLower(text), lower)
		if idx < 0 {
			continue
		}
		start := max(0, idx-100)
		end := min(len(text), start+500)
		parts = append(parts, fmt.Sprintf("From %q: ...%s...", title, text[start:end]))
	}
	if len(parts) == 0 {
		return "(no article text mentions this organization)"
	}
	return strings.Join(parts, "\n\n")
}
