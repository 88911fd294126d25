// Package enhance fills a person's biographical fields through staged
// generation calls grounded in fetched encyclopedia text. Every stage is
// cached independently so an interrupted run resumes where it stopped.
package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lzy234/dataprocessing/limiter"
	"github.com/lzy234/dataprocessing/llm"
	"github.com/lzy234/dataprocessing/model"
	"github.com/lzy234/dataprocessing/retry"
	"github.com/lzy234/dataprocessing/store"
	"github.com/lzy234/dataprocessing/wiki"
)

// Config tunes the enhancement run.
type Config struct {
	Model       string
	Temperature float64
	BatchSize   int
}

// Enhancer runs the staged enrichment for roster people.
type Enhancer struct {
	provider llm.Provider
	cache    store.Cache
	limiter  *limiter.Limiter
	policy   retry.Policy
	cfg      Config
	log      *slog.Logger
}

// New wires an Enhancer. The limiter may be nil for test providers.
func New(provider llm.Provider, cache store.Cache, lim *limiter.Limiter, log *slog.Logger, cfg Config) *Enhancer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if log == nil {
		log = slog.Default()
	}
	return &Enhancer{
		provider: provider,
		cache:    cache,
		limiter:  lim,
		policy:   retry.DefaultPolicy(llm.IsTransient),
		cfg:      cfg,
		log:      log,
	}
}

// EnhanceAll enriches every person in batches. A failure for one person is
// logged and does not stop the others. Records maps a person's name to the
// fetched biography, absent entries mean no page was found.
func (e *Enhancer) EnhanceAll(ctx context.Context, people []*model.Person, records map[string]*wiki.Record) error {
	const softLimit = 50
	if len(people) > softLimit {
		e.log.Warn("large batch, expect a long run", "people", len(people), "soft_limit", softLimit)
	}

	failed := 0
	for start := 0; start < len(people); start += e.cfg.BatchSize {
		end := min(start+e.cfg.BatchSize, len(people))
		e.log.Info("enhancing batch", "from", start+1, "to", end, "total", len(people))
		for _, p := range people[start:end] {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := e.EnhancePerson(ctx, p, records[p.Name]); err != nil {
				failed++
				e.log.Warn("enhancement failed", "person", p.Name, "error", err)
			}
		}
	}
	if failed > 0 {
		e.log.Warn("enhancement finished with failures", "failed", failed, "total", len(people))
	}
	return nil
}

// EnhancePerson runs all enrichment stages for one person. Without a
// fetched biography nothing is generated: inventing facts is worse than
// leaving fields empty.
func (e *Enhancer) EnhancePerson(ctx context.Context, p *model.Person, rec *wiki.Record) error {
	if rec == nil || !rec.Found {
		e.log.Info("no biography, skipping enhancement", "person", p.Name)
		return nil
	}

	stages := []struct {
		name string
		run  func(context.Context, *model.Person, *wiki.Record) error
	}{
		{"basic", e.stageBasic},
		{"education", e.stageEducation},
		{"career", e.stageCareer},
		{"bio", e.stageBio},
		{"organization", e.stageOrganization},
	}
	for _, st := range stages {
		if err := st.run(ctx, p, rec); err != nil {
			return fmt.Errorf("stage %s: %w", st.name, err)
		}
	}
	finalizeSources(p)
	return nil
}

// callJSON issues one rate-limited, retried completion and decodes the
// fenced-or-bare JSON answer into dest.
func (e *Enhancer) callJSON(ctx context.Context, label, prompt string, dest any) error {
	if e.limiter != nil {
		if err := e.limiter.Admit(ctx); err != nil {
			return fmt.Errorf("waiting for rate limit: %w", err)
		}
	}
	var content string
	err := retry.Do(ctx, label, e.policy, func() error {
		resp, err := e.provider.Complete(ctx, llm.Request{
			Model:       e.cfg.Model,
			Prompt:      prompt,
			Temperature: e.cfg.Temperature,
		})
		if err != nil {
			return err
		}
		content = resp.Content
		return nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(llm.StripFences(content)), dest); err != nil {
		return fmt.Errorf("%w: decoding %s answer: %v", llm.ErrBadResponse, label, err)
	}
	return nil
}

// cached loads a stage result for a person, running compute on a miss and
// storing what it produced.
func (e *Enhancer) cached(key string, dest any, compute func() error) error {
	if ok, err := e.cache.Get(key, dest); err != nil {
		e.log.Warn("stage cache read failed", "key", key, "error", err)
	} else if ok {
		return nil
	}
	if err := compute(); err != nil {
		return err
	}
	if err := e.cache.Put(key, dest); err != nil {
		e.log.Warn("stage cache write failed", "key", key, "error", err)
	}
	return nil
}
