// Package dataprocessing turns a raw people roster into a normalized,
// cross-referenced entity dataset. A run moves through four phases:
// extraction (roster parsing, entity recognition, biography fetching),
// enhancement (staged generation calls grounded in fetched text),
// normalization (organization dedup, hierarchy, ID assignment), and
// validation plus export.
package dataprocessing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/lzy234/dataprocessing/enhance"
	"github.com/lzy234/dataprocessing/export"
	"github.com/lzy234/dataprocessing/limiter"
	"github.com/lzy234/dataprocessing/llm"
	"github.com/lzy234/dataprocessing/mapper"
	"github.com/lzy234/dataprocessing/model"
	"github.com/lzy234/dataprocessing/orgs"
	"github.com/lzy234/dataprocessing/recognize"
	"github.com/lzy234/dataprocessing/roster"
	"github.com/lzy234/dataprocessing/store"
	"github.com/lzy234/dataprocessing/validate"
	"github.com/lzy234/dataprocessing/wiki"
)

// Summary reports what a pipeline run produced.
type Summary struct {
	People        int            `json:"people"`
	WithBiography int            `json:"with_biography"`
	Organizations int            `json:"organizations"`
	Parties       int            `json:"parties"`
	Sectors       int            `json:"sectors"`
	Report        *model.Report  `json:"report"`
	OutputDir     string         `json:"output_dir"`
	Elapsed       time.Duration  `json:"elapsed"`
}

// Pipeline is the main entry point. Build one with New, run it with Run,
// release its cache database with Close.
type Pipeline struct {
	cfg Config
	log *slog.Logger

	store      *store.Store
	provider   llm.Provider
	source     wiki.Source
	recognizer *recognize.Recognizer

	// llmLimiter is shared by every phase talking to the provider so
	// the admission window spans phase boundaries.
	llmLimiter *limiter.Limiter
}

// Option adjusts a Pipeline at construction, mainly for tests.
type Option func(*Pipeline)

// WithLogger replaces the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithProvider replaces the generation provider built from configuration.
func WithProvider(provider llm.Provider) Option {
	return func(p *Pipeline) { p.provider = provider }
}

// WithWikiSource replaces the biography source built from configuration.
func WithWikiSource(source wiki.Source) Option {
	return func(p *Pipeline) { p.source = source }
}

// New builds a Pipeline from validated configuration.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{cfg: cfg, log: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}

	cachePath := cfg.CachePath
	if cachePath == "" {
		cachePath = filepath.Join(cfg.OutputDir, "cache.db")
	}
	st, err := store.Open(cachePath)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	p.store = st

	if p.provider == nil && cfg.LLM.APIKey != "" {
		provider, err := llm.NewProvider(cfg.LLM)
		if err != nil {
			st.Close()
			return nil, err
		}
		p.provider = provider
	}
	if p.source == nil {
		p.source = wiki.NewMediaWiki()
	}
	if p.provider != nil {
		if p.llmLimiter, err = limiter.New(cfg.LLMCallsPerMinute, time.Minute); err != nil {
			st.Close()
			return nil, err
		}
	}

	sectorTable := recognize.DefaultSectorTable()
	if cfg.SectorTablePath != "" {
		if sectorTable, err = recognize.LoadSectorTable(cfg.SectorTablePath); err != nil {
			st.Close()
			return nil, err
		}
	}
	partyTable := recognize.DefaultPartyTable()
	if cfg.PartyTablePath != "" {
		if partyTable, err = recognize.LoadPartyTable(cfg.PartyTablePath); err != nil {
			st.Close()
			return nil, err
		}
	}
	p.recognizer = recognize.New(sectorTable, partyTable)

	return p, nil
}

// Close releases the cache database.
func (p *Pipeline) Close() error {
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}

// Run executes the full pipeline. Exports are written even when
// validation fails; the returned error is then ErrValidationFailed so
// callers can distinguish a dirty dataset from a crashed run.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	started := time.Now()

	people, records, err := p.extract(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.enhance(ctx, people, records); err != nil {
		return nil, err
	}

	entities, err := p.normalize(ctx, people, records)
	if err != nil {
		return nil, err
	}

	report, err := p.validateAndExport(entities)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		People:        len(entities.People),
		WithBiography: len(records),
		Organizations: len(entities.Organizations),
		Parties:       len(entities.Parties),
		Sectors:       len(entities.Sectors),
		Report:        report,
		OutputDir:     p.cfg.OutputDir,
		Elapsed:       time.Since(started),
	}
	if err := p.saveArtifact("summary.json", summary); err != nil {
		p.log.Warn("summary not saved", "error", err)
	}
	p.log.Info("pipeline finished",
		"people", summary.People,
		"organizations", summary.Organizations,
		"parties", summary.Parties,
		"sectors", summary.Sectors,
		"passed", report.Passed,
		"elapsed", summary.Elapsed)

	if !report.Passed {
		return summary, fmt.Errorf("%w: %d errors", ErrValidationFailed, len(report.Errors))
	}
	return summary, nil
}

// extract reads the roster, runs deterministic recognition, and fetches
// biographies for every person with an English name.
func (p *Pipeline) extract(ctx context.Context) ([]*model.Person, map[string]*wiki.Record, error) {
	people, err := roster.Read(p.cfg.InputPath)
	if err != nil {
		return nil, nil, err
	}
	if len(people) == 0 {
		return nil, nil, ErrEmptyRoster
	}
	p.log.Info("roster loaded", "path", p.cfg.InputPath, "people", len(people))

	p.recognizer.ProcessAll(people)

	records := make(map[string]*wiki.Record)
	if !p.cfg.SkipWikipedia {
		lim, err := limiter.New(p.cfg.WikiCallsPerMinute, time.Minute)
		if err != nil {
			return nil, nil, err
		}
		fetcher := wiki.NewFetcher(p.source, p.store.Bucket("wiki"), lim, p.log)
		for _, person := range people {
			rec, err := fetcher.Lookup(ctx, person.Name)
			if err != nil {
				if ctx.Err() != nil {
					return nil, nil, ctx.Err()
				}
				p.log.Warn("biography lookup failed", "person", person.Name, "error", err)
				continue
			}
			if rec.Found {
				records[person.Name] = rec
			}
		}
		p.log.Info("biographies fetched", "found", len(records), "total", len(people))
	}

	if err := p.saveArtifact("people_extracted.json", people); err != nil {
		return nil, nil, err
	}
	return people, records, nil
}

// enhance runs the staged enrichment when a provider is configured.
func (p *Pipeline) enhance(ctx context.Context, people []*model.Person, records map[string]*wiki.Record) error {
	if p.provider == nil || len(records) == 0 {
		p.log.Info("enhancement skipped", "provider", p.provider != nil, "biographies", len(records))
		return nil
	}
	enh := enhance.New(p.provider, p.store.Bucket("enhance"), p.llmLimiter, p.log, enhance.Config{
		Model:       p.cfg.LLM.Model,
		Temperature: p.cfg.Temperature,
		BatchSize:   p.cfg.BatchSize,
	})
	if err := enh.EnhanceAll(ctx, people, records); err != nil {
		return err
	}
	return p.saveArtifact("people_enhanced.json", people)
}

// normalize builds the final entity set: the organization list is the
// union of recognized and generated names, deduplicated, with parents
// resolved, IDs assigned, and references mapped.
func (p *Pipeline) normalize(ctx context.Context, people []*model.Person, records map[string]*wiki.Record) (*model.Entities, error) {
	// Register any generated organization names the roster never
	// mentioned so every reference has a record.
	for _, person := range people {
		if person.OrganizationName != "" {
			p.recognizer.ExtractOrganization(person.OrganizationName)
		}
	}
	orgList := p.recognizer.Organizations()
	sort.Slice(orgList, func(i, j int) bool { return orgList[i].Name < orgList[j].Name })

	mapping := make(map[string]string, len(orgList))
	for _, o := range orgList {
		mapping[o.Name] = o.Name
	}
	if p.provider != nil {
		dedup := orgs.NewDeduplicator(p.provider, p.store.Bucket("orgs"), p.llmLimiter, p.cfg.LLM.Model, p.log)
		var err error
		if orgList, mapping, err = dedup.Dedup(ctx, orgList); err != nil {
			return nil, err
		}

		articles := make(map[string]string, len(records))
		for _, rec := range records {
			articles[rec.Title] = rec.Text
		}
		hierarchy := orgs.NewHierarchy(p.provider, p.store.Bucket("orgs"), p.llmLimiter, p.cfg.LLM.Model, p.log)
		hierarchy.ResolveAll(ctx, orgList, articles)
	}

	mapper.ApplyOrgMapping(people, mapping)
	// Parent references go through the same mapping so they hit the
	// canonical record.
	for _, o := range orgList {
		if canonical, ok := mapping[o.ParentName]; ok {
			o.ParentName = canonical
		}
	}

	entities := &model.Entities{
		People:        people,
		Organizations: orgList,
		Parties:       p.recognizer.Parties(),
		Sectors:       p.recognizer.Sectors(),
	}
	mapper.AssignIDs(entities)
	mapper.MapRelationships(entities, p.recognizer)

	if err := p.saveArtifact("entities.json", entities); err != nil {
		return nil, err
	}
	return entities, nil
}

// validateAndExport writes the report, the CSVs, and the workbook.
func (p *Pipeline) validateAndExport(entities *model.Entities) (*model.Report, error) {
	report := validate.Run(entities)
	if err := validate.SaveReport(report, filepath.Join(p.cfg.OutputDir, "validation_report.json")); err != nil {
		return nil, err
	}
	if err := export.WriteCSVs(entities, p.cfg.OutputDir); err != nil {
		return nil, err
	}
	if err := export.WriteXLSX(entities, filepath.Join(p.cfg.OutputDir, "entities.xlsx")); err != nil {
		return nil, err
	}
	return report, nil
}

// saveArtifact writes an intermediate JSON snapshot so long runs can be
// inspected and debugged between phases.
func (p *Pipeline) saveArtifact(name string, v any) error {
	dir := filepath.Join(p.cfg.OutputDir, "intermediate")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding artifact %s: %w", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing artifact %s: %w", name, err)
	}
	return nil
}
