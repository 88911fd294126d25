package wiki

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lzy234/dataprocessing/chunker"
	"github.com/lzy234/dataprocessing/limiter"
	"github.com/lzy234/dataprocessing/retry"
	"github.com/lzy234/dataprocessing/store"
)

// topChunks is how many scored chunks a cached record keeps.
const topChunks = 5

// Record is the cached outcome of a biography lookup. Found=false records
// a definitive absence so the subject is not searched again.
type Record struct {
	Found     bool            `json:"found"`
	Title     string          `json:"title,omitempty"`
	URL       string          `json:"url,omitempty"`
	Text      string          `json:"text,omitempty"`
	Chunks    []chunker.Chunk `json:"chunks,omitempty"`
	BirthDate string          `json:"birth_date,omitempty"`
	Education string          `json:"education,omitempty"`
}

// Fetcher looks up biographies through a Source with caching, rate
// limiting, and text preparation.
type Fetcher struct {
	source  Source
	cache   store.Cache
	limiter *limiter.Limiter
	chunker *chunker.Chunker
	policy  retry.Policy
	log     *slog.Logger
}

// FetcherOption adjusts a Fetcher at construction.
type FetcherOption func(*Fetcher)

// WithRetryPolicy replaces the default backoff schedule for source calls.
func WithRetryPolicy(p retry.Policy) FetcherOption {
	return func(f *Fetcher) { f.policy = p }
}

// NewFetcher wires a Fetcher. The limiter may be nil when the source
// needs no throttling, e.g. a local test server.
func NewFetcher(source Source, cache store.Cache, lim *limiter.Limiter, log *slog.Logger, opts ...FetcherOption) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	f := &Fetcher{
		source:  source,
		cache:   cache,
		limiter: lim,
		chunker: chunker.New(chunker.Config{}),
		policy:  retry.DefaultPolicy(IsTransient),
		log:     log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Lookup resolves a subject name to its prepared biography record.
// Cache hits, positive or negative, short-circuit the network. A missing
// page yields a Found=false record and is cached; transient source
// failures are retried under the backoff policy and, if they persist,
// return an error and cache nothing.
func (f *Fetcher) Lookup(ctx context.Context, name string) (*Record, error) {
	if strings.TrimSpace(name) == "" {
		return &Record{}, nil
	}

	var cached Record
	if ok, err := f.cache.Get(name, &cached); err != nil {
		f.log.Warn("biography cache read failed", "name", name, "error", err)
	} else if ok {
		return &cached, nil
	}

	if f.limiter != nil {
		if err := f.limiter.Admit(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limit: %w", err)
		}
	}

	var rec *Record
	err := retry.Do(ctx, "biography fetch", f.policy, func() error {
		var fetchErr error
		rec, fetchErr = f.fetch(ctx, name)
		return fetchErr
	})
	if err != nil {
		if IsTransient(err) {
			return nil, err
		}
		// Definitive absence, remember it.
		rec = &Record{}
	}
	if putErr := f.cache.Put(name, rec); putErr != nil {
		f.log.Warn("biography cache write failed", "name", name, "error", putErr)
	}
	return rec, nil
}

func (f *Fetcher) fetch(ctx context.Context, name string) (*Record, error) {
	page, err := f.source.Search(ctx, name)
	if err != nil {
		return nil, err
	}
	art, err := f.source.Fetch(ctx, page)
	if err != nil {
		return nil, err
	}

	text := Preprocess(art.Text)
	chunks := f.chunker.Segment(text)
	chunks = chunker.SelectTop(chunks, topChunks, nil)

	rec := &Record{
		Found:     true,
		Title:     art.Title,
		URL:       art.URL,
		Text:      text,
		Chunks:    chunks,
		BirthDate: ExtractBirthDate(text),
		Education: ExtractEducation(text),
	}
	f.log.Info("biography fetched", "name", name, "title", art.Title, "chunks", len(chunks))
	return rec, nil
}
