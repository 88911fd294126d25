// Package wiki fetches and prepares encyclopedia biographies: page lookup
// via the MediaWiki API, HTML to plain-text conversion, text cleanup, and
// deterministic extraction of birth dates and education mentions.
package wiki

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports that no page exists for a subject. Callers may
	// cache this result.
	ErrNotFound = errors.New("wiki: page not found")

	// ErrUnavailable reports a transient failure talking to the source.
	// Callers must not cache this result.
	ErrUnavailable = errors.New("wiki: source unavailable")
)

// Page is a located article before its body is fetched.
type Page struct {
	ID    int64
	Title string
	URL   string
}

// Article is a fetched biography in plain text.
type Article struct {
	Title string
	URL   string
	Text  string
}

// Source locates and fetches encyclopedia articles.
type Source interface {
	// Search resolves a subject name to its best-matching page.
	// Returns ErrNotFound when no page matches.
	Search(ctx context.Context, name string) (*Page, error)

	// Fetch retrieves the article body for a page as plain text.
	Fetch(ctx context.Context, page *Page) (*Article, error)
}

// IsTransient reports whether err is worth retrying rather than caching
// as a definitive absence.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
