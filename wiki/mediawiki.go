package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultEndpoint = "https://en.wikipedia.org/w/api.php"

// MediaWiki talks to a MediaWiki API endpoint.
type MediaWiki struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

// MediaWikiOption adjusts a MediaWiki client.
type MediaWikiOption func(*MediaWiki)

// WithEndpoint points the client at a non-default API endpoint, mainly
// for tests.
func WithEndpoint(endpoint string) MediaWikiOption {
	return func(m *MediaWiki) { m.endpoint = endpoint }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) MediaWikiOption {
	return func(m *MediaWiki) { m.client = c }
}

// NewMediaWiki builds a client against the English Wikipedia API.
func NewMediaWiki(opts ...MediaWikiOption) *MediaWiki {
	m := &MediaWiki{
		endpoint:  defaultEndpoint,
		userAgent: "dataprocessing/1.0 (roster enrichment pipeline)",
		client:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type searchEnvelope struct {
	Query struct {
		Search []struct {
			PageID int64  `json:"pageid"`
			Title  string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type infoEnvelope struct {
	Query struct {
		Pages map[string]struct {
			FullURL string `json:"fullurl"`
		} `json:"pages"`
	} `json:"query"`
}

type parseEnvelope struct {
	Parse struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Search resolves a name to its best-matching page using the search API
// with a single-result limit, then resolves the page's canonical URL.
func (m *MediaWiki) Search(ctx context.Context, name string) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var env searchEnvelope
	err := m.get(ctx, url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {name},
		"srlimit":  {"1"},
		"format":   {"json"},
	}, &env)
	if err != nil {
		return nil, err
	}
	if len(env.Query.Search) == 0 {
		return nil, fmt.Errorf("searching %q: %w", name, ErrNotFound)
	}
	hit := env.Query.Search[0]
	page := &Page{ID: hit.PageID, Title: hit.Title}

	var info infoEnvelope
	err = m.get(ctx, url.Values{
		"action":  {"query"},
		"prop":    {"info"},
		"inprop":  {"url"},
		"pageids": {fmt.Sprintf("%d", page.ID)},
		"format":  {"json"},
	}, &info)
	if err == nil {
		for _, p := range info.Query.Pages {
			page.URL = p.FullURL
		}
	}
	if page.URL == "" {
		page.URL = "https://en.wikipedia.org/?curid=" + fmt.Sprintf("%d", page.ID)
	}
	return page, nil
}

// Fetch downloads the rendered article HTML and converts it to plain text
// with section headings preserved.
func (m *MediaWiki) Fetch(ctx context.Context, page *Page) (*Article, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var env parseEnvelope
	err := m.get(ctx, url.Values{
		"action":        {"parse"},
		"pageid":        {fmt.Sprintf("%d", page.ID)},
		"prop":          {"text|sections"},
		"format":        {"json"},
		"formatversion": {"2"},
	}, &env)
	if err != nil {
		return nil, err
	}
	if env.Error != nil {
		if env.Error.Code == "nosuchpageid" || env.Error.Code == "missingtitle" {
			return nil, fmt.Errorf("fetching page %d: %w", page.ID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetching page %d: %s: %w", page.ID, env.Error.Info, ErrUnavailable)
	}

	text, err := HTMLToText(env.Parse.Text)
	if err != nil {
		return nil, fmt.Errorf("converting page %d: %w", page.ID, err)
	}
	title := env.Parse.Title
	if title == "" {
		title = page.Title
	}
	return &Article{Title: title, URL: page.URL, Text: text}, nil
}

func (m *MediaWiki) get(ctx context.Context, params url.Values, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", m.userAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %v: %w", m.endpoint, err, ErrUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("reading response: %v: %w", err, ErrUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("status %d from %s: %w", resp.StatusCode, m.endpoint, ErrUnavailable)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
