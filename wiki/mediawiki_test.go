package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("list") == "search":
			if strings.Contains(q.Get("srsearch"), "Nobody") {
				fmt.Fprint(w, `{"query":{"search":[]}}`)
				return
			}
			fmt.Fprint(w, `{"query":{"search":[{"pageid":12345,"title":"Jane Doe"}]}}`)
		case q.Get("prop") == "info":
			fmt.Fprint(w, `{"query":{"pages":{"12345":{"fullurl":"https://en.wikipedia.org/wiki/Jane_Doe"}}}}`)
		case q.Get("action") == "parse":
			if q.Get("pageid") != "12345" {
				fmt.Fprint(w, `{"error":{"code":"nosuchpageid","info":"no such page"}}`)
				return
			}
			fmt.Fprint(w, `{"parse":{"title":"Jane Doe","text":"<p>Jane Doe is a politician.</p><h2>Career</h2><p>Served in office.</p>"}}`)
		default:
			http.Error(w, "unexpected request", http.StatusBadRequest)
		}
	}))
}

func TestMediaWiki_SearchAndFetch(t *testing.T) {
	srv := newTestAPI(t)
	defer srv.Close()
	mw := NewMediaWiki(WithEndpoint(srv.URL), WithHTTPClient(srv.Client()))

	page, err := mw.Search(context.Background(), "Jane Doe")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.ID != 12345 || page.Title != "Jane Doe" {
		t.Errorf("page: %+v", page)
	}
	if page.URL != "https://en.wikipedia.org/wiki/Jane_Doe" {
		t.Errorf("url: %q", page.URL)
	}

	art, err := mw.Fetch(context.Background(), page)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(art.Text, "Jane Doe is a politician.") {
		t.Errorf("text: %q", art.Text)
	}
	if !strings.Contains(art.Text, "== Career ==") {
		t.Errorf("heading not converted: %q", art.Text)
	}
}

func TestMediaWiki_SearchNotFound(t *testing.T) {
	srv := newTestAPI(t)
	defer srv.Close()
	mw := NewMediaWiki(WithEndpoint(srv.URL), WithHTTPClient(srv.Client()))

	if _, err := mw.Search(context.Background(), "Nobody Real"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMediaWiki_FetchMissingPage(t *testing.T) {
	srv := newTestAPI(t)
	defer srv.Close()
	mw := NewMediaWiki(WithEndpoint(srv.URL), WithHTTPClient(srv.Client()))

	_, err := mw.Fetch(context.Background(), &Page{ID: 999})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMediaWiki_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	mw := NewMediaWiki(WithEndpoint(srv.URL), WithHTTPClient(srv.Client()))

	_, err := mw.Search(context.Background(), "Jane Doe")
	if !IsTransient(err) {
		t.Errorf("expected a transient error, got %v", err)
	}
}
