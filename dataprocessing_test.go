package dataprocessing

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lzy234/dataprocessing/llm"
	"github.com/lzy234/dataprocessing/wiki"
)

const testRoster = "\uFEFF序号,中文名,英文名,头衔,所属组织,核心影响力\n" +
	"1,南希·佩洛西,Nancy Pelosi,Speaker Emerita (D-CA),美国众议院 (U.S. House of Representatives),House leader\n" +
	"2,米奇·麦康奈尔,Mitch McConnell,Senate Minority Leader (R-KY),美国参议院 (U.S. Senate),Senate leader\n" +
	"3,巴里·布莱克,Barry Black,Senate Chaplain,美国参议院 (U.S. Senate),Chaplain\n"

// scriptedProvider answers every pipeline prompt deterministically.
type scriptedProvider struct{}

func (scriptedProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	var content string
	switch {
	case strings.Contains(req.Prompt, "These organization names"):
		content = `{"duplicateGroups":[]}`
	case strings.Contains(req.Prompt, "parent organization"):
		content = `{"hasParent":false,"parentOrganization":"","reasoning":"standalone"}`
	case strings.Contains(req.Prompt, "Determine the gender"):
		content = `{"gender":"female"}`
	case strings.Contains(req.Prompt, "Summarize the education"):
		content = `{"education":"A university degree."}`
	case strings.Contains(req.Prompt, "Summarize the career history"):
		content = `{"careerHistory":"Decades of public service."}`
	case strings.Contains(req.Prompt, "Write a biography"):
		content = `{"bio":"A public figure."}`
	case strings.Contains(req.Prompt, "Name the single organization"):
		switch {
		case strings.Contains(req.Prompt, "Nancy Pelosi"):
			content = `{"organization":"U.S. House of Representatives"}`
		default:
			content = `{"organization":"U.S. Senate"}`
		}
	default:
		content = `{}`
	}
	return &llm.Response{Content: content}, nil
}

// scriptedWiki serves one small article per subject.
type scriptedWiki struct{}

func (scriptedWiki) Search(ctx context.Context, name string) (*wiki.Page, error) {
	return &wiki.Page{ID: 1, Title: name, URL: "https://example.org/wiki/" + name}, nil
}

func (scriptedWiki) Fetch(ctx context.Context, page *wiki.Page) (*wiki.Article, error) {
	return &wiki.Article{
		Title: page.Title,
		URL:   page.URL,
		Text:  page.Title + " (born March 26, 1940) is an American public figure who graduated from Trinity College.",
	}, nil
}

func newTestPipeline(t *testing.T) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "roster.csv")
	if err := os.WriteFile(input, []byte(testRoster), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}

	cfg := DefaultConfig()
	cfg.InputPath = input
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.LLM.APIKey = "test-key"
	cfg.WikiCallsPerMinute = 1000
	cfg.LLMCallsPerMinute = 1000

	p, err := New(cfg, WithProvider(scriptedProvider{}), WithWikiSource(scriptedWiki{}))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p, cfg.OutputDir
}

func TestPipeline_EndToEnd(t *testing.T) {
	p, outDir := newTestPipeline(t)

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.People != 3 {
		t.Errorf("people: %d", summary.People)
	}
	if summary.Organizations != 2 {
		t.Errorf("organizations: %d", summary.Organizations)
	}
	if summary.Parties != 2 {
		t.Errorf("parties: %d", summary.Parties)
	}
	if summary.Sectors != 1 {
		t.Errorf("sectors: %d", summary.Sectors)
	}
	if !summary.Report.Passed {
		t.Errorf("validation failed: %v", summary.Report.Errors)
	}
	if len(summary.Report.Errors) != 0 {
		t.Errorf("reference errors: %v", summary.Report.Errors)
	}

	for _, name := range []string{
		"people.csv", "organizations.csv", "parties.csv", "sectors.csv",
		"entities.xlsx", "validation_report.json",
		filepath.Join("intermediate", "people_extracted.json"),
		filepath.Join("intermediate", "people_enhanced.json"),
		filepath.Join("intermediate", "entities.json"),
		filepath.Join("intermediate", "summary.json"),
	} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	people, err := os.ReadFile(filepath.Join(outDir, "people.csv"))
	if err != nil {
		t.Fatalf("read people.csv: %v", err)
	}
	for _, want := range []string{"P001", "P002", "P003", "Nancy Pelosi", "nancy-pelosi", "1940-03-26"} {
		if !strings.Contains(string(people), want) {
			t.Errorf("people.csv missing %q", want)
		}
	}
}

func TestPipeline_SkipWikipedia(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "roster.csv")
	if err := os.WriteFile(input, []byte(testRoster), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}

	cfg := DefaultConfig()
	cfg.InputPath = input
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.SkipWikipedia = true

	p, err := New(cfg)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	defer p.Close()

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.People != 3 || summary.WithBiography != 0 {
		t.Errorf("summary: %+v", summary)
	}
	if !summary.Report.Passed {
		t.Errorf("validation failed: %v", summary.Report.Errors)
	}
}

func TestNew_BuildsOneSharedLLMLimiter(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "roster.csv")
	if err := os.WriteFile(input, []byte(testRoster), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}

	cfg := DefaultConfig()
	cfg.InputPath = input
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.LLM.APIKey = "test-key"

	p, err := New(cfg, WithProvider(scriptedProvider{}), WithWikiSource(scriptedWiki{}))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	defer p.Close()
	if p.llmLimiter == nil {
		t.Fatal("expected a provider-backed pipeline to carry an admission limiter")
	}

	noProvider := DefaultConfig()
	noProvider.InputPath = input
	noProvider.OutputDir = filepath.Join(dir, "out2")
	noProvider.SkipWikipedia = true
	q, err := New(noProvider)
	if err != nil {
		t.Fatalf("new pipeline without provider: %v", err)
	}
	defer q.Close()
	if q.llmLimiter != nil {
		t.Error("limiter built without a provider to throttle")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config with key should validate: %v", err)
	}

	missingKey := DefaultConfig()
	if err := missingKey.Validate(); err == nil {
		t.Error("expected error without an API key")
	}

	noKeyNoWiki := DefaultConfig()
	noKeyNoWiki.SkipWikipedia = true
	if err := noKeyNoWiki.Validate(); err != nil {
		t.Errorf("skip-wikipedia run should not need a key: %v", err)
	}

	badBatch := DefaultConfig()
	badBatch.LLM.APIKey = "k"
	badBatch.BatchSize = 0
	if err := badBatch.Validate(); err == nil {
		t.Error("expected error for zero batch size")
	}

	noInput := DefaultConfig()
	noInput.LLM.APIKey = "k"
	noInput.InputPath = ""
	if err := noInput.Validate(); err == nil {
		t.Error("expected error for empty input path")
	}
}
