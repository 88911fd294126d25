package orgs

import (
	"context"
	"strings"
	"testing"

	"github.com/lzy234/dataprocessing/llm"
	"github.com/lzy234/dataprocessing/model"
	"github.com/lzy234/dataprocessing/store"
)

type stubProvider struct {
	calls      int
	content    string
	fail       error
	lastPrompt string
}

func (s *stubProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	s.calls++
	s.lastPrompt = req.Prompt
	if s.fail != nil {
		return nil, s.fail
	}
	return &llm.Response{Content: s.content}, nil
}

func orgNamed(name string) *model.Organization {
	return &model.Organization{Name: name, SectorName: "Government - Other"}
}

func TestDedup_SingleOrgNoCall(t *testing.T) {
	provider := &stubProvider{}
	d := NewDeduplicator(provider, store.NewMemory(), nil, "test", nil)

	in := []*model.Organization{orgNamed("U.S. Senate")}
	out, mapping, err := d.Dedup(context.Background(), in)
	if err != nil {
		t.Fatalf("dedup: %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("expected no calls for a single org, got %d", provider.calls)
	}
	if len(out) != 1 || mapping["U.S. Senate"] != "U.S. Senate" {
		t.Errorf("out=%v mapping=%v", out, mapping)
	}
}

func TestDedup_MergesVariants(t *testing.T) {
	provider := &stubProvider{content: `{"duplicateGroups":[{"canonicalName":"U.S. Senate","variants":["U.S. Senate","United States Senate"]}]}`}
	d := NewDeduplicator(provider, store.NewMemory(), nil, "test", nil)

	in := []*model.Organization{
		orgNamed("U.S. Senate"),
		orgNamed("United States Senate"),
		orgNamed("Brookings Institution"),
	}
	out, mapping, err := d.Dedup(context.Background(), in)
	if err != nil {
		t.Fatalf("dedup: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 canonical orgs, got %d", len(out))
	}
	if mapping["United States Senate"] != "U.S. Senate" {
		t.Errorf("variant mapping: %v", mapping)
	}
	// Totality: every input name maps to something.
	for _, o := range in {
		if mapping[o.Name] == "" {
			t.Errorf("name %q has no mapping", o.Name)
		}
	}
	if mapping["Brookings Institution"] != "Brookings Institution" {
		t.Errorf("untouched name should self-map: %v", mapping)
	}
}

func TestDedup_FailureFallsBackToIdentity(t *testing.T) {
	provider := &stubProvider{fail: llm.ErrRequestFailed}
	d := NewDeduplicator(provider, store.NewMemory(), nil, "test", nil)

	in := []*model.Organization{orgNamed("A"), orgNamed("B")}
	out, mapping, err := d.Dedup(context.Background(), in)
	if err != nil {
		t.Fatalf("dedup should degrade, got %v", err)
	}
	if len(out) != 2 || mapping["A"] != "A" || mapping["B"] != "B" {
		t.Errorf("expected identity fallback, out=%d mapping=%v", len(out), mapping)
	}
}

func TestDedup_ResultCached(t *testing.T) {
	cache := store.NewMemory()
	provider := &stubProvider{content: `{"duplicateGroups":[]}`}
	d := NewDeduplicator(provider, cache, nil, "test", nil)

	in := []*model.Organization{orgNamed("A"), orgNamed("B")}
	if _, _, err := d.Dedup(context.Background(), in); err != nil {
		t.Fatalf("first dedup: %v", err)
	}
	if _, _, err := d.Dedup(context.Background(), in); err != nil {
		t.Fatalf("second dedup: %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("expected 1 call, got %d", provider.calls)
	}
}

func TestHierarchy_SetsAcceptedParent(t *testing.T) {
	provider := &stubProvider{content: `{"hasParent":true,"parentOrganization":"U.S. Senate","reasoning":"it is a senate committee"}`}
	h := NewHierarchy(provider, store.NewMemory(), nil, "test", nil)

	orgList := []*model.Organization{orgNamed("Committee on Armed Services")}
	articles := map[string]string{
		"Jane Doe": "She chairs the Committee on Armed Services, a standing committee of the U.S. Senate.",
	}
	h.ResolveAll(context.Background(), orgList, articles)
	if orgList[0].ParentName != "U.S. Senate" {
		t.Errorf("parent: got %q", orgList[0].ParentName)
	}
}

func TestHierarchy_PromptCarriesGovernanceGuidelines(t *testing.T) {
	provider := &stubProvider{content: `{"hasParent":false,"parentOrganization":"","reasoning":""}`}
	h := NewHierarchy(provider, store.NewMemory(), nil, "test", nil)

	h.ResolveAll(context.Background(), []*model.Organization{orgNamed("Federal Bureau of Investigation")}, nil)
	if provider.calls != 1 {
		t.Fatalf("expected one call, got %d", provider.calls)
	}
	for _, want := range []string{
		"federal agency or department belongs to its national government",
		"committee or subcommittee belongs to its chamber",
		"chamber of a legislature has no parent",
		"top-level government entity has no parent",
		"private company, think tank, or media outlet has no parent",
	} {
		if !strings.Contains(provider.lastPrompt, want) {
			t.Errorf("prompt missing guideline %q", want)
		}
	}
}

func TestHierarchy_SkipsExistingAndUncertain(t *testing.T) {
	provider := &stubProvider{content: `{"hasParent":false,"parentOrganization":"","reasoning":"unclear"}`}
	h := NewHierarchy(provider, store.NewMemory(), nil, "test", nil)

	withParent := orgNamed("House Committee")
	withParent.ParentName = "U.S. House of Representatives"
	uncertain := orgNamed("Mystery Group")

	h.ResolveAll(context.Background(), []*model.Organization{withParent, uncertain}, nil)
	if provider.calls != 1 {
		t.Errorf("org with a parent should not trigger a call, got %d calls", provider.calls)
	}
	if uncertain.ParentName != "" {
		t.Errorf("uncertain answer must leave parent empty, got %q", uncertain.ParentName)
	}
}

func TestHierarchy_RejectsSelfParent(t *testing.T) {
	if got := acceptedParent(parentAnswer{HasParent: true, ParentOrganization: "u.s. senate"}, "U.S. Senate"); got != "" {
		t.Errorf("self-referential parent accepted: %q", got)
	}
}

func TestCollectExcerpts_Truncates(t *testing.T) {
	long := strings.Repeat("filler ", 200) + "the Target Org appears here " + strings.Repeat("more ", 200)
	out := collectExcerpts("Target Org", map[string]string{"Doc": long})
	if !strings.Contains(out, "Target Org") {
		t.Errorf("excerpt misses the mention: %q", out)
	}
	if len(out) > 600 {
		t.Errorf("excerpt too long: %d", len(out))
	}
}

func TestCollectExcerpts_NoMention(t *testing.T) {
	out := collectExcerpts("Target Org", map[string]string{"Doc": "nothing relevant"})
	if !strings.Contains(out, "no article text") {
		t.Errorf("got %q", out)
	}
}
