package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/lzy234/dataprocessing/model"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"Nancy Pelosi", "nancy-pelosi"},
		{"Jean--Luc  O'Brien", "jean-luc-obrien"},
		{"  Mitch McConnell  ", "mitch-mcconnell"},
		{"A.B. Smith Jr.", "a-b-smith-jr"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Slug(tc.in); got != tc.out {
			t.Errorf("Slug(%q): got %q, want %q", tc.in, got, tc.out)
		}
	}
}

func testEntities() *model.Entities {
	return &model.Entities{
		People: []*model.Person{
			{
				ID: "P001", Name: "Nancy Pelosi", LocalName: "南希·佩洛西",
				DateOfBirth: "1940-03-26", Gender: "female",
				CurrentRole: "Speaker Emerita (D-CA)",
				OrganizationID: "O001", PartyID: "PTY001",
				Education: "Trinity College", CareerHistory: "Elected 1987.",
				Bio: "A politician.",
				Sources: []model.Citation{{SourceName: "Wikipedia", SourceURL: "https://example.org", Reliability: "high"}},
			},
		},
		Organizations: []*model.Organization{
			{ID: "O001", Name: "U.S. House of Representatives", SectorID: "SEC001", Description: "Lower chamber"},
		},
		Parties: []*model.Party{
			{ID: "PTY001", Name: "Democratic Party", Abbreviation: "D", ColorHex: "#0015BC"},
		},
		Sectors: []*model.Sector{
			{ID: "SEC001", Name: "Government - Legislative", Category: "gov", Description: "Legislatures"},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWriteCSVs(t *testing.T) {
	dir := t.TempDir()
	if err := WriteCSVs(testEntities(), dir); err != nil {
		t.Fatalf("write: %v", err)
	}

	people := readCSV(t, filepath.Join(dir, "people.csv"))
	if len(people) != 2 {
		t.Fatalf("people rows: %d", len(people))
	}
	if people[0][0] != "id" || people[0][2] != "ChineseName" || people[0][12] != "slug" {
		t.Errorf("people header: %v", people[0])
	}
	row := people[1]
	if row[0] != "P001" || row[1] != "Nancy Pelosi" || row[2] != "南希·佩洛西" {
		t.Errorf("people row: %v", row)
	}
	if row[6] != "O001" || row[7] != "PTY001" {
		t.Errorf("references: org=%q party=%q", row[6], row[7])
	}
	if row[12] != "nancy-pelosi" {
		t.Errorf("slug: %q", row[12])
	}

	orgRows := readCSV(t, filepath.Join(dir, "organizations.csv"))
	if orgRows[1][0] != "O001" || orgRows[1][3] != "SEC001" {
		t.Errorf("org row: %v", orgRows[1])
	}

	partyRows := readCSV(t, filepath.Join(dir, "parties.csv"))
	if partyRows[1][2] != "D" || partyRows[1][3] != "#0015BC" {
		t.Errorf("party row: %v", partyRows[1])
	}

	sectorRows := readCSV(t, filepath.Join(dir, "sectors.csv"))
	if sectorRows[1][1] != "Government - Legislative" || sectorRows[1][2] != "gov" {
		t.Errorf("sector row: %v", sectorRows[1])
	}
}

func TestSourcesJSON_RawWins(t *testing.T) {
	p := &model.Person{
		Sources:    []model.Citation{{SourceName: "Wikipedia"}},
		SourcesRaw: `[{"sourceName":"Archived","sourceUrl":"","reliability":"low"}]`,
	}
	if got := sourcesJSON(p); got != p.SourcesRaw {
		t.Errorf("got %q", got)
	}

	p.SourcesRaw = ""
	got := sourcesJSON(p)
	if got == "" || got == p.SourcesRaw {
		t.Errorf("expected marshalled sources, got %q", got)
	}

	if got := sourcesJSON(&model.Person{}); got != "" {
		t.Errorf("expected empty for no sources, got %q", got)
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.xlsx")
	if err := WriteXLSX(testEntities(), path); err != nil {
		t.Fatalf("write: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("empty workbook")
	}
}
