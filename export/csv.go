// Package export writes the normalized entity set to its delivery
// formats: one CSV per entity table, plus a combined XLSX workbook.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lzy234/dataprocessing/model"
)

var (
	peopleColumns = []string{
		"id", "name", "ChineseName", "dateOfBirth", "gender", "currentRole",
		"organization", "party", "education", "careerHistory", "bio",
		"sources", "slug",
	}
	organizationColumns = []string{"id", "name", "parentOrganization", "sector", "description"}
	partyColumns        = []string{"id", "name", "abbreviation", "color"}
	sectorColumns       = []string{"id", "name", "category", "description"}
)

// WriteCSVs writes people.csv, organizations.csv, parties.csv, and
// sectors.csv into dir, creating it if needed.
func WriteCSVs(e *model.Entities, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	files := []struct {
		name string
		rows [][]string
	}{
		{"people.csv", peopleRows(e.People)},
		{"organizations.csv", organizationRows(e.Organizations)},
		{"parties.csv", partyRows(e.Parties)},
		{"sectors.csv", sectorRows(e.Sectors)},
	}
	for _, f := range files {
		if err := writeCSV(filepath.Join(dir, f.name), f.rows); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func peopleRows(people []*model.Person) [][]string {
	rows := [][]string{peopleColumns}
	for _, p := range people {
		rows = append(rows, []string{
			p.ID, p.Name, p.LocalName, p.DateOfBirth, p.Gender, p.CurrentRole,
			p.OrganizationID, p.PartyID, p.Education, p.CareerHistory, p.Bio,
			sourcesJSON(p), Slug(p.Name),
		})
	}
	return rows
}

func organizationRows(orgList []*model.Organization) [][]string {
	rows := [][]string{organizationColumns}
	for _, o := range orgList {
		rows = append(rows, []string{o.ID, o.Name, o.ParentID, o.SectorID, o.Description})
	}
	return rows
}

func partyRows(parties []*model.Party) [][]string {
	rows := [][]string{partyColumns}
	for _, p := range parties {
		rows = append(rows, []string{p.ID, p.Name, p.Abbreviation, p.ColorHex})
	}
	return rows
}

func sectorRows(sectors []*model.Sector) [][]string {
	rows := [][]string{sectorColumns}
	for _, s := range sectors {
		rows = append(rows, []string{s.ID, s.Name, s.Category, s.Description})
	}
	return rows
}

// sourcesJSON serializes a person's citations. A pre-serialized value from
// a reloaded artifact wins over the in-memory list.
func sourcesJSON(p *model.Person) string {
	if p.SourcesRaw != "" {
		return p.SourcesRaw
	}
	if len(p.Sources) == 0 {
		return ""
	}
	raw, err := json.Marshal(p.Sources)
	if err != nil {
		return ""
	}
	return string(raw)
}

var (
	slugApostrophe = regexp.MustCompile(`['’]`)
	slugInvalid    = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slug derives a URL-safe identifier from a name: apostrophes removed,
// anything non-alphanumeric collapsed into single hyphens.
func Slug(name string) string {
	s := strings.ToLower(name)
	s = slugApostrophe.ReplaceAllString(s, "")
	s = slugInvalid.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
