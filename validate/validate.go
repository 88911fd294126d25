// Package validate checks the normalized entity set against the output
// schema and computes data-quality statistics. Errors fail validation,
// warnings are advisory.
package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/lzy234/dataprocessing/mapper"
	"github.com/lzy234/dataprocessing/model"
)

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

var validGenders = map[string]bool{"male": true, "female": true, "other": true}

// Run validates all entities and returns the full report.
func Run(e *model.Entities) *model.Report {
	r := &model.Report{}

	for _, p := range e.People {
		checkPerson(r, p)
	}
	for _, o := range e.Organizations {
		checkOrganization(r, o)
	}
	for _, p := range e.Parties {
		checkParty(r, p)
	}
	for _, s := range e.Sectors {
		checkSector(r, s)
	}
	r.Errors = append(r.Errors, mapper.ValidateReferences(e)...)

	r.Statistics = computeStatistics(e)
	r.Passed = len(r.Errors) == 0
	return r
}

func checkPerson(r *model.Report, p *model.Person) {
	label := p.ID
	if label == "" {
		label = p.Name
	}
	if p.Name == "" {
		r.Errors = append(r.Errors, fmt.Sprintf("person %s: missing name", label))
	}
	if p.CurrentRole == "" {
		r.Errors = append(r.Errors, fmt.Sprintf("person %s: missing current role", label))
	}
	if p.DateOfBirth != "" && !validDate(p.DateOfBirth) {
		r.Errors = append(r.Errors, fmt.Sprintf("person %s: date of birth %q is not YYYY-MM-DD", label, p.DateOfBirth))
	}
	if p.Gender != "" && !validGenders[p.Gender] {
		r.Warnings = append(r.Warnings, fmt.Sprintf("person %s: unexpected gender %q", label, p.Gender))
	}
	if p.SourcesRaw != "" {
		var sources []model.Citation
		if err := json.Unmarshal([]byte(p.SourcesRaw), &sources); err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("person %s: sources are not valid JSON", label))
		}
	}
}

func checkOrganization(r *model.Report, o *model.Organization) {
	label := o.ID
	if label == "" {
		label = o.Name
	}
	if o.Name == "" {
		r.Errors = append(r.Errors, fmt.Sprintf("organization %s: missing name", label))
	}
	if o.SectorName == "" && o.SectorID == "" {
		r.Warnings = append(r.Warnings, fmt.Sprintf("organization %s: no sector", label))
	}
}

func checkParty(r *model.Report, p *model.Party) {
	label := p.ID
	if label == "" {
		label = p.Name
	}
	if p.Name == "" {
		r.Errors = append(r.Errors, fmt.Sprintf("party %s: missing name", label))
	}
	if p.Abbreviation == "" {
		r.Errors = append(r.Errors, fmt.Sprintf("party %s: missing abbreviation", label))
	}
	if p.ColorHex != "" && !colorPattern.MatchString(p.ColorHex) {
		r.Errors = append(r.Errors, fmt.Sprintf("party %s: color %q is not #RRGGBB", label, p.ColorHex))
	}
}

func checkSector(r *model.Report, s *model.Sector) {
	label := s.ID
	if label == "" {
		label = s.Name
	}
	if s.Name == "" {
		r.Errors = append(r.Errors, fmt.Sprintf("sector %s: missing name", label))
	}
	if s.Category == "" {
		r.Errors = append(r.Errors, fmt.Sprintf("sector %s: missing category", label))
	}
}

// validDate requires the exact YYYY-MM-DD shape and a real calendar date.
func validDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// Person fields tracked for completeness reporting.
var trackedFields = []struct {
	name   string
	filled func(*model.Person) bool
}{
	{"name", func(p *model.Person) bool { return p.Name != "" }},
	{"localName", func(p *model.Person) bool { return p.LocalName != "" }},
	{"dateOfBirth", func(p *model.Person) bool { return p.DateOfBirth != "" }},
	{"gender", func(p *model.Person) bool { return p.Gender != "" }},
	{"currentRole", func(p *model.Person) bool { return p.CurrentRole != "" }},
	{"organization", func(p *model.Person) bool { return p.OrganizationName != "" }},
	{"party", func(p *model.Person) bool { return p.PartyID != "" }},
	{"education", func(p *model.Person) bool { return p.Education != "" }},
	{"careerHistory", func(p *model.Person) bool { return p.CareerHistory != "" }},
	{"bio", func(p *model.Person) bool { return p.Bio != "" }},
}

// Fields whose mean completeness is the overall quality score.
var qualityFields = []string{"name", "dateOfBirth", "education", "careerHistory", "bio"}

func computeStatistics(e *model.Entities) model.Statistics {
	stats := model.Statistics{
		TotalPeople:        len(e.People),
		TotalOrganizations: len(e.Organizations),
		TotalParties:       len(e.Parties),
		TotalSectors:       len(e.Sectors),
		FieldCompleteness:  make(map[string]model.FieldStat, len(trackedFields)),
	}
	for _, f := range trackedFields {
		count := 0
		for _, p := range e.People {
			if f.filled(p) {
				count++
			}
		}
		pct := 0.0
		if len(e.People) > 0 {
			pct = float64(count) / float64(len(e.People)) * 100
		}
		stats.FieldCompleteness[f.name] = model.FieldStat{Count: count, Percentage: pct}
	}

	var sum float64
	for _, name := range qualityFields {
		sum += stats.FieldCompleteness[name].Percentage
	}
	stats.QualityScore = sum / float64(len(qualityFields))
	return stats
}

// SaveReport writes the report as indented JSON.
func SaveReport(r *model.Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
