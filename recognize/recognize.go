// Package recognize performs deterministic entity recognition over roster
// rows: organization extraction from the roster's organization column,
// sector classification by keyword, parent inference for common US
// government bodies, and party extraction from role titles.
package recognize

import (
	"regexp"
	"strings"

	"github.com/lzy234/dataprocessing/model"
)

var (
	// Matches "中文名 (English Name)" style organization columns where the
	// canonical name sits in parentheses after a local-language alias.
	parenName = regexp.MustCompile(`^(.*?)\s*[（(]([^）)]+)[）)]\s*$`)

	// Matches a single-letter party code with an optional state suffix,
	// e.g. "(D-CA)" or "(R)".
	partyCode = regexp.MustCompile(`(?i)\(([A-Za-z])(?:-[A-Z]{2})?\)`)
)

// Recognizer extracts organizations, sectors, parents, and parties from
// roster rows. It keeps registries of everything seen so each entity is
// created exactly once.
type Recognizer struct {
	sectorTable SectorTable
	partyTable  PartyTable

	orgs    map[string]*model.Organization
	parties map[string]*model.Party
	sectors map[string]*model.Sector
}

// New builds a Recognizer over the given tables. Zero-value tables are
// accepted and classify every organization under the default sector.
func New(st SectorTable, pt PartyTable) *Recognizer {
	return &Recognizer{
		sectorTable: st,
		partyTable:  pt,
		orgs:        make(map[string]*model.Organization),
		parties:     make(map[string]*model.Party),
		sectors:     make(map[string]*model.Sector),
	}
}

// NewDefault builds a Recognizer over the built-in tables.
func NewDefault() *Recognizer {
	return New(DefaultSectorTable(), DefaultPartyTable())
}

// ExtractOrganization parses the roster's organization column. Columns of
// the form "本地名 (Canonical Name)" yield the parenthesized text as the
// canonical name and the text outside the parentheses as the local alias;
// anything else is taken verbatim as the canonical name. Empty input
// returns nil. The organization is registered so repeated mentions map to
// one record.
func (r *Recognizer) ExtractOrganization(raw string) *model.Organization {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	name := raw
	local := ""
	if m := parenName.FindStringSubmatch(raw); m != nil && strings.TrimSpace(m[2]) != "" {
		local = strings.TrimSpace(m[1])
		name = strings.TrimSpace(m[2])
	}

	if org, ok := r.orgs[name]; ok {
		if org.LocalName == "" && local != "" {
			org.LocalName = local
		}
		return org
	}

	sector := r.InferSector(name)
	org := &model.Organization{
		Name:        name,
		LocalName:   local,
		SectorName:  sector.Name,
		ParentName:  inferParent(name),
		Description: "Political organization: " + name,
	}
	r.orgs[name] = org
	return org
}

// InferSector classifies an organization name by case-insensitive keyword
// match, first matching sector wins. Unmatched names fall back to the
// default sector. Each distinct sector is registered once.
func (r *Recognizer) InferSector(orgName string) *model.Sector {
	lower := strings.ToLower(orgName)
	for _, def := range r.sectorTable.Sectors {
		for _, kw := range def.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return r.registerSector(def.Name, def.Category, def.Description)
			}
		}
	}
	return r.registerSector("Government - Other", "gov", "Miscellaneous government bodies")
}

func (r *Recognizer) registerSector(name, category, description string) *model.Sector {
	if s, ok := r.sectors[name]; ok {
		return s
	}
	s := &model.Sector{Name: name, Category: category, Description: description}
	r.sectors[name] = s
	return s
}

// ExtractParty looks for a single-letter party code in a role title and
// resolves it against the party table. It returns nil when no code is
// present or the code is not configured. Each distinct party is registered
// once.
func (r *Recognizer) ExtractParty(roleTitle string) *model.Party {
	m := partyCode.FindStringSubmatch(roleTitle)
	if m == nil {
		return nil
	}
	abbr := strings.ToUpper(m[1])
	if p, ok := r.parties[abbr]; ok {
		return p
	}
	for _, def := range r.partyTable.Parties {
		if strings.EqualFold(def.Abbreviation, abbr) {
			p := &model.Party{Name: def.Name, Abbreviation: strings.ToUpper(def.Abbreviation), ColorHex: def.Color}
			r.parties[abbr] = p
			return p
		}
	}
	return nil
}

// ProcessAll runs recognition over every person, filling OrganizationText
// derived fields, and returns nothing: results are read back through the
// registries.
func (r *Recognizer) ProcessAll(people []*model.Person) {
	for _, p := range people {
		if org := r.ExtractOrganization(p.OrganizationText); org != nil && p.OrganizationName == "" {
			p.OrganizationName = org.Name
		}
		r.ExtractParty(p.CurrentRole)
	}
}

// Organizations returns every organization registered so far.
func (r *Recognizer) Organizations() []*model.Organization {
	out := make([]*model.Organization, 0, len(r.orgs))
	for _, o := range r.orgs {
		out = append(out, o)
	}
	return out
}

// Parties returns every party registered so far.
func (r *Recognizer) Parties() []*model.Party {
	out := make([]*model.Party, 0, len(r.parties))
	for _, p := range r.parties {
		out = append(out, p)
	}
	return out
}

// Sectors returns every sector registered so far.
func (r *Recognizer) Sectors() []*model.Sector {
	out := make([]*model.Sector, 0, len(r.sectors))
	for _, s := range r.sectors {
		out = append(out, s)
	}
	return out
}

// inferParent guesses the parent body for well-known US government naming
// patterns. It returns "" when no pattern applies.
func inferParent(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "committee") && strings.Contains(lower, "senate"):
		return "U.S. Senate"
	case strings.Contains(lower, "committee") && (strings.Contains(lower, "house") || strings.Contains(lower, "congress")):
		return "U.S. House of Representatives"
	case strings.HasPrefix(lower, "department of") || strings.HasPrefix(lower, "u.s. department of"):
		return "U.S. Federal Government"
	}
	if strings.Contains(lower, "agency") || strings.Contains(lower, "bureau") ||
		strings.Contains(lower, "administration") || strings.Contains(lower, "commission") ||
		strings.Contains(lower, "board") {
		if strings.Contains(lower, "federal") || strings.HasPrefix(lower, "u.s.") || strings.HasPrefix(lower, "us ") {
			return "U.S. Federal Government"
		}
	}
	return ""
}
