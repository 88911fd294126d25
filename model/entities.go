// Package model defines the entity types flowing through the pipeline:
// people from the source roster and the organizations, parties, and
// sectors derived from them.
package model

// Citation is a single source reference attached to an enriched field.
type Citation struct {
	SourceName  string `json:"sourceName"`
	SourceURL   string `json:"sourceUrl"`
	Reliability string `json:"reliability"` // high, medium, low
}

// Person is one individual from the source roster. Fields fill in as the
// record moves through the pipeline: raw CSV columns first, fetched and
// generated fields after enrichment, ID references after mapping.
type Person struct {
	// From the source CSV.
	SequenceIndex    int    `json:"sequenceIndex"`
	LocalName        string `json:"localName"`
	Name             string `json:"name"` // English name, cross-reference key
	CurrentRole      string `json:"currentRole"`
	OrganizationText string `json:"organizationText"` // raw free text, pre-recognition
	BioLocal         string `json:"bioLocal"`

	// Filled by enrichment.
	DateOfBirth      string     `json:"dateOfBirth,omitempty"` // YYYY-MM-DD
	Gender           string     `json:"gender,omitempty"`      // male, female, other
	Education        string     `json:"education,omitempty"`
	CareerHistory    string     `json:"careerHistory,omitempty"`
	Bio              string     `json:"bio,omitempty"`
	OrganizationName string     `json:"organizationName,omitempty"` // canonical after dedup
	Sources          []Citation `json:"sources,omitempty"`

	// SourcesRaw holds a pre-serialized sources value when the record was
	// reloaded from an intermediate artifact. When set it wins over Sources
	// at export time and must parse as a citation list.
	SourcesRaw string `json:"sourcesRaw,omitempty"`

	// Assigned by the relationship mapper.
	ID             string `json:"id,omitempty"`             // P001...
	OrganizationID string `json:"organizationId,omitempty"` // O001..., "" = none
	PartyID        string `json:"partyId,omitempty"`        // PTY001..., "" = none
}

// Organization is a named institution referenced by people.
type Organization struct {
	Name        string `json:"name"` // canonical after dedup
	LocalName   string `json:"localName,omitempty"`
	SectorName  string `json:"sectorName,omitempty"`
	ParentName  string `json:"parentName,omitempty"`
	Description string `json:"description,omitempty"`

	ID       string `json:"id,omitempty"`       // O001...
	SectorID string `json:"sectorId,omitempty"` // SEC001..., "" = none
	ParentID string `json:"parentId,omitempty"` // O001..., "" = none
}

// Party is a political party recognized from role text.
type Party struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	ColorHex     string `json:"color"` // #RRGGBB

	ID string `json:"id,omitempty"` // PTY001...
}

// Sector is an industry/domain classification for organizations.
type Sector struct {
	Name        string `json:"name"`
	Category    string `json:"category"` // short code: gov, finance, ...
	Description string `json:"description,omitempty"`

	ID string `json:"id,omitempty"` // SEC001...
}

// Entities bundles the four tables as they move through normalization.
type Entities struct {
	People        []*Person
	Organizations []*Organization
	Parties       []*Party
	Sectors       []*Sector
}

// FieldStat reports completeness of one tracked person field.
type FieldStat struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Statistics aggregates data-quality metrics over the final entity set.
type Statistics struct {
	TotalPeople        int                  `json:"total_people"`
	TotalOrganizations int                  `json:"total_organizations"`
	TotalParties       int                  `json:"total_parties"`
	TotalSectors       int                  `json:"total_sectors"`
	FieldCompleteness  map[string]FieldStat `json:"field_completeness"`
	QualityScore       float64              `json:"overall_quality_score"`
}

// Report is the outcome of schema validation. Warnings never fail it.
type Report struct {
	Errors     []string   `json:"errors"`
	Warnings   []string   `json:"warnings"`
	Statistics Statistics `json:"statistics"`
	Passed     bool       `json:"passed"`
}
