package recognize

import (
	"encoding/json"
	"fmt"
	"os"
)

// SectorDef maps name keywords to one sector classification.
type SectorDef struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// SectorTable is the configurable keyword-to-sector mapping.
type SectorTable struct {
	Sectors []SectorDef `json:"sectors"`
}

// PartyDef describes one recognizable political party.
type PartyDef struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Color        string `json:"color"`
}

// PartyTable is the configurable abbreviation-to-party mapping.
type PartyTable struct {
	Parties []PartyDef `json:"parties"`
}

// DefaultSectorTable returns the built-in sector classification used when
// no mapping file is configured.
func DefaultSectorTable() SectorTable {
	return SectorTable{Sectors: []SectorDef{
		{
			Name: "Government - Legislative", Category: "gov",
			Description: "Legislative branch bodies",
			Keywords:    []string{"senate", "house of representatives", "congress", "legislature"},
		},
		{
			Name: "Government - Executive", Category: "gov",
			Description: "Executive branch departments and offices",
			Keywords:    []string{"white house", "department of", "executive office", "cabinet"},
		},
		{
			Name: "Government - Judicial", Category: "gov",
			Description: "Courts and judicial bodies",
			Keywords:    []string{"court", "judicial", "justice"},
		},
		{
			Name: "Government - Intelligence", Category: "gov",
			Description: "Intelligence and security agencies",
			Keywords:    []string{"intelligence", "cia", "nsa", "fbi", "security agency"},
		},
		{
			Name: "Finance", Category: "finance",
			Description: "Banks, funds, and financial institutions",
			Keywords:    []string{"bank", "capital", "fund", "financial", "investment"},
		},
		{
			Name: "Media", Category: "media",
			Description: "News and media organizations",
			Keywords:    []string{"news", "media", "times", "post", "broadcasting"},
		},
		{
			Name: "Think Tank", Category: "research",
			Description: "Research institutions and policy organizations",
			Keywords:    []string{"institute", "institution", "foundation", "center for"},
		},
		{
			Name: "Technology", Category: "tech",
			Description: "Technology companies",
			Keywords:    []string{"technologies", "software", "tech"},
		},
	}}
}

// DefaultPartyTable returns the built-in party table.
func DefaultPartyTable() PartyTable {
	return PartyTable{Parties: []PartyDef{
		{Name: "Democratic Party", Abbreviation: "D", Color: "#0015BC"},
		{Name: "Republican Party", Abbreviation: "R", Color: "#E9141D"},
		{Name: "Independent", Abbreviation: "I", Color: "#808080"},
	}}
}

// LoadSectorTable reads a sector mapping file.
func LoadSectorTable(path string) (SectorTable, error) {
	var t SectorTable
	if err := loadJSON(path, &t); err != nil {
		return SectorTable{}, err
	}
	return t, nil
}

// LoadPartyTable reads a party mapping file.
func LoadPartyTable(path string) (PartyTable, error) {
	var t PartyTable
	if err := loadJSON(path, &t); err != nil {
		return PartyTable{}, err
	}
	return t, nil
}

func loadJSON(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}
