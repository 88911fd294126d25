// Package mapper assigns stable identifiers to normalized entities and
// wires the references between them.
package mapper

import (
	"fmt"
	"sort"

	"github.com/lzy234/dataprocessing/model"
	"github.com/lzy234/dataprocessing/recognize"
)

// ApplyOrgMapping rewrites every person's organization name through the
// dedup mapping so references target canonical names before IDs are
// assigned.
func ApplyOrgMapping(people []*model.Person, mapping map[string]string) {
	for _, p := range people {
		if canonical, ok := mapping[p.OrganizationName]; ok {
			p.OrganizationName = canonical
		}
	}
}

// AssignIDs gives every entity its identifier. People are numbered in
// input order; organizations, parties, and sectors are numbered in
// lexicographic name order so runs over the same data produce the same
// IDs.
func AssignIDs(e *model.Entities) {
	for i, p := range e.People {
		p.ID = fmt.Sprintf("P%03d", i+1)
	}

	sort.Slice(e.Organizations, func(i, j int) bool { return e.Organizations[i].Name < e.Organizations[j].Name })
	for i, o := range e.Organizations {
		o.ID = fmt.Sprintf("O%03d", i+1)
	}

	sort.Slice(e.Parties, func(i, j int) bool { return e.Parties[i].Name < e.Parties[j].Name })
	for i, p := range e.Parties {
		p.ID = fmt.Sprintf("PTY%03d", i+1)
	}

	sort.Slice(e.Sectors, func(i, j int) bool { return e.Sectors[i].Name < e.Sectors[j].Name })
	for i, s := range e.Sectors {
		s.ID = fmt.Sprintf("SEC%03d", i+1)
	}
}

// MapRelationships resolves name references into IDs: a person's
// organization and party, an organization's sector and parent. Party
// membership is derived from the person's role title. Unresolvable
// references are left empty for validation to report.
func MapRelationships(e *model.Entities, rec *recognize.Recognizer) {
	orgByName := make(map[string]*model.Organization, len(e.Organizations))
	for _, o := range e.Organizations {
		orgByName[o.Name] = o
	}
	partyByAbbr := make(map[string]*model.Party, len(e.Parties))
	for _, p := range e.Parties {
		partyByAbbr[p.Abbreviation] = p
	}
	sectorByName := make(map[string]*model.Sector, len(e.Sectors))
	for _, s := range e.Sectors {
		sectorByName[s.Name] = s
	}

	for _, p := range e.People {
		if org, ok := orgByName[p.OrganizationName]; ok {
			p.OrganizationID = org.ID
		}
		if party := rec.ExtractParty(p.CurrentRole); party != nil {
			if registered, ok := partyByAbbr[party.Abbreviation]; ok {
				p.PartyID = registered.ID
			}
		}
	}

	for _, o := range e.Organizations {
		if s, ok := sectorByName[o.SectorName]; ok {
			o.SectorID = s.ID
		}
		if o.ParentName != "" {
			if parent, ok := orgByName[o.ParentName]; ok && parent.ID != o.ID {
				o.ParentID = parent.ID
			}
		}
	}
}

// ValidateReferences reports dangling references and parent cycles as
// human-readable problems.
func ValidateReferences(e *model.Entities) []string {
	var problems []string

	orgIDs := make(map[string]*model.Organization, len(e.Organizations))
	for _, o := range e.Organizations {
		orgIDs[o.ID] = o
	}
	partyIDs := make(map[string]bool, len(e.Parties))
	for _, p := range e.Parties {
		partyIDs[p.ID] = true
	}
	sectorIDs := make(map[string]bool, len(e.Sectors))
	for _, s := range e.Sectors {
		sectorIDs[s.ID] = true
	}

	for _, p := range e.People {
		if p.OrganizationID != "" && orgIDs[p.OrganizationID] == nil {
			problems = append(problems, fmt.Sprintf("person %s references missing organization %s", p.ID, p.OrganizationID))
		}
		if p.PartyID != "" && !partyIDs[p.PartyID] {
			problems = append(problems, fmt.Sprintf("person %s references missing party %s", p.ID, p.PartyID))
		}
	}

	for _, o := range e.Organizations {
		if o.SectorID != "" && !sectorIDs[o.SectorID] {
			problems = append(problems, fmt.Sprintf("organization %s references missing sector %s", o.ID, o.SectorID))
		}
		if o.ParentID != "" && orgIDs[o.ParentID] == nil {
			problems = append(problems, fmt.Sprintf("organization %s references missing parent %s", o.ID, o.ParentID))
		}
	}

	for _, o := range e.Organizations {
		if cycle := findCycle(o, orgIDs); cycle != "" {
			problems = append(problems, cycle)
		}
	}
	return problems
}

// findCycle walks the parent chain from one organization with a per-walk
// visited set.
func findCycle(start *model.Organization, orgIDs map[string]*model.Organization) string {
	visited := map[string]bool{start.ID: true}
	cur := start
	for cur.ParentID != "" {
		next := orgIDs[cur.ParentID]
		if next == nil {
			return ""
		}
		if visited[next.ID] {
			return fmt.Sprintf("organization %s is part of a parent cycle", start.ID)
		}
		visited[next.ID] = true
		cur = next
	}
	return ""
}
