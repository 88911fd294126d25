// Package roster reads the source people list from CSV. The expected
// headers are Chinese (序号, 中文名, 英文名, 头衔, 所属组织, 核心影响力)
// with English fallbacks accepted for each column.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lzy234/dataprocessing/model"
)

// ErrNoRows reports a roster with headers but no data rows.
var ErrNoRows = errors.New("roster: no data rows")

// Column header aliases, checked case-insensitively for the English ones.
var headerAliases = map[string][]string{
	"sequence":     {"序号", "sequence", "index", "no"},
	"localName":    {"中文名", "chinese name", "local name", "chinesename", "localname"},
	"name":         {"英文名", "english name", "name", "englishname"},
	"role":         {"头衔", "title", "role", "current role"},
	"organization": {"所属组织", "organization", "affiliation", "org"},
	"bio":          {"核心影响力", "influence", "bio", "description"},
}

// Read loads the roster file.
func Read(path string) ([]*model.Person, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster: %w", err)
	}
	defer f.Close()
	people, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading roster %s: %w", path, err)
	}
	return people, nil
}

// Parse reads roster rows from r.
func Parse(r io.Reader) ([]*model.Person, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var people []*model.Person
	rowNum := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum+1, err)
		}
		rowNum++

		p := &model.Person{
			SequenceIndex:    atoiOr(field(row, cols["sequence"]), rowNum-1),
			LocalName:        field(row, cols["localName"]),
			Name:             field(row, cols["name"]),
			CurrentRole:      field(row, cols["role"]),
			OrganizationText: field(row, cols["organization"]),
			BioLocal:         field(row, cols["bio"]),
		}
		if p.Name == "" && p.LocalName == "" {
			continue
		}
		// The English name is the cross-reference key everywhere downstream.
		if p.Name == "" {
			p.Name = p.LocalName
		}
		people = append(people, p)
	}
	if len(people) == 0 {
		return nil, ErrNoRows
	}
	return people, nil
}

// resolveColumns maps logical columns to header positions. The name column
// is required; everything else degrades to empty fields.
func resolveColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(headerAliases))
	for key := range headerAliases {
		cols[key] = -1
	}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for key, aliases := range headerAliases {
			if cols[key] != -1 {
				continue
			}
			for _, alias := range aliases {
				if h == strings.ToLower(alias) {
					cols[key] = i
					break
				}
			}
		}
	}
	if cols["name"] == -1 && cols["localName"] == -1 {
		return nil, fmt.Errorf("no name column found in header %v", header)
	}
	return cols, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
