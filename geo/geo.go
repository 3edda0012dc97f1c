// Package geo loads the language reference table (coordinates, family and
// macro-area) that evaluated languages are joined against.
package geo

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// ============================================================================
// GEO REFERENCE — WALS languages.csv → []Record
// ============================================================================
// Rows without both coordinates are dropped at load. The first row for an
// ISO code wins so a join never multiplies an evaluated language.
// ============================================================================

// Source column names in the WALS languages table.
const (
	ColISO       = "ISO639P3code"
	ColLatitude  = "Latitude"
	ColLongitude = "Longitude"
	ColMacroarea = "Macroarea"
	ColFamily    = "Family"
	ColName      = "Name"
)

var requiredColumns = []string{ColISO, ColLatitude, ColLongitude, ColMacroarea, ColFamily, ColName}

// Record is one language's geographic metadata.
type Record struct {
	LangCode     string  `json:"lang_code" yaml:"lang_code"`
	Latitude     float64 `json:"latitude" yaml:"latitude"`
	Longitude    float64 `json:"longitude" yaml:"longitude"`
	MacroArea    string  `json:"macro_area" yaml:"macro_area"`
	Family       string  `json:"family" yaml:"family"`
	LanguageName string  `json:"language_name" yaml:"language_name"`
}

// Source supplies the reference table.
type Source interface {
	Load() ([]Record, error)
}

// ParseCSV parses a WALS-style languages table.
func ParseCSV(data []byte) ([]Record, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("geo table is missing columns: %s", strings.Join(missing, ", "))
	}

	cell := func(row []string, col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []Record
	seen := make(map[string]bool)
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		lat, latOK := parseCoord(cell(row, ColLatitude))
		lon, lonOK := parseCoord(cell(row, ColLongitude))
		if !latOK || !lonOK {
			continue
		}
		code := cell(row, ColISO)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true

		out = append(out, Record{
			LangCode:     code,
			Latitude:     lat,
			Longitude:    lon,
			MacroArea:    cell(row, ColMacroarea),
			Family:       cell(row, ColFamily),
			LanguageName: cell(row, ColName),
		})
	}
	return out, nil
}

func parseCoord(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ============================================================================
// SOURCES
// ============================================================================

// File reads the reference table from a CSV path on every Load.
type File string

// Load implements Source.
func (f File) Load() ([]Record, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("failed to read geo table: %w", err)
	}
	return ParseCSV(data)
}

// Static serves an in-memory table. Entries without a code are skipped and
// later duplicates are dropped, matching ParseCSV.
type Static []Record

// Load implements Source.
func (s Static) Load() ([]Record, error) {
	out := make([]Record, 0, len(s))
	seen := make(map[string]bool, len(s))
	for _, r := range s {
		if r.LangCode == "" || seen[r.LangCode] {
			continue
		}
		seen[r.LangCode] = true
		out = append(out, r)
	}
	return out, nil
}

// Cached loads its parent once and serves copies afterwards.
type Cached struct {
	parent  Source
	once    sync.Once
	records []Record
	err     error
}

// NewCached wraps a Source so repeated runs share a single load.
func NewCached(parent Source) *Cached {
	return &Cached{parent: parent}
}

// Load implements Source.
func (c *Cached) Load() ([]Record, error) {
	c.once.Do(func() {
		c.records, c.err = c.parent.Load()
	})
	if c.err != nil {
		return nil, c.err
	}
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out, nil
}

// Index maps language codes to records.
func Index(records []Record) map[string]Record {
	m := make(map[string]Record, len(records))
	for _, r := range records {
		if _, ok := m[r.LangCode]; !ok {
			m[r.LangCode] = r
		}
	}
	return m
}
