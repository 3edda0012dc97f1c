package features

import (
	"errors"
	"fmt"
)

// ============================================================================
// TABLE — Language code → feature row
// ============================================================================

// LangCodeColumn is the canonical key column name.
const LangCodeColumn = "lang_code"

// ErrDuplicateLanguage is returned when a language code appears twice.
var ErrDuplicateLanguage = errors.New("duplicate language code")

// Table is a feature table keyed by language code.
// Codes and columns keep their source order.
type Table struct {
	codes   []string
	columns []string
	rows    map[string]Row
}

// NewTable creates an empty table with the given feature columns.
func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{columns: cols, rows: make(map[string]Row)}
}

// Add appends a language row. The row is copied.
func (t *Table) Add(code string, row Row) error {
	if code == "" {
		return errors.New("empty language code")
	}
	if _, exists := t.rows[code]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateLanguage, code)
	}
	t.codes = append(t.codes, code)
	t.rows[code] = row.Clone()
	return nil
}

// Len returns the number of languages.
func (t *Table) Len() int { return len(t.codes) }

// Codes returns language codes in insertion order.
func (t *Table) Codes() []string {
	out := make([]string, len(t.codes))
	copy(out, t.codes)
	return out
}

// Columns returns feature column names in source order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the table declares a feature column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Row returns a copy of one language's features.
func (t *Table) Row(code string) (Row, bool) {
	r, ok := t.rows[code]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// FromRecords rebuilds a table from normalized records.
func FromRecords(records []Record, columns []string) (*Table, error) {
	t := NewTable(columns)
	for _, r := range records {
		if err := t.Add(r.LangCode, r.Features); err != nil {
			return nil, err
		}
	}
	return t, nil
}
