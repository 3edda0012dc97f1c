package features

// ============================================================================
// NORMALIZER — Projects a feature table down to one rule's columns
// ============================================================================
// Requested columns the table lacks are omitted here. Deciding whether that
// is fatal belongs to the pipeline runner.
// ============================================================================

// Record is a normalized language row: lang_code plus requested features.
type Record struct {
	LangCode string `json:"lang_code" yaml:"lang_code"`
	Features Row    `json:"features" yaml:"features"`
}

// Normalize returns one Record per language, in table order, restricted to
// the required columns present in the table. The table is not modified.
func Normalize(t *Table, required []string) []Record {
	if t == nil {
		return nil
	}

	keep := ProjectedColumns(t, required)

	out := make([]Record, 0, t.Len())
	for _, code := range t.codes {
		src := t.rows[code]
		row := make(Row, len(keep))
		for _, c := range keep {
			row[c] = src[c]
		}
		out = append(out, Record{LangCode: code, Features: row})
	}
	return out
}

// ProjectedColumns returns the required columns that Normalize keeps, in order.
func ProjectedColumns(t *Table, required []string) []string {
	var cols []string
	seen := make(map[string]bool)
	for _, c := range required {
		if c == LangCodeColumn || seen[c] || t == nil || !t.HasColumn(c) {
			continue
		}
		seen[c] = true
		cols = append(cols, c)
	}
	return cols
}

// MissingColumns lists required columns absent from the projection, in request order.
func MissingColumns(t *Table, required []string) []string {
	present := make(map[string]bool)
	for _, c := range ProjectedColumns(t, required) {
		present[c] = true
	}
	var missing []string
	seen := make(map[string]bool)
	for _, c := range required {
		if c == LangCodeColumn || present[c] || seen[c] {
			continue
		}
		seen[c] = true
		missing = append(missing, c)
	}
	return missing
}
