package features

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ============================================================================
// LOADERS — Lang2Vec JSON and CSV into a Table
// ============================================================================
// Callers read the bytes from wherever they live; these helpers only parse.
// ============================================================================

// Lang2VecHeaderKey holds the feature name list in a Lang2Vec dump.
const Lang2VecHeaderKey = "CODE"

// ParseLang2Vec parses a Lang2Vec feature dictionary:
//
//	{"CODE": ["S_SVO", ...], "eng": [1, "--", ...], ...}
//
// Language codes are sorted so the result does not depend on JSON key order.
func ParseLang2Vec(data []byte) (*Table, error) {
	var raw map[string][]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode Lang2Vec JSON: %w", err)
	}

	header, ok := raw[Lang2VecHeaderKey]
	if !ok {
		return nil, fmt.Errorf("Lang2Vec JSON has no %q entry", Lang2VecHeaderKey)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		name, ok := h.(string)
		if !ok {
			return nil, fmt.Errorf("feature name at position %d is not a string", i)
		}
		columns[i] = name
	}

	codes := make([]string, 0, len(raw))
	for code := range raw {
		if code != Lang2VecHeaderKey {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)

	t := NewTable(columns)
	for _, code := range codes {
		vals := raw[code]
		if len(vals) != len(columns) {
			return nil, fmt.Errorf("language %s: %d values for %d features", code, len(vals), len(columns))
		}
		row := make(Row, len(columns))
		for i, v := range vals {
			parsed, err := parseAny(v)
			if err != nil {
				return nil, fmt.Errorf("language %s, feature %s: %w", code, columns[i], err)
			}
			row[columns[i]] = parsed
		}
		if err := t.Add(code, row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ParseCSV parses a CSV feature table. The lang_code column is the key when
// present, otherwise the first column is.
func ParseCSV(data []byte) (*Table, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	keyIdx := 0
	for i, h := range headers {
		if h == LangCodeColumn {
			keyIdx = i
			break
		}
	}

	columns := make([]string, 0, len(headers)-1)
	for i, h := range headers {
		if i != keyIdx {
			columns = append(columns, h)
		}
	}

	t := NewTable(columns)
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		code := strings.TrimSpace(rec[keyIdx])
		row := make(Row, len(columns))
		for i, val := range rec {
			if i == keyIdx {
				continue
			}
			v, err := ParseValue(val)
			if err != nil {
				return nil, fmt.Errorf("line %d, language %s, feature %s: %w", line, code, headers[i], err)
			}
			row[headers[i]] = v
		}
		if err := t.Add(code, row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return t, nil
}

// LoadFile reads a feature table, choosing the parser by extension.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feature table: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseLang2Vec(data)
	case ".csv":
		return ParseCSV(data)
	default:
		return nil, fmt.Errorf("unsupported feature table format %q (want .json or .csv)", filepath.Ext(path))
	}
}
