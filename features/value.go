// Package features holds the per-language feature table: tri-state values,
// Lang2Vec JSON and CSV loaders, and projection to a rule's columns.
package features

import (
	"fmt"
	"strconv"
	"strings"
)

// ============================================================================
// VALUE — Tri-state feature cell
// ============================================================================
// Lang2Vec marks missing data with "--". That marker becomes Unobserved here,
// before any comparison happens, and is never conflated with 0.
// ============================================================================

// MissingToken is the source convention for an unobserved cell.
const MissingToken = "--"

// Value is a single typological feature observation.
// The zero value is Unobserved, so lookups of absent columns read as unobserved.
type Value int8

const (
	Unobserved Value = iota
	NotAttested
	Attested
)

// String returns "1", "0" or "--".
func (v Value) String() string {
	switch v {
	case Attested:
		return "1"
	case NotAttested:
		return "0"
	default:
		return MissingToken
	}
}

// Observed reports whether the cell carries data.
func (v Value) Observed() bool { return v != Unobserved }

// MarshalJSON encodes Attested/NotAttested as 1/0 and Unobserved as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v {
	case Attested:
		return []byte("1"), nil
	case NotAttested:
		return []byte("0"), nil
	default:
		return []byte("null"), nil
	}
}

// MarshalYAML mirrors MarshalJSON.
func (v Value) MarshalYAML() (interface{}, error) {
	switch v {
	case Attested:
		return 1, nil
	case NotAttested:
		return 0, nil
	default:
		return nil, nil
	}
}

// ParseValue converts a raw cell into a Value.
// "--" and blanks are unobserved; numeric 1 is attested; any other number is not attested.
func ParseValue(raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == MissingToken || strings.EqualFold(raw, "nan") {
		return Unobserved, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Unobserved, fmt.Errorf("invalid feature value %q", raw)
	}
	return fromNumber(f), nil
}

// parseAny handles values decoded from JSON (float64, string or nil).
func parseAny(v interface{}) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Unobserved, nil
	case float64:
		return fromNumber(t), nil
	case bool:
		if t {
			return Attested, nil
		}
		return NotAttested, nil
	case string:
		return ParseValue(t)
	default:
		return Unobserved, fmt.Errorf("invalid feature value %v (%T)", v, v)
	}
}

func fromNumber(f float64) Value {
	if f == 1 {
		return Attested
	}
	return NotAttested
}

// Row is one language's feature vector. Missing keys read as Unobserved.
type Row map[string]Value

// Get returns the value of a feature, Unobserved if absent.
func (r Row) Get(feature string) Value { return r[feature] }

// Attested reports whether the feature is observed with value 1.
func (r Row) Attested(feature string) bool { return r[feature] == Attested }

// Observed reports whether the feature carries data.
func (r Row) Observed(feature string) bool { return r[feature].Observed() }

// AnyAttested is the OR of the given flags, unobserved counting as false.
func (r Row) AnyAttested(feats ...string) bool {
	for _, f := range feats {
		if r.Attested(f) {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
