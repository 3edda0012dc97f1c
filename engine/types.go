// Package engine runs a rule over a feature table and turns the outcome into
// joined, aggregated and render-ready tables.
package engine

import (
	"encoding/json"
	"math"

	"github.com/spektr-org/greenberg/features"
	"github.com/spektr-org/greenberg/geo"
	"github.com/spektr-org/greenberg/rules"
)

// ============================================================================
// ENGINE TYPES — Pipeline tables
// ============================================================================
// Every table here is derived once from the feature table and the geo
// reference table and never mutated afterwards.
// ============================================================================

// Column names used when tables are exposed as RecordViews.
const (
	ColLangCode      = "lang_code"
	ColRuleID        = "rule_id"
	ColFollowsRule   = "follows_rule"
	ColViolatesRule  = "violates_rule"
	ColLatitude      = "latitude"
	ColLongitude     = "longitude"
	ColMacroArea     = "macro_area"
	ColFamily        = "family"
	ColLanguageName  = "language_name"
	ColNLanguages    = "n_languages"
	ColNViolations   = "n_violations"
	ColViolationRate = "violation_rate"
)

// ============================================================================
// ROWS
// ============================================================================

// EvaluatedRow is a testable language with its 0/1 verdict flags.
// ViolatesRule is always 1 - FollowsRule.
type EvaluatedRow struct {
	LangCode     string       `json:"lang_code" yaml:"lang_code"`
	RuleID       string       `json:"rule_id" yaml:"rule_id"`
	FollowsRule  int          `json:"follows_rule" yaml:"follows_rule"`
	ViolatesRule int          `json:"violates_rule" yaml:"violates_rule"`
	Features     features.Row `json:"features,omitempty" yaml:"features,omitempty"`
}

// Verdict converts the flags back to a rules.Verdict.
func (r EvaluatedRow) Verdict() rules.Verdict {
	if r.ViolatesRule == 1 {
		return rules.Violates
	}
	return rules.Follows
}

// GeoRow is an EvaluatedRow joined with its geo reference record.
type GeoRow struct {
	EvaluatedRow `yaml:",inline"`
	Latitude     float64 `json:"latitude" yaml:"latitude"`
	Longitude    float64 `json:"longitude" yaml:"longitude"`
	MacroArea    string  `json:"macro_area" yaml:"macro_area"`
	Family       string  `json:"family" yaml:"family"`
	LanguageName string  `json:"language_name" yaml:"language_name"`
}

func newGeoRow(e EvaluatedRow, g geo.Record) GeoRow {
	return GeoRow{
		EvaluatedRow: e,
		Latitude:     g.Latitude,
		Longitude:    g.Longitude,
		MacroArea:    g.MacroArea,
		Family:       g.Family,
		LanguageName: g.LanguageName,
	}
}

// AreaSummary is one group of the aggregated violation table.
type AreaSummary struct {
	Key           string  `json:"key" yaml:"key"`
	NLanguages    int     `json:"n_languages" yaml:"n_languages"`
	NViolations   int     `json:"n_violations" yaml:"n_violations"`
	ViolationRate float64 `json:"violation_rate" yaml:"violation_rate"`
}

// ============================================================================
// COVERAGE
// ============================================================================

// Coverage reports how much of the feature table reached each stage.
// Fractions are NaN when their denominator is zero.
type Coverage struct {
	TotalLanguages    int     `json:"total_languages" yaml:"total_languages"`
	TestableLanguages int     `json:"testable_languages" yaml:"testable_languages"`
	TestableFraction  float64 `json:"testable_fraction" yaml:"testable_fraction"`
	MappableLanguages int     `json:"mappable_languages" yaml:"mappable_languages"`
	GeoJoinFraction   float64 `json:"geo_join_fraction" yaml:"geo_join_fraction"`
}

// MarshalJSON writes NaN fractions as null.
func (c Coverage) MarshalJSON() ([]byte, error) {
	type wire struct {
		TotalLanguages    int      `json:"total_languages"`
		TestableLanguages int      `json:"testable_languages"`
		TestableFraction  *float64 `json:"testable_fraction"`
		MappableLanguages int      `json:"mappable_languages"`
		GeoJoinFraction   *float64 `json:"geo_join_fraction"`
	}
	return json.Marshal(wire{
		TotalLanguages:    c.TotalLanguages,
		TestableLanguages: c.TestableLanguages,
		TestableFraction:  nanToNil(c.TestableFraction),
		MappableLanguages: c.MappableLanguages,
		GeoJoinFraction:   nanToNil(c.GeoJoinFraction),
	})
}

func nanToNil(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

// ============================================================================
// RESULT
// ============================================================================

// Result holds the five pipeline tables for one rule.
type Result struct {
	RunID         string            `json:"run_id" yaml:"run_id"`
	Rule          rules.Rule        `json:"rule" yaml:"rule"`
	RuleID        string            `json:"rule_id" yaml:"rule_id"`
	Normalized    []features.Record `json:"normalized" yaml:"normalized"`
	Evaluated     []EvaluatedRow    `json:"evaluated" yaml:"evaluated"`
	GeoJoined     []GeoRow          `json:"geo_joined" yaml:"geo_joined"`
	MacroSummary  []AreaSummary     `json:"macro_summary" yaml:"macro_summary"`
	FamilySummary []AreaSummary     `json:"family_summary,omitempty" yaml:"family_summary,omitempty"`
	Coverage      Coverage          `json:"coverage" yaml:"coverage"`
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a bar chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
	BarGap     float64       `json:"barGap,omitempty"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single bar. Hover carries optional extra columns.
type ChartPoint struct {
	Label string             `json:"label"`
	Value float64            `json:"value"`
	Hover map[string]float64 `json:"hover,omitempty"`
}

// GeoMapConfig defines a world scatter map.
type GeoMapConfig struct {
	Title       string            `json:"title"`
	Projection  string            `json:"projection"`
	ColorBy     string            `json:"colorBy"`
	LegendTitle string            `json:"legendTitle"`
	ShowLand    bool              `json:"showLand"`
	ShowBorders bool              `json:"showCountries"`
	Colors      map[string]string `json:"colors"`
	Points      []GeoPoint        `json:"points"`
}

// GeoPoint is one language on the map.
type GeoPoint struct {
	Name      string            `json:"name,omitempty"`
	Latitude  float64           `json:"lat"`
	Longitude float64           `json:"lon"`
	Violation int               `json:"violation"`
	Hover     map[string]string `json:"hover,omitempty"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "percent"
	Align string `json:"align"` // "left", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}
