package engine

import (
	"fmt"
	"strconv"
)

// ============================================================================
// CHART BUILDER — Bar chart and geo scatter configs from computed tables
// ============================================================================
// Builders only present. They compute nothing beyond ordering and check the
// columns they were asked to plot before touching any row.
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Verdict colors for the geo map, keyed by violation flag.
var violationColors = map[string]string{
	"0": "#10B981",
	"1": "#EF4444",
}

// summaryHoverColumns are added to bars when the table has them.
var summaryHoverColumns = []string{ColNLanguages, ColViolationRate}

// BarOptions selects what a bar chart plots.
type BarOptions struct {
	RuleID      string
	MacroColumn string // default macro_area
	ValueColumn string // default n_violations
	Unsorted    bool   // keep input order instead of largest first
	Filters     Filters
}

// DefaultBarOptions plots n_violations per macro_area, largest first.
func DefaultBarOptions(ruleID string) BarOptions {
	return BarOptions{
		RuleID:      ruleID,
		MacroColumn: ColMacroArea,
		ValueColumn: ColNViolations,
	}
}

// BuildBarChart produces a bar chart from a summary table. Bars are sorted by
// value, largest first, unless opts.Unsorted is set.
func BuildBarChart(view RecordView, opts BarOptions) (*ChartConfig, error) {
	if opts.MacroColumn == "" {
		opts.MacroColumn = ColMacroArea
	}
	if opts.ValueColumn == "" {
		opts.ValueColumn = ColNViolations
	}

	if !HasDimension(view, opts.MacroColumn) {
		return nil, &PresentationError{Chart: "bar chart", Missing: []string{fmt.Sprintf("macro column %q", opts.MacroColumn)}}
	}
	if !HasMeasure(view, opts.ValueColumn) {
		return nil, &PresentationError{Chart: "bar chart", Missing: []string{fmt.Sprintf("value column %q", opts.ValueColumn)}}
	}

	view = ApplyFilters(view, opts.Filters)
	if !opts.Unsorted {
		view = newSubView(view, sortIndicesByMeasure(view, opts.ValueColumn, true))
	}

	var hover []string
	for _, col := range summaryHoverColumns {
		if col != opts.ValueColumn && HasMeasure(view, col) {
			hover = append(hover, col)
		}
	}

	points := make([]ChartPoint, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		p := ChartPoint{
			Label: view.Dimension(i, opts.MacroColumn),
			Value: RoundTo2(view.Measure(i, opts.ValueColumn)),
		}
		if len(hover) > 0 {
			p.Hover = make(map[string]float64, len(hover))
			for _, col := range hover {
				p.Hover[col] = RoundTo2(view.Measure(i, col))
			}
		}
		points = append(points, p)
	}

	return &ChartConfig{
		ChartType:  "bar",
		Title:      fmt.Sprintf("%s: %s by macro-area", opts.RuleID, opts.ValueColumn),
		XAxis:      "Macro-area",
		YAxis:      LabelForColumn(opts.ValueColumn),
		Series:     []ChartSeries{{Name: LabelForColumn(opts.ValueColumn), Data: points, Color: defaultColors[0]}},
		Colors:     assignColors(1),
		ShowLegend: false,
		ShowGrid:   true,
		BarGap:     0.15,
	}, nil
}

// GeoMapOptions selects what a geo scatter plots.
type GeoMapOptions struct {
	RuleID          string
	LatColumn       string   // default latitude
	LonColumn       string   // default longitude
	ViolationColumn string   // default violates_rule
	HoverNameColumn string   // default language_name; ignored when absent
	BaseHover       []string // shared hover columns, kept when present
	ExtraHover      []string // rule-specific hover columns, kept when present
	Projection      string   // default "natural earth"
	Filters         Filters
}

// DefaultGeoMapOptions plots the joined table with the usual columns.
func DefaultGeoMapOptions(ruleID string) GeoMapOptions {
	return GeoMapOptions{
		RuleID:          ruleID,
		LatColumn:       ColLatitude,
		LonColumn:       ColLongitude,
		ViolationColumn: ColViolatesRule,
		HoverNameColumn: ColLanguageName,
		BaseHover:       []string{ColLangCode, ColFamily, ColMacroArea},
		Projection:      "natural earth",
	}
}

// BuildGeoMap produces one point per row at its coordinates, colored by the
// binary violation flag.
func BuildGeoMap(view RecordView, opts GeoMapOptions) (*GeoMapConfig, error) {
	if opts.LatColumn == "" {
		opts.LatColumn = ColLatitude
	}
	if opts.LonColumn == "" {
		opts.LonColumn = ColLongitude
	}
	if opts.ViolationColumn == "" {
		opts.ViolationColumn = ColViolatesRule
	}
	if opts.Projection == "" {
		opts.Projection = "natural earth"
	}

	var missing []string
	for _, col := range []string{opts.LatColumn, opts.LonColumn, opts.ViolationColumn} {
		if !HasMeasure(view, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &PresentationError{Chart: "geo map", Missing: missing}
	}

	var hover []string
	seen := make(map[string]bool)
	for _, col := range append(append([]string{}, opts.BaseHover...), opts.ExtraHover...) {
		if !seen[col] && HasColumn(view, col) {
			seen[col] = true
			hover = append(hover, col)
		}
	}
	nameCol := ""
	if opts.HoverNameColumn != "" && HasDimension(view, opts.HoverNameColumn) {
		nameCol = opts.HoverNameColumn
	}

	view = ApplyFilters(view, opts.Filters)
	points := make([]GeoPoint, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		p := GeoPoint{
			Latitude:  view.Measure(i, opts.LatColumn),
			Longitude: view.Measure(i, opts.LonColumn),
			Violation: int(view.Measure(i, opts.ViolationColumn)),
		}
		if nameCol != "" {
			p.Name = view.Dimension(i, nameCol)
		}
		if len(hover) > 0 {
			p.Hover = make(map[string]string, len(hover))
			for _, col := range hover {
				p.Hover[col] = cellString(view, i, col)
			}
		}
		points = append(points, p)
	}

	return &GeoMapConfig{
		Title:       fmt.Sprintf("%s: testable languages (colored by violation)", opts.RuleID),
		Projection:  opts.Projection,
		ColorBy:     opts.ViolationColumn,
		LegendTitle: "Violation",
		ShowLand:    true,
		ShowBorders: true,
		Colors:      violationColors,
		Points:      points,
	}, nil
}

func cellString(view RecordView, i int, col string) string {
	if HasDimension(view, col) {
		return view.Dimension(i, col)
	}
	return strconv.FormatFloat(view.Measure(i, col), 'f', -1, 64)
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
