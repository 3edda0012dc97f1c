package engine

import (
	"fmt"
	"math"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from pipeline tables
// ============================================================================
// All functions operate on RecordView. Column discovery uses the view's
// registered keys: dimensions first, then measures.
// ============================================================================

// BuildTable produces a TableData listing every row of a view.
func BuildTable(title string, view RecordView) *TableData {
	dimKeys := view.DimensionKeys()
	mesKeys := view.MeasureKeys()

	columns := make([]Column, 0, len(dimKeys)+len(mesKeys))
	for _, key := range dimKeys {
		columns = append(columns, Column{Key: key, Label: LabelForColumn(key), Type: "text", Align: "left"})
	}
	for _, key := range mesKeys {
		typ := "number"
		if key == ColViolationRate {
			typ = "percent"
		}
		columns = append(columns, Column{Key: key, Label: LabelForColumn(key), Type: typ, Align: "right"})
	}

	rows := make([][]string, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		row := make([]string, 0, len(columns))
		for _, key := range dimKeys {
			row = append(row, view.Dimension(i, key))
		}
		for _, key := range mesKeys {
			row = append(row, formatMeasure(view.Measure(i, key)))
		}
		rows = append(rows, row)
	}

	return &TableData{Title: title, Columns: columns, Rows: rows}
}

// BuildSummaryTable renders an area summary with a totals row. dimension
// names the group column ("macro_area", "family").
func BuildSummaryTable(title string, summary []AreaSummary, dimension string) *TableData {
	data := BuildTable(title, GroupSummaryView(summary, dimension))

	var langs, violations int
	for _, s := range summary {
		langs += s.NLanguages
		violations += s.NViolations
	}
	rate := math.NaN()
	if langs > 0 {
		rate = float64(violations) / float64(langs)
	}

	data.Summary = &Summary{
		Label: fmt.Sprintf("Total (%d groups)", len(summary)),
		Values: map[string]string{
			ColNLanguages:    FormatInt(langs),
			ColNViolations:   FormatInt(violations),
			ColViolationRate: formatMeasure(rate),
		},
	}
	return data
}

// BuildCoverageTable renders the coverage report as metric/value rows,
// going through BuildTable like every other table.
func BuildCoverageTable(title string, c Coverage) *TableData {
	metrics := []struct {
		name  string
		value string
	}{
		{"Total languages", FormatInt(c.TotalLanguages)},
		{"Testable languages", FormatInt(c.TestableLanguages)},
		{"Testable fraction", FormatPercent(c.TestableFraction)},
		{"Mappable languages", FormatInt(c.MappableLanguages)},
		{"Geo join fraction", FormatPercent(c.GeoJoinFraction)},
	}
	records := make([]SliceRecord, 0, len(metrics))
	for _, m := range metrics {
		records = append(records, SliceRecord{Dimensions: map[string]string{
			"metric": m.name,
			"value":  m.value,
		}})
	}

	data := BuildTable(title, NewSliceView(records))
	for i := range data.Columns {
		if data.Columns[i].Key == "value" {
			data.Columns[i].Align = "right"
		}
	}
	return data
}

func formatMeasure(v float64) string {
	switch {
	case math.IsNaN(v):
		return "n/a"
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return fmt.Sprintf("%d", int64(v))
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
