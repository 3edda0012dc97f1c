// Package render writes pipeline outputs to a terminal or a file: go-pretty
// tables, a lipgloss bar chart, and JSON, YAML or CSV documents.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/greenberg/engine"
	"github.com/spektr-org/greenberg/rules"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
)

// DefaultBarWidth is the widest bar drawn by BarChart, in cells.
const DefaultBarWidth = 40

// ============================================================================
// DOCUMENTS
// ============================================================================

// JSON writes v as indented JSON.
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as a YAML document.
func YAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// CSV writes a table's header and rows. The summary row is not written.
func CSV(w io.Writer, data *engine.TableData) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(data.Columns))
	for i, c := range data.Columns {
		header[i] = c.Key
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(data.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// ============================================================================
// TERMINAL
// ============================================================================

// Table renders TableData with go-pretty. Numeric columns are right-aligned
// and the summary, if any, becomes the footer.
func Table(w io.Writer, data *engine.TableData) error {
	if data == nil {
		return nil
	}
	if len(data.Rows) == 0 {
		if data.Title != "" {
			_, _ = fmt.Fprintln(w, data.Title)
		}
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if data.Title != "" {
		t.SetTitle(data.Title)
	}

	header := make(table.Row, len(data.Columns))
	configs := make([]table.ColumnConfig, 0, len(data.Columns))
	for i, c := range data.Columns {
		header[i] = c.Label
		if c.Align == "right" {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight, AlignFooter: text.AlignRight})
		}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for _, r := range data.Rows {
		row := make(table.Row, len(r))
		for i, cell := range r {
			row[i] = cell
		}
		t.AppendRow(row)
	}

	if data.Summary != nil {
		footer := make(table.Row, len(data.Columns))
		for i, c := range data.Columns {
			footer[i] = data.Summary.Values[c.Key]
		}
		footer[0] = data.Summary.Label
		t.AppendFooter(footer)
	}

	t.Render()
	return nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

// BarChart draws the first series of a chart as horizontal bars.
// width <= 0 uses DefaultBarWidth.
func BarChart(w io.Writer, chart *engine.ChartConfig, width int) error {
	if chart == nil || len(chart.Series) == 0 {
		return nil
	}
	if width <= 0 {
		width = DefaultBarWidth
	}
	series := chart.Series[0]
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(series.Color))

	labelWidth := 0
	maxValue := 0.0
	for _, p := range series.Data {
		if lw := lipgloss.Width(p.Label); lw > labelWidth {
			labelWidth = lw
		}
		if p.Value > maxValue {
			maxValue = p.Value
		}
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(chart.Title))
	sb.WriteString("\n")
	for _, p := range series.Data {
		n := 0
		if maxValue > 0 && p.Value > 0 {
			n = int(math.Round(p.Value / maxValue * float64(width)))
			if n == 0 {
				n = 1
			}
		}
		label := labelStyle.Width(labelWidth).Render(p.Label)
		sb.WriteString(fmt.Sprintf("%s │%s %s%s\n", label, bar.Render(strings.Repeat("█", n)), formatValue(p.Value), hoverSuffix(p)))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func hoverSuffix(p engine.ChartPoint) string {
	if len(p.Hover) == 0 {
		return ""
	}
	var parts []string
	if n, ok := p.Hover[engine.ColNLanguages]; ok {
		parts = append(parts, fmt.Sprintf("of %s", formatValue(n)))
	}
	if r, ok := p.Hover[engine.ColViolationRate]; ok {
		parts = append(parts, engine.FormatPercent(r))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return engine.FormatInt(int(v))
	}
	return fmt.Sprintf("%.2f", v)
}

// ============================================================================
// COMPOSITES
// ============================================================================

// Result writes one rule run in the chosen format. Table output shows the
// headline, the macro-area summary, an optional family summary, coverage
// and the bar chart. CSV output is the joined language table.
func Result(w io.Writer, res *engine.Result, format Format) error {
	switch format {
	case FormatJSON:
		return JSON(w, res)
	case FormatYAML:
		return YAML(w, res)
	case FormatCSV:
		return CSV(w, engine.BuildTable("", res.GeoView()))
	}

	_, _ = fmt.Fprintln(w, engine.BuildText(res).Sentence)
	if err := Table(w, engine.BuildSummaryTable(res.RuleID+" by macro-area", res.MacroSummary, engine.ColMacroArea)); err != nil {
		return err
	}
	if len(res.FamilySummary) > 0 {
		if err := Table(w, engine.BuildSummaryTable(res.RuleID+" by family", res.FamilySummary, engine.ColFamily)); err != nil {
			return err
		}
	}
	if err := Table(w, engine.BuildCoverageTable("Coverage", res.Coverage)); err != nil {
		return err
	}
	if len(res.MacroSummary) == 0 {
		return nil
	}
	chart, err := engine.BuildBarChart(res.SummaryView(), engine.DefaultBarOptions(res.RuleID))
	if err != nil {
		return err
	}
	return BarChart(w, chart, DefaultBarWidth)
}

// Results writes several runs. JSON and YAML emit a single list; table and
// CSV write each run in turn.
func Results(w io.Writer, results []*engine.Result, format Format) error {
	switch format {
	case FormatJSON:
		return JSON(w, results)
	case FormatYAML:
		return YAML(w, results)
	}
	for i, res := range results {
		if i > 0 && format == FormatTable {
			_, _ = fmt.Fprintln(w)
		}
		if err := Result(w, res, format); err != nil {
			return err
		}
	}
	return nil
}

// Rules lists registered rules.
func Rules(w io.Writer, rs []rules.Rule, format Format) error {
	switch format {
	case FormatJSON:
		return JSON(w, rs)
	case FormatYAML:
		return YAML(w, rs)
	}

	data := &engine.TableData{
		Columns: []engine.Column{
			{Key: "id", Label: "ID", Type: "text", Align: "left"},
			{Key: "antecedent", Label: "If", Type: "text", Align: "left"},
			{Key: "consequent", Label: "Then", Type: "text", Align: "left"},
			{Key: "features", Label: "Features", Type: "number", Align: "right"},
		},
	}
	for _, r := range rs {
		data.Rows = append(data.Rows, []string{r.ID, r.Antecedent, r.Consequent, fmt.Sprintf("%d", len(r.Features))})
	}
	if format == FormatCSV {
		return CSV(w, data)
	}
	return Table(w, data)
}
