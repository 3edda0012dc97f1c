package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ============================================================================
// AGGREGATORS — Grouping and per-group violation statistics
// ============================================================================
// Grouping produces SubViews (index lists into the joined table). Each group
// is reduced to distinct languages, summed violations and mean violation.
// ============================================================================

// group is an intermediate grouping result.
type group struct {
	Key  string
	View RecordView
}

// Summarize groups joined rows by a dimension (macro_area, family, ...) and
// returns one AreaSummary per group, sorted by violations then languages,
// both descending.
func Summarize(rows []GeoRow, dimension string) []AreaSummary {
	return SummarizeView(GeoView(rows), dimension)
}

// SummarizeView is Summarize over any view carrying lang_code and violates_rule.
func SummarizeView(view RecordView, dimension string) []AreaSummary {
	if view.Len() == 0 {
		return []AreaSummary{}
	}

	groups := groupBySingle(view, dimension)
	out := make([]AreaSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, AreaSummary{
			Key:           g.Key,
			NLanguages:    DistinctCount(g.View, ColLangCode),
			NViolations:   int(SumMeasure(g.View, ColViolatesRule)),
			ViolationRate: AvgMeasure(g.View, ColViolatesRule),
		})
	}
	SortSummaries(out)
	return out
}

// ============================================================================
// GROUPING
// ============================================================================

func groupBySingle(view RecordView, dimension string) []group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, dimension)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]group, 0, len(order))
	for _, key := range order {
		groups = append(groups, group{
			Key:  key,
			View: newSubView(view, grouped[key]),
		})
	}
	return groups
}

// ============================================================================
// AGGREGATION
// ============================================================================

// SumMeasure sums a named measure across a view.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		total += view.Measure(i, measure)
	}
	return total
}

// AvgMeasure computes the mean of a named measure. Empty views yield NaN.
func AvgMeasure(view RecordView, measure string) float64 {
	n := view.Len()
	if n == 0 {
		return math.NaN()
	}
	return SumMeasure(view, measure) / float64(n)
}

// DistinctCount counts distinct non-empty values of a dimension.
func DistinctCount(view RecordView, dimension string) int {
	return len(UniqueValues(view, dimension))
}

// UniqueValues returns distinct non-empty values of a dimension in first-seen order.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// ============================================================================
// SORTING
// ============================================================================

// SortSummaries orders by NViolations desc, then NLanguages desc, then key.
func SortSummaries(s []AreaSummary) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].NViolations != s[j].NViolations {
			return s[i].NViolations > s[j].NViolations
		}
		if s[i].NLanguages != s[j].NLanguages {
			return s[i].NLanguages > s[j].NLanguages
		}
		return s[i].Key < s[j].Key
	})
}

// sortIndicesByMeasure returns view indices ordered by a measure, stable on ties.
func sortIndicesByMeasure(view RecordView, measure string, desc bool) []int {
	idx := make([]int, view.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := view.Measure(idx[a], measure), view.Measure(idx[b], measure)
		if desc {
			return va > vb
		}
		return va < vb
	})
	return idx
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// FormatPercent renders a fraction as a percentage; NaN renders as "n/a".
func FormatPercent(f float64) string {
	if math.IsNaN(f) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", f*100)
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LabelForColumn turns "n_violations" into "N Violations".
func LabelForColumn(column string) string {
	parts := strings.Split(column, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
