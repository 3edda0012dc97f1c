package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/greenberg/rules"
)

func TestSliceViewKeys(t *testing.T) {
	view := NewSliceView([]SliceRecord{
		{Dimensions: map[string]string{"b": "1", "a": "2"}, Measures: map[string]float64{"y": 1}},
		{Dimensions: map[string]string{"c": "3"}, Measures: map[string]float64{"x": 2}},
	})
	assert.Equal(t, []string{"a", "b", "c"}, view.DimensionKeys())
	assert.Equal(t, []string{"y", "x"}, view.MeasureKeys())
	assert.Equal(t, "", view.Dimension(5, "a"))
	assert.True(t, HasColumn(view, "x"))
	assert.False(t, HasMeasure(view, "a"))
}

func TestApplyFilters(t *testing.T) {
	res := runRule24(t)
	view := res.GeoView()

	assert.Same(t, view, ApplyFilters(view, Filters{}))

	eurasia := ApplyFilters(view, Filters{Dimensions: map[string][]string{ColMacroArea: {" EURASIA "}}})
	assert.Equal(t, 2, eurasia.Len())

	both := ApplyFilters(view, Filters{Dimensions: map[string][]string{
		ColMacroArea: {"eurasia"},
		ColFamily:    {"japonic"},
	}})
	require.Equal(t, 1, both.Len())
	assert.Equal(t, "jpn", both.Dimension(0, ColLangCode))
	assert.Equal(t, 1.0, both.Measure(0, ColViolatesRule))
}

func TestGeoFeatureView(t *testing.T) {
	res := runRule24(t)
	view := GeoFeatureView(res.GeoJoined, []string{rules.AdjAfter, "S_MISSING"})

	assert.True(t, HasDimension(view, ColLanguageName))
	assert.True(t, HasMeasure(view, ColLatitude))
	assert.True(t, HasDimension(view, rules.AdjAfter))
	assert.Equal(t, "0", view.Dimension(0, rules.AdjAfter))
	assert.Equal(t, "--", view.Dimension(0, "S_MISSING"))

	// the shared adapter is not modified
	assert.False(t, HasDimension(res.GeoView(), rules.AdjAfter))
}

func TestGroupSummaryView(t *testing.T) {
	view := GroupSummaryView([]AreaSummary{{Key: "Altaic", NLanguages: 2, NViolations: 1, ViolationRate: 0.5}}, ColFamily)
	assert.Equal(t, []string{ColFamily}, view.DimensionKeys())
	assert.Equal(t, "Altaic", view.Dimension(0, ColFamily))
	assert.Equal(t, 0.5, view.Measure(0, ColViolationRate))
}
