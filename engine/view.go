package engine

// ============================================================================
// RECORD VIEW — Column access to pipeline tables
// ============================================================================
// Summaries and joined rows are typed structs. Presentation code reads them
// through this interface, which is also how it checks that the columns it
// needs exist.
//
// Implementations:
//   SliceView      — wraps []SliceRecord (small ad-hoc tables such as coverage)
//   DomainView[T]  — reads typed structs via accessor functions
//   SubView        — filtered or sorted subset (indices into parent)
// ============================================================================

// RecordView provides indexed access to a table of string dimensions and
// numeric measures.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Measure(index int, key string) float64
	DimensionKeys() []string
	MeasureKeys() []string
}

// HasDimension reports whether the view declares a dimension column.
func HasDimension(view RecordView, key string) bool {
	return contains(view.DimensionKeys(), key)
}

// HasMeasure reports whether the view declares a measure column.
func HasMeasure(view RecordView, key string) bool {
	return contains(view.MeasureKeys(), key)
}

// HasColumn reports whether key is a dimension or a measure.
func HasColumn(view RecordView, key string) bool {
	return HasDimension(view, key) || HasMeasure(view, key)
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// ============================================================================
// SLICE VIEW
// ============================================================================

// SliceRecord is an ad-hoc row with string dimensions and numeric measures.
type SliceRecord struct {
	Dimensions map[string]string  `json:"dimensions"`
	Measures   map[string]float64 `json:"measures"`
}

// SliceView wraps a []SliceRecord slice as a RecordView.
type SliceView struct {
	records []SliceRecord
	dimKeys []string
	mesKeys []string
}

// NewSliceView creates a RecordView from records. Column keys are collected
// in first-seen order, sorted within each record.
func NewSliceView(records []SliceRecord) RecordView {
	v := &SliceView{records: records}
	v.cacheKeys()
	return v
}

func (v *SliceView) cacheKeys() {
	dimSeen := make(map[string]bool)
	mesSeen := make(map[string]bool)
	for _, r := range v.records {
		for _, k := range sortedKeys(r.Dimensions) {
			if !dimSeen[k] {
				dimSeen[k] = true
				v.dimKeys = append(v.dimKeys, k)
			}
		}
		for _, k := range sortedKeys(r.Measures) {
			if !mesSeen[k] {
				mesSeen[k] = true
				v.mesKeys = append(v.mesKeys, k)
			}
		}
	}
}

func (v *SliceView) Len() int { return len(v.records) }

func (v *SliceView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.records) {
		return ""
	}
	return v.records[i].Dimensions[key]
}

func (v *SliceView) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.records) {
		return 0
	}
	return v.records[i].Measures[key]
}

func (v *SliceView) DimensionKeys() []string { return v.dimKeys }
func (v *SliceView) MeasureKeys() []string   { return v.mesKeys }

// ============================================================================
// SUB VIEW
// ============================================================================

// SubView is a subset of a parent RecordView held as indices.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Dimension(v.indices[i], key)
}

func (v *SubView) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.indices) {
		return 0
	}
	return v.parent.Measure(v.indices[i], key)
}

func (v *SubView) DimensionKeys() []string { return v.parent.DimensionKeys() }
func (v *SubView) MeasureKeys() []string   { return v.parent.MeasureKeys() }

// ============================================================================
// DOMAIN ADAPTER — Typed struct access
// ============================================================================
//
// Usage:
//
//	view := engine.NewDomainAdapter[GeoRow]().
//	    Dimension("macro_area", func(r GeoRow) string { return r.MacroArea }).
//	    Measure("violates_rule", func(r GeoRow) float64 { return float64(r.ViolatesRule) }).
//	    Bind(rows)
//
// ============================================================================

// DomainAdapter builds a RecordView from typed structs.
type DomainAdapter[T any] struct {
	dimOrder []string
	mesOrder []string
	dims     map[string]func(T) string
	meas     map[string]func(T) float64
}

// NewDomainAdapter creates a new adapter for type T.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{
		dims: make(map[string]func(T) string),
		meas: make(map[string]func(T) float64),
	}
}

// Dimension registers a dimension accessor.
func (a *DomainAdapter[T]) Dimension(key string, fn func(T) string) *DomainAdapter[T] {
	if _, exists := a.dims[key]; !exists {
		a.dimOrder = append(a.dimOrder, key)
	}
	a.dims[key] = fn
	return a
}

// Measure registers a measure accessor.
func (a *DomainAdapter[T]) Measure(key string, fn func(T) float64) *DomainAdapter[T] {
	if _, exists := a.meas[key]; !exists {
		a.mesOrder = append(a.mesOrder, key)
	}
	a.meas[key] = fn
	return a
}

// Bind creates a RecordView over data. The slice is referenced, not copied.
func (a *DomainAdapter[T]) Bind(data []T) RecordView {
	return &DomainView[T]{
		data:     data,
		dims:     a.dims,
		meas:     a.meas,
		dimKeys:  a.dimOrder,
		measKeys: a.mesOrder,
	}
}

// DomainView reads typed struct fields via registered accessor functions.
type DomainView[T any] struct {
	data     []T
	dims     map[string]func(T) string
	meas     map[string]func(T) float64
	dimKeys  []string
	measKeys []string
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.data) {
		return ""
	}
	if fn, ok := v.dims[key]; ok {
		return fn(v.data[i])
	}
	return ""
}

func (v *DomainView[T]) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.data) {
		return 0
	}
	if fn, ok := v.meas[key]; ok {
		return fn(v.data[i])
	}
	return 0
}

func (v *DomainView[T]) DimensionKeys() []string { return v.dimKeys }
func (v *DomainView[T]) MeasureKeys() []string   { return v.measKeys }

// ============================================================================
// PIPELINE TABLE VIEWS
// ============================================================================

func summaryAdapter(dimension string) *DomainAdapter[AreaSummary] {
	return NewDomainAdapter[AreaSummary]().
		Dimension(dimension, func(s AreaSummary) string { return s.Key }).
		Measure(ColNLanguages, func(s AreaSummary) float64 { return float64(s.NLanguages) }).
		Measure(ColNViolations, func(s AreaSummary) float64 { return float64(s.NViolations) }).
		Measure(ColViolationRate, func(s AreaSummary) float64 { return s.ViolationRate })
}

var geoRowAdapter = NewDomainAdapter[GeoRow]().
	Dimension(ColLangCode, func(r GeoRow) string { return r.LangCode }).
	Dimension(ColRuleID, func(r GeoRow) string { return r.RuleID }).
	Dimension(ColMacroArea, func(r GeoRow) string { return r.MacroArea }).
	Dimension(ColFamily, func(r GeoRow) string { return r.Family }).
	Dimension(ColLanguageName, func(r GeoRow) string { return r.LanguageName }).
	Measure(ColLatitude, func(r GeoRow) float64 { return r.Latitude }).
	Measure(ColLongitude, func(r GeoRow) float64 { return r.Longitude }).
	Measure(ColFollowsRule, func(r GeoRow) float64 { return float64(r.FollowsRule) }).
	Measure(ColViolatesRule, func(r GeoRow) float64 { return float64(r.ViolatesRule) })

// SummaryView exposes an area summary with columns macro_area, n_languages,
// n_violations and violation_rate.
func SummaryView(summary []AreaSummary) RecordView {
	return summaryAdapter(ColMacroArea).Bind(summary)
}

// GroupSummaryView is SummaryView with the group column named dimension
// (e.g. "family").
func GroupSummaryView(summary []AreaSummary, dimension string) RecordView {
	return summaryAdapter(dimension).Bind(summary)
}

// GeoView exposes joined rows with lang_code, rule_id, macro_area, family,
// language_name, latitude, longitude, follows_rule and violates_rule.
func GeoView(rows []GeoRow) RecordView {
	return geoRowAdapter.Bind(rows)
}

// SummaryView is the macro-area summary as a RecordView.
func (r *Result) SummaryView() RecordView { return SummaryView(r.MacroSummary) }

// GeoView is the joined table as a RecordView.
func (r *Result) GeoView() RecordView { return GeoView(r.GeoJoined) }

// GeoFeatureView is GeoView plus one dimension per feature column, rendered
// as the tri-state value name. Used for rule-specific map hover.
func GeoFeatureView(rows []GeoRow, columns []string) RecordView {
	adapter := NewDomainAdapter[GeoRow]()
	for _, key := range geoRowAdapter.dimOrder {
		adapter.Dimension(key, geoRowAdapter.dims[key])
	}
	for _, key := range geoRowAdapter.mesOrder {
		adapter.Measure(key, geoRowAdapter.meas[key])
	}
	for _, col := range columns {
		col := col
		adapter.Dimension(col, func(r GeoRow) string { return r.Features.Get(col).String() })
	}
	return adapter.Bind(rows)
}
