package engine

import (
	"strings"
)

// ============================================================================
// FILTERS — Dimension-based row selection via RecordView
// ============================================================================
// Used to restrict charts to some macro-areas or families. Returns a SubView.
// ============================================================================

// Filters define which rows to include. Keys are dimension names, values the
// allowed values (case-insensitive). OR within a dimension, AND across them.
type Filters struct {
	Dimensions map[string][]string `json:"dimensions" yaml:"dimensions"`
}

// IsEmpty returns true if no filters are set.
func (f Filters) IsEmpty() bool {
	for _, vals := range f.Dimensions {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// ApplyFilters returns a view of rows matching all dimension filters.
// Empty filters return the original view.
func ApplyFilters(view RecordView, filters Filters) RecordView {
	if filters.IsEmpty() {
		return view
	}

	sets := make(map[string]map[string]bool)
	for dim, allowed := range filters.Dimensions {
		if len(allowed) > 0 {
			sets[dim] = toLowerSet(allowed)
		}
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for dim, set := range sets {
			if !set[strings.ToLower(view.Dimension(i, dim))] {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices)
}

func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(strings.TrimSpace(item))] = true
	}
	return set
}
