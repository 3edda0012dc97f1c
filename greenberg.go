// Package greenberg tests implicational word-order universals (Greenberg 1963)
// against a language feature table and locates violations geographically.
//
// Usage:
//
//	results, err := greenberg.Evaluate("lang2vec.json", "languages.csv", []string{"24"},
//	    engine.WithFamilySummary(),
//	)
//
// The pipeline normalizes the feature table to each rule's columns, drops
// languages the rule cannot be tested on, joins the rest with WALS geography
// and aggregates violations per macro-area. Presentation (tables, bar charts,
// geo maps) is built from the resulting tables by the engine and render
// packages. Nothing is persisted and no external service is called.
package greenberg

import (
	"github.com/spektr-org/greenberg/engine"
	"github.com/spektr-org/greenberg/features"
	"github.com/spektr-org/greenberg/geo"
	"github.com/spektr-org/greenberg/rules"
)

// Evaluate loads a feature table and a WALS languages file and runs the
// given registry rules. No ids runs every registered rule.
func Evaluate(featuresPath, geoPath string, ruleIDs []string, opts ...engine.Option) ([]*engine.Result, error) {
	selected := rules.All()
	if len(ruleIDs) > 0 {
		selected = make([]rules.Rule, 0, len(ruleIDs))
		for _, id := range ruleIDs {
			r, err := rules.Lookup(id)
			if err != nil {
				return nil, err
			}
			selected = append(selected, r)
		}
	}

	table, err := features.LoadFile(featuresPath)
	if err != nil {
		return nil, err
	}
	return engine.RunAll(table, geo.File(geoPath), selected, opts...)
}
