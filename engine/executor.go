package engine

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spektr-org/greenberg/features"
	"github.com/spektr-org/greenberg/geo"
	"github.com/spektr-org/greenberg/rules"
)

// ============================================================================
// EXECUTOR — Rule pipeline runner
// ============================================================================
// Pipeline:
//   1. Normalize the feature table to the rule's columns
//   2. Fail fast if any required column is absent
//   3. Evaluate every language, dropping NotTestable
//   4. Load the geo reference table and inner-join on lang_code
//   5. Aggregate by macro-area (and optionally family)
//   6. Report coverage
//
// Every step is deterministic; nothing is retried.
// ============================================================================

// Run evaluates a registry rule against a feature table.
func Run(table *features.Table, geoSource geo.Source, rule rules.Rule, opts ...Option) (*Result, error) {
	res, err := RunRule(table, geoSource, rule.ID, rule.Features, rule.Evaluate, opts...)
	if err != nil {
		return nil, err
	}
	res.Rule = rule
	return res, nil
}

// RunRule is the generic runner: any id, column list and evaluator.
func RunRule(
	table *features.Table,
	geoSource geo.Source,
	ruleID string,
	required []string,
	evaluate rules.Evaluator,
	opts ...Option,
) (*Result, error) {
	cfg := applyOptions(opts)
	log := cfg.Logger.With(zap.String("rule", ruleID))

	if table == nil {
		return nil, fmt.Errorf("rule %s: feature table is nil", ruleID)
	}
	if evaluate == nil {
		return nil, fmt.Errorf("rule %s: evaluator is nil", ruleID)
	}
	if geoSource == nil {
		return nil, fmt.Errorf("rule %s: geo source is nil", ruleID)
	}

	// 1. Normalize
	normalized := features.Normalize(table, required)

	// 2. Strict required-column check
	if missing := features.MissingColumns(table, required); len(missing) > 0 {
		log.Warn("required feature columns missing", zap.Strings("missing", missing))
		return nil, &ConfigError{RuleID: ruleID, Missing: missing}
	}
	log.Debug("normalized feature table",
		zap.Int("languages", len(normalized)),
		zap.Strings("columns", features.ProjectedColumns(table, required)))

	// 3. Evaluate
	label := cfg.RuleIDPrefix + ruleID
	evaluated := Evaluate(normalized, label, evaluate)
	if !cfg.KeepFeatures {
		for i := range evaluated {
			evaluated[i].Features = nil
		}
	}
	log.Debug("evaluated languages",
		zap.Int("testable", len(evaluated)),
		zap.Int("not_testable", len(normalized)-len(evaluated)))

	// 4. Geo join
	refs, err := geoSource.Load()
	if err != nil {
		return nil, fmt.Errorf("rule %s: load geo reference: %w", ruleID, err)
	}
	joined := AttachGeo(evaluated, refs)
	log.Debug("joined geo metadata",
		zap.Int("reference_rows", len(refs)),
		zap.Int("joined", len(joined)))

	// 5. Aggregate
	result := &Result{
		RunID:        uuid.NewString(),
		Rule:         rules.Rule{ID: ruleID, Features: append([]string(nil), required...)},
		RuleID:       label,
		Normalized:   normalized,
		Evaluated:    evaluated,
		GeoJoined:    joined,
		MacroSummary: Summarize(joined, ColMacroArea),
	}
	if cfg.FamilySummary {
		result.FamilySummary = Summarize(joined, ColFamily)
	}

	// 6. Coverage
	result.Coverage = CoverageOf(normalized, evaluated, joined)

	log.Info("rule evaluated",
		zap.String("run_id", result.RunID),
		zap.Int("total", result.Coverage.TotalLanguages),
		zap.Int("testable", result.Coverage.TestableLanguages),
		zap.Int("mappable", result.Coverage.MappableLanguages),
		zap.Int("macro_areas", len(result.MacroSummary)))

	return result, nil
}

// RunAll evaluates several rules against one feature table. The geo source is
// loaded once and shared. The first failing rule aborts the batch.
func RunAll(table *features.Table, geoSource geo.Source, rs []rules.Rule, opts ...Option) ([]*Result, error) {
	if geoSource == nil {
		return nil, fmt.Errorf("geo source is nil")
	}
	cached := geo.NewCached(geoSource)
	out := make([]*Result, 0, len(rs))
	for _, r := range rs {
		res, err := Run(table, cached, r, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// ============================================================================
// STAGES
// ============================================================================

// Evaluate applies an evaluator to every record and keeps testable rows.
func Evaluate(records []features.Record, ruleID string, evaluate rules.Evaluator) []EvaluatedRow {
	out := make([]EvaluatedRow, 0, len(records))
	for _, rec := range records {
		follows, ok := evaluate(rec.Features).FollowsFlag()
		if !ok {
			continue
		}
		out = append(out, EvaluatedRow{
			LangCode:     rec.LangCode,
			RuleID:       ruleID,
			FollowsRule:  follows,
			ViolatesRule: 1 - follows,
			Features:     rec.Features.Clone(),
		})
	}
	return out
}

// AttachGeo inner-joins evaluated rows with reference records on lang_code.
// Rows without a reference record are dropped; the coverage report counts them.
func AttachGeo(evaluated []EvaluatedRow, refs []geo.Record) []GeoRow {
	index := geo.Index(refs)
	out := make([]GeoRow, 0, len(evaluated))
	for _, e := range evaluated {
		g, ok := index[e.LangCode]
		if !ok {
			continue
		}
		out = append(out, newGeoRow(e, g))
	}
	return out
}

// CoverageOf counts distinct languages at each stage.
func CoverageOf(normalized []features.Record, evaluated []EvaluatedRow, joined []GeoRow) Coverage {
	total := distinct(len(normalized), func(i int) string { return normalized[i].LangCode })
	testable := distinct(len(evaluated), func(i int) string { return evaluated[i].LangCode })
	mappable := DistinctCount(GeoView(joined), ColLangCode)

	return Coverage{
		TotalLanguages:    total,
		TestableLanguages: testable,
		TestableFraction:  ratio(testable, total),
		MappableLanguages: mappable,
		GeoJoinFraction:   ratio(mappable, testable),
	}
}

func distinct(n int, key func(int) string) int {
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		seen[key(i)] = true
	}
	return len(seen)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return math.NaN()
	}
	return float64(num) / float64(den)
}
