// Package rules implements Greenberg word-order universals as per-language
// classifiers and exposes them through a single registry.
package rules

import "github.com/spektr-org/greenberg/features"

// Verdict is the outcome of testing one language against one universal.
// It is deliberately not numeric; use FollowsFlag for 0/1 columns.
type Verdict uint8

const (
	NotTestable Verdict = iota
	Follows
	Violates
)

func (v Verdict) String() string {
	switch v {
	case Follows:
		return "follows"
	case Violates:
		return "violates"
	default:
		return "not_testable"
	}
}

// Testable reports whether the verdict takes part in aggregation.
func (v Verdict) Testable() bool { return v == Follows || v == Violates }

// FollowsFlag returns 1 for Follows and 0 for Violates.
// ok is false for NotTestable, which has no flag.
func (v Verdict) FollowsFlag() (flag int, ok bool) {
	switch v {
	case Follows:
		return 1, true
	case Violates:
		return 0, true
	default:
		return 0, false
	}
}

// Evaluator classifies one language's feature row.
// Evaluators must be pure and must not panic on absent columns.
type Evaluator func(row features.Row) Verdict

// positional checks a before/after consequent pair.
// Neither side attested with either side unobserved means the position is unknown.
// wrongBefore selects which side is the violating one; a language attesting
// both orders never violates.
func positional(row features.Row, before, after string, wrongBefore bool) Verdict {
	b := row.Attested(before)
	a := row.Attested(after)
	if !b && !a && (!row.Observed(before) || !row.Observed(after)) {
		return NotTestable
	}
	violates := a && !b
	if wrongBefore {
		violates = b && !a
	}
	if violates {
		return Violates
	}
	return Follows
}
