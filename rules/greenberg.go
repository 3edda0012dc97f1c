package rules

import "github.com/spektr-org/greenberg/features"

// Lang2Vec syntax feature names used by the built-in universals.
const (
	SOV = "S_SOV"
	SVO = "S_SVO"
	VSO = "S_VSO"
	VOS = "S_VOS"
	OSV = "S_OSV"
	OVS = "S_OVS"

	AdjBefore  = "S_ADJECTIVE_BEFORE_NOUN"
	AdjAfter   = "S_ADJECTIVE_AFTER_NOUN"
	DemBefore  = "S_DEMONSTRATIVE_WORD_BEFORE_NOUN"
	DemAfter   = "S_DEMONSTRATIVE_WORD_AFTER_NOUN"
	NumBefore  = "S_NUMERAL_BEFORE_NOUN"
	NumAfter   = "S_NUMERAL_AFTER_NOUN"
	PossBefore = "S_POSSESSOR_BEFORE_NOUN"
	PossAfter  = "S_POSSESSOR_AFTER_NOUN"

	CaseMark      = "S_CASE_MARK"
	CasePrefix    = "S_CASE_PREFIX"
	CaseSuffix    = "S_CASE_SUFFIX"
	CaseProclitic = "S_CASE_PROCLITIC"
	CaseEnclitic  = "S_CASE_ENCLITIC"
)

// CaseFeatures are the case-marking strategy indicators checked by Rule 41.
var CaseFeatures = []string{CaseMark, CasePrefix, CaseSuffix, CaseProclitic, CaseEnclitic}

// Rule19: if the adjective follows the noun, the demonstrative and the
// numeral follow it too. Both positions must be known.
func Rule19(row features.Row) Verdict {
	if !row.Attested(AdjAfter) {
		return NotTestable
	}
	dem := positional(row, DemBefore, DemAfter, true)
	num := positional(row, NumBefore, NumAfter, true)
	if dem == NotTestable || num == NotTestable {
		return NotTestable
	}
	if dem == Violates || num == Violates {
		return Violates
	}
	return Follows
}

// Rule20: if any modifier precedes the noun, the possessor precedes it.
func Rule20(row features.Row) Verdict {
	if !row.AnyAttested(AdjBefore, DemBefore, NumBefore) {
		return NotTestable
	}
	return positional(row, PossBefore, PossAfter, false)
}

// Rule21: if any modifier follows the noun, the possessor follows it.
func Rule21(row features.Row) Verdict {
	if !row.AnyAttested(AdjAfter, DemAfter, NumAfter) {
		return NotTestable
	}
	return positional(row, PossBefore, PossAfter, true)
}

// Rule23: in VO languages the adjective precedes the noun.
func Rule23(row features.Row) Verdict {
	if !row.AnyAttested(SVO, VSO, VOS) {
		return NotTestable
	}
	return positional(row, AdjBefore, AdjAfter, false)
}

// Rule24: in OV languages the adjective follows the noun.
func Rule24(row features.Row) Verdict {
	if !row.AnyAttested(SOV, OSV, OVS) {
		return NotTestable
	}
	return positional(row, AdjBefore, AdjAfter, true)
}

// Rule41: verb-final languages have some case system.
// Untestable only when every case indicator is unobserved.
func Rule41(row features.Row) Verdict {
	if !row.AnyAttested(SOV, OSV) {
		return NotTestable
	}
	observed := false
	for _, f := range CaseFeatures {
		if row.Attested(f) {
			return Follows
		}
		if row.Observed(f) {
			observed = true
		}
	}
	if !observed {
		return NotTestable
	}
	return Violates
}
