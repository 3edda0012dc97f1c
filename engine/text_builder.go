package engine

import (
	"fmt"
)

// ============================================================================
// TEXT BUILDER — One-line summaries of a rule run
// ============================================================================

// TextData is a headline figure plus the sentence around it.
type TextData struct {
	Value    string  `json:"value"`
	RawValue float64 `json:"rawValue"`
	Count    int     `json:"count"`
	Sentence string  `json:"sentence"`
}

// BuildText summarizes a result: overall violation rate among testable
// languages and where violations concentrate.
func BuildText(r *Result) *TextData {
	if r == nil || len(r.Evaluated) == 0 {
		id := ""
		if r != nil {
			id = r.RuleID
		}
		return &TextData{
			Value:    "n/a",
			Sentence: fmt.Sprintf("%s: no testable languages", id),
		}
	}

	violations := 0
	for _, e := range r.Evaluated {
		violations += e.ViolatesRule
	}
	rate := float64(violations) / float64(len(r.Evaluated))

	sentence := fmt.Sprintf("%s: %s of %s testable languages violate the universal (%s)",
		r.RuleID, FormatInt(violations), FormatInt(len(r.Evaluated)), FormatPercent(rate))
	if len(r.MacroSummary) > 0 && r.MacroSummary[0].NViolations > 0 {
		top := r.MacroSummary[0]
		sentence += fmt.Sprintf("; most violations in %s (%s of %s)",
			top.Key, FormatInt(top.NViolations), FormatInt(top.NLanguages))
	}

	return &TextData{
		Value:    FormatPercent(rate),
		RawValue: rate,
		Count:    len(r.Evaluated),
		Sentence: sentence,
	}
}
