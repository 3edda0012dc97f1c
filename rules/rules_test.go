package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/greenberg/features"
)

const (
	A = features.Attested
	N = features.NotAttested
	U = features.Unobserved
)

func TestRule24Scenarios(t *testing.T) {
	assert.Equal(t, Violates, Rule24(features.Row{SOV: A, AdjBefore: A, AdjAfter: N}))
	assert.Equal(t, Follows, Rule24(features.Row{SOV: A, AdjBefore: N, AdjAfter: A}))
	assert.Equal(t, NotTestable, Rule24(features.Row{SOV: N, OSV: N, OVS: N, AdjBefore: A, AdjAfter: N}))
	assert.Equal(t, NotTestable, Rule24(features.Row{SOV: N, OSV: N, OVS: N, AdjBefore: N, AdjAfter: A}))
}

func TestRule41Scenarios(t *testing.T) {
	assert.Equal(t, NotTestable, Rule41(features.Row{SOV: A}))
	assert.Equal(t, Follows, Rule41(features.Row{SOV: A, CaseSuffix: A}))

	allZero := features.Row{SOV: A}
	for _, f := range CaseFeatures {
		allZero[f] = N
	}
	assert.Equal(t, Violates, Rule41(allZero))

	// partially observed, none attested
	assert.Equal(t, Violates, Rule41(features.Row{OSV: A, CaseMark: N}))
	assert.Equal(t, NotTestable, Rule41(features.Row{SVO: A, CaseSuffix: A}))
}

func TestPositionalRules(t *testing.T) {
	tests := []struct {
		name string
		fn   Evaluator
		row  features.Row
		want Verdict
	}{
		{"19 follows", Rule19, features.Row{AdjAfter: A, DemBefore: N, DemAfter: A, NumBefore: N, NumAfter: A}, Follows},
		{"19 dem before only", Rule19, features.Row{AdjAfter: A, DemBefore: A, DemAfter: N, NumBefore: N, NumAfter: A}, Violates},
		{"19 num before only", Rule19, features.Row{AdjAfter: A, DemBefore: N, DemAfter: A, NumBefore: A, NumAfter: N}, Violates},
		{"19 mixed orders", Rule19, features.Row{AdjAfter: A, DemBefore: A, DemAfter: A, NumBefore: A, NumAfter: A}, Follows},
		{"19 numeral unknown", Rule19, features.Row{AdjAfter: A, DemBefore: N, DemAfter: A}, NotTestable},
		{"19 antecedent unobserved", Rule19, features.Row{DemBefore: A, DemAfter: N, NumBefore: A, NumAfter: N}, NotTestable},

		{"20 follows", Rule20, features.Row{DemBefore: A, PossBefore: A, PossAfter: N}, Follows},
		{"20 violates", Rule20, features.Row{NumBefore: A, PossBefore: N, PossAfter: A}, Violates},
		{"20 both", Rule20, features.Row{AdjBefore: A, PossBefore: A, PossAfter: A}, Follows},
		{"20 possessor unknown", Rule20, features.Row{AdjBefore: A}, NotTestable},
		{"20 half observed", Rule20, features.Row{AdjBefore: A, PossBefore: N}, NotTestable},
		{"20 both observed zero", Rule20, features.Row{AdjBefore: A, PossBefore: N, PossAfter: N}, Follows},

		{"21 follows", Rule21, features.Row{AdjAfter: A, PossBefore: N, PossAfter: A}, Follows},
		{"21 violates", Rule21, features.Row{DemAfter: A, PossBefore: A, PossAfter: N}, Violates},
		{"21 no antecedent", Rule21, features.Row{AdjAfter: N, DemAfter: U, PossBefore: A}, NotTestable},

		{"23 follows", Rule23, features.Row{SVO: A, AdjBefore: A, AdjAfter: N}, Follows},
		{"23 violates", Rule23, features.Row{VSO: A, AdjBefore: N, AdjAfter: A}, Violates},
		{"23 mixed", Rule23, features.Row{VOS: A, AdjBefore: A, AdjAfter: A}, Follows},
		{"23 adjective unknown", Rule23, features.Row{SVO: A, AdjBefore: U, AdjAfter: U}, NotTestable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.row))
		})
	}
}

func TestFalseAntecedentNeverTestable(t *testing.T) {
	consequents := []features.Row{
		{},
		{AdjBefore: A, AdjAfter: N, PossBefore: A, PossAfter: N, DemBefore: A, NumBefore: A, CaseMark: N},
		{AdjBefore: N, AdjAfter: N, PossBefore: N, PossAfter: A, DemAfter: N, NumAfter: N, CaseSuffix: A},
	}
	for _, r := range All() {
		for _, c := range consequents {
			row := c.Clone()
			// clear every antecedent flag the registry rule reads
			for _, f := range []string{SOV, SVO, VSO, VOS, OSV, OVS} {
				row[f] = N
			}
			switch r.ID {
			case "19":
				row[AdjAfter] = N
			case "20":
				row[AdjBefore], row[DemBefore], row[NumBefore] = N, N, N
			case "21":
				row[AdjAfter], row[DemAfter], row[NumAfter] = N, N, N
			}
			assert.Equal(t, NotTestable, r.Apply(row), "rule %s", r.ID)
		}
	}
}

func TestEvaluatorsTolerateEmptyRow(t *testing.T) {
	for _, r := range All() {
		assert.NotPanics(t, func() { r.Apply(nil) }, r.ID)
		assert.Equal(t, NotTestable, r.Apply(features.Row{}), r.ID)
	}
}

func TestVerdictFlags(t *testing.T) {
	f, ok := Follows.FollowsFlag()
	assert.True(t, ok)
	assert.Equal(t, 1, f)

	f, ok = Violates.FollowsFlag()
	assert.True(t, ok)
	assert.Equal(t, 0, f)

	_, ok = NotTestable.FollowsFlag()
	assert.False(t, ok)
	assert.False(t, NotTestable.Testable())
	assert.Equal(t, "not_testable", NotTestable.String())
}

func TestRegistry(t *testing.T) {
	ids := []string{}
	for _, r := range All() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"19", "20", "21", "23", "24", "41"}, ids)

	for _, alias := range []string{"24", "rule24", "Rule_24", "R24", "Greenberg_24"} {
		r, err := Lookup(alias)
		require.NoError(t, err, alias)
		assert.Equal(t, "24", r.ID)
	}

	_, err := Lookup("99")
	assert.ErrorIs(t, err, ErrUnknownRule)

	r, err := Lookup("41")
	require.NoError(t, err)
	assert.Equal(t, []string{SOV, OSV, CaseMark, CasePrefix, CaseSuffix, CaseProclitic, CaseEnclitic}, r.Features)

	r.Features[0] = "mutated"
	again, _ := Lookup("41")
	assert.Equal(t, SOV, again.Features[0])
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	reg := Builtin()
	err := reg.Register(Rule{ID: "20", Evaluate: Rule20})
	assert.ErrorContains(t, err, "already registered")

	err = reg.Register(Rule{ID: "custom-no-eval"})
	assert.ErrorContains(t, err, "no evaluator")

	require.NoError(t, reg.Register(Rule{ID: "test-register", Features: []string{SOV}, Evaluate: Rule41}))
	assert.Len(t, reg.All(), 7)
	assert.Len(t, All(), 6)

	r, err := reg.Lookup("test-register")
	require.NoError(t, err)
	assert.Equal(t, []string{SOV}, r.Features)
}
