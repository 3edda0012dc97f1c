package rules

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spektr-org/greenberg/features"
)

// ============================================================================
// REGISTRY — One definition per universal
// ============================================================================

// ErrUnknownRule is returned by Lookup for ids that are not registered.
var ErrUnknownRule = errors.New("unknown rule")

// Rule couples an evaluator with the feature columns it reads.
type Rule struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Statement  string    `json:"statement" yaml:"statement"`
	Antecedent string    `json:"antecedent" yaml:"antecedent"`
	Consequent string    `json:"consequent" yaml:"consequent"`
	Features   []string  `json:"features" yaml:"features"`
	Evaluate   Evaluator `json:"-" yaml:"-"`
}

// Registry maps rule ids to rules.
type Registry struct {
	rules map[string]Rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Builtin returns a registry holding the six Greenberg universals.
func Builtin() *Registry {
	reg := NewRegistry()
	for _, r := range builtin() {
		if err := reg.Register(r); err != nil {
			panic(err)
		}
	}
	return reg
}

var defaultRegistry = Builtin()

// Register adds a rule to the default registry.
func Register(r Rule) error { return defaultRegistry.Register(r) }

// Lookup finds a rule in the default registry.
func Lookup(id string) (Rule, error) { return defaultRegistry.Lookup(id) }

// All lists the default registry.
func All() []Rule { return defaultRegistry.All() }

func builtin() []Rule {
	return []Rule{
		{
			ID:         "19",
			Name:       "Greenberg 19",
			Statement:  "If the descriptive adjective follows the noun, the demonstrative and the numeral likewise follow.",
			Antecedent: "adjective after noun",
			Consequent: "demonstrative and numeral after noun",
			Features:   []string{AdjAfter, DemBefore, DemAfter, NumBefore, NumAfter},
			Evaluate:   Rule19,
		},
		{
			ID:         "20",
			Name:       "Greenberg 20",
			Statement:  "If any modifier (adjective, demonstrative, numeral) precedes the noun, the possessor precedes it.",
			Antecedent: "adjective, demonstrative or numeral before noun",
			Consequent: "possessor before noun",
			Features:   []string{AdjBefore, DemBefore, NumBefore, PossBefore, PossAfter},
			Evaluate:   Rule20,
		},
		{
			ID:         "21",
			Name:       "Greenberg 21",
			Statement:  "If any modifier (adjective, demonstrative, numeral) follows the noun, the possessor follows it.",
			Antecedent: "adjective, demonstrative or numeral after noun",
			Consequent: "possessor after noun",
			Features:   []string{AdjAfter, DemAfter, NumAfter, PossBefore, PossAfter},
			Evaluate:   Rule21,
		},
		{
			ID:         "23",
			Name:       "Greenberg 23",
			Statement:  "If the verb precedes the object, the adjective precedes the noun.",
			Antecedent: "SVO, VSO or VOS",
			Consequent: "adjective before noun",
			Features:   []string{SVO, VSO, VOS, AdjBefore, AdjAfter},
			Evaluate:   Rule23,
		},
		{
			ID:         "24",
			Name:       "Greenberg 24",
			Statement:  "If the verb follows the object, the adjective follows the noun.",
			Antecedent: "SOV, OSV or OVS",
			Consequent: "adjective after noun",
			Features:   []string{SOV, OSV, OVS, AdjBefore, AdjAfter},
			Evaluate:   Rule24,
		},
		{
			ID:         "41",
			Name:       "Greenberg 41",
			Statement:  "If the verb follows both nominal subject and nominal object, the language almost always has a case system.",
			Antecedent: "SOV or OSV",
			Consequent: "some case-marking strategy attested",
			Features:   append([]string{SOV, OSV}, CaseFeatures...),
			Evaluate:   Rule41,
		},
	}
}

// Register adds a rule. Ids must be unique and rules must carry an evaluator.
func (g *Registry) Register(r Rule) error {
	id := canonicalID(r.ID)
	if id == "" {
		return errors.New("rule id is required")
	}
	if r.Evaluate == nil {
		return fmt.Errorf("rule %s has no evaluator", id)
	}
	if _, exists := g.rules[id]; exists {
		return fmt.Errorf("rule %s already registered", id)
	}
	r.ID = id
	r.Features = append([]string(nil), r.Features...)
	g.rules[id] = r
	return nil
}

// Lookup finds a rule by id. "24", "rule24", "R24" and "Greenberg_24" all resolve to rule 24.
func (g *Registry) Lookup(id string) (Rule, error) {
	r, ok := g.rules[canonicalID(id)]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrUnknownRule, id)
	}
	r.Features = append([]string(nil), r.Features...)
	return r, nil
}

// All returns registered rules ordered by id (numeric ids first, ascending).
func (g *Registry) All() []Rule {
	out := make([]Rule, 0, len(g.rules))
	for _, r := range g.rules {
		r.Features = append([]string(nil), r.Features...)
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		ni, ei := strconv.Atoi(out[i].ID)
		nj, ej := strconv.Atoi(out[j].ID)
		switch {
		case ei == nil && ej == nil:
			return ni < nj
		case ei == nil:
			return true
		case ej == nil:
			return false
		default:
			return out[i].ID < out[j].ID
		}
	})
	return out
}

// Apply runs the rule's evaluator on a row.
func (r Rule) Apply(row features.Row) Verdict {
	if r.Evaluate == nil {
		return NotTestable
	}
	return r.Evaluate(row)
}

func canonicalID(id string) string {
	id = strings.TrimSpace(strings.ToLower(id))
	for _, prefix := range []string{"greenberg_", "greenberg", "rule_", "rule", "r"} {
		rest := strings.TrimPrefix(id, prefix)
		if rest == id || rest == "" {
			continue
		}
		if _, err := strconv.Atoi(rest); err == nil {
			return rest
		}
	}
	return id
}
