package engine

import "go.uber.org/zap"

// ============================================================================
// ENGINE OPTIONS — Functional options for Run()
// ============================================================================

// Option configures pipeline behavior.
type Option func(*config)

type config struct {
	Logger        *zap.Logger
	RuleIDPrefix  string
	FamilySummary bool
	KeepFeatures  bool
}

// DefaultRuleIDPrefix is prepended to registry ids in EvaluatedRow.RuleID.
const DefaultRuleIDPrefix = "Greenberg_"

// WithLogger routes pipeline logging to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithRuleIDPrefix changes the label prefix written to rule_id.
func WithRuleIDPrefix(prefix string) Option {
	return func(c *config) {
		c.RuleIDPrefix = prefix
	}
}

// WithFamilySummary also aggregates violations by language family.
func WithFamilySummary() Option {
	return func(c *config) {
		c.FamilySummary = true
	}
}

// WithoutFeatures drops the per-language feature vectors from evaluated rows.
func WithoutFeatures() Option {
	return func(c *config) {
		c.KeepFeatures = false
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		Logger:       zap.NewNop(),
		RuleIDPrefix: DefaultRuleIDPrefix,
		KeepFeatures: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
