package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingFeatures marks a run whose feature table lacks columns the rule reads.
	ErrMissingFeatures = errors.New("missing required feature columns")

	// ErrMissingColumn marks a chart asked to plot a column its table does not have.
	ErrMissingColumn = errors.New("missing column")
)

// ConfigError is a caller contract violation: the rule needs feature columns
// the input table does not provide. The run is aborted without output.
type ConfigError struct {
	RuleID  string
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rule %s: %v: %s", e.RuleID, ErrMissingFeatures, strings.Join(e.Missing, ", "))
}

func (e *ConfigError) Unwrap() error { return ErrMissingFeatures }

// PresentationError reports chart columns absent from the input table.
type PresentationError struct {
	Chart   string
	Missing []string
}

func (e *PresentationError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Chart, ErrMissingColumn, strings.Join(e.Missing, ", "))
}

func (e *PresentationError) Unwrap() error { return ErrMissingColumn }
