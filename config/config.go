// Package config loads greenberg settings from defaults, greenberg.yaml,
// GREENBERG_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Defaults.
const (
	DefaultOutput       = "table"
	DefaultRuleIDPrefix = "Greenberg_"
	EnvPrefix           = "GREENBERG_"
)

// ConfigFileNames are searched in the working directory when no explicit
// file is given.
var ConfigFileNames = []string{"greenberg.yaml", "greenberg.yml"}

// Output formats understood by the render package.
var Outputs = []string{"table", "json", "yaml", "csv"}

// ErrNoInput is returned by RequireInputs when a data path is unset.
var ErrNoInput = errors.New("input path not configured")

// Config holds everything a run needs.
type Config struct {
	FeaturesPath  string   `koanf:"features_path"`
	GeoPath       string   `koanf:"geo_path"`
	Rules         []string `koanf:"rules"`
	Output        string   `koanf:"output"`
	RuleIDPrefix  string   `koanf:"rule_id_prefix"`
	FamilySummary bool     `koanf:"family_summary"`
	Verbose       bool     `koanf:"verbose"`

	// FileUsed is the config file that was read, empty if none.
	FileUsed string `koanf:"-"`
}

// Load reads configuration. Precedence (highest to lowest):
// flags > env vars > config file > defaults.
// Only flags the user actually set override lower layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"rules":          []string{},
		"output":         DefaultOutput,
		"rule_id_prefix": DefaultRuleIDPrefix,
		"family_summary": false,
		"verbose":        false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: GREENBERG_FEATURES_PATH -> features_path
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			switch key {
			case "features":
				key = "features_path"
			case "geo":
				key = "geo_path"
			case "rule":
				key = "rules"
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = used
	cfg.Rules = splitList(cfg.Rules)
	cfg.Output = strings.ToLower(strings.TrimSpace(cfg.Output))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that do not depend on the command being run.
func (c *Config) Validate() error {
	for _, o := range Outputs {
		if c.Output == o {
			return nil
		}
	}
	return fmt.Errorf("unknown output format %q (want one of %s)", c.Output, strings.Join(Outputs, ", "))
}

// RequireInputs checks that both data paths are set.
func (c *Config) RequireInputs() error {
	var missing []string
	if c.FeaturesPath == "" {
		missing = append(missing, "features_path")
	}
	if c.GeoPath == "" {
		missing = append(missing, "geo_path")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrNoInput, strings.Join(missing, ", "))
	}
	return nil
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range ConfigFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// splitList flattens comma-separated entries, as env vars deliver lists.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
