package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spektr-org/greenberg/config"
	"github.com/spektr-org/greenberg/engine"
	"github.com/spektr-org/greenberg/features"
	"github.com/spektr-org/greenberg/geo"
	"github.com/spektr-org/greenberg/render"
	"github.com/spektr-org/greenberg/rules"
)

const version = "0.1.0"

// app carries state shared by subcommands once flags are parsed.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "greenberg",
		Short: "Evaluate Greenberg word-order universals against Lang2Vec features",
		Long: `greenberg tests implicational word-order universals against a
language feature table, joins testable languages with WALS geography and
reports violations per macro-area.

Configuration is read from greenberg.yaml, GREENBERG_* environment
variables and flags, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg

			zcfg := zap.NewProductionConfig()
			if cfg.Verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			} else {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			}
			a.logger, err = zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			if cfg.FileUsed != "" {
				a.logger.Debug("loaded config file", zap.String("path", cfg.FileUsed))
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "Config file (default greenberg.yaml)")
	pf.String("features", "", "Feature table: Lang2Vec .json or .csv")
	pf.String("geo", "", "WALS languages.csv")
	pf.StringSlice("rule", nil, "Rule ids to evaluate (default all)")
	pf.StringP("output", "o", config.DefaultOutput, "Output format: table, json, yaml, csv")
	pf.String("rule-id-prefix", config.DefaultRuleIDPrefix, "Prefix for rule_id labels")
	pf.Bool("family-summary", false, "Also aggregate violations by language family")
	pf.BoolP("verbose", "v", false, "Debug logging")

	root.AddCommand(
		newRunCmd(a),
		newRulesCmd(a),
		newChartCmd(a),
		newVersionCmd(),
	)
	return root
}

// ============================================================================
// COMMANDS
// ============================================================================

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Evaluate rules and report violations per macro-area",
		Example: `  greenberg run --features lang2vec.json --geo languages.csv
  greenberg run --rule 24 --rule 41 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := a.selectedRules()
			if err != nil {
				return err
			}
			table, source, err := a.loadInputs()
			if err != nil {
				return err
			}
			results, err := engine.RunAll(table, source, selected, a.engineOptions()...)
			if err != nil {
				return err
			}
			return render.Results(cmd.OutOrStdout(), results, render.Format(a.cfg.Output))
		},
	}
}

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the registered universals",
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := a.selectedRules()
			if err != nil {
				return err
			}
			return render.Rules(cmd.OutOrStdout(), selected, render.Format(a.cfg.Output))
		},
	}
}

func newChartCmd(a *app) *cobra.Command {
	var (
		kind  string
		areas []string
	)
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Emit a bar chart or geo map config for one rule",
		Long: `Builds a chart config for one rule. The bar chart plots violations per
macro-area; the geo map plots every mappable testable language colored by
violation. Configs are written as JSON (or YAML with -o yaml). With -o table
the bar chart is drawn in the terminal.`,
		Example: `  greenberg chart --rule 24 --kind bar -o table
  greenberg chart --rule 41 --kind geo --area Eurasia --area Africa`,
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := a.selectedRules()
			if err != nil {
				return err
			}
			if len(selected) != 1 {
				return fmt.Errorf("chart needs exactly one --rule, got %d", len(selected))
			}
			rule := selected[0]

			table, source, err := a.loadInputs()
			if err != nil {
				return err
			}
			res, err := engine.Run(table, source, rule, a.engineOptions()...)
			if err != nil {
				return err
			}

			filters := engine.Filters{}
			if len(areas) > 0 {
				filters.Dimensions = map[string][]string{engine.ColMacroArea: areas}
			}
			out := cmd.OutOrStdout()
			format := render.Format(a.cfg.Output)

			switch strings.ToLower(kind) {
			case "bar":
				opts := engine.DefaultBarOptions(res.RuleID)
				opts.Filters = filters
				chart, err := engine.BuildBarChart(res.SummaryView(), opts)
				if err != nil {
					return err
				}
				return writeChart(out, format, chart, func() error {
					return render.BarChart(out, chart, render.DefaultBarWidth)
				})
			case "geo", "map":
				opts := engine.DefaultGeoMapOptions(res.RuleID)
				opts.ExtraHover = rule.Features
				opts.Filters = filters
				m, err := engine.BuildGeoMap(engine.GeoFeatureView(res.GeoJoined, rule.Features), opts)
				if err != nil {
					return err
				}
				return writeChart(out, format, m, nil)
			default:
				return fmt.Errorf("unknown chart kind %q (want bar or geo)", kind)
			}
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "bar", "Chart kind: bar, geo")
	cmd.Flags().StringSliceVar(&areas, "area", nil, "Restrict to macro-areas")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "greenberg %s\n", version)
		},
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func (a *app) selectedRules() ([]rules.Rule, error) {
	if len(a.cfg.Rules) == 0 {
		return rules.All(), nil
	}
	out := make([]rules.Rule, 0, len(a.cfg.Rules))
	for _, id := range a.cfg.Rules {
		r, err := rules.Lookup(id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (a *app) loadInputs() (*features.Table, geo.Source, error) {
	if err := a.cfg.RequireInputs(); err != nil {
		return nil, nil, err
	}
	table, err := features.LoadFile(a.cfg.FeaturesPath)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug("loaded feature table",
		zap.String("path", a.cfg.FeaturesPath),
		zap.Int("languages", table.Len()),
		zap.Int("features", len(table.Columns())))
	return table, geo.NewCached(geo.File(a.cfg.GeoPath)), nil
}

func (a *app) engineOptions() []engine.Option {
	opts := []engine.Option{
		engine.WithLogger(a.logger),
		engine.WithRuleIDPrefix(a.cfg.RuleIDPrefix),
	}
	if a.cfg.FamilySummary {
		opts = append(opts, engine.WithFamilySummary())
	}
	return opts
}

func writeChart(w io.Writer, format render.Format, v interface{}, terminal func() error) error {
	switch format {
	case render.FormatYAML:
		return render.YAML(w, v)
	case render.FormatTable:
		if terminal != nil {
			return terminal()
		}
	}
	return render.JSON(w, v)
}
