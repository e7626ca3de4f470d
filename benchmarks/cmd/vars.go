package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zeu5/safe-policy-iteration/benchmarks/common"
)

var (
	flags   *common.Flags  = common.DefaultFlags()
	logger  zerolog.Logger = zerolog.Nop()
	cfgFile string
)

// AddFlags registers the persistent flags of cmd and binds them to viper.
func AddFlags(cmd *cobra.Command) error {
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (yaml, json or toml)")
	pf.String("save-path", flags.SavePath, "Path to save results")
	pf.String("log-level", flags.LogLevel, "Log level (debug, info, warn, error)")

	pf.Float64("discount", flags.Discount, "Discount factor in [0, 1)")
	pf.Float64("tolerance", flags.Tolerance, "Evaluation stops when a sweep changes V by less than this")
	pf.Float64("penalty", flags.Penalty, "Penalty added to reward backups of violating states")
	pf.Float64("cost-threshold", flags.CostThreshold, "Actions with a cost lookahead below this are infeasible")
	pf.Int("max-iterations", flags.MaxIterations, "Maximum improvement rounds")
	pf.Int("max-sweeps", flags.MaxSweeps, "Maximum sweeps per evaluation, 0 for unbounded")
	pf.Bool("synchronous", flags.Synchronous, "Evaluate with synchronous sweeps instead of in place")
	pf.Bool("skip-validation", flags.SkipValidation, "Do not validate the model before planning")

	pf.Int("rows", flags.Rows, "Grid rows")
	pf.Int("cols", flags.Cols, "Grid columns")
	pf.Float64("step-reward", flags.StepReward, "Reward of every move")
	pf.Float64("hazard-cost", flags.HazardCost, "Cost of entering a hazard")
	pf.Float64("slip", flags.Slip, "Probability of slipping sideways")
	pf.StringSlice("hazards", flags.Hazards, "Hazard cells as row:col")

	pf.Int("states", flags.States, "States of a random model")
	pf.Int("actions", flags.Actions, "Actions of a random model")
	pf.Int("branching", flags.Branching, "Successors per state and action of a random model")
	pf.Uint64("seed", flags.Seed, "Seed of the random model")

	pf.Int("num-runs", flags.NumRuns, "Number of runs")
	pf.Duration("timeout", flags.Timeout, "Timeout of a single solve")
	pf.StringSlice("thresholds", formatFloats(flags.Thresholds), "Cost thresholds to compare")
	pf.Int("parallelism", flags.Parallelism, "Number of parallel runs")

	pf.String("addr", flags.Addr, "HTTP listen address")
	pf.String("database-url", flags.DatabaseURL, "PostgreSQL URL for plans, in memory when empty")

	if err := viper.BindPFlags(pf); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	viper.SetEnvPrefix("SAFEPI")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	return nil
}

// UpdateFlags reads flags, environment and the config file, in that order
// of precedence.
func UpdateFlags() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
	}

	flags.SavePath = viper.GetString("save-path")
	flags.LogLevel = viper.GetString("log-level")

	flags.Discount = viper.GetFloat64("discount")
	flags.Tolerance = viper.GetFloat64("tolerance")
	flags.Penalty = viper.GetFloat64("penalty")
	flags.CostThreshold = viper.GetFloat64("cost-threshold")
	flags.MaxIterations = viper.GetInt("max-iterations")
	flags.MaxSweeps = viper.GetInt("max-sweeps")
	flags.Synchronous = viper.GetBool("synchronous")
	flags.SkipValidation = viper.GetBool("skip-validation")

	flags.Rows = viper.GetInt("rows")
	flags.Cols = viper.GetInt("cols")
	flags.StepReward = viper.GetFloat64("step-reward")
	flags.HazardCost = viper.GetFloat64("hazard-cost")
	flags.Slip = viper.GetFloat64("slip")
	flags.Hazards = viper.GetStringSlice("hazards")

	flags.States = viper.GetInt("states")
	flags.Actions = viper.GetInt("actions")
	flags.Branching = viper.GetInt("branching")
	flags.Seed = viper.GetUint64("seed")

	flags.NumRuns = viper.GetInt("num-runs")
	flags.Timeout = viper.GetDuration("timeout")
	thresholds, err := parseFloats(viper.GetStringSlice("thresholds"))
	if err != nil {
		return err
	}
	flags.Thresholds = thresholds
	flags.Parallelism = viper.GetInt("parallelism")

	flags.Addr = viper.GetString("addr")
	flags.DatabaseURL = viper.GetString("database-url")
	return nil
}

func parseFloats(values []string) ([]float64, error) {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("threshold %q: %w", v, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func formatFloats(values []float64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return out
}
