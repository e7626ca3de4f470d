package thresholds

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/zeu5/safe-policy-iteration/analysis"
	"github.com/zeu5/safe-policy-iteration/benchmarks/common"
	"github.com/zeu5/safe-policy-iteration/core"
	"github.com/zeu5/safe-policy-iteration/planner"
)

// ExperimentName labels the planner run for one cost threshold.
func ExperimentName(threshold float64) string {
	return fmt.Sprintf("threshold=%g", threshold)
}

// PrepareComparison plans on env once per threshold in flags.Thresholds.
// Violations are counted against flags.CostThreshold for every experiment
// so looser bounds show up as violations of the reference bound.
func PrepareComparison(flags *common.Flags, env core.EnvironmentConstructor, logger zerolog.Logger) *core.ParallelComparison {
	cmp := core.NewParallelComparison()

	cmp.AddAnalysis("convergence", analysis.NewConvergenceAnalyzerConstructor(), analysis.NewConvergenceComparatorConstructor(flags.SavePath))
	cmp.AddAnalysis("violations", analysis.NewViolationAnalyzerConstructor(flags.CostThreshold), analysis.NewViolationComparatorConstructor(flags.SavePath))
	cmp.AddAnalysis("errors", analysis.NewErrorAnalyzerConstructor(flags.SavePath), analysis.NoOpComparator{})

	for _, threshold := range flags.Thresholds {
		cfg := flags.PlannerConfig()
		cfg.CostThreshold = threshold
		name := ExperimentName(threshold)
		cmp.AddExperiment(&core.ParallelExperiment{
			Name:        name,
			Environment: env,
			Solver:      planner.NewSolverConstructor(cfg, logger.With().Str("experiment", name).Logger()),
		})
	}
	return cmp
}
