package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeu5/safe-policy-iteration/benchmarks/thresholds"
	"github.com/zeu5/safe-policy-iteration/core"
	"github.com/zeu5/safe-policy-iteration/envs/gridworld"
	"github.com/zeu5/safe-policy-iteration/envs/random"
)

func CompareCommand() *cobra.Command {
	var envName string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare planning under several cost thresholds",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, done := interruptContext()
			defer done()

			var env core.EnvironmentConstructor
			switch envName {
			case "grid":
				gridCfg, err := flags.GridConfig()
				if err != nil {
					return err
				}
				env = gridworld.NewConstructor(gridCfg)
			case "random":
				env = random.NewConstructor(flags.RandomConfig())
			default:
				return fmt.Errorf("unknown environment %q, want grid or random", envName)
			}

			cmp := thresholds.PrepareComparison(flags, env, logger)
			results := cmp.Run(ctx, &core.RunConfig{
				Runs:    flags.NumRuns,
				Timeout: flags.Timeout,
			}, flags.Parallelism)

			w := cmd.OutOrStdout()
			for run, r := range results {
				for _, e := range cmp.Experiments {
					result, ok := r[e.Name]
					switch {
					case !ok:
						fmt.Fprintf(w, "Run %d, %s: not run\n", run, e.Name)
					case result.IsError():
						fmt.Fprintf(w, "Run %d, %s: error: %v\n", run, e.Name, result.Error)
					default:
						fmt.Fprintf(w, "Run %d, %s: stable=%t iterations=%d time=%s\n",
							run, e.Name, result.Solution.Stable, result.Iterations, result.Duration)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&envName, "env", "grid", "Environment to plan on (grid or random)")
	return cmd
}
