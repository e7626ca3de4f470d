package cmd

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeu5/safe-policy-iteration/core"
	"github.com/zeu5/safe-policy-iteration/envs/gridworld"
	"github.com/zeu5/safe-policy-iteration/planner"
	"github.com/zeu5/safe-policy-iteration/util"
)

func PlanCommand() *cobra.Command {
	var save, colors bool
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan on the grid world with hazards",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, done := interruptContext()
			defer done()

			gridCfg, err := flags.GridConfig()
			if err != nil {
				return err
			}
			grid, err := gridworld.New(gridCfg)
			if err != nil {
				return err
			}

			solution, err := solveWithProgress(ctx, cmd.OutOrStdout(), grid)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			painter := gridworld.NewPainter(grid, colors)
			printSolution(w, solution)
			fmt.Fprintln(w, "Reshaped grid policy:")
			painter.Actions(w, solution.Policy)
			fmt.Fprintln(w)
			painter.Policy(w, solution.Policy)
			fmt.Fprintln(w, "Reshaped grid value function:")
			painter.Values(w, solution.V)
			fmt.Fprintln(w, "Reshaped grid cost value function:")
			painter.Values(w, solution.VCost)

			if save {
				return util.SaveJson(path.Join(flags.SavePath, "plan.json"), solution)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "Save the solution to plan.json under the save path")
	cmd.Flags().BoolVar(&colors, "colors", true, "Colour the grid output")
	return cmd
}

// solveWithProgress runs the planner while a live line shows the latest
// iteration of the trace.
func solveWithProgress(ctx context.Context, out io.Writer, env core.Environment) (*core.Solution, error) {
	if flags.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.Timeout)
		defer cancel()
	}
	trace := core.NewTrace()
	printer := util.NewTerminalPrinter(out, 100*time.Millisecond)
	progress := printer.NewOutput()
	progress.Set("Iteration 0")
	printer.Start(ctx)

	stopCh := make(chan struct{})
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				if last := trace.Last(); last != nil {
					progress.TrySet(progressLine(last))
				}
			}
		}
	}()

	solution, err := planner.New(flags.PlannerConfig(), logger).Solve(ctx, env, trace)
	close(stopCh)
	if last := trace.Last(); last != nil {
		progress.Set(progressLine(last))
	}
	printer.Stop()
	return solution, err
}

func progressLine(it *core.Iteration) string {
	return fmt.Sprintf("Iteration %d, sweeps: %d, changed: %d, fallbacks: %d", it.Index, it.Sweeps, it.Changed, it.Fallbacks)
}

func printSolution(w io.Writer, solution *core.Solution) {
	fmt.Fprintf(w, "Stable: %t after %d iterations\n", solution.Stable, solution.Iterations)
	fmt.Fprintln(w, "Policy distribution:")
	for s, row := range solution.Policy.Rows() {
		fmt.Fprintf(w, "%d: %v\n", s, row)
	}
	fmt.Fprintln(w, "Value function:")
	fmt.Fprintln(w, solution.V)
	fmt.Fprintln(w, "Cost value function:")
	fmt.Fprintln(w, solution.VCost)
}
