package cmd

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"
	"github.com/zeu5/safe-policy-iteration/envs/random"
	"github.com/zeu5/safe-policy-iteration/util"
)

func RandomCommand() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Plan on a seeded random model",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, done := interruptContext()
			defer done()

			env, err := random.New(flags.RandomConfig())
			if err != nil {
				return err
			}
			solution, err := solveWithProgress(ctx, cmd.OutOrStdout(), env)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printSolution(w, solution)
			fmt.Fprintf(w, "Greedy actions: %v\n", solution.Policy.Actions())

			if save {
				return util.SaveJson(path.Join(flags.SavePath, "plan.json"), solution)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "Save the solution to plan.json under the save path")
	return cmd
}
