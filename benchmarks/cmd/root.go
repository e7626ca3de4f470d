package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/zeu5/safe-policy-iteration/benchmarks/common"
)

func RootCommand() *cobra.Command {
	var bindErr error
	cmd := &cobra.Command{
		Use:          "safepi",
		Short:        "Policy iteration under a cost constraint",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if bindErr != nil {
				return bindErr
			}
			if err := UpdateFlags(); err != nil {
				return err
			}
			l, err := common.NewLogger(cmd.ErrOrStderr(), flags.LogLevel)
			if err != nil {
				return err
			}
			logger = l
			log.Logger = l
			return flags.Record()
		},
	}
	bindErr = AddFlags(cmd)

	cmd.AddCommand(
		PlanCommand(),
		RandomCommand(),
		CompareCommand(),
		ServeCommand(),
	)

	return cmd
}

// interruptContext is cancelled on SIGINT/SIGTERM or when done is called.
func interruptContext() (context.Context, func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	doneCh := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
		case <-doneCh:
		}
		signal.Stop(sigCh)
		cancel()
	}()
	return ctx, func() { close(doneCh) }
}
