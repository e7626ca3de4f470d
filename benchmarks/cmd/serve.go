package cmd

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github.com/zeu5/safe-policy-iteration/server"
)

func ServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve grid-world plans over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, done := interruptContext()
			defer done()

			var store server.PlanStore = server.NewMemoryStore()
			if flags.DatabaseURL != "" {
				db, err := sql.Open("postgres", flags.DatabaseURL)
				if err != nil {
					return err
				}
				defer db.Close()
				pg := server.NewPostgresStore(db)
				if err := pg.EnsureSchema(ctx); err != nil {
					return err
				}
				store = pg
			}

			h := server.NewServer(store, flags.PlannerConfig(), flags.Timeout, logger)
			srv := &http.Server{
				Addr:              flags.Addr,
				Handler:           h.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", flags.Addr).Msg("plan server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err, ok := <-errCh:
				if ok {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			logger.Info().Msg("shutdown signal received")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("graceful shutdown failed")
			}
			return <-errCh
		},
	}
	return cmd
}
