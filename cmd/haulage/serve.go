package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xraph/haulage/api"
	"github.com/xraph/haulage/internal/config"
	"github.com/xraph/haulage/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			lg := logger.WithComponent("http")

			handler := api.New(a.ledger,
				api.WithLogger(logger.Slog("http")),
				api.WithBasePath(cfg.BasePath),
				api.WithBasicAuth(cfg.AuthUser, cfg.AuthPass),
				api.WithMetrics(a.metrics.Handler()),
			)
			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				lg.Info().Str("addr", cfg.Addr).Str("base_path", cfg.BasePath).Msg("Server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

			lg.Info().Msg("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			lg.Info().Msg("Server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the store and rewrite the data file in the current format",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()

			if err := a.ledger.Store().Migrate(ctx); err != nil {
				return err
			}
			if len(a.backup.Sinks()) == 0 {
				cmd.Println("store migrated")
				return nil
			}
			snap, err := a.ledger.Snapshot(ctx)
			if err != nil {
				return err
			}
			if err := a.backup.Push(ctx, snap); err != nil {
				return err
			}
			cmd.Printf("store migrated, %d clients and %d bills rewritten\n", len(snap.Clients), len(snap.Bills))
			return nil
		},
	}
}
