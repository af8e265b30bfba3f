package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/xraph/haulage/internal/config"
	"github.com/xraph/haulage/internal/logger"
)

var version = "0.1.0"

// appKey carries the opened app from PersistentPreRunE to the commands.
type appKey struct{}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "haulage",
		Short: "Billing ledger for a transport contractor",
		Long: `haulage keeps clients, numbered bills and received payments for a
transport contractor. Payments are applied to the oldest open bills first.

Configuration is read from the environment and from a .env file in the
working directory. By default the ledger lives in HAULAGE_DATA_DIR as a
single JSON snapshot that is rewritten after every change.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["noapp"] == "true" {
				return nil
			}
			a, err := openApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a := appFrom(cmd); a != nil {
				return a.Close()
			}
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(cfg),
		newMigrateCmd(),
		newClientCmd(),
		newBillCmd(),
		newPayCmd(),
		newDashboardCmd(),
		newExportCmd(),
		newBackupCmd(),
		newCounterCmd(),
		newSettingsCmd(),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute(cfg *config.Config) {
	lg := logger.WithComponent("cmd")

	if err := newRootCmd(cfg).ExecuteContext(context.Background()); err != nil {
		lg.Error().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func appFrom(cmd *cobra.Command) *app {
	a, _ := cmd.Context().Value(appKey{}).(*app)
	return a
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
