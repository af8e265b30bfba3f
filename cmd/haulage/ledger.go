package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xraph/haulage/backup"
	"github.com/xraph/haulage/export"
	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/settings"
)

func newDashboardCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals and recent activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := appFrom(cmd).ledger.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), st)
			}
			cmd.Printf("Clients:             %d\n", st.TotalClients)
			cmd.Printf("Bills:               %d\n", st.TotalBills)
			cmd.Printf("Revenue:             %s\n", st.TotalRevenue)
			cmd.Printf("Pending:             %s\n", st.PendingAmount)
			cmd.Printf("Revenue this month:  %s\n", st.ThisMonthRevenue)
			if len(st.RecentBills) > 0 {
				cmd.Println("\nRecent bills:")
				for _, b := range st.RecentBills {
					cmd.Printf("  %d  %s  %s  %s\n", b.Number, b.Date.Format("2006-01-02"), b.ClientName, b.TotalActual)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export CLIENT_ID",
		Short: "Export a client's statement as CSV or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := id.ParseClientID(args[0])
			if err != nil {
				return err
			}
			st, err := export.LoadStatement(cmd.Context(), appFrom(cmd).ledger, cid)
			if err != nil {
				return err
			}
			if out == "" {
				out = export.FileName(st.Client, format)
			}
			if err := writeFile(out, func(w io.Writer) error { return st.Write(w, format) }); err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <client>_data.<format>)")
	return cmd
}

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Push or restore the whole ledger",
	}

	push := &cobra.Command{
		Use:   "push",
		Short: "Write the ledger to every configured sink now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			if len(a.backup.Sinks()) == 0 {
				return errors.New("no backup sink configured")
			}
			snap, err := a.ledger.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.backup.Push(cmd.Context(), snap); err != nil {
				return err
			}
			for _, s := range a.backup.Sinks() {
				cmd.Printf("pushed to %s\n", s.Name())
			}
			return nil
		},
	}

	var from string
	restore := &cobra.Command{
		Use:   "restore",
		Short: "Replace the ledger with a backup",
		Long: `Replace the ledger with a backup. With --from the document is read from
a file or directory; otherwise the first configured sink that can be read
back is used. The bill counter is restored too.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()

			var (
				data []byte
				err  error
			)
			switch {
			case from != "":
				data, err = readBackup(ctx, from)
			default:
				data, err = firstBackup(cmd, a.backup.Sinks())
			}
			if err != nil {
				return err
			}
			snap, err := backup.Decode(data)
			if err != nil {
				return err
			}
			if err := a.ledger.Restore(ctx, snap); err != nil {
				return err
			}
			cmd.Printf("restored %d clients, %d bills, %d payments; bill counter %d\n",
				len(snap.Clients), len(snap.Bills), len(snap.Payments), snap.BillCounter)
			return nil
		},
	}
	restore.Flags().StringVar(&from, "from", "", "backup file, or a directory holding "+backup.FileName)

	cmd.AddCommand(push, restore)
	return cmd
}

func readBackup(ctx context.Context, path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return os.ReadFile(path)
	}
	fs, err := backup.NewFileSink(path)
	if err != nil {
		return nil, err
	}
	return fs.Get(ctx, backup.FileName)
}

func firstBackup(cmd *cobra.Command, sinks []backup.Sink) ([]byte, error) {
	for _, s := range sinks {
		g, ok := s.(backup.Getter)
		if !ok {
			continue
		}
		data, err := g.Get(cmd.Context(), backup.FileName)
		if errors.Is(err, backup.ErrNoBackup) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name(), err)
		}
		cmd.Printf("restoring from %s\n", s.Name())
		return data, nil
	}
	return nil, backup.ErrNoBackup
}

func newCounterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Show or set the bill counter",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the last issued bill number",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := appFrom(cmd).ledger.Store().CurrentBillNumber(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("%d (next bill %d)\n", n, n+1)
			return nil
		},
	}, &cobra.Command{
		Use:   "set N",
		Short: "Set the counter so that the next bill is N+1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("counter: %w", err)
			}
			if err := appFrom(cmd).ledger.SetBillNumber(cmd.Context(), n); err != nil {
				return err
			}
			cmd.Printf("next bill will be %d\n", n+1)
			return nil
		},
	})
	return cmd
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or replace the company profile printed on bills",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the company settings as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := appFrom(cmd).ledger.GetSettings(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	}, &cobra.Command{
		Use:   "set FILE",
		Short: "Replace the company settings from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var s settings.CompanySettings
			if err := decodeStrict(data, &s); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if _, err := appFrom(cmd).ledger.UpdateSettings(cmd.Context(), &s); err != nil {
				return err
			}
			cmd.Println("settings saved")
			return nil
		},
	})
	return cmd
}

// writeFile renders into memory first so a failed render leaves no file.
func writeFile(path string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
