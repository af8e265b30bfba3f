package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xraph/haulage"
	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/id"
)

func newBillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Issue and manage bills",
	}
	cmd.AddCommand(
		newBillIssueCmd(),
		newBillEditCmd(),
		newBillListCmd(),
		newBillShowCmd(),
		newBillDeleteCmd(),
		newBillRenderCmd(),
	)
	return cmd
}

func newBillIssueCmd() *cobra.Command {
	var (
		clientID  string
		newClient client.Input
		date      string
		items     []string
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bill to an existing or a new client",
		Example: `  haulage bill issue --client cli_01h... --date 2024-03-01 \
    --item "qty=2;rate=1500;advance=500;vehicle=GJ05AB1234;lr=88;particulars=Surat to Vapi"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			lines, err := parseItems(items, day)
			if err != nil {
				return err
			}

			in := bill.IssueInput{Date: day, Items: lines}
			switch {
			case clientID != "":
				in.ClientID, err = id.ParseClientID(clientID)
				if err != nil {
					return err
				}
			case newClient.Name != "":
				in.NewClient = &newClient
			}

			res, err := appFrom(cmd).ledger.IssueBill(cmd.Context(), in)
			if err != nil {
				return err
			}
			if res.ClientCreated {
				cmd.Printf("client %s added (%s)\n", res.Client.Name, res.Client.ID)
			}
			cmd.Printf("bill %d issued to %s: amount %s, advance %s, due %s\n",
				res.Bill.Number, res.Bill.ClientName,
				res.Bill.TotalAmount, res.Bill.TotalAdvance, res.Bill.TotalActual)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "existing client ID")
	cmd.Flags().StringVar(&newClient.Name, "new-name", "", "name of a client to create with the bill")
	cmd.Flags().StringVar(&newClient.Address, "new-address", "", "address of the new client")
	cmd.Flags().StringVar(&newClient.Phone, "new-phone", "", "phone of the new client")
	cmd.Flags().StringVar(&newClient.Email, "new-email", "", "email of the new client")
	cmd.Flags().StringVar(&date, "date", "", "bill date, YYYY-MM-DD (default today)")
	cmd.Flags().StringArrayVar(&items, "item", nil, "bill line, repeatable")
	cmd.MarkFlagsMutuallyExclusive("client", "new-name")
	return cmd
}

func newBillEditCmd() *cobra.Command {
	var (
		date  string
		items []string
	)
	cmd := &cobra.Command{
		Use:   "edit BILL",
		Short: "Replace the date and lines of a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := appFrom(cmd).ledger
			b, err := resolveBill(cmd.Context(), l, args[0])
			if err != nil {
				return err
			}
			day := b.Date
			if date != "" {
				if day, err = parseDay(date); err != nil {
					return err
				}
			}
			lines, err := parseItems(items, day)
			if err != nil {
				return err
			}
			updated, err := l.UpdateBill(cmd.Context(), b.ID, bill.EditInput{Date: day, Items: lines})
			if err != nil {
				return err
			}
			cmd.Printf("bill %d updated: due %s, pending %s (%s)\n",
				updated.Number, updated.TotalActual, updated.PendingAmount, updated.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "new bill date, YYYY-MM-DD (default unchanged)")
	cmd.Flags().StringArrayVar(&items, "item", nil, "bill line, repeatable")
	return cmd
}

func newBillListCmd() *cobra.Command {
	var (
		clientID string
		status   string
		search   string
		pending  bool
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bills, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := bill.ListOpts{Status: bill.Status(status), PendingOnly: pending, Search: search}
			if status != "" && !opts.Status.Valid() {
				return haulage.ValidationError{Field: "status", Message: "must be pending, partial or paid"}
			}
			if clientID != "" {
				cid, err := id.ParseClientID(clientID)
				if err != nil {
					return err
				}
				opts.ClientID = cid
			}

			bills, err := appFrom(cmd).ledger.ListBills(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), bills)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NO\tDATE\tCLIENT\tITEMS\tDUE\tPAID\tPENDING\tSTATUS")
			for _, b := range bills {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
					b.Number, b.Date.Format("2006-01-02"), b.ClientName, len(b.Items),
					b.TotalActual, b.PaidAmount, b.PendingAmount, b.Status)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "only bills of this client")
	cmd.Flags().StringVar(&status, "status", "", "pending, partial or paid")
	cmd.Flags().BoolVar(&pending, "pending", false, "only bills with something left to pay")
	cmd.Flags().StringVar(&search, "search", "", "only bills whose number or client name contains this")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newBillShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show BILL",
		Short: "Print a bill as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := resolveBill(cmd.Context(), appFrom(cmd).ledger, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), b)
		},
	}
}

func newBillDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete BILL",
		Short: "Delete a bill and back its amounts out of the client totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := appFrom(cmd).ledger
			b, err := resolveBill(cmd.Context(), l, args[0])
			if err != nil {
				return err
			}
			if err := l.DeleteBill(cmd.Context(), b.ID); err != nil {
				return err
			}
			cmd.Printf("bill %d deleted\n", b.Number)
			return nil
		},
	}
}

func newBillRenderCmd() *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "render BILL",
		Short: "Render a printable bill document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := appFrom(cmd).ledger
			b, err := resolveBill(cmd.Context(), l, args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("bill-%d.%s", b.Number, format)
			}
			if err := writeFile(out, func(w io.Writer) error {
				return l.RenderBill(cmd.Context(), b.ID, format, w)
			}); err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "xlsx", "document format")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default bill-<no>.<format>)")
	return cmd
}

// resolveBill accepts either a bill ID or a printed bill number.
func resolveBill(ctx context.Context, l *haulage.Ledger, ref string) (*bill.Bill, error) {
	no, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		bid, err := id.ParseBillID(ref)
		if err != nil {
			return nil, err
		}
		return l.GetBill(ctx, bid)
	}

	bills, err := l.ListBills(ctx, bill.ListOpts{})
	if err != nil {
		return nil, err
	}
	for _, b := range bills {
		if b.Number == no {
			return b, nil
		}
	}
	return nil, fmt.Errorf("bill %d: %w", no, haulage.ErrBillNotFound)
}
