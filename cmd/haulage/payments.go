package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/types"
)

func newPayCmd() *cobra.Command {
	var (
		clientID    string
		amount      string
		date        string
		description string
	)
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Record a payment and apply it to the oldest open bills",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cid, err := id.ParseClientID(clientID)
			if err != nil {
				return err
			}
			amt, err := types.ParseINR(amount)
			if err != nil {
				return err
			}
			day, err := parseDay(date)
			if err != nil {
				return err
			}

			res, err := appFrom(cmd).ledger.RecordPayment(cmd.Context(), payment.Input{
				ClientID:    cid,
				Amount:      amt,
				Date:        day,
				Description: description,
			})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BILL\tAPPLIED\tPENDING\tSTATUS")
			for i, b := range res.Bills {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.Number, res.Payments[i].Amount, b.PendingAmount, b.Status)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if res.Remaining.IsPositive() {
				cmd.Printf("%s could not be applied to any bill\n", res.Remaining)
			}
			cmd.Printf("%s now owes %s\n", res.Client.Name, res.Client.PendingAmount)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "client ID")
	cmd.Flags().StringVar(&amount, "amount", "", "amount received in rupees")
	cmd.Flags().StringVar(&date, "date", "", "payment date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&description, "description", "", "note stored with each applied share")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
