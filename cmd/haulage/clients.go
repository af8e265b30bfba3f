package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/id"
)

func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage clients",
	}
	cmd.AddCommand(newClientAddCmd(), newClientUpdateCmd(), newClientListCmd(), newClientShowCmd())
	return cmd
}

func clientFlags(cmd *cobra.Command, in *client.Input) {
	cmd.Flags().StringVar(&in.Name, "name", "", "client name")
	cmd.Flags().StringVar(&in.Address, "address", "", "postal address")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
}

func newClientAddCmd() *cobra.Command {
	var in client.Input
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := appFrom(cmd).ledger.AddClient(cmd.Context(), in)
			if err != nil {
				return err
			}
			cmd.Printf("client %s added (%s)\n", c.Name, c.ID)
			return nil
		},
	}
	clientFlags(cmd, &in)
	return cmd
}

func newClientUpdateCmd() *cobra.Command {
	var in client.Input
	cmd := &cobra.Command{
		Use:   "update CLIENT_ID",
		Short: "Replace a client's contact details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := id.ParseClientID(args[0])
			if err != nil {
				return err
			}
			c, err := appFrom(cmd).ledger.UpdateClient(cmd.Context(), cid, in)
			if err != nil {
				return err
			}
			cmd.Printf("client %s updated\n", c.Name)
			return nil
		},
	}
	clientFlags(cmd, &in)
	return cmd
}

func newClientListCmd() *cobra.Command {
	var (
		asJSON bool
		search string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			clients, err := appFrom(cmd).ledger.ListClients(cmd.Context(), client.ListOpts{Search: search})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), clients)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPHONE\tBILLS\tTOTAL\tPAID\tPENDING")
			for _, c := range clients {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
					c.ID, c.Name, c.Phone, c.TotalBills, c.TotalAmount, c.PaidAmount, c.PendingAmount)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().StringVar(&search, "search", "", "only clients whose name or phone contains this")
	return cmd
}

func newClientShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show CLIENT_ID",
		Short: "Print a client as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := id.ParseClientID(args[0])
			if err != nil {
				return err
			}
			c, err := appFrom(cmd).ledger.GetClient(cmd.Context(), cid)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c)
		},
	}
}
