package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/payment"
)

// Source is the read side of the ledger a statement is built from.
// *haulage.Ledger satisfies it.
type Source interface {
	GetClient(ctx context.Context, clientID id.ClientID) (*client.Client, error)
	ListBills(ctx context.Context, opts bill.ListOpts) ([]*bill.Bill, error)
	ListPayments(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error)
}

// Statement is everything exported for one client.
type Statement struct {
	Client   *client.Client
	Bills    []*bill.Bill
	Payments []*payment.Payment
}

// LoadStatement reads a client with all of its bills and payments, newest
// first.
func LoadStatement(ctx context.Context, src Source, clientID id.ClientID) (*Statement, error) {
	c, err := src.GetClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	bills, err := src.ListBills(ctx, bill.ListOpts{ClientID: clientID})
	if err != nil {
		return nil, fmt.Errorf("export: list bills: %w", err)
	}
	pays, err := src.ListPayments(ctx, payment.ListOpts{ClientID: clientID})
	if err != nil {
		return nil, fmt.Errorf("export: list payments: %w", err)
	}
	return &Statement{Client: c, Bills: bills, Payments: pays}, nil
}

// Formats lists the statement formats Write understands.
var Formats = []string{"csv", "xlsx"}

// ContentType returns the MIME type of a statement format, or "".
func ContentType(format string) string {
	switch format {
	case "csv":
		return "text/csv; charset=utf-8"
	case "xlsx":
		return XLSXContentType
	}
	return ""
}

// Write renders st as format ("csv" or "xlsx") to w.
func (st *Statement) Write(w io.Writer, format string) error {
	switch format {
	case "csv":
		return WriteClientCSV(w, st.Client, st.Bills)
	case "xlsx":
		return WriteClientXLSX(w, st.Client, st.Bills, st.Payments)
	}
	return fmt.Errorf("export: unknown statement format %q", format)
}
