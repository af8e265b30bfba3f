// Package export writes client statements and bill documents for people
// outside the ledger: CSV and spreadsheet statements per client, and an
// xlsx bill formatter for Ledger.RenderBill.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
)

// DateLayout is how dates are printed in statements.
const DateLayout = "02/01/2006"

var (
	clientHeader = []string{
		"Client Name", "Address", "Phone", "Email", "Total Bills",
		"Total Amount", "Paid Amount", "Pending Amount", "Created Date",
	}
	billHeader = []string{
		"Bill No", "Date", "Total Amount", "Paid Amount", "Pending Amount", "Status", "Items Count",
	}
	paymentHeader = []string{"Bill No", "Date", "Amount", "Description"}
)

var unsafeNameChars = strings.NewReplacer("/", "_", `\`, "_", ":", "_", `"`, "", "\x00", "")

// FileName is the statement file name for c with the given extension. The
// client name is reduced to a single path element.
func FileName(c *client.Client, ext string) string {
	name := strings.Trim(strings.TrimSpace(unsafeNameChars.Replace(c.Name)), ".")
	if name == "" {
		name = "client"
	}
	return fmt.Sprintf("%s_data.%s", name, ext)
}

// WriteClientCSV writes a statement for c: a header and a row with the
// client's contact details and totals, a blank line, then a header and one
// row per bill in the order given.
func WriteClientCSV(w io.Writer, c *client.Client, bills []*bill.Bill) error {
	cw := csv.NewWriter(w)

	rows := make([][]string, 0, len(bills)+4)
	rows = append(rows, clientHeader, clientRow(c), nil, billHeader)
	for _, b := range bills {
		rows = append(rows, billRow(b))
	}

	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("export: write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: write csv: %w", err)
	}
	return nil
}

func clientRow(c *client.Client) []string {
	return []string{
		c.Name,
		c.Address,
		c.Phone,
		c.Email,
		strconv.Itoa(c.TotalBills),
		c.TotalAmount.FormatMajor(),
		c.PaidAmount.FormatMajor(),
		c.PendingAmount.FormatMajor(),
		c.CreatedAt.Format(DateLayout),
	}
}

func billRow(b *bill.Bill) []string {
	return []string{
		b.BillNo(),
		b.Date.Format(DateLayout),
		b.TotalAmount.FormatMajor(),
		b.PaidAmount.FormatMajor(),
		b.PendingAmount.FormatMajor(),
		string(b.Status),
		strconv.Itoa(len(b.Items)),
	}
}
