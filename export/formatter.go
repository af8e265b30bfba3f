package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/plugin"
	"github.com/xraph/haulage/settings"
)

// Tagline is printed under the company name on every bill.
const Tagline = "TRANSPORT CONTRACTOR AND COMMISSION AGENT"

// SheetBill is the only sheet of a rendered bill.
const SheetBill = "Bill"

var itemHeader = []string{
	"Date", "Vehicle No", "LR No", "Particulars", "Qty", "Rate", "Amount", "Advance", "Actual",
}

// Compile-time interface checks.
var (
	_ plugin.Plugin        = (*XLSXFormatter)(nil)
	_ plugin.BillFormatter = (*XLSXFormatter)(nil)
)

// XLSXFormatter renders a bill as a one-sheet workbook laid out like the
// printed bill: company block, bill number and date, the client, the item
// table, the total, bank details and the signature line.
type XLSXFormatter struct {
	logger *slog.Logger
}

// NewXLSXFormatter returns the built-in "xlsx" bill formatter.
func NewXLSXFormatter(logger *slog.Logger) *XLSXFormatter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXFormatter{logger: logger}
}

func (x *XLSXFormatter) Name() string        { return "xlsx-formatter" }
func (x *XLSXFormatter) Format() string      { return "xlsx" }
func (x *XLSXFormatter) ContentType() string { return XLSXContentType }

// RenderBill implements plugin.BillFormatter.
func (x *XLSXFormatter) RenderBill(_ context.Context, w io.Writer, b *bill.Bill, s *settings.CompanySettings) error {
	if s == nil {
		s = settings.Default()
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetBill); err != nil {
		return fmt.Errorf("export: xlsx bill: %w", err)
	}

	sw := sheetWriter{f: f}
	last := lastColumn()

	phone := "Mobile: " + s.Phone
	if s.Phone2 != "" {
		phone += ", " + s.Phone2
	}
	head := []string{strings.ToUpper(s.Name), Tagline, s.Address, phone, "PAN No: " + s.PANNo}
	for i, line := range head {
		sw.set(SheetBill, fmt.Sprintf("A%d", i+1), line)
		sw.merge(SheetBill, fmt.Sprintf("A%d", i+1), fmt.Sprintf("%s%d", last, i+1))
	}

	sw.set(SheetBill, "A7", "Bill No: "+b.BillNo())
	sw.set(SheetBill, "G7", "Date: "+b.Date.Format(DateLayout))
	sw.set(SheetBill, "A8", "M/s: "+b.ClientName)
	sw.set(SheetBill, "A9", b.ClientAddress)
	sw.merge(SheetBill, "A9", last+"9")

	const tableRow = 11
	sw.header(SheetBill, tableRow, itemHeader)

	n := tableRow
	for _, it := range b.Items {
		n++
		sw.row(SheetBill, n, []interface{}{
			it.Date.Format(DateLayout), it.VehicleNo, it.LRNo, it.Particulars, it.Qty,
			rupees(it.Rate), rupees(it.Amount), rupees(it.Advance), rupees(it.Actual),
		})
	}

	n++
	sw.row(SheetBill, n, []interface{}{
		"Total", nil, nil, nil, nil, nil,
		rupees(b.TotalAmount), rupees(b.TotalAdvance), rupees(b.TotalActual),
	})
	totalRow := n

	n += 2
	bank := []string{
		"Bank Details:",
		"Bank: " + s.BankName,
		"A/c No: " + s.AccountNo,
		"IFSC: " + s.IFSCCode,
		"Branch: " + s.BankBranch,
	}
	for i, line := range bank {
		sw.set(SheetBill, fmt.Sprintf("A%d", n+i), line)
	}
	sw.set(SheetBill, fmt.Sprintf("G%d", n), "For "+s.Name)
	sw.set(SheetBill, fmt.Sprintf("G%d", n+3), s.Proprietor)
	sw.set(SheetBill, fmt.Sprintf("G%d", n+4), "Proprietor")

	if sw.err == nil {
		sw.err = f.SetColWidth(SheetBill, "A", "C", 12)
	}
	if sw.err == nil {
		sw.err = f.SetColWidth(SheetBill, "D", "D", 30)
	}
	sw.bold(SheetBill, 1, 1)
	sw.bold(SheetBill, totalRow, len(itemHeader))
	if sw.err != nil {
		return fmt.Errorf("export: xlsx bill %s: %w", b.BillNo(), sw.err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: xlsx bill %s: write: %w", b.BillNo(), err)
	}
	x.logger.Debug("bill rendered", "bill_no", b.BillNo(), "format", x.Format(), "items", len(b.Items))
	return nil
}

func lastColumn() string {
	col, _ := excelize.ColumnNumberToName(len(itemHeader))
	return col
}
