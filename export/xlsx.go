package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/types"
)

// XLSXContentType is the MIME type of every workbook written here.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names of a client workbook.
const (
	SheetClient   = "Client"
	SheetBills    = "Bills"
	SheetPayments = "Payments"
)

// WriteClientXLSX writes the statement of WriteClientCSV as a workbook with
// one sheet each for the client, its bills and its payments. Amounts are
// numeric cells in rupees.
func WriteClientXLSX(w io.Writer, c *client.Client, bills []*bill.Bill, payments []*payment.Payment) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetClient); err != nil {
		return fmt.Errorf("export: xlsx: %w", err)
	}
	for _, name := range []string{SheetBills, SheetPayments} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("export: xlsx: new sheet %s: %w", name, err)
		}
	}

	sw := sheetWriter{f: f}
	sw.header(SheetClient, 1, clientHeader)
	sw.row(SheetClient, 2, []interface{}{
		c.Name, c.Address, c.Phone, c.Email, c.TotalBills,
		rupees(c.TotalAmount), rupees(c.PaidAmount), rupees(c.PendingAmount),
		c.CreatedAt.Format(DateLayout),
	})

	numbers := make(map[string]string, len(bills))
	sw.header(SheetBills, 1, billHeader)
	for i, b := range bills {
		numbers[b.ID.String()] = b.BillNo()
		sw.row(SheetBills, i+2, []interface{}{
			b.Number, b.Date.Format(DateLayout),
			rupees(b.TotalAmount), rupees(b.PaidAmount), rupees(b.PendingAmount),
			string(b.Status), len(b.Items),
		})
	}

	sw.header(SheetPayments, 1, paymentHeader)
	for i, p := range payments {
		sw.row(SheetPayments, i+2, []interface{}{
			numbers[p.BillID.String()], p.Date.Format(DateLayout), rupees(p.Amount), p.Description,
		})
	}
	if sw.err != nil {
		return fmt.Errorf("export: xlsx: %w", sw.err)
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: xlsx: write: %w", err)
	}
	return nil
}

// sheetWriter keeps the first error so a sheet can be filled without
// checking every call.
type sheetWriter struct {
	f     *excelize.File
	err   error
	style int
}

// header writes cols as row n of sheet in bold.
func (s *sheetWriter) header(sheet string, n int, cols []string) {
	row := make([]interface{}, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	s.row(sheet, n, row)
	s.bold(sheet, n, len(cols))
}

func (s *sheetWriter) row(sheet string, n int, values []interface{}) {
	if s.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetSheetRow(sheet, cell, &values)
}

func (s *sheetWriter) set(sheet, cell string, v interface{}) {
	if s.err != nil {
		return
	}
	s.err = s.f.SetCellValue(sheet, cell, v)
}

func (s *sheetWriter) merge(sheet, from, to string) {
	if s.err != nil {
		return
	}
	s.err = s.f.MergeCell(sheet, from, to)
}

// bold styles the first cols cells of row n.
func (s *sheetWriter) bold(sheet string, n, cols int) {
	if s.err != nil {
		return
	}
	if s.style == 0 {
		if s.style, s.err = s.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); s.err != nil {
			return
		}
	}
	from, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		s.err = err
		return
	}
	to, err := excelize.CoordinatesToCellName(cols, n)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetCellStyle(sheet, from, to, s.style)
}

func rupees(m types.Money) float64 {
	return m.Decimal().InexactFloat64()
}
