package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/xraph/haulage"
	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/export"
	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/settings"
	"github.com/xraph/haulage/store/memory"
	"github.com/xraph/haulage/types"
)

func fixture() (*client.Client, []*bill.Bill, []*payment.Payment) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	c := client.New(client.Input{Name: "Shree Logistics", Address: "GIDC, Vapi", Phone: "99999", Email: "a@b.in"})
	c.CreatedAt = day
	c.TotalBills = 2
	c.TotalAmount = types.Rupees(300)
	c.PaidAmount = types.Rupees(120)
	c.PendingAmount = types.Rupees(180)

	b1 := &bill.Bill{
		ID: id.NewBillID(), Number: 1001, ClientID: c.ID, ClientName: c.Name, ClientAddress: c.Address,
		Date: day,
		Items: bill.BuildItems([]bill.ItemInput{
			{Date: day, VehicleNo: "GJ15AT1234", LRNo: "77", Particulars: "Vapi to Surat", Qty: 2, Rate: types.Rupees(60), Advance: types.Rupees(20)},
		}),
		PaidAmount: types.Rupees(100),
	}
	b1.Recompute()
	b2 := &bill.Bill{
		ID: id.NewBillID(), Number: 1002, ClientID: c.ID, ClientName: c.Name,
		Date: day.AddDate(0, 0, 1),
		Items: bill.BuildItems([]bill.ItemInput{
			{Date: day, Qty: 1, Rate: types.Rupees(200)},
		}),
		PaidAmount: types.Rupees(20),
	}
	b2.Recompute()

	pays := []*payment.Payment{
		{ID: id.NewPaymentID(), ClientID: c.ID, BillID: b1.ID, Amount: types.Rupees(100), Date: day, Description: "cheque"},
		{ID: id.NewPaymentID(), ClientID: c.ID, BillID: b2.ID, Amount: types.Rupees(20), Date: day},
	}
	return c, []*bill.Bill{b1, b2}, pays
}

func TestWriteClientCSV(t *testing.T) {
	c, bills, _ := fixture()

	var buf bytes.Buffer
	if err := export.WriteClientCSV(&buf, c, bills); err != nil {
		t.Fatalf("WriteClientCSV: %v", err)
	}

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	// The blank separator line is skipped by the reader.
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5: %q", len(rows), rows)
	}
	if got := strings.Join(rows[0], "|"); got != "Client Name|Address|Phone|Email|Total Bills|Total Amount|Paid Amount|Pending Amount|Created Date" {
		t.Errorf("client header = %q", got)
	}
	if got := strings.Join(rows[1], "|"); got != "Shree Logistics|GIDC, Vapi|99999|a@b.in|2|300.00|120.00|180.00|05/03/2024" {
		t.Errorf("client row = %q", got)
	}
	if got := strings.Join(rows[2], "|"); got != "Bill No|Date|Total Amount|Paid Amount|Pending Amount|Status|Items Count" {
		t.Errorf("bill header = %q", got)
	}
	if got := strings.Join(rows[3], "|"); got != "1001|05/03/2024|120.00|100.00|0.00|paid|1" {
		t.Errorf("first bill row = %q", got)
	}
	if got := strings.Join(rows[4], "|"); got != "1002|06/03/2024|200.00|20.00|180.00|partial|1" {
		t.Errorf("second bill row = %q", got)
	}
}

func TestWriteClientCSVNoBills(t *testing.T) {
	c, _, _ := fixture()

	var buf bytes.Buffer
	if err := export.WriteClientCSV(&buf, c, nil); err != nil {
		t.Fatalf("WriteClientCSV: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[3], "Bill No,") {
		t.Errorf("last line = %q, want the bill header", lines[3])
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Shree Logistics", "Shree Logistics_data.csv"},
		{"../../etc/passwd", "_.._etc_passwd_data.csv"},
		{"A/B Roadways", "A_B Roadways_data.csv"},
		{`C:\Temp`, "C__Temp_data.csv"},
		{"..", "client_data.csv"},
		{"  ", "client_data.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := export.FileName(&client.Client{Name: tt.name}, "csv")
			if got != tt.want {
				t.Errorf("FileName(%q) = %q, want %q", tt.name, got, tt.want)
			}
			if filepath.Base(got) != got {
				t.Errorf("FileName(%q) = %q is not a single path element", tt.name, got)
			}
		})
	}
}

func TestWriteClientXLSX(t *testing.T) {
	c, bills, pays := fixture()

	var buf bytes.Buffer
	if err := export.WriteClientXLSX(&buf, c, bills, pays); err != nil {
		t.Fatalf("WriteClientXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if got := strings.Join(f.GetSheetList(), ","); got != "Client,Bills,Payments" {
		t.Errorf("sheets = %q", got)
	}

	cases := []struct {
		sheet, cell, want string
	}{
		{export.SheetClient, "A2", "Shree Logistics"},
		{export.SheetClient, "E2", "2"},
		{export.SheetClient, "H2", "180"},
		{export.SheetBills, "A1", "Bill No"},
		{export.SheetBills, "C2", "120"},
		{export.SheetBills, "A3", "1002"},
		{export.SheetBills, "F3", "partial"},
		{export.SheetPayments, "A2", "1001"},
		{export.SheetPayments, "C2", "100"},
		{export.SheetPayments, "D2", "cheque"},
		{export.SheetPayments, "A3", "1002"},
	}
	for _, tc := range cases {
		got, err := f.GetCellValue(tc.sheet, tc.cell)
		if err != nil {
			t.Fatalf("%s!%s: %v", tc.sheet, tc.cell, err)
		}
		if got != tc.want {
			t.Errorf("%s!%s = %q, want %q", tc.sheet, tc.cell, got, tc.want)
		}
	}
}

func TestXLSXFormatter(t *testing.T) {
	_, bills, _ := fixture()
	fm := export.NewXLSXFormatter(nil)

	if fm.Format() != "xlsx" || fm.ContentType() != export.XLSXContentType {
		t.Fatalf("format = %q, content type = %q", fm.Format(), fm.ContentType())
	}

	s := settings.Default()
	s.Phone2 = ""

	var buf bytes.Buffer
	if err := fm.RenderBill(context.Background(), &buf, bills[0], s); err != nil {
		t.Fatalf("RenderBill: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	cases := []struct {
		cell, want string
	}{
		{"A1", "KHODIYAR ENTERPRISE"},
		{"A2", export.Tagline},
		{"A4", "Mobile: +91 98765 43210"},
		{"A7", "Bill No: 1001"},
		{"A8", "M/s: Shree Logistics"},
		{"A11", "Date"},
		{"B12", "GJ15AT1234"},
		{"E12", "2"},
		{"G12", "120"},
		{"I12", "100"},
		{"A13", "Total"},
		{"I13", "100"},
		{"A15", "Bank Details:"},
	}
	for _, tc := range cases {
		got, err := f.GetCellValue(export.SheetBill, tc.cell)
		if err != nil {
			t.Fatalf("%s: %v", tc.cell, err)
		}
		if got != tc.want {
			t.Errorf("%s = %q, want %q", tc.cell, got, tc.want)
		}
	}
}

func TestLoadStatement(t *testing.T) {
	ctx := context.Background()
	l := haulage.New(memory.New())
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	res, err := l.IssueBill(ctx, bill.IssueInput{
		NewClient: &client.Input{Name: "Om Traders", Address: "Valsad"},
		Date:      day,
		Items:     []bill.ItemInput{{Qty: 1, Rate: types.Rupees(500)}},
	})
	if err != nil {
		t.Fatalf("IssueBill: %v", err)
	}
	other, err := l.AddClient(ctx, client.Input{Name: "Other", Address: "Surat"})
	if err != nil {
		t.Fatalf("AddClient: %v", err)
	}
	if _, err := l.IssueBill(ctx, bill.IssueInput{
		ClientID: other.ID, Date: day,
		Items: []bill.ItemInput{{Qty: 1, Rate: types.Rupees(9)}},
	}); err != nil {
		t.Fatalf("IssueBill other: %v", err)
	}
	if _, err := l.RecordPayment(ctx, payment.Input{ClientID: res.Client.ID, Amount: types.Rupees(200), Date: day}); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	st, err := export.LoadStatement(ctx, l, res.Client.ID)
	if err != nil {
		t.Fatalf("LoadStatement: %v", err)
	}
	if len(st.Bills) != 1 || len(st.Payments) != 1 {
		t.Fatalf("bills = %d, payments = %d, want 1 and 1", len(st.Bills), len(st.Payments))
	}
	if !st.Client.PendingAmount.Equal(types.Rupees(300)) {
		t.Errorf("pending = %s, want 300", st.Client.PendingAmount)
	}

	for _, format := range export.Formats {
		var buf bytes.Buffer
		if err := st.Write(&buf, format); err != nil {
			t.Errorf("Write(%s): %v", format, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Write(%s) wrote nothing", format)
		}
		if export.ContentType(format) == "" {
			t.Errorf("no content type for %s", format)
		}
	}
	if err := st.Write(&bytes.Buffer{}, "pdf"); err == nil {
		t.Error("Write(pdf) succeeded, want an error")
	}

	if _, err := export.LoadStatement(ctx, l, id.NewClientID()); !haulage.IsNotFound(err) {
		t.Errorf("unknown client: err = %v, want not found", err)
	}
}
