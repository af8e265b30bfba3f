package bill_test

import (
	"errors"
	"testing"
	"time"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/types"
)

func TestBuildItem(t *testing.T) {
	tests := []struct {
		name    string
		in      bill.ItemInput
		amount  types.Money
		advance types.Money
		actual  types.Money
	}{
		{"qty times rate", bill.ItemInput{Qty: 2, Rate: types.Rupees(100), Advance: types.Rupees(20)}, types.Rupees(200), types.Rupees(20), types.Rupees(180)},
		{"no advance", bill.ItemInput{Qty: 3, Rate: types.INR(3350)}, types.INR(10050), types.INR(0), types.INR(10050)},
		{"zero rate", bill.ItemInput{Qty: 1, Rate: types.INR(0)}, types.INR(0), types.INR(0), types.INR(0)},
		{"advance above amount", bill.ItemInput{Qty: 1, Rate: types.Rupees(50), Advance: types.Rupees(80)}, types.Rupees(50), types.Rupees(80), types.Rupees(-30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := bill.BuildItem(tt.in)
			if !it.Amount.Equal(tt.amount) {
				t.Errorf("Amount = %v, want %v", it.Amount, tt.amount)
			}
			if !it.Actual.Equal(tt.actual) {
				t.Errorf("Actual = %v, want %v", it.Actual, tt.actual)
			}
			if !it.Actual.Equal(it.Amount.Subtract(it.Advance)) {
				t.Errorf("Actual %v != Amount %v - Advance %v", it.Actual, it.Amount, it.Advance)
			}
			if it.ID.IsNil() {
				t.Error("item should get an ID")
			}
		})
	}
}

func TestRecompute(t *testing.T) {
	b := &bill.Bill{
		Items: bill.BuildItems([]bill.ItemInput{
			{Qty: 2, Rate: types.Rupees(100), Advance: types.Rupees(20)},
			{Qty: 1, Rate: types.Rupees(300), Advance: types.Rupees(0)},
		}),
	}
	b.Recompute()

	if !b.TotalAmount.Equal(types.Rupees(500)) {
		t.Errorf("TotalAmount = %v, want ₹500", b.TotalAmount)
	}
	if !b.TotalAdvance.Equal(types.Rupees(20)) {
		t.Errorf("TotalAdvance = %v, want ₹20", b.TotalAdvance)
	}
	if !b.TotalActual.Equal(b.TotalAmount.Subtract(b.TotalAdvance)) {
		t.Errorf("TotalActual = %v, want TotalAmount - TotalAdvance", b.TotalActual)
	}
	if !b.PendingAmount.Equal(types.Rupees(480)) || b.Status != bill.StatusPending {
		t.Errorf("fresh bill: pending %v status %s", b.PendingAmount, b.Status)
	}

	// Shrinking the bill below what was already paid floors pending at zero.
	b.PaidAmount = types.Rupees(400)
	b.Items = b.Items[1:]
	b.Recompute()
	if !b.PendingAmount.IsZero() || b.Status != bill.StatusPaid {
		t.Errorf("overpaid bill: pending %v status %s, want 0 paid", b.PendingAmount, b.Status)
	}
}

func TestDeriveStatus(t *testing.T) {
	total := types.Rupees(500)
	tests := []struct {
		name    string
		paid    types.Money
		want    bill.Status
		pending types.Money
	}{
		{"unpaid", types.Rupees(0), bill.StatusPending, types.Rupees(500)},
		{"partly paid", types.Rupees(200), bill.StatusPartial, types.Rupees(300)},
		{"fully paid", types.Rupees(500), bill.StatusPaid, types.Rupees(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pending := total.Subtract(tt.paid)
			if !pending.Equal(tt.pending) {
				t.Fatalf("pending = %v, want %v", pending, tt.pending)
			}
			if got := bill.DeriveStatus(pending, total); got != tt.want {
				t.Errorf("DeriveStatus(%v, %v) = %s, want %s", pending, total, got, tt.want)
			}
		})
	}

	if got := bill.DeriveStatus(types.Rupees(0), types.Rupees(0)); got != bill.StatusPaid {
		t.Errorf("zero-value bill should be paid, got %s", got)
	}
}

func TestApply(t *testing.T) {
	b := &bill.Bill{Items: bill.BuildItems([]bill.ItemInput{{Qty: 1, Rate: types.Rupees(100)}})}
	b.Recompute()

	b.Apply(types.Rupees(30))
	if b.Status != bill.StatusPartial || !b.PendingAmount.Equal(types.Rupees(70)) {
		t.Fatalf("after 30: status %s pending %v", b.Status, b.PendingAmount)
	}
	b.Apply(types.Rupees(70))
	if b.Status != bill.StatusPaid || !b.PaidAmount.Equal(types.Rupees(100)) {
		t.Fatalf("after 100: status %s paid %v", b.Status, b.PaidAmount)
	}
}

func TestListOptsMatch(t *testing.T) {
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	b := &bill.Bill{Date: jan, Status: bill.StatusPartial, PendingAmount: types.Rupees(10)}

	tests := []struct {
		name string
		opts bill.ListOpts
		want bool
	}{
		{"no filter", bill.ListOpts{}, true},
		{"status match", bill.ListOpts{Status: bill.StatusPartial}, true},
		{"status mismatch", bill.ListOpts{Status: bill.StatusPaid}, false},
		{"pending only", bill.ListOpts{PendingOnly: true}, true},
		{"before range", bill.ListOpts{Start: jan.AddDate(0, 0, 1)}, false},
		{"after range", bill.ListOpts{End: jan.AddDate(0, 0, -1)}, false},
		{"inside range", bill.ListOpts{Start: jan, End: jan}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Match(b); got != tt.want {
				t.Errorf("Match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBillNo(t *testing.T) {
	b := &bill.Bill{Number: 1001}
	if b.BillNo() != "1001" {
		t.Errorf("BillNo = %q", b.BillNo())
	}
}

func TestCheckAmounts(t *testing.T) {
	if err := bill.CheckAmounts([]bill.ItemInput{{Qty: 2, Rate: types.Rupees(100)}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		in   []bill.ItemInput
		line int
	}{
		{"line wraps", []bill.ItemInput{{Qty: 1, Rate: types.INR(1)}, {Qty: 1 << 62, Rate: types.INR(3)}}, 1},
		{"total past cap", []bill.ItemInput{{Qty: 1, Rate: types.INR(types.MaxAmount)}, {Qty: 1, Rate: types.INR(1)}}, -1},
		{"advances past cap", []bill.ItemInput{{Qty: 1, Advance: types.INR(types.MaxAmount)}, {Qty: 1, Advance: types.INR(1)}}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bill.CheckAmounts(tt.in)
			var ae *bill.AmountError
			if !errors.As(err, &ae) || ae.Line != tt.line {
				t.Fatalf("err = %v, want line %d", err, tt.line)
			}
			if !errors.Is(err, types.ErrOutOfRange) {
				t.Errorf("err does not wrap ErrOutOfRange: %v", err)
			}
		})
	}
}
