package bill

import (
	"strconv"

	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/types"
)

// DeriveStatus maps a pending amount onto a bill status. Nothing pending is
// paid, the whole actual due pending is pending, anything between is partial.
func DeriveStatus(pending, totalActual types.Money) Status {
	switch {
	case !pending.IsPositive():
		return StatusPaid
	case pending.Amount >= totalActual.Amount:
		return StatusPending
	default:
		return StatusPartial
	}
}

// BuildItem derives amount and actual for a line: amount = qty * rate,
// actual = amount - advance. Callers run CheckAmounts first.
func BuildItem(in ItemInput) Item {
	amount := in.Rate.Multiply(in.Qty)
	return Item{
		ID:          id.NewBillItemID(),
		Date:        in.Date,
		VehicleNo:   in.VehicleNo,
		LRNo:        in.LRNo,
		Particulars: in.Particulars,
		Qty:         in.Qty,
		Rate:        in.Rate,
		Amount:      amount,
		Advance:     in.Advance,
		Actual:      amount.Subtract(in.Advance),
	}
}

// AmountError names the line whose derived amount is out of range. Line is
// -1 when every line fits but the bill total does not.
type AmountError struct {
	Line int
	Err  error
}

func (e *AmountError) Error() string {
	if e.Line < 0 {
		return "bill total: " + e.Err.Error()
	}
	return "line " + strconv.Itoa(e.Line) + ": " + e.Err.Error()
}

func (e *AmountError) Unwrap() error { return e.Err }

// CheckAmounts confirms that every line amount and the bill's totals stay
// within types.MaxAmount. It expects validated input in one currency.
func CheckAmounts(in []ItemInput) error {
	total := types.Zero(types.DefaultCurrency)
	advance := types.Zero(types.DefaultCurrency)
	for i, it := range in {
		amount, err := it.Rate.MultiplyChecked(it.Qty)
		if err != nil {
			return &AmountError{Line: i, Err: err}
		}
		if total, err = total.AddChecked(amount); err != nil {
			return &AmountError{Line: -1, Err: err}
		}
		if advance, err = advance.AddChecked(it.Advance); err != nil {
			return &AmountError{Line: -1, Err: err}
		}
	}
	return nil
}

// BuildItems derives every line of a bill.
func BuildItems(in []ItemInput) []Item {
	items := make([]Item, 0, len(in))
	for _, it := range in {
		items = append(items, BuildItem(it))
	}
	return items
}

// Recompute sets the bill totals from its items, keeps PaidAmount, and
// re-derives PendingAmount (floored at zero) and Status.
func (b *Bill) Recompute() {
	total := types.Zero(types.DefaultCurrency)
	advance := types.Zero(types.DefaultCurrency)
	for _, it := range b.Items {
		total = total.Add(it.Amount)
		advance = advance.Add(it.Advance)
	}
	b.TotalAmount = total
	b.TotalAdvance = advance
	b.TotalActual = total.Subtract(advance)
	if b.PaidAmount.Currency == "" {
		b.PaidAmount = types.Zero(types.DefaultCurrency)
	}
	b.PendingAmount = b.TotalActual.Subtract(b.PaidAmount).FloorZero()
	b.Status = DeriveStatus(b.PendingAmount, b.TotalActual)
}

// Apply records amount as paid against the bill. The caller never applies
// more than PendingAmount.
func (b *Bill) Apply(amount types.Money) {
	b.PaidAmount = b.PaidAmount.Add(amount)
	b.PendingAmount = b.PendingAmount.Subtract(amount)
	if b.PendingAmount.IsZero() {
		b.Status = StatusPaid
	} else {
		b.Status = StatusPartial
	}
}
