package payment

import (
	"sort"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/types"
)

// Allocation is the outcome of spreading one received payment over a
// client's outstanding bills.
type Allocation struct {
	Payments []*Payment   `json:"payments"`
	Bills    []*bill.Bill `json:"bills"`
	Applied  types.Money  `json:"applied"`
	// Remaining is the part of the payment no outstanding bill could absorb.
	Remaining types.Money `json:"remaining"`
}

// Allocate walks the bills with something pending, oldest bill date first,
// and applies in.Amount greedily. Bills with equal dates keep their input
// order. The bills it touches are cloned and returned updated; the inputs
// are not modified. Payment records are built but not persisted.
func Allocate(bills []*bill.Bill, in Input) *Allocation {
	open := make([]*bill.Bill, 0, len(bills))
	for _, b := range bills {
		if b.PendingAmount.IsPositive() {
			open = append(open, b)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].Date.Before(open[j].Date)
	})

	out := &Allocation{
		Applied:   types.Zero(in.Amount.Currency),
		Remaining: in.Amount,
	}
	for _, b := range open {
		if !out.Remaining.IsPositive() {
			break
		}
		applied := out.Remaining.Min(b.PendingAmount)

		updated := b.Clone()
		updated.Apply(applied)
		updated.Touch()

		out.Payments = append(out.Payments, &Payment{
			Entity:      types.NewEntity(),
			ID:          id.NewPaymentID(),
			ClientID:    in.ClientID,
			BillID:      b.ID,
			Amount:      applied,
			Date:        in.Date,
			Description: in.Description,
		})
		out.Bills = append(out.Bills, updated)
		out.Applied = out.Applied.Add(applied)
		out.Remaining = out.Remaining.Subtract(applied)
	}
	return out
}
