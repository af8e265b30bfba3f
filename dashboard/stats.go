// Package dashboard derives the summary figures shown on the ledger's front
// page. It only reads; everything is computed from a snapshot.
package dashboard

import (
	"time"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/store"
	"github.com/xraph/haulage/types"
)

// RecentLimit is the length of every recency list.
const RecentLimit = 5

type Stats struct {
	TotalClients int `json:"total_clients"`
	TotalBills   int `json:"total_bills"`

	// TotalRevenue sums the bills' paid amounts, not the payment records.
	// The two diverge when bills are deleted after being paid.
	TotalRevenue     types.Money `json:"total_revenue"`
	PendingAmount    types.Money `json:"pending_amount"`
	ThisMonthRevenue types.Money `json:"this_month_revenue"`

	RecentClients  []*client.Client   `json:"recent_clients"`
	RecentBills    []*bill.Bill       `json:"recent_bills"`
	RecentPayments []*payment.Payment `json:"recent_payments"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Compute scans snap. "This month" is the calendar month of now, in now's
// location; a payment counts when its date falls in the same year and month.
// Recency lists are the first RecentLimit entries in store order.
func Compute(snap *store.Snapshot, now time.Time) *Stats {
	st := &Stats{
		TotalRevenue:     types.Zero(types.DefaultCurrency),
		PendingAmount:    types.Zero(types.DefaultCurrency),
		ThisMonthRevenue: types.Zero(types.DefaultCurrency),
		GeneratedAt:      now,
	}
	if snap == nil {
		return st
	}

	st.TotalClients = len(snap.Clients)
	st.TotalBills = len(snap.Bills)

	for _, b := range snap.Bills {
		st.TotalRevenue = st.TotalRevenue.Add(b.PaidAmount)
		st.PendingAmount = st.PendingAmount.Add(b.PendingAmount)
	}

	year, month, _ := now.Date()
	for _, p := range snap.Payments {
		py, pm, _ := p.Date.Date()
		if py == year && pm == month {
			st.ThisMonthRevenue = st.ThisMonthRevenue.Add(p.Amount)
		}
	}

	st.RecentClients = head(snap.Clients)
	st.RecentBills = head(snap.Bills)
	st.RecentPayments = head(snap.Payments)
	return st
}

func head[T any](in []T) []T {
	if len(in) > RecentLimit {
		in = in[:RecentLimit]
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
