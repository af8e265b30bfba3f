package dashboard_test

import (
	"testing"
	"time"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/dashboard"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/store"
	"github.com/xraph/haulage/types"
)

func TestComputeNil(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	st := dashboard.Compute(nil, now)
	if st.TotalClients != 0 || st.TotalBills != 0 {
		t.Errorf("expected empty counts, got %+v", st)
	}
	if !st.TotalRevenue.IsZero() || !st.PendingAmount.IsZero() || !st.ThisMonthRevenue.IsZero() {
		t.Error("expected zero money figures")
	}
	if !st.GeneratedAt.Equal(now) {
		t.Errorf("GeneratedAt = %v", st.GeneratedAt)
	}
}

func TestCompute(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	snap := &store.Snapshot{}
	for i := 0; i < 7; i++ {
		snap.Clients = append(snap.Clients, &client.Client{Name: string(rune('A' + i))})
	}
	snap.Bills = []*bill.Bill{
		{Number: 1003, PaidAmount: types.Rupees(100), PendingAmount: types.Rupees(0)},
		{Number: 1002, PaidAmount: types.Rupees(30), PendingAmount: types.Rupees(70)},
		{Number: 1001, PaidAmount: types.Rupees(0), PendingAmount: types.Rupees(250)},
	}
	snap.Payments = []*payment.Payment{
		{Amount: types.Rupees(100), Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Amount: types.Rupees(30), Date: time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)},
		{Amount: types.Rupees(45), Date: time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC)},
	}

	st := dashboard.Compute(snap, now)

	if st.TotalClients != 7 || st.TotalBills != 3 {
		t.Errorf("counts = %d clients, %d bills", st.TotalClients, st.TotalBills)
	}
	if !st.TotalRevenue.Equal(types.Rupees(130)) {
		t.Errorf("TotalRevenue = %v, want ₹130", st.TotalRevenue)
	}
	if !st.PendingAmount.Equal(types.Rupees(320)) {
		t.Errorf("PendingAmount = %v, want ₹320", st.PendingAmount)
	}
	// Same month a year earlier does not count.
	if !st.ThisMonthRevenue.Equal(types.Rupees(100)) {
		t.Errorf("ThisMonthRevenue = %v, want ₹100", st.ThisMonthRevenue)
	}

	if len(st.RecentClients) != dashboard.RecentLimit {
		t.Fatalf("RecentClients has %d entries", len(st.RecentClients))
	}
	if st.RecentClients[0].Name != "A" {
		t.Errorf("recent clients should follow store order, got %q first", st.RecentClients[0].Name)
	}
	if len(st.RecentBills) != 3 || st.RecentBills[0].Number != 1003 {
		t.Errorf("RecentBills = %d entries", len(st.RecentBills))
	}
	if len(st.RecentPayments) != 3 {
		t.Errorf("RecentPayments = %d entries", len(st.RecentPayments))
	}
}

func TestComputeUsesClockLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 1 April 00:30 in IST is still 31 March in UTC.
	now := time.Date(2024, 4, 1, 0, 30, 0, 0, ist)
	snap := &store.Snapshot{Payments: []*payment.Payment{
		{Amount: types.Rupees(10), Date: time.Date(2024, 4, 1, 0, 0, 0, 0, ist)},
	}}

	st := dashboard.Compute(snap, now)
	if !st.ThisMonthRevenue.Equal(types.Rupees(10)) {
		t.Errorf("ThisMonthRevenue = %v, want ₹10", st.ThisMonthRevenue)
	}
}
