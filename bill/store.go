package bill

import (
	"context"
	"strings"
	"time"

	"github.com/xraph/haulage/id"
)

type Store interface {
	CreateBill(ctx context.Context, b *Bill) error
	GetBill(ctx context.Context, billID id.BillID) (*Bill, error)
	UpdateBill(ctx context.Context, b *Bill) error
	DeleteBill(ctx context.Context, billID id.BillID) error
	ListBills(ctx context.Context, opts ListOpts) ([]*Bill, error)
}

// ListOpts filters bills. A zero field matches everything. Results are
// newest first.
type ListOpts struct {
	// Search keeps bills whose number or client name contains it, ignoring
	// case.
	Search      string
	ClientID    id.ClientID
	Status      Status
	PendingOnly bool
	Start       time.Time
	End         time.Time
	Limit       int
	Offset      int
}

// Match reports whether b passes every filter except paging.
func (o ListOpts) Match(b *Bill) bool {
	if !o.ClientID.IsNil() && b.ClientID.String() != o.ClientID.String() {
		return false
	}
	if o.Status != "" && b.Status != o.Status {
		return false
	}
	if o.PendingOnly && !b.PendingAmount.IsPositive() {
		return false
	}
	if !o.Start.IsZero() && b.Date.Before(o.Start) {
		return false
	}
	if !o.End.IsZero() && b.Date.After(o.End) {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(o.Search)); term != "" {
		return strings.Contains(b.BillNo(), term) ||
			strings.Contains(strings.ToLower(b.ClientName), term)
	}
	return true
}
