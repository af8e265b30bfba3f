package payment

import (
	"context"
	"time"

	"github.com/xraph/haulage/id"
)

type Store interface {
	CreatePayment(ctx context.Context, p *Payment) error
	ListPayments(ctx context.Context, opts ListOpts) ([]*Payment, error)
}

// ListOpts filters payments. Results are newest first.
type ListOpts struct {
	ClientID id.ClientID
	BillID   id.BillID
	Start    time.Time
	End      time.Time
	Limit    int
	Offset   int
}

// Match reports whether p passes every filter except paging.
func (o ListOpts) Match(p *Payment) bool {
	if !o.ClientID.IsNil() && p.ClientID.String() != o.ClientID.String() {
		return false
	}
	if !o.BillID.IsNil() && p.BillID.String() != o.BillID.String() {
		return false
	}
	if !o.Start.IsZero() && p.Date.Before(o.Start) {
		return false
	}
	if !o.End.IsZero() && p.Date.After(o.End) {
		return false
	}
	return true
}
