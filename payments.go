package haulage

import (
	"context"
	"fmt"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/payment"
)

// PaymentResult is the outcome of RecordPayment.
type PaymentResult struct {
	*payment.Allocation
	Client *client.Client `json:"client"`
}

// RecordPayment spreads a received payment over the client's outstanding
// bills, oldest bill date first, and writes one Payment per bill touched.
//
// The client is credited with the full amount even when it exceeds what
// was outstanding. The excess is returned as Remaining and the client's
// PendingAmount goes negative by that much.
func (l *Ledger) RecordPayment(ctx context.Context, in payment.Input) (*PaymentResult, error) {
	var errs MultiError
	if in.ClientID.IsNil() {
		errs.Add(ValidationError{Field: "client_id", Message: "is required"})
	}
	if err := check(in); err != nil {
		errs.Add(err)
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	var (
		alloc *payment.Allocation
		c     *client.Client
	)
	err := l.withClient(ctx, in.ClientID, func() error {
		var err error
		if c, err = l.store.GetClient(ctx, in.ClientID); err != nil {
			return fmt.Errorf("record payment: %w", err)
		}

		open, err := l.store.ListBills(ctx, bill.ListOpts{ClientID: in.ClientID, PendingOnly: true})
		if err != nil {
			return fmt.Errorf("record payment: list bills: %w", err)
		}
		// Store order is newest first; reverse so equal dates keep issue order.
		for i, j := 0, len(open)-1; i < j; i, j = i+1, j-1 {
			open[i], open[j] = open[j], open[i]
		}

		alloc = payment.Allocate(open, in)

		for i, p := range alloc.Payments {
			if err := l.store.CreatePayment(ctx, p); err != nil {
				return fmt.Errorf("record payment: persist payment for bill %s: %w", alloc.Bills[i].BillNo(), err)
			}
			if err := l.store.UpdateBill(ctx, alloc.Bills[i]); err != nil {
				return fmt.Errorf("record payment: update bill %s: %w", alloc.Bills[i].BillNo(), err)
			}
		}

		c.ApplyPayment(in.Amount)
		c.Touch()
		if err := l.store.UpdateClient(ctx, c); err != nil {
			return fmt.Errorf("record payment: update client totals: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if alloc.Remaining.IsPositive() {
		l.logger.Info("payment exceeds outstanding bills",
			"client_id", in.ClientID.String(),
			"amount", in.Amount.String(),
			"unallocated", alloc.Remaining.String(),
		)
	}

	l.plugins.EmitPaymentRecorded(ctx, in, alloc)
	l.mutated(ctx, "payment.recorded", in.ClientID)

	return &PaymentResult{Allocation: alloc, Client: c}, nil
}

// ListPayments returns payment records matching opts, newest first.
func (l *Ledger) ListPayments(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error) {
	return l.store.ListPayments(ctx, opts)
}
