package haulage

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/types"
)

// IssueResult is what IssueBill produced.
type IssueResult struct {
	Bill          *bill.Bill     `json:"bill"`
	Client        *client.Client `json:"client"`
	ClientCreated bool           `json:"client_created"`
}

// IssueBill creates a numbered bill for an existing client, or for a client
// described inline, and adds the bill's actual due to the client's totals.
//
// Everything is validated before the first write. Writes are not
// transactional: a store failure after the bill is persisted leaves the
// client totals behind, and the error says which step failed.
func (l *Ledger) IssueBill(ctx context.Context, in bill.IssueInput) (*IssueResult, error) {
	if in.NewClient != nil {
		nc := in.NewClient.Normalize()
		in.NewClient = &nc
	}
	if err := checkIssue(in); err != nil {
		return nil, err
	}

	var (
		c       *client.Client
		created bool
	)
	if in.NewClient != nil {
		c = client.New(*in.NewClient)
		created = true
	} else {
		existing, err := l.store.GetClient(ctx, in.ClientID)
		if err != nil {
			return nil, fmt.Errorf("issue bill: %w", err)
		}
		c = existing
	}

	var b *bill.Bill
	err := l.withClient(ctx, c.ID, func() error {
		if created {
			if err := l.store.CreateClient(ctx, c); err != nil {
				return fmt.Errorf("issue bill: create client: %w", err)
			}
		} else {
			fresh, err := l.store.GetClient(ctx, c.ID)
			if err != nil {
				return fmt.Errorf("issue bill: %w", err)
			}
			c = fresh
		}

		number, err := l.seq.NextBillNumber(ctx)
		if err != nil {
			return fmt.Errorf("issue bill: next bill number: %w", err)
		}

		b = &bill.Bill{
			Entity:        types.NewEntity(),
			ID:            id.NewBillID(),
			Number:        number,
			ClientID:      c.ID,
			ClientName:    c.Name,
			ClientAddress: c.Address,
			Date:          in.Date,
			Items:         bill.BuildItems(withItemDates(in.Items, in)),
			PaidAmount:    types.Zero(types.DefaultCurrency),
		}
		b.Recompute()

		if err := l.store.CreateBill(ctx, b); err != nil {
			return fmt.Errorf("issue bill: persist bill %s: %w", b.BillNo(), err)
		}

		c.AddBill(b.TotalActual)
		c.Touch()
		if err := l.store.UpdateClient(ctx, c); err != nil {
			return fmt.Errorf("issue bill: update client totals: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Debug("bill issued",
		"bill_no", b.BillNo(),
		"client_id", c.ID.String(),
		"total_actual", b.TotalActual.String(),
	)

	if created {
		l.plugins.EmitClientCreated(ctx, c)
	}
	l.plugins.EmitBillIssued(ctx, b)
	l.mutated(ctx, "bill.issued", b.ID)

	return &IssueResult{Bill: b, Client: c, ClientCreated: created}, nil
}

func checkIssue(in bill.IssueInput) error {
	var errs MultiError
	switch {
	case in.NewClient == nil && in.ClientID.IsNil():
		errs.Add(ValidationError{Field: "client_id", Message: "a client id or new client details are required"})
	case in.NewClient != nil && !in.ClientID.IsNil():
		errs.Add(ValidationError{Field: "client_id", Message: "give either a client id or new client details, not both"})
	}
	if err := check(in); err != nil {
		var me MultiError
		if errors.As(err, &me) {
			errs.Errors = append(errs.Errors, me.Errors...)
		} else {
			errs.Add(err)
		}
	} else {
		errs.Add(checkAmounts(in.Items))
	}
	return errs.ErrOrNil()
}

// checkAmounts turns an out-of-range line or total into a ValidationError.
// It runs after check, once every amount is known to be in rupees.
func checkAmounts(items []bill.ItemInput) error {
	var ae *bill.AmountError
	if err := bill.CheckAmounts(items); errors.As(err, &ae) {
		if ae.Line < 0 {
			return ValidationError{Field: "items", Message: "bill total is larger than the largest supported amount"}
		}
		return ValidationError{
			Field:   fmt.Sprintf("items[%d].qty", ae.Line),
			Message: "qty times rate is larger than the largest supported amount",
		}
	}
	return nil
}

// withItemDates defaults an undated line to the bill date.
func withItemDates(items []bill.ItemInput, in bill.IssueInput) []bill.ItemInput {
	out := make([]bill.ItemInput, len(items))
	for i, it := range items {
		if it.Date.IsZero() {
			it.Date = in.Date
		}
		out[i] = it
	}
	return out
}

// UpdateBill replaces a bill's date and items. Totals are recomputed from
// the new items; the amount already paid is kept and the pending amount and
// status re-derived from it. Payment records are not touched.
//
// The owning client's TotalAmount and PendingAmount move by the change in
// the bill's actual due, unless the ledger was built WithEditDrift.
func (l *Ledger) UpdateBill(ctx context.Context, billID ID, in bill.EditInput) (*bill.Bill, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	if err := checkAmounts(in.Items); err != nil {
		return nil, err
	}

	current, err := l.store.GetBill(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("update bill: %w", err)
	}

	var before, after *bill.Bill
	err = l.withClient(ctx, current.ClientID, func() error {
		b, err := l.store.GetBill(ctx, billID)
		if err != nil {
			return fmt.Errorf("update bill: %w", err)
		}

		var c *client.Client
		if !l.editDrift {
			if c, err = l.store.GetClient(ctx, b.ClientID); err != nil {
				return fmt.Errorf("update bill %s: %w", b.BillNo(), err)
			}
		}

		before = b.Clone()
		b.Date = in.Date
		b.Items = bill.BuildItems(withItemDates(in.Items, bill.IssueInput{Date: in.Date}))
		b.Recompute()
		b.Touch()
		if err := l.store.UpdateBill(ctx, b); err != nil {
			return fmt.Errorf("update bill %s: %w", b.BillNo(), err)
		}
		after = b

		if c == nil {
			return nil
		}
		c.ReviseBill(before.TotalActual, b.TotalActual)
		c.Touch()
		if err := l.store.UpdateClient(ctx, c); err != nil {
			return fmt.Errorf("update bill %s: update client totals: %w", b.BillNo(), err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.plugins.EmitBillUpdated(ctx, before, after)
	l.mutated(ctx, "bill.updated", after.ID)
	return after, nil
}

// DeleteBill removes a bill and reverses its contribution to the owning
// client: one bill fewer, its actual due off TotalAmount and its pending
// amount off PendingAmount, each floored at zero. Payments recorded against
// the bill stay.
func (l *Ledger) DeleteBill(ctx context.Context, billID ID) error {
	current, err := l.store.GetBill(ctx, billID)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}

	var removed *bill.Bill
	err = l.withClient(ctx, current.ClientID, func() error {
		b, err := l.store.GetBill(ctx, billID)
		if err != nil {
			return fmt.Errorf("delete bill: %w", err)
		}
		if err := l.store.DeleteBill(ctx, billID); err != nil {
			return fmt.Errorf("delete bill %s: %w", b.BillNo(), err)
		}
		removed = b

		c, err := l.store.GetClient(ctx, b.ClientID)
		if IsNotFound(err) {
			l.logger.Warn("deleted bill has no client", "bill_no", b.BillNo(), "client_id", b.ClientID.String())
			return nil
		}
		if err != nil {
			return fmt.Errorf("delete bill %s: %w", b.BillNo(), err)
		}
		c.RemoveBill(b.TotalActual, b.PendingAmount)
		c.Touch()
		if err := l.store.UpdateClient(ctx, c); err != nil {
			return fmt.Errorf("delete bill %s: update client totals: %w", b.BillNo(), err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.plugins.EmitBillDeleted(ctx, removed)
	l.mutated(ctx, "bill.deleted", removed.ID)
	return nil
}

// GetBill returns a bill by ID.
func (l *Ledger) GetBill(ctx context.Context, billID ID) (*bill.Bill, error) {
	return l.store.GetBill(ctx, billID)
}

// ListBills returns bills matching opts, newest first.
func (l *Ledger) ListBills(ctx context.Context, opts bill.ListOpts) ([]*bill.Bill, error) {
	return l.store.ListBills(ctx, opts)
}
