package haulage

import (
	"context"
	"fmt"

	"github.com/xraph/haulage/dashboard"
	"github.com/xraph/haulage/store"
)

// Snapshot returns every collection and the bill counter.
func (l *Ledger) Snapshot(ctx context.Context) (*store.Snapshot, error) {
	snap, err := l.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if l.ownSeq {
		n, err := l.seq.CurrentBillNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("snapshot: bill counter: %w", err)
		}
		snap.BillCounter = n
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = l.now().UTC()
	}
	return snap, nil
}

// Restore replaces the whole ledger with snap, counter included.
func (l *Ledger) Restore(ctx context.Context, snap *store.Snapshot) error {
	if snap == nil {
		return ValidationError{Field: "snapshot", Message: "is required"}
	}
	if err := l.store.Restore(ctx, snap); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if l.ownSeq {
		if err := l.seq.SetBillNumber(ctx, snap.BillCounter); err != nil {
			return fmt.Errorf("restore: bill counter: %w", err)
		}
	}

	l.logger.Info("ledger restored",
		"clients", len(snap.Clients),
		"bills", len(snap.Bills),
		"payments", len(snap.Payments),
		"bill_counter", snap.BillCounter,
	)
	l.mutated(ctx, "ledger.restored", ID{})
	return nil
}

// SetBillNumber overwrites the bill counter. The next bill gets n+1.
func (l *Ledger) SetBillNumber(ctx context.Context, n int64) error {
	if n < 0 {
		return ValidationError{Field: "bill_number", Message: "must not be negative"}
	}
	if err := l.seq.SetBillNumber(ctx, n); err != nil {
		return fmt.Errorf("set bill number: %w", err)
	}
	l.mutated(ctx, "counter.set", ID{})
	return nil
}

// Dashboard computes the summary statistics from the current ledger.
func (l *Ledger) Dashboard(ctx context.Context) (*dashboard.Stats, error) {
	snap, err := l.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return dashboard.Compute(snap, l.now()), nil
}
