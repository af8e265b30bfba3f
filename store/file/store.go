// Package file keeps the ledger in memory and rewrites a single JSON
// document in a directory after every change. The document has the same
// layout as a backup, so either can seed the other.
//
// A write that fails is returned from the method that caused it. The
// in-memory copy may already hold the change; callers treat the error as
// fatal for the process and reload from disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/xraph/haulage/backup"
	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/settings"
	"github.com/xraph/haulage/store"
	"github.com/xraph/haulage/store/memory"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	*memory.Store

	sink *backup.FileSink
	path string

	// flushMu orders writes so the file always ends on the newest snapshot.
	flushMu sync.Mutex
}

// Open loads dir's document into memory, or starts empty when there is none.
// dir is created if needed.
func Open(ctx context.Context, dir string) (*Store, error) {
	sink, err := backup.NewFileSink(dir)
	if err != nil {
		return nil, err
	}
	s := &Store{
		Store: memory.New(),
		sink:  sink,
		path:  filepath.Join(dir, backup.FileName),
	}

	snap, err := backup.Load(ctx, sink)
	switch {
	case errors.Is(err, backup.ErrNoBackup):
	case err != nil:
		return nil, fmt.Errorf("file store: load %s: %w", s.path, err)
	default:
		if err := s.Store.Restore(ctx, snap); err != nil {
			return nil, fmt.Errorf("file store: load %s: %w", s.path, err)
		}
	}
	return s, nil
}

// Path is the document the store writes.
func (s *Store) Path() string { return s.path }

func (s *Store) flush(ctx context.Context, op string) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	snap, err := s.Store.Snapshot(ctx)
	if err != nil {
		return err
	}
	data, err := backup.Encode(snap, op)
	if err != nil {
		return err
	}
	if err := s.sink.Put(ctx, backup.FileName, data); err != nil {
		return fmt.Errorf("file store: write %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) CreateClient(ctx context.Context, c *client.Client) error {
	if err := s.Store.CreateClient(ctx, c); err != nil {
		return err
	}
	return s.flush(ctx, "client.created")
}

func (s *Store) UpdateClient(ctx context.Context, c *client.Client) error {
	if err := s.Store.UpdateClient(ctx, c); err != nil {
		return err
	}
	return s.flush(ctx, "client.updated")
}

func (s *Store) CreateBill(ctx context.Context, b *bill.Bill) error {
	if err := s.Store.CreateBill(ctx, b); err != nil {
		return err
	}
	return s.flush(ctx, "bill.created")
}

func (s *Store) UpdateBill(ctx context.Context, b *bill.Bill) error {
	if err := s.Store.UpdateBill(ctx, b); err != nil {
		return err
	}
	return s.flush(ctx, "bill.updated")
}

func (s *Store) DeleteBill(ctx context.Context, billID id.BillID) error {
	if err := s.Store.DeleteBill(ctx, billID); err != nil {
		return err
	}
	return s.flush(ctx, "bill.deleted")
}

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	if err := s.Store.CreatePayment(ctx, p); err != nil {
		return err
	}
	return s.flush(ctx, "payment.created")
}

func (s *Store) SaveSettings(ctx context.Context, cs *settings.CompanySettings) error {
	if err := s.Store.SaveSettings(ctx, cs); err != nil {
		return err
	}
	return s.flush(ctx, "settings.saved")
}

// NextBillNumber returns a number only after the advanced counter is on disk.
func (s *Store) NextBillNumber(ctx context.Context) (int64, error) {
	n, err := s.Store.NextBillNumber(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.flush(ctx, "counter.advanced"); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) SetBillNumber(ctx context.Context, n int64) error {
	if err := s.Store.SetBillNumber(ctx, n); err != nil {
		return err
	}
	return s.flush(ctx, "counter.set")
}

func (s *Store) Restore(ctx context.Context, snap *store.Snapshot) error {
	if err := s.Store.Restore(ctx, snap); err != nil {
		return err
	}
	return s.flush(ctx, "ledger.restored")
}
