// Package memory is an in-process store. Collections are kept in insertion
// order with the newest record first, like the browser storage the ledger
// started on. Records are copied on the way in and out.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/xraph/haulage"
	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/settings"
	"github.com/xraph/haulage/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu sync.RWMutex

	clients  []*client.Client
	bills    []*bill.Bill
	payments []*payment.Payment
	settings *settings.CompanySettings
	counter  int64
	closed   bool
}

func New() *Store {
	return &Store{counter: store.InitialBillNumber}
}

// ──────────────────────────────────────────────────
// Clients
// ──────────────────────────────────────────────────

func (s *Store) CreateClient(_ context.Context, c *client.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return haulage.ErrStoreClosed
	}

	if indexOf(s.clients, c.ID, clientID) >= 0 {
		return haulage.ErrAlreadyExists
	}
	cp := *c
	s.clients = prepend(s.clients, &cp)
	return nil
}

func (s *Store) GetClient(_ context.Context, cid id.ClientID) (*client.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := indexOf(s.clients, cid, clientID)
	if i < 0 {
		return nil, haulage.ErrClientNotFound
	}
	cp := *s.clients[i]
	return &cp, nil
}

func (s *Store) UpdateClient(_ context.Context, c *client.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return haulage.ErrStoreClosed
	}

	i := indexOf(s.clients, c.ID, clientID)
	if i < 0 {
		return haulage.ErrClientNotFound
	}
	cp := *c
	s.clients[i] = &cp
	return nil
}

func (s *Store) ListClients(_ context.Context, opts client.ListOpts) ([]*client.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*client.Client, 0, len(s.clients))
	for _, c := range s.clients {
		if !opts.Match(c) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return page(out, opts.Offset, opts.Limit), nil
}

// ──────────────────────────────────────────────────
// Bills
// ──────────────────────────────────────────────────

func (s *Store) CreateBill(_ context.Context, b *bill.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return haulage.ErrStoreClosed
	}

	if indexOf(s.bills, b.ID, billID) >= 0 {
		return haulage.ErrAlreadyExists
	}
	s.bills = prepend(s.bills, b.Clone())
	return nil
}

func (s *Store) GetBill(_ context.Context, bid id.BillID) (*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := indexOf(s.bills, bid, billID)
	if i < 0 {
		return nil, haulage.ErrBillNotFound
	}
	return s.bills[i].Clone(), nil
}

func (s *Store) UpdateBill(_ context.Context, b *bill.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return haulage.ErrStoreClosed
	}

	i := indexOf(s.bills, b.ID, billID)
	if i < 0 {
		return haulage.ErrBillNotFound
	}
	s.bills[i] = b.Clone()
	return nil
}

func (s *Store) DeleteBill(_ context.Context, bid id.BillID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return haulage.ErrStoreClosed
	}

	i := indexOf(s.bills, bid, billID)
	if i < 0 {
		return haulage.ErrBillNotFound
	}
	s.bills = append(s.bills[:i], s.bills[i+1:]...)
	return nil
}

func (s *Store) ListBills(_ context.Context, opts bill.ListOpts) ([]*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*bill.Bill, 0, len(s.bills))
	for _, b := range s.bills {
		if opts.Match(b) {
			out = append(out, b.Clone())
		}
	}
	return page(out, opts.Offset, opts.Limit), nil
}

// ──────────────────────────────────────────────────
// Payments
// ──────────────────────────────────────────────────

func (s *Store) CreatePayment(_ context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return haulage.ErrStoreClosed
	}

	if indexOf(s.payments, p.ID, paymentID) >= 0 {
		return haulage.ErrAlreadyExists
	}
	cp := *p
	s.payments = prepend(s.payments, &cp)
	return nil
}

func (s *Store) ListPayments(_ context.Context, opts payment.ListOpts) ([]*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*payment.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		if opts.Match(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return page(out, opts.Offset, opts.Limit), nil
}

// ──────────────────────────────────────────────────
// Settings and counter
// ──────────────────────────────────────────────────

func (s *Store) GetSettings(_ context.Context) (*settings.CompanySettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return nil, haulage.ErrSettingsNotFound
	}
	cp := *s.settings
	return &cp, nil
}

func (s *Store) SaveSettings(_ context.Context, cs *settings.CompanySettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return haulage.ErrStoreClosed
	}

	cp := *cs
	s.settings = &cp
	return nil
}

func (s *Store) CurrentBillNumber(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counter, nil
}

func (s *Store) NextBillNumber(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, haulage.ErrStoreClosed
	}
	s.counter++
	return s.counter, nil
}

func (s *Store) SetBillNumber(_ context.Context, n int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return haulage.ErrStoreClosed
	}
	s.counter = n
	return nil
}

// ──────────────────────────────────────────────────
// Snapshot
// ──────────────────────────────────────────────────

func (s *Store) Snapshot(_ context.Context) (*store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &store.Snapshot{
		Clients:     make([]*client.Client, 0, len(s.clients)),
		Bills:       make([]*bill.Bill, 0, len(s.bills)),
		Payments:    make([]*payment.Payment, 0, len(s.payments)),
		BillCounter: s.counter,
		TakenAt:     time.Now().UTC(),
	}
	for _, c := range s.clients {
		cp := *c
		snap.Clients = append(snap.Clients, &cp)
	}
	for _, b := range s.bills {
		snap.Bills = append(snap.Bills, b.Clone())
	}
	for _, p := range s.payments {
		cp := *p
		snap.Payments = append(snap.Payments, &cp)
	}
	if s.settings != nil {
		cp := *s.settings
		snap.Settings = &cp
	}
	return snap, nil
}

func (s *Store) Restore(_ context.Context, snap *store.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return haulage.ErrStoreClosed
	}

	s.clients = make([]*client.Client, 0, len(snap.Clients))
	for _, c := range snap.Clients {
		cp := *c
		s.clients = append(s.clients, &cp)
	}
	s.bills = make([]*bill.Bill, 0, len(snap.Bills))
	for _, b := range snap.Bills {
		s.bills = append(s.bills, b.Clone())
	}
	s.payments = make([]*payment.Payment, 0, len(snap.Payments))
	for _, p := range snap.Payments {
		cp := *p
		s.payments = append(s.payments, &cp)
	}
	s.settings = nil
	if snap.Settings != nil {
		cp := *snap.Settings
		s.settings = &cp
	}
	s.counter = snap.BillCounter
	return nil
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return haulage.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func clientID(c *client.Client) id.ID    { return c.ID }
func billID(b *bill.Bill) id.ID          { return b.ID }
func paymentID(p *payment.Payment) id.ID { return p.ID }

func indexOf[T any](list []T, target id.ID, key func(T) id.ID) int {
	want := target.String()
	for i, v := range list {
		if key(v).String() == want {
			return i
		}
	}
	return -1
}

func prepend[T any](list []T, v T) []T {
	list = append(list, v)
	copy(list[1:], list[:len(list)-1])
	list[0] = v
	return list
}

func page[T any](list []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return list[:0]
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
