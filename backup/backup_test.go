package backup_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/xraph/haulage"
	"github.com/xraph/haulage/backup"
	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/plugin"
	"github.com/xraph/haulage/store"
	"github.com/xraph/haulage/store/memory"
	"github.com/xraph/haulage/types"
)

type memSink struct {
	mu    sync.Mutex
	name  string
	puts  int
	data  map[string][]byte
	fails bool
}

func newMemSink(name string) *memSink {
	return &memSink{name: name, data: make(map[string][]byte)}
}

func (m *memSink) Name() string { return m.name }

func (m *memSink) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails {
		return errors.New("sink offline")
	}
	m.puts++
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memSink) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	if !ok {
		return nil, backup.ErrNoBackup
	}
	return d, nil
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestExtensionReplicatesEveryMutation(t *testing.T) {
	ctx := context.Background()
	sink := newMemSink("mem")
	broken := newMemSink("broken")
	broken.fails = true

	ext := backup.New(backup.WithSink(broken), backup.WithSink(sink), backup.WithLogger(quiet()))
	l := haulage.New(memory.New(), haulage.WithLogger(quiet()), haulage.WithPlugin(ext))
	if err := l.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()

	c, err := l.AddClient(ctx, client.Input{Name: "Acme", Address: "Surat"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.IssueBill(ctx, bill.IssueInput{
		ClientID: c.ID,
		Date:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Items:    []bill.ItemInput{{Qty: 2, Rate: types.Rupees(100), Advance: types.Rupees(20)}},
	}); err != nil {
		t.Fatalf("a failing sink must not fail the operation: %v", err)
	}

	if sink.puts != 2 {
		t.Errorf("puts = %d, want one per mutation", sink.puts)
	}

	snap, err := backup.Load(ctx, sink)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Clients) != 1 || len(snap.Bills) != 1 || snap.BillCounter != 1001 {
		t.Fatalf("backup holds %d clients, %d bills, counter %d", len(snap.Clients), len(snap.Bills), snap.BillCounter)
	}
	if !snap.Bills[0].TotalActual.Equal(types.Rupees(180)) {
		t.Errorf("TotalActual = %v", snap.Bills[0].TotalActual)
	}

	// The backup restores into an empty ledger.
	fresh := haulage.New(memory.New(), haulage.WithLogger(quiet()))
	if err := fresh.Restore(ctx, snap); err != nil {
		t.Fatal(err)
	}
	got, err := fresh.GetClient(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.PendingAmount.Equal(types.Rupees(180)) {
		t.Errorf("restored pending = %v", got.PendingAmount)
	}
}

// Ordering follows when the store read the data, not when the hook was
// stamped: a snapshot read earlier loses even if its hook fires later.
func TestExtensionSkipsOlderSnapshot(t *testing.T) {
	ctx := context.Background()
	sink := newMemSink("mem")
	ext := backup.New(backup.WithSink(sink), backup.WithLogger(quiet()))

	early := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(time.Millisecond)

	newer := &plugin.Mutation{Op: "bill.issued", At: early, Snapshot: &store.Snapshot{BillCounter: 1002, TakenAt: late}}
	older := &plugin.Mutation{Op: "bill.issued", At: late, Snapshot: &store.Snapshot{BillCounter: 1001, TakenAt: early}}

	if err := ext.OnLedgerMutated(ctx, newer); err != nil {
		t.Fatal(err)
	}
	if err := ext.OnLedgerMutated(ctx, older); err != nil {
		t.Fatal(err)
	}

	if sink.puts != 1 {
		t.Errorf("puts = %d, want the older snapshot skipped", sink.puts)
	}
	snap, err := backup.Load(ctx, sink)
	if err != nil {
		t.Fatal(err)
	}
	if snap.BillCounter != 1002 {
		t.Errorf("backup counter = %d, want 1002", snap.BillCounter)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := backup.Load(context.Background(), newMemSink("empty")); !errors.Is(err, backup.ErrNoBackup) {
		t.Fatalf("expected ErrNoBackup, got %v", err)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"no data", `{"version":1}`},
		{"future version", `{"version":99,"data":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := backup.Decode([]byte(tt.data)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestFileSink(t *testing.T) {
	ctx := context.Background()
	fs, err := backup.NewFileSink(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Get(ctx, backup.FileName); !errors.Is(err, backup.ErrNoBackup) {
		t.Fatalf("empty dir: %v", err)
	}

	ext := backup.New(backup.WithSink(fs), backup.WithLogger(quiet()))
	s := memory.New()
	_, _ = s.NextBillNumber(ctx)
	snap, _ := s.Snapshot(ctx)
	if err := ext.Push(ctx, snap); err != nil {
		t.Fatal(err)
	}

	got, err := backup.Load(ctx, fs)
	if err != nil {
		t.Fatal(err)
	}
	if got.BillCounter != 1001 {
		t.Errorf("counter = %d", got.BillCounter)
	}
}
