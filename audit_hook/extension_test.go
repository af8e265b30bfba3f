package audithook_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	haulage "github.com/xraph/haulage"
	audithook "github.com/xraph/haulage/audit_hook"
	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/store/memory"
	"github.com/xraph/haulage/types"
)

type captured struct {
	mu     sync.Mutex
	events []*audithook.AuditEvent
}

func (c *captured) Record(_ context.Context, ev *audithook.AuditEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *captured) actions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Action
	}
	return out
}

func (c *captured) find(action string) *audithook.AuditEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ev := range c.events {
		if ev.Action == action {
			return ev
		}
	}
	return nil
}

func setup(t *testing.T, opts ...audithook.Option) (*haulage.Ledger, *captured) {
	t.Helper()
	rec := &captured{}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	ext := audithook.New(rec, append([]audithook.Option{audithook.WithLogger(quiet)}, opts...)...)

	l := haulage.New(memory.New(), haulage.WithLogger(quiet), haulage.WithPlugin(ext))
	if err := l.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = l.Stop() })
	return l, rec
}

func run(t *testing.T, l *haulage.Ledger) {
	t.Helper()
	ctx := context.Background()

	res, err := l.IssueBill(ctx, bill.IssueInput{
		NewClient: &client.Input{Name: "Shree Ram Traders", Address: "Vapi"},
		Date:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Items:     []bill.ItemInput{{Qty: 2, Rate: types.Rupees(500)}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.RecordPayment(ctx, payment.Input{
		ClientID: res.Client.ID,
		Amount:   types.Rupees(1500),
		Date:     time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatal(err)
	}
	if err := l.DeleteBill(ctx, res.Bill.ID); err != nil {
		t.Fatal(err)
	}
}

func TestExtensionRecordsLedgerEvents(t *testing.T) {
	l, rec := setup(t)
	run(t, l)

	want := []string{
		audithook.ActionClientCreated,
		audithook.ActionBillIssued,
		audithook.ActionPaymentRecorded,
		audithook.ActionPaymentOverpaid,
		audithook.ActionBillDeleted,
	}
	got := rec.actions()
	if len(got) != len(want) {
		t.Fatalf("actions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("actions[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	paid := rec.find(audithook.ActionPaymentRecorded)
	if paid.Outcome != audithook.OutcomePartial || paid.Category != audithook.CategoryPayment {
		t.Errorf("payment event = %+v", paid)
	}
	over := rec.find(audithook.ActionPaymentOverpaid)
	if over.Metadata["unallocated"] != types.Rupees(500).String() {
		t.Errorf("unallocated = %v", over.Metadata["unallocated"])
	}
	del := rec.find(audithook.ActionBillDeleted)
	if del.Severity != audithook.SeverityWarning {
		t.Errorf("deleting a paid bill severity = %s, want warning", del.Severity)
	}
}

func TestExtensionFiltersActions(t *testing.T) {
	l, rec := setup(t, audithook.WithDisabledActions(
		audithook.ActionClientCreated,
		audithook.ActionPaymentOverpaid,
	))
	run(t, l)

	if rec.find(audithook.ActionClientCreated) != nil || rec.find(audithook.ActionPaymentOverpaid) != nil {
		t.Errorf("disabled actions were recorded: %v", rec.actions())
	}
	if rec.find(audithook.ActionBillIssued) == nil {
		t.Error("bill.issued missing")
	}

	l2, rec2 := setup(t, audithook.WithEnabledActions(audithook.ActionBillDeleted))
	run(t, l2)
	if got := rec2.actions(); len(got) != 1 || got[0] != audithook.ActionBillDeleted {
		t.Errorf("enabled-only actions = %v", got)
	}
}

func TestRecorderErrorsAreSwallowed(t *testing.T) {
	ext := audithook.New(audithook.RecorderFunc(func(context.Context, *audithook.AuditEvent) error {
		return io.ErrClosedPipe
	}), audithook.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	c := client.New(client.Input{Name: "A", Address: "B"})
	if err := ext.OnClientCreated(context.Background(), c); err != nil {
		t.Errorf("OnClientCreated = %v, want nil", err)
	}
}
