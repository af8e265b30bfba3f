// Package plugin provides the hook system of haulage.
// Every hook fires after the store writes of an operation have succeeded.
package plugin

import (
	"context"
	"io"
	"time"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/settings"
	"github.com/xraph/haulage/store"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the ledger starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the ledger stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Client hooks
// ──────────────────────────────────────────────────

// OnClientCreated is called after a client is added, explicitly or inline
// during bill issuance.
type OnClientCreated interface {
	Plugin
	OnClientCreated(ctx context.Context, c *client.Client) error
}

// OnClientUpdated is called after a client's contact fields change.
type OnClientUpdated interface {
	Plugin
	OnClientUpdated(ctx context.Context, oldClient, newClient *client.Client) error
}

// ──────────────────────────────────────────────────
// Bill hooks
// ──────────────────────────────────────────────────

// OnBillIssued is called after a bill is persisted and its client updated.
type OnBillIssued interface {
	Plugin
	OnBillIssued(ctx context.Context, b *bill.Bill) error
}

// OnBillUpdated is called after a bill edit.
type OnBillUpdated interface {
	Plugin
	OnBillUpdated(ctx context.Context, oldBill, newBill *bill.Bill) error
}

// OnBillDeleted is called after a bill is removed.
type OnBillDeleted interface {
	Plugin
	OnBillDeleted(ctx context.Context, b *bill.Bill) error
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentRecorded is called once per received payment with the whole
// allocation, including every per-bill Payment record.
type OnPaymentRecorded interface {
	Plugin
	OnPaymentRecorded(ctx context.Context, in payment.Input, alloc *payment.Allocation) error
}

// OnSettingsUpdated is called after the company settings are saved.
type OnSettingsUpdated interface {
	Plugin
	OnSettingsUpdated(ctx context.Context, s *settings.CompanySettings) error
}

// ──────────────────────────────────────────────────
// Replication
// ──────────────────────────────────────────────────

// Mutation describes a committed change to the ledger.
type Mutation struct {
	Op       string          // "bill.issued", "payment.recorded", ...
	EntityID string          // primary entity touched, if any
	At       time.Time       // commit time
	Snapshot *store.Snapshot // full ledger after the change
}

// OnLedgerMutated is called after every mutating operation with a snapshot
// of the whole ledger. It is the replication point for backup sinks.
type OnLedgerMutated interface {
	Plugin
	OnLedgerMutated(ctx context.Context, m *Mutation) error
}

// ──────────────────────────────────────────────────
// Document formatters
// ──────────────────────────────────────────────────

// BillFormatter renders a bill together with the company settings into a
// document format. The ledger hands both over unchanged.
type BillFormatter interface {
	Plugin
	Format() string      // "xlsx", "pdf", ...
	ContentType() string // MIME type of the output
	RenderBill(ctx context.Context, w io.Writer, b *bill.Bill, s *settings.CompanySettings) error
}
