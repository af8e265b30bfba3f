// Package store defines the persistence contract the ledger is built on.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/settings"
)

// InitialBillNumber is the counter value of an empty store. The first bill
// issued is InitialBillNumber+1.
const InitialBillNumber int64 = 1000

// Store is the unified storage interface for haulage records.
type Store interface {
	client.Store
	bill.Store
	payment.Store
	settings.Store
	Sequence

	// Snapshot returns every collection in store order (newest first) and
	// the counter. Restore replaces all of it.
	Snapshot(ctx context.Context) (*Snapshot, error)
	Restore(ctx context.Context, snap *Snapshot) error

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Sequence is the shared bill-number counter. NextBillNumber must be atomic
// across every writer of the same store.
type Sequence interface {
	CurrentBillNumber(ctx context.Context) (int64, error)
	NextBillNumber(ctx context.Context) (int64, error)
	// SetBillNumber overwrites the counter. It is the only reset.
	SetBillNumber(ctx context.Context, n int64) error
}

// Snapshot is a full copy of the ledger.
type Snapshot struct {
	Clients     []*client.Client          `json:"clients"`
	Bills       []*bill.Bill              `json:"bills"`
	Payments    []*payment.Payment        `json:"payments"`
	Settings    *settings.CompanySettings `json:"settings,omitempty"`
	BillCounter int64                     `json:"bill_counter"`
	TakenAt     time.Time                 `json:"taken_at"`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns a search term into a LIKE pattern matching any value
// that contains it. Wildcards in term are escaped with a backslash.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}
