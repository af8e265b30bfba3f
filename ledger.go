package haulage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/haulage/internal/validate"
	"github.com/xraph/haulage/lock"
	"github.com/xraph/haulage/plugin"
	"github.com/xraph/haulage/store"
)

// Ledger is the billing engine. It keeps clients, bills and payments
// consistent on top of an injected store.
type Ledger struct {
	store store.Store
	seq   store.Sequence
	// ownSeq is true when seq is not the store's own counter.
	ownSeq  bool
	locker  lock.Locker
	plugins *plugin.Registry
	logger  *slog.Logger
	now     func() time.Time

	// editDrift leaves client totals untouched on bill edit.
	editDrift bool
}

// New creates a new Ledger instance.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:   s,
		seq:     s,
		locker:  lock.NewLocal(),
		plugins: plugin.NewRegistry(),
		logger:  slog.Default(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		if err := l.plugins.Register(p); err != nil {
			l.logger.Warn("plugin registration failed", "plugin", p.Name(), "error", err)
		}
	}
}

// WithSequence replaces the store's own bill counter, e.g. with a Redis
// counter shared by several processes.
func WithSequence(seq store.Sequence) Option {
	return func(l *Ledger) {
		l.seq = seq
		l.ownSeq = true
	}
}

// WithLocker sets the per-client lock used around read-modify-write
// sequences. The default is an in-process lock.
func WithLocker(lk lock.Locker) Option {
	return func(l *Ledger) { l.locker = lk }
}

// WithClock sets the time source. The dashboard's "this month" is taken
// from it, in the location of the returned time.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithHookTimeout bounds each plugin hook call.
func WithHookTimeout(d time.Duration) Option {
	return func(l *Ledger) { l.plugins.WithTimeout(d) }
}

// WithEditDrift makes UpdateBill leave the owning client's totals as they
// were. It reproduces the behaviour of earlier releases, where editing a
// bill's items did not move the client aggregates.
func WithEditDrift() Option {
	return func(l *Ledger) { l.editDrift = true }
}

// Store returns the underlying store.
func (l *Ledger) Store() store.Store { return l.store }

// Plugins returns the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry { return l.plugins }

// Start migrates the store and initializes plugins.
func (l *Ledger) Start(ctx context.Context) error {
	if err := l.store.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
	}

	l.plugins.EmitInit(ctx, l)

	l.logger.Info("haulage ledger started",
		"plugins", l.plugins.Count(),
		"edit_drift", l.editDrift,
	)

	return nil
}

// Stop notifies plugins and closes the store.
func (l *Ledger) Stop() error {
	l.plugins.EmitShutdown(context.Background())
	return l.store.Close()
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// check runs struct validation and turns violations into ValidationErrors.
func check(v interface{}) error {
	var errs MultiError
	for _, viol := range validate.Struct(v) {
		errs.Add(ValidationError{Field: viol.Field, Message: viol.Message})
	}
	return errs.ErrOrNil()
}

// withClient runs fn while holding the lock on clientID's totals.
func (l *Ledger) withClient(ctx context.Context, clientID ID, fn func() error) error {
	release, err := l.locker.Acquire(ctx, "client:"+clientID.String())
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			return fmt.Errorf("%w: %s", ErrLockNotObtained, clientID)
		}
		return err
	}
	defer release()
	return fn()
}

// mutated emits OnLedgerMutated with a fresh snapshot. A snapshot failure is
// logged; the operation it follows has already committed.
func (l *Ledger) mutated(ctx context.Context, op string, entityID ID) {
	if !l.plugins.WantsMutations() {
		return
	}
	snap, err := l.Snapshot(ctx)
	if err != nil {
		l.logger.Warn("snapshot for replication failed", "op", op, "error", err)
		return
	}
	l.plugins.EmitLedgerMutated(ctx, &plugin.Mutation{
		Op:       op,
		EntityID: entityID.String(),
		At:       l.now().UTC(),
		Snapshot: snap,
	})
}
