// Package backup replicates the ledger to object storage and message
// topics. After every committed change the whole ledger is written out as one
// JSON document, so the newest object is always a complete restore point.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/haulage/plugin"
	"github.com/xraph/haulage/store"
)

// FileName is the object key the document is written under.
const FileName = "transport-billing-data.json"

// ErrNoBackup is returned by Load when the sink holds no document yet.
var ErrNoBackup = errors.New("backup: no backup found")

// Sink receives the encoded ledger.
type Sink interface {
	Name() string
	Put(ctx context.Context, key string, data []byte) error
}

// Getter is implemented by sinks that can hand a document back for restore.
// Getters return ErrNoBackup when key does not exist.
type Getter interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Document is the on-disk layout of a backup.
type Document struct {
	Version int             `json:"version"`
	Op      string          `json:"op,omitempty"`
	Data    *store.Snapshot `json:"data"`
}

const documentVersion = 1

// Encode renders snap as a backup document.
func Encode(snap *store.Snapshot, op string) ([]byte, error) {
	if snap == nil {
		return nil, errors.New("backup: nil snapshot")
	}
	return json.MarshalIndent(Document{Version: documentVersion, Op: op, Data: snap}, "", "  ")
}

// Decode parses a backup document.
func Decode(data []byte) (*store.Snapshot, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("backup: decode: %w", err)
	}
	if doc.Data == nil {
		return nil, errors.New("backup: document has no data")
	}
	if doc.Version > documentVersion {
		return nil, fmt.Errorf("backup: document version %d is newer than supported %d", doc.Version, documentVersion)
	}
	return doc.Data, nil
}

// Load fetches and decodes the latest document from g.
func Load(ctx context.Context, g Getter) (*store.Snapshot, error) {
	data, err := g.Get(ctx, FileName)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Extension is a ledger plugin writing every mutation to its sinks.
type Extension struct {
	sinks  []Sink
	logger *slog.Logger

	// mu serializes writes so an older snapshot never overwrites a newer one.
	mu   sync.Mutex
	last time.Time
}

var _ plugin.OnLedgerMutated = (*Extension)(nil)

// Option configures the Extension.
type Option func(*Extension)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extension) { e.logger = l }
}

// WithSink adds a sink.
func WithSink(s Sink) Option {
	return func(e *Extension) { e.sinks = append(e.sinks, s) }
}

// New creates a backup extension.
func New(opts ...Option) *Extension {
	e := &Extension{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "backup" }

// Sinks returns the configured sinks.
func (e *Extension) Sinks() []Sink { return e.sinks }

// OnLedgerMutated implements plugin.OnLedgerMutated.
func (e *Extension) OnLedgerMutated(ctx context.Context, m *plugin.Mutation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Hooks for concurrent operations may arrive out of order. The store
	// stamps each snapshot while it reads, so TakenAt orders the data.
	taken := m.At
	if m.Snapshot != nil && !m.Snapshot.TakenAt.IsZero() {
		taken = m.Snapshot.TakenAt
	}
	if taken.Before(e.last) {
		e.logger.Debug("backup skipped stale mutation", "op", m.Op)
		return nil
	}
	e.last = taken

	return e.push(ctx, m.Snapshot, m.Op)
}

// Push writes snap to every sink immediately.
func (e *Extension) Push(ctx context.Context, snap *store.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.push(ctx, snap, "manual")
}

func (e *Extension) push(ctx context.Context, snap *store.Snapshot, op string) error {
	data, err := Encode(snap, op)
	if err != nil {
		return err
	}

	var errs []error
	for _, s := range e.sinks {
		if err := s.Put(ctx, FileName, data); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		e.logger.Debug("backup written", "sink", s.Name(), "op", op, "bytes", len(data))
	}
	return errors.Join(errs...)
}
