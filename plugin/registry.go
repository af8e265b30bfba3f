package plugin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/settings"
)

// DefaultHookTimeout bounds a single plugin call.
const DefaultHookTimeout = 5 * time.Second

// Registry manages all registered plugins and dispatches hooks to them.
// Hook lists are cached per interface at registration time.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	onInit            []OnInit
	onShutdown        []OnShutdown
	onClientCreated   []OnClientCreated
	onClientUpdated   []OnClientUpdated
	onBillIssued      []OnBillIssued
	onBillUpdated     []OnBillUpdated
	onBillDeleted     []OnBillDeleted
	onPaymentRecorded []OnPaymentRecorded
	onSettingsUpdated []OnSettingsUpdated
	onLedgerMutated   []OnLedgerMutated
	billFormatters    map[string]BillFormatter
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:         slog.Default(),
		timeout:        DefaultHookTimeout,
		billFormatters: make(map[string]BillFormatter),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-call hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnClientCreated); ok {
		r.onClientCreated = append(r.onClientCreated, v)
	}
	if v, ok := p.(OnClientUpdated); ok {
		r.onClientUpdated = append(r.onClientUpdated, v)
	}
	if v, ok := p.(OnBillIssued); ok {
		r.onBillIssued = append(r.onBillIssued, v)
	}
	if v, ok := p.(OnBillUpdated); ok {
		r.onBillUpdated = append(r.onBillUpdated, v)
	}
	if v, ok := p.(OnBillDeleted); ok {
		r.onBillDeleted = append(r.onBillDeleted, v)
	}
	if v, ok := p.(OnPaymentRecorded); ok {
		r.onPaymentRecorded = append(r.onPaymentRecorded, v)
	}
	if v, ok := p.(OnSettingsUpdated); ok {
		r.onSettingsUpdated = append(r.onSettingsUpdated, v)
	}
	if v, ok := p.(OnLedgerMutated); ok {
		r.onLedgerMutated = append(r.onLedgerMutated, v)
	}
	if v, ok := p.(BillFormatter); ok {
		r.billFormatters[v.Format()] = v
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

func implementedInterfaces(p Plugin) []string {
	var names []string
	t := reflect.TypeOf(p)
	check := func(iface reflect.Type, name string) {
		if t.Implements(iface) {
			names = append(names, name)
		}
	}

	check(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	check(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	check(reflect.TypeOf((*OnClientCreated)(nil)).Elem(), "OnClientCreated")
	check(reflect.TypeOf((*OnClientUpdated)(nil)).Elem(), "OnClientUpdated")
	check(reflect.TypeOf((*OnBillIssued)(nil)).Elem(), "OnBillIssued")
	check(reflect.TypeOf((*OnBillUpdated)(nil)).Elem(), "OnBillUpdated")
	check(reflect.TypeOf((*OnBillDeleted)(nil)).Elem(), "OnBillDeleted")
	check(reflect.TypeOf((*OnPaymentRecorded)(nil)).Elem(), "OnPaymentRecorded")
	check(reflect.TypeOf((*OnSettingsUpdated)(nil)).Elem(), "OnSettingsUpdated")
	check(reflect.TypeOf((*OnLedgerMutated)(nil)).Elem(), "OnLedgerMutated")
	check(reflect.TypeOf((*BillFormatter)(nil)).Elem(), "BillFormatter")

	return names
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// BillFormatter returns the formatter registered for format, or nil.
func (r *Registry) BillFormatter(format string) BillFormatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.billFormatters[format]
}

// Formats lists the document formats that have a formatter.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.billFormatters))
	for f := range r.billFormatters {
		out = append(out, f)
	}
	return out
}

// WantsMutations reports whether any plugin listens for OnLedgerMutated, so
// callers can skip building a snapshot nobody reads.
func (r *Registry) WantsMutations() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.onLedgerMutated) > 0
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, l interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnInit", p.Name(), func() error { return p.OnInit(ctx, l) })
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnShutdown", p.Name(), func() error { return p.OnShutdown(ctx) })
	}
}

// EmitClientCreated notifies OnClientCreated plugins.
func (r *Registry) EmitClientCreated(ctx context.Context, c *client.Client) {
	r.mu.RLock()
	plugins := r.onClientCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnClientCreated", p.Name(), func() error { return p.OnClientCreated(ctx, c) })
	}
}

// EmitClientUpdated notifies OnClientUpdated plugins.
func (r *Registry) EmitClientUpdated(ctx context.Context, oldClient, newClient *client.Client) {
	r.mu.RLock()
	plugins := r.onClientUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnClientUpdated", p.Name(), func() error {
			return p.OnClientUpdated(ctx, oldClient, newClient)
		})
	}
}

// EmitBillIssued notifies OnBillIssued plugins.
func (r *Registry) EmitBillIssued(ctx context.Context, b *bill.Bill) {
	r.mu.RLock()
	plugins := r.onBillIssued
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnBillIssued", p.Name(), func() error { return p.OnBillIssued(ctx, b) })
	}
}

// EmitBillUpdated notifies OnBillUpdated plugins.
func (r *Registry) EmitBillUpdated(ctx context.Context, oldBill, newBill *bill.Bill) {
	r.mu.RLock()
	plugins := r.onBillUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnBillUpdated", p.Name(), func() error {
			return p.OnBillUpdated(ctx, oldBill, newBill)
		})
	}
}

// EmitBillDeleted notifies OnBillDeleted plugins.
func (r *Registry) EmitBillDeleted(ctx context.Context, b *bill.Bill) {
	r.mu.RLock()
	plugins := r.onBillDeleted
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnBillDeleted", p.Name(), func() error { return p.OnBillDeleted(ctx, b) })
	}
}

// EmitPaymentRecorded notifies OnPaymentRecorded plugins.
func (r *Registry) EmitPaymentRecorded(ctx context.Context, in payment.Input, alloc *payment.Allocation) {
	r.mu.RLock()
	plugins := r.onPaymentRecorded
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnPaymentRecorded", p.Name(), func() error {
			return p.OnPaymentRecorded(ctx, in, alloc)
		})
	}
}

// EmitSettingsUpdated notifies OnSettingsUpdated plugins.
func (r *Registry) EmitSettingsUpdated(ctx context.Context, s *settings.CompanySettings) {
	r.mu.RLock()
	plugins := r.onSettingsUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnSettingsUpdated", p.Name(), func() error { return p.OnSettingsUpdated(ctx, s) })
	}
}

// EmitLedgerMutated hands m to every OnLedgerMutated plugin. Failures are
// logged and dropped.
func (r *Registry) EmitLedgerMutated(ctx context.Context, m *Mutation) {
	r.mu.RLock()
	plugins := r.onLedgerMutated
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnLedgerMutated", p.Name(), func() error { return p.OnLedgerMutated(ctx, m) })
	}
}

// RenderBill looks up the formatter for format and runs it. It returns
// false when no formatter is registered.
func (r *Registry) RenderBill(ctx context.Context, format string, w io.Writer, b *bill.Bill, s *settings.CompanySettings) (bool, error) {
	f := r.BillFormatter(format)
	if f == nil {
		return false, nil
	}
	return true, f.RenderBill(ctx, w, b, s)
}

func (r *Registry) dispatch(ctx context.Context, hook, name string, fn func() error) {
	if err := r.callWithTimeout(ctx, name, fn); err != nil {
		r.logger.Warn("plugin "+hook+" failed",
			"plugin", name,
			"error", err,
		)
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins never block a ledger operation for longer than the timeout.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- fmt.Errorf("plugin panic: %s: %v", pluginName, rec)
			}
		}()
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
