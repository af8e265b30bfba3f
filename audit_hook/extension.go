// Package audithook bridges ledger events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit store. Callers inject a RecorderFunc adapter, or
// LogRecorder, at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/plugin"
	"github.com/xraph/haulage/settings"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin            = (*Extension)(nil)
	_ plugin.OnClientCreated   = (*Extension)(nil)
	_ plugin.OnClientUpdated   = (*Extension)(nil)
	_ plugin.OnBillIssued      = (*Extension)(nil)
	_ plugin.OnBillUpdated     = (*Extension)(nil)
	_ plugin.OnBillDeleted     = (*Extension)(nil)
	_ plugin.OnPaymentRecorded = (*Extension)(nil)
	_ plugin.OnSettingsUpdated = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a single entry in the audit trail.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges ledger events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Client hooks
// ──────────────────────────────────────────────────

// OnClientCreated implements plugin.OnClientCreated.
func (e *Extension) OnClientCreated(ctx context.Context, c *client.Client) error {
	return e.record(ctx, ActionClientCreated, SeverityInfo, OutcomeSuccess,
		ResourceClient, c.ID.String(), CategoryBilling, nil,
		"name", c.Name,
	)
}

// OnClientUpdated implements plugin.OnClientUpdated.
func (e *Extension) OnClientUpdated(ctx context.Context, oldClient, newClient *client.Client) error {
	kv := []any{"name", newClient.Name}
	if oldClient.Name != newClient.Name {
		kv = append(kv, "previous_name", oldClient.Name)
	}
	return e.record(ctx, ActionClientUpdated, SeverityInfo, OutcomeSuccess,
		ResourceClient, newClient.ID.String(), CategoryBilling, nil,
		kv...,
	)
}

// ──────────────────────────────────────────────────
// Bill hooks
// ──────────────────────────────────────────────────

// OnBillIssued implements plugin.OnBillIssued.
func (e *Extension) OnBillIssued(ctx context.Context, b *bill.Bill) error {
	return e.record(ctx, ActionBillIssued, SeverityInfo, OutcomeSuccess,
		ResourceBill, b.ID.String(), CategoryBilling, nil,
		"bill_no", b.Number,
		"client_id", b.ClientID.String(),
		"items", len(b.Items),
		"total_actual", b.TotalActual.String(),
	)
}

// OnBillUpdated implements plugin.OnBillUpdated.
func (e *Extension) OnBillUpdated(ctx context.Context, oldBill, newBill *bill.Bill) error {
	return e.record(ctx, ActionBillUpdated, SeverityInfo, OutcomeSuccess,
		ResourceBill, newBill.ID.String(), CategoryBilling, nil,
		"bill_no", newBill.Number,
		"previous_actual", oldBill.TotalActual.String(),
		"total_actual", newBill.TotalActual.String(),
		"status", string(newBill.Status),
	)
}

// OnBillDeleted implements plugin.OnBillDeleted. Deleting a bill that
// still has payments against it is flagged as a warning.
func (e *Extension) OnBillDeleted(ctx context.Context, b *bill.Bill) error {
	severity := SeverityInfo
	if b.PaidAmount.IsPositive() {
		severity = SeverityWarning
	}
	return e.record(ctx, ActionBillDeleted, severity, OutcomeSuccess,
		ResourceBill, b.ID.String(), CategoryBilling, nil,
		"bill_no", b.Number,
		"client_id", b.ClientID.String(),
		"paid_amount", b.PaidAmount.String(),
		"pending_amount", b.PendingAmount.String(),
	)
}

// ──────────────────────────────────────────────────
// Payment and settings hooks
// ──────────────────────────────────────────────────

// OnPaymentRecorded implements plugin.OnPaymentRecorded. A payment larger
// than the client's outstanding bills also emits ActionPaymentOverpaid.
func (e *Extension) OnPaymentRecorded(ctx context.Context, in payment.Input, alloc *payment.Allocation) error {
	outcome := OutcomeSuccess
	if alloc.Remaining.IsPositive() {
		outcome = OutcomePartial
	}
	if err := e.record(ctx, ActionPaymentRecorded, SeverityInfo, outcome,
		ResourcePayment, in.ClientID.String(), CategoryPayment, nil,
		"amount", in.Amount.String(),
		"applied", alloc.Applied.String(),
		"bills", len(alloc.Bills),
		"date", in.Date.Format("2006-01-02"),
	); err != nil {
		return err
	}
	if !alloc.Remaining.IsPositive() {
		return nil
	}
	return e.record(ctx, ActionPaymentOverpaid, SeverityWarning, OutcomePartial,
		ResourcePayment, in.ClientID.String(), CategoryPayment, nil,
		"unallocated", alloc.Remaining.String(),
	)
}

// OnSettingsUpdated implements plugin.OnSettingsUpdated.
func (e *Extension) OnSettingsUpdated(ctx context.Context, s *settings.CompanySettings) error {
	return e.record(ctx, ActionSettingsUpdated, SeverityInfo, OutcomeSuccess,
		ResourceSettings, "", CategoryConfig, nil,
		"name", s.Name,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
