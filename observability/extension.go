// Package observability provides a metrics extension for the ledger that
// records event counts through a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/plugin"
	"github.com/xraph/haulage/settings"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin            = (*MetricsExtension)(nil)
	_ plugin.OnClientCreated   = (*MetricsExtension)(nil)
	_ plugin.OnClientUpdated   = (*MetricsExtension)(nil)
	_ plugin.OnBillIssued      = (*MetricsExtension)(nil)
	_ plugin.OnBillUpdated     = (*MetricsExtension)(nil)
	_ plugin.OnBillDeleted     = (*MetricsExtension)(nil)
	_ plugin.OnPaymentRecorded = (*MetricsExtension)(nil)
	_ plugin.OnSettingsUpdated = (*MetricsExtension)(nil)
	_ plugin.OnLedgerMutated   = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records ledger metrics. Amounts are observed in rupees.
type MetricsExtension struct {
	factory MetricFactory

	// Client metrics
	ClientCreated Counter
	ClientUpdated Counter

	// Bill metrics
	BillIssued  Counter
	BillUpdated Counter
	BillDeleted Counter
	BillItems   Histogram
	BillActual  Histogram

	// Payment metrics
	PaymentRecorded    Counter
	PaymentAmount      Histogram
	PaymentBillsCount  Histogram
	PaymentUnallocated Counter

	SettingsUpdated Counter
	LedgerMutations Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		ClientCreated: factory.Counter("haulage.client.created"),
		ClientUpdated: factory.Counter("haulage.client.updated"),

		BillIssued:  factory.Counter("haulage.bill.issued"),
		BillUpdated: factory.Counter("haulage.bill.updated"),
		BillDeleted: factory.Counter("haulage.bill.deleted"),
		BillItems:   factory.Histogram("haulage.bill.items"),
		BillActual:  factory.Histogram("haulage.bill.actual_amount"),

		PaymentRecorded:    factory.Counter("haulage.payment.recorded"),
		PaymentAmount:      factory.Histogram("haulage.payment.amount"),
		PaymentBillsCount:  factory.Histogram("haulage.payment.bills"),
		PaymentUnallocated: factory.Counter("haulage.payment.unallocated_amount"),

		SettingsUpdated: factory.Counter("haulage.settings.updated"),
		LedgerMutations: factory.Counter("haulage.ledger.mutations"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnClientCreated implements plugin.OnClientCreated.
func (m *MetricsExtension) OnClientCreated(_ context.Context, _ *client.Client) error {
	m.ClientCreated.Inc()
	return nil
}

// OnClientUpdated implements plugin.OnClientUpdated.
func (m *MetricsExtension) OnClientUpdated(_ context.Context, _, _ *client.Client) error {
	m.ClientUpdated.Inc()
	return nil
}

// OnBillIssued implements plugin.OnBillIssued.
func (m *MetricsExtension) OnBillIssued(_ context.Context, b *bill.Bill) error {
	m.BillIssued.Inc()
	m.BillItems.Observe(float64(len(b.Items)))
	m.BillActual.Observe(b.TotalActual.Decimal().InexactFloat64())
	return nil
}

// OnBillUpdated implements plugin.OnBillUpdated.
func (m *MetricsExtension) OnBillUpdated(_ context.Context, _, _ *bill.Bill) error {
	m.BillUpdated.Inc()
	return nil
}

// OnBillDeleted implements plugin.OnBillDeleted.
func (m *MetricsExtension) OnBillDeleted(_ context.Context, _ *bill.Bill) error {
	m.BillDeleted.Inc()
	return nil
}

// OnPaymentRecorded implements plugin.OnPaymentRecorded.
func (m *MetricsExtension) OnPaymentRecorded(_ context.Context, in payment.Input, alloc *payment.Allocation) error {
	m.PaymentRecorded.Inc()
	m.PaymentAmount.Observe(in.Amount.Decimal().InexactFloat64())
	m.PaymentBillsCount.Observe(float64(len(alloc.Bills)))
	if alloc.Remaining.IsPositive() {
		m.PaymentUnallocated.Add(alloc.Remaining.Decimal().InexactFloat64())
	}
	return nil
}

// OnSettingsUpdated implements plugin.OnSettingsUpdated.
func (m *MetricsExtension) OnSettingsUpdated(_ context.Context, _ *settings.CompanySettings) error {
	m.SettingsUpdated.Inc()
	return nil
}

// OnLedgerMutated implements plugin.OnLedgerMutated.
func (m *MetricsExtension) OnLedgerMutated(_ context.Context, _ *plugin.Mutation) error {
	m.LedgerMutations.Inc()
	return nil
}
