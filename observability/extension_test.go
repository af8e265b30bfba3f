package observability_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	haulage "github.com/xraph/haulage"
	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/observability"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/store/memory"
	"github.com/xraph/haulage/types"
)

func TestMetricsExtensionCounts(t *testing.T) {
	ctx := context.Background()
	factory := observability.NewPrometheusFactory()
	metrics := observability.NewMetricsExtension(factory)

	l := haulage.New(memory.New(),
		haulage.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		haulage.WithPlugin(metrics),
	)
	if err := l.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = l.Stop() }()

	c, err := l.AddClient(ctx, client.Input{Name: "Patel Roadlines", Address: "Ankleshwar"})
	if err != nil {
		t.Fatal(err)
	}
	for _, rate := range []int64{1000, 2000} {
		if _, err := l.IssueBill(ctx, bill.IssueInput{
			ClientID: c.ID,
			Date:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			Items:    []bill.ItemInput{{Qty: 1, Rate: types.Rupees(rate)}},
		}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := l.RecordPayment(ctx, payment.Input{
		ClientID: c.ID,
		Amount:   types.Rupees(3250),
		Date:     time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatal(err)
	}

	counter := func(c observability.Counter) float64 {
		pc, ok := c.(prometheus.Counter)
		if !ok {
			t.Fatalf("%T is not a prometheus counter", c)
		}
		return testutil.ToFloat64(pc)
	}
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"client created", counter(metrics.ClientCreated), 1},
		{"bill issued", counter(metrics.BillIssued), 2},
		{"payment recorded", counter(metrics.PaymentRecorded), 1},
		{"unallocated rupees", counter(metrics.PaymentUnallocated), 250},
		{"mutations", counter(metrics.LedgerMutations), 4},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	rec := httptest.NewRecorder()
	factory.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{"haulage_bill_issued_total 2", "haulage_bill_actual_amount_count 2"} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %q", want)
		}
	}
}

func TestPrometheusFactoryReusesMetrics(t *testing.T) {
	f := observability.NewPrometheusFactory()
	a := f.Counter("haulage.bill.issued")
	b := f.Counter("haulage.bill.issued")
	a.Inc()
	b.Add(2)
	if got := testutil.ToFloat64(a.(prometheus.Counter)); got != 3 {
		t.Errorf("shared counter = %v, want 3", got)
	}
	if n, err := testutil.GatherAndCount(f.Registry()); err != nil || n != 1 {
		t.Errorf("registered = %d, %v; want 1", n, err)
	}
}
