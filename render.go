package haulage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

// RenderBill hands the bill and the company settings, unchanged, to the
// formatter registered for format and streams its output to w.
func (l *Ledger) RenderBill(ctx context.Context, billID ID, format string, w io.Writer) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if l.plugins.BillFormatter(format) == nil {
		formats := l.plugins.Formats()
		sort.Strings(formats)
		return fmt.Errorf("%w: %q (have %v)", ErrUnsupportedFormat, format, formats)
	}

	b, err := l.store.GetBill(ctx, billID)
	if err != nil {
		return fmt.Errorf("render bill: %w", err)
	}
	s, err := l.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("render bill %s: %w", b.BillNo(), err)
	}

	if _, err := l.plugins.RenderBill(ctx, format, w, b, s); err != nil {
		return fmt.Errorf("render bill %s as %s: %w", b.BillNo(), format, err)
	}
	return nil
}

// BillContentType returns the MIME type produced for format, or "" when no
// formatter handles it.
func (l *Ledger) BillContentType(format string) string {
	if f := l.plugins.BillFormatter(strings.ToLower(format)); f != nil {
		return f.ContentType()
	}
	return ""
}
