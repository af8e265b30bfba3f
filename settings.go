package haulage

import (
	"context"
	"fmt"
	"strings"

	"github.com/xraph/haulage/settings"
)

// GetSettings returns the saved company settings, or settings.Default when
// none have been saved yet.
func (l *Ledger) GetSettings(ctx context.Context) (*settings.CompanySettings, error) {
	s, err := l.store.GetSettings(ctx)
	if IsNotFound(err) {
		return settings.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

// UpdateSettings validates and saves the company settings.
func (l *Ledger) UpdateSettings(ctx context.Context, s *settings.CompanySettings) (*settings.CompanySettings, error) {
	cp := *s
	cp.Name = strings.TrimSpace(cp.Name)
	cp.Address = strings.TrimSpace(cp.Address)
	cp.Phone = strings.TrimSpace(cp.Phone)
	if err := check(cp); err != nil {
		return nil, err
	}
	cp.UpdatedAt = l.now().UTC()

	if err := l.store.SaveSettings(ctx, &cp); err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}

	l.plugins.EmitSettingsUpdated(ctx, &cp)
	l.mutated(ctx, "settings.updated", ID{})
	return &cp, nil
}
