package settings

import "context"

type Store interface {
	// GetSettings returns haulage.ErrSettingsNotFound when nothing has been saved.
	GetSettings(ctx context.Context) (*CompanySettings, error)
	SaveSettings(ctx context.Context, s *CompanySettings) error
}
