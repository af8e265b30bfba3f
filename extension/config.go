package extension

import "time"

// Config holds the haulage extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.haulage" or "haulage" keys).
type Config struct {
	// DisableRoutes prevents the HTTP API handler from being built.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for the API routes (default: "/haulage").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// Driver names the grove driver behind a database passed with
	// WithGroveDB: "postgres", "sqlite" or "mongo".
	Driver string `json:"driver" mapstructure:"driver" yaml:"driver"`

	// EditDrift keeps client totals unchanged when a bill is edited.
	EditDrift bool `json:"edit_drift" mapstructure:"edit_drift" yaml:"edit_drift"`

	// HookTimeout bounds a single plugin call (default: 5s).
	HookTimeout time.Duration `json:"hook_timeout" mapstructure:"hook_timeout" yaml:"hook_timeout"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BasePath:    "/haulage",
		HookTimeout: 5 * time.Second,
	}
}
