// Package extension provides the Forge extension adapter for haulage.
//
// It implements the forge.Extension interface to integrate the ledger
// into a Forge application with DI registration and lifecycle management.
// The SQL and document stores are reached here: pass an opened grove.DB
// with WithGroveDB and the matching store is built for it.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.haulage" or "haulage" keys.
package extension

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	"github.com/xraph/haulage"
	"github.com/xraph/haulage/api"
	"github.com/xraph/haulage/store"
	"github.com/xraph/haulage/store/memory"
	"github.com/xraph/haulage/store/mongo"
	"github.com/xraph/haulage/store/postgres"
	"github.com/xraph/haulage/store/sqlite"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "haulage"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Billing ledger for transport contractors"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Grove drivers WithGroveDB understands.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the haulage ledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *haulage.Ledger
	handler    *api.Handler
	store      store.Store
	groveDB    *grove.DB
	ledgerOpts []haulage.Option
}

// New creates a new haulage Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying ledger.
// This is nil until Register is called.
func (e *Extension) Engine() *haulage.Ledger { return e.engine }

// Handler returns the HTTP API, mounted under the configured base path.
// It is nil until Register is called, and stays nil with DisableRoutes.
func (e *Extension) Handler() http.Handler {
	if e.handler == nil {
		return nil
	}
	return e.handler
}

// Register implements [forge.Extension]. It loads configuration,
// initializes the ledger, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if e.store == nil {
		s, err := NewStore(e.groveDB, e.config.Driver)
		if err != nil {
			return err
		}
		e.store = s
	}

	e.engine = haulage.New(e.store, e.buildLedgerOpts()...)

	if err := vessel.Provide(fapp.Container(), func() (*haulage.Ledger, error) {
		return e.engine, nil
	}); err != nil {
		return err
	}

	if e.config.DisableRoutes {
		return nil
	}
	e.handler = api.New(e.engine, api.WithBasePath(e.config.BasePath))
	return vessel.Provide(fapp.Container(), func() (*api.Handler, error) {
		return e.handler, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("haulage: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("haulage: store not initialized")
	}
	return e.store.Ping(ctx)
}

// NewStore picks the store for a grove database. A nil db gives the
// in-memory store.
func NewStore(db *grove.DB, driver string) (store.Store, error) {
	if db == nil {
		return memory.New(), nil
	}
	switch driver {
	case DriverPostgres, "pg":
		return postgres.New(db), nil
	case DriverSQLite:
		return sqlite.New(db), nil
	case DriverMongo:
		return mongo.New(db), nil
	case "":
		return nil, errors.New("haulage: grove database given without a driver")
	default:
		return nil, fmt.Errorf("haulage: unsupported grove driver %q", driver)
	}
}

// buildLedgerOpts constructs haulage.Option values from the resolved config.
func (e *Extension) buildLedgerOpts() []haulage.Option {
	opts := make([]haulage.Option, 0, len(e.ledgerOpts)+2)

	if e.config.HookTimeout > 0 {
		opts = append(opts, haulage.WithHookTimeout(e.config.HookTimeout))
	}
	if e.config.EditDrift {
		opts = append(opts, haulage.WithEditDrift())
	}

	// Pass-through options come last so they win.
	opts = append(opts, e.ledgerOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("haulage: configuration is required but not found in config files; " +
				"ensure 'extensions.haulage' or 'haulage' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("haulage: configuration loaded",
		forge.F("disable_routes", e.config.DisableRoutes),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("base_path", e.config.BasePath),
		forge.F("driver", e.config.Driver),
		forge.F("edit_drift", e.config.EditDrift),
		forge.F("hook_timeout", e.config.HookTimeout),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.haulage" first (namespaced pattern).
	if cm.IsSet("extensions.haulage") {
		if err := cm.Bind("extensions.haulage", &cfg); err == nil {
			e.Logger().Debug("haulage: loaded config from file",
				forge.F("key", "extensions.haulage"),
			)
			return cfg, true
		}
		e.Logger().Warn("haulage: failed to bind extensions.haulage config",
			forge.F("error", "bind failed"),
		)
	}

	// Try the short "haulage" key.
	if cm.IsSet("haulage") {
		if err := cm.Bind("haulage", &cfg); err == nil {
			e.Logger().Debug("haulage: loaded config from file",
				forge.F("key", "haulage"),
			)
			return cfg, true
		}
		e.Logger().Warn("haulage: failed to bind haulage config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.BasePath == "" {
		cfg.BasePath = defaults.BasePath
	}
	if cfg.HookTimeout == 0 {
		cfg.HookTimeout = defaults.HookTimeout
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableRoutes {
		yamlConfig.DisableRoutes = true
	}
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.EditDrift {
		yamlConfig.EditDrift = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.BasePath == "" && programmaticConfig.BasePath != "" {
		yamlConfig.BasePath = programmaticConfig.BasePath
	}

	if yamlConfig.Driver == "" && programmaticConfig.Driver != "" {
		yamlConfig.Driver = programmaticConfig.Driver
	}

	// Duration fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.HookTimeout == 0 && programmaticConfig.HookTimeout != 0 {
		yamlConfig.HookTimeout = programmaticConfig.HookTimeout
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
