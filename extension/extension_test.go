package extension_test

import (
	"testing"

	"github.com/xraph/grove"

	"github.com/xraph/haulage/extension"
	"github.com/xraph/haulage/store/memory"
)

func TestNewStoreWithoutDatabase(t *testing.T) {
	s, err := extension.NewStore(nil, extension.DriverPostgres)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*memory.Store); !ok {
		t.Errorf("store = %T, want *memory.Store", s)
	}
}

func TestNewStoreRejectsDriver(t *testing.T) {
	db := new(grove.DB)
	for _, driver := range []string{"", "oracle"} {
		if _, err := extension.NewStore(db, driver); err == nil {
			t.Errorf("driver %q accepted", driver)
		}
	}
}

func TestNewAppliesOptions(t *testing.T) {
	e := extension.New(extension.WithBasePath("/billing"), extension.WithDisableRoutes())
	if e.Name() != extension.ExtensionName {
		t.Errorf("name = %q", e.Name())
	}
	if e.Engine() != nil || e.Handler() != nil {
		t.Error("engine and handler must stay nil before Register")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := extension.DefaultConfig()
	if cfg.BasePath != "/haulage" || cfg.HookTimeout <= 0 {
		t.Errorf("defaults = %+v", cfg)
	}
}
