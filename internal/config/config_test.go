package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/xraph/haulage/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HAULAGE_STORE", "HAULAGE_ADDR", "AUTH_USER", "AUTH_PASS", "HAULAGE_HOOK_TIMEOUT"} {
		t.Setenv(k, "")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store != config.StoreFile || cfg.Addr != ":8080" || cfg.HookTimeout != 5*time.Second {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.GetLoggerConfig().Level != cfg.LogLevel {
		t.Error("logger config does not follow LOG_LEVEL")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HAULAGE_STORE", "MEMORY")
	t.Setenv("HAULAGE_EDIT_DRIFT", "true")
	t.Setenv("HAULAGE_HOOK_TIMEOUT", "250ms")
	t.Setenv("BACKUP_S3_PATH_STYLE", "1")
	t.Setenv("REDIS_DB", "3")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store != config.StoreMemory || !cfg.EditDrift || cfg.HookTimeout != 250*time.Millisecond ||
		!cfg.S3.PathStyle || cfg.RedisDB != 3 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown store", map[string]string{"HAULAGE_STORE": "oracle"}, "HAULAGE_STORE"},
		{"half auth", map[string]string{"AUTH_USER": "admin"}, "AUTH_USER"},
		{"half pubsub", map[string]string{"BACKUP_PUBSUB_PROJECT": "p"}, "BACKUP_PUBSUB"},
		{"bad bool", map[string]string{"HAULAGE_EDIT_DRIFT": "maybe"}, "HAULAGE_EDIT_DRIFT"},
		{"bad duration", map[string]string{"HAULAGE_HOOK_TIMEOUT": "soon"}, "HAULAGE_HOOK_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}
