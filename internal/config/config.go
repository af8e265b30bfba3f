// Package config reads the haulage command's settings from the environment.
// A .env file in the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xraph/haulage/backup"
	"github.com/xraph/haulage/internal/logger"
)

// Store kinds the command can run on.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
)

type Config struct {
	// Storage
	Store   string
	DataDir string

	// HTTP
	Addr     string
	BasePath string
	AuthUser string
	AuthPass string

	// Redis, for the shared bill counter and client locks
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// Backup sinks
	BackupDir      string
	GCSBucket      string
	GCSPrefix      string
	GCSCredentials string
	S3             backup.S3Config
	PubSubProject  string
	PubSubTopic    string

	// Ledger behaviour
	EditDrift   bool
	HookTimeout time.Duration

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	var errs []error

	redisDB, err := getInt("REDIS_DB", 0)
	errs = append(errs, err)
	editDrift, err := getBool("HAULAGE_EDIT_DRIFT", false)
	errs = append(errs, err)
	pathStyle, err := getBool("BACKUP_S3_PATH_STYLE", false)
	errs = append(errs, err)
	hookTimeout, err := getDuration("HAULAGE_HOOK_TIMEOUT", 5*time.Second)
	errs = append(errs, err)

	config := &Config{
		Store:          strings.ToLower(getEnv("HAULAGE_STORE", StoreFile)),
		DataDir:        getEnv("HAULAGE_DATA_DIR", "./data"),
		Addr:           getEnv("HAULAGE_ADDR", ":8080"),
		BasePath:       getEnv("HAULAGE_BASE_PATH", "/api/v1"),
		AuthUser:       getEnv("AUTH_USER", ""),
		AuthPass:       getEnv("AUTH_PASS", ""),
		RedisAddress:   getEnv("REDIS_ADDRESS", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        redisDB,
		BackupDir:      getEnv("BACKUP_DIR", ""),
		GCSBucket:      getEnv("BACKUP_GCS_BUCKET", ""),
		GCSPrefix:      getEnv("BACKUP_GCS_PREFIX", ""),
		GCSCredentials: getEnv("BACKUP_GCS_CREDENTIALS", ""),
		S3: backup.S3Config{
			Bucket:    getEnv("BACKUP_S3_BUCKET", ""),
			Prefix:    getEnv("BACKUP_S3_PREFIX", ""),
			Region:    getEnv("BACKUP_S3_REGION", "ap-south-1"),
			Endpoint:  getEnv("BACKUP_S3_ENDPOINT", ""),
			AccessKey: getEnv("BACKUP_S3_ACCESS_KEY", ""),
			SecretKey: getEnv("BACKUP_S3_SECRET_KEY", ""),
			PathStyle: pathStyle,
		},
		PubSubProject: getEnv("BACKUP_PUBSUB_PROJECT", ""),
		PubSubTopic:   getEnv("BACKUP_PUBSUB_TOPIC", ""),
		EditDrift:     editDrift,
		HookTimeout:   hookTimeout,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:     getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

// Validate checks combinations that cannot work.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile:
		if c.DataDir == "" {
			return errors.New("HAULAGE_DATA_DIR is required for the file store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("HAULAGE_STORE %q is not one of %s, %s", c.Store, StoreFile, StoreMemory)
	}
	if (c.AuthUser == "") != (c.AuthPass == "") {
		return errors.New("AUTH_USER and AUTH_PASS must be set together")
	}
	if (c.PubSubProject == "") != (c.PubSubTopic == "") {
		return errors.New("BACKUP_PUBSUB_PROJECT and BACKUP_PUBSUB_TOPIC must be set together")
	}
	if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
		return errors.New("BACKUP_S3_ACCESS_KEY and BACKUP_S3_SECRET_KEY must be set together")
	}
	if c.HookTimeout <= 0 {
		return errors.New("HAULAGE_HOOK_TIMEOUT must be positive")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
