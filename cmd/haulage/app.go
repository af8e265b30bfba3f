package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/xraph/haulage"
	audithook "github.com/xraph/haulage/audit_hook"
	"github.com/xraph/haulage/backup"
	"github.com/xraph/haulage/export"
	"github.com/xraph/haulage/internal/config"
	"github.com/xraph/haulage/internal/logger"
	"github.com/xraph/haulage/lock"
	"github.com/xraph/haulage/observability"
	"github.com/xraph/haulage/sequence"
	"github.com/xraph/haulage/store"
	"github.com/xraph/haulage/store/file"
	"github.com/xraph/haulage/store/memory"
)

// app is everything a command needs: the started ledger and the plugins
// that some commands talk to directly.
type app struct {
	cfg     *config.Config
	ledger  *haulage.Ledger
	backup  *backup.Extension
	metrics *observability.PrometheusFactory
	closers []io.Closer
	log     zerolog.Logger
}

// openApp builds and starts the ledger described by cfg.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		cfg:     cfg,
		metrics: observability.NewPrometheusFactory(),
		log:     logger.WithComponent("app"),
	}

	s, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	sinks, err := a.openSinks(ctx)
	if err != nil {
		a.closeAll()
		return nil, err
	}
	bopts := []backup.Option{backup.WithLogger(logger.Slog("backup"))}
	for _, sink := range sinks {
		bopts = append(bopts, backup.WithSink(sink))
	}
	a.backup = backup.New(bopts...)

	opts := []haulage.Option{
		haulage.WithLogger(logger.Slog("ledger")),
		haulage.WithHookTimeout(cfg.HookTimeout),
		haulage.WithPlugin(export.NewXLSXFormatter(logger.Slog("export"))),
		haulage.WithPlugin(audithook.New(
			audithook.LogRecorder(logger.Slog("audit")),
			audithook.WithLogger(logger.Slog("audit")),
		)),
		haulage.WithPlugin(observability.NewMetricsExtension(a.metrics)),
	}
	if len(sinks) > 0 {
		opts = append(opts, haulage.WithPlugin(a.backup))
	}
	if cfg.EditDrift {
		opts = append(opts, haulage.WithEditDrift())
	}
	if cfg.RedisAddress != "" {
		redisOpts, err := a.redis(ctx, s)
		if err != nil {
			a.closeAll()
			return nil, err
		}
		opts = append(opts, redisOpts...)
	}

	a.ledger = haulage.New(s, opts...)
	if err := a.ledger.Start(ctx); err != nil {
		a.closeAll()
		return nil, err
	}
	return a, nil
}

// openStore returns the memory store, or in file mode the store backed by
// the data file. Every file store write must succeed for its operation to.
func (a *app) openStore(ctx context.Context) (store.Store, error) {
	if a.cfg.Store != config.StoreFile {
		return memory.New(), nil
	}
	fs, err := file.Open(ctx, a.cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}
	n, err := fs.CurrentBillNumber(ctx)
	if err != nil {
		return nil, err
	}
	a.log.Info().Str("path", fs.Path()).Int64("bill_counter", n).Msg("Ledger loaded")
	return fs, nil
}

// openSinks builds every configured backup sink.
func (a *app) openSinks(ctx context.Context) ([]backup.Sink, error) {
	var sinks []backup.Sink

	if a.cfg.BackupDir != "" {
		fs, err := backup.NewFileSink(a.cfg.BackupDir)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, fs)
	}

	creds, err := a.gcpCredentials()
	if err != nil {
		return nil, err
	}
	if a.cfg.GCSBucket != "" {
		gcs, err := backup.NewGCSSink(ctx, a.cfg.GCSBucket, a.cfg.GCSPrefix, creds)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, gcs)
		sinks = append(sinks, gcs)
	}
	if a.cfg.S3.Bucket != "" {
		s3, err := backup.NewS3Sink(ctx, a.cfg.S3)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s3)
	}
	if a.cfg.PubSubProject != "" {
		ps, err := backup.NewPubSubSink(ctx, a.cfg.PubSubProject, a.cfg.PubSubTopic, creds)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, ps)
		sinks = append(sinks, ps)
	}

	for _, s := range sinks {
		a.log.Debug().Str("sink", s.Name()).Msg("Backup sink enabled")
	}
	return sinks, nil
}

// gcpCredentials accepts inline JSON or a path to a key file. Empty means
// application default credentials.
func (a *app) gcpCredentials() ([]byte, error) {
	raw := strings.TrimSpace(a.cfg.GCSCredentials)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "{") {
		return []byte(raw), nil
	}
	data, err := os.ReadFile(raw)
	if err != nil {
		return nil, fmt.Errorf("read gcp credentials: %w", err)
	}
	return data, nil
}

// redis moves the bill counter and the per-client locks to Redis so that
// several processes can share one ledger. The Redis counter is raised to
// the loaded snapshot's counter if it lags behind.
func (a *app) redis(ctx context.Context, s store.Store) ([]haulage.Option, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     a.cfg.RedisAddress,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	})
	a.closers = append(a.closers, rdb)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", a.cfg.RedisAddress, err)
	}

	seq := sequence.NewRedis(rdb, "")
	local, err := s.CurrentBillNumber(ctx)
	if err != nil {
		return nil, err
	}
	shared, err := seq.CurrentBillNumber(ctx)
	if err != nil {
		return nil, err
	}
	if shared < local {
		if err := seq.SetBillNumber(ctx, local); err != nil {
			return nil, err
		}
	}

	a.log.Info().Str("address", a.cfg.RedisAddress).Msg("Using Redis for bill numbers and locks")
	return []haulage.Option{
		haulage.WithSequence(seq),
		haulage.WithLocker(lock.NewRedis(rdb, lock.WithLogger(logger.Slog("lock")))),
	}, nil
}

// Close stops the ledger and releases every client the app opened.
func (a *app) Close() error {
	var errs []error
	if a.ledger != nil {
		errs = append(errs, a.ledger.Stop())
	}
	errs = append(errs, a.closeAll())
	return errors.Join(errs...)
}

func (a *app) closeAll() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
