// Package app wires storage, the session store and the backend client from config.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"tasktrack/internal/api"
	"tasktrack/internal/config"
	"tasktrack/internal/session"
	"tasktrack/internal/storage"
)

type App struct {
	Config  *config.Config
	KV      storage.KV
	Session *session.Store
	API     *api.Client
	Logger  *slog.Logger
}

// Open builds the application for workspace and restores any stored session.
func Open(ctx context.Context, workspace string, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	kv, err := OpenStorage(ctx, workspace, cfg)
	if err != nil {
		return nil, err
	}
	sess := session.New(kv, nil, session.WithLogger(logger))
	client := api.New(cfg.API.BaseURL, sess, api.WithLogger(logger))
	sess.SetAuth(client)
	if err := sess.Restore(ctx); err != nil {
		kv.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return &App{Config: cfg, KV: kv, Session: sess, API: client, Logger: logger}, nil
}

// OpenStorage opens the durable store selected by cfg.Storage.Driver.
func OpenStorage(ctx context.Context, workspace string, cfg *config.Config) (storage.KV, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite, "":
		return storage.OpenSQLite(ctx, workspace)
	case config.DriverRedis:
		r := cfg.Storage.Redis
		return storage.OpenRedis(ctx, storage.RedisOptions{
			Addr:     r.Addr,
			Password: r.Password,
			DB:       r.DB,
			Prefix:   r.Prefix,
		})
	case config.DriverMemory:
		return storage.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func (a *App) Close() error {
	if a == nil || a.KV == nil {
		return nil
	}
	return a.KV.Close()
}
