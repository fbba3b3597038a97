package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/configuration"
)

// app bundles the process-wide dependencies every command needs: parsed
// configuration, the logger, and a pgx pool installed on the context.
type app struct {
	cfg  *configuration.Configuration
	pool *pgxpool.Pool
	log  *logrus.Logger
}

func newApp(ctx context.Context) (*app, error) {
	cfg := configuration.Use()
	pool, err := pgxpool.New(ctx, cfg.Database.Opts)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &app{cfg: cfg, pool: pool, log: cfg.Logger()}, nil
}

func (a *app) context(ctx context.Context) context.Context {
	return composables.WithPool(ctx, a.pool)
}

func (a *app) close() {
	a.pool.Close()
	a.cfg.Unload()
}
