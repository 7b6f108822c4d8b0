package main

import (
	"context"
	"errors"
	"fmt"

	"qms/core-api/internal/config"
	"qms/core-api/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// initEnv loads configuration, initialises logging and opens the pool shared
// by every command.
func initEnv(ctx context.Context) (config.Config, *pgxpool.Pool, error) {
	cfg := config.Load()
	if err := logger.Init(cfg.Logger); err != nil {
		return cfg, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return cfg, nil, errors.New("DB_CONNECTION_STRING is not set")
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return cfg, nil, fmt.Errorf("db connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return cfg, nil, fmt.Errorf("db ping: %w", err)
	}
	return cfg, pool, nil
}
