// Package migrations owns the database schema. The SQL files are embedded so
// the binary can migrate without the source tree.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var scripts embed.FS

const dir = "sql"

func open(pool *pgxpool.Pool) (*sql.DB, error) {
	goose.SetBaseFS(scripts)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return stdlib.OpenDBFromPool(pool), nil
}

// Up applies every pending migration and returns the resulting version.
func Up(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	db, err := open(pool)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}
	return goose.GetDBVersionContext(ctx, db)
}

// Down rolls back steps migrations.
func Down(ctx context.Context, pool *pgxpool.Pool, steps int) (int64, error) {
	db, err := open(pool)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	for i := 0; i < steps; i++ {
		if err := goose.DownContext(ctx, db, dir); err != nil {
			return 0, fmt.Errorf("failed to run down migration: %w", err)
		}
	}
	return goose.GetDBVersionContext(ctx, db)
}

// Status prints the applied state of every migration through goose's logger.
func Status(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	db, err := open(pool)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := goose.StatusContext(ctx, db, dir); err != nil {
		return 0, fmt.Errorf("failed to get status: %w", err)
	}
	return goose.GetDBVersionContext(ctx, db)
}
