package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

const componentsTableSQL = `
	CREATE TABLE IF NOT EXISTS components (
		id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name              TEXT NOT NULL,
		category          TEXT NOT NULL,
		price_bdt         INTEGER NOT NULL CHECK (price_bdt >= 0),
		stock             TEXT NOT NULL DEFAULT 'In Stock',
		specs             JSONB NOT NULL DEFAULT '{}'::jsonb,
		performance_score INTEGER CHECK (performance_score BETWEEN 0 AND 100),
		retailer          TEXT,
		url               TEXT,
		source            TEXT,
		last_updated      TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (name, category)
	);
	CREATE INDEX IF NOT EXISTS components_category_price_idx ON components (category, price_bdt);
	CREATE INDEX IF NOT EXISTS components_stock_idx ON components (stock);
	CREATE INDEX IF NOT EXISTS components_perf_idx ON components (performance_score DESC);
`

const buildLogsTableSQL = `
	CREATE TABLE IF NOT EXISTS build_logs (
		id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		purpose      TEXT NOT NULL,
		budget       INTEGER NOT NULL,
		total_price  INTEGER,
		build        JSONB,
		requirements JSONB,
		error        TEXT,
		source       TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS build_logs_created_idx ON build_logs (created_at DESC);
	CREATE INDEX IF NOT EXISTS build_logs_purpose_idx ON build_logs (purpose);
`

// InitSchema creates the tables Rigger reads and writes. Safe to run on every start.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for name, ddl := range map[string]string{
		"components": componentsTableSQL,
		"build_logs": buildLogsTableSQL,
	} {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("init %s schema: %w", name, err)
		}
	}
	return nil
}
