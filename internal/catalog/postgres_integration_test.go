//go:build integration

package catalog

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/Rigger/internal/db"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := db.InitSchema(ctx, pool); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}

	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, "TRUNCATE components")
		pool.Close()
	})
	return pool
}

func insertComponent(t *testing.T, pool *pgxpool.Pool, name, category string, price, perf int, specs string) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO components (name, category, price_bdt, performance_score, specs)
		VALUES ($1, $2, $3, $4, $5::jsonb)`, name, category, price, perf, specs)
	if err != nil {
		t.Fatalf("insert %s: %v", name, err)
	}
}

func TestPostgresQueryConstraints(t *testing.T) {
	pool := setupTestDB(t)
	c := NewPostgresCatalog(pool)
	ctx := context.Background()

	insertComponent(t, pool, "MSI B450 Tomahawk", "Motherboard", 4000, 60, `{"chipset":"B450"}`)
	insertComponent(t, pool, "ASUS B650 Prime", "Motherboard", 9000, 75, `{"chipset":"B650"}`)
	insertComponent(t, pool, "Corsair RM750", "PSU", 6000, 70, `{"wattage":"750W"}`)
	insertComponent(t, pool, "Corsair CV550", "PSU", 3000, 55, `{"wattage":550}`)

	boards, err := c.Query(ctx, Query{Category: CategoryMotherboard, MaxPrice: 10000, Filters: []SpecFilter{In(SpecChipset, "B450", "B550")}})
	if err != nil {
		t.Fatalf("query boards: %v", err)
	}
	if len(boards) != 1 || boards[0].Name != "MSI B450 Tomahawk" {
		t.Fatalf("expected only the B450 board, got %+v", boards)
	}
	if boards[0].SpecString(SpecChipset) != "B450" {
		t.Errorf("expected specs to round-trip, got %v", boards[0].Specs)
	}

	psus, err := c.Query(ctx, Query{Category: CategoryPSU, Filters: []SpecFilter{AtLeast(SpecWattage, 600)}})
	if err != nil {
		t.Fatalf("query psus: %v", err)
	}
	if len(psus) != 1 || psus[0].Name != "Corsair RM750" {
		t.Fatalf("expected only the 750W unit, got %+v", psus)
	}

	summary, err := c.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalComponents != 4 || summary.InStockComponents != 4 {
		t.Errorf("unexpected summary %+v", summary)
	}
}
