// Command seed-db loads an initial catalog and category list into PostgreSQL
// from a JSON file. Existing rows are updated in place, so re-running the
// seed is safe.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/swiftpos/swiftpos/internal/storage/postgres"
)

type seedFile struct {
	Categories []string      `json:"categories"`
	Products   []productJSON `json:"products"`
}

type productJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Stock    int             `json:"stock"`
	ImageURL string          `json:"imageUrl"`
}

const (
	upsertProductSQL = `INSERT INTO products (id, name, price, category, stock, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    price = EXCLUDED.price,
		    category = EXCLUDED.category,
		    stock = EXCLUDED.stock,
		    image_url = EXCLUDED.image_url`

	upsertCategorySQL = `INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`
)

func main() {
	var (
		databaseURL string
		seedPath    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/products.json", "path to seed JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("reading seed file", slog.String("path", seedPath))

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed JSON")
	}

	if err := seedCategories(ctx, pool, seed.Categories); err != nil {
		return errors.Wrap(err, "seed categories")
	}
	return seedProducts(ctx, pool, seed.Products)
}

func seedCategories(ctx context.Context, pool *pgxpool.Pool, names []string) error {
	slog.Info("upserting categories", slog.Int("count", len(names)))

	for _, name := range names {
		if _, err := pool.Exec(ctx, upsertCategorySQL, name); err != nil {
			return errors.Wrapf(err, "upsert category %s", name)
		}
	}
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, products []productJSON) error {
	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Price, p.Category, p.Stock, p.ImageURL,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.Name)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}
	return nil
}
