package catalog

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

const productColumns = "id, sku, name, brand, color, size, mrp, price, quantity"

const upsertSQL = `
INSERT INTO products (sku, name, brand, color, size, mrp, price, quantity)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (sku) DO UPDATE SET
    name     = EXCLUDED.name,
    brand    = EXCLUDED.brand,
    color    = EXCLUDED.color,
    size     = EXCLUDED.size,
    mrp      = EXCLUDED.mrp,
    price    = EXCLUDED.price,
    quantity = EXCLUDED.quantity
RETURNING id`

// PostgresStore is a core.Store on a pgx connection pool. Every Upsert is a
// single autocommitted statement.
type PostgresStore struct {
	pool *pgxpool.Pool
	db   DBTX
}

// NewPostgresStore wraps an open pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, db: pool}
}

// NewPool opens a pool using the configured limits and verifies the
// connection.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the products table and its indexes if missing.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Upsert inserts p or replaces all fields of the row with the same SKU.
func (s *PostgresStore) Upsert(ctx context.Context, p core.Product) (core.Product, error) {
	err := s.db.QueryRow(ctx, upsertSQL,
		p.SKU, p.Name, p.Brand, p.Color, p.Size, p.MRP, p.Price, p.Quantity,
	).Scan(&p.ID)
	if err != nil {
		return core.Product{}, fmt.Errorf("upsert product %s: %w", p.SKU, err)
	}
	return p, nil
}

// Count returns the number of products matching f.
func (s *PostgresStore) Count(ctx context.Context, f core.ProductFilter) (int64, error) {
	where, args := filterClause(f).Build()

	var total int64
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM products"+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// List returns one page of matching products ordered by id.
func (s *PostgresStore) List(ctx context.Context, f core.ProductFilter, offset, limit int) ([]core.Product, error) {
	wb := filterClause(f)
	where, args := wb.Build()

	query := "SELECT " + productColumns + " FROM products" + where +
		fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", wb.NextArgIndex(), wb.NextArgIndex()+1)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	products, err := pgx.CollectRows(rows, pgx.RowToStructByPos[core.Product])
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []core.Product{}
	}
	return products, nil
}

// Ping checks that the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func filterClause(f core.ProductFilter) *WhereBuilder {
	wb := NewWhereBuilder()
	wb.AddContains("brand", f.Brand)
	wb.AddContains("color", f.Color)
	wb.AddMin("price", f.MinPrice)
	wb.AddMax("price", f.MaxPrice)
	return wb
}
