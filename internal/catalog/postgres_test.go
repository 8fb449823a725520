package catalog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set CATALOG_TEST_DATABASE_URL to a disposable database to run these tests.
// The products table is truncated before every subtest.
func testPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()

	url := os.Getenv("CATALOG_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CATALOG_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := NewPool(ctx, config.DatabaseConfig{
		URL:             url,
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, EnsureSchema(ctx, pool))
	_, err = pool.Exec(ctx, "TRUNCATE products RESTART IDENTITY")
	require.NoError(t, err)

	return NewPostgresStore(pool)
}

func TestPostgresStore(t *testing.T) {
	testStoreContract(t, func(t *testing.T) core.Store { return testPostgresStore(t) })
}

func TestPostgresStore_ConstraintViolationIsWrapped(t *testing.T) {
	s := testPostgresStore(t)

	_, err := s.Upsert(context.Background(), core.Product{
		SKU: "BAD", Name: "Bad", Brand: "BrandA", MRP: 10, Price: 20, Quantity: 1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert product BAD")
	assert.Contains(t, err.Error(), "violates check constraint")
	assert.Equal(t, "DB003", core.MapError(err).Code)
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	s := testPostgresStore(t)
	assert.NoError(t, EnsureSchema(context.Background(), s.db))
}
