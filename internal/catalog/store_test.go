package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func product(sku, brand string, color *string, price float64) core.Product {
	return core.Product{
		SKU:      sku,
		Name:     "Item " + sku,
		Brand:    brand,
		Color:    color,
		MRP:      price + 100,
		Price:    price,
		Quantity: 1,
	}
}

// testStoreContract runs the behavior every core.Store must share.
// newStore must return an empty store.
func testStoreContract(t *testing.T, newStore func(t *testing.T) core.Store) {
	ctx := context.Background()

	t.Run("upsert assigns id", func(t *testing.T) {
		s := newStore(t)

		got, err := s.Upsert(ctx, product("A1", "BrandA", nil, 10))
		require.NoError(t, err)
		assert.NotZero(t, got.ID)
		assert.Equal(t, "A1", got.SKU)
	})

	t.Run("upsert replaces all fields and keeps id", func(t *testing.T) {
		s := newStore(t)

		first, err := s.Upsert(ctx, product("A1", "BrandA", str("Red"), 10))
		require.NoError(t, err)

		replacement := core.Product{SKU: "A1", Name: "Tee v2", Brand: "BrandB", Size: str("L"), MRP: 50, Price: 40, Quantity: 0}
		second, err := s.Upsert(ctx, replacement)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		total, err := s.Count(ctx, core.ProductFilter{})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)

		list, err := s.List(ctx, core.ProductFilter{}, 0, 10)
		require.NoError(t, err)
		require.Len(t, list, 1)

		replacement.ID = first.ID
		assert.Equal(t, replacement, list[0])
	})

	t.Run("empty store", func(t *testing.T) {
		s := newStore(t)

		total, err := s.Count(ctx, core.ProductFilter{})
		require.NoError(t, err)
		assert.Zero(t, total)

		list, err := s.List(ctx, core.ProductFilter{}, 0, 10)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("pages are ordered and disjoint", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 15; i++ {
			_, err := s.Upsert(ctx, product(fmt.Sprintf("SKU%02d", i), "BrandA", nil, float64(i+1)))
			require.NoError(t, err)
		}

		var seen []string
		for offset := 0; offset < 15; offset += 5 {
			page, err := s.List(ctx, core.ProductFilter{}, offset, 5)
			require.NoError(t, err)
			require.Len(t, page, 5)
			for _, p := range page {
				seen = append(seen, p.SKU)
			}
		}
		for i, sku := range seen {
			assert.Equal(t, fmt.Sprintf("SKU%02d", i), sku)
		}

		past, err := s.List(ctx, core.ProductFilter{}, 15, 5)
		require.NoError(t, err)
		assert.Empty(t, past)
	})

	t.Run("filters", func(t *testing.T) {
		s := newStore(t)
		seed := []core.Product{
			product("S1", "BrandA", str("Red"), 800),
			product("S2", "BrandA", str("Blue"), 800),
			product("S3", "BrandB", str("Red"), 800),
			product("S4", "brandA-outlet", str("dark red"), 450),
			product("S5", "BrandA", nil, 600),
			product("S6", "50% Brand", nil, 100),
		}
		for _, p := range seed {
			_, err := s.Upsert(ctx, p)
			require.NoError(t, err)
		}

		tests := []struct {
			name   string
			filter core.ProductFilter
			want   []string
		}{
			{"no filter", core.ProductFilter{}, []string{"S1", "S2", "S3", "S4", "S5", "S6"}},
			{"brand substring case-insensitive", core.ProductFilter{Brand: "branda"}, []string{"S1", "S2", "S4", "S5"}},
			{"color excludes missing color", core.ProductFilter{Color: "RED"}, []string{"S1", "S3", "S4"}},
			{"min price inclusive", core.ProductFilter{MinPrice: ptr(600)}, []string{"S1", "S2", "S3", "S5"}},
			{"max price inclusive", core.ProductFilter{MaxPrice: ptr(600)}, []string{"S4", "S5", "S6"}},
			{"conjunction", core.ProductFilter{Brand: "BrandA", Color: "Red", MinPrice: ptr(500), MaxPrice: ptr(900)}, []string{"S1"}},
			{"percent matches literally", core.ProductFilter{Brand: "50%"}, []string{"S6"}},
			{"underscore matches literally", core.ProductFilter{Brand: "Brand_"}, nil},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				total, err := s.Count(ctx, tt.filter)
				require.NoError(t, err)
				assert.EqualValues(t, len(tt.want), total)

				list, err := s.List(ctx, tt.filter, 0, 100)
				require.NoError(t, err)
				got := make([]string, 0, len(list))
				for _, p := range list {
					got = append(got, p.SKU)
				}
				if tt.want == nil {
					assert.Empty(t, got)
				} else {
					assert.Equal(t, tt.want, got)
				}
			})
		}
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newStore(t).Ping(ctx))
	})
}
