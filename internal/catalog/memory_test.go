package catalog

import (
	"context"
	"testing"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, func(*testing.T) core.Store { return NewMemoryStore() })
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Upsert(ctx, product("A1", "BrandA", str("Red"), 10))
	require.NoError(t, err)

	list, err := s.List(ctx, core.ProductFilter{}, 0, 1)
	require.NoError(t, err)
	*list[0].Color = "Blue"

	list, err = s.List(ctx, core.ProductFilter{}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "Red", *list[0].Color)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Upsert(ctx, product("A1", "BrandA", nil, 10))
	assert.ErrorIs(t, err, context.Canceled)
}
