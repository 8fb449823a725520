// Package catalog provides core.Store implementations backed by PostgreSQL
// and by process memory.
package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/JonMunkholm/catalog/internal/core"
)

// MemoryStore keeps products in process memory. Products are listed in
// insertion order, which matches the id order of PostgresStore.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	bySKU    map[string]int
	products []core.Product
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bySKU: make(map[string]int)}
}

// Upsert inserts p or replaces every field of the product with the same SKU,
// keeping its id.
func (s *MemoryStore) Upsert(ctx context.Context, p core.Product) (core.Product, error) {
	if err := ctx.Err(); err != nil {
		return core.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.bySKU[p.SKU]; ok {
		p.ID = s.products[i].ID
		s.products[i] = clone(p)
		return p, nil
	}

	s.nextID++
	p.ID = s.nextID
	s.bySKU[p.SKU] = len(s.products)
	s.products = append(s.products, clone(p))
	return p, nil
}

// Count returns the number of products matching f.
func (s *MemoryStore) Count(ctx context.Context, f core.ProductFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if f.IsEmpty() {
		return int64(len(s.products)), nil
	}

	var n int64
	for i := range s.products {
		if matches(&s.products[i], f) {
			n++
		}
	}
	return n, nil
}

// List returns up to limit matching products after skipping offset matches.
func (s *MemoryStore) List(ctx context.Context, f core.ProductFilter, offset, limit int) ([]core.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Product, 0, limit)
	skipped := 0
	for i := range s.products {
		if len(out) == limit {
			break
		}
		if !matches(&s.products[i], f) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, clone(s.products[i]))
	}
	return out, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func matches(p *core.Product, f core.ProductFilter) bool {
	if f.Brand != "" && !containsFold(p.Brand, f.Brand) {
		return false
	}
	if f.Color != "" && (p.Color == nil || !containsFold(*p.Color, f.Color)) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// clone copies the optional fields so callers cannot mutate stored values.
func clone(p core.Product) core.Product {
	if p.Color != nil {
		c := *p.Color
		p.Color = &c
	}
	if p.Size != nil {
		s := *p.Size
		p.Size = &s
	}
	return p
}
