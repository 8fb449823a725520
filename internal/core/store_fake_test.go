package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// fakeStore is an in-memory Store with failure injection for tests.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	bySKU    map[string]int
	products []Product

	failSKUs   map[string]error // Upsert fails for these SKUs
	countErr   error
	countCalls int
	listCalls  int
	upserts    []string // SKUs in call order
	onUpsert   func()   // called after every Upsert
	onList     func()   // called after List has read its page
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bySKU:    make(map[string]int),
		failSKUs: make(map[string]error),
	}
}

func (s *fakeStore) Upsert(ctx context.Context, p Product) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.onUpsert != nil {
		defer s.onUpsert()
	}
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}

	s.upserts = append(s.upserts, p.SKU)
	if err := s.failSKUs[p.SKU]; err != nil {
		return Product{}, fmt.Errorf("upsert product %s: %w", p.SKU, err)
	}

	if i, ok := s.bySKU[p.SKU]; ok {
		p.ID = s.products[i].ID
		s.products[i] = p
		return p, nil
	}

	s.nextID++
	p.ID = s.nextID
	s.bySKU[p.SKU] = len(s.products)
	s.products = append(s.products, p)
	return p, nil
}

func (s *fakeStore) Count(_ context.Context, f ProductFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.countCalls++
	if s.countErr != nil {
		return 0, s.countErr
	}
	return int64(len(s.filter(f))), nil
}

func (s *fakeStore) List(_ context.Context, f ProductFilter, offset, limit int) ([]Product, error) {
	page := s.list(f, offset, limit)
	if s.onList != nil {
		s.onList()
	}
	return page, nil
}

func (s *fakeStore) list(f ProductFilter, offset, limit int) []Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listCalls++
	matched := s.filter(f)
	if offset >= len(matched) {
		return nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return append([]Product(nil), matched[offset:end]...)
}

func (s *fakeStore) Ping(context.Context) error { return nil }

func (s *fakeStore) filter(f ProductFilter) []Product {
	var out []Product
	for _, p := range s.products {
		if f.Brand != "" && !strings.Contains(strings.ToLower(p.Brand), strings.ToLower(f.Brand)) {
			continue
		}
		if f.Color != "" && (p.Color == nil || !strings.Contains(strings.ToLower(*p.Color), strings.ToLower(f.Color))) {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *fakeStore) get(sku string) (Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.bySKU[sku]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

func (s *fakeStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}
