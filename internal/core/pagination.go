package core

import "fmt"

// Pagination bounds for listing and search.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageRequest is a validated page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest checks page >= 1 and 1 <= limit <= MaxLimit.
func NewPageRequest(page, limit int) (PageRequest, error) {
	if page < 1 {
		return PageRequest{}, fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidPagination, page)
	}
	if limit < 1 || limit > MaxLimit {
		return PageRequest{}, fmt.Errorf("%w: limit must be between 1 and %d, got %d", ErrInvalidPagination, MaxLimit, limit)
	}
	return PageRequest{Page: page, Limit: limit}, nil
}

// Offset returns the number of rows before this page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Validate rejects negative bounds and an inverted price range.
func (f ProductFilter) Validate() error {
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return fmt.Errorf("%w: minPrice must be >= 0", ErrInvalidFilter)
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return fmt.Errorf("%w: maxPrice must be >= 0", ErrInvalidFilter)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return ErrInvalidPriceRange
	}
	return nil
}
