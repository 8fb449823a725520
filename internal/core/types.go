package core

import "context"

// Product is a stored catalog record. SKU is the natural key; ID is assigned
// by the store and survives replacement of the other fields.
type Product struct {
	ID       int64   `json:"id"`
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Color    *string `json:"color"`
	Size     *string `json:"size"`
	MRP      float64 `json:"mrp"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// RawRow maps a CSV column name to the untouched cell value.
type RawRow map[string]string

// RowError describes one rejected data row.
type RowError struct {
	Row    int      `json:"row"`    // 1-based line in the file, header is row 1
	Data   RawRow   `json:"data"`   // Original cell values
	Errors []string `json:"errors"` // Every violated rule for the row
}

// IngestionOutcome aggregates the per-row results of one upload.
type IngestionOutcome struct {
	TotalRows   int        `json:"total_rows"`
	ValidRows   int        `json:"valid_rows"`
	InvalidRows int        `json:"invalid_rows"`
	Errors      []RowError `json:"errors"`
}

// ProductFilter is a conjunction of optional search criteria. Zero value
// matches every product.
type ProductFilter struct {
	Brand    string   // Case-insensitive substring of brand
	Color    string   // Case-insensitive substring of color
	MinPrice *float64 // price >= MinPrice
	MaxPrice *float64 // price <= MaxPrice
}

// IsEmpty reports whether the filter has no criteria.
func (f ProductFilter) IsEmpty() bool {
	return f.Brand == "" && f.Color == "" && f.MinPrice == nil && f.MaxPrice == nil
}

// ProductPage is one page of a listing or search.
type ProductPage struct {
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Products []Product `json:"products"`
}

// Store persists products keyed by SKU.
//
// Upsert must be durable before it returns so a later call in the same upload
// sees it; duplicate SKUs in one file therefore resolve to the last row.
// List orders by a stable key so consecutive pages never overlap.
type Store interface {
	Upsert(ctx context.Context, p Product) (Product, error)
	Count(ctx context.Context, f ProductFilter) (int64, error)
	List(ctx context.Context, f ProductFilter, offset, limit int) ([]Product, error)
	Ping(ctx context.Context) error
}
