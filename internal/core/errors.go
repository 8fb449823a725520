package core

import "errors"

// Whole-request rejections. None of these ever appear as a per-row error; the
// web layer maps each to a 4xx status without any partial result.
var (
	ErrNotCSV            = errors.New("invalid csv: only .csv files are allowed")
	ErrInvalidEncoding   = errors.New("encoding error: file is not valid UTF-8")
	ErrMalformedCSV      = errors.New("invalid csv: file could not be parsed")
	ErrNoDataRows        = errors.New("empty file: no data rows")
	ErrInvalidPriceRange = errors.New("invalid price range: minPrice cannot be greater than maxPrice")
	ErrInvalidPagination = errors.New("invalid pagination")
	ErrInvalidFilter     = errors.New("invalid filter")
)

// IsClientError reports whether err rejects a request because of its input.
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrNotCSV,
		ErrInvalidEncoding,
		ErrMalformedCSV,
		ErrNoDataRows,
		ErrInvalidPriceRange,
		ErrInvalidPagination,
		ErrInvalidFilter,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
