package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/google/uuid"
)

// ListingCache caches listing and search pages. Implementations must treat
// every failure as a miss; the store stays the source of truth.
//
// Get returns the catalog version it looked under, hit or miss. Set stores a
// page under that version, so a page read from the store before an
// Invalidate is never served after it. A negative version means the version
// could not be read and Set stores nothing.
type ListingCache interface {
	Get(ctx context.Context, f ProductFilter, p PageRequest) (page ProductPage, version int64, ok bool)
	Set(ctx context.Context, version int64, f ProductFilter, p PageRequest, page ProductPage)
	Invalidate(ctx context.Context) error
}

// UploadResult is returned once per accepted upload.
type UploadResult struct {
	UploadID string `json:"-"`
	FileName string `json:"-"`
	Message  string `json:"message"`
	IngestionOutcome
	Duration time.Duration `json:"-"`
}

// Service is the entry point for uploads and catalog queries.
type Service struct {
	store         Store
	pipeline      *Pipeline
	cache         ListingCache
	uploadLimiter *UploadLimiter
}

// NewService wires the pipeline and limiter around store. cache may be nil.
func NewService(store Store, cache ListingCache, cfg *config.Config) *Service {
	return &Service{
		store:         store,
		pipeline:      NewPipeline(store, NewRowValidator()),
		cache:         cache,
		uploadLimiter: NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
	}
}

// Upload ingests one CSV file.
//
// Whole-file problems (wrong extension, bad encoding, malformed CSV, no data
// rows) are returned as errors before any row is written. Otherwise every row
// is processed and the per-row outcome is returned. Once rows start being
// written the upload runs to completion even if ctx is cancelled.
//
// Returns ErrTooManyUploads if no upload slot frees up in time.
func (s *Service) Upload(ctx context.Context, fileName string, data []byte) (*UploadResult, error) {
	if !strings.EqualFold(filepath.Ext(fileName), ".csv") {
		return nil, ErrNotCSV
	}

	if err := s.uploadLimiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.uploadLimiter.Release()

	start := time.Now()
	uploadID := uuid.New().String()
	logger := logging.WithFields(ctx,
		"upload_id", uploadID,
		"file", fileName,
	)

	rows, err := ParseCSV(data)
	if err != nil {
		logger.Warn("upload rejected", "error", err)
		return nil, err
	}
	if len(rows) == 0 {
		logger.Warn("upload rejected", "error", ErrNoDataRows)
		return nil, ErrNoDataRows
	}

	logger.Info("upload started", "rows", len(rows))

	outcome := s.pipeline.Ingest(context.WithoutCancel(ctx), rows)

	if outcome.ValidRows > 0 && s.cache != nil {
		if err := s.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("listing cache invalidation failed", "error", err)
		}
	}

	duration := time.Since(start)
	logger.Info("upload completed",
		"total_rows", outcome.TotalRows,
		"valid_rows", outcome.ValidRows,
		"invalid_rows", outcome.InvalidRows,
		"duration_ms", duration.Milliseconds(),
	)

	return &UploadResult{
		UploadID:         uploadID,
		FileName:         fileName,
		Message:          fmt.Sprintf("Successfully processed %d out of %d products", outcome.ValidRows, outcome.TotalRows),
		IngestionOutcome: outcome,
		Duration:         duration,
	}, nil
}

// ListProducts returns one page of the whole catalog.
func (s *Service) ListProducts(ctx context.Context, page PageRequest) (ProductPage, error) {
	return s.SearchProducts(ctx, ProductFilter{}, page)
}

// SearchProducts returns one page of products matching every criterion in f.
// The filter is validated before the store is queried.
func (s *Service) SearchProducts(ctx context.Context, f ProductFilter, page PageRequest) (ProductPage, error) {
	if err := f.Validate(); err != nil {
		return ProductPage{}, err
	}

	var version int64 = -1
	if s.cache != nil {
		cached, v, ok := s.cache.Get(ctx, f, page)
		if ok {
			return cached, nil
		}
		version = v
	}

	total, err := s.store.Count(ctx, f)
	if err != nil {
		return ProductPage{}, fmt.Errorf("count products: %w", err)
	}

	products := []Product{}
	if int64(page.Offset()) < total {
		products, err = s.store.List(ctx, f, page.Offset(), page.Limit)
		if err != nil {
			return ProductPage{}, fmt.Errorf("list products: %w", err)
		}
		if products == nil {
			products = []Product{}
		}
	}

	result := ProductPage{
		Total:    total,
		Page:     page.Page,
		Limit:    page.Limit,
		Products: products,
	}

	if s.cache != nil {
		s.cache.Set(ctx, version, f, page, result)
	}

	return result, nil
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// UploadLimiterStatus returns the current upload slot usage.
func (s *Service) UploadLimiterStatus() UploadLimiterStatus {
	return s.uploadLimiter.Status()
}

// WaitForUploads blocks until running uploads finish or ctx ends.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.uploadLimiter.WaitForDrain(ctx)
}
