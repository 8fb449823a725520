package web

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
)

// Version is reported by the health check.
const Version = "1.0.0"

// HealthResponse is the body of GET /.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// handleHealth reports that the API is up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Message: "Product Catalog API is running",
		Version: Version,
	})
}

// ReadyResponse is the body of GET /ready.
type ReadyResponse struct {
	Status string `json:"status"`
}

// handleReady reports whether the catalog store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		logging.FromContext(r.Context()).Warn("readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, ReadyResponse{Status: "ready"})
}

// handleUpload ingests the CSV in multipart field "file".
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// The server-wide read and write timeouts are sized for queries.
	deadline := time.Now().Add(s.cfg.Upload.RequestTimeout)
	rc := http.NewResponseController(w)
	if err := rc.SetReadDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logging.FromContext(r.Context()).Debug("extend upload read deadline", "error", err)
	}
	if err := rc.SetWriteDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logging.FromContext(r.Context()).Debug("extend upload write deadline", "error", err)
	}

	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondError(w, r, err)
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", errNoFile, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", errNoFile, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	result, err := s.service.Upload(r.Context(), header.Filename, data)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("X-Upload-ID", result.UploadID)
	writeJSON(w, http.StatusOK, result)
}

// handleListProducts returns one page of the catalog.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.service.ListProducts(r.Context(), page)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleSearchProducts returns one page of products matching the query.
func (s *Server) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	filter, err := parseProductFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.service.SearchProducts(r.Context(), filter, page)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// parsePageRequest reads page and limit, applying defaults when absent.
func parsePageRequest(r *http.Request) (core.PageRequest, error) {
	page, err := parseIntParam(r, "page", core.DefaultPage)
	if err != nil {
		return core.PageRequest{}, err
	}
	limit, err := parseIntParam(r, "limit", core.DefaultLimit)
	if err != nil {
		return core.PageRequest{}, err
	}
	return core.NewPageRequest(page, limit)
}

func parseIntParam(r *http.Request, name string, defaultVal int) (int, error) {
	val := strings.TrimSpace(r.URL.Query().Get(name))
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %w", core.ErrInvalidPagination, name, errInvalidInteger)
	}
	return i, nil
}

// parseProductFilter reads brand, color, minPrice and maxPrice. Blank values
// are treated as absent.
func parseProductFilter(r *http.Request) (core.ProductFilter, error) {
	q := r.URL.Query()
	f := core.ProductFilter{
		Brand: strings.TrimSpace(q.Get("brand")),
		Color: strings.TrimSpace(q.Get("color")),
	}

	var err error
	if f.MinPrice, err = parsePriceParam(r, "minPrice"); err != nil {
		return core.ProductFilter{}, err
	}
	if f.MaxPrice, err = parsePriceParam(r, "maxPrice"); err != nil {
		return core.ProductFilter{}, err
	}
	return f, nil
}

func parsePriceParam(r *http.Request, name string) (*float64, error) {
	val := strings.TrimSpace(r.URL.Query().Get(name))
	if val == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(val, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %s %w", core.ErrInvalidFilter, name, errInvalidNumber)
	}
	return &v, nil
}
