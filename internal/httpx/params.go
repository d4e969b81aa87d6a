package httpx

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"libraryapi/internal/apperr"
)

// Pagination holds the page size limits for list endpoints.
type Pagination struct {
	DefaultSize int
	MaxSize     int
}

// Page reads page and page_size. Missing or invalid values fall back to
// page 1 and the default size; sizes above the maximum are capped, and so
// are pages whose offset would overflow.
func (p Pagination) Page(r *http.Request) (page, size int) {
	query := r.URL.Query()

	page, _ = strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(query.Get("page_size"))
	if size <= 0 {
		size = p.DefaultSize
	}
	if p.MaxSize > 0 && size > p.MaxSize {
		size = p.MaxSize
	}
	// Keep (page-1)*size inside an int32 offset.
	if size > 0 && page > math.MaxInt32/size {
		page = math.MaxInt32 / size
	}
	return page, size
}

// PageMeta is the meta block of a paginated response.
func PageMeta(page, size, total int) map[string]any {
	totalPages := 0
	if size > 0 {
		totalPages = (total + size - 1) / size
	}
	return map[string]any{
		"page":        page,
		"page_size":   size,
		"total":       total,
		"total_pages": totalPages,
	}
}

// PathID reads a positive integer route parameter. A malformed id cannot
// match any record, so it is reported as not found.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.ErrNotFound, "Not found")
	}
	return id, nil
}

// PathParam returns a raw route parameter.
func PathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
