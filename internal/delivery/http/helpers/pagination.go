package helpers

import (
	"net/http"
	"strconv"

	"districtevents/internal/domain"
)

// MaxPage caps the page query parameter. Larger values read as MaxPage and
// return an empty page.
const MaxPage = 10_000

// PageLimits bounds the page_size query parameter of one kind of listing.
type PageLimits struct {
	DefaultSize int
	MaxSize     int
}

var (
	// EventPages applies to the public and admin event listings.
	EventPages = PageLimits{DefaultSize: 20, MaxSize: 100}
	// RegistrationPages applies to attendee lists, which check-in staff page through in bulk.
	RegistrationPages = PageLimits{DefaultSize: 50, MaxSize: 500}
)

// Parse reads page and page_size from the query string. Missing or malformed
// values fall back to page 1 and the default size; out-of-range values are clamped.
func (l PageLimits) Parse(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	return domain.PaginationParams{
		Page:     queryInt(q.Get("page"), 1, MaxPage),
		PageSize: queryInt(q.Get("page_size"), l.DefaultSize, l.MaxSize),
	}
}

func queryInt(s string, fallback, max int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return fallback
	}
	return min(v, max)
}

// PaginationMeta describes the page returned by a list endpoint.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta builds the metadata for params given the total row count.
func NewPaginationMeta(params domain.PaginationParams, total int) PaginationMeta {
	meta := PaginationMeta{Page: params.Page, PageSize: params.PageSize, Total: total}
	if params.PageSize > 0 {
		meta.TotalPages = (total + params.PageSize - 1) / params.PageSize
	}
	return meta
}
