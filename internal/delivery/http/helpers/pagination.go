package helpers

import (
	"net/http"
	"strconv"

	"eventmanager/internal/domain"
)

// Pagination query parameter limits.
const (
	DefaultPage = 1
	MaxPage     = 100000
	MaxPageSize = 100
)

// ParsePagination reads page and page_size from the request query string.
// A missing page_size leaves the listing unpaged; larger values are clamped
// to MaxPageSize, and page is clamped to MaxPage. Invalid values fall back
// to defaults.
func ParsePagination(r *http.Request) domain.PaginationParams {
	page := DefaultPage
	if s := r.URL.Query().Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			page = min(v, MaxPage)
		}
	}
	pageSize := 0
	if s := r.URL.Query().Get("page_size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			pageSize = min(v, MaxPageSize)
		}
	}
	return domain.PaginationParams{Page: page, PageSize: pageSize}
}
