package domain

import "math"

// PaginationParams holds offset-based pagination parameters for list queries.
// A zero PageSize means no limit.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page (0-based).
// Formula: (Page - 1) * PageSize. Values that would overflow int saturate
// at math.MaxInt.
func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// Paged reports whether a page size was requested.
func (p PaginationParams) Paged() bool {
	return p.PageSize > 0
}
