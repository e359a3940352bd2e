package shared

import "math"

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Slice returns the half-open index range [from, to) for the page over a
// result set of the given length. Stats are always computed over the full
// set; only row listings are cut here.
func (p Pagination) Slice(length int) (int, int) {
	from := (p.Page - 1) * p.PerPage
	if from >= length {
		return 0, 0
	}
	to := from + p.PerPage
	if to > length {
		to = length
	}
	return from, to
}
