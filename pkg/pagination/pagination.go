package pagination

import (
	"strconv"
)

const (
	// DefaultLimit is the page size used when the caller does not send one
	DefaultLimit = 100
	// MaxLimit caps a single page
	MaxLimit = 1000
)

// OffsetParams represents skip/limit pagination input
type OffsetParams struct {
	Skip  int `form:"skip" json:"skip"`
	Limit int `form:"limit" json:"limit"`
}

// DefaultOffset returns default pagination values
func DefaultOffset() *OffsetParams {
	return &OffsetParams{
		Skip:  0,
		Limit: DefaultLimit,
	}
}

// ParseOffset builds params from raw query values, falling back to defaults
// for anything missing or malformed.
func ParseOffset(skip, limit string) *OffsetParams {
	p := DefaultOffset()
	if v, err := strconv.Atoi(skip); err == nil {
		p.Skip = v
	}
	if v, err := strconv.Atoi(limit); err == nil {
		p.Limit = v
	}
	p.Validate()
	return p
}

// Validate ensures pagination parameters are within valid ranges
func (p *OffsetParams) Validate() {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

// Pagination describes the page that was returned
type Pagination struct {
	Skip    int   `json:"skip"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
}

// NewPagination creates a new Pagination response
func NewPagination(params *OffsetParams, total int64) *Pagination {
	return &Pagination{
		Skip:    params.Skip,
		Limit:   params.Limit,
		Total:   total,
		HasNext: int64(params.Skip+params.Limit) < total,
	}
}

// PaginatedResult represents a paginated result with items and pagination info
type PaginatedResult[T any] struct {
	Items      []T         `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// NewPaginatedResult creates a new paginated result
func NewPaginatedResult[T any](items []T, pagination *Pagination) *PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PaginatedResult[T]{
		Items:      items,
		Pagination: pagination,
	}
}

// MapResult converts the items of a page while keeping its pagination info
func MapResult[T, U any](in *PaginatedResult[T], fn func(T) U) *PaginatedResult[U] {
	out := make([]U, 0, len(in.Items))
	for _, item := range in.Items {
		out = append(out, fn(item))
	}
	return &PaginatedResult[U]{Items: out, Pagination: in.Pagination}
}
