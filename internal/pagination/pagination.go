// Package pagination parses list query parameters and applies them as GORM
// scopes.
package pagination

import (
	"math"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PageRequest holds pagination parameters parsed from query strings.
type PageRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Sort     string `form:"sort"`
}

// Defaults fills in default values when page or page_size are not provided.
func (p *PageRequest) Defaults() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = 20
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageResponse wraps a paginated list of items with metadata.
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPageResponse creates a PageResponse from the given data and total count.
func NewPageResponse[T any](data []T, page, pageSize int, totalItems int64) PageResponse[T] {
	totalPages := int(math.Ceil(float64(totalItems) / float64(pageSize)))
	if data == nil {
		data = []T{}
	}
	return PageResponse[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// Paginate returns a GORM scope that applies OFFSET and LIMIT for the given page request.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.PageSize)
	}
}

// OrderBy resolves a sort parameter such as "-date" or "amount" against the
// allowed columns. Unknown columns fall back to def. A leading "-" sorts
// descending.
func OrderBy(sort string, allowed map[string]string, def clause.OrderByColumn) clause.OrderByColumn {
	desc := strings.HasPrefix(sort, "-")
	key := strings.TrimPrefix(sort, "-")
	column, ok := allowed[key]
	if !ok {
		return def
	}
	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}
}

// Sorted returns a GORM scope that orders by the resolved sort column and
// then by id so pages are stable.
func Sorted(sort string, allowed map[string]string, def clause.OrderByColumn) func(db *gorm.DB) *gorm.DB {
	col := OrderBy(sort, allowed, def)
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(col).Order(clause.OrderByColumn{
			Column: clause.Column{Name: "id"},
			Desc:   col.Desc,
		})
	}
}
