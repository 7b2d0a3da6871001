package domain

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Limit      int `json:"limit"`
}

// NewPage fills TotalPages as ceil(total/limit).
func NewPage[T any](items []T, total, page, limit int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if page <= 0 {
		page = DefaultPage
	}
	return &Page[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		TotalPages: (total + limit - 1) / limit,
		Limit:      limit,
	}
}

// NormalizePaging applies the list defaults to unspecified values.
func NormalizePaging(page, limit int) (int, int) {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return page, limit
}

// Offset is the zero-based index of the first item on page.
func Offset(page, limit int) int {
	page, limit = NormalizePaging(page, limit)
	return (page - 1) * limit
}
