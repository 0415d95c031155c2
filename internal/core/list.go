package core

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListQuery selects one page of a user's records.
type ListQuery struct {
	UserID   string
	Page     int
	Limit    int
	Category string
	TenantID string
	// All lists every row; Page and Limit are ignored.
	All bool
}

// Normalize clamps page and limit into their accepted ranges.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
}

// Offset returns the number of rows skipped before the page.
func (q ListQuery) Offset() int {
	if q.All {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// Page is one slice of a listing plus the numbers needed to navigate it.
type Page[T any] struct {
	Items []T
	Total int
	Page  int
	Limit int
	Pages int
}

// NewPage assembles a page, never returning a nil item slice.
func NewPage[T any](items []T, total int, q ListQuery) Page[T] {
	if items == nil {
		items = []T{}
	}
	page, limit := q.Page, q.Limit
	if q.All {
		page, limit = DefaultPage, total
	}
	return Page[T]{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: PageCount(total, limit),
	}
}

// PageCount is ceil(total/limit).
func PageCount(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
