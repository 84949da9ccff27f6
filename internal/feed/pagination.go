package feed

// Pagination defaults and bounds
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page holds normalized pagination parameters
type Page struct {
	Page  int
	Limit int
}

// NewPage clamps raw pagination parameters: page defaults to 1, limit
// defaults to 20 and is clamped to [1, 100].
func NewPage(page, limit int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit}
}

// Offset returns the row offset for the page
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination describes a page of results. Total is the pre-filter
// count of the underlying candidate query: rows removed by visibility
// filtering still count toward it, so a delivered page may hold fewer
// than Limit items and the sum of all delivered pages may be below
// Total.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// NewPagination builds the pagination envelope for a total row count
func NewPagination(total int64, p Page) Pagination {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Pagination{
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
		Pages: pages,
	}
}
