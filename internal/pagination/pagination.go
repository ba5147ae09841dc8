package pagination

// Info is the pagination envelope attached to every list response.
type Info struct {
	PageNumber      int   `json:"pageNumber"`
	PageSize        int   `json:"pageSize"`
	TotalPages      int   `json:"totalPages"`
	TotalCount      int64 `json:"totalCount"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
}

// Params is a normalized page request.
type Params struct {
	Page int
	Size int
}

// Normalize clamps page and size to at least 1.
func Normalize(page, size int) Params {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}
	return Params{Page: page, Size: size}
}

// Offset is the number of rows to skip for this page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Size
}

// New builds the envelope for a page of a result with total rows.
func New(page, size int, total int64) Info {
	p := Normalize(page, size)
	if total < 0 {
		total = 0
	}
	totalPages := int((total + int64(p.Size) - 1) / int64(p.Size))

	return Info{
		PageNumber:      p.Page,
		PageSize:        p.Size,
		TotalPages:      totalPages,
		TotalCount:      total,
		HasPreviousPage: p.Page > 1,
		HasNextPage:     p.Page < totalPages,
	}
}

// Window returns the slice of items that falls on the requested page.
func Window[T any](items []T, p Params) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
