package domain

// PaginationParams carries validated pagination values parsed from a request.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
