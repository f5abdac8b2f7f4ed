package shared

// DefaultPageSize is the page size used by every list screen
const DefaultPageSize = 20

// TotalPages returns the number of pages needed for total items.
// An empty collection still has one (empty) page.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return pages
}

// ClampPage keeps a 1-indexed page number inside [1, totalPages]
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
