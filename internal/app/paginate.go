package app

// Paginate returns the 1-based page of items holding at most size elements.
// Pages below 1 are treated as page 1. The result shares the backing array of items.
func Paginate[T any](items []T, page, size int) []T {
	if size < 1 {
		return []T{}
	}
	if page < 1 {
		page = 1
	}
	// Compare page counts first; (page-1)*size can overflow for huge pages.
	if len(items) == 0 || page-1 > (len(items)-1)/size {
		return []T{}
	}
	start := (page - 1) * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end:end]
}
