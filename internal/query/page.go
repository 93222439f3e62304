package query

// Page is one zero-indexed page of a filtered, ordered result.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Paginate slices items into pages of pageSize. page is clamped into
// [0, totalPages-1]; an empty input yields an empty page with TotalPages 0.
// pageSize must be positive.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	total := len(items)
	p := Page[T]{Items: []T{}, PageSize: pageSize, TotalItems: total}
	if total == 0 {
		return p
	}
	p.TotalPages = (total + pageSize - 1) / pageSize
	p.Page = min(max(page, 0), p.TotalPages-1)
	start := p.Page * pageSize
	end := min(start+pageSize, total)
	p.Items = append(p.Items, items[start:end]...)
	return p
}
