// Package paging normalizes page/per_page query values.
package paging

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

type Result[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// Normalize clamps page to >= 1 and perPage to [1, MaxPerPage].
func Normalize(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// Offset returns the row offset of a normalized page.
func Offset(page, perPage int) int {
	return (page - 1) * perPage
}

func New[T any](data []T, total, page, perPage int) *Result[T] {
	if data == nil {
		data = []T{}
	}
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return &Result[T]{Data: data, Total: total, Page: page, PerPage: perPage, TotalPages: pages}
}

// Empty is the result of a query that cannot match anything, such as a
// list without a selected unit.
func Empty[T any](page, perPage int) *Result[T] {
	return New[T](nil, 0, page, perPage)
}
