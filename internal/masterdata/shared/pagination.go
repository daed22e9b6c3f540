package shared

import (
	"net/url"
	"strconv"
)

// ListFilters represents standard list page filters
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string
}

// Offset returns the row offset for the current page.
func (f ListFilters) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// FiltersFromQuery reads page, limit, search, sort and dir query parameters.
func FiltersFromQuery(q url.Values) ListFilters {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = DefaultPage
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  q.Get("search"),
		SortBy:  q.Get("sort"),
		SortDir: q.Get("dir"),
	}
}
