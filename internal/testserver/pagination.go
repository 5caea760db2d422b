package testserver

import (
	"fmt"
	"net/http"
	"strconv"
)

// pageParams are the parsed pagination query parameters of GET /news/.
type pageParams struct {
	Page    int // 1-based page number
	PerPage int // items per page
}

const (
	defaultPerPage = 30
	maxPerPage     = 100
)

// parsePageParams reads page and per_page, applying defaults when absent.
func parsePageParams(r *http.Request) (pageParams, error) {
	params := pageParams{Page: 1, PerPage: defaultPerPage}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return params, fmt.Errorf("invalid query parameter: page must be a positive integer")
		}
		params.Page = page
	}

	if perPageStr := r.URL.Query().Get("per_page"); perPageStr != "" {
		perPage, err := strconv.Atoi(perPageStr)
		if err != nil || perPage < 1 || perPage > maxPerPage {
			return params, fmt.Errorf("invalid query parameter: per_page must be between 1 and %d", maxPerPage)
		}
		params.PerPage = perPage
	}

	return params, nil
}

// offset returns the index of the first item on the page.
func (p pageParams) offset() int {
	return (p.Page - 1) * p.PerPage
}

// totalPages returns the number of pages for total items. Always at least 1.
func totalPages(total, perPage int) int {
	if total == 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// window returns the [start, end) slice bounds of the page within total items.
func (p pageParams) window(total int) (int, int) {
	start := p.offset()
	if start > total {
		start = total
	}
	end := start + p.PerPage
	if end > total {
		end = total
	}
	return start, end
}
