package common

import (
	"fmt"
	"net/url"
)

// Pagination carries the page metadata returned alongside search results.
// Previous/next URLs preserve the caller's search params so clients can
// walk pages without rebuilding the query string.
type Pagination struct {
	Total           int64   `json:"total"`
	CurrentPage     int     `json:"currentPage"`
	LastPage        int     `json:"lastPage"`
	PerPage         int     `json:"perPage"`
	PreviousPageURL *string `json:"previousPageUrl"`
	NextPageURL     *string `json:"nextPageUrl"`
	URL             string  `json:"url"`
}

// NewPagination builds pagination metadata for the given base path,
// totals and extra query params (keyword, limit and the like).
func NewPagination(basePath string, total int64, page, limit int, params url.Values) Pagination {
	if limit < 1 {
		limit = 1
	}
	lastPage := int((total + int64(limit) - 1) / int64(limit))
	if lastPage < 1 {
		lastPage = 1
	}

	p := Pagination{
		Total:       total,
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     limit,
		URL:         pageURL(basePath, page, params),
	}

	if page > 1 {
		prev := pageURL(basePath, page-1, params)
		p.PreviousPageURL = &prev
	}
	if page < lastPage {
		next := pageURL(basePath, page+1, params)
		p.NextPageURL = &next
	}

	return p
}

// Fields flattens the pagination metadata for inclusion in a response
// envelope next to the data member.
func (p Pagination) Fields() Fields {
	return Fields{
		"total":           p.Total,
		"currentPage":     p.CurrentPage,
		"lastPage":        p.LastPage,
		"perPage":         p.PerPage,
		"previousPageUrl": p.PreviousPageURL,
		"nextPageUrl":     p.NextPageURL,
		"url":             p.URL,
	}
}

func pageURL(basePath string, page int, params url.Values) string {
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("page", fmt.Sprintf("%d", page))
	return basePath + "?" + q.Encode()
}
