package common

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	params := url.Values{}
	params.Set("keyword", "doe")
	params.Set("limit", "10")

	testCases := []struct {
		name         string
		total        int64
		page         int
		limit        int
		wantLastPage int
		wantPrev     bool
		wantNext     bool
	}{
		{
			name:         "first page of three",
			total:        25,
			page:         1,
			limit:        10,
			wantLastPage: 3,
			wantPrev:     false,
			wantNext:     true,
		},
		{
			name:         "middle page",
			total:        25,
			page:         2,
			limit:        10,
			wantLastPage: 3,
			wantPrev:     true,
			wantNext:     true,
		},
		{
			name:         "last page",
			total:        25,
			page:         3,
			limit:        10,
			wantLastPage: 3,
			wantPrev:     true,
			wantNext:     false,
		},
		{
			name:         "empty result still has one page",
			total:        0,
			page:         1,
			limit:        10,
			wantLastPage: 1,
			wantPrev:     false,
			wantNext:     false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPagination("/v1/users", tc.total, tc.page, tc.limit, params)

			assert.Equal(t, tc.total, p.Total)
			assert.Equal(t, tc.page, p.CurrentPage)
			assert.Equal(t, tc.wantLastPage, p.LastPage)
			assert.Equal(t, tc.limit, p.PerPage)

			if tc.wantPrev {
				assert.NotNil(t, p.PreviousPageURL)
				assert.Contains(t, *p.PreviousPageURL, "keyword=doe")
			} else {
				assert.Nil(t, p.PreviousPageURL)
			}

			if tc.wantNext {
				assert.NotNil(t, p.NextPageURL)
				assert.Contains(t, *p.NextPageURL, "keyword=doe")
			} else {
				assert.Nil(t, p.NextPageURL)
			}
		})
	}
}

func TestPageURLPreservesParams(t *testing.T) {
	params := url.Values{}
	params.Set("keyword", "smith")
	params.Set("limit", "5")

	p := NewPagination("/v1/users", 10, 1, 5, params)

	assert.Contains(t, p.URL, "keyword=smith")
	assert.Contains(t, p.URL, "limit=5")
	assert.Contains(t, p.URL, "page=1")
	assert.NotNil(t, p.NextPageURL)
	assert.Contains(t, *p.NextPageURL, "page=2")
}
