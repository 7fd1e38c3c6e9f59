package pagination

import (
	"net/url"
	"strconv"
)

// PerPage lists the page sizes the API accepts.
var PerPage = []int{5, 10, 20, 30, 40, 50}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	pageKey      = "page"
)

func IsAllowedLimit(limit int) bool {
	for _, v := range PerPage {
		if v == limit {
			return true
		}
	}
	return false
}

func Offset(page, limit int) int {
	return (page - 1) * limit
}

// Meta is the page descriptor attached to list responses. The URLs are
// the request URL with only the page query parameter swapped, and are
// present only when the corresponding flag is true.
type Meta struct {
	Page        int    `json:"page"`
	Limit       int    `json:"limit"`
	TotalItems  int64  `json:"total_items"`
	TotalPages  int    `json:"total_pages"`
	IsPrevious  bool   `json:"is_previous"`
	IsNext      bool   `json:"is_next"`
	PreviousURL string `json:"previous_url,omitempty"`
	NextURL     string `json:"next_url,omitempty"`
}

func NewMeta(page, limit int, totalItems int64, requestURL string) Meta {
	totalPages := int((totalItems + int64(limit) - 1) / int64(limit))

	meta := Meta{
		Page:       page,
		Limit:      limit,
		TotalItems: totalItems,
		TotalPages: totalPages,
		IsPrevious: page > 1,
		IsNext:     page < totalPages,
	}

	if meta.IsPrevious {
		meta.PreviousURL = withPage(requestURL, page-1)
	}
	if meta.IsNext {
		meta.NextURL = withPage(requestURL, page+1)
	}
	return meta
}

func withPage(rawURL string, page int) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(pageKey, strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
