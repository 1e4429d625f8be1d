package pagination

import (
	"fmt"
	"net/url"
	"strconv"
)

// Request captures the listing mode for a collection endpoint. When Paged is
// false the endpoint returns the full matching set.
type Request struct {
	Paged    bool
	Page     int
	PageSize int
}

// Parse reads the page parameter from query values. A missing page parameter
// selects the unpaged mode; an unparseable or non-positive page falls back
// to page 1.
func Parse(values url.Values, pageSize int) Request {
	if !values.Has("page") {
		return Request{Paged: false, PageSize: pageSize}
	}
	page, err := strconv.Atoi(values.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return Request{Paged: true, Page: page, PageSize: pageSize}
}

// Offset returns the row offset for the requested page.
func (r Request) Offset() int {
	if !r.Paged || r.Page <= 1 {
		return 0
	}
	return (r.Page - 1) * r.PageSize
}

// Limit returns the page size, or 0 meaning unlimited.
func (r Request) Limit() int {
	if !r.Paged {
		return 0
	}
	return r.PageSize
}

// Meta describes one page of a collection, with links suitable for the
// response envelope's meta block.
type Meta struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Total    int    `json:"total"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
}

// NewMeta computes page links for path given the total match count.
func NewMeta(r Request, path string, total int) Meta {
	meta := Meta{Page: r.Page, PageSize: r.PageSize, Total: total}
	if r.Offset()+r.PageSize < total {
		meta.Next = pageLink(path, r.Page+1)
	}
	if r.Page > 1 {
		meta.Previous = pageLink(path, r.Page-1)
	}
	return meta
}

func pageLink(path string, page int) string {
	return fmt.Sprintf("%s?page=%d", path, page)
}
