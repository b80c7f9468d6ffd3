// Package pagination parses and clamps list query parameters.
package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Params is a sanitized page request. Zero values never escape Parse.
type Params struct {
	Page   int
	Limit  int
	SortBy string
	Desc   bool
}

// Parse reads page/limit/sortBy/sortOrder from q.
// page is floored at 1; limit is clamped to [1..100] with a default of 10.
// sortBy falls back to defaultSort unless listed in allowed, which keeps
// user input out of ORDER BY clauses.
func Parse(q url.Values, defaultSort string, allowed ...string) Params {
	p := Params{Page: 1, Limit: defaultLimit, SortBy: defaultSort, Desc: true}

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 1 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v >= 1 {
		p.Limit = v
		if p.Limit > maxLimit {
			p.Limit = maxLimit
		}
	}

	if s := strings.TrimSpace(q.Get("sortBy")); s != "" {
		for _, a := range allowed {
			if s == a {
				p.SortBy = s
				break
			}
		}
	}
	if strings.EqualFold(q.Get("sortOrder"), "asc") {
		p.Desc = false
	}
	return p
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta is the list envelope metadata block.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewMeta derives page counts from a total row count.
func NewMeta(p Params, total int64) Meta {
	pages := int(total) / p.Limit
	if int(total)%p.Limit != 0 {
		pages++
	}
	return Meta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}
