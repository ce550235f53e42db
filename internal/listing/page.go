// Package listing keeps one screen's page of server records in sync with
// the pagination metadata the server returned, and folds confirmed
// create/update/delete results into that page without refetching.
package listing

// DefaultPerPage is used whenever the server does not say how many records a
// page holds.
const DefaultPerPage = 15

// Record is anything with a stable identity key. The listing code never
// looks at any other field.
type Record interface {
	RecordID() int64
}

// PageInfo mirrors the `meta` object of a list response.
//
// Total counts every record across all pages, not just the loaded ones.
type PageInfo struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// Page is one server page of records, kept in server order.
type Page[T any] struct {
	Items []T      `json:"data"`
	Info  PageInfo `json:"meta"`
}

// DefaultPageInfo is what a list response without `meta` turns into.
func DefaultPageInfo(prevPerPage int) PageInfo {
	if prevPerPage <= 0 {
		prevPerPage = DefaultPerPage
	}
	return PageInfo{CurrentPage: 1, LastPage: 1, PerPage: prevPerPage, Total: 0}
}

// Normalize clamps a server-provided PageInfo so that
// 1 <= CurrentPage <= LastPage, PerPage > 0 and Total >= 0.
func (p PageInfo) Normalize(prevPerPage int) PageInfo {
	if p.LastPage < 1 {
		p.LastPage = 1
	}
	if p.CurrentPage < 1 {
		p.CurrentPage = 1
	}
	if p.CurrentPage > p.LastPage {
		p.CurrentPage = p.LastPage
	}
	if p.PerPage <= 0 {
		p.PerPage = prevPerPage
		if p.PerPage <= 0 {
			p.PerPage = DefaultPerPage
		}
	}
	if p.Total < 0 {
		p.Total = 0
	}
	return p
}
