package listing

import (
	"fmt"
	"strconv"
)

// PageToken is one entry of a pager: a page number or an ellipsis.
type PageToken struct {
	Number   int
	Ellipsis bool
}

func (t PageToken) String() string {
	if t.Ellipsis {
		return "…"
	}
	return strconv.Itoa(t.Number)
}

func pageNum(n int) PageToken { return PageToken{Number: n} }

var ellipsis = PageToken{Ellipsis: true}

// VisiblePages collapses the page range into at most seven tokens:
// the first page, a window around the current page, the last page, and an
// ellipsis wherever a gap was skipped.
func VisiblePages(info PageInfo) []PageToken {
	info = info.Normalize(DefaultPerPage)
	last := info.LastPage
	cur := info.CurrentPage

	out := []PageToken{pageNum(1)}
	if last == 1 {
		return out
	}

	start := max(cur-1, 2)
	end := min(cur+1, last-1)

	if start > 2 {
		out = append(out, ellipsis)
	}
	for n := start; n <= end; n++ {
		out = append(out, pageNum(n))
	}
	if end < last-1 {
		out = append(out, ellipsis)
	}
	return append(out, pageNum(last))
}

// CanGoTo reports whether navigating to target would load a different,
// existing page.
func CanGoTo(target int, info PageInfo) bool {
	return target >= 1 && target <= info.LastPage && target != info.CurrentPage
}

// WindowBounds returns the 1-based positions of the first and last record on
// the current page. With no records it yields (1, 0); callers should hide the
// results line in that case.
func WindowBounds(info PageInfo) (first, last int) {
	first = (info.CurrentPage-1)*info.PerPage + 1
	last = min(info.CurrentPage*info.PerPage, info.Total)
	return first, last
}

// ShowingText renders "Showing X to Y of Z". ok is false when there is
// nothing to show.
func ShowingText(info PageInfo) (text string, ok bool) {
	if info.Total <= 0 {
		return "", false
	}
	first, last := WindowBounds(info)
	if last < first {
		// Page went past the data (e.g. after deletes); avoid "31 to 28".
		return fmt.Sprintf("Showing 0 of %d", info.Total), true
	}
	return fmt.Sprintf("Showing %d to %d of %d", first, last, info.Total), true
}
