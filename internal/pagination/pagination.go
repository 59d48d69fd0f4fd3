// Package pagination computes page windows over the full message list
// of a mailbox. Pages are 1-based and a requested page is always
// clamped into range, so stale tokens pointing past the end of a
// shrunken list degrade to the last page instead of erroring.
package pagination

// Window is a clamped view over a list of count items
type Window struct {
	Page       int // 1-based, clamped into [1, TotalPages]
	PageSize   int
	TotalPages int
	Start      int // half-open slice bounds into the full list
	End        int
}

// New computes the window for the requested page. count may be zero
// and page may be any integer; both are handled by clamping.
func New(count, page, pageSize int) Window {
	if pageSize < 1 {
		pageSize = 1
	}

	totalPages := (count + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > count {
		start = count
	}
	if end > count {
		end = count
	}

	return Window{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Start:      start,
		End:        end,
	}
}

// HasPrev reports whether a previous page exists
func (w Window) HasPrev() bool {
	return w.Page > 1
}

// HasNext reports whether a next page exists
func (w Window) HasNext() bool {
	return w.Page < w.TotalPages
}
