package pagination

import (
	"math"
	"net/url"
	"strconv"
)

const DefaultLimit = 10

// Params holds pagination parameters extracted from a request.
type Params struct {
	Limit  int
	Offset int
}

// FromValues reads _count and _offset. Missing, malformed, or negative values
// fall back to DefaultLimit and 0. A _count of 0 is honoured and yields an
// empty page.
func FromValues(v url.Values) Params {
	return Params{
		Limit:  nonNegative(v.Get("_count"), DefaultLimit),
		Offset: nonNegative(v.Get("_offset"), 0),
	}
}

func nonNegative(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// Window returns the [start, end) bounds of the page within a list of total
// items. An offset at or past the end yields an empty window.
func (p Params) Window(total int) (start, end int) {
	if p.Offset >= total {
		return total, total
	}
	// Compared as a remainder so a huge _count cannot overflow.
	if p.Limit >= total-p.Offset {
		return p.Offset, total
	}
	return p.Offset, p.Offset + p.Limit
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return p.Offset < total && p.Limit < total-p.Offset
}

// HasPrevious returns true if there are results before the current page.
func (p Params) HasPrevious() bool {
	return p.Offset > 0
}

// NextOffset returns the offset for the next page, saturating at
// math.MaxInt.
func (p Params) NextOffset() int {
	if p.Limit > math.MaxInt-p.Offset {
		return math.MaxInt
	}
	return p.Offset + p.Limit
}

// PreviousOffset returns the offset for the previous page.
// Returns 0 if the result would be negative.
func (p Params) PreviousOffset() int {
	prev := p.Offset - p.Limit
	if prev < 0 {
		return 0
	}
	return prev
}
