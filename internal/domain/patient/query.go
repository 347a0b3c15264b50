package patient

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/ehr/patientlist/pkg/pagination"
)

// SortKey names a supported sort order. Matching against the wire value is
// case-insensitive, so "Name", "MRN" and "Age" as sent by the UI all work.
type SortKey string

const (
	SortName SortKey = "name"
	SortMRN  SortKey = "mrn"
	SortAge  SortKey = "age"
)

// Query is a normalised patient search.
type Query struct {
	Search     string
	Gender     string
	Active     *bool
	Count      int
	Offset     int
	Sort       SortKey
	Descending bool
}

// ParseQuery reads the wire parameters _search, gender, active, _count,
// _offset, _sort and _order. It never fails: absent values mean "no filter"
// and bad numbers fall back to the pagination defaults.
func ParseQuery(v url.Values) Query {
	pg := pagination.FromValues(v)
	q := Query{
		Search:     v.Get("_search"),
		Gender:     v.Get("gender"),
		Count:      pg.Limit,
		Offset:     pg.Offset,
		Sort:       SortKey(strings.ToLower(v.Get("_sort"))),
		Descending: strings.EqualFold(v.Get("_order"), "desc"),
	}
	if raw := v.Get("active"); raw != "" {
		active := raw == "true"
		q.Active = &active
	}
	return q
}

// Page is the pagination window of the query.
func (q Query) Page() pagination.Params {
	return pagination.Params{Limit: q.Count, Offset: q.Offset}
}

// Execute filters records by search, gender and active (in that order),
// sorts the matches, and slices out the requested page. total counts every
// match and does not depend on sort or pagination. today feeds the age sort.
func Execute(records []Patient, q Query, today time.Time) (int, []Patient) {
	needle := strings.ToLower(q.Search)
	matched := make([]Patient, 0, len(records))
	for i := range records {
		p := &records[i]
		if needle != "" && !matchesSearch(p, needle) {
			continue
		}
		if q.Gender != "" && !strings.EqualFold(p.Gender, q.Gender) {
			continue
		}
		if q.Active != nil && p.Active != *q.Active {
			continue
		}
		matched = append(matched, *p)
	}

	if cmp := comparator(q.Sort, today); cmp != nil {
		if q.Descending {
			asc := cmp
			cmp = func(a, b Patient) int { return -asc(a, b) }
		}
		slices.SortStableFunc(matched, cmp)
	}

	start, end := q.Page().Window(len(matched))
	return len(matched), matched[start:end]
}

func matchesSearch(p *Patient, needle string) bool {
	if strings.Contains(strings.ToLower(p.FullName()), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(p.MRN()), needle)
}

// comparator returns the ascending order for key, or nil for unknown keys.
func comparator(key SortKey, today time.Time) func(a, b Patient) int {
	switch key {
	case SortName:
		return func(a, b Patient) int {
			return strings.Compare(strings.ToLower(a.FullName()), strings.ToLower(b.FullName()))
		}
	case SortMRN:
		return func(a, b Patient) int {
			return strings.Compare(strings.ToLower(a.MRN()), strings.ToLower(b.MRN()))
		}
	case SortAge:
		return func(a, b Patient) int {
			ageA, okA := a.Age(today)
			ageB, okB := b.Age(today)
			switch {
			case !okA && !okB:
				return 0
			case !okA:
				return -1
			case !okB:
				return 1
			}
			return ageA - ageB
		}
	}
	return nil
}
