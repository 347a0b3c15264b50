// Package listing drives a paged, filterable patient list on top of the FHIR
// client: it owns the load state, accumulates pages for "load more", and
// discards responses that a newer request has superseded.
package listing

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ehr/patientlist/internal/domain/patient"
	"github.com/ehr/patientlist/internal/fhirclient"
	"github.com/ehr/patientlist/internal/platform/fhir"
)

// DefaultPageSize is the number of records requested per page.
const DefaultPageSize = 10

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateError   State = "error"
)

// ErrSuperseded is returned by a fetch whose result was dropped because a
// newer request started while it was in flight.
var ErrSuperseded = errors.New("request superseded by a newer one")

// Fetcher is satisfied by *fhirclient.Client.
type Fetcher interface {
	Search(ctx context.Context, p fhirclient.SearchParams) (*fhir.Bundle, error)
}

// Filters narrow the list. A nil Active means "any".
type Filters struct {
	Search string
	Gender string
	Active *bool
}

// Sort orders the list. Key is sent as-is ("Name", "MRN", "Age"); an empty
// Key leaves the server order.
type Sort struct {
	Key   string
	Order string
}

// View is an immutable snapshot of the controller for rendering.
type View struct {
	State   State
	Records []patient.Patient
	Total   int
	HasMore bool
	Error   string
	Filters Filters
	Sort    Sort

	// FullPageError is an error with nothing loaded yet; InlineError is an
	// error while earlier pages are still on screen.
	FullPageError bool
	InlineError   bool
	// Empty is a completed load with no matches.
	Empty bool
	// LoadingMore is a load-more in flight with records already shown.
	LoadingMore bool
}

type Controller struct {
	fetcher  Fetcher
	pageSize int
	logger   zerolog.Logger

	mu      sync.Mutex
	state   State
	records []patient.Patient
	total   int
	page    int
	done    bool
	err     string
	filters Filters
	sort    Sort

	generation uint64
	// failedPage is the page to request again on Retry.
	failedPage int
	// stale marks criteria changed while in the error state.
	stale bool
}

type Option func(*Controller)

func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithCriteria sets the filters and sort used by the first Load.
func WithCriteria(f Filters, s Sort) Option {
	return func(c *Controller) {
		f.Search = strings.TrimSpace(f.Search)
		c.filters = f
		c.sort = s
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func New(f Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:  f,
		pageSize: DefaultPageSize,
		logger:   zerolog.Nop(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the first page for the current criteria, replacing anything
// already loaded.
func (c *Controller) Load(ctx context.Context) error {
	return c.fetch(ctx, 0)
}

// SetFilters replaces the filters and reloads from the first page. In the
// error state the filters are only stored; Retry applies them.
func (c *Controller) SetFilters(ctx context.Context, f Filters) error {
	f.Search = strings.TrimSpace(f.Search)
	c.mu.Lock()
	c.filters = f
	if c.state == StateError {
		c.stale = true
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return c.fetch(ctx, 0)
}

// SetSort replaces the sort and reloads from the first page. In the error
// state the sort is only stored; Retry applies it.
func (c *Controller) SetSort(ctx context.Context, s Sort) error {
	c.mu.Lock()
	c.sort = s
	if c.state == StateError {
		c.stale = true
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return c.fetch(ctx, 0)
}

// LoadMore appends the next page. It is a no-op unless a previous load
// completed and more records remain.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateLoaded || !c.hasMoreLocked() {
		c.mu.Unlock()
		return nil
	}
	next := c.page + 1
	c.mu.Unlock()
	return c.fetch(ctx, next)
}

// Retry repeats the failed request. If the criteria changed since the
// failure, it reloads from the first page instead. It is a no-op outside
// the error state.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateError {
		c.mu.Unlock()
		return nil
	}
	page := c.failedPage
	if c.stale {
		page = 0
	}
	c.mu.Unlock()
	return c.fetch(ctx, page)
}

// View returns a snapshot safe to read without holding the controller.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]patient.Patient, len(c.records))
	copy(records, c.records)

	v := View{
		State:   c.state,
		Records: records,
		Total:   c.total,
		HasMore: c.hasMoreLocked(),
		Error:   c.err,
		Filters: c.filters,
		Sort:    c.sort,
	}
	switch c.state {
	case StateError:
		v.FullPageError = len(records) == 0
		v.InlineError = len(records) > 0
	case StateLoaded:
		v.Empty = len(records) == 0
	case StateLoading:
		v.LoadingMore = len(records) > 0
	}
	return v
}

func (c *Controller) hasMoreLocked() bool {
	return !c.done && len(c.records) < c.total
}

func (c *Controller) paramsLocked(page int) fhirclient.SearchParams {
	p := fhirclient.SearchParams{
		Search: c.filters.Search,
		Gender: c.filters.Gender,
		Active: c.filters.Active,
		Count:  fhirclient.Int(c.pageSize),
		Offset: fhirclient.Int(page * c.pageSize),
	}
	if c.sort.Key != "" {
		p.Sort = c.sort.Key
		p.Order = c.sort.Order
	}
	return p
}

// fetch requests page and applies the result unless a newer fetch started
// meanwhile. Page 0 replaces the records, later pages append.
func (c *Controller) fetch(ctx context.Context, page int) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	if page == 0 {
		c.records = nil
		c.total = 0
		c.page = 0
		c.done = false
		c.stale = false
	}
	c.state = StateLoading
	c.err = ""
	params := c.paramsLocked(page)
	c.mu.Unlock()

	c.logger.Debug().Uint64("generation", gen).Int("page", page).Msg("fetching patients")

	bundle, err := c.fetcher.Search(ctx, params)
	var recs []patient.Patient
	if err == nil {
		recs, err = fhir.DecodeEntries[patient.Patient](bundle)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Debug().Uint64("generation", gen).Uint64("current", c.generation).Msg("dropping superseded response")
		return ErrSuperseded
	}

	if err != nil {
		c.state = StateError
		c.err = err.Error()
		c.failedPage = page
		c.logger.Debug().Err(err).Int("page", page).Msg("patient fetch failed")
		return err
	}

	if page == 0 {
		c.records = recs
	} else {
		c.records = append(c.records, recs...)
	}
	c.total = bundle.TotalOrZero()
	c.page = page
	c.done = len(recs) == 0
	c.state = StateLoaded
	return nil
}
