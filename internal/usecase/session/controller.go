// Package session holds caller-side search state: the active query,
// mode, filter set, and pagination counters. The search service itself
// is stateless between calls; everything that persists across
// successive searches lives here.
package session

import (
	"context"
	"sync"

	"github.com/synapse-kb/synapse/internal/domain/item"
	"github.com/synapse-kb/synapse/internal/domain/search/filter"
	"github.com/synapse-kb/synapse/internal/domain/search/mode"
	"github.com/synapse-kb/synapse/internal/domain/search/page"
	"github.com/synapse-kb/synapse/internal/domain/search/request"
)

// Searcher runs one search request and returns a single result page.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (page.Result, error)
}

// State is the fetch state of a result stream.
type State int

// Stream states.
const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Controller owns one logical result stream: its query parameters, its
// page counter, and the accumulated view. A fetch superseded by a newer
// fetch on the same controller never mutates the view; each fetch
// carries a generation number checked on completion.
type Controller struct {
	search Searcher

	mu         sync.Mutex
	gen        uint64
	query      string
	searchMode mode.Mode
	filters    filter.Set
	pageSize   int
	pageNumber int
	state      State
	items      []item.Scored
	hasMore    bool
	err        error
}

// NewController creates an idle controller. A non-positive page size
// falls back to request.DefaultPageSize.
func NewController(search Searcher, pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = request.DefaultPageSize
	}
	return &Controller{
		search:     search,
		searchMode: mode.Hybrid,
		pageSize:   pageSize,
		pageNumber: 1,
	}
}

// SetQuery replaces the query and resets pagination. The view keeps its
// current items until the next fetch completes.
func (c *Controller) SetQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = query
	c.pageNumber = 1
}

// SetMode replaces the search mode and resets pagination.
func (c *Controller) SetMode(m mode.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchMode = m
	c.pageNumber = 1
}

// SetFilters replaces the content-type filter set and resets pagination.
func (c *Controller) SetFilters(f filter.Set) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = f
	c.pageNumber = 1
}

// ToggleFilter toggles one filter token and resets pagination.
func (c *Controller) ToggleFilter(t filter.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = c.filters.Toggle(t)
	c.pageNumber = 1
}

// Refresh fetches page 1 and replaces the view.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.fetch(ctx, 1, false)
}

// LoadMore fetches the next page and appends it to the view. It is a
// no-op when the stream has reported end-of-results.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.state == Loaded && !c.hasMore {
		c.mu.Unlock()
		return nil
	}
	next := c.pageNumber + 1
	if c.state == Idle {
		next = 1
	}
	c.mu.Unlock()
	return c.fetch(ctx, next, true)
}

// NextPage fetches the following page and replaces the view. It is a
// no-op when the stream has reported end-of-results.
func (c *Controller) NextPage(ctx context.Context) error {
	c.mu.Lock()
	if c.state == Loaded && !c.hasMore {
		c.mu.Unlock()
		return nil
	}
	next := c.pageNumber + 1
	if c.state == Idle {
		next = 1
	}
	c.mu.Unlock()
	return c.fetch(ctx, next, false)
}

// PrevPage fetches the preceding page and replaces the view. It is a
// no-op on page 1.
func (c *Controller) PrevPage(ctx context.Context) error {
	c.mu.Lock()
	if c.pageNumber <= 1 {
		c.mu.Unlock()
		return nil
	}
	prev := c.pageNumber - 1
	c.mu.Unlock()
	return c.fetch(ctx, prev, false)
}

func (c *Controller) fetch(ctx context.Context, pageNumber int, appendView bool) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.state = Loading
	req, err := request.New(c.query, c.searchMode, c.filters, pageNumber, c.pageSize, appendView)
	c.mu.Unlock()
	if err != nil {
		c.complete(gen, pageNumber, appendView, page.Result{}, err)
		return err
	}

	res, err := c.search.Search(ctx, &req)
	c.complete(gen, pageNumber, appendView, res, err)
	return err
}

// complete applies a fetch outcome to the view unless a newer fetch
// has started since; stale outcomes are discarded.
func (c *Controller) complete(gen uint64, pageNumber int, appendView bool, res page.Result, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	if err != nil {
		c.state = Failed
		c.err = err
		return
	}

	c.state = Loaded
	c.err = nil
	c.pageNumber = pageNumber
	c.hasMore = res.HasMore()
	if appendView {
		c.items = append(c.items, res.Items()...)
	} else {
		c.items = res.Items()
	}
}

// State returns the current fetch state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Items returns a copy of the accumulated view.
func (c *Controller) Items() []item.Scored {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]item.Scored, len(c.items))
	copy(out, c.items)
	return out
}

// PageNumber returns the page number of the last applied fetch.
func (c *Controller) PageNumber() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageNumber
}

// HasMore reports whether the stream may have further pages.
func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// Err returns the failure of the last applied fetch, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Query returns the active query text.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Mode returns the active search mode.
func (c *Controller) Mode() mode.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchMode
}

// Filters returns the active filter set.
func (c *Controller) Filters() filter.Set {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}
