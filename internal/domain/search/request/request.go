package request

import (
	"fmt"
	"strings"

	"github.com/synapse-kb/synapse/internal/domain"
	"github.com/synapse-kb/synapse/internal/domain/search/filter"
	"github.com/synapse-kb/synapse/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 1024
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Request is a validated search request.
type Request struct {
	query      string
	searchMode mode.Mode
	filters    filter.Set
	pageNumber int
	pageSize   int
	appendView bool
}

// New validates and normalizes search parameters.
// Defaults: mode=hybrid, page=1, page_size=10. Page size is clamped to
// MaxPageSize; negative paging parameters are rejected before any
// adapter call. The query may be empty, which routes the request to
// listing retrieval regardless of mode.
func New(
	query string,
	m mode.Mode,
	filters filter.Set,
	pageNumber, pageSize int,
	appendView bool,
) (Request, error) {
	query = strings.TrimSpace(query)
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if m == "" {
		m = mode.Hybrid
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid search mode %q", domain.ErrInvalidRequest, m)
	}
	if pageNumber < 0 {
		return Request{}, fmt.Errorf("%w: page must not be negative", domain.ErrInvalidRequest)
	}
	if pageNumber == 0 {
		pageNumber = 1
	}
	if pageSize < 0 {
		return Request{}, fmt.Errorf("%w: page_size must not be negative", domain.ErrInvalidRequest)
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return Request{
		query:      query,
		searchMode: m,
		filters:    filters,
		pageNumber: pageNumber,
		pageSize:   pageSize,
		appendView: appendView,
	}, nil
}

// Query returns the trimmed search query text.
func (r *Request) Query() string { return r.query }

// Mode returns the requested search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Filters returns the active content-type filter set.
func (r *Request) Filters() filter.Set { return r.filters }

// PageNumber returns the 1-based page number.
func (r *Request) PageNumber() int { return r.pageNumber }

// PageSize returns the number of items per page.
func (r *Request) PageSize() int { return r.pageSize }

// Skip returns the pagination offset derived from page number and size.
func (r *Request) Skip() int { return (r.pageNumber - 1) * r.pageSize }

// Append reports whether the new page extends the caller's current
// view instead of replacing it.
func (r *Request) Append() bool { return r.appendView }

// IsListing reports whether the request has no query and routes to
// listing retrieval.
func (r *Request) IsListing() bool { return r.query == "" }
