package page

import "github.com/synapse-kb/synapse/internal/domain/item"

// Result is one page of search results. Insertion order is significant:
// items appear in first-seen order across merge steps.
type Result struct {
	items   []item.Scored
	hasMore bool
	number  int
}

// New creates a result page.
func New(items []item.Scored, hasMore bool, number int) Result {
	return Result{items: items, hasMore: hasMore, number: number}
}

// Items returns the page items in ranked order.
func (r *Result) Items() []item.Scored { return r.items }

// HasMore reports whether more results may exist beyond this page.
// It is a look-ahead heuristic: a full page implies more may exist,
// a short page implies end-of-results.
func (r *Result) HasMore() bool { return r.hasMore }

// Number returns the caller-visible 1-based page number.
func (r *Result) Number() int { return r.number }

// Len returns the number of items on the page.
func (r *Result) Len() int { return len(r.items) }
