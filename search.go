package synapse

import (
	"context"
	"fmt"
	"time"

	domitem "github.com/synapse-kb/synapse/internal/domain/item"
	"github.com/synapse-kb/synapse/internal/domain/search/filter"
	"github.com/synapse-kb/synapse/internal/domain/search/mode"
	"github.com/synapse-kb/synapse/internal/domain/search/request"
	itemuc "github.com/synapse-kb/synapse/internal/usecase/item"
)

// SearchMode controls the search algorithm.
type SearchMode string

// Search mode constants.
const (
	ModeText     SearchMode = "text"
	ModeSemantic SearchMode = "semantic"
	ModeHybrid   SearchMode = "hybrid"
	ModeSmart    SearchMode = "smart"
)

// Item is a stored knowledge item.
type Item struct {
	ID        string
	Class     string // note, url, image, pdf, video, product
	Title     string
	SourceURL string
	Content   string
	Tags      []string
	BlobKey   string
	CreatedAt time.Time
}

// Result is a search hit. Score is nil for listing and lexical results.
type Result struct {
	Item
	Score *float64
}

// SearchPage is one page of search results.
type SearchPage struct {
	Items   []Result
	Page    int
	HasMore bool
}

// SearchOptions configures a search query.
type SearchOptions struct {
	Mode     SearchMode // defaults to hybrid
	Types    []string   // content type filter, empty means any
	Page     int        // 1-based, defaults to 1
	PageSize int        // defaults to 10, max 50
}

// CreateItem describes an item to store.
type CreateItem struct {
	Class     string
	Title     string
	SourceURL string
	Content   string
	Tags      []string
	BlobKey   string
}

// Search executes a query. An empty query lists items newest first.
func (c *Client) Search(ctx context.Context, query string, opts *SearchOptions) (SearchPage, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}
	m := mode.Mode(opts.Mode)
	if m == "" {
		m = mode.Hybrid
	}

	filters, err := filtersFromTypes(opts.Types)
	if err != nil {
		return SearchPage{}, fmt.Errorf("search: %w", err)
	}

	req, err := request.New(query, m, filters, opts.Page, opts.PageSize, false)
	if err != nil {
		return SearchPage{}, fmt.Errorf("search: %w", err)
	}

	result, err := c.searchSvc.Search(ctx, &req)
	if err != nil {
		return SearchPage{}, fmt.Errorf("search: %w", err)
	}

	hits := result.Items()
	out := make([]Result, len(hits))
	for i := range hits {
		it := hits[i].Item()
		out[i] = Result{Item: fromInternalItem(&it)}
		if hits[i].HasScore() {
			score := hits[i].Score()
			out[i].Score = &score
		}
	}
	return SearchPage{
		Items:   out,
		Page:    result.Number(),
		HasMore: result.HasMore(),
	}, nil
}

// Add stores a new item. The ID is generated.
func (c *Client) Add(ctx context.Context, ci CreateItem) (Item, error) {
	it, err := c.itemSvc.Create(ctx, itemuc.CreateParams{
		Class:     domitem.Class(ci.Class),
		Title:     ci.Title,
		SourceURL: ci.SourceURL,
		Content:   ci.Content,
		Tags:      ci.Tags,
		BlobKey:   ci.BlobKey,
	})
	if err != nil {
		return Item{}, fmt.Errorf("add: %w", err)
	}
	return fromInternalItem(&it), nil
}

// Get retrieves an item by ID.
func (c *Client) Get(ctx context.Context, id string) (Item, error) {
	it, err := c.itemSvc.Get(ctx, id)
	if err != nil {
		return Item{}, fmt.Errorf("get: %w", err)
	}
	return fromInternalItem(&it), nil
}

// Delete removes an item by ID.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.itemSvc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Count returns the number of stored items.
func (c *Client) Count(ctx context.Context) (int, error) {
	n, err := c.itemSvc.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// List returns items newest first, optionally filtered by types.
func (c *Client) List(ctx context.Context, skip, limit int, types []string) ([]Item, error) {
	filters, err := filtersFromTypes(types)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	hits, err := c.itemSvc.List(ctx, skip, limit, filters)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	out := make([]Item, len(hits))
	for i := range hits {
		it := hits[i].Item()
		out[i] = fromInternalItem(&it)
	}
	return out, nil
}

func filtersFromTypes(types []string) (filter.Set, error) {
	if len(types) == 0 {
		return filter.NewSet(), nil
	}
	tokens := make([]filter.Token, 0, len(types))
	for _, t := range types {
		tok, ok := filter.ParseToken(t)
		if !ok {
			return filter.Set{}, fmt.Errorf("unknown content type %q", t)
		}
		tokens = append(tokens, tok)
	}
	return filter.NewSet(tokens...), nil
}

func fromInternalItem(it *domitem.Item) Item {
	return Item{
		ID:        it.ID(),
		Class:     string(it.Class()),
		Title:     it.Title(),
		SourceURL: it.SourceURL(),
		Content:   it.Content(),
		Tags:      it.Tags(),
		BlobKey:   it.BlobKey(),
		CreatedAt: it.CreatedAt(),
	}
}
