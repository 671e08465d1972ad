package session

import (
	"context"
	"sync"
	"testing"
	"time"

	domitem "github.com/synapse-kb/synapse/internal/domain/item"
	"github.com/synapse-kb/synapse/internal/domain/search/page"
	"github.com/synapse-kb/synapse/internal/domain/search/request"
)

// searchFn adapts a function to the Searcher interface.
type searchFn func(ctx context.Context, req *request.Request) (page.Result, error)

func (f searchFn) Search(ctx context.Context, req *request.Request) (page.Result, error) {
	return f(ctx, req)
}

// recordingSearcher captures every request it serves.
type recordingSearcher struct {
	mu    sync.Mutex
	serve func(req *request.Request) (page.Result, error)
	reqs  []*request.Request
}

func (s *recordingSearcher) Search(_ context.Context, req *request.Request) (page.Result, error) {
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	s.mu.Unlock()
	return s.serve(req)
}

func (s *recordingSearcher) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reqs)
}

func testItem(t *testing.T, id string) domitem.Item {
	t.Helper()
	it, err := domitem.New(
		id, domitem.ClassNote, "title "+id, "", "content "+id, nil, "",
		time.Unix(1700000000, 0),
	)
	if err != nil {
		t.Fatalf("New item: %v", err)
	}
	return it
}

func pageOf(t *testing.T, number int, hasMore bool, ids ...string) page.Result {
	t.Helper()
	items := make([]domitem.Scored, 0, len(ids))
	for _, id := range ids {
		items = append(items, domitem.NewUnscored(testItem(t, id)))
	}
	return page.New(items, hasMore, number)
}

func assertViewIDs(t *testing.T, c *Controller, want ...string) {
	t.Helper()
	items := c.Items()
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i := range want {
		it := items[i].Item()
		if it.ID() != want[i] {
			t.Fatalf("expected item %q at position %d, got %q", want[i], i, it.ID())
		}
	}
}
