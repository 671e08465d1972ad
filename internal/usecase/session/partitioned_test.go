package session

import (
	"context"
	"errors"
	"testing"

	"github.com/synapse-kb/synapse/internal/domain"
	"github.com/synapse-kb/synapse/internal/domain/search/filter"
	"github.com/synapse-kb/synapse/internal/domain/search/page"
	"github.com/synapse-kb/synapse/internal/domain/search/request"
)

func mediaSet() filter.Set {
	return filter.NewSet(filter.Image, filter.Video)
}

func TestPartitionedView_RefreshLoadsBothStreams(t *testing.T) {
	s := &recordingSearcher{
		serve: func(req *request.Request) (page.Result, error) {
			if req.Filters().Equal(mediaSet()) {
				return pageOf(t, 1, false, "img-1"), nil
			}
			return pageOf(t, 1, false, "note-1", "note-2"), nil
		},
	}
	v := NewPartitionedView(s, 10)
	v.SetQuery("vacation")

	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	assertViewIDs(t, v.Media(), "img-1")
	assertViewIDs(t, v.Rest(), "note-1", "note-2")
	if s.calls() != 2 {
		t.Errorf("expected 2 fetches, got %d", s.calls())
	}
}

func TestPartitionedView_DisjointFilters(t *testing.T) {
	v := NewPartitionedView(searchFn(func(_ context.Context, _ *request.Request) (page.Result, error) {
		return page.Result{}, nil
	}), 10)

	media := v.Media().Filters()
	rest := v.Rest().Filters()
	if !media.Equal(mediaSet()) {
		t.Errorf("unexpected media filters: %s", media)
	}
	for _, tok := range media.Tokens() {
		if rest.Has(tok) {
			t.Errorf("filter subsets overlap on %q", tok)
		}
	}
	if rest.IsAny() {
		t.Error("rest stream must carry an explicit class subset")
	}
}

func TestPartitionedView_IndependentPaging(t *testing.T) {
	s := &recordingSearcher{
		serve: func(req *request.Request) (page.Result, error) {
			if req.Filters().Equal(mediaSet()) {
				return pageOf(t, req.PageNumber(), true, "img"), nil
			}
			return pageOf(t, req.PageNumber(), true, "note"), nil
		},
	}
	v := NewPartitionedView(s, 1)
	v.SetQuery("query")

	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if err := v.Media().NextPage(context.Background()); err != nil {
		t.Fatalf("NextPage failed: %v", err)
	}

	if v.Media().PageNumber() != 2 {
		t.Errorf("expected media page 2, got %d", v.Media().PageNumber())
	}
	if v.Rest().PageNumber() != 1 {
		t.Errorf("media paging must not advance the rest stream, got page %d", v.Rest().PageNumber())
	}
}

func TestPartitionedView_RefreshPropagatesFailure(t *testing.T) {
	s := &recordingSearcher{
		serve: func(req *request.Request) (page.Result, error) {
			if req.Filters().Equal(mediaSet()) {
				return page.Result{}, domain.ErrSearchFailed
			}
			return pageOf(t, 1, false, "note"), nil
		},
	}
	v := NewPartitionedView(s, 10)
	v.SetQuery("query")

	if err := v.Refresh(context.Background()); !errors.Is(err, domain.ErrSearchFailed) {
		t.Fatalf("expected ErrSearchFailed, got %v", err)
	}
}
