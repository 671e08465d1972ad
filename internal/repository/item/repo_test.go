package item

import (
	"context"
	"errors"
	"testing"

	"github.com/synapse-kb/synapse/internal/db"
	"github.com/synapse-kb/synapse/internal/domain"
	domitem "github.com/synapse-kb/synapse/internal/domain/item"
)

// --- Save / Get / Delete ---

func TestSave_WritesHashFields(t *testing.T) {
	repo, ms := newTestRepo(t)

	var gotKey string
	var gotFields map[string]string
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		gotKey = key
		gotFields = fields
		return nil
	}

	it := mustItem(t, "item-1", domitem.ClassNote, "reading list")
	if err := repo.Save(context.Background(), &it); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotKey != "synapse:item:item-1" {
		t.Errorf("key = %q", gotKey)
	}
	if gotFields[fieldClass] != "note" {
		t.Errorf("class = %q", gotFields[fieldClass])
	}
	if gotFields[fieldTitle] != "reading list" {
		t.Errorf("title = %q", gotFields[fieldTitle])
	}
	if gotFields[fieldCreated] != "1700000000" {
		t.Errorf("created = %q", gotFields[fieldCreated])
	}
	if _, ok := gotFields[fieldURL]; ok {
		t.Error("empty url must be omitted")
	}
}

func TestGet_RoundTrip(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "synapse:item:item-1" {
			t.Errorf("key = %q", key)
		}
		return map[string]string{
			fieldClass:   "url",
			fieldTitle:   "Go blog",
			fieldURL:     "https://go.dev/blog",
			fieldTags:    "go,reading",
			fieldCreated: "1700000000",
		}, nil
	}

	it, err := repo.Get(context.Background(), "item-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.Class() != domitem.ClassURL {
		t.Errorf("class = %q", it.Class())
	}
	if it.SourceURL() != "https://go.dev/blog" {
		t.Errorf("url = %q", it.SourceURL())
	}
	if len(it.Tags()) != 2 || it.Tags()[0] != "go" {
		t.Errorf("tags = %v", it.Tags())
	}
	if it.CreatedAt().Unix() != 1700000000 {
		t.Errorf("created = %v", it.CreatedAt())
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{}, nil
	}

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.existsFn = func(_ context.Context, _ string) (bool, error) {
		return false, nil
	}

	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	deleted := false
	ms.delFn = func(_ context.Context, key string) error {
		deleted = key == "synapse:item:item-1"
		return nil
	}

	if err := repo.Delete(context.Background(), "item-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected DEL on item key")
	}
}

// --- List ---

func TestList_NewestFirstWithoutScores(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchListFn = func(_ context.Context, q *db.ListQuery) (*db.SearchResult, error) {
		if q.IndexName != IndexName {
			t.Errorf("index = %q", q.IndexName)
		}
		if q.SortBy != fieldCreated || !q.SortDesc {
			t.Errorf("expected created DESC sort, got %s desc=%v", q.SortBy, q.SortDesc)
		}
		if q.Query != "*" {
			t.Errorf("query = %q", q.Query)
		}
		if q.Offset != 10 || q.Limit != 5 {
			t.Errorf("paging = (%d, %d)", q.Offset, q.Limit)
		}
		return &db.SearchResult{
			Total:   2,
			Entries: []db.SearchEntry{entry("a", 0, nil), entry("b", 0, nil)},
		}, nil
	}

	out, err := repo.List(context.Background(), 10, 5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}
	if out[0].HasScore() {
		t.Error("listing results must not carry scores")
	}
	if scoredID(out[0]) != "a" {
		t.Errorf("id = %q", scoredID(out[0]))
	}
}

func TestList_ClassRestriction(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchListFn = func(_ context.Context, q *db.ListQuery) (*db.SearchResult, error) {
		if q.Query != "@class:{image|video}" {
			t.Errorf("query = %q", q.Query)
		}
		return &db.SearchResult{}, nil
	}

	_, err := repo.List(context.Background(), 0, 10, []domitem.Class{domitem.ClassImage, domitem.ClassVideo})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- SearchLexical ---

func TestSearchLexical_NoScores(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchBM25Fn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		if q.Query != "rust async" {
			t.Errorf("query = %q", q.Query)
		}
		if len(q.TextFields) != 2 {
			t.Errorf("text fields = %v", q.TextFields)
		}
		if q.Offset != 0 || q.Limit != 10 {
			t.Errorf("paging = (%d, %d)", q.Offset, q.Limit)
		}
		return &db.SearchResult{
			Total:   1,
			Entries: []db.SearchEntry{entry("a", 3.2, nil)},
		}, nil
	}

	out, err := repo.SearchLexical(context.Background(), "rust async", 0, 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(out))
	}
	if out[0].HasScore() {
		t.Error("lexical results must not carry similarity scores")
	}
}

func TestSearchLexical_SyntaxErrorMeansNoResults(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchBM25Fn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: errors.New("Syntax error at offset 1")}
	}

	out, err := repo.SearchLexical(context.Background(), "+++", 0, 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no results, got %d", len(out))
	}
}

// --- SearchKNN ---

func TestSearchKNN_ThresholdFiltering(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.K != 10 || q.Offset != 0 {
			t.Errorf("k/offset = %d/%d", q.K, q.Offset)
		}
		return &db.SearchResult{
			Total: 3,
			Entries: []db.SearchEntry{
				entry("a", 0.92, nil),
				entry("b", 0.35, nil),
				entry("c", 0.1, nil),
			},
		}, nil
	}

	out, err := repo.SearchKNN(context.Background(), testVector(), 0, 10, 0.2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 hits above threshold, got %d", len(out))
	}
	if !out[0].HasScore() || out[0].Score() != 0.92 {
		t.Errorf("score = %v/%v", out[0].HasScore(), out[0].Score())
	}
}

func TestSearchKNN_PassesClassesAndPaging(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if len(q.Classes) != 1 || q.Classes[0] != "pdf" {
			t.Errorf("classes = %v", q.Classes)
		}
		if q.K != 30 || q.Offset != 20 {
			t.Errorf("k/offset = %d/%d", q.K, q.Offset)
		}
		return &db.SearchResult{}, nil
	}

	_, err := repo.SearchKNN(context.Background(), testVector(), 20, 10, 0.2, []domitem.Class{domitem.ClassPDF})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- SearchHybrid ---

func TestSearchHybrid_FusesBothRankings(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.Offset != 0 {
			t.Errorf("hybrid knn must fetch from rank 0, offset = %d", q.Offset)
		}
		return &db.SearchResult{
			Total:   2,
			Entries: []db.SearchEntry{entry("a", 0.9, nil), entry("b", 0.7, nil)},
		}, nil
	}
	ms.searchBM25Fn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total:   2,
			Entries: []db.SearchEntry{entry("b", 5.0, nil), entry("c", 2.0, nil)},
		}, nil
	}

	out, err := repo.SearchHybrid(context.Background(), "go", testVector(), 0, 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 fused hits, got %d", len(out))
	}
	// b appears in both rankings and must rank first
	if scoredID(out[0]) != "b" {
		t.Errorf("fused[0] = %q", scoredID(out[0]))
	}
	// similarity of the vector hit survives fusion
	if !out[0].HasScore() || out[0].Score() != 0.7 {
		t.Errorf("fused[0] score = %v/%v", out[0].HasScore(), out[0].Score())
	}
}

func TestSearchHybrid_PagesIntoFusedRanking(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.K != 4 {
			t.Errorf("depth = %d, want skip+limit", q.K)
		}
		return &db.SearchResult{
			Total: 4,
			Entries: []db.SearchEntry{
				entry("a", 0.9, nil), entry("b", 0.8, nil),
				entry("c", 0.7, nil), entry("d", 0.6, nil),
			},
		}, nil
	}
	ms.searchBM25Fn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return &db.SearchResult{}, nil
	}

	out, err := repo.SearchHybrid(context.Background(), "q", testVector(), 2, 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(out))
	}
	if scoredID(out[0]) != "c" || scoredID(out[1]) != "d" {
		t.Errorf("page = %q, %q", scoredID(out[0]), scoredID(out[1]))
	}
}

func TestSearchHybrid_SkipBeyondResults(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{entry("a", 0.9, nil)}}, nil
	}
	ms.searchBM25Fn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return &db.SearchResult{}, nil
	}

	out, err := repo.SearchHybrid(context.Background(), "q", testVector(), 10, 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty page, got %d", len(out))
	}
}

func TestSearchHybrid_KNNErrorPropagates(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return nil, errors.New("connection refused")
	}

	_, err := repo.SearchHybrid(context.Background(), "q", testVector(), 0, 10, nil)
	if err == nil {
		t.Fatal("expected error")
	}
}
