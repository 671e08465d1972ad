package search

import (
	"context"
	"testing"
	"time"

	"github.com/synapse-kb/synapse/internal/domain"
	domitem "github.com/synapse-kb/synapse/internal/domain/item"
	"github.com/synapse-kb/synapse/internal/domain/search/analysis"
	"github.com/synapse-kb/synapse/internal/domain/search/filter"
	"github.com/synapse-kb/synapse/internal/domain/search/mode"
	"github.com/synapse-kb/synapse/internal/domain/search/request"
)

// mockRepo is a function-backed Repository. Unset methods return empty
// results.
type mockRepo struct {
	list    func(ctx context.Context, skip, limit int, classes []domitem.Class) ([]domitem.Scored, error)
	lexical func(ctx context.Context, query string, skip, limit int, classes []domitem.Class) ([]domitem.Scored, error)
	knn     func(ctx context.Context, vector []float32, skip, limit int, threshold float64, classes []domitem.Class) ([]domitem.Scored, error)
	hybrid  func(ctx context.Context, query string, vector []float32, skip, limit int, classes []domitem.Class) ([]domitem.Scored, error)

	listCalls    int
	lexCalls     int
	knnCalls     int
	hybridCalls  int
	lexQueries   []string
	hybridQueries []string
}

func (m *mockRepo) List(
	ctx context.Context, skip, limit int, classes []domitem.Class,
) ([]domitem.Scored, error) {
	m.listCalls++
	if m.list == nil {
		return nil, nil
	}
	return m.list(ctx, skip, limit, classes)
}

func (m *mockRepo) SearchLexical(
	ctx context.Context, query string, skip, limit int, classes []domitem.Class,
) ([]domitem.Scored, error) {
	m.lexCalls++
	m.lexQueries = append(m.lexQueries, query)
	if m.lexical == nil {
		return nil, nil
	}
	return m.lexical(ctx, query, skip, limit, classes)
}

func (m *mockRepo) SearchKNN(
	ctx context.Context, vector []float32, skip, limit int,
	threshold float64, classes []domitem.Class,
) ([]domitem.Scored, error) {
	m.knnCalls++
	if m.knn == nil {
		return nil, nil
	}
	return m.knn(ctx, vector, skip, limit, threshold, classes)
}

func (m *mockRepo) SearchHybrid(
	ctx context.Context, query string, vector []float32, skip, limit int,
	classes []domitem.Class,
) ([]domitem.Scored, error) {
	m.hybridCalls++
	m.hybridQueries = append(m.hybridQueries, query)
	if m.hybrid == nil {
		return nil, nil
	}
	return m.hybrid(ctx, query, vector, skip, limit, classes)
}

type mockAnalyzer struct {
	analyze func(ctx context.Context, query string) (analysis.Result, error)
	calls   int
}

func (m *mockAnalyzer) Analyze(ctx context.Context, query string) (analysis.Result, error) {
	m.calls++
	if m.analyze == nil {
		return analysis.Degraded(query), nil
	}
	return m.analyze(ctx, query)
}

type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
	texts []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.texts = append(m.texts, text)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	vec := m.vec
	if vec == nil {
		vec = []float32{0.1, 0.2, 0.3}
	}
	return domain.EmbeddingResult{Embedding: vec, PromptTokens: 7, TotalTokens: 7}, nil
}

func newTestService(repo *mockRepo, emb *mockEmbedder, an *mockAnalyzer) *Service {
	return New(repo, emb, an, 0)
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

func scored(t *testing.T, id string, score float64) domitem.Scored {
	t.Helper()
	return domitem.NewScored(testItem(t, id), score)
}

func scoredList(t *testing.T, ids ...string) []domitem.Scored {
	t.Helper()
	out := make([]domitem.Scored, 0, len(ids))
	for i, id := range ids {
		out = append(out, scored(t, id, 0.9-float64(i)*0.1))
	}
	return out
}

func mustRequest(
	t *testing.T, query string, m mode.Mode, f filter.Set, pageNumber, pageSize int,
) *request.Request {
	t.Helper()
	r, err := request.New(query, m, f, pageNumber, pageSize, false)
	if err != nil {
		t.Fatalf("New request: %v", err)
	}
	return &r
}

func resultIDs(items []domitem.Scored) []string {
	out := make([]string, 0, len(items))
	for i := range items {
		it := items[i].Item()
		out = append(out, it.ID())
	}
	return out
}

func assertIDs(t *testing.T, items []domitem.Scored, want ...string) {
	t.Helper()
	got := resultIDs(items)
	if len(got) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, got)
		}
	}
}
