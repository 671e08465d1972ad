package search

import (
	"context"
	"fmt"
	"time"

	"github.com/synapse-kb/synapse/internal/domain"
	domitem "github.com/synapse-kb/synapse/internal/domain/item"
	"github.com/synapse-kb/synapse/internal/domain/search/mode"
	"github.com/synapse-kb/synapse/internal/domain/search/page"
	"github.com/synapse-kb/synapse/internal/domain/search/request"
	"github.com/synapse-kb/synapse/internal/metrics"
)

// DefaultSemanticThreshold is the minimum similarity a vector hit must
// reach to appear in semantic results.
const DefaultSemanticThreshold = 0.2

// Service handles item search across text, semantic, hybrid, and smart modes.
type Service struct {
	repo      Repository
	embed     Embedder
	analyzer  Analyzer
	threshold float64
}

// New creates a search service. A non-positive threshold falls back to
// DefaultSemanticThreshold.
func New(repo Repository, embed Embedder, analyzer Analyzer, threshold float64) *Service {
	if threshold <= 0 {
		threshold = DefaultSemanticThreshold
	}
	return &Service{repo: repo, embed: embed, analyzer: analyzer, threshold: threshold}
}

// Search executes one search request and returns a single result page.
// An empty query routes to listing retrieval regardless of mode. Any
// retrieval failure surfaces as domain.ErrSearchFailed with no partial
// results.
func (s *Service) Search(ctx context.Context, req *request.Request) (page.Result, error) {
	label := string(req.Mode())
	if req.IsListing() {
		label = "listing"
	}

	start := time.Now()
	items, err := s.dispatch(ctx, req)
	metrics.SearchDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(label, "error").Inc()
		return page.Result{}, fmt.Errorf("%w: %w", domain.ErrSearchFailed, err)
	}
	metrics.SearchesTotal.WithLabelValues(label, "ok").Inc()

	hasMore := len(items) == req.PageSize()
	return page.New(items, hasMore, req.PageNumber()), nil
}

func (s *Service) dispatch(ctx context.Context, req *request.Request) ([]domitem.Scored, error) {
	if req.IsListing() {
		return s.repo.List(ctx, req.Skip(), req.PageSize(), req.Filters().Classes())
	}

	switch req.Mode() {
	case mode.Text:
		return s.repo.SearchLexical(ctx, req.Query(), req.Skip(), req.PageSize(), req.Filters().Classes())
	case mode.Semantic:
		return s.searchSemantic(ctx, req)
	case mode.Hybrid:
		return s.searchHybrid(ctx, req)
	case mode.Smart:
		return s.searchSmart(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported search mode: %s", req.Mode())
	}
}

// searchSemantic embeds the query and runs thresholded KNN retrieval.
func (s *Service) searchSemantic(ctx context.Context, req *request.Request) ([]domitem.Scored, error) {
	emb, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	items, err := s.repo.SearchKNN(
		ctx, emb.Embedding, req.Skip(), req.PageSize(), s.threshold, req.Filters().Classes(),
	)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	return items, nil
}

// searchHybrid embeds the query and runs the blended retrieval call.
func (s *Service) searchHybrid(ctx context.Context, req *request.Request) ([]domitem.Scored, error) {
	emb, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	items, err := s.repo.SearchHybrid(
		ctx, req.Query(), emb.Embedding, req.Skip(), req.PageSize(), req.Filters().Classes(),
	)
	if err != nil {
		return nil, fmt.Errorf("search hybrid: %w", err)
	}
	return items, nil
}
