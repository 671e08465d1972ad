package search

import (
	"context"
	"fmt"

	domitem "github.com/synapse-kb/synapse/internal/domain/item"
	"github.com/synapse-kb/synapse/internal/domain/search/filter"
	"github.com/synapse-kb/synapse/internal/domain/search/mode"
	"github.com/synapse-kb/synapse/internal/domain/search/request"
	"github.com/synapse-kb/synapse/internal/metrics"
)

// searchSmart expands the query via the analyzer and merges per-term
// retrieval results in analyzer order. Items are deduplicated by id,
// first occurrence wins including its score and position. Analyzer
// failure and mid-merge retrieval failure both degrade to a single
// hybrid call with the original query and the caller's filters.
func (s *Service) searchSmart(ctx context.Context, req *request.Request) ([]domitem.Scored, error) {
	if s.analyzer == nil {
		metrics.SearchFallbacksTotal.WithLabelValues("analyzer").Inc()
		return s.fallbackHybrid(ctx, req)
	}

	res, err := s.analyzer.Analyze(ctx, req.Query())
	if err != nil {
		metrics.SearchFallbacksTotal.WithLabelValues("analyzer").Inc()
		return s.fallbackHybrid(ctx, req)
	}

	metrics.SmartTermsPerQuery.Observe(float64(len(res.Terms())))

	classes := effectiveFilters(req.Filters(), res.Filters()).Classes()

	seen := make(map[string]bool)
	merged := make([]domitem.Scored, 0, req.PageSize())

	for _, term := range res.Terms() {
		hits, err := s.retrieveTerm(ctx, res.SuggestedMode(), term, req.PageSize(), classes)
		if err != nil {
			metrics.SearchFallbacksTotal.WithLabelValues("retrieval").Inc()
			return s.fallbackHybrid(ctx, req)
		}

		for _, hit := range hits {
			it := hit.Item()
			if seen[it.ID()] {
				continue
			}
			seen[it.ID()] = true
			merged = append(merged, hit)
		}
		if len(merged) >= req.PageSize() {
			break
		}
	}

	return window(merged, req.Skip(), req.PageSize()), nil
}

// retrieveTerm runs one term through the adapter the analyzer suggested.
// The suggested mode never recurses into smart: analysis normalization
// maps anything outside text/semantic to hybrid.
func (s *Service) retrieveTerm(
	ctx context.Context, m mode.Mode, term string, limit int, classes []domitem.Class,
) ([]domitem.Scored, error) {
	switch m {
	case mode.Text:
		return s.repo.SearchLexical(ctx, term, 0, limit, classes)
	case mode.Semantic:
		emb, err := s.embed.Embed(ctx, term)
		if err != nil {
			return nil, fmt.Errorf("vectorize term: %w", err)
		}
		return s.repo.SearchKNN(ctx, emb.Embedding, 0, limit, s.threshold, classes)
	default:
		emb, err := s.embed.Embed(ctx, term)
		if err != nil {
			return nil, fmt.Errorf("vectorize term: %w", err)
		}
		return s.repo.SearchHybrid(ctx, term, emb.Embedding, 0, limit, classes)
	}
}

// fallbackHybrid is the degraded smart path: one hybrid call with the
// original query and the caller's filters.
func (s *Service) fallbackHybrid(ctx context.Context, req *request.Request) ([]domitem.Scored, error) {
	emb, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("fallback vectorize query: %w", err)
	}

	items, err := s.repo.SearchHybrid(
		ctx, req.Query(), emb.Embedding, req.Skip(), req.PageSize(), req.Filters().Classes(),
	)
	if err != nil {
		return nil, fmt.Errorf("fallback search hybrid: %w", err)
	}
	return items, nil
}

// effectiveFilters picks the caller's filter set unless it is {any},
// in which case the analyzer's suggestion applies.
func effectiveFilters(caller, suggested filter.Set) filter.Set {
	if !caller.IsAny() {
		return caller
	}
	return suggested
}

func window(items []domitem.Scored, skip, limit int) []domitem.Scored {
	if skip >= len(items) {
		return nil
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}
