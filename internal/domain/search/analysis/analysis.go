// Package analysis holds the normalized output of the LLM query analyzer.
package analysis

import (
	"strings"

	"github.com/synapse-kb/synapse/internal/domain/search/filter"
	"github.com/synapse-kb/synapse/internal/domain/search/mode"
)

// Result is a normalized query analysis: a suggested retrieval mode,
// a suggested content-type filter set, and an ordered list of enhanced
// query terms (earlier terms were judged more relevant).
type Result struct {
	suggestedMode mode.Mode
	filters       filter.Set
	terms         []string
}

// New normalizes raw analyzer output into a Result.
// An unknown or smart suggested mode falls back to hybrid (the analyzer
// must never recurse into smart). Terms are trimmed and deduplicated in
// order; an empty list falls back to the original query, so a Result
// always carries at least one term.
func New(suggested mode.Mode, types []filter.Token, terms []string, original string) Result {
	m := suggested
	if !m.IsValid() || m == mode.Smart {
		m = mode.Hybrid
	}

	seen := make(map[string]bool, len(terms))
	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		normalized = append(normalized, t)
	}
	if len(normalized) == 0 {
		normalized = []string{original}
	}

	return Result{
		suggestedMode: m,
		filters:       filter.NewSet(types...),
		terms:         normalized,
	}
}

// Degraded builds the single-term equivalent used when the analyzer is
// unavailable: hybrid mode, no type suggestion, the original query as
// the only term.
func Degraded(original string) Result {
	return New(mode.Hybrid, nil, nil, original)
}

// SuggestedMode returns the retrieval mode the analyzer chose.
func (r *Result) SuggestedMode() mode.Mode { return r.suggestedMode }

// Filters returns the suggested content-type filter set ({any} when
// the analyzer suggested none).
func (r *Result) Filters() filter.Set { return r.filters }

// Terms returns the enhanced query terms in priority order. Never empty.
func (r *Result) Terms() []string { return r.terms }
