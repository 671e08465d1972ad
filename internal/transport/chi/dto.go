package chi

import (
	"fmt"
	"time"

	domitem "github.com/synapse-kb/synapse/internal/domain/item"
	"github.com/synapse-kb/synapse/internal/domain/search/filter"
	"github.com/synapse-kb/synapse/internal/domain/search/mode"
	"github.com/synapse-kb/synapse/internal/domain/search/page"
	"github.com/synapse-kb/synapse/internal/domain/search/request"
)

// Error response codes.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "item_not_found"
	codeEmbeddingError   = "embedding_provider_error"
	codeSearchFailed     = "search_failed"
	codeInternalError    = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateItemRequest is the POST /api/items body.
type CreateItemRequest struct {
	Class     string   `json:"class"`
	Title     string   `json:"title,omitempty"`
	SourceURL string   `json:"source_url,omitempty"`
	Content   string   `json:"content,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	BlobKey   string   `json:"blob_key,omitempty"`
}

// ItemResponse is the JSON shape of a stored item.
type ItemResponse struct {
	ID        string    `json:"id"`
	Class     string    `json:"class"`
	Title     string    `json:"title,omitempty"`
	SourceURL string    `json:"source_url,omitempty"`
	Content   string    `json:"content,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	BlobKey   string    `json:"blob_key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoredItemResponse is an item plus an optional similarity score.
// Score is absent for lexical and listing results.
type ScoredItemResponse struct {
	ItemResponse
	Score *float64 `json:"score,omitempty"`
}

// SearchRequest is the POST /api/search body. GET /api/search carries
// the same fields as query parameters.
type SearchRequest struct {
	Query    string   `json:"query"`
	Mode     string   `json:"mode,omitempty"`
	Types    []string `json:"types,omitempty"`
	Page     int      `json:"page,omitempty"`
	PageSize int      `json:"page_size,omitempty"`
}

// SearchResponse is one result page.
type SearchResponse struct {
	Items   []ScoredItemResponse `json:"items"`
	HasMore bool                 `json:"has_more"`
	Page    int                  `json:"page"`
}

// ListResponse wraps a listing page with the total item count.
type ListResponse struct {
	Items   []ScoredItemResponse `json:"items"`
	HasMore bool                 `json:"has_more"`
	Total   int                  `json:"total"`
}

// HealthResponse reports aggregated component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func itemToDTO(it *domitem.Item) ItemResponse {
	return ItemResponse{
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

func scoredToDTO(s *domitem.Scored) ScoredItemResponse {
	it := s.Item()
	out := ScoredItemResponse{ItemResponse: itemToDTO(&it)}
	if s.HasScore() {
		score := s.Score()
		out.Score = &score
	}
	return out
}

func scoredListToDTO(items []domitem.Scored) []ScoredItemResponse {
	out := make([]ScoredItemResponse, len(items))
	for i := range items {
		out[i] = scoredToDTO(&items[i])
	}
	return out
}

func searchResponseFromPage(p *page.Result) SearchResponse {
	return SearchResponse{
		Items:   scoredListToDTO(p.Items()),
		HasMore: p.HasMore(),
		Page:    p.Number(),
	}
}

// filtersFromTokens parses content-type tokens into a filter set.
// Unknown tokens are rejected.
func filtersFromTokens(tokens []string) (filter.Set, error) {
	parsed := make([]filter.Token, 0, len(tokens))
	for _, raw := range tokens {
		t, ok := filter.ParseToken(raw)
		if !ok {
			return filter.Set{}, fmt.Errorf("unknown content type %q", raw)
		}
		parsed = append(parsed, t)
	}
	return filter.NewSet(parsed...), nil
}

func searchRequestFromDTO(req SearchRequest) (request.Request, error) {
	filters, err := filtersFromTokens(req.Types)
	if err != nil {
		return request.Request{}, err
	}
	return request.New(req.Query, mode.Mode(req.Mode), filters, req.Page, req.PageSize, false)
}
