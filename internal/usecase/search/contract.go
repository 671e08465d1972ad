package search

import (
	"context"

	"github.com/synapse-kb/synapse/internal/domain"
	domitem "github.com/synapse-kb/synapse/internal/domain/item"
	"github.com/synapse-kb/synapse/internal/domain/search/analysis"
)

// Repository defines the retrieval contract over the item store.
type Repository interface {
	List(
		ctx context.Context, skip, limit int, classes []domitem.Class,
	) ([]domitem.Scored, error)

	SearchLexical(
		ctx context.Context, query string, skip, limit int, classes []domitem.Class,
	) ([]domitem.Scored, error)

	SearchKNN(
		ctx context.Context, vector []float32, skip, limit int,
		threshold float64, classes []domitem.Class,
	) ([]domitem.Scored, error)

	SearchHybrid(
		ctx context.Context, query string, vector []float32, skip, limit int,
		classes []domitem.Class,
	) ([]domitem.Scored, error)
}

// Analyzer expands a free-text query into a normalized analysis.
type Analyzer interface {
	Analyze(ctx context.Context, query string) (analysis.Result, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
