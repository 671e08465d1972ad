package item

import (
	"context"
	"errors"
	"fmt"

	"github.com/synapse-kb/synapse/internal/db"
	"github.com/synapse-kb/synapse/internal/domain"
)

// IndexName is the FT index over all stored items.
const IndexName = domain.KeyPrefix + "item:idx"

// IndexOptions carries the vector field parameters for the items index.
type IndexOptions struct {
	VectorDim   int
	HNSWM       int
	EFConstruct int
}

// indexManager is the consumer interface for index lifecycle (ISP).
type indexManager interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// EnsureIndex creates the items FT index if it does not exist yet.
func EnsureIndex(ctx context.Context, im indexManager, opts IndexOptions) error {
	exists, err := im.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(IndexName).
		Prefix(keyPrefix).
		Tag(fieldClass).
		Text(fieldTitle).
		Text(fieldContent).
		TagWithOpts(fieldTags, ",", false).
		Numeric(fieldCreated).
		VectorHNSW(fieldVector, opts.VectorDim, db.DistanceCosine, opts.HNSWM, opts.EFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := im.CreateIndex(ctx, def); err != nil {
		// concurrent startup may have created it first
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}
