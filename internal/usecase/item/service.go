package item

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/synapse-kb/synapse/internal/domain"
	domitem "github.com/synapse-kb/synapse/internal/domain/item"
	"github.com/synapse-kb/synapse/internal/domain/search/filter"
	"github.com/synapse-kb/synapse/internal/domain/search/request"
)

// maxEmbedChars caps the text sent to the embedding provider.
const maxEmbedChars = 8192

// Service handles item ingest and management with vectorization at
// ingest time.
type Service struct {
	repo   Repository
	embed  Embedder
	logger *zap.Logger
}

// New creates an item service.
func New(repo Repository, embed Embedder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, embed: embed, logger: logger}
}

// CreateParams carries the caller-supplied fields of a new item.
type CreateParams struct {
	Class     domitem.Class
	Title     string
	SourceURL string
	Content   string
	Tags      []string
	BlobKey   string
}

// Create validates, vectorizes, and stores a new item. An embedding
// failure is non-fatal: the item is stored without a vector and stays
// reachable through lexical search and listing.
func (s *Service) Create(ctx context.Context, p CreateParams) (domitem.Item, error) {
	it, err := domitem.New(
		uuid.NewString(), p.Class,
		p.Title, p.SourceURL, p.Content,
		p.Tags, p.BlobKey,
		time.Now().UTC(),
	)
	if err != nil {
		return domitem.Item{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	if text := embeddingText(p.Title, p.Content); text != "" {
		res, err := s.embed.Embed(ctx, text)
		if err != nil {
			s.logger.Warn("item stored without vector",
				zap.String("item_id", it.ID()),
				zap.Error(err))
		} else {
			it = it.WithVector(res.Embedding)
		}
	}

	if err := s.repo.Save(ctx, &it); err != nil {
		return domitem.Item{}, fmt.Errorf("save item: %w", err)
	}
	return it, nil
}

// Get retrieves an item by id.
func (s *Service) Get(ctx context.Context, id string) (domitem.Item, error) {
	it, err := s.repo.Get(ctx, id)
	if err != nil {
		return domitem.Item{}, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// Delete removes an item.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// Count returns the number of stored items.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// List returns items newest first, optionally restricted to a filter
// set. Limit is clamped the same way search pagination is.
func (s *Service) List(ctx context.Context, skip, limit int, f filter.Set) ([]domitem.Scored, error) {
	if skip < 0 {
		return nil, fmt.Errorf("%w: skip must not be negative", domain.ErrInvalidRequest)
	}
	if limit <= 0 {
		limit = request.DefaultPageSize
	}
	if limit > request.MaxPageSize {
		limit = request.MaxPageSize
	}

	items, err := s.repo.List(ctx, skip, limit, f.Classes())
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// embeddingText joins title and content into the text to vectorize,
// capped at maxEmbedChars.
func embeddingText(title, content string) string {
	text := strings.TrimSpace(title)
	if c := strings.TrimSpace(content); c != "" {
		if text != "" {
			text += "\n"
		}
		text += c
	}
	if len(text) > maxEmbedChars {
		text = text[:maxEmbedChars]
	}
	return text
}
