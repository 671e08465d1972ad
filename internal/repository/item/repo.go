package item

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/synapse-kb/synapse/internal/db"
	"github.com/synapse-kb/synapse/internal/domain"
	domitem "github.com/synapse-kb/synapse/internal/domain/item"
)

// store is the consumer interface for item storage and retrieval (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements item storage plus the retrieval adapters behind every
// search mode: listing, lexical, vector, and the blended hybrid call.
type Repo struct {
	store store
}

// New creates an item repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Save stores an item as a hash under its key.
func (r *Repo) Save(ctx context.Context, it *domitem.Item) error {
	if err := r.store.HSet(ctx, itemKey(it.ID()), buildHashFields(it)); err != nil {
		return fmt.Errorf("hset %s: %w", itemKey(it.ID()), err)
	}
	return nil
}

// Get returns an item by ID.
func (r *Repo) Get(ctx context.Context, id string) (domitem.Item, error) {
	m, err := r.store.HGetAll(ctx, itemKey(id))
	if err != nil {
		return domitem.Item{}, fmt.Errorf("hgetall %s: %w", itemKey(id), err)
	}
	if len(m) == 0 {
		return domitem.Item{}, domain.ErrNotFound
	}
	return parseHashFields(id, m), nil
}

// Delete removes an item.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := itemKey(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Count returns the number of stored items.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, IndexName, "*")
	if err != nil {
		return 0, fmt.Errorf("search count: %w", err)
	}
	return n, nil
}

// List returns items newest first, without scores.
func (r *Repo) List(ctx context.Context, skip, limit int, classes []domitem.Class) ([]domitem.Scored, error) {
	sr, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName:    IndexName,
		Query:        classQuery(classes),
		Offset:       skip,
		Limit:        limit,
		SortBy:       fieldCreated,
		SortDesc:     true,
		ReturnFields: returnFields(),
	})
	if err != nil {
		return nil, fmt.Errorf("search list: %w", err)
	}

	out := make([]domitem.Scored, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		it := parseHashFields(idFromKey(entry.Key), entry.Fields)
		out = append(out, domitem.NewUnscored(it))
	}
	return out, nil
}

// SearchLexical performs BM25 keyword matching over title and content.
// Hits carry no similarity score.
func (r *Repo) SearchLexical(
	ctx context.Context, query string, skip, limit int, classes []domitem.Class,
) ([]domitem.Scored, error) {
	sr, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    IndexName,
		Query:        query,
		Classes:      classNames(classes),
		TextFields:   []string{fieldTitle, fieldContent},
		Offset:       skip,
		Limit:        limit,
		ReturnFields: returnFields(),
	})
	if err != nil {
		if isNoMatchSyntax(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("search bm25: %w", err)
	}

	out := make([]domitem.Scored, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		it := parseHashFields(idFromKey(entry.Key), entry.Fields)
		out = append(out, domitem.NewUnscored(it))
	}
	return out, nil
}

// SearchKNN performs vector similarity search. Hits below threshold are
// dropped; remaining hits carry cosine similarity in [0,1].
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, skip, limit int,
	threshold float64, classes []domitem.Class,
) ([]domitem.Scored, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName,
		Classes:      classNames(classes),
		Vector:       vector,
		K:            skip + limit,
		Offset:       skip,
		ReturnFields: returnFields(),
	})
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	out := make([]domitem.Scored, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		if entry.Score < threshold {
			continue
		}
		it := parseHashFields(idFromKey(entry.Key), entry.Fields)
		out = append(out, domitem.NewScored(it, entry.Score))
	}
	return out, nil
}

// SearchHybrid blends lexical and vector retrieval in a single call via
// Reciprocal Rank Fusion, then pages into the fused ranking.
func (r *Repo) SearchHybrid(
	ctx context.Context, query string, vector []float32, skip, limit int,
	classes []domitem.Class,
) ([]domitem.Scored, error) {
	depth := skip + limit

	knn, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName,
		Classes:      classNames(classes),
		Vector:       vector,
		K:            depth,
		ReturnFields: returnFields(),
	})
	if err != nil {
		return nil, fmt.Errorf("hybrid knn: %w", err)
	}

	bm25, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    IndexName,
		Query:        query,
		Classes:      classNames(classes),
		TextFields:   []string{fieldTitle, fieldContent},
		Limit:        depth,
		ReturnFields: returnFields(),
	})
	if err != nil {
		if isNoMatchSyntax(err) {
			bm25 = &db.SearchResult{}
		} else {
			return nil, fmt.Errorf("hybrid bm25: %w", err)
		}
	}

	fused := fuseRRF(toScored(knn, true), toScored(bm25, false))
	if skip >= len(fused) {
		return nil, nil
	}
	end := min(skip+limit, len(fused))
	return fused[skip:end], nil
}

func toScored(sr *db.SearchResult, withScore bool) []domitem.Scored {
	if sr == nil {
		return nil
	}
	out := make([]domitem.Scored, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		it := parseHashFields(idFromKey(entry.Key), entry.Fields)
		if withScore {
			out = append(out, domitem.NewScored(it, entry.Score))
		} else {
			out = append(out, domitem.NewUnscored(it))
		}
	}
	return out
}

func returnFields() []string {
	return []string{
		fieldClass, fieldTitle, fieldURL, fieldContent,
		fieldTags, fieldBlob, fieldCreated, "__vector_score",
	}
}

func classNames(classes []domitem.Class) []string {
	if len(classes) == 0 {
		return nil
	}
	out := make([]string, len(classes))
	for i, c := range classes {
		out[i] = string(c)
	}
	return out
}

// classQuery builds the raw FT query for filter-only listing.
func classQuery(classes []domitem.Class) string {
	if len(classes) == 0 {
		return "*"
	}
	return "@" + fieldClass + ":{" + strings.Join(classNames(classes), "|") + "}"
}

// isNoMatchSyntax detects FT.SEARCH syntax errors caused by queries that
// reduce to nothing after escaping (e.g. pure punctuation). Treated as
// no results rather than a failure.
func isNoMatchSyntax(err error) bool {
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		return false
	}
	msg := strings.ToLower(dbErr.Err.Error())
	return strings.Contains(msg, "syntax error")
}
