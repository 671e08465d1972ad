// Package synapse is the embeddable SDK for the knowledge store. It
// wires the Redis store, retrieval adapters, and search orchestration
// into a single Client, for programs that want the engine without the
// HTTP server.
package synapse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/synapse-kb/synapse/internal/db/redis"
	"github.com/synapse-kb/synapse/internal/domain"
	"github.com/synapse-kb/synapse/internal/domain/search/analysis"
	"github.com/synapse-kb/synapse/internal/domain/search/filter"
	"github.com/synapse-kb/synapse/internal/domain/search/mode"
	itemrepo "github.com/synapse-kb/synapse/internal/repository/item"
	itemuc "github.com/synapse-kb/synapse/internal/usecase/item"
	searchuc "github.com/synapse-kb/synapse/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultVectorDimensions = 512
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs    []string
	password string

	embedder Embedder
	analyzer Analyzer

	vectorDimensions  int
	hnswM             int
	hnswEFConstruct   int
	semanticThreshold float64

	logger *zap.Logger
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithEmbedder sets the text embedding provider. Without one, stored
// items carry no vector and only text search and listing work.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithAnalyzer sets the query analyzer used by smart search. Without
// one, smart searches fall back to a single hybrid retrieval.
func WithAnalyzer(a Analyzer) Option {
	return func(c *clientConfig) {
		c.analyzer = a
	}
}

// WithVectorDimensions sets the embedding dimension. Defaults to 512.
func WithVectorDimensions(dim int) Option {
	return func(c *clientConfig) {
		c.vectorDimensions = dim
	}
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=16, EFConstruct=200.
func WithHNSW(m, efConstruct int) Option {
	return func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	}
}

// WithSemanticThreshold sets the minimum similarity for semantic
// search results. Defaults to 0.2.
func WithSemanticThreshold(threshold float64) Option {
	return func(c *clientConfig) {
		c.semanticThreshold = threshold
	}
}

// WithLogger enables structured logging for SDK operations.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// Client is the synapse SDK entry point.
type Client struct {
	store     *dbRedis.Store
	itemSvc   *itemuc.Service
	searchSvc *searchuc.Service
}

// New creates a Client, connects to the database, and ensures the
// items index exists.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		vectorDimensions: defaultVectorDimensions,
		hnswM:            16,
		hnswEFConstruct:  200,
	}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("synapse: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("synapse: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("synapse: database not ready: %w", err)
	}

	if err := itemrepo.EnsureIndex(ctx, store, itemrepo.IndexOptions{
		VectorDim:   cfg.vectorDimensions,
		HNSWM:       cfg.hnswM,
		EFConstruct: cfg.hnswEFConstruct,
	}); err != nil {
		store.Close()
		return nil, fmt.Errorf("synapse: ensure index: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store *dbRedis.Store, cfg *clientConfig) *Client {
	var domEmb domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
	}

	var analyzer searchuc.Analyzer
	if cfg.analyzer != nil {
		analyzer = &analyzerAdapter{inner: cfg.analyzer}
	}

	repo := itemrepo.New(store)

	return &Client{
		store:     store,
		itemSvc:   itemuc.New(repo, domEmb, cfg.logger),
		searchSvc: searchuc.New(repo, domEmb, analyzer, cfg.semanticThreshold),
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Embedder is the public text vectorization contract.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries an embedding and its token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Analyzer is the public query analysis contract for smart search.
type Analyzer interface {
	Analyze(ctx context.Context, query string) (Analysis, error)
}

// Analysis is the analyzer's suggestion for a query.
type Analysis struct {
	Mode  string   // text, semantic, or hybrid
	Types []string // suggested content types, empty means any
	Terms []string // expanded search terms, empty means the original query
}

// embedderAdapter wraps the public Embedder to satisfy internal
// domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// analyzerAdapter wraps the public Analyzer. Unknown modes and type
// tokens are normalized away by the analysis constructor.
type analyzerAdapter struct {
	inner Analyzer
}

func (a *analyzerAdapter) Analyze(ctx context.Context, query string) (analysis.Result, error) {
	r, err := a.inner.Analyze(ctx, query)
	if err != nil {
		return analysis.Result{}, fmt.Errorf("analyze: %w", err)
	}

	tokens := make([]filter.Token, 0, len(r.Types))
	for _, t := range r.Types {
		if tok, ok := filter.ParseToken(t); ok {
			tokens = append(tokens, tok)
		}
	}
	return analysis.New(mode.Mode(r.Mode), tokens, r.Terms, query), nil
}

// noopEmbedder returns an error on Embed (used when no embedder is
// configured). Item creation treats the failure as non-fatal.
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"synapse: embedder not configured (use WithEmbedder for vector search)",
	)
}
