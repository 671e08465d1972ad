package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/synapse-kb/synapse/internal/config"
	dbRedis "github.com/synapse-kb/synapse/internal/db/redis"
	logpkg "github.com/synapse-kb/synapse/internal/logger"
	"github.com/synapse-kb/synapse/internal/metrics"
	"github.com/synapse-kb/synapse/internal/repository/embcache"
	itemrepo "github.com/synapse-kb/synapse/internal/repository/item"
	mcpTransport "github.com/synapse-kb/synapse/internal/transport/mcp"
	openaiTransport "github.com/synapse-kb/synapse/internal/transport/openai"
	itemuc "github.com/synapse-kb/synapse/internal/usecase/item"
	searchuc "github.com/synapse-kb/synapse/internal/usecase/search"
	"github.com/synapse-kb/synapse/internal/version"
)

func main() {
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// zap writes to stderr, stdout is reserved for the MCP protocol
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting synapse MCP server",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	embedder := embcache.New(baseEmbedder, store, metrics.EmbeddingCacheTotal, logger)

	var analyzer searchuc.Analyzer
	if cfg.Analyzer.APIKey != "" {
		analyzer = openaiTransport.NewAnalyzer(&openaiTransport.AnalyzerConfig{
			APIKey:  cfg.Analyzer.APIKey,
			BaseURL: cfg.Analyzer.BaseURL,
			Model:   cfg.Analyzer.Model,
			Logger:  logger,
		})
	}

	repo := itemrepo.New(store)
	if err := itemrepo.EnsureIndex(ctx, store, itemrepo.IndexOptions{
		VectorDim:   cfg.Embedding.Dimensions,
		HNSWM:       cfg.Search.HNSWM,
		EFConstruct: cfg.Search.HNSWEFConstruct,
	}); err != nil {
		logger.Fatal("Failed to ensure items index", zap.Error(err))
	}

	itemSvc := itemuc.New(repo, embedder, logger)
	searchSvc := searchuc.New(repo, embedder, analyzer, cfg.Search.SemanticThreshold)

	server := mcpTransport.NewServer(itemSvc, searchSvc, logger)

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Serve(serveCtx)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errChan:
		if err != nil {
			logger.Fatal("MCP server error", zap.Error(err))
		}
	}

	logger.Info("MCP server stopped")
}
