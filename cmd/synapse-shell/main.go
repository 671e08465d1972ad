// Command synapse-shell is an interactive terminal client for browsing
// the knowledge store. It keeps one search view and one partitioned
// media/rest view, both backed by the same search service.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/synapse-kb/synapse/internal/config"
	dbRedis "github.com/synapse-kb/synapse/internal/db/redis"
	domitem "github.com/synapse-kb/synapse/internal/domain/item"
	"github.com/synapse-kb/synapse/internal/domain/search/filter"
	"github.com/synapse-kb/synapse/internal/domain/search/mode"
	logpkg "github.com/synapse-kb/synapse/internal/logger"
	"github.com/synapse-kb/synapse/internal/metrics"
	"github.com/synapse-kb/synapse/internal/repository/embcache"
	itemrepo "github.com/synapse-kb/synapse/internal/repository/item"
	openaiTransport "github.com/synapse-kb/synapse/internal/transport/openai"
	searchuc "github.com/synapse-kb/synapse/internal/usecase/search"
	"github.com/synapse-kb/synapse/internal/usecase/session"
)

const shellPageSize = 10

func main() {
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger, err := logpkg.NewLogger(env, "warn")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to connect:", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		fmt.Fprintln(os.Stderr, "database not ready:", err)
		os.Exit(1)
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
	searchSvc := searchuc.New(repo, embedder, analyzer, cfg.Search.SemanticThreshold)

	sh := &shell{
		view:  session.NewController(searchSvc, shellPageSize),
		split: session.NewPartitionedView(searchSvc, shellPageSize),
	}
	sh.run(ctx)
}

// shell holds the interactive state: the active single view and the
// optional media/rest split view.
type shell struct {
	view      *session.Controller
	split     *session.PartitionedView
	splitMode bool
}

func (s *shell) run(ctx context.Context) {
	fmt.Println("synapse shell. Type 'help' for commands, 'quit' to exit.")
	if err := s.view.Refresh(ctx); err == nil {
		s.render()
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "quit", "exit", "q":
			return
		case "help", "h":
			s.printHelp()
		case "query", "/":
			s.setQuery(ctx, arg)
		case "mode", "m":
			s.setMode(ctx, arg)
		case "filter", "f":
			s.toggleFilter(ctx, arg)
		case "more":
			s.report(s.view.LoadMore(ctx))
			s.render()
		case "next", "n":
			s.advance(ctx, true)
		case "prev", "p":
			s.advance(ctx, false)
		case "split":
			s.splitMode = !s.splitMode
			if s.splitMode {
				s.report(s.split.Refresh(ctx))
			}
			s.render()
		case "refresh", "r":
			s.refresh(ctx)
		default:
			fmt.Printf("unknown command %q, type 'help'\n", cmd)
		}
	}
}

func (s *shell) printHelp() {
	fmt.Println(`commands:
  query <text> (/)   set the search query
  mode <m> (m)       set mode: text, semantic, hybrid, smart
  filter <f> (f)     toggle filter: any, note, url, image, pdf, video, product
  more               load more results into the current page
  next (n)           next page
  prev (p)           previous page
  split              toggle media/rest split view
  refresh (r)        re-run the current search
  help (h)           show this help
  quit (q, exit)     exit`)
}

func (s *shell) setQuery(ctx context.Context, query string) {
	s.view.SetQuery(query)
	s.split.SetQuery(query)
	s.refresh(ctx)
}

func (s *shell) setMode(ctx context.Context, arg string) {
	switch m := mode.Mode(arg); m {
	case mode.Text, mode.Semantic, mode.Hybrid, mode.Smart:
		s.view.SetMode(m)
		s.split.SetMode(m)
		s.refresh(ctx)
	default:
		fmt.Println("modes: text, semantic, hybrid, smart")
	}
}

func (s *shell) toggleFilter(ctx context.Context, arg string) {
	tok, ok := filter.ParseToken(arg)
	if !ok {
		fmt.Println("filters: any, note, url, image, pdf, video, product")
		return
	}
	s.view.ToggleFilter(tok)
	s.report(s.view.Refresh(ctx))
	s.render()
}

func (s *shell) advance(ctx context.Context, forward bool) {
	if forward {
		s.report(s.view.NextPage(ctx))
	} else {
		s.report(s.view.PrevPage(ctx))
	}
	s.render()
}

func (s *shell) refresh(ctx context.Context) {
	if s.splitMode {
		s.report(s.split.Refresh(ctx))
	} else {
		s.report(s.view.Refresh(ctx))
	}
	s.render()
}

func (s *shell) report(err error) {
	if err != nil {
		fmt.Println("error:", err)
	}
}

func (s *shell) render() {
	if s.splitMode {
		fmt.Println("-- media --")
		renderController(s.split.Media())
		fmt.Println("-- everything else --")
		renderController(s.split.Rest())
		return
	}
	renderController(s.view)
}

func renderController(c *session.Controller) {
	fmt.Printf("[%s] query=%q mode=%s filters=%s page=%d\n",
		c.State(), c.Query(), c.Mode(), c.Filters(), c.PageNumber())
	if err := c.Err(); err != nil {
		fmt.Println("  error:", err)
		return
	}
	items := c.Items()
	if len(items) == 0 {
		fmt.Println("  (no results)")
		return
	}
	for i := range items {
		it := items[i].Item()
		line := fmt.Sprintf("  %2d. [%s] %s", i+1, it.Class(), titleOrSnippet(&it))
		if items[i].HasScore() {
			line += fmt.Sprintf(" (%.2f)", items[i].Score())
		}
		fmt.Println(line)
	}
	if c.HasMore() {
		fmt.Println("  ... more available ('more' or 'next')")
	}
}

func titleOrSnippet(it *domitem.Item) string {
	if it.Title() != "" {
		return it.Title()
	}
	content := it.Content()
	if len(content) > 60 {
		return content[:60] + "..."
	}
	if content == "" {
		return it.ID()
	}
	return content
}
