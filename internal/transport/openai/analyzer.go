package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/synapse-kb/synapse/internal/domain"
	"github.com/synapse-kb/synapse/internal/domain/search/analysis"
	"github.com/synapse-kb/synapse/internal/domain/search/filter"
	"github.com/synapse-kb/synapse/internal/domain/search/mode"
	"github.com/synapse-kb/synapse/internal/metrics"
)

// Analyzer turns a free-form query into a retrieval plan via an
// OpenAI-compatible chat completion API. Every failure maps to
// domain.ErrAnalysisUnavailable so callers can degrade instead of fail.
type Analyzer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// AnalyzerConfig holds the query analyzer settings.
type AnalyzerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewAnalyzer creates an OpenAI-compatible query analyzer.
func NewAnalyzer(cfg *AnalyzerConfig) *Analyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Analyzer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

const analyzerPromptFmt = `Analyze this search query and determine the best search strategy.

Query: %q

Determine:
1. Best search mode: "hybrid" (text + similarity), "semantic" (similarity only), or "text" (exact text matching)
2. Content type preference: "note", "url", "image", "pdf", "video", "product", or "any"
3. Enhanced search terms (synonyms, related concepts), most relevant first

Guidelines:
- Use "semantic" for visual concepts, abstract ideas, or when the user describes something
- Use "text" for specific terms, names, exact phrases, or recent references
- Use "hybrid" for general topics that could benefit from both approaches
- Prefer "image" for visual terms, "url" for articles/links, "pdf" for documents

Return ONLY valid JSON:
{"searchMode": "hybrid|semantic|text", "contentType": "note|url|image|pdf|video|product|any", "enhancedTerms": ["original", "synonym1", "related1"]}`

// analyzerResponse mirrors the JSON contract of the analyzer prompt.
type analyzerResponse struct {
	SearchMode    string   `json:"searchMode"`
	ContentType   string   `json:"contentType"`
	EnhancedTerms []string `json:"enhancedTerms"`
}

// Analyze requests a retrieval plan for the query.
func (a *Analyzer) Analyze(ctx context.Context, query string) (analysis.Result, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0,
		MaxTokens:   300,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(analyzerPromptFmt, query),
			},
		},
	})
	if err != nil {
		metrics.AnalyzerRequestsTotal.WithLabelValues("error").Inc()
		return analysis.Result{}, fmt.Errorf("%w: chat completion: %w", domain.ErrAnalysisUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		metrics.AnalyzerRequestsTotal.WithLabelValues("error").Inc()
		return analysis.Result{}, fmt.Errorf("%w: empty completion", domain.ErrAnalysisUnavailable)
	}

	parsed, err := parseAnalyzerResponse(resp.Choices[0].Message.Content)
	if err != nil {
		metrics.AnalyzerRequestsTotal.WithLabelValues("error").Inc()
		a.logger.Warn("Unparseable analyzer response",
			zap.String("content", resp.Choices[0].Message.Content), zap.Error(err))
		return analysis.Result{}, fmt.Errorf("%w: %w", domain.ErrAnalysisUnavailable, err)
	}

	metrics.AnalyzerRequestsTotal.WithLabelValues("ok").Inc()

	var types []filter.Token
	if tok, ok := filter.ParseToken(parsed.ContentType); ok && tok != filter.Any {
		types = []filter.Token{tok}
	}

	return analysis.New(mode.Mode(parsed.SearchMode), types, parsed.EnhancedTerms, query), nil
}

// parseAnalyzerResponse extracts the JSON plan, tolerating markdown code fences.
func parseAnalyzerResponse(content string) (analyzerResponse, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var parsed analyzerResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return analyzerResponse{}, fmt.Errorf("parse analyzer JSON: %w", err)
	}
	return parsed, nil
}
