package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/synapse-kb/synapse/internal/domain"
	domitem "github.com/synapse-kb/synapse/internal/domain/item"
	"github.com/synapse-kb/synapse/internal/domain/search/filter"
	"github.com/synapse-kb/synapse/internal/domain/search/mode"
	"github.com/synapse-kb/synapse/internal/domain/search/request"
	itemuc "github.com/synapse-kb/synapse/internal/usecase/item"
)

// MCP error codes.
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeNotFound      = -32001 // Item does not exist
	ErrorCodeSearchFailed  = -32002 // Retrieval backend failure
)

// handleSearch handles the search_synapse tool invocation.
func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "query parameter is required", map[string]interface{}{
			"param": "query",
		})
	}

	modeStr := getStringDefault(args, "mode", string(mode.Smart))
	page := getIntDefault(args, "page", 1)
	pageSize := getIntDefault(args, "page_size", request.DefaultPageSize)

	filters, err := filtersFromArgs(args)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), map[string]interface{}{
			"param": "types",
		})
	}

	searchReq, err := request.New(query, mode.Mode(modeStr), filters, page, pageSize, false)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), nil)
	}

	result, err := s.search.Search(ctx, &searchReq)
	if err != nil {
		s.logger.Warn("mcp search failed", zap.String("query", query), zap.Error(err))
		return nil, newMCPError(ErrorCodeSearchFailed, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	hits := result.Items()
	items := make([]map[string]interface{}, 0, len(hits))
	for _, hit := range hits {
		it := hit.Item()
		entry := itemToMap(&it)
		if hit.HasScore() {
			entry["score"] = hit.Score()
		}
		items = append(items, entry)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"items":    items,
		"page":     result.Number(),
		"has_more": result.HasMore(),
	})), nil
}

// handleAddMemory handles the add_memory tool invocation.
func (s *Server) handleAddMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	class := getStringDefault(args, "class", string(domitem.ClassNote))

	it, err := s.items.Create(ctx, itemCreateParams(class, args))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), nil)
		}
		s.logger.Warn("mcp add_memory failed", zap.Error(err))
		return nil, newMCPError(ErrorCodeInternalError, "failed to store item", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"stored": true,
		"item":   itemToMap(&it),
	})), nil
}

// handleGetItem handles the get_item tool invocation.
func (s *Server) handleGetItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, ok := args["id"].(string)
	if !ok || id == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "id parameter is required", map[string]interface{}{
			"param":  "id",
			"reason": "missing or empty",
		})
	}

	it, err := s.items.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, newMCPError(ErrorCodeNotFound, "item not found", map[string]interface{}{
				"id": id,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "failed to fetch item", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(itemToMap(&it))), nil
}

// Helper functions

func itemCreateParams(class string, args map[string]interface{}) itemuc.CreateParams {
	return itemuc.CreateParams{
		Class:     domitem.Class(class),
		Title:     getStringDefault(args, "title", ""),
		SourceURL: getStringDefault(args, "source_url", ""),
		Content:   getStringDefault(args, "content", ""),
		Tags:      getStringSlice(args, "tags"),
	}
}

func filtersFromArgs(args map[string]interface{}) (filter.Set, error) {
	raw, ok := args["types"].([]interface{})
	if !ok || len(raw) == 0 {
		return filter.NewSet(), nil
	}

	tokens := make([]filter.Token, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return filter.Set{}, fmt.Errorf("types entries must be strings")
		}
		tok, ok := filter.ParseToken(s)
		if !ok {
			return filter.Set{}, fmt.Errorf("unknown content type %q", s)
		}
		tokens = append(tokens, tok)
	}
	return filter.NewSet(tokens...), nil
}

func itemToMap(it *domitem.Item) map[string]interface{} {
	entry := map[string]interface{}{
		"id":         it.ID(),
		"class":      string(it.Class()),
		"title":      it.Title(),
		"created_at": it.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}
	if it.SourceURL() != "" {
		entry["source_url"] = it.SourceURL()
	}
	if it.Content() != "" {
		entry["content"] = it.Content()
	}
	if len(it.Tags()) > 0 {
		entry["tags"] = it.Tags()
	}
	if it.BlobKey() != "" {
		entry["blob_key"] = it.BlobKey()
	}
	return entry
}

// newMCPError creates a properly formatted MCP error.
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error.
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON.
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value.
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value.
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter.
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
