package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchTool returns the tool definition for search_synapse.
func searchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_synapse",
		Description: "Search the personal knowledge store with natural language or keyword queries",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query. An empty query lists recent items.",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"description": "Search strategy: text (lexical), semantic (vector), hybrid (both), or smart (query analysis + multi-term merge)",
					"enum":        []string{"text", "semantic", "hybrid", "smart"},
					"default":     "smart",
				},
				"types": map[string]interface{}{
					"type":        "array",
					"description": "Restrict results to item classes",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"note", "url", "image", "pdf", "video", "product"},
					},
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "1-based page number",
					"default":     1,
					"minimum":     1,
				},
				"page_size": map[string]interface{}{
					"type":        "integer",
					"description": "Results per page (1-50)",
					"default":     10,
					"minimum":     1,
					"maximum":     50,
				},
			},
			Required: []string{"query"},
		},
	}
}

// addMemoryTool returns the tool definition for add_memory.
func addMemoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_memory",
		Description: "Store a new item in the knowledge store",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"class": map[string]interface{}{
					"type":        "string",
					"description": "Item class",
					"enum":        []string{"note", "url", "image", "pdf", "video", "product"},
					"default":     "note",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Short human-readable title",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Item body text. Used for lexical search and embedding.",
				},
				"source_url": map[string]interface{}{
					"type":        "string",
					"description": "Origin URL for captured web content",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"description": "Freeform tags",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"class"},
		},
	}
}

// getItemTool returns the tool definition for get_item.
func getItemTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_item",
		Description: "Fetch a stored item by its identifier",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Item identifier",
				},
			},
			Required: []string{"id"},
		},
	}
}
