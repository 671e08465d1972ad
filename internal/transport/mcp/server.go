// Package mcp exposes the knowledge store to MCP clients over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	itemuc "github.com/synapse-kb/synapse/internal/usecase/item"
	searchuc "github.com/synapse-kb/synapse/internal/usecase/search"
)

const (
	// ServerName is the MCP server name advertised during initialization.
	ServerName = "synapse"
	// ServerVersion is the advertised server version.
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with the application services it fronts.
type Server struct {
	mcp    *server.MCPServer
	items  *itemuc.Service
	search *searchuc.Service
	logger *zap.Logger
}

// NewServer creates an MCP server exposing search and capture tools.
func NewServer(items *itemuc.Service, search *searchuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		mcp:    server.NewMCPServer(ServerName, ServerVersion),
		items:  items,
		search: search,
		logger: logger,
	}
	s.registerTools()
	return s
}

// Serve runs the server on stdio and blocks until the client disconnects.
func (s *Server) Serve(_ context.Context) error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchTool(), s.handleSearch)
	s.mcp.AddTool(addMemoryTool(), s.handleAddMemory)
	s.mcp.AddTool(getItemTool(), s.handleGetItem)
}
