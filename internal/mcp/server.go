// Package mcp exposes the task board to voice assistants and other MCP
// clients as a small set of tools. Requests arrive through the same bearer
// auth as the REST API, so every tool operates on the calling user's board.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/vocalboard/internal/task"
)

// Deps holds shared dependencies injected into MCP tool handlers.
type Deps struct {
	Tasks   *task.Service
	Version string
}

// NewServer creates and configures the MCP server with all tools registered.
func NewServer(deps *Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"Vocalboard",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	registerTools(s, deps)

	return s
}
