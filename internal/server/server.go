// Package server wires the tool registry onto an MCP stdio server: tool
// definitions are registered at startup, and each tools/call is routed
// through the dispatcher which owns error classification.
package server

import (
	"context"
	"encoding/json"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/tomasbasham/chrome-mcp/internal/tools"
)

// Server hosts the MCP runtime over standard input and output. Exactly one
// peer; all state dies with the process.
type Server struct {
	registry *tools.Registry
	log      zerolog.Logger
	mcp      *mcpserver.MCPServer
}

// New constructs the server and registers the active tool set.
func New(registry *tools.Registry, log zerolog.Logger, name, version string) *Server {
	srv := mcpserver.NewMCPServer(
		name,
		version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	s := &Server{
		registry: registry,
		log:      log,
		mcp:      srv,
	}

	for _, h := range registry.Tools() {
		tool := mcp.NewToolWithRawSchema(h.Name, h.Description, json.RawMessage(h.Schema))
		srv.AddTool(tool, s.handle(h.Name))
	}
	return s
}

// handle adapts one tool name onto the dispatcher.
func (s *Server) handle(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]any{}
		}

		resp := s.registry.Dispatch(ctx, name, args)

		result := &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(resp.Text)},
			IsError: resp.IsError,
		}
		meta := map[string]any{"_toolName": resp.ToolName}
		if resp.IsError {
			meta["_errorType"] = resp.ErrorType
			meta["_recoverable"] = resp.Recoverable
		}
		result.Meta = mcp.NewMetaFromMap(meta)
		return result, nil
	}
}

// Serve runs the stdio loop until EOF or context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info().Msg("serving MCP over stdio")
	stdio := mcpserver.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}
