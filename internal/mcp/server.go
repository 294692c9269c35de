// Package mcp exposes the task tools to external agents over a stdio MCP
// server. Stdio is a single-principal transport, so the subject identity
// is fixed at startup rather than read per request.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Fareedsea/todo-chatbot/internal/tools"
)

// Server wraps an MCP server bound to one subject.
type Server struct {
	mcpServer *server.MCPServer
}

// NewServer builds a stdio MCP server exposing every registered tool
// through the dispatcher on behalf of subjectID.
func NewServer(dispatcher *tools.Dispatcher, subjectID, version string) (*Server, error) {
	if subjectID == "" {
		return nil, fmt.Errorf("a subject identity is required")
	}

	s := server.NewMCPServer(
		"todochat",
		version,
		server.WithToolCapabilities(false),
	)

	for _, contract := range dispatcher.Registry().List() {
		s.AddTool(toolDefinition(contract), toolHandler(dispatcher, contract.Name, subjectID))
	}

	return &Server{mcpServer: s}, nil
}

// ServeStdio blocks serving MCP requests on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// toolDefinition renders a contract as an MCP tool. The reserved owner
// key is internal and never part of the definition.
func toolDefinition(contract *tools.Contract) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(contract.Description)}

	for name, spec := range contract.Input {
		var propOpts []mcp.PropertyOption
		if spec.Description != "" {
			propOpts = append(propOpts, mcp.Description(spec.Description))
		}
		if spec.Required {
			propOpts = append(propOpts, mcp.Required())
		}
		if len(spec.Enum) > 0 {
			propOpts = append(propOpts, mcp.Enum(spec.Enum...))
		}

		switch spec.Type {
		case tools.TypeBoolean:
			opts = append(opts, mcp.WithBoolean(name, propOpts...))
		case tools.TypeInteger, tools.TypeNumber:
			opts = append(opts, mcp.WithNumber(name, propOpts...))
		default:
			opts = append(opts, mcp.WithString(name, propOpts...))
		}
	}

	return mcp.NewTool(contract.Name, opts...)
}

// toolHandler bridges an MCP call into the dispatcher and renders the
// envelope back as an MCP result.
func toolHandler(dispatcher *tools.Dispatcher, name, subjectID string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := dispatcher.Invoke(ctx, name, req.GetArguments(), subjectID)
		if !res.Success {
			return mcp.NewToolResultError(res.Err.Message), nil
		}

		payload, err := json.Marshal(res.Data)
		if err != nil {
			return mcp.NewToolResultError("failed to encode result"), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}
