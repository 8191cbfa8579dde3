// Package mcpserver registers the tool catalog with a mark3labs/mcp-go
// server so MCP clients can list and call the same tools the REST API and
// the agent runner see.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpGoServer "github.com/mark3labs/mcp-go/server"

	"github.com/agentstudio/toolbridge/internal/domain"
	"github.com/agentstudio/toolbridge/pkg/llmschema"
)

// ToolAdder abstracts the mcp-go server so registration can be tested
// without standing up a real transport.
type ToolAdder interface {
	AddTool(tool mcp.Tool, handler mcpGoServer.ToolHandlerFunc)
}

// Executor is the slice of the execution bridge this adapter needs.
type Executor interface {
	Execute(ctx context.Context, toolID string, params map[string]any, runtimeConfig map[string]any) domain.Result
}

// RegisterTools adds every enabled descriptor to the MCP server with a
// handler that delegates to the execution bridge. Failure results become MCP
// error results rather than transport errors, so the client's reasoning loop
// keeps running.
func RegisterTools(srv ToolAdder, descs []domain.Descriptor, executor Executor, logger *slog.Logger) {
	log := logger.With("component", "mcp_server")
	for _, desc := range descs {
		if !desc.Enabled {
			continue
		}
		toolID := desc.ID
		srv.AddTool(llmschema.MCPTool(desc), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result := executor.Execute(ctx, toolID, req.GetArguments(), nil)
			if !result.Success {
				return mcp.NewToolResultError(result.Error), nil
			}
			payload, err := json.Marshal(result.Output)
			if err != nil {
				log.Error("Failed to marshal tool output", slog.String("tool_id", toolID), slog.Any("error", err))
				return mcp.NewToolResultError("failed to encode tool output: " + err.Error()), nil
			}
			return mcp.NewToolResultText(string(payload)), nil
		})
		log.Debug("Registered MCP tool", slog.String("tool_id", toolID))
	}
	log.Info("MCP tool registration complete", slog.Int("count", len(descs)))
}
