// Package llmschema converts tool descriptors into the wire shapes expected
// by LLM-facing APIs: OpenAI function calling and the Model Context Protocol.
// Conversions are pure transformations over descriptor snapshots; disabled
// tools are skipped.
package llmschema

import (
	"github.com/mark3labs/mcp-go/mcp"
	openai "github.com/sashabaranov/go-openai"

	"github.com/agentstudio/toolbridge/internal/domain"
)

// OpenAITool renders one descriptor as an OpenAI function tool definition.
func OpenAITool(d domain.Descriptor) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        d.ID,
			Description: d.Description,
			Parameters:  d.InputSchema(),
		},
	}
}

// OpenAITools renders every enabled descriptor, preserving order.
func OpenAITools(descs []domain.Descriptor) []openai.Tool {
	out := make([]openai.Tool, 0, len(descs))
	for _, d := range descs {
		if !d.Enabled {
			continue
		}
		out = append(out, OpenAITool(d))
	}
	return out
}

// MCPTool renders one descriptor as an MCP tool definition.
func MCPTool(d domain.Descriptor) mcp.Tool {
	schema := d.InputSchema()
	properties, _ := schema["properties"].(map[string]any)
	required, _ := schema["required"].([]string)
	return mcp.Tool{
		Name:        d.ID,
		Description: d.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: properties,
			Required:   required,
		},
	}
}

// MCPTools renders every enabled descriptor, preserving order.
func MCPTools(descs []domain.Descriptor) []mcp.Tool {
	out := make([]mcp.Tool, 0, len(descs))
	for _, d := range descs {
		if !d.Enabled {
			continue
		}
		out = append(out, MCPTool(d))
	}
	return out
}
