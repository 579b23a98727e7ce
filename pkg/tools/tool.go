// Package tools provides the shared building blocks for MCP tools.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
)

// Standard errors for consistent error handling
var (
	ErrInvalidParams    = errors.New("invalid parameters")
	ErrExternalAPIError = errors.New("external API error")
)

// BaseTool provides common functionality for all tools
type BaseTool struct {
	handle mcp.Tool
}

// NewBaseTool creates a BaseTool whose input schema is reflected from Args.
func NewBaseTool[Args any](name, description string) *BaseTool {
	return &BaseTool{
		handle: mcp.NewToolWithRawSchema(name, description, GenerateSchema[Args]()),
	}
}

// Handle returns the MCP Tool definition
func (b *BaseTool) Handle() mcp.Tool {
	return b.handle
}

/*
GenerateSchema reflects a JSON Schema for the argument struct T. Fields without
omitempty are required, unknown properties are rejected and descriptions come
from the jsonschema_description tag.
*/
func GenerateSchema[T any]() json.RawMessage {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Anonymous:                 true,
	}

	var v T
	schema := reflector.Reflect(v)
	schema.Version = ""

	out, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("tools: cannot marshal schema for %T: %v", v, err))
	}

	return out
}

// WrapError wraps a domain error with a context message
func WrapError(err error, msg string) error {
	return fmt.Errorf("%s: %w", msg, err)
}

/*
NewTextResult creates a standard text result. Tools use it for successful
answers and for diagnostics alike: a failing lookup is still a well-formed
answer to the caller.
*/
func NewTextResult(text string) *mcp.CallToolResult {
	return mcp.NewToolResultText(text)
}

// NewTextResultf is NewTextResult with formatting.
func NewTextResultf(format string, args ...any) *mcp.CallToolResult {
	return mcp.NewToolResultText(fmt.Sprintf(format, args...))
}
