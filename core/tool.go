package core

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

/*
Tool is a named capability the server exposes to a calling agent.

Handle returns the immutable descriptor (name, description, input schema).
Handler runs the capability. Implementations report every internal failure
(bad arguments, missing configuration, downstream errors) as text content in
the returned result and keep the error return for faults they cannot express
that way.
*/
type Tool interface {
	Handle() mcp.Tool
	Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// HandlerFunc is the call signature shared by tools and middleware.
type HandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
