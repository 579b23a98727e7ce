package core

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

var (
	ErrToolNotFound  = errors.New("tool not found")
	ErrDuplicateTool = errors.New("duplicate tool name")
	ErrInvalidTool   = errors.New("invalid tool")
)

/*
Registry is the fixed set of tools served by one process. It is built once at
startup and is read-only afterwards. The zero Registry serves no tools.
*/
type Registry struct {
	order []Tool
	index map[string]Tool
}

// NewRegistry builds a registry from tools, keeping their order.
func NewRegistry(tools ...Tool) (*Registry, error) {
	registry := &Registry{
		order: make([]Tool, 0, len(tools)),
		index: make(map[string]Tool, len(tools)),
	}

	for i, tool := range tools {
		if tool == nil {
			return nil, fmt.Errorf("%w: tool at position %d is nil", ErrInvalidTool, i)
		}

		name := tool.Handle().Name
		if name == "" {
			return nil, fmt.Errorf("%w: tool at position %d has no name", ErrInvalidTool, i)
		}

		if _, exists := registry.index[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, name)
		}

		registry.order = append(registry.order, tool)
		registry.index[name] = tool
	}

	return registry, nil
}

// List returns the tool descriptors in registration order.
func (registry *Registry) List() []mcp.Tool {
	out := make([]mcp.Tool, 0, len(registry.order))
	for _, tool := range registry.order {
		out = append(out, tool.Handle())
	}
	return out
}

// Resolve looks up a tool by name.
func (registry *Registry) Resolve(name string) (Tool, error) {
	tool, ok := registry.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	return tool, nil
}

// Len returns the number of registered tools.
func (registry *Registry) Len() int {
	return len(registry.order)
}
