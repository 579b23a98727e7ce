package dispatch

import (
	"bytes"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-server-time-weather/pkg/jsonrpc"
)

type toolDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"inputSchema"`
}

func newToolDescriptor(tool mcp.Tool) toolDescriptor {
	descriptor := toolDescriptor{
		Name:        tool.Name,
		Description: tool.Description,
		InputSchema: tool.InputSchema,
	}

	if tool.RawInputSchema != nil {
		descriptor.InputSchema = tool.RawInputSchema
	}

	return descriptor
}

type listToolsResult struct {
	Tools []toolDescriptor `json:"tools"`
}

type callToolResult struct {
	Content []mcp.Content `json:"content"`
}

func newCallToolResult(result *mcp.CallToolResult) callToolResult {
	if result == nil || result.Content == nil {
		return callToolResult{Content: []mcp.Content{}}
	}
	return callToolResult{Content: result.Content}
}

type callParams struct {
	Name      string
	Arguments map[string]any
}

// wireCallParams reads members raw so a mistyped name still names the tool.
type wireCallParams struct {
	Name      jsonrpc.RawMessage `json:"name"`
	Arguments jsonrpc.RawMessage `json:"arguments"`
}

var (
	errParamsNotObject    = errors.New("params must be an object")
	errArgumentsNotObject = errors.New("arguments must be an object")
)

/*
decodeCallParams reads tools/call params. Absent arguments become an empty
map. A name that is not a string is kept as its JSON text. The name is filled
in even when the arguments are rejected.
*/
func decodeCallParams(raw jsonrpc.RawMessage) (callParams, error) {
	params := callParams{Arguments: map[string]any{}}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return params, nil
	}

	if raw[0] != '{' {
		return params, errParamsNotObject
	}

	var wire wireCallParams
	if err := jsonrpc.Unmarshal(raw, &wire); err != nil {
		return params, errParamsNotObject
	}

	params.Name = jsonrpc.Text(wire.Name)

	arguments := bytes.TrimSpace(wire.Arguments)
	if len(arguments) == 0 || string(arguments) == "null" {
		return params, nil
	}

	if arguments[0] != '{' {
		return params, errArgumentsNotObject
	}

	if err := jsonrpc.Unmarshal(arguments, &params.Arguments); err != nil {
		return params, errArgumentsNotObject
	}

	return params, nil
}
