package utils

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"
	"github.com/theapemachine/mcp-server-time-weather/pkg/tools"
)

// GetStringParam safely extracts a string parameter from the request.
// Scalars such as numbers are coerced; objects and arrays are rejected.
func GetStringParam(req mcp.CallToolRequest, key string, required bool) (string, error) {
	val, exists := req.GetArguments()[key]
	if !exists || val == nil {
		if required {
			return "", fmt.Errorf("%w: missing required parameter '%s'", tools.ErrInvalidParams, key)
		}
		return "", nil
	}

	switch val.(type) {
	case map[string]any, []any:
		return "", fmt.Errorf("%w: parameter '%s' must be a string", tools.ErrInvalidParams, key)
	}

	str, err := cast.ToStringE(val)
	if err != nil {
		return "", fmt.Errorf("%w: parameter '%s' must be a string", tools.ErrInvalidParams, key)
	}

	return str, nil
}

// GetOptionalStringParam is a shorthand for GetStringParam with required=false
func GetOptionalStringParam(req mcp.CallToolRequest, key string) (string, error) {
	return GetStringParam(req, key, false)
}
