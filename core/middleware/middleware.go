// Package middleware wraps tool handlers with cross-cutting behaviour.
package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-server-time-weather/core"
)

// Middleware decorates a tool handler.
type Middleware func(core.HandlerFunc) core.HandlerFunc

// Chain applies middlewares so the first one listed is the outermost.
func Chain(handler core.HandlerFunc, middlewares ...Middleware) core.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// Recover turns a panic inside a tool into an ordinary error.
func Recover(logger *log.Logger) Middleware {
	return func(next core.HandlerFunc) core.HandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("tool panicked", "tool", request.Params.Name, "panic", r, "stack", string(debug.Stack()))
					result = nil
					err = fmt.Errorf("tool %s failed: %v", request.Params.Name, r)
				}
			}()

			return next(ctx, request)
		}
	}
}

// Logging records tool name, duration and outcome at debug level.
func Logging(logger *log.Logger) Middleware {
	return func(next core.HandlerFunc) core.HandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			result, err := next(ctx, request)

			if err != nil {
				logger.Warn("tool call failed", "tool", request.Params.Name, "took", time.Since(start), "err", err)
				return result, err
			}

			logger.Debug("tool call finished", "tool", request.Params.Name, "took", time.Since(start))
			return result, nil
		}
	}
}
