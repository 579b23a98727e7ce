// Package transport holds what the stdio and HTTP front ends share.
package transport

import (
	"context"
	"fmt"

	"github.com/theapemachine/mcp-server-time-weather/pkg/jsonrpc"
)

// Dispatcher turns one raw request into one encoded response frame, or nil
// when nothing must be sent back.
type Dispatcher interface {
	Handle(ctx context.Context, raw []byte) []byte
}

// ErrorFrame encodes a server error envelope with a null id.
func ErrorFrame(message string) []byte {
	frame, _ := jsonrpc.Encode(jsonrpc.NewError(jsonrpc.NullID(), jsonrpc.SERVER_ERROR, message))
	return frame
}

// SafeHandle calls dispatcher and converts a panic into an error frame so the
// transport loop keeps running.
func SafeHandle(ctx context.Context, dispatcher Dispatcher, raw []byte) (frame []byte) {
	defer func() {
		if r := recover(); r != nil {
			frame = ErrorFrame(fmt.Sprint(r))
		}
	}()

	return dispatcher.Handle(ctx, raw)
}
