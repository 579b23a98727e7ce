// Package dispatch turns raw request bytes into exactly one response envelope:
// decode, route to a protocol method or a registered tool, encode.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-server-time-weather/core"
	"github.com/theapemachine/mcp-server-time-weather/core/middleware"
	"github.com/theapemachine/mcp-server-time-weather/pkg/jsonrpc"
)

const (
	DefaultProtocolVersion = "2024-11-05"
	DefaultServerName      = "time-weather-mcp"
	DefaultServerVersion   = "1.0.0"
)

/*
Engine routes decoded requests. It keeps no state between requests; the
registry it reads from is immutable, so one Engine serves every transport and
every concurrent connection.
*/
type Engine struct {
	registry        *core.Registry
	serverInfo      mcp.Implementation
	protocolVersion string
	logger          *log.Logger
	middlewares     []middleware.Middleware
}

// Option configures an Engine.
type Option func(*Engine)

// WithServerInfo sets the name and version reported by initialize.
func WithServerInfo(name, version string) Option {
	return func(engine *Engine) {
		engine.serverInfo = mcp.Implementation{Name: name, Version: version}
	}
}

// WithProtocolVersion overrides the protocol version reported by initialize.
func WithProtocolVersion(version string) Option {
	return func(engine *Engine) {
		engine.protocolVersion = version
	}
}

// WithLogger sets the logger the engine and its middleware write to.
func WithLogger(logger *log.Logger) Option {
	return func(engine *Engine) {
		engine.logger = logger
	}
}

// WithMiddleware appends tool middleware, innermost last.
func WithMiddleware(middlewares ...middleware.Middleware) Option {
	return func(engine *Engine) {
		engine.middlewares = append(engine.middlewares, middlewares...)
	}
}

// New creates an Engine serving the tools in registry. A nil registry serves
// no tools.
func New(registry *core.Registry, opts ...Option) *Engine {
	engine := &Engine{
		registry:        registry,
		serverInfo:      mcp.Implementation{Name: DefaultServerName, Version: DefaultServerVersion},
		protocolVersion: DefaultProtocolVersion,
		logger:          log.Default(),
	}

	for _, opt := range opts {
		opt(engine)
	}

	if engine.registry == nil {
		engine.registry = &core.Registry{}
	}

	engine.middlewares = append(
		[]middleware.Middleware{middleware.Recover(engine.logger), middleware.Logging(engine.logger)},
		engine.middlewares...,
	)

	return engine
}

/*
Handle runs one exchange and returns the encoded response frame without a
trailing newline. It returns nil when the message was a notification and
nothing must be sent back.
*/
func (engine *Engine) Handle(ctx context.Context, raw []byte) (frame []byte) {
	defer func() {
		if r := recover(); r != nil {
			engine.logger.Error("dispatch panicked", "panic", r)
			frame = engine.encode(jsonrpc.NewError(jsonrpc.NullID(), jsonrpc.SERVER_ERROR, fmt.Sprint(r)))
		}
	}()

	response := engine.Dispatch(ctx, raw)
	if response == nil {
		return nil
	}

	return engine.encode(response)
}

func (engine *Engine) encode(response *jsonrpc.Response) []byte {
	frame, err := jsonrpc.Encode(response)
	if err == nil {
		return frame
	}

	engine.logger.Error("could not encode response", "id", response.ID.String(), "err", err)

	frame, _ = jsonrpc.Encode(jsonrpc.NewError(response.ID, jsonrpc.SERVER_ERROR, err.Error()))
	return frame
}

// Dispatch decodes and routes one message. It returns nil only for notifications.
func (engine *Engine) Dispatch(ctx context.Context, raw []byte) *jsonrpc.Response {
	request, err := jsonrpc.DecodeRequest(raw)
	if err != nil {
		engine.logger.Warn("unparseable message", "err", err)
		return jsonrpc.NewError(jsonrpc.NullID(), mcp.PARSE_ERROR, "Parse error: "+err.Error())
	}

	if request.ID == nil && IsNotification(request.Method) {
		engine.logger.Debug("notification received", "method", request.Method)
		return nil
	}

	id := request.RequestID()
	logger := engine.logger.With("trace", uuid.NewString(), "method", request.Method, "id", id.String())
	start := time.Now()

	var response *jsonrpc.Response

	switch ParseMethod(request.Method) {
	case MethodInitialize:
		response = jsonrpc.NewResult(id, engine.initialize())
	case MethodPing:
		response = jsonrpc.NewResult(id, struct{}{})
	case MethodToolsList:
		response = jsonrpc.NewResult(id, engine.listTools())
	case MethodToolsCall:
		response = engine.callTool(ctx, logger, id, request.Params)
	default:
		response = jsonrpc.NewError(id, mcp.METHOD_NOT_FOUND, "Method not found: "+request.Method)
	}

	if response.IsError() {
		logger.Info("request failed", "code", response.Error.Code, "message", response.Error.Message, "took", time.Since(start))
	} else {
		logger.Debug("request handled", "took", time.Since(start))
	}

	return response
}

func (engine *Engine) initialize() mcp.InitializeResult {
	return mcp.InitializeResult{
		ProtocolVersion: engine.protocolVersion,
		Capabilities: mcp.ServerCapabilities{
			Tools: &struct {
				ListChanged bool `json:"listChanged,omitempty"`
			}{},
		},
		ServerInfo: engine.serverInfo,
	}
}

func (engine *Engine) listTools() listToolsResult {
	descriptors := engine.registry.List()
	tools := make([]toolDescriptor, 0, len(descriptors))

	for _, descriptor := range descriptors {
		tools = append(tools, newToolDescriptor(descriptor))
	}

	return listToolsResult{Tools: tools}
}

func (engine *Engine) callTool(ctx context.Context, logger *log.Logger, id jsonrpc.ID, raw jsonrpc.RawMessage) *jsonrpc.Response {
	params, paramsErr := decodeCallParams(raw)
	if errors.Is(paramsErr, errParamsNotObject) {
		return jsonrpc.NewError(id, jsonrpc.SERVER_ERROR, "Invalid params: "+paramsErr.Error())
	}

	tool, err := engine.registry.Resolve(params.Name)
	if err != nil {
		return jsonrpc.NewError(id, jsonrpc.SERVER_ERROR, "Unknown tool: "+params.Name)
	}

	if paramsErr != nil {
		return jsonrpc.NewError(id, jsonrpc.SERVER_ERROR, "Invalid params: "+paramsErr.Error())
	}

	request := mcp.CallToolRequest{
		Request: mcp.Request{Method: MethodToolsCall.String()},
		Params: mcp.CallToolParams{
			Name:      params.Name,
			Arguments: params.Arguments,
		},
	}

	handler := middleware.Chain(tool.Handler, engine.middlewares...)

	result, err := handler(ctx, request)
	if err != nil {
		logger.Error("tool invocation failed", "tool", params.Name, "err", err)
		return jsonrpc.NewError(id, jsonrpc.SERVER_ERROR, err.Error())
	}

	return jsonrpc.NewResult(id, newCallToolResult(result))
}
