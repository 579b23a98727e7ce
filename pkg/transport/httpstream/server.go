// Package httpstream serves the protocol over HTTP: one request envelope per
// POST, answered with a newline-delimited JSON stream.
package httpstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/cors"
	"github.com/theapemachine/mcp-server-time-weather/pkg/jsonrpc"
	"github.com/theapemachine/mcp-server-time-weather/pkg/logging"
	"github.com/theapemachine/mcp-server-time-weather/pkg/transport"
)

const (
	ContentTypeNDJSON   = "application/x-ndjson"
	DefaultMaxBodyBytes = 4 << 20
	shutdownTimeout     = 5 * time.Second
)

type Server struct {
	dispatcher   transport.Dispatcher
	logger       *log.Logger
	maxBodyBytes int64
}

type Option func(*Server)

func WithLogger(logger *log.Logger) Option {
	return func(server *Server) {
		server.logger = logger
	}
}

// WithMaxBodyBytes caps the size of a request body.
func WithMaxBodyBytes(limit int64) Option {
	return func(server *Server) {
		if limit > 0 {
			server.maxBodyBytes = limit
		}
	}
}

func New(dispatcher transport.Dispatcher, opts ...Option) *Server {
	server := &Server{
		dispatcher:   dispatcher,
		logger:       log.Default(),
		maxBodyBytes: DefaultMaxBodyBytes,
	}

	for _, opt := range opts {
		opt(server)
	}

	return server
}

// Handler returns the routed handler with the CORS policy applied.
func (server *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", server.handleStream)
	mux.HandleFunc("/mcp", server.handleStream)
	mux.HandleFunc("GET /health", server.handleHealth)

	policy := cors.New(cors.Options{
		AllowOriginFunc: func(string) bool { return true },
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodHead,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return policy.Handler(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (server *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logging.Standard(server.logger),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			server.logger.Error("http shutdown", "err", err)
		}
	}()

	server.logger.Info("streamable HTTP server listening", "addr", addr, "endpoint", "/", "health", "/health")

	err := httpServer.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	return nil
}

func (server *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFrame(w, http.StatusMethodNotAllowed, transport.ErrorFrame("Method not allowed"))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, server.maxBodyBytes))
	if err != nil {
		server.logger.Warn("could not read request body", "remote", r.RemoteAddr, "err", err)
		writeFrame(w, http.StatusInternalServerError, transport.ErrorFrame(err.Error()))
		return
	}

	frame := transport.SafeHandle(r.Context(), server.dispatcher, body)
	if frame == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	header := w.Header()
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	writeFrame(w, http.StatusOK, frame)

	if err := http.NewResponseController(w).Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		server.logger.Debug("flush failed", "err", err)
	}
}

func (server *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = jsonrpc.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

func writeFrame(w http.ResponseWriter, status int, frame []byte) {
	w.Header().Set("Content-Type", ContentTypeNDJSON)
	w.WriteHeader(status)
	_, _ = w.Write(append(frame, '\n'))
}
