// Command server is the main entry point for the time-weather MCP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/mcp-server-time-weather/core"
	"github.com/theapemachine/mcp-server-time-weather/pkg/config"
	"github.com/theapemachine/mcp-server-time-weather/pkg/dispatch"
	"github.com/theapemachine/mcp-server-time-weather/pkg/logging"
	"github.com/theapemachine/mcp-server-time-weather/pkg/tools/clock"
	"github.com/theapemachine/mcp-server-time-weather/pkg/tools/weather"
	"github.com/theapemachine/mcp-server-time-weather/pkg/transport/httpstream"
	"github.com/theapemachine/mcp-server-time-weather/pkg/transport/stdio"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "time-weather-mcp: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// stdout carries the stdio protocol, so logs always go to stderr.
	logger, err := logging.New(os.Stderr, cfg.Log.Level)
	if err != nil {
		return err
	}
	log.SetDefault(logger)

	for _, warning := range cfg.Warnings() {
		logger.Warn("configuration warning", "detail", warning)
	}

	registry, err := NewRegistry(cfg, logger)
	if err != nil {
		return err
	}

	engine := dispatch.New(
		registry,
		dispatch.WithServerInfo(cfg.Server.Name, cfg.Server.Version),
		dispatch.WithLogger(logger),
	)

	switch cfg.Transport {
	case config.TransportHTTP:
		logger.Info("starting MCP streamable HTTP server", "port", cfg.HTTP.Port)
		return httpstream.New(engine, httpstream.WithLogger(logger)).ListenAndServe(ctx, cfg.Addr())
	default:
		logger.Info("starting MCP stdio server")
		return stdio.New(engine, logger).Serve(ctx, os.Stdin, os.Stdout)
	}
}

// NewRegistry wires the served tools in the order tools/list reports them.
func NewRegistry(cfg *config.Config, logger *log.Logger) (*core.Registry, error) {
	return core.NewRegistry(
		clock.New(),
		weather.New(
			weather.WithAPIKey(cfg.Weather.APIKey),
			weather.WithBaseURL(cfg.Weather.BaseURL),
			weather.WithTimeout(cfg.Weather.Timeout),
			weather.WithLogger(logger),
		),
	)
}
