// Package stdio serves the protocol as newline-delimited JSON over a pair of
// streams, normally the process stdin and stdout.
package stdio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/mcp-server-time-weather/pkg/transport"
)

/*
Server reads one request per line and writes one response per line. Requests
are handled strictly in arrival order: a request is not read off the queue
until the previous response has been written.
*/
type Server struct {
	dispatcher transport.Dispatcher
	logger     *log.Logger
}

func New(dispatcher transport.Dispatcher, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	return &Server{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Serve runs the session until in is exhausted or ctx is cancelled.
func (server *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go server.read(ctx, in, lines, readErr)

	writer := bufio.NewWriter(out)
	server.logger.Info("stdio session started")

	for {
		select {
		case <-ctx.Done():
			server.logger.Info("stdio session cancelled")
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return fmt.Errorf("read request: %w", err)
				default:
					server.logger.Info("stdio session ended")
					return nil
				}
			}

			if err := server.serveLine(ctx, writer, line); err != nil {
				return err
			}
		}
	}
}

func (server *Server) read(ctx context.Context, in io.Reader, lines chan<- []byte, readErr chan<- error) {
	defer close(lines)

	reader := bufio.NewReader(in)

	for {
		line, err := reader.ReadBytes('\n')

		if len(bytes.TrimSpace(line)) > 0 {
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr <- err
			}
			return
		}
	}
}

func (server *Server) serveLine(ctx context.Context, writer *bufio.Writer, line []byte) error {
	frame := transport.SafeHandle(ctx, server.dispatcher, bytes.TrimSpace(line))
	if frame == nil {
		return nil
	}

	if _, err := writer.Write(frame); err != nil {
		return fmt.Errorf("write response: %w", err)
	}

	if err := writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write response: %w", err)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("write response: %w", err)
	}

	return nil
}
