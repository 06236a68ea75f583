// Package feed implements the telemetry producer side: a Unix domain socket
// server that owns the socket path and streams comma-separated telemetry
// lines to a connected visualizer.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
)

// ErrNoClient is returned by Send when no visualizer is connected yet.
var ErrNoClient = errors.New("no client connected")

// WithLogger sets the logger for the server.
func WithLogger(logger *slog.Logger) func(*Server) {
	return func(s *Server) {
		s.logger = logger
	}
}

// Server owns the telemetry socket path. It accepts one visualizer at a time
// and re-accepts after the client drops. The path is unlinked when the
// listener closes.
type Server struct {
	path     string
	listener net.Listener
	logger   *slog.Logger

	mu     sync.Mutex
	client net.Conn
}

// Listen removes a stale socket file left from a previous run and starts
// listening on path.
func Listen(path string, options ...func(*Server)) (*Server, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	s := Server{
		path:   path,
		logger: logger,
	}

	for _, option := range options {
		option(&s)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("removing stale socket '%s': %w", path, err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listening on '%s': %w", path, err)
	}
	s.listener = listener

	s.logger.Info("listening for visualizer connections", slog.String("path", path))

	return &s, nil
}

// Serve accepts visualizer connections until the context is cancelled or the
// listener is closed. Each newly accepted client replaces the previous one.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}

		s.logger.Info("visualizer connected")

		s.mu.Lock()
		if s.client != nil {
			s.client.Close()
		}
		s.client = conn
		s.mu.Unlock()
	}
}

// Send writes one telemetry line with the given integer parameters to the
// connected client. A write failure drops the client; the next Serve accept
// replaces it.
func (s *Server) Send(params ...int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return ErrNoClient
	}

	fields := make([]string, len(params))
	for i, p := range params {
		fields[i] = strconv.Itoa(p)
	}

	if _, err := s.client.Write([]byte(strings.Join(fields, ","))); err != nil {
		s.client.Close()
		s.client = nil
		return fmt.Errorf("sending telemetry: %w", err)
	}

	return nil
}

// Close shuts the listener and any connected client down. Closing the
// listener unlinks the socket path.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
	s.mu.Unlock()

	return s.listener.Close()
}
