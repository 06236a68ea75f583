package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"syscall"
	"time"
)

const (
	// DefaultMaxAttempts is the number of transient connect failures tolerated
	// before giving up on the producer.
	DefaultMaxAttempts = 3

	// DefaultRetryInterval is the pause between connect attempts.
	DefaultRetryInterval = time.Second
)

// ErrExhausted is returned when every connect attempt failed with a transient
// error. The caller may proceed in degraded mode on default telemetry.
var ErrExhausted = errors.New("connection attempts exhausted")

// WithMaxAttempts sets how many transient connect failures are tolerated.
func WithMaxAttempts(n int) func(*Dialer) {
	return func(d *Dialer) {
		d.maxAttempts = n
	}
}

// WithRetryInterval sets the pause between connect attempts.
func WithRetryInterval(interval time.Duration) func(*Dialer) {
	return func(d *Dialer) {
		d.retryInterval = interval
	}
}

// WithLogger sets the logger for connect progress reporting.
func WithLogger(logger *slog.Logger) func(*Dialer) {
	return func(d *Dialer) {
		d.logger = logger
	}
}

// WithNotify registers a callback invoked after every failed transient
// attempt with the attempt number and the dial error.
func WithNotify(fn func(attempt int, err error)) func(*Dialer) {
	return func(d *Dialer) {
		d.notify = fn
	}
}

// Dialer establishes the connection to the telemetry producer over a Unix
// domain stream socket, retrying transient failures a bounded number of times.
type Dialer struct {
	maxAttempts   int
	retryInterval time.Duration

	logger *slog.Logger
	notify func(attempt int, err error)
}

// NewDialer creates a Dialer with a discard logger and default retry policy.
func NewDialer(options ...func(*Dialer)) *Dialer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	d := Dialer{
		maxAttempts:   DefaultMaxAttempts,
		retryInterval: DefaultRetryInterval,
		logger:        logger,
	}

	for _, option := range options {
		option(&d)
	}

	return &d
}

// Connect dials the producer socket at path. Failures classified as transient
// (socket path absent, connection refused) are retried up to the configured
// attempt limit; any other failure is fatal and returned immediately. After
// the limit is reached, Connect returns ErrExhausted without a connection.
func (d *Dialer) Connect(ctx context.Context, path string) (*Conn, error) {
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, fmt.Errorf("resolving socket address '%s': %w", path, err)
	}

	var dialer net.Dialer
	for attempt := 1; ; attempt++ {
		d.logger.Info("connecting to telemetry producer",
			slog.String("path", path),
			slog.Int("attempt", attempt))

		conn, err := dialer.DialContext(ctx, "unix", addr.String())
		if err == nil {
			d.logger.Info("connection to telemetry producer established", slog.String("path", path))
			return &Conn{conn: conn}, nil
		}

		if !transient(err) {
			return nil, fmt.Errorf("connecting to '%s': %w", path, err)
		}

		if d.notify != nil {
			d.notify(attempt, err)
		}

		if attempt >= d.maxAttempts {
			return nil, fmt.Errorf("connecting to '%s' after %d attempts: %w", path, attempt, ErrExhausted)
		}

		d.logger.Warn("producer not ready, retrying",
			slog.String("path", path),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d.retryInterval):
		}
	}
}

// transient reports whether a dial error is expected to resolve with retry:
// the producer has not created the socket yet, or is not accepting yet.
func transient(err error) bool {
	return errors.Is(err, syscall.ENOENT) || errors.Is(err, syscall.ECONNREFUSED)
}

// Conn is the connection to the telemetry producer. It is owned by a single
// caller and released exactly once.
type Conn struct {
	conn net.Conn

	closeOnce sync.Once
	closeErr  error
}

// SetReadDeadline bounds the next Read.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// Read reads at most one buffer's worth of bytes from the producer.
func (c *Conn) Read(p []byte) (int, error) {
	return c.conn.Read(p)
}

// Close releases the connection. Safe to call multiple times; only the first
// call closes the underlying socket.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
