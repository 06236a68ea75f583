package telemetry

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"
)

const (
	// DefaultPollTimeout bounds the per-call wait for readable data. It is
	// deliberately shorter than the producer cadence so the render loop is
	// never held up waiting for telemetry.
	DefaultPollTimeout = 10 * time.Millisecond

	// readBufferSize is the most a single Poll call will read. A producer
	// sending faster than the frame cadence has its backlog drained
	// incrementally, one read per call.
	readBufferSize = 1024
)

// ErrPeerClosed is returned once the producer has closed the connection.
// The connection is finished, but the caller is expected to keep running
// on its last-known state.
var ErrPeerClosed = errors.New("connection closed by peer")

// WithPollTimeout sets the bounded wait for readable data per Poll call.
func WithPollTimeout(timeout time.Duration) func(*Poller) {
	return func(p *Poller) {
		p.timeout = timeout
	}
}

// WithPollLogger sets the logger for the poller.
func WithPollLogger(logger *slog.Logger) func(*Poller) {
	return func(p *Poller) {
		p.logger = logger
	}
}

// Poller performs the per-tick non-blocking telemetry read. Each Poll is a
// pure function of (connection, previous state): it never retains parsed
// values between calls, and never blocks longer than the configured timeout.
type Poller struct {
	conn    *Conn
	timeout time.Duration
	buf     []byte
	closed  bool

	logger *slog.Logger
}

// NewPoller creates a Poller reading from conn with a discard logger.
func NewPoller(conn *Conn, options ...func(*Poller)) *Poller {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	p := Poller{
		conn:    conn,
		timeout: DefaultPollTimeout,
		buf:     make([]byte, readBufferSize),
		logger:  logger,
	}

	for _, option := range options {
		option(&p)
	}

	return &p
}

// Poll checks the connection for a telemetry frame and returns the new state,
// or prev unchanged when nothing usable arrived this tick. Timeouts are the
// expected steady-state outcome and are not errors. Read failures are
// recoverable: the returned state is always usable, and the error is
// informational except for ErrPeerClosed, after which the caller should stop
// polling this connection.
func (p *Poller) Poll(prev State) (State, error) {
	if p.closed {
		return prev, ErrPeerClosed
	}

	if err := p.conn.SetReadDeadline(time.Now().Add(p.timeout)); err != nil {
		return prev, fmt.Errorf("arming read deadline: %w", err)
	}

	n, err := p.conn.Read(p.buf)
	switch {
	case err == nil:

	case errors.Is(err, io.EOF):
		p.closed = true
		return prev, ErrPeerClosed

	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			// No telemetry this tick.
			return prev, nil
		}
		return prev, fmt.Errorf("reading telemetry: %w", err)
	}

	if n == 0 {
		p.closed = true
		return prev, ErrPeerClosed
	}

	frame := ParseFrame(p.buf[:n])
	if !frame.Valid() {
		p.logger.Warn("discarding short telemetry frame",
			slog.String("data", string(p.buf[:n])),
			slog.Int("fields", len(frame)))
		return prev, nil
	}

	p.logger.Debug("accepted telemetry frame",
		slog.Int("angularStep", frame.AngularStep()),
		slog.Int("altitude", frame.Altitude()))

	return frame, nil
}
