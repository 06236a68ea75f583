// Package storage persists telemetry sessions and accepted frames to SQLite
// so recorded orbits can be charted offline.
package storage

import (
	"context"
	"time"
)

// Session represents one run of the visualizer against a producer socket.
type Session struct {
	ID         int64
	StartTime  time.Time
	SocketPath string
	Config     *string
}

// FrameRecord is one accepted telemetry frame, keyed by the loop tick at
// which it was accepted.
type FrameRecord struct {
	ID        int64
	SessionID int64
	Tick      int64
	Timestamp time.Time
	Speed     int
	Altitude  int
	Raw       string
}

// Store manages telemetry session storage. All writes are atomic; it is safe
// to call Close multiple times.
type Store interface {
	// CreateSession registers a new visualizer run and returns its ID.
	// Config may be a string, []byte, or any JSON-serializable value.
	CreateSession(ctx context.Context, socketPath string, config any) (sessionID int64, err error)

	// Session retrieves a session by ID, or nil if it does not exist.
	Session(ctx context.Context, id int64) (*Session, error)

	// Sessions returns all recorded sessions ordered by start time.
	Sessions(ctx context.Context) ([]*Session, error)

	// StoreFrame saves one accepted telemetry frame for a session.
	StoreFrame(ctx context.Context, sessionID int64, frame *FrameRecord) (frameID int64, err error)

	// Frames returns a session's frames ordered by tick.
	Frames(ctx context.Context, sessionID int64) ([]*FrameRecord, error)

	// Close releases the database connections.
	Close() error
}
