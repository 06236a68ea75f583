package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()

	store := NewSqliteStore(filepath.Join(t.TempDir(), "orbit_session.sqlite"))
	t.Cleanup(func() { store.Close() })

	return store
}

func TestCreateSessionAndReadBack(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	type sessionConfig struct {
		PollTimeout string `json:"pollTimeout"`
	}

	id, err := store.CreateSession(ctx, "/tmp/data_socket", sessionConfig{PollTimeout: "10ms"})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if id <= 0 {
		t.Fatalf("CreateSession() id = %d, want > 0", id)
	}

	sess, err := store.Session(ctx, id)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if sess == nil {
		t.Fatal("Session() = nil, want stored session")
	}
	if sess.SocketPath != "/tmp/data_socket" {
		t.Errorf("SocketPath = %q, want /tmp/data_socket", sess.SocketPath)
	}
	if sess.Config == nil || *sess.Config != `{"pollTimeout":"10ms"}` {
		t.Errorf("Config = %v, want serialized config", sess.Config)
	}
}

func TestSession_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// Init the schema through the write path first.
	if _, err := store.CreateSession(ctx, "/tmp/data_socket", nil); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	sess, err := store.Session(ctx, 9999)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if sess != nil {
		t.Errorf("Session() = %+v, want nil for unknown ID", sess)
	}
}

func TestStoreFrames_OrderedByTick(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	sessionID, err := store.CreateSession(ctx, "/tmp/data_socket", nil)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	now := time.Now()
	records := []*FrameRecord{
		{Tick: 20, Timestamp: now.Add(2 * time.Second), Speed: 7, Altitude: 300, Raw: "7,300"},
		{Tick: 10, Timestamp: now.Add(time.Second), Speed: 5, Altitude: 200, Raw: "5,200"},
	}
	for _, rec := range records {
		if _, err := store.StoreFrame(ctx, sessionID, rec); err != nil {
			t.Fatalf("StoreFrame(tick=%d) error = %v", rec.Tick, err)
		}
	}

	frames, err := store.Frames(ctx, sessionID)
	if err != nil {
		t.Fatalf("Frames() error = %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("Frames() returned %d records, want 2", len(frames))
	}
	if frames[0].Tick != 10 || frames[1].Tick != 20 {
		t.Errorf("Frames() ticks = [%d %d], want [10 20]", frames[0].Tick, frames[1].Tick)
	}
	if frames[0].Speed != 5 || frames[0].Altitude != 200 || frames[0].Raw != "5,200" {
		t.Errorf("frame 0 = %+v, want speed 5, altitude 200, raw 5,200", frames[0])
	}
}

func TestClose_Idempotent(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.CreateSession(context.Background(), "/tmp/data_socket", nil); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
}
