package telemetry

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConnect_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_socket")
	listener, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("failed to listen on %s: %v", path, err)
	}
	defer listener.Close()

	conn, err := NewDialer().Connect(context.Background(), path)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer conn.Close()
}

func TestConnect_ExhaustedAfterMaxAttempts(t *testing.T) {
	// Nothing listens here, so every attempt fails with ENOENT (transient).
	path := filepath.Join(t.TempDir(), "absent_socket")

	var attempts int
	dialer := NewDialer(
		WithMaxAttempts(3),
		WithRetryInterval(time.Millisecond),
		WithNotify(func(attempt int, err error) { attempts = attempt }),
	)

	_, err := dialer.Connect(context.Background(), path)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("Connect() error = %v, want ErrExhausted", err)
	}
	if attempts != 3 {
		t.Errorf("Connect() gave up after %d attempts, want 3", attempts)
	}
}

func TestConnect_RefusedIsTransient(t *testing.T) {
	// A socket file with no listener behind it refuses connections.
	path := filepath.Join(t.TempDir(), "stale_socket")
	listener, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("failed to listen on %s: %v", path, err)
	}
	listener.(*net.UnixListener).SetUnlinkOnClose(false)
	listener.Close()

	dialer := NewDialer(WithMaxAttempts(2), WithRetryInterval(time.Millisecond))
	_, err = dialer.Connect(context.Background(), path)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("Connect() error = %v, want ErrExhausted", err)
	}
}

func TestConnect_FatalOnBrokenPath(t *testing.T) {
	// A path routed through a regular file fails with ENOTDIR, which no
	// amount of retrying can fix.
	file := filepath.Join(t.TempDir(), "not_a_directory")
	if err := os.WriteFile(file, []byte("plain file"), 0o600); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	dialer := NewDialer(WithMaxAttempts(2), WithRetryInterval(time.Millisecond))
	_, err := dialer.Connect(context.Background(), filepath.Join(file, "data_socket"))
	if err == nil {
		t.Fatal("Connect() succeeded on a regular file")
	}
	if errors.Is(err, ErrExhausted) {
		t.Errorf("Connect() error = %v, want a fatal non-retried error", err)
	}
}

func TestConnect_CancelledDuringRetry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent_socket")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	dialer := NewDialer(WithMaxAttempts(100), WithRetryInterval(10*time.Second))
	_, err := dialer.Connect(ctx, path)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Connect() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestConnClose_ReleasesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_socket")
	listener, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("failed to listen on %s: %v", path, err)
	}
	defer listener.Close()

	conn, err := NewDialer().Connect(context.Background(), path)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	// Second close reports the first outcome instead of a double-close error.
	if err := conn.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
}
