package feed

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestServer_SendsTelemetryLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_socket")

	srv, err := Listen(path)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Serve(ctx)

	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("failed to dial producer: %v", err)
	}
	defer conn.Close()

	// The accept loop races with Send; wait until the client is registered.
	deadline := time.Now().Add(time.Second)
	for {
		if err = srv.Send(5, 200); err == nil {
			break
		}
		if !errors.Is(err, ErrNoClient) || time.Now().After(deadline) {
			t.Fatalf("Send() error = %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	buf := make([]byte, 64)
	conn.SetReadDeadline(time.Now().Add(time.Second))
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("failed to read line: %v", err)
	}
	if got := string(buf[:n]); got != "5,200" {
		t.Errorf("received %q, want \"5,200\"", got)
	}
}

func TestServer_SendWithoutClient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_socket")

	srv, err := Listen(path)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer srv.Close()

	if err := srv.Send(2, 10); !errors.Is(err, ErrNoClient) {
		t.Errorf("Send() error = %v, want ErrNoClient", err)
	}
}

func TestListen_ReplacesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_socket")

	stale, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("failed to create stale socket: %v", err)
	}
	stale.(*net.UnixListener).SetUnlinkOnClose(false)
	stale.Close()

	srv, err := Listen(path)
	if err != nil {
		t.Fatalf("Listen() error = %v, want stale socket replaced", err)
	}
	srv.Close()
}

func TestClose_UnlinksSocketPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_socket")

	srv, err := Listen(path)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("socket path still present after Close: %v", err)
	}
}
