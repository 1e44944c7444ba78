package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/config"
)

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		ListenAddress:   "127.0.0.1:0",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Second,
		ShutdownTimeout: time.Second,
	}
}

func newTestServer() *Server {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(testConfig(), handler, logger)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestServer_StartStop(t *testing.T) {
	srv := newTestServer()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(context.Background())
	}()

	waitFor(t, srv.IsRunning)

	srv.Stop()

	select {
	case err := <-errChan:
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
	if srv.IsRunning() {
		t.Error("server still reports running after shutdown")
	}
}

func TestServer_ContextCancel(t *testing.T) {
	srv := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	waitFor(t, srv.IsRunning)
	cancel()

	select {
	case err := <-errChan:
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after context cancel")
	}
}

func TestServer_DoubleStart(t *testing.T) {
	srv := newTestServer()

	go func() { _ = srv.Start(context.Background()) }()
	waitFor(t, srv.IsRunning)
	defer srv.Stop()

	if err := srv.Start(context.Background()); err == nil {
		t.Error("second Start should fail while running")
	}
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	srv := newTestServer()
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown before Start: %v", err)
	}
}

func TestServer_ListenFailure(t *testing.T) {
	cfg := testConfig()
	cfg.ListenAddress = "256.256.256.256:99999"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(cfg, http.NewServeMux(), logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(context.Background())
	}()

	select {
	case err := <-errChan:
		if err == nil {
			t.Fatal("expected listen error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return on listen failure")
	}
	if srv.IsRunning() {
		t.Error("server reports running after listen failure")
	}
}
