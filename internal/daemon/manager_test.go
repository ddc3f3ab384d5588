// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"github.com/ManuGH/sage/internal/config"
	"github.com/ManuGH/sage/internal/health"
	"github.com/ManuGH/sage/internal/log"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func reserveListenAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve listen addr: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func waitForListen(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return errors.New("listen timeout")
}

func testServerConfig(addr string) config.ServerConfig {
	return config.ServerConfig{
		ListenAddr:      addr,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     30 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: 5 * time.Second,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
}

func TestNewManager_Validation(t *testing.T) {
	if _, err := NewManager(testServerConfig("127.0.0.1:0"), Deps{APIHandler: okHandler()}); !errors.Is(err, ErrMissingLogger) {
		t.Errorf("missing logger: got %v", err)
	}
	if _, err := NewManager(testServerConfig("127.0.0.1:0"), Deps{Logger: log.WithComponent("test")}); !errors.Is(err, ErrMissingAPIHandler) {
		t.Errorf("missing handler: got %v", err)
	}
}

func TestManager_StartServeShutdown(t *testing.T) {
	apiAddr := reserveListenAddr(t)
	metricsAddr := reserveListenAddr(t)

	mgr, err := NewManager(testServerConfig(apiAddr), Deps{
		Logger:         log.WithComponent("test"),
		APIHandler:     okHandler(),
		MetricsHandler: okHandler(),
		MetricsAddr:    metricsAddr,
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	var mu sync.Mutex
	var order []string
	for _, name := range []string{"store", "telemetry", "cache"} {
		mgr.RegisterShutdownHook(name, func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Start(ctx) }()

	for _, addr := range []string{apiAddr, metricsAddr} {
		if err := waitForListen(addr, 2*time.Second); err != nil {
			t.Fatalf("server %s did not start: %v", addr, err)
		}
	}

	client := &http.Client{Timeout: 2 * time.Second, Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + apiAddr + "/")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("manager did not stop")
	}

	if got := strings.Join(order, ","); got != "cache,telemetry,store" {
		t.Errorf("hook order = %s, want LIFO", got)
	}
	if err := mgr.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() = %v, want nil", err)
	}
}

func TestManager_StartTwice(t *testing.T) {
	mgr, err := NewManager(testServerConfig(reserveListenAddr(t)), Deps{
		Logger:     log.WithComponent("test"),
		APIHandler: okHandler(),
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Start(ctx) }()
	time.Sleep(50 * time.Millisecond)

	if err := mgr.Start(ctx); err == nil {
		t.Error("second Start() should fail")
	}
	cancel()
	<-done
}

func TestManager_BindFailureRunsHooks(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = ln.Close() }()

	mgr, err := NewManager(testServerConfig(ln.Addr().String()), Deps{
		Logger:     log.WithComponent("test"),
		APIHandler: okHandler(),
	})
	if err != nil {
		t.Fatal(err)
	}
	closed := false
	mgr.RegisterShutdownHook("store", func(context.Context) error {
		closed = true
		return nil
	})

	if err := mgr.Start(context.Background()); err == nil {
		t.Fatal("Start() on a busy port should fail")
	}
	if !closed {
		t.Error("shutdown hooks should run after a failed start")
	}
}

func TestManager_HookErrorsAreJoined(t *testing.T) {
	mgr, err := NewManager(testServerConfig(reserveListenAddr(t)), Deps{
		Logger:     log.WithComponent("test"),
		APIHandler: okHandler(),
	})
	if err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	mgr.RegisterShutdownHook("broken", func(context.Context) error { return boom })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := mgr.Start(ctx); !errors.Is(err, boom) {
		t.Errorf("Start() = %v, want hook error", err)
	}
}

func TestManager_ShutdownBeforeStart(t *testing.T) {
	mgr, err := NewManager(testServerConfig("127.0.0.1:0"), Deps{
		Logger:     log.WithComponent("test"),
		APIHandler: okHandler(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := mgr.Shutdown(context.Background()); !errors.Is(err, ErrManagerNotStarted) {
		t.Errorf("Shutdown() = %v, want ErrManagerNotStarted", err)
	}
}

func TestApp_RunStopsTasks(t *testing.T) {
	mgr, err := NewManager(testServerConfig(reserveListenAddr(t)), Deps{
		Logger:     log.WithComponent("test"),
		APIHandler: okHandler(),
	})
	if err != nil {
		t.Fatal(err)
	}

	started := make(chan struct{})
	stopped := make(chan struct{})
	task := Task{Name: "probe", Run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(stopped)
		return nil
	}}
	failing := Task{Name: "failing", Run: func(context.Context) error { return errors.New("ignored") }}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewApp(log.WithComponent("test"), mgr, task, failing).Run(ctx) }()

	<-started
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() = %v", err)
	}
	select {
	case <-stopped:
	default:
		t.Error("task was not cancelled")
	}
}

func TestApp_MissingManager(t *testing.T) {
	if err := NewApp(zerolog.Nop(), nil).Run(context.Background()); !errors.Is(err, ErrMissingManager) {
		t.Errorf("Run() = %v", err)
	}
}

func TestReadinessWatch_StopsOnCancel(t *testing.T) {
	hm := health.NewManager("test")
	hm.RegisterChecker(health.NewPingChecker("db", true, func(context.Context) error { return errors.New("down") }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ReadinessWatch(hm, 5*time.Millisecond, zerolog.Nop()).Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("readiness watch did not stop")
	}
}
