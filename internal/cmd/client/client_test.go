package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/GooseXRL8/flowerlove/internal/clock"
)

func withEngineClock(t *testing.T, c clock.Clock) {
	t.Helper()
	prev := engineClock
	engineClock = c
	t.Cleanup(func() { engineClock = prev })
}

func TestCounterOnce(t *testing.T) {
	withEngineClock(t, clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)))
	cmd := NewCounterCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--start", "2024-02-29T00:00:00Z"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := "1 ano · 09:00:00 · Bodas de Papel · estágio 4 (em plena floração)\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestCounterWatchLimit(t *testing.T) {
	fake := clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	withEngineClock(t, fake)
	cmd := NewCounterCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--start", "2025-03-01T08:59:58Z", "--watch", "--limit", "2", "--json"})

	done := make(chan error, 1)
	go func() { done <- cmd.Execute() }()
	// The immediate snapshot is emitted before the first tick.
	deadline := time.After(5 * time.Second)
	for fake.Tickers() == 0 {
		select {
		case <-deadline:
			t.Fatalf("watch never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	fake.Advance(time.Second)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
	case <-deadline:
		t.Fatalf("watch did not stop after limit")
	}

	dec := json.NewDecoder(strings.NewReader(buf.String()))
	var secs []int
	for dec.More() {
		var s struct {
			Breakdown struct {
				Seconds int `json:"seconds"`
			} `json:"breakdown"`
		}
		if err := dec.Decode(&s); err != nil {
			t.Fatalf("decode: %v", err)
		}
		secs = append(secs, s.Breakdown.Seconds)
	}
	if fmt.Sprint(secs) != "[2 3]" {
		t.Fatalf("seconds: %v", secs)
	}
}

func TestCounterRejectsBadInput(t *testing.T) {
	for _, args := range [][]string{
		{"--start", "soon"},
		{},
		{"--start", "2024-01-01", "--scheme", "tulip"},
	} {
		cmd := NewCounterCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		if err := cmd.Execute(); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestMilestonesCommand(t *testing.T) {
	cmd := NewMilestonesCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{"Bodas de Beijinho", "Bodas de Papel", "Bodas de Ouro"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("missing %q in output", want)
		}
	}
}

// --- HTTP CLI tests ---

func apiStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok-1"})
	})
	mux.HandleFunc("GET /v1/profiles", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"profiles": []map[string]any{
			{"id": "p1", "name": "Ana & Bia", "startDate": "2024-02-29T00:00:00Z", "theme": "default"},
		}})
	})
	mux.HandleFunc("GET /v1/profiles/{id}/counter/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for i := 0; i < 3; i++ {
			fmt.Fprintf(w, "event: counter\ndata: {\"n\":%d}\n\n", i)
		}
	})
	mux.HandleFunc("GET /v1/profiles/{id}/memories", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"memories": []map[string]any{
			{"title": r.URL.Query().Get("filter")},
		}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginAndProfileList(t *testing.T) {
	srv := apiStub(t)
	base := func() string { return srv.URL }

	login := NewLoginCommand(base)
	buf := &bytes.Buffer{}
	login.SetOut(buf)
	login.SetArgs([]string{"-u", "admin", "-p", "x"})
	if err := login.Execute(); err != nil {
		t.Fatalf("login: %v", err)
	}
	if buf.String() != "export FLOWERLOVE_TOKEN=tok-1\n" {
		t.Fatalf("login output: %q", buf.String())
	}

	t.Setenv("FLOWERLOVE_TOKEN", "tok-1")
	list := NewProfileCommand(base)
	buf.Reset()
	list.SetOut(buf)
	list.SetArgs([]string{"list"})
	if err := list.Execute(); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "p1\tAna & Bia\t2024-02-29") {
		t.Fatalf("list output: %q", buf.String())
	}

	denied := NewProfileCommand(base)
	denied.SetOut(&bytes.Buffer{})
	denied.SetErr(&bytes.Buffer{})
	denied.SetArgs([]string{"list", "--token", "wrong"})
	if err := denied.Execute(); err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestProfileCounterWatchStopsAtLimit(t *testing.T) {
	srv := apiStub(t)
	cmd := NewProfileCommand(func() string { return srv.URL })
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"counter", "--id", "p1", "--watch", "--limit", "2", "--token", "tok-1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if buf.String() != "{\"n\":0}\n{\"n\":1}\n" {
		t.Fatalf("output: %q", buf.String())
	}
}

func TestMemoryListPassesFilter(t *testing.T) {
	srv := apiStub(t)
	cmd := NewMemoryCommand(func() string { return srv.URL })
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"list", "--profile", "p1", "--filter", `"praia" in memory.tags`, "--token", "tok-1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(buf.String(), `\"praia\" in memory.tags`) {
		t.Fatalf("filter not forwarded: %s", buf.String())
	}
}

// --- gRPC health CLI test ---

func TestHealthCommand(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	go func() { _ = s.Serve(lis) }()
	defer s.Stop()
	t.Setenv("FLOWERLOVE_GRPC", lis.Addr().String())

	cmd := NewHealthCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "status: SERVING" {
		t.Fatalf("output: %q", buf.String())
	}
}
