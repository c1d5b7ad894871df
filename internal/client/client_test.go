package client

import (
	"context"
	"testing"
	"time"

	"github.com/jurybox/jurybox/internal/daemon"
	"github.com/jurybox/jurybox/internal/inference"
	"github.com/jurybox/jurybox/internal/logx"
)

// startDaemon runs a daemon Server over the given engine on an ephemeral
// port and returns a client pointed at it.
func startDaemon(t *testing.T, eng inference.Engine) *Client {
	t.Helper()

	cfg := daemon.Config{
		Addr:              "127.0.0.1:0",
		ValidateMaxTokens: 5,
		ValidateMaxBytes:  15,
		WorldMaxTokens:    500,
		StateMaxTokens:    400,
		RequestTimeout:    time.Second,
	}
	session := daemon.NewSession(eng, cfg, logx.Nop())
	srv := daemon.NewServer(session, cfg, logx.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe(ctx) }()
	waitFor(t, func() bool { return srv.Addr() != nil })
	t.Cleanup(func() {
		cancel()
		if err := <-errc; err != nil {
			t.Errorf("ListenAndServe: %v", err)
		}
	})

	return New(srv.Addr().String()).WithTimeouts(2*time.Second, time.Second)
}

func TestClient_ProbeReachesReady(t *testing.T) {
	t.Parallel()
	c := startDaemon(t, inference.NewFake("YES"))

	waitFor(t, func() bool { return c.Probe(context.Background()) == ReadinessReady })
	if !c.Ready() {
		t.Error("Ready = false after the daemon reported ready")
	}

	resp, err := c.Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if !resp.ModelLoaded || resp.ModelLoading || resp.Error != "" {
		t.Errorf("ping = %+v", resp)
	}
}

func TestClient_ProbeUnreachableDaemon(t *testing.T) {
	t.Parallel()
	// Reserved port with nothing listening.
	c := New("127.0.0.1:1").WithTimeouts(time.Second, 100*time.Millisecond)

	if got := c.Probe(context.Background()); got != ReadinessUnavailable {
		t.Errorf("Probe = %v, want unavailable", got)
	}
	if c.Ready() {
		t.Error("Ready = true against a dead address")
	}
}

func TestClient_JudgeRoundTrip(t *testing.T) {
	t.Parallel()
	c := startDaemon(t, inference.NewFake("NO"))
	waitFor(t, func() bool { return c.Ready() })

	valid, confidence, raw, err := c.Judge(context.Background(), "the player eats the moon")
	if err != nil {
		t.Fatalf("Judge: %v", err)
	}
	if valid || confidence != 1.0 || raw != "NO" {
		t.Errorf("Judge = (%v, %v, %q)", valid, confidence, raw)
	}
}

func TestClient_JudgeSurfacesDaemonError(t *testing.T) {
	t.Parallel()
	eng := inference.NewFake("YES")
	eng.LoadErr = context.DeadlineExceeded // never becomes ready
	c := startDaemon(t, eng)

	if _, _, _, err := c.Judge(context.Background(), "x"); err == nil {
		t.Fatal("Judge against a not-ready daemon succeeded")
	}
}

func TestClient_WorldAdvanceReset(t *testing.T) {
	t.Parallel()
	eng := inference.NewFake("")
	eng.Script(
		inference.FakeResponse{Text: "a fogbound harbor town"},
		inference.FakeResponse{Text: daemon.WrapState("Player_Location: Pier"), Context: []int{1, 2}},
	)
	eng.Default = inference.FakeResponse{Text: daemon.WrapState("Player_Location: Tavern"), Context: []int{1, 2, 3}}
	c := startDaemon(t, eng)
	waitFor(t, func() bool { return c.Ready() })

	world, err := c.CreateWorld(context.Background(), "a coastal mystery")
	if err != nil {
		t.Fatalf("CreateWorld: %v", err)
	}
	if world != "a fogbound harbor town" {
		t.Errorf("world = %q", world)
	}

	adv, err := c.Advance(context.Background(), "step onto the pier", "start", world, true)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if adv.State != "Player_Location: Pier" || adv.Mode != daemon.ModeInitial {
		t.Errorf("first advance = %+v", adv)
	}

	adv, err = c.Advance(context.Background(), "enter the tavern", "", "", true)
	if err != nil {
		t.Fatalf("continuation Advance: %v", err)
	}
	if adv.Mode != daemon.ModeContinuation {
		t.Errorf("second advance mode = %q, want continuation", adv.Mode)
	}

	if err := c.Reset(context.Background()); err != nil {
		t.Fatalf("Reset: %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
