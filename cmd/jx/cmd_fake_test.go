package main

import (
	"context"
	"testing"
	"time"

	"github.com/jurybox/jurybox/internal/client"
	"github.com/jurybox/jurybox/internal/daemon"
	"github.com/jurybox/jurybox/internal/inference"
	"github.com/jurybox/jurybox/internal/logx"
)

// startTestDaemon runs a daemon over the given fake engine on an ephemeral
// port, waits until it reports ready, and returns its address.
func startTestDaemon(t *testing.T, eng inference.Engine) string {
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

	addr := srv.Addr().String()
	c := client.New(addr).WithTimeouts(time.Second, time.Second)
	waitFor(t, c.Ready)
	return addr
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
