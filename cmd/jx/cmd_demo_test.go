package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jurybox/jurybox/internal/inference"
)

func TestDemo_OfflineFallbackResolvesMajority(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	code := run([]string{"demo", "--addr", "127.0.0.1:1", "--color", "never", "the player picks the lock"},
		&stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}

	if !strings.Contains(stderr.String(), "scripted local judgments") {
		t.Errorf("stderr missing offline notice: %q", stderr.String())
	}
	// The scripted slate is a 2-1 split across three nodes.
	if got := strings.Count(stdout.String(), "votes"); got != 3 {
		t.Errorf("vote lines = %d, want 3", got)
	}
	if !strings.Contains(stdout.String(), "verdict: VALID (2-1, avg confidence 0.80)") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestDemo_LiveDaemonUnanimous(t *testing.T) {
	t.Parallel()
	addr := startTestDaemon(t, inference.NewFake("NO"))

	var stdout, stderr bytes.Buffer
	code := run([]string{"demo", "--addr", addr, "--color", "never", "--nodes", "3", "the player eats the moon"},
		&stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1 for an invalid verdict", code)
	}
	if !strings.Contains(stdout.String(), "verdict: INVALID (0-3") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestDemo_RejectsBadNodeCount(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	code := run([]string{"demo", "--addr", "127.0.0.1:1", "--nodes", "0", "x"}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "--nodes") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
