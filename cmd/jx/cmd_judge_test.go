package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jurybox/jurybox/internal/inference"
)

func TestJudge_ValidStatement(t *testing.T) {
	t.Parallel()
	addr := startTestDaemon(t, inference.NewFake("YES"))

	var stdout, stderr bytes.Buffer
	code := run([]string{"judge", "--addr", addr, "--color", "never",
		"the", "player", "opens", "the", "door"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "VALID (confidence 1.00)") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "model said: YES") {
		t.Errorf("stdout missing raw answer: %q", stdout.String())
	}
}

func TestJudge_InvalidStatementExitsNonZero(t *testing.T) {
	t.Parallel()
	addr := startTestDaemon(t, inference.NewFake("NO"))

	var stdout, stderr bytes.Buffer
	code := run([]string{"judge", "--addr", addr, "--color", "never", "the player eats the moon"},
		&stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stdout.String(), "INVALID") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestJudge_UnreachableDaemonHints(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	code := run([]string{"judge", "--addr", "127.0.0.1:1", "--color", "never", "x"},
		&stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "jx start") {
		t.Errorf("stderr missing recovery hint: %q", stderr.String())
	}
}
