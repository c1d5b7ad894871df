package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRun_Version(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer

	code := run([]string{"version"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "jx dev") {
		t.Errorf("stdout = %q, want jx dev prefix", stdout.String())
	}
}

func TestRun_NoArgsShowsHelp(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer

	code := run(nil, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stdout.String(), "Available Commands") {
		t.Errorf("help output missing command list: %q", stdout.String())
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer

	code := run([]string{"teleport"}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), `unknown command "teleport"`) {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRun_InvalidColorFlag(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer

	code := run([]string{"version", "--color", "sometimes"}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "invalid --color") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
