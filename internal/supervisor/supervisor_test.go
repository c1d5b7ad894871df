package supervisor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/jurybox/jurybox/internal/logx"
)

// deadPid is above the default kernel pid_max, so no process ever has it.
const deadPid = 99999999

func pidfileWith(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jx-daemon.pid")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing pidfile: %v", err)
	}
	return path
}

func TestAlive(t *testing.T) {
	t.Parallel()
	if !Alive(os.Getpid()) {
		t.Error("Alive(self) = false")
	}
	if Alive(deadPid) {
		t.Error("Alive(deadPid) = true")
	}
	if Alive(0) || Alive(-1) {
		t.Error("Alive accepted a non-positive pid")
	}
}

func TestAttachOrStart_AttachesToLiveDaemon(t *testing.T) {
	t.Parallel()
	spawner := &FakeSpawner{Pid: deadPid}
	s := New(pidfileWith(t, strconv.Itoa(os.Getpid())+"\n"), spawner, logx.Nop())

	pid, started, err := s.AttachOrStart()
	if err != nil {
		t.Fatalf("AttachOrStart: %v", err)
	}
	if started || pid != os.Getpid() {
		t.Errorf("AttachOrStart = (%d, %v), want attach to %d", pid, started, os.Getpid())
	}
	if spawner.Calls != 0 {
		t.Errorf("spawner called %d times while a daemon was live", spawner.Calls)
	}
}

func TestAttachOrStart_ReplacesStalePidfile(t *testing.T) {
	t.Parallel()
	spawner := &FakeSpawner{Pid: os.Getpid()}
	s := New(pidfileWith(t, strconv.Itoa(deadPid)), spawner, logx.Nop())

	pid, started, err := s.AttachOrStart()
	if err != nil {
		t.Fatalf("AttachOrStart: %v", err)
	}
	if !started || pid != os.Getpid() {
		t.Errorf("AttachOrStart = (%d, %v), want fresh spawn", pid, started)
	}

	got, err := s.ReadPid()
	if err != nil {
		t.Fatalf("ReadPid after spawn: %v", err)
	}
	if got != os.Getpid() {
		t.Errorf("pidfile holds %d, want %d", got, os.Getpid())
	}
}

func TestAttachOrStart_StartsWhenNoPidfile(t *testing.T) {
	t.Parallel()
	spawner := &FakeSpawner{Pid: os.Getpid()}
	s := New(filepath.Join(t.TempDir(), "runtime", "jx-daemon.pid"), spawner, logx.Nop())

	pid, started, err := s.AttachOrStart()
	if err != nil {
		t.Fatalf("AttachOrStart: %v", err)
	}
	if !started || pid != os.Getpid() {
		t.Errorf("AttachOrStart = (%d, %v), want fresh spawn", pid, started)
	}
	if spawner.Calls != 1 {
		t.Errorf("spawner called %d times, want 1", spawner.Calls)
	}
}

func TestAttachOrStart_GarbagePidfileStarts(t *testing.T) {
	t.Parallel()
	spawner := &FakeSpawner{Pid: os.Getpid()}
	s := New(pidfileWith(t, "not a pid"), spawner, logx.Nop())

	_, started, err := s.AttachOrStart()
	if err != nil {
		t.Fatalf("AttachOrStart: %v", err)
	}
	if !started {
		t.Error("garbage pidfile should trigger a fresh spawn")
	}
}

func TestAttachOrStart_SpawnFailurePropagates(t *testing.T) {
	t.Parallel()
	spawner := &FakeSpawner{Err: fmt.Errorf("binary missing")}
	s := New(filepath.Join(t.TempDir(), "jx-daemon.pid"), spawner, logx.Nop())

	if _, _, err := s.AttachOrStart(); err == nil {
		t.Fatal("AttachOrStart succeeded with a failing spawner")
	}
}
