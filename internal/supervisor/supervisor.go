// Package supervisor keeps at most one inference daemon per user alive. The
// daemon is expensive to start (a model load), so callers attach to a
// running instance through its pidfile and only spawn when none survives.
// There is deliberately no stop operation; a resident daemon is the point.
package supervisor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/jurybox/jurybox/internal/xdg"
)

// Spawner starts a detached daemon process and returns its pid.
type Spawner interface {
	Spawn() (pid int, err error)
}

// Supervisor manages the daemon pidfile.
type Supervisor struct {
	pidPath string
	spawner Spawner
	log     zerolog.Logger
}

// New creates a Supervisor around the given pidfile path.
func New(pidPath string, spawner Spawner, log zerolog.Logger) *Supervisor {
	return &Supervisor{pidPath: pidPath, spawner: spawner, log: log}
}

// DefaultPidPath returns the per-user pidfile location.
func DefaultPidPath() string {
	return filepath.Join(xdg.RuntimeDir(), "jx-daemon.pid")
}

// PidPath returns the pidfile path this supervisor manages.
func (s *Supervisor) PidPath() string { return s.pidPath }

// ReadPid returns the pid recorded in the pidfile.
func (s *Supervisor) ReadPid() (int, error) {
	data, err := os.ReadFile(s.pidPath)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("pidfile %s holds %q, not a pid", s.pidPath, strings.TrimSpace(string(data)))
	}
	return pid, nil
}

// Alive reports whether a process with the given pid exists. Signal 0
// performs the existence check without delivering anything.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// AttachOrStart returns the pid of a live daemon, spawning one if the
// pidfile is missing, unreadable, or points at a dead process. started
// reports whether a new daemon was spawned.
func (s *Supervisor) AttachOrStart() (pid int, started bool, err error) {
	if pid, err := s.ReadPid(); err == nil {
		if Alive(pid) {
			s.log.Debug().Int("pid", pid).Msg("attaching to running daemon")
			return pid, false, nil
		}
		s.log.Info().Int("pid", pid).Msg("removing stale pidfile")
		_ = os.Remove(s.pidPath)
	}

	pid, err = s.spawner.Spawn()
	if err != nil {
		return 0, false, fmt.Errorf("spawning daemon: %w", err)
	}
	if err := s.writePid(pid); err != nil {
		return 0, false, err
	}
	s.log.Info().Int("pid", pid).Msg("daemon started")
	return pid, true, nil
}

func (s *Supervisor) writePid(pid int) error {
	if err := os.MkdirAll(filepath.Dir(s.pidPath), 0o755); err != nil {
		return fmt.Errorf("creating pidfile directory: %w", err)
	}
	if err := os.WriteFile(s.pidPath, []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing pidfile: %w", err)
	}
	return nil
}
