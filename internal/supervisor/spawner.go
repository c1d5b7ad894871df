package supervisor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

// ExecSpawner starts the daemon as a detached child of init. Output goes to
// a logfile since the daemon outlives the terminal that started it.
type ExecSpawner struct {
	// Path is the binary to run. Empty uses the current executable.
	Path string

	// Args are passed to the binary, e.g. ["serve"].
	Args []string

	// LogPath receives the daemon's stdout and stderr.
	LogPath string
}

// Spawn implements Spawner.
func (s *ExecSpawner) Spawn() (int, error) {
	path := s.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return 0, fmt.Errorf("resolving own executable: %w", err)
		}
		path = exe
	}

	cmd := exec.Command(path, s.Args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if s.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(s.LogPath), 0o755); err != nil {
			return 0, fmt.Errorf("creating log directory: %w", err)
		}
		logFile, err := os.OpenFile(s.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return 0, fmt.Errorf("opening daemon log: %w", err)
		}
		defer logFile.Close() //nolint:errcheck // best-effort close
		cmd.Stdout = logFile
		cmd.Stderr = logFile
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting %s: %w", path, err)
	}
	pid := cmd.Process.Pid
	// Release, not Wait: the daemon is on its own from here.
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("releasing daemon process: %w", err)
	}
	return pid, nil
}

// FakeSpawner records spawn calls and returns a scripted pid. Exported so
// command tests can exercise attach-or-start without real processes.
type FakeSpawner struct {
	Pid   int
	Err   error
	Calls int
}

// Spawn implements Spawner.
func (f *FakeSpawner) Spawn() (int, error) {
	f.Calls++
	if f.Err != nil {
		return 0, f.Err
	}
	return f.Pid, nil
}
