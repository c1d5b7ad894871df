package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jurybox/jurybox/internal/logx"
	"github.com/jurybox/jurybox/internal/supervisor"
	"github.com/jurybox/jurybox/internal/xdg"
)

func newStartCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the inference daemon in the background",
		Long: `Start the inference daemon in the background.

If a daemon is already running (tracked by a per-user pidfile) this
attaches to it instead of starting a second one. Stale pidfiles from
crashed daemons are cleaned up automatically. There is no stop command;
the daemon stays resident so the model stays loaded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStart(cmd, stdout, stderr, nil)
		},
	}
	cmd.Flags().String("pidfile", "", "Pidfile path (default: per-user runtime dir)")
	return cmd
}

// runStart attaches to or spawns the daemon. A nil spawner builds the real
// one; tests inject a fake.
func runStart(cmd *cobra.Command, stdout, _ io.Writer, spawner supervisor.Spawner) error {
	pidPath, _ := cmd.Flags().GetString("pidfile")
	if pidPath == "" {
		pidPath = supervisor.DefaultPidPath()
	}

	if spawner == nil {
		addr, _ := cmd.Flags().GetString("addr")
		spawner = &supervisor.ExecSpawner{
			Args:    []string{"serve", "--addr", addr},
			LogPath: filepath.Join(xdg.DataDir(), "daemon.log"),
		}
	}

	sup := supervisor.New(pidPath, spawner, logx.Nop())
	pid, started, err := sup.AttachOrStart()
	if err != nil {
		return err
	}
	if started {
		fmt.Fprintf(stdout, "daemon started (pid %d)\n", pid)
	} else {
		fmt.Fprintf(stdout, "daemon already running (pid %d)\n", pid)
	}
	return nil
}
