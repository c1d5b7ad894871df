package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jurybox/jurybox/internal/client"
	"github.com/jurybox/jurybox/internal/daemon"
	"github.com/jurybox/jurybox/internal/style"
)

func newStatusCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show inference daemon readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, stdout, stderr)
		},
	}
	cmd.Flags().Bool("wait", false, "Block until the model finishes loading")
	cmd.Flags().Bool("watch", false, "Live readiness view (quit with q)")
	cmd.Flags().Duration("timeout", 5*time.Minute, "How long --wait blocks before giving up")
	return cmd
}

func runStatus(cmd *cobra.Command, stdout, stderr io.Writer) error {
	c := newClient(cmd)

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return runStatusWatch(c, stdout)
	}
	if wait, _ := cmd.Flags().GetBool("wait"); wait {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		return waitForReady(cmd.Context(), c, stderr, timeout)
	}

	resp, err := c.Ping(cmd.Context())
	if err != nil {
		fmt.Fprintf(stdout, "%s daemon unavailable at %s\n", style.Error.Render(style.IconFail), c.Addr())
		return hintDaemon(err)
	}
	renderStatus(stdout, resp)
	if resp.Status == daemon.StatusError {
		return errExit
	}
	return nil
}

// renderStatus writes one readiness line per the daemon's latched state.
func renderStatus(w io.Writer, resp daemon.PingResponse) {
	switch resp.Status {
	case daemon.StatusReady:
		fmt.Fprintf(w, "%s model loaded, ready to judge\n", style.Success.Render(style.IconPass))
	case daemon.StatusError:
		fmt.Fprintf(w, "%s model load failed: %s\n", style.Error.Render(style.IconFail), resp.Error)
	default:
		fmt.Fprintf(w, "%s model loading...\n", style.Warning.Render(style.IconWarn))
	}
}

// waitForReady polls the daemon until the load settles or the timeout hits.
// A load error is terminal; waiting longer cannot fix it.
func waitForReady(ctx context.Context, c *client.Client, stderr io.Writer, timeout time.Duration) error {
	sp := style.StartSpinner(stderr, "Waiting for model load...")
	defer sp.Stop()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp, err := c.Ping(ctx)
		if err != nil {
			return hintDaemon(err)
		}
		switch resp.Status {
		case daemon.StatusReady:
			sp.Stop()
			fmt.Fprintf(stderr, "%s model loaded\n", style.Success.Render(style.IconPass))
			return nil
		case daemon.StatusError:
			sp.Stop()
			return fmt.Errorf("model load failed: %s", resp.Error)
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("daemon not ready after %s", timeout)
}
