package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jurybox/jurybox/internal/daemon"
	"github.com/jurybox/jurybox/internal/style"
)

func newAdvanceCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advance <action>...",
		Short: "Compute the next game state for a player action",
		Long: `Compute the next game state for a player action.

With --continue the daemon reuses its resident conversation, so --state
and --world are only needed for the first call (or after 'jx reset').
Without --continue every call must carry the full state and world.

Examples:
  jx advance --world "$(cat world.txt)" --state "at the gate" --continue "open the gate"
  jx advance --continue "walk through"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdvance(cmd, stdout, stderr, strings.Join(args, " "))
		},
	}
	cmd.Flags().String("state", "", "Current game state")
	cmd.Flags().String("world", "", "World description")
	cmd.Flags().Bool("continue", false, "Continue the resident conversation")
	return cmd
}

func runAdvance(cmd *cobra.Command, stdout, stderr io.Writer, action string) error {
	c := newClient(cmd)
	state, _ := cmd.Flags().GetString("state")
	world, _ := cmd.Flags().GetString("world")
	cont, _ := cmd.Flags().GetBool("continue")

	sp := style.StartSpinner(stderr, "Advancing state...")
	resp, err := c.Advance(cmd.Context(), action, state, world, cont)
	sp.Stop()
	if err != nil {
		return hintDaemon(err)
	}

	if resp.Degraded {
		fmt.Fprintf(stderr, "%s output had no state markers; showing raw text\n",
			style.Warning.Render(style.IconWarn))
	}
	if resp.Mode == daemon.ModeContinuation {
		fmt.Fprintf(stderr, "%s\n", style.Dim.Render("(continued conversation)"))
	}
	fmt.Fprintln(stdout, resp.State)
	return nil
}
