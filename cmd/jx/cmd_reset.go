package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jurybox/jurybox/internal/style"
)

func newResetCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the daemon's conversation state",
		Long: `Discard the daemon's conversation state.

The next 'jx advance --continue' starts a fresh conversation from the
full world and state you provide. Resetting when no conversation is
active is a no-op.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newClient(cmd)
			if err := c.Reset(cmd.Context()); err != nil {
				return hintDaemon(err)
			}
			fmt.Fprintf(stdout, "%s conversation reset\n", style.Success.Render(style.IconPass))
			return nil
		},
	}
}
