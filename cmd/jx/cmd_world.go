package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jurybox/jurybox/internal/style"
)

func newWorldCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "world <theme>...",
		Short: "Generate a game world description",
		Long: `Generate a game world description from a theme prompt.

The world text is printed to stdout so it can be saved and passed back
to 'jx advance --world'.

Examples:
  jx world "a flooded city ruled by rival salvage crews"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorld(cmd, stdout, stderr, strings.Join(args, " "))
		},
	}
	return cmd
}

func runWorld(cmd *cobra.Command, stdout, stderr io.Writer, theme string) error {
	c := newClient(cmd)

	sp := style.StartSpinner(stderr, "Generating world...")
	world, err := c.CreateWorld(cmd.Context(), theme)
	sp.Stop()
	if err != nil {
		return hintDaemon(err)
	}
	fmt.Fprintln(stdout, world)
	return nil
}
