package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jurybox/jurybox/internal/daemon"
	"github.com/jurybox/jurybox/internal/style"
)

func newJudgeCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "judge <statement>...",
		Short: "Ask the daemon whether a statement is valid",
		Long: `Ask the daemon whether a statement is valid.

Prints the verdict with its confidence and the model's raw answer.
Exits non-zero when the verdict is invalid, so scripts can branch on it.

Examples:
  jx judge "the player picks up the rusty key"
  jx judge the player eats the moon`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJudge(cmd, stdout, stderr, strings.Join(args, " "))
		},
	}
	return cmd
}

func runJudge(cmd *cobra.Command, stdout, _ io.Writer, statement string) error {
	c := newClient(cmd)

	resp, err := c.Ping(cmd.Context())
	if err != nil {
		return hintDaemon(err)
	}
	if resp.Status != daemon.StatusReady {
		return hintNotReady(resp.Status)
	}

	valid, confidence, raw, err := c.Judge(cmd.Context(), statement)
	if err != nil {
		return hintDaemon(err)
	}

	verdict := style.Success.Render("VALID")
	if !valid {
		verdict = style.Error.Render("INVALID")
	}
	fmt.Fprintf(stdout, "%s (confidence %.2f)\n", verdict, confidence)
	fmt.Fprintf(stdout, "%s\n", style.Dim.Render("model said: "+raw))

	if !valid {
		return errExit
	}
	return nil
}
