// jx is the Jurybox CLI: a resident model-inference daemon and an AI jury
// that resolves judgment requests by peer consensus.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jurybox/jurybox/internal/daemon"
	"github.com/jurybox/jurybox/internal/style"
)

// Version metadata injected via ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// errExit is a sentinel error returned by cobra RunE functions to signal
// non-zero exit. The command has already written its own error to stderr.
var errExit = errors.New("exit")

// run executes the jx CLI with the given args.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errExit) {
			fmt.Fprintf(stderr, "jx: %v\n", err)
			var hinted *HintedError
			if errors.As(err, &hinted) && hinted.Hint != "" {
				fmt.Fprintf(stderr, "%s\n", style.Dim.Render(hinted.Hint))
			}
		}
		return 1
	}
	return 0
}

// newRootCmd creates the root cobra command with all subcommands.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "jx",
		Short:         "Jurybox — AI jury with a resident inference daemon",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			fmt.Fprintf(stderr, "jx: unknown command %q\n", args[0]) //nolint:errcheck // best-effort stderr
			return errExit
		},
	}
	root.PersistentFlags().String("addr", daemon.DefaultAddr, "Inference daemon address")
	root.PersistentFlags().String("color", "auto", "Color output: always, auto, never")
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		colorMode, _ := cmd.Flags().GetString("color")
		switch colorMode {
		case "always", "auto", "never":
			style.SetColorMode(colorMode)
			return nil
		default:
			return fmt.Errorf("invalid --color value %q: must be always, auto, or never", colorMode)
		}
	}
	root.AddCommand(
		newServeCmd(stdout, stderr),
		newStartCmd(stdout, stderr),
		newStatusCmd(stdout, stderr),
		newJudgeCmd(stdout, stderr),
		newWorldCmd(stdout, stderr),
		newAdvanceCmd(stdout, stderr),
		newResetCmd(stdout, stderr),
		newDemoCmd(stdout, stderr),
		newVersionCmd(stdout),
	)
	return root
}
