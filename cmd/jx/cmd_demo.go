package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jurybox/jurybox/internal/client"
	"github.com/jurybox/jurybox/internal/jury"
	"github.com/jurybox/jurybox/internal/logx"
	"github.com/jurybox/jurybox/internal/style"
)

func newDemoCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo <statement>...",
		Short: "Run a local jury round over a statement",
		Long: `Run a local jury round over a statement.

Spins up an in-process jury of N nodes sharing a message bus, has each
node judge the statement, and resolves the verdict by strict majority.
When the inference daemon is ready every node judges through it;
otherwise the nodes fall back to a scripted split so the consensus
machinery can still be demonstrated.

Examples:
  jx demo "the player picks the lock with a hairpin"
  jx demo --nodes 5 "the player eats the moon"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, stdout, stderr, strings.Join(args, " "))
		},
	}
	cmd.Flags().Int("nodes", 3, "Number of jury nodes")
	return cmd
}

// scriptedSlate is the offline fallback: a mixed set of decisions cycled
// across nodes so small juries still show a contested round.
var scriptedSlate = []jury.Decision{
	{Valid: true, Confidence: 0.9, Reason: "plausible in most settings"},
	{Valid: true, Confidence: 0.8, Reason: "no rule against it"},
	{Valid: false, Confidence: 0.7, Reason: "breaks world physics"},
}

func runDemo(cmd *cobra.Command, stdout, stderr io.Writer, statement string) error {
	nodes, _ := cmd.Flags().GetInt("nodes")
	if nodes < 1 {
		return fmt.Errorf("--nodes must be at least 1, got %d", nodes)
	}

	c := newClient(cmd)
	live := c.Ready()
	if !live {
		fmt.Fprintf(stderr, "%s daemon not ready; using scripted local judgments\n",
			style.Warning.Render(style.IconWarn))
	}

	bus := jury.NewBus()
	engines := make([]*jury.Engine, nodes)
	for i := range engines {
		var decider jury.Decider
		if live {
			decider = jury.NewServiceDecider(c, client.DefaultCallTimeout, logx.Nop())
		} else {
			decider = jury.NewFakeDecider(scriptedSlate[i%len(scriptedSlate)])
		}
		engines[i] = jury.New(jury.Config{
			JurorID:   fmt.Sprintf("jury_%03d", i+1),
			PeerCount: nodes,
		}, decider, bus.Join(), logx.Nop(), nil)
	}

	req := jury.Request{ID: 1, Kind: "statement", Payload: statement}
	for _, e := range engines {
		vote, err := e.Submit(req)
		if err != nil {
			return fmt.Errorf("submitting to %s: %w", e.JurorID(), err)
		}
		verdict := style.Success.Render("valid")
		if !vote.Valid {
			verdict = style.Error.Render("invalid")
		}
		fmt.Fprintf(stdout, "  %s votes %s (%.2f) %s\n",
			vote.JurorID, verdict, vote.Confidence, style.Dim.Render(vote.Reason))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()
	for _, e := range engines {
		go e.Pump(ctx, req.ID)
	}

	verdict, err := engines[0].Wait(ctx, req.ID)
	if err != nil {
		return fmt.Errorf("waiting for consensus: %w", err)
	}

	outcome := style.Success.Render("VALID")
	if !verdict.MajorityValid {
		outcome = style.Error.Render("INVALID")
	}
	fmt.Fprintf(stdout, "\nverdict: %s (%d-%d, avg confidence %.2f)\n",
		outcome, verdict.ValidVotes, verdict.InvalidVotes, verdict.AvgConfidence)

	if !verdict.MajorityValid {
		return errExit
	}
	return nil
}
