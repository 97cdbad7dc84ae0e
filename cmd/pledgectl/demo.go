package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/pledge/internal/commitment"
	"github.com/mmynk/pledge/internal/fingerprint"
	"github.com/mmynk/pledge/internal/settlement"
	"github.com/mmynk/pledge/internal/storage/memory"
)

const demoKey = "pledgectl-demo-fingerprint-key"

var demoParticipants = []string{"alice", "bob", "charlie", "diana"}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a dinner split and a commitment round-trip against in-memory stores",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd.Context(), cmd.OutOrStdout(), time.Now)
		},
	}
}

func runDemo(ctx context.Context, out io.Writer, now func() time.Time) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fp, err := fingerprint.New([]byte(demoKey))
	if err != nil {
		return err
	}
	repo := memory.New()
	defer repo.Close()

	show := func(title string, v any) error {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "== %s\n%s\n", title, data)
		return err
	}

	splits := settlement.New(repo, fp, settlement.WithClock(now))
	if err := splits.Initialize(ctx); err != nil {
		return err
	}

	splitID, err := splits.CreateSplit(ctx, settlement.CreateSplitParams{
		Description:    "Team dinner at fancy restaurant",
		TotalAmount:    12000,
		ParticipantIDs: demoParticipants,
	})
	if err != nil {
		return err
	}

	for _, p := range demoParticipants {
		receipt, err := splits.AddContribution(ctx, splitID, p, 3000)
		if err != nil {
			return err
		}
		if err := show("receipt for "+p, receipt); err != nil {
			return err
		}
	}

	status, err := splits.SplitStatus(ctx, splitID)
	if err != nil {
		return err
	}
	if err := show("split status", status); err != nil {
		return err
	}

	view, err := splits.ParticipantView(ctx, "alice", splitID)
	if err != nil {
		return err
	}
	if err := show("alice's view", view); err != nil {
		return err
	}

	report, err := splits.VerifyIntegrity(ctx, splitID)
	if err != nil {
		return err
	}
	if err := show("integrity", report); err != nil {
		return err
	}

	// The commitment clock jumps past the deadline after creation.
	var offset time.Duration
	clock := func() time.Time { return now().Add(offset) }
	commitments := commitment.New(repo, fp, commitment.WithClock(clock))
	if err := commitments.Initialize(ctx); err != nil {
		return err
	}

	commitmentID, err := commitments.Create(ctx, commitment.CreateParams{
		Text:     "I will finish the quarterly report",
		Deadline: clock().Add(time.Hour).UnixMilli(),
	})
	if err != nil {
		return err
	}
	sealed, err := commitments.Status(ctx, commitmentID)
	if err != nil {
		return err
	}
	if err := show("sealed commitment", sealed); err != nil {
		return err
	}

	offset = time.Hour
	if _, err := commitments.Reveal(ctx, commitmentID); err != nil {
		return err
	}
	revealed, err := commitments.Status(ctx, commitmentID)
	if err != nil {
		return err
	}
	return show("revealed commitment", revealed)
}
