package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/forPelevin/viralcut/internal/config"
	"github.com/forPelevin/viralcut/internal/logging"
	"github.com/forPelevin/viralcut/internal/pipeline"
	"github.com/forPelevin/viralcut/internal/types"
)

func run(cmd *cobra.Command, query string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logging.Init(verbose)

	cfgPath, _ := cmd.Flags().GetString("config")
	settings, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	applyFlags(cmd, settings)

	out := cmd.OutOrStdout()
	cfg := pipeline.Config{
		Query:    strings.TrimSpace(query),
		Settings: settings,
		Logger:   log.Logger,
		OnRanked: func(top []types.CandidateVideo) { printRanked(out, top) },
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}
	printSummary(out, res)
	return nil
}

func printRanked(w io.Writer, top []types.CandidateVideo) {
	if len(top) == 0 {
		fmt.Fprintln(w, "No candidates found.")
		return
	}
	fmt.Fprintln(w, "Ranked candidates:")
	for i, c := range top {
		fmt.Fprintf(w, "%2d. %s\n    views=%d score=%.4f %s\n", i+1, c.Title, c.ViewCount, c.ViralScore, c.URL)
	}
}

func printSummary(w io.Writer, res pipeline.Result) {
	rep := res.Report
	if rep.ClampNote != "" {
		fmt.Fprintln(w, "Note:", rep.ClampNote)
	}
	for _, c := range rep.Candidates {
		line := fmt.Sprintf("[%d] %s: %s", c.Rank, c.Title, c.Outcome)
		if c.Reason != "" {
			line += " (" + c.Reason + ")"
		}
		fmt.Fprintln(w, line)
		for _, p := range c.SegmentPaths() {
			fmt.Fprintln(w, "    "+p)
		}
	}
	fmt.Fprintln(w, "Report:", res.ReportPath)
}
