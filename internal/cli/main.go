package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/forPelevin/viralcut/internal/config"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "viralcut <query>",
		Short:        "Find viral videos for a query and cut them into vertical segments",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	d := config.Default()
	f := root.Flags()
	f.String("config", "", "Config file (default $VIRALCUT_CONFIG or ./viralcut.yaml)")
	f.String("out", d.OutDir, "Output directory")
	f.Int("max-results", d.Search.MaxResults, "Number of search results to score")
	f.Int("top", d.Segments.Top, "Number of top-ranked videos to process")
	f.Float64("min-segment", d.Segments.MinSegment, "Minimum segment length in seconds")
	f.Float64("min-duration", d.Segments.MinDuration, "Skip videos shorter than this many seconds")
	f.String("captions", "", "Caption file (YAML or JSON)")
	f.String("caption-source", d.Captions.Source, "Caption source: static, whisper or none")
	f.String("provider", d.Search.Provider, "Search provider: ytdlp or html")
	f.Int("workers", d.Segments.Workers, "Videos processed in parallel")
	f.Bool("check-watermark", false, "Flag candidates whose thumbnail looks watermarked")
	f.Bool("skip-watermarked", false, "Skip candidates flagged as watermarked (implies --check-watermark)")
	f.Bool("keep-downloads", false, "Keep downloaded source videos")
	f.Duration("fetch-timeout", d.Fetch.Timeout, "Per-video download timeout")
	f.BoolP("verbose", "v", false, "Debug logging")

	// Hidden tuning flag (internal)
	f.Duration("search-timeout", d.Search.Timeout, "Search timeout")
	_ = f.MarkHidden("search-timeout")

	return root
}

// applyFlags overlays explicitly set flags on the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("out") {
		cfg.OutDir, _ = f.GetString("out")
	}
	if f.Changed("max-results") {
		cfg.Search.MaxResults, _ = f.GetInt("max-results")
	}
	if f.Changed("top") {
		cfg.Segments.Top, _ = f.GetInt("top")
	}
	if f.Changed("min-segment") {
		cfg.Segments.MinSegment, _ = f.GetFloat64("min-segment")
	}
	if f.Changed("min-duration") {
		cfg.Segments.MinDuration, _ = f.GetFloat64("min-duration")
	}
	if f.Changed("captions") {
		cfg.Captions.File, _ = f.GetString("captions")
		cfg.Captions.Source = config.CaptionsStatic
	}
	if f.Changed("caption-source") {
		cfg.Captions.Source, _ = f.GetString("caption-source")
	}
	if f.Changed("provider") {
		cfg.Search.Provider, _ = f.GetString("provider")
	}
	if f.Changed("workers") {
		cfg.Segments.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("check-watermark") {
		cfg.Watermark.Check, _ = f.GetBool("check-watermark")
	}
	if f.Changed("skip-watermarked") {
		cfg.Watermark.Skip, _ = f.GetBool("skip-watermarked")
	}
	if cfg.Watermark.Skip {
		cfg.Watermark.Check = true
	}
	if f.Changed("keep-downloads") {
		cfg.Fetch.KeepDownloads, _ = f.GetBool("keep-downloads")
	}
	if f.Changed("fetch-timeout") {
		cfg.Fetch.Timeout, _ = f.GetDuration("fetch-timeout")
	}
	if f.Changed("search-timeout") {
		cfg.Search.Timeout, _ = f.GetDuration("search-timeout")
	}
}

const runTimeout = 6 * time.Hour
