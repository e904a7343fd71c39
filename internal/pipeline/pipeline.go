package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/forPelevin/viralcut/internal/config"
	"github.com/forPelevin/viralcut/internal/domain/subtitles"
	"github.com/forPelevin/viralcut/internal/domain/watermark"
	"github.com/forPelevin/viralcut/internal/ports"
	"github.com/forPelevin/viralcut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/viralcut/internal/ports/adapters/htmlsearch"
	"github.com/forPelevin/viralcut/internal/ports/adapters/httpimage"
	"github.com/forPelevin/viralcut/internal/ports/adapters/tesseract"
	"github.com/forPelevin/viralcut/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/viralcut/internal/ports/adapters/ytdlp"
	"github.com/forPelevin/viralcut/internal/types"
	"github.com/forPelevin/viralcut/internal/usecase"
)

const reportFile = "report.json"

type Config struct {
	Query    string
	Settings *config.Config
	Logger   zerolog.Logger

	// OnRanked receives the selected candidates before processing starts.
	OnRanked func(top []types.CandidateVideo)

	// Now and NewID are replaced in tests.
	Now   func() time.Time
	NewID func() string
}

func (c Config) Validate() error {
	if c.Query == "" {
		return errors.New("query is empty")
	}
	s := c.Settings
	if s == nil {
		return errors.New("settings are required")
	}
	if s.Search.MaxResults <= 0 {
		return fmt.Errorf("max-results must be > 0")
	}
	if s.Segments.Top < 0 {
		return fmt.Errorf("top must be >= 0")
	}
	if s.Segments.MinSegment <= 0 {
		return fmt.Errorf("min-segment must be > 0")
	}
	if s.Segments.MinDuration < 0 {
		return fmt.Errorf("min-duration must be >= 0")
	}
	if s.Segments.Workers <= 0 {
		return fmt.Errorf("workers must be > 0")
	}
	if s.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch-timeout must be > 0")
	}
	return s.Validate()
}

// Result locates the artifacts of a finished run.
type Result struct {
	RunDir     string
	ReportPath string
	Report     types.Report
}

// Run executes one search-to-segments run and writes report.json into a fresh
// run directory. Only configuration and search failures are returned.
func Run(ctx context.Context, cfg Config) (Result, error) {
	s := cfg.Settings
	log := cfg.Logger.With().Str("component", "pipeline").Logger()

	deps, err := buildDeps(cfg)
	if err != nil {
		return Result{}, err
	}
	uc := usecase.New(deps)

	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}
	newID := uuid.NewString
	if cfg.NewID != nil {
		newID = cfg.NewID
	}
	runID := newID()

	outRoot := s.OutDir
	if outRoot == "" {
		outRoot = "out"
	}
	runDir := buildRunOutDir(outRoot, cfg.Query, now().UTC(), runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create run dir: %w", err)
	}
	workDir := filepath.Join(s.WorkDir, runID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create work dir: %w", err)
	}
	if !s.Fetch.KeepDownloads {
		defer os.RemoveAll(workDir)
	}
	log.Info().Str("run", runID).Str("dir", runDir).Msg("run started")

	res, err := uc.Run(ctx, usecase.Input{
		RunID:           runID,
		Query:           cfg.Query,
		MaxCandidates:   s.Search.MaxResults,
		TopK:            s.Segments.Top,
		MinDuration:     s.Segments.MinDuration,
		MinSegment:      s.Segments.MinSegment,
		OutDir:          runDir,
		WorkDir:         workDir,
		CheckWatermark:  s.Watermark.Check,
		SkipWatermarked: s.Watermark.Skip,
		KeepDownloads:   s.Fetch.KeepDownloads,
		SearchTimeout:   s.Search.Timeout,
		FetchTimeout:    s.Fetch.Timeout,
		Workers:         s.Segments.Workers,
		OnRanked:        cfg.OnRanked,
	})
	if err != nil {
		return Result{RunDir: runDir}, err
	}

	reportPath, err := writeReport(runDir, res.Report)
	if err != nil {
		return Result{RunDir: runDir, Report: res.Report}, err
	}
	log.Info().
		Int("candidates", len(res.Report.Candidates)).
		Str("report", reportPath).
		Msg("report written")
	return Result{RunDir: runDir, ReportPath: reportPath, Report: res.Report}, nil
}

func buildDeps(cfg Config) (usecase.Deps, error) {
	s := cfg.Settings
	logger := cfg.Logger

	fetcher := ytdlp.New(logger, s.Tools.YtDLP, s.Fetch.Format)
	codec := ffmpeg.New(logger, ffmpeg.Options{
		FFmpegPath:  s.Tools.FFmpeg,
		FFprobePath: s.Tools.FFprobe,
		Preset:      s.Encode.Preset,
		CRF:         s.Encode.CRF,
		Style:       captionStyle(s.Captions.Style),
	})

	deps := usecase.Deps{
		Fetcher: fetcher,
		Codec:   codec,
		Logger:  logger,
	}

	switch s.Search.Provider {
	case config.ProviderHTML:
		client := &http.Client{Timeout: s.Search.Timeout}
		deps.Search = htmlsearch.New(logger, client, s.Search.HTML.URLTemplate, selectors(s.Search.HTML.Selectors))
	default:
		deps.Search = fetcher
	}

	if s.Watermark.Check {
		deps.Watermark = watermark.New(logger, tesseract.New(s.Tools.Tesseract, s.Watermark.OCRLanguage), httpimage.New(nil))
	}

	caps, err := captionSource(s, codec, logger)
	if err != nil {
		return usecase.Deps{}, err
	}
	deps.Captions = caps
	return deps, nil
}

func captionSource(s *config.Config, codec *ffmpeg.Adapter, logger zerolog.Logger) (usecase.CaptionSource, error) {
	switch s.Captions.Source {
	case config.CaptionsNone:
		return nil, nil
	case config.CaptionsWhisper:
		return usecase.TranscriptCaptions{
			Audio: codec,
			ASR:   whispercpp.New(logger, s.Tools.WhisperBin, s.Tools.WhisperModel, s.Captions.Language),
		}, nil
	}
	if s.Captions.File == "" {
		return usecase.StaticCaptions{List: usecase.DefaultCaptions()}, nil
	}
	cf, err := config.LoadCaptions(s.Captions.File)
	if err != nil {
		return nil, err
	}
	return usecase.StaticCaptions{List: cf.Captions, Timeline: subtitles.Timeline(cf.Timeline)}, nil
}

func captionStyle(cs config.CaptionStyle) subtitles.Style {
	st := subtitles.DefaultStyle()
	if cs.FontName != "" {
		st.FontName = cs.FontName
	}
	if cs.FontSize > 0 {
		st.FontSize = cs.FontSize
	}
	if cs.Outline > 0 {
		st.Outline = cs.Outline
	}
	return st
}

// selectors overlays configured selectors on the provider defaults.
func selectors(sc config.SelectorsConfig) htmlsearch.Selectors {
	sel := htmlsearch.DefaultSelectors()
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&sel.Card, sc.Card)
	set(&sel.Title, sc.Title)
	set(&sel.Link, sc.Link)
	set(&sel.Views, sc.Views)
	set(&sel.Likes, sc.Likes)
	set(&sel.Dislikes, sc.Dislikes)
	set(&sel.Comments, sc.Comments)
	set(&sel.Shares, sc.Shares)
	set(&sel.Thumbnail, sc.Thumbnail)
	return sel
}

func writeReport(runDir string, rep types.Report) (string, error) {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	p := filepath.Join(runDir, reportFile)
	if err := os.WriteFile(p, b, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return p, nil
}

func buildRunOutDir(outRoot, query string, now time.Time, runID string) string {
	name := usecase.Slug(query)
	if name == "" {
		name = "query"
	}
	if len(name) > 40 {
		cut := 40
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = strings.TrimRight(name[:cut], "-")
	}
	ts := now.UTC().Format("20060102-150405Z")
	suffix := runID
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

// ensure adapters implement ports
var _ ports.SearchProvider = (*ytdlp.Adapter)(nil)
var _ ports.MediaFetcher = (*ytdlp.Adapter)(nil)
var _ ports.SearchProvider = (*htmlsearch.Provider)(nil)
var _ ports.Codec = (*ffmpeg.Adapter)(nil)
var _ ports.AudioExtractor = (*ffmpeg.Adapter)(nil)
var _ ports.OCR = (*tesseract.Adapter)(nil)
var _ ports.ImageSource = (*httpimage.Source)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ usecase.WatermarkChecker = (*watermark.Detector)(nil)
