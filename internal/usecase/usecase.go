package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/viralcut/internal/domain/segments"
	"github.com/forPelevin/viralcut/internal/domain/subtitles"
	"github.com/forPelevin/viralcut/internal/domain/virality"
	"github.com/forPelevin/viralcut/internal/ports"
	"github.com/forPelevin/viralcut/internal/types"
)

// WatermarkChecker flags thumbnails that probably carry a watermark.
type WatermarkChecker interface {
	LooksWatermarkedRef(ctx context.Context, ref string) bool
}

type Deps struct {
	Search    ports.SearchProvider
	Fetcher   ports.MediaFetcher
	Codec     ports.Codec
	Watermark WatermarkChecker
	Captions  CaptionSource
	Logger    zerolog.Logger
}

type Usecase struct {
	d   Deps
	log zerolog.Logger
}

func New(d Deps) Usecase {
	return Usecase{d: d, log: d.Logger.With().Str("component", "usecase").Logger()}
}

type Input struct {
	RunID         string
	Query         string
	MaxCandidates int
	TopK          int

	MinDuration float64
	MinSegment  float64

	// OutDir holds one directory per video title. WorkDir holds downloads.
	OutDir  string
	WorkDir string

	CheckWatermark  bool
	SkipWatermarked bool
	KeepDownloads   bool

	SearchTimeout time.Duration
	FetchTimeout  time.Duration
	Workers       int

	// OnRanked, when set, receives the selected candidates before any of
	// them is fetched.
	OnRanked func(top []types.CandidateVideo)
}

type Result struct {
	Report types.Report
}

// Run searches, scores, ranks and processes the top candidates. Only a
// failing search is returned as an error; every other failure is recorded
// per candidate in the report.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	rep := types.Report{RunID: in.RunID, Query: in.Query, RequestedTop: in.TopK}

	searchCtx, cancel := withTimeout(ctx, in.SearchTimeout)
	raw, err := u.d.Search.Search(searchCtx, in.Query, in.MaxCandidates)
	cancel()
	if err != nil {
		return Result{Report: rep}, fmt.Errorf("search: %w", err)
	}
	u.log.Info().Str("query", in.Query).Int("found", len(raw)).Msg("search complete")

	scored := make([]types.CandidateVideo, 0, len(raw))
	for _, c := range raw {
		sc, err := virality.Attach(c)
		if err != nil {
			u.log.Warn().Err(err).Str("title", c.Title).Msg("candidate not scored")
			rep.Unscored = append(rep.Unscored, types.UnscoredReport{Title: c.Title, URL: c.URL, Reason: err.Error()})
			continue
		}
		scored = append(scored, sc)
	}

	ranked := virality.Rank(scored)
	top, clamped := virality.TopK(ranked, in.TopK)
	rep.ProcessedTop = len(top)
	if clamped && in.TopK > len(top) {
		rep.ClampNote = fmt.Sprintf("requested %d videos but only %d candidates are available; processing %d", in.TopK, len(ranked), len(top))
		u.log.Warn().Msg(rep.ClampNote)
	}
	if in.OnRanked != nil {
		in.OnRanked(top)
	}

	seg := NewSegmenter(u.d.Logger, u.d.Codec, in.MinSegment)
	workers := in.Workers
	if workers <= 0 {
		workers = 1
	}

	dirs := outputDirNames(top)
	reports := make([]types.CandidateReport, len(top))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, c := range top {
		g.Go(func() error {
			reports[i] = u.processOne(ctx, seg, in, i+1, c, dirs[i])
			return nil
		})
	}
	_ = g.Wait()

	rep.Candidates = reports
	return Result{Report: rep}, nil
}

func (u Usecase) processOne(ctx context.Context, seg *Segmenter, in Input, rank int, c types.CandidateVideo, dirName string) types.CandidateReport {
	out := types.CandidateReport{
		Rank:       rank,
		Title:      c.Title,
		URL:        c.URL,
		ViewCount:  c.ViewCount,
		ViralScore: c.ViralScore,
	}
	log := u.log.With().Int("rank", rank).Str("title", c.Title).Logger()
	fail := func(reason string) types.CandidateReport {
		out.Outcome = types.OutcomeFailed
		out.Reason = reason
		log.Error().Str("reason", reason).Msg("candidate failed")
		return out
	}

	if in.CheckWatermark && u.d.Watermark != nil && c.ThumbnailRef != "" {
		out.LikelyWatermarked = u.d.Watermark.LooksWatermarkedRef(ctx, c.ThumbnailRef)
		if out.LikelyWatermarked && in.SkipWatermarked {
			out.Outcome = types.OutcomeSkippedWatermarked
			out.Reason = "thumbnail likely carries a watermark"
			log.Info().Msg("skipped: thumbnail likely watermarked")
			return out
		}
	}

	if err := ctx.Err(); err != nil {
		return fail(fmt.Sprintf("not started: %v", err))
	}

	base := titleSlug(c.Title)
	scratch := filepath.Join(in.WorkDir, fmt.Sprintf("%02d-%s", rank, base))
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return fail(fmt.Sprintf("create work dir: %v", err))
	}
	if !in.KeepDownloads {
		defer os.RemoveAll(scratch)
	}

	log.Info().Str("url", c.URL).Msg("fetching")
	fetchCtx, cancel := withTimeout(ctx, in.FetchTimeout)
	path, err := u.d.Fetcher.Fetch(fetchCtx, c.URL, scratch, base)
	// only the per-fetch deadline counts; the run context may expire too
	timedOut := errors.Is(fetchCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
	cancel()
	if err != nil {
		if timedOut {
			return fail(fmt.Sprintf("fetch timed out after %s", in.FetchTimeout))
		}
		return fail(fmt.Sprintf("fetch: %v", err))
	}

	clip, err := u.d.Codec.Open(ctx, path)
	if err != nil {
		return fail(fmt.Sprintf("open: %v", err))
	}
	defer func() {
		if err := u.d.Codec.Close(clip); err != nil {
			log.Warn().Err(err).Msg("close clip")
		}
	}()
	res := types.VideoResource{
		LocalPath:       path,
		DurationSeconds: clip.DurationSeconds(),
		Width:           clip.Size().Width,
		Height:          clip.Size().Height,
	}
	out.DurationSec = res.DurationSeconds

	if res.DurationSeconds < in.MinDuration || segments.TooShort(res.DurationSeconds, in.MinSegment) {
		out.Outcome = types.OutcomeSkippedTooShort
		out.Reason = fmt.Sprintf("%v: %.1fs", types.ErrTooShort, res.DurationSeconds)
		log.Info().Float64("duration", res.DurationSeconds).Msg("skipped: too short")
		return out
	}

	caps, tl, err := u.captionsFor(ctx, res, scratch)
	if err != nil {
		log.Warn().Err(err).Msg("captions unavailable, cutting without captions")
	}

	outDir := filepath.Join(in.OutDir, dirName)
	results, err := seg.Extract(ctx, clip, outDir, caps, tl)
	ok := 0
	for _, r := range results {
		sr := types.SegmentReport{StartSec: r.Segment.StartSec, EndSec: r.Segment.EndSec}
		if r.Err != nil {
			sr.Error = r.Err.Error()
		} else {
			sr.File = r.Segment.OutputPath
			ok++
		}
		out.Segments = append(out.Segments, sr)
	}
	switch {
	case errors.Is(err, types.ErrTooShort):
		out.Outcome = types.OutcomeSkippedTooShort
		out.Reason = err.Error()
		return out
	case err != nil:
		return fail(fmt.Sprintf("segment: %v (%d/%d segments written)", err, ok, len(results)))
	case ok == 0:
		return fail(fmt.Sprintf("all %d segments failed", len(results)))
	}

	out.Outcome = types.OutcomeSucceeded
	if ok < len(results) {
		out.Reason = fmt.Sprintf("%d of %d segments failed", len(results)-ok, len(results))
	}
	log.Info().Int("segments", ok).Str("dir", outDir).Msg("candidate done")
	return out
}

func (u Usecase) captionsFor(ctx context.Context, res types.VideoResource, scratch string) ([]types.Caption, subtitles.Timeline, error) {
	if u.d.Captions == nil {
		return nil, "", nil
	}
	return u.d.Captions.Captions(ctx, res.LocalPath, scratch)
}

func titleSlug(title string) string {
	if s := Slug(title); s != "" {
		return s
	}
	return "video"
}

// outputDirNames assigns every candidate its own directory. Titles that fold
// to the same slug get -2, -3, ... in rank order.
func outputDirNames(top []types.CandidateVideo) []string {
	names := make([]string, len(top))
	used := make(map[string]bool, len(top))
	for i, c := range top {
		base := titleSlug(c.Title)
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
