package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/forPelevin/viralcut/internal/domain/segments"
	"github.com/forPelevin/viralcut/internal/domain/subtitles"
	"github.com/forPelevin/viralcut/internal/ports"
	"github.com/forPelevin/viralcut/internal/types"
)

// SegmentResult is the outcome of one output segment. Err is nil on success.
type SegmentResult struct {
	Segment types.Segment
	Err     error
}

// Segmenter cuts a source clip into equal vertical segments with captions.
type Segmenter struct {
	codec  ports.Codec
	minSeg float64
	locks  *dirLocks
	logger zerolog.Logger
}

func NewSegmenter(logger zerolog.Logger, codec ports.Codec, minSegmentSeconds float64) *Segmenter {
	return &Segmenter{
		codec:  codec,
		minSeg: minSegmentSeconds,
		locks:  newDirLocks(),
		logger: logger.With().Str("component", "segmenter").Logger(),
	}
}

// Extract writes every segment of src into outDir. A failing segment does not
// stop its siblings. The returned error is non-nil only when the run could
// not continue: outDir is unusable or ctx was cancelled between segments.
// Segment results are returned in both cases.
func (s *Segmenter) Extract(
	ctx context.Context,
	src ports.Clip,
	outDir string,
	caps []types.Caption,
	tl subtitles.Timeline,
) ([]SegmentResult, error) {
	spans, err := segments.Compute(src.DurationSeconds(), s.minSeg)
	if err != nil {
		return nil, err
	}
	if len(spans) == 0 {
		return nil, fmt.Errorf("%w: %.1fs < %.1fs", types.ErrTooShort, src.DurationSeconds(), s.minSeg)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	results := make([]SegmentResult, 0, len(spans))
	for i, sp := range spans {
		seg := types.Segment{Span: sp, OutputPath: filepath.Join(outDir, SegmentFileName(sp))}
		if err := ctx.Err(); err != nil {
			for _, rest := range spans[i:] {
				results = append(results, SegmentResult{
					Segment: types.Segment{Span: rest, OutputPath: filepath.Join(outDir, SegmentFileName(rest))},
					Err:     err,
				})
			}
			return results, err
		}

		err := s.writeSegment(ctx, src, seg, subtitles.Localize(caps, sp, tl))
		if err != nil {
			s.logger.Warn().Err(err).
				Float64("start", sp.StartSec).
				Float64("end", sp.EndSec).
				Msg("segment failed")
		} else {
			s.logger.Info().Str("file", seg.OutputPath).Msg("segment written")
		}
		results = append(results, SegmentResult{Segment: seg, Err: err})
	}
	return results, nil
}

func (s *Segmenter) writeSegment(ctx context.Context, src ports.Clip, seg types.Segment, caps []types.Caption) error {
	c := src.Trim(seg.StartSec, seg.EndSec)

	plan := segments.PlanVertical(c.Size())
	s.logger.Debug().
		Stringer("op", plan.Op).
		Int("width", plan.Target.Width).
		Int("height", plan.Target.Height).
		Msg("aspect plan")
	switch plan.Op {
	case segments.AspectCrop:
		c = c.Crop(plan.Target.Width, plan.Target.Height, plan.CropX, 0)
	case segments.AspectResize:
		c = c.Resize(plan.Target.Width, plan.Target.Height)
	}

	for _, cc := range caps {
		c = c.OverlayText(cc.Text, cc.StartSec, cc.EndSec)
	}

	unlock := s.locks.lock(filepath.Dir(seg.OutputPath))
	defer unlock()

	// write to a hidden part file, publish by rename
	part := filepath.Join(filepath.Dir(seg.OutputPath), "."+filepath.Base(seg.OutputPath)+".part")
	// an in-flight write is allowed to finish; cancellation is checked
	// between segments
	if err := s.codec.Write(context.WithoutCancel(ctx), c, part); err != nil {
		_ = os.Remove(part)
		if !errors.Is(err, types.ErrCodecFailure) {
			err = fmt.Errorf("%w: %w", types.ErrCodecFailure, err)
		}
		return err
	}
	if err := os.Rename(part, seg.OutputPath); err != nil {
		_ = os.Remove(part)
		return fmt.Errorf("%w: publish segment: %w", types.ErrCodecFailure, err)
	}
	return nil
}

// SegmentFileName encodes the start offset of sp.
func SegmentFileName(sp types.Span) string {
	return fmt.Sprintf("cut_%08.3fs.mp4", sp.StartSec)
}

// dirLocks serializes writes per output directory.
type dirLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newDirLocks() *dirLocks { return &dirLocks{m: make(map[string]*sync.Mutex)} }

func (d *dirLocks) lock(dir string) func() {
	d.mu.Lock()
	l, ok := d.m[dir]
	if !ok {
		l = &sync.Mutex{}
		d.m[dir] = l
	}
	d.mu.Unlock()
	l.Lock()
	return l.Unlock
}
