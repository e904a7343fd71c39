package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/forPelevin/viralcut/internal/ports"
	"github.com/forPelevin/viralcut/internal/types"
)

type fakeSearch struct {
	cands []types.CandidateVideo
	err   error
}

func (f fakeSearch) Search(_ context.Context, _ string, max int) ([]types.CandidateVideo, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.cands) > max {
		return f.cands[:max], nil
	}
	return f.cands, nil
}

// fakeFetcher writes the url into dir/base.mp4 so fakeCodec can look it up.
// Urls in hang block until ctx is done.
type fakeFetcher struct {
	fail map[string]error
	hang map[string]bool
	mu   sync.Mutex
	dirs []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url, dir, base string) (string, error) {
	if err := f.fail[url]; err != nil {
		return "", err
	}
	if f.hang[url] {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := filepath.Join(dir, base+".mp4")
	if err := os.WriteFile(p, []byte(url), 0o644); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.dirs = append(f.dirs, dir)
	f.mu.Unlock()
	return p, nil
}

type fakeClip struct {
	path      string
	dur       float64
	size      types.Geometry
	trimStart float64
	trimEnd   float64
	ops       []string
	overlays  []types.Caption
}

func (c fakeClip) Path() string             { return c.path }
func (c fakeClip) DurationSeconds() float64 { return c.dur }
func (c fakeClip) Size() types.Geometry     { return c.size }

func (c fakeClip) Trim(start, end float64) ports.Clip {
	n := c.clone()
	n.trimStart, n.trimEnd = start, end
	n.dur = end - start
	n.ops = append(n.ops, fmt.Sprintf("trim:%.3f-%.3f", start, end))
	return n
}

func (c fakeClip) Crop(w, h, x, y int) ports.Clip {
	n := c.clone()
	n.size = types.Geometry{Width: w, Height: h}
	n.ops = append(n.ops, fmt.Sprintf("crop:%dx%d+%d+%d", w, h, x, y))
	return n
}

func (c fakeClip) Resize(w, h int) ports.Clip {
	n := c.clone()
	n.size = types.Geometry{Width: w, Height: h}
	n.ops = append(n.ops, fmt.Sprintf("resize:%dx%d", w, h))
	return n
}

func (c fakeClip) OverlayText(text string, start, end float64) ports.Clip {
	n := c.clone()
	n.overlays = append(n.overlays, types.Caption{Text: text, StartSec: start, EndSec: end})
	return n
}

func (c fakeClip) clone() fakeClip {
	n := c
	n.ops = append([]string(nil), c.ops...)
	n.overlays = append([]types.Caption(nil), c.overlays...)
	return n
}

type fakeCodec struct {
	durations map[string]float64 // by url
	size      types.Geometry
	failStart map[float64]bool
	openErr   error

	mu     sync.Mutex
	writes []fakeClip
	closed int
}

func (f *fakeCodec) Open(_ context.Context, path string) (ports.Clip, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrCodecFailure, err)
	}
	d, ok := f.durations[string(b)]
	if !ok {
		d = f.durations[""]
	}
	size := f.size
	if size.Width == 0 {
		size = types.Geometry{Width: 1920, Height: 1080}
	}
	return fakeClip{path: path, dur: d, size: size}, nil
}

func (f *fakeCodec) Write(_ context.Context, c ports.Clip, outPath string) error {
	fc := c.(fakeClip)
	f.mu.Lock()
	f.writes = append(f.writes, fc)
	f.mu.Unlock()
	if f.failStart[fc.trimStart] {
		return fmt.Errorf("%w: disk full", types.ErrCodecFailure)
	}
	return os.WriteFile(outPath, []byte("video"), 0o644)
}

func (f *fakeCodec) Close(ports.Clip) error {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	return nil
}

type fakeWatermark struct {
	flagged map[string]bool
}

func (f fakeWatermark) LooksWatermarkedRef(_ context.Context, ref string) bool {
	return f.flagged[ref]
}

var errBoom = errors.New("boom")
