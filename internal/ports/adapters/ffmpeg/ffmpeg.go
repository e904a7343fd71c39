package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/forPelevin/viralcut/internal/domain/subtitles"
	"github.com/forPelevin/viralcut/internal/ports"
	"github.com/forPelevin/viralcut/internal/types"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
	preset  string
	crf     int
	style   subtitles.Style
	logger  zerolog.Logger
}

type Options struct {
	FFmpegPath  string
	FFprobePath string
	Preset      string
	CRF         int
	Style       subtitles.Style
}

func New(logger zerolog.Logger, opts Options) *Adapter {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.FFprobePath == "" {
		opts.FFprobePath = "ffprobe"
	}
	if opts.Preset == "" {
		opts.Preset = "veryfast"
	}
	if opts.CRF <= 0 {
		opts.CRF = 18
	}
	if opts.Style.FontName == "" {
		opts.Style = subtitles.DefaultStyle()
	}
	return &Adapter{
		ffmpeg:  opts.FFmpegPath,
		ffprobe: opts.FFprobePath,
		preset:  opts.Preset,
		crf:     opts.CRF,
		style:   opts.Style,
		logger:  logger.With().Str("component", "ffmpeg").Logger(),
	}
}

// Open probes path and returns an untouched handle on it.
func (a *Adapter) Open(ctx context.Context, path string) (ports.Clip, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	b, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return nil, fmt.Errorf("%w: ffprobe %s: %w\n%s", types.ErrCodecFailure, path, err, string(ee.Stderr))
		}
		return nil, fmt.Errorf("%w: ffprobe %s: %w", types.ErrCodecFailure, path, err)
	}
	h, err := parseProbe(path, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrCodecFailure, err)
	}
	a.logger.Debug().
		Str("path", path).
		Float64("duration", h.duration).
		Int("width", h.size.Width).
		Int("height", h.size.Height).
		Msg("probed")
	return h, nil
}

// Write renders every pending edit of c into outPath with one ffmpeg run.
func (a *Adapter) Write(ctx context.Context, c ports.Clip, outPath string) error {
	h, ok := c.(Handle)
	if !ok {
		return fmt.Errorf("%w: foreign clip handle %T", types.ErrCodecFailure, c)
	}

	assPath := ""
	if len(h.overlays) > 0 {
		f, err := os.CreateTemp(filepath.Dir(outPath), ".captions-*.ass")
		if err != nil {
			return fmt.Errorf("%w: create captions file: %w", types.ErrCodecFailure, err)
		}
		assPath = f.Name()
		defer os.Remove(assPath)
		_, werr := f.WriteString(subtitles.RenderASS(h.overlays, h.size, a.style))
		cerr := f.Close()
		if err := errors.Join(werr, cerr); err != nil {
			return fmt.Errorf("%w: write captions file: %w", types.ErrCodecFailure, err)
		}
	}

	args := a.buildWriteArgs(h, outPath, assPath)
	a.logger.Debug().Strs("args", args).Msg("executing ffmpeg")
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: ffmpeg render clip: %w\n%s", types.ErrCodecFailure, err, tail(string(b), 2000))
	}
	return nil
}

// Close is a no-op: handles hold no process or descriptor.
func (a *Adapter) Close(c ports.Clip) error {
	if _, ok := c.(Handle); !ok && c != nil {
		return fmt.Errorf("foreign clip handle %T", c)
	}
	return nil
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inMP4,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, tail(string(b), 2000))
	}
	return nil
}

func (a *Adapter) buildWriteArgs(h Handle, outPath, assPath string) []string {
	args := []string{"-y", "-hide_banner"}
	if h.trimmed {
		args = append(args,
			"-ss", fmtSeconds(h.start),
			"-to", fmtSeconds(h.end),
		)
	}
	args = append(args, "-i", h.src)

	vf := append([]string(nil), h.filters...)
	if assPath != "" {
		vf = append(vf, "subtitles="+escapeFilterPath(assPath))
	}
	if len(vf) > 0 {
		args = append(args, "-vf", strings.Join(vf, ","))
	}

	// yuv420p needs even dimensions
	pixFmt := "yuv420p"
	if h.size.Width%2 != 0 || h.size.Height%2 != 0 {
		pixFmt = "yuv444p"
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", a.preset,
		"-crf", strconv.Itoa(a.crf),
		"-pix_fmt", pixFmt,
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		"-f", "mp4",
		outPath,
	)
	return args
}

type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

func parseProbe(path string, b []byte) (Handle, error) {
	var pr probeResult
	if err := json.Unmarshal(b, &pr); err != nil {
		return Handle{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	sec, err := strconv.ParseFloat(strings.TrimSpace(pr.Format.Duration), 64)
	if err != nil || sec < 0 {
		return Handle{}, fmt.Errorf("parse duration %q: invalid", pr.Format.Duration)
	}
	h := Handle{src: path, duration: sec}
	for _, s := range pr.Streams {
		if s.CodecType == "video" {
			h.size = types.Geometry{Width: s.Width, Height: s.Height}
			break
		}
	}
	if h.size.Width <= 0 || h.size.Height <= 0 {
		return Handle{}, fmt.Errorf("no video stream in %s", path)
	}
	return h, nil
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	p = strings.ReplaceAll(p, "'", "\\'")
	p = strings.ReplaceAll(p, ",", "\\,")
	return p
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
