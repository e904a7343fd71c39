package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/forPelevin/viralcut/internal/types"
)

// mediaExts are the container extensions accepted after a download.
var mediaExts = []string{".mp4", ".webm", ".mkv"}

type Adapter struct {
	bin    string
	format string
	logger zerolog.Logger
}

func New(logger zerolog.Logger, binPath, format string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	if format == "" {
		format = "bestvideo+bestaudio/best"
	}
	return &Adapter{bin: binPath, format: format, logger: logger.With().Str("component", "ytdlp").Logger()}
}

// Search runs a ytsearch query and reads one JSON document per line.
func (a *Adapter) Search(ctx context.Context, query string, maxResults int) ([]types.CandidateVideo, error) {
	if maxResults <= 0 {
		return nil, nil
	}
	args := []string{
		"--dump-json",
		"--skip-download",
		"--no-warnings",
		"--ignore-errors",
		"--no-playlist",
		fmt.Sprintf("ytsearch%d:%s", maxResults, query),
	}
	a.logger.Debug().Strs("args", args).Msg("executing yt-dlp search")
	cmd := exec.CommandContext(ctx, a.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	// --ignore-errors exits non-zero when single entries fail; keep what was read
	if err != nil && len(out) == 0 {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("yt-dlp search: %w", ctx.Err())
		}
		return nil, fmt.Errorf("yt-dlp search: %w\n%s", err, stderr.String())
	}
	cands := parseSearchOutput(out, a.logger)
	if len(cands) > maxResults {
		cands = cands[:maxResults]
	}
	return cands, nil
}

// Fetch downloads url to dir/baseName.<ext> and returns the produced file.
func (a *Adapter) Fetch(ctx context.Context, url, dir, baseName string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	args := []string{
		"-f", a.format,
		"--no-playlist",
		"--no-progress",
		"--merge-output-format", "mp4",
		"-o", filepath.Join(dir, baseName+".%(ext)s"),
		url,
	}
	a.logger.Debug().Strs("args", args).Msg("executing yt-dlp download")
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("yt-dlp download: %w", ctx.Err())
		}
		return "", fmt.Errorf("yt-dlp download: %w\n%s", err, string(b))
	}
	return findMedia(dir, baseName)
}

// findMedia looks for baseName with a known media extension in dir.
func findMedia(dir, baseName string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrNotFound, err)
	}
	for _, ext := range mediaExts {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if e.Name() == baseName+ext {
				return filepath.Join(dir, e.Name()), nil
			}
		}
	}
	return "", fmt.Errorf("%w: no %s.{mp4,webm,mkv} in %s", types.ErrNotFound, baseName, dir)
}

type info struct {
	Title        string   `json:"title"`
	WebpageURL   string   `json:"webpage_url"`
	URL          string   `json:"url"`
	ID           string   `json:"id"`
	ViewCount    *int64   `json:"view_count"`
	LikeCount    *int64   `json:"like_count"`
	DislikeCount *int64   `json:"dislike_count"`
	CommentCount *int64   `json:"comment_count"`
	RepostCount  *int64   `json:"repost_count"`
	Thumbnail    string   `json:"thumbnail"`
	Duration     *float64 `json:"duration"`
}

func parseSearchOutput(out []byte, logger zerolog.Logger) []types.CandidateVideo {
	var cands []types.CandidateVideo
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 1<<20), 64<<20)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var in info
		if err := json.Unmarshal(line, &in); err != nil {
			logger.Debug().Err(err).Msg("skipping malformed yt-dlp line")
			continue
		}
		url := in.WebpageURL
		if url == "" && in.ID != "" {
			url = "https://www.youtube.com/watch?v=" + in.ID
		}
		if url == "" {
			url = in.URL
		}
		if url == "" {
			continue
		}
		cands = append(cands, types.CandidateVideo{
			Title:        strings.TrimSpace(in.Title),
			URL:          url,
			ViewCount:    deref(in.ViewCount),
			LikeCount:    deref(in.LikeCount),
			DislikeCount: deref(in.DislikeCount),
			CommentCount: deref(in.CommentCount),
			ShareCount:   deref(in.RepostCount),
			ThumbnailRef: in.Thumbnail,
		})
	}
	if err := sc.Err(); err != nil {
		logger.Debug().Err(err).Msg("reading yt-dlp output")
	}
	return cands
}

// deref maps a missing counter to 0. Negative values pass through so the
// score engine can reject them.
func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
