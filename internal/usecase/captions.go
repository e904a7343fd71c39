package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/forPelevin/viralcut/internal/domain/subtitles"
	"github.com/forPelevin/viralcut/internal/ports"
	"github.com/forPelevin/viralcut/internal/types"
)

// CaptionSource supplies the captions burned into a video's segments.
type CaptionSource interface {
	Captions(ctx context.Context, mediaPath, scratchDir string) ([]types.Caption, subtitles.Timeline, error)
}

// DefaultCaptions are shown at the start of every segment when nothing else
// is configured.
func DefaultCaptions() []types.Caption {
	return []types.Caption{
		{Text: "Bem-vindo ao vídeo!", StartSec: 0, EndSec: 5},
		{Text: "Vamos aprender algo novo!", StartSec: 5, EndSec: 10},
	}
}

// StaticCaptions returns the same captions for every video.
type StaticCaptions struct {
	List     []types.Caption
	Timeline subtitles.Timeline
}

func (s StaticCaptions) Captions(context.Context, string, string) ([]types.Caption, subtitles.Timeline, error) {
	tl := s.Timeline
	if tl == "" {
		tl = subtitles.TimelineSegment
	}
	return s.List, tl, nil
}

// TranscriptCaptions transcribes each video and uses transcript segments as
// source-timeline captions.
type TranscriptCaptions struct {
	Audio ports.AudioExtractor
	ASR   ports.ASR
}

func (t TranscriptCaptions) Captions(ctx context.Context, mediaPath, scratchDir string) ([]types.Caption, subtitles.Timeline, error) {
	wav := filepath.Join(scratchDir, "audio.wav")
	if err := t.Audio.ExtractAudioMono16k(ctx, mediaPath, wav); err != nil {
		return nil, subtitles.TimelineSource, err
	}
	tr, err := t.ASR.Transcribe(ctx, wav, scratchDir)
	if err != nil {
		return nil, subtitles.TimelineSource, fmt.Errorf("transcribe: %w", err)
	}
	return subtitles.FromTranscript(tr), subtitles.TimelineSource, nil
}
