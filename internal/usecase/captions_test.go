package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/forPelevin/viralcut/internal/domain/subtitles"
	"github.com/forPelevin/viralcut/internal/types"
)

type fakeAudio struct {
	err error
	got string
}

func (f *fakeAudio) ExtractAudioMono16k(_ context.Context, _, outWav string) error {
	f.got = outWav
	return f.err
}

type fakeASR struct {
	tr  types.Transcript
	err error
}

func (f fakeASR) Transcribe(context.Context, string, string) (types.Transcript, error) {
	return f.tr, f.err
}

func TestStaticCaptions_DefaultsToSegmentTimeline(t *testing.T) {
	caps, tl, err := StaticCaptions{List: DefaultCaptions()}.Captions(context.Background(), "in.mp4", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if tl != subtitles.TimelineSegment || len(caps) != 2 || caps[1].Text != "Vamos aprender algo novo!" {
		t.Fatalf("unexpected captions: %v %+v", tl, caps)
	}
}

func TestTranscriptCaptions(t *testing.T) {
	dir := t.TempDir()
	audio := &fakeAudio{}
	src := TranscriptCaptions{
		Audio: audio,
		ASR: fakeASR{tr: types.Transcript{Segments: []types.TranscriptSegment{
			{Start: 1, End: 2.5, Text: " hello "},
		}}},
	}

	caps, tl, err := src.Captions(context.Background(), "in.mp4", dir)
	if err != nil {
		t.Fatal(err)
	}
	if audio.got != filepath.Join(dir, "audio.wav") {
		t.Fatalf("unexpected wav path: %s", audio.got)
	}
	if tl != subtitles.TimelineSource || len(caps) != 1 || caps[0].StartSec != 1 || caps[0].EndSec != 2.5 {
		t.Fatalf("unexpected captions: %v %+v", tl, caps)
	}

	src.ASR = fakeASR{err: errBoom}
	if _, _, err := src.Captions(context.Background(), "in.mp4", dir); !errors.Is(err, errBoom) {
		t.Fatalf("expected transcribe error, got %v", err)
	}
}
