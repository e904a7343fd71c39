package ports

import (
	"context"
	"image"

	"github.com/forPelevin/viralcut/internal/types"
)

// SearchProvider returns up to maxResults candidates. An empty result is not
// an error.
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]types.CandidateVideo, error)
}

// MediaFetcher downloads url into dir as baseName.<ext>. It fails with
// types.ErrNotFound when no output file appears.
type MediaFetcher interface {
	Fetch(ctx context.Context, url, dir, baseName string) (string, error)
}

// Clip is an immutable handle on a media file plus pending edits. Every edit
// returns a new handle.
type Clip interface {
	Path() string
	DurationSeconds() float64
	Size() types.Geometry
	Trim(start, end float64) Clip
	Crop(width, height, x, y int) Clip
	Resize(width, height int) Clip
	OverlayText(text string, start, end float64) Clip
}

// Codec is the media collaborator. The core never touches container bytes.
type Codec interface {
	Open(ctx context.Context, path string) (Clip, error)
	Write(ctx context.Context, c Clip, outPath string) error
	Close(c Clip) error
}

// OCR recognizes text on a single-channel image.
type OCR interface {
	Recognize(ctx context.Context, img *image.Gray) (string, error)
}

// ImageSource loads a thumbnail reference into a bitmap.
type ImageSource interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// AudioExtractor and ASR back the transcript caption source.
type AudioExtractor interface {
	ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error
}

type ASR interface {
	Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error)
}
