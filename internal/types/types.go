package types

// CandidateVideo is one search result. ViralScore is attached by the
// virality package and is not part of the provider payload.
type CandidateVideo struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	ViewCount    int64  `json:"view_count"`
	LikeCount    int64  `json:"like_count"`
	DislikeCount int64  `json:"dislike_count"`
	CommentCount int64  `json:"comment_count"`
	ShareCount   int64  `json:"share_count"`
	ThumbnailRef string `json:"thumbnail_ref"`

	ViralScore float64 `json:"viral_score"`
}

// VideoResource is a fetched source file. Release removes it from disk.
type VideoResource struct {
	LocalPath       string
	DurationSeconds float64
	Width           int
	Height          int
}

// Span is a half-open interval [StartSec, EndSec) on a video timeline.
type Span struct {
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
}

func (s Span) Len() float64 { return s.EndSec - s.StartSec }

type Segment struct {
	Span
	OutputPath string `json:"file"`
}

type Caption struct {
	Text     string  `json:"text" yaml:"text"`
	StartSec float64 `json:"start_sec" yaml:"start"`
	EndSec   float64 `json:"end_sec" yaml:"end"`
}

// Geometry is a frame size in pixels.
type Geometry struct {
	Width  int
	Height int
}

// Transcript is the whisper.cpp JSON shape.
type Transcript struct {
	Segments []TranscriptSegment `json:"segments"`
}

type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}
