package types

type Outcome string

const (
	OutcomeSucceeded          Outcome = "succeeded"
	OutcomeSkippedTooShort    Outcome = "skipped-too-short"
	OutcomeSkippedWatermarked Outcome = "skipped-watermarked"
	OutcomeFailed             Outcome = "failed"
)

// Report is the result of one query. It is written as report.json.
type Report struct {
	RunID        string            `json:"run_id"`
	Query        string            `json:"query"`
	RequestedTop int               `json:"requested_top"`
	ProcessedTop int               `json:"processed_top"`
	ClampNote    string            `json:"clamp_note,omitempty"`
	Candidates   []CandidateReport `json:"candidates"`
	Unscored     []UnscoredReport  `json:"unscored,omitempty"`
}

type CandidateReport struct {
	Rank              int             `json:"rank"`
	Title             string          `json:"title"`
	URL               string          `json:"url"`
	ViewCount         int64           `json:"view_count"`
	ViralScore        float64         `json:"viral_score"`
	LikelyWatermarked bool            `json:"likely_watermarked"`
	Outcome           Outcome         `json:"outcome"`
	Reason            string          `json:"reason,omitempty"`
	DurationSec       float64         `json:"duration_sec,omitempty"`
	Segments          []SegmentReport `json:"segments,omitempty"`
}

// SegmentPaths returns the files of segments that were written.
func (c CandidateReport) SegmentPaths() []string {
	var out []string
	for _, s := range c.Segments {
		if s.Error == "" {
			out = append(out, s.File)
		}
	}
	return out
}

type SegmentReport struct {
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
	File     string  `json:"file,omitempty"`
	Error    string  `json:"error,omitempty"`
}

type UnscoredReport struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Reason string `json:"reason"`
}
