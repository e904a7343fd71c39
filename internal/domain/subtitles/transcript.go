package subtitles

import (
	"strings"

	"github.com/forPelevin/viralcut/internal/types"
)

// FromTranscript turns transcript segments into source-timeline captions.
func FromTranscript(tr types.Transcript) []types.Caption {
	var out []types.Caption
	for _, s := range tr.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" || s.End <= s.Start {
			continue
		}
		out = append(out, types.Caption{Text: text, StartSec: s.Start, EndSec: s.End})
	}
	return out
}
