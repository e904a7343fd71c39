package virality

import (
	"sort"

	"github.com/forPelevin/viralcut/internal/types"
)

// Rank returns a new slice ordered by ViralScore descending. Equal scores
// keep their input order, so Rank(Rank(xs)) == Rank(xs).
func Rank(cands []types.CandidateVideo) []types.CandidateVideo {
	out := make([]types.CandidateVideo, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ViralScore > out[j].ViralScore
	})
	return out
}

// TopK returns the first k ranked candidates. clamped reports whether k
// exceeded the available count.
func TopK(ranked []types.CandidateVideo, k int) (top []types.CandidateVideo, clamped bool) {
	if k < 0 {
		k = 0
	}
	if k > len(ranked) {
		return ranked, true
	}
	return ranked[:k], false
}
