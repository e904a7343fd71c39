package segments

import (
	"fmt"
	"math"

	"github.com/forPelevin/viralcut/internal/types"
)

// Compute splits [0, duration) into equal-length spans. The count is
// max(1, floor(duration/minSeg)), so the remainder is spread over all spans
// instead of being left as a short tail.
//
// A duration below minSeg yields an empty slice and a nil error: the video is
// too short to cut. An error is returned only for invalid arguments.
func Compute(duration, minSeg float64) ([]types.Span, error) {
	if !(minSeg > 0) || math.IsInf(minSeg, 0) {
		return nil, fmt.Errorf("min segment must be > 0, got %v", minSeg)
	}
	if !(duration >= 0) || math.IsInf(duration, 0) {
		return nil, fmt.Errorf("duration must be a finite value >= 0, got %v", duration)
	}
	if duration < minSeg {
		return []types.Span{}, nil
	}

	n := int(math.Floor(duration / minSeg))
	if n < 1 {
		n = 1
	}
	step := duration / float64(n)

	out := make([]types.Span, 0, n)
	for i := 0; i < n; i++ {
		start := float64(i) * step
		end := float64(i+1) * step
		// the last span ends exactly at duration regardless of rounding
		if i == n-1 || end > duration {
			end = duration
		}
		out = append(out, types.Span{StartSec: start, EndSec: end})
	}
	return out, nil
}

// TooShort reports whether a video of the given duration would be skipped.
func TooShort(duration, minSeg float64) bool { return duration < minSeg }
