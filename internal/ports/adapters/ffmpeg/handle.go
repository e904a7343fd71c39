package ffmpeg

import (
	"fmt"

	"github.com/forPelevin/viralcut/internal/ports"
	"github.com/forPelevin/viralcut/internal/types"
)

// Handle is a source file plus an edit list. Edits copy the handle; the
// receiver is never modified.
type Handle struct {
	src      string
	duration float64
	size     types.Geometry

	trimmed    bool
	start, end float64

	filters  []string
	overlays []types.Caption
}

func (h Handle) Path() string             { return h.src }
func (h Handle) DurationSeconds() float64 { return h.duration }
func (h Handle) Size() types.Geometry     { return h.size }

// Trim keeps [start, end) of the current timeline.
func (h Handle) Trim(start, end float64) ports.Clip {
	if start < 0 {
		start = 0
	}
	if end > h.duration {
		end = h.duration
	}
	n := h.clone()
	base := 0.0
	if h.trimmed {
		base = h.start
	}
	n.trimmed = true
	n.start = base + start
	n.end = base + end
	n.duration = end - start
	// overlays are clip-local; drop those that no longer fit
	n.overlays = nil
	for _, o := range h.overlays {
		o.StartSec -= start
		o.EndSec -= start
		if o.EndSec <= 0 || o.StartSec >= n.duration {
			continue
		}
		n.overlays = append(n.overlays, o)
	}
	return n
}

func (h Handle) Crop(width, height, x, y int) ports.Clip {
	n := h.clone()
	n.filters = append(n.filters, fmt.Sprintf("crop=%d:%d:%d:%d", width, height, x, y))
	n.size = types.Geometry{Width: width, Height: height}
	return n
}

func (h Handle) Resize(width, height int) ports.Clip {
	n := h.clone()
	n.filters = append(n.filters, fmt.Sprintf("scale=%d:%d", width, height), "setsar=1")
	n.size = types.Geometry{Width: width, Height: height}
	return n
}

// OverlayText adds a centered caption shown during [start, end) of the clip.
func (h Handle) OverlayText(text string, start, end float64) ports.Clip {
	n := h.clone()
	n.overlays = append(n.overlays, types.Caption{Text: text, StartSec: start, EndSec: end})
	return n
}

func (h Handle) clone() Handle {
	n := h
	n.filters = append([]string(nil), h.filters...)
	n.overlays = append([]types.Caption(nil), h.overlays...)
	return n
}
