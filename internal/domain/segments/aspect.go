package segments

import (
	"math"

	"github.com/forPelevin/viralcut/internal/types"
)

// VerticalRatio is the target width:height of every output clip.
const VerticalRatio = 9.0 / 16.0

type AspectOp int

const (
	AspectKeep AspectOp = iota
	AspectResize
	AspectCrop
)

func (op AspectOp) String() string {
	switch op {
	case AspectResize:
		return "resize"
	case AspectCrop:
		return "crop"
	default:
		return "keep"
	}
}

// AspectPlan describes how to bring a frame to 9:16. Height never changes.
type AspectPlan struct {
	Op     AspectOp
	Source types.Geometry
	Target types.Geometry
	// CropX is the left offset of a centered crop.
	CropX int
}

// TargetWidth returns round(h * 9/16).
func TargetWidth(h int) int {
	return int(math.Round(float64(h) * VerticalRatio))
}

// PlanVertical computes the 9:16 normalization for a w x h frame. Narrow
// frames are stretched to the target width, wide frames are center-cropped.
func PlanVertical(g types.Geometry) AspectPlan {
	tw := TargetWidth(g.Height)
	p := AspectPlan{Source: g, Target: types.Geometry{Width: tw, Height: g.Height}}
	switch {
	case g.Width < tw:
		p.Op = AspectResize
	case g.Width > tw:
		p.Op = AspectCrop
		p.CropX = (g.Width - tw) / 2
	default:
		p.Op = AspectKeep
	}
	return p
}
