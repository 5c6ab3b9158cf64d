// Package overlay builds and places the floating fighter panel that
// follows the focused node.
package overlay

import (
	"math"

	"github.com/recera/fightweb/pkg/fightweb/viewport"
)

// DefaultOffset is the gap between the anchor and the panel, and the
// margin kept from the container edges.
const DefaultOffset = 16.0

// Size is a measured or estimated panel size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Position places a panel of size next to anchor inside container. The
// panel goes below-right of the anchor, flips to the left/top when it
// would cross the right/bottom margin, and is finally clamped so it
// stays inside the container. Anchor and container share one coordinate
// space.
func Position(anchor viewport.Point, container viewport.Rect, size Size, offset float64) viewport.Point {
	if !(offset >= 0) || math.IsInf(offset, 0) {
		offset = 0
	}
	w := nonNegative(size.Width)
	h := nonNegative(size.Height)

	left := anchor.X + offset
	if left+w > container.Right()-offset {
		left = anchor.X - w - offset
	}
	top := anchor.Y + offset
	if top+h > container.Bottom()-offset {
		top = anchor.Y - h - offset
	}

	return viewport.Point{
		X: clampAxis(left, container.Left+offset, container.Right()-offset-w),
		Y: clampAxis(top, container.Top+offset, container.Bottom()-offset-h),
	}
}

// clampAxis pins v into [lo, hi]; a panel larger than the container
// sticks to the low edge.
func clampAxis(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if hi < lo {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}

func nonNegative(v float64) float64 {
	if !(v > 0) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
