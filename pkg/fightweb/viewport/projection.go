// Package viewport maps layout space to screen pixels: a padded linear
// projection followed by the pan/zoom transform.
package viewport

import (
	"math"

	"github.com/recera/fightweb/pkg/fightweb/layout"
)

// Point is a screen-space position in CSS pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a screen-space rectangle.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

const (
	// DefaultPadding keeps nodes off the surface edge.
	DefaultPadding = 40.0

	// MinExtent is the smallest usable drawing extent per axis.
	MinExtent = 1.0
)

// Projection maps layout bounds into a padded surface of Width x Height.
type Projection struct {
	Width   float64
	Height  float64
	Padding float64
}

// NewProjection returns a projection with the default padding.
func NewProjection(width, height float64) Projection {
	return Projection{Width: width, Height: height, Padding: DefaultPadding}
}

// Extent returns the usable drawing size, never below MinExtent.
func (p Projection) Extent() (w, h float64) {
	w = p.Width - 2*p.Padding
	h = p.Height - 2*p.Padding
	if !(w >= MinExtent) {
		w = MinExtent
	}
	if !(h >= MinExtent) {
		h = MinExtent
	}
	return w, h
}

// Project maps a layout-space point into surface pixels.
func (p Projection) Project(b layout.Bounds, x, y float64) Point {
	w, h := p.Extent()
	return Point{
		X: p.Padding + ratio(x, b.MinX, b.Width())*w,
		Y: p.Padding + ratio(y, b.MinY, b.Height())*h,
	}
}

// Unproject is the inverse of Project.
func (p Projection) Unproject(b layout.Bounds, pt Point) (x, y float64) {
	w, h := p.Extent()
	x = b.MinX + (pt.X-p.Padding)/w*safeRange(b.Width())
	y = b.MinY + (pt.Y-p.Padding)/h*safeRange(b.Height())
	return x, y
}

func ratio(v, min, rng float64) float64 {
	return (v - min) / safeRange(rng)
}

// safeRange guards against a zero or non-finite range that slipped past
// layout.Bounds normalization.
func safeRange(rng float64) float64 {
	if rng > 0 && !math.IsInf(rng, 0) {
		return rng
	}
	return 2
}
