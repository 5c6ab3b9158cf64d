package viewport

import (
	"math"

	"github.com/recera/fightweb/pkg/fightweb/layout"
)

// Limits bounds the zoom scale.
type Limits struct {
	Min float64 `mapstructure:"min_scale" yaml:"min_scale"`
	Max float64 `mapstructure:"max_scale" yaml:"max_scale"`
}

// DefaultLimits matches the interactive viewer's zoom range.
func DefaultLimits() Limits { return Limits{Min: 0.2, Max: 5.0} }

// Clamp restricts s to the limits.
func (l Limits) Clamp(s float64) float64 {
	if l.Min > 0 && s < l.Min {
		s = l.Min
	}
	if l.Max > 0 && s > l.Max {
		s = l.Max
	}
	return s
}

// Transform is the pan/zoom state applied after projection.
type Transform struct {
	Scale float64 `json:"scale"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Identity is the unpanned, unzoomed transform.
func Identity() Transform { return Transform{Scale: 1} }

func (t Transform) scale() float64 {
	if t.Scale <= 0 || math.IsNaN(t.Scale) {
		return 1
	}
	return t.Scale
}

// Apply maps a projected point to final screen pixels.
func (t Transform) Apply(p Point) Point {
	s := t.scale()
	return Point{X: p.X*s + t.X, Y: p.Y*s + t.Y}
}

// Invert maps a screen point back to projected space.
func (t Transform) Invert(p Point) Point {
	s := t.scale()
	return Point{X: (p.X - t.X) / s, Y: (p.Y - t.Y) / s}
}

// ZoomAt scales by factor keeping the point under pointer fixed.
func (t Transform) ZoomAt(pointer Point, factor float64, lim Limits) Transform {
	old := t.scale()
	next := lim.Clamp(old * factor)
	k := next / old
	return Transform{
		Scale: next,
		X:     pointer.X - k*(pointer.X-t.X),
		Y:     pointer.Y - k*(pointer.Y-t.Y),
	}
}

// PanBy translates by a screen delta.
func (t Transform) PanBy(dx, dy float64) Transform {
	t.X += dx
	t.Y += dy
	return t
}

// WheelFactor converts a wheel delta into a zoom factor.
func WheelFactor(deltaY float64) float64 {
	return 1.0 - math.Max(-0.5, math.Min(0.5, deltaY/500.0))
}

// Fit returns a transform that frames the projected bounds inside the
// surface with the given padding.
func Fit(b layout.Bounds, p Projection, padding float64) Transform {
	tl := p.Project(b, b.MinX, b.MinY)
	br := p.Project(b, b.MaxX, b.MaxY)
	gw := br.X - tl.X
	gh := br.Y - tl.Y
	if gw <= 0 {
		gw = 1
	}
	if gh <= 0 {
		gh = 1
	}
	sx := (p.Width - 2*padding) / gw
	sy := (p.Height - 2*padding) / gh
	s := math.Min(sx, sy)
	if s <= 0 || math.IsNaN(s) {
		s = 1
	}
	return Transform{
		Scale: s,
		X:     p.Width*0.5 - (tl.X+gw*0.5)*s,
		Y:     p.Height*0.5 - (tl.Y+gh*0.5)*s,
	}
}

// Focus centers the projected point at the given scale.
func Focus(projected Point, p Projection, scale float64) Transform {
	if scale <= 0 {
		scale = 1
	}
	return Transform{
		Scale: scale,
		X:     p.Width*0.5 - projected.X*scale,
		Y:     p.Height*0.5 - projected.Y*scale,
	}
}
