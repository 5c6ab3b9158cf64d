package layout

// Bounds is an axis-aligned box in layout space. Width and Height are
// always strictly positive.
type Bounds struct {
	MinX float64 `json:"min_x" yaml:"min_x"`
	MinY float64 `json:"min_y" yaml:"min_y"`
	MaxX float64 `json:"max_x" yaml:"max_x"`
	MaxY float64 `json:"max_y" yaml:"max_y"`
}

// DefaultBounds is used for empty layouts.
func DefaultBounds() Bounds {
	return Bounds{MinX: -boundsPad, MinY: -boundsPad, MaxX: boundsPad, MaxY: boundsPad}
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Center returns the midpoint of the box.
func (b Bounds) Center() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

func boundsOf(nodes []Node) Bounds {
	if len(nodes) == 0 {
		return DefaultBounds()
	}
	b := Bounds{MinX: nodes[0].X, MinY: nodes[0].Y, MaxX: nodes[0].X, MaxY: nodes[0].Y}
	for _, n := range nodes[1:] {
		if n.X < b.MinX {
			b.MinX = n.X
		}
		if n.Y < b.MinY {
			b.MinY = n.Y
		}
		if n.X > b.MaxX {
			b.MaxX = n.X
		}
		if n.Y > b.MaxY {
			b.MaxY = n.Y
		}
	}
	return b.normalized()
}

// normalized widens zero-range axes and replaces non-finite ones.
func (b Bounds) normalized() Bounds {
	if !finite(b.MinX) || !finite(b.MaxX) || !finite(b.Width()) {
		b.MinX, b.MaxX = -boundsPad, boundsPad
	}
	if !finite(b.MinY) || !finite(b.MaxY) || !finite(b.Height()) {
		b.MinY, b.MaxY = -boundsPad, boundsPad
	}
	if b.Width() <= 0 {
		b.MinX -= boundsPad
		b.MaxX += boundsPad
	}
	if b.Height() <= 0 {
		b.MinY -= boundsPad
		b.MaxY += boundsPad
	}
	return b
}
