package layout

// Point is a position in layout space.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Options tunes the relaxation. Zero values fall back to defaults.
type Options struct {
	// Physics
	Iterations     int     // default clamp(60+4n, 60, 300)
	Repulsion      float64 // default 2000
	IdealLength    float64 // default 80
	SpringStrength float64 // default 0.05
	Damping        float64 // default 0.85
	CenterPull     float64 // default 0.01; negative disables
	Step           float64 // default 0.5
	MaxSpeed       float64 // default 200

	// Initial warm-starts nodes that persist across payloads. Ids missing
	// here are seeded on the circle.
	Initial map[string]Point
}

const (
	minIterations = 60
	maxIterations = 300

	// distanceEpsilon keeps coincident pairs from producing infinite force.
	distanceEpsilon = 0.01

	// boundsPad widens a degenerate axis of the bounding box.
	boundsPad = 1.0
)

// DefaultIterations scales the iteration count with the node count and
// caps it so the synchronous relaxation stays bounded.
func DefaultIterations(n int) int {
	it := minIterations + 4*n
	if it > maxIterations {
		it = maxIterations
	}
	return it
}

func (o *Options) withDefaults(n int) Options {
	d := Options{
		Iterations:     DefaultIterations(n),
		Repulsion:      2000,
		IdealLength:    80,
		SpringStrength: 0.05,
		Damping:        0.85,
		CenterPull:     0.01,
		Step:           0.5,
		MaxSpeed:       200,
	}
	if o == nil {
		return d
	}
	if o.Iterations > 0 {
		d.Iterations = o.Iterations
		if d.Iterations > maxIterations {
			d.Iterations = maxIterations
		}
	}
	if o.Repulsion != 0 {
		d.Repulsion = o.Repulsion
	}
	if o.IdealLength != 0 {
		d.IdealLength = o.IdealLength
	}
	if o.SpringStrength != 0 {
		d.SpringStrength = o.SpringStrength
	}
	if o.Damping > 0 && o.Damping < 1 {
		d.Damping = o.Damping
	}
	// Allow the center pull to be switched off explicitly
	if o.CenterPull < 0 {
		d.CenterPull = 0
	} else if o.CenterPull > 0 {
		d.CenterPull = o.CenterPull
	}
	if o.Step > 0 {
		d.Step = o.Step
	}
	if o.MaxSpeed > 0 {
		d.MaxSpeed = o.MaxSpeed
	}
	d.Initial = o.Initial
	return d
}
