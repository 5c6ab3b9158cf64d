// Package layout computes a deterministic force-directed placement of the
// rivalry network. Compute is a pure function: all simulation state lives
// in index-addressed working slices that are discarded on return.
package layout

import (
	"math"
	"sort"

	"github.com/recera/fightweb/pkg/fightweb/graph"
)

// Node is a positioned fighter.
type Node struct {
	ID        string   `json:"id" yaml:"id"`
	X         float64  `json:"x" yaml:"x"`
	Y         float64  `json:"y" yaml:"y"`
	Degree    int      `json:"degree" yaml:"degree"`
	Neighbors []string `json:"neighbors" yaml:"neighbors"`
}

// Result is the immutable output of Compute.
type Result struct {
	Nodes  []Node              `json:"nodes" yaml:"nodes"`
	Edges  []graph.RivalryEdge `json:"edges" yaml:"edges"`
	Bounds Bounds              `json:"bounds" yaml:"bounds"`
}

// Index maps node id to its position in Nodes.
func (r Result) Index() map[string]int {
	idx := make(map[string]int, len(r.Nodes))
	for i, n := range r.Nodes {
		if _, ok := idx[n.ID]; !ok {
			idx[n.ID] = i
		}
	}
	return idx
}

// Positions returns id -> point, suitable as Options.Initial for a warm start.
func (r Result) Positions() map[string]Point {
	out := make(map[string]Point, len(r.Nodes))
	for _, n := range r.Nodes {
		out[n.ID] = Point{X: n.X, Y: n.Y}
	}
	return out
}

// body is the per-node working state of one simulation run.
type body struct {
	x, y   float64
	vx, vy float64
	ax, ay float64
}

// spring is a valid edge resolved to node indexes.
type spring struct{ s, t int }

// Compute lays out nodes and edges. Edges with an unknown endpoint or
// joining a node to itself are dropped. Identical input always produces
// identical output.
func Compute(nodes []graph.FighterNode, edges []graph.RivalryEdge, opts *Options) Result {
	n := len(nodes)
	if n == 0 {
		return Result{
			Nodes:  []Node{},
			Edges:  []graph.RivalryEdge{},
			Bounds: DefaultBounds(),
		}
	}
	o := opts.withDefaults(n)

	index := make(map[string]int, n)
	for i, node := range nodes {
		if _, dup := index[node.ID]; !dup {
			index[node.ID] = i
		}
	}

	valid, springs, adjacency := filterEdges(edges, index)
	bodies := seed(nodes, o)

	for it := 0; it < o.Iterations; it++ {
		step(bodies, springs, o)
	}

	out := make([]Node, n)
	for i, node := range nodes {
		neighbors := make([]string, 0, len(adjacency[node.ID]))
		for id := range adjacency[node.ID] {
			neighbors = append(neighbors, id)
		}
		sort.Strings(neighbors)
		out[i] = Node{
			ID:        node.ID,
			X:         bodies[i].x,
			Y:         bodies[i].y,
			Degree:    len(neighbors),
			Neighbors: neighbors,
		}
	}

	return Result{Nodes: out, Edges: valid, Bounds: boundsOf(out)}
}

// filterEdges keeps edges whose endpoints exist and differ, and derives
// the id-keyed neighbor sets from the kept edges only.
func filterEdges(edges []graph.RivalryEdge, index map[string]int) ([]graph.RivalryEdge, []spring, map[string]map[string]struct{}) {
	valid := make([]graph.RivalryEdge, 0, len(edges))
	springs := make([]spring, 0, len(edges))
	adjacency := make(map[string]map[string]struct{})

	link := func(a, b string) {
		set, ok := adjacency[a]
		if !ok {
			set = make(map[string]struct{})
			adjacency[a] = set
		}
		set[b] = struct{}{}
	}

	for _, e := range edges {
		si, okS := index[e.Source]
		ti, okT := index[e.Target]
		if !okS || !okT || e.Source == e.Target {
			continue
		}
		valid = append(valid, e)
		springs = append(springs, spring{s: si, t: ti})
		link(e.Source, e.Target)
		link(e.Target, e.Source)
	}
	return valid, springs, adjacency
}

// seed places node i at angle i/n*2π on a circle whose radius grows with n.
func seed(nodes []graph.FighterNode, o Options) []body {
	n := len(nodes)
	radius := 40 + 12*float64(n)
	bodies := make([]body, n)
	for i, node := range nodes {
		if p, ok := o.Initial[node.ID]; ok && finite(p.X) && finite(p.Y) {
			bodies[i].x, bodies[i].y = p.X, p.Y
			continue
		}
		angle := float64(i) / float64(n) * 2 * math.Pi
		bodies[i].x = radius * math.Cos(angle)
		bodies[i].y = radius * math.Sin(angle)
	}
	return bodies
}

// step runs one relaxation iteration in place.
func step(bodies []body, springs []spring, o Options) {
	for i := range bodies {
		bodies[i].ax, bodies[i].ay = 0, 0
	}

	// Repulsion between every unordered pair
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			dx := bodies[j].x - bodies[i].x
			dy := bodies[j].y - bodies[i].y
			dist2 := dx*dx + dy*dy + distanceEpsilon
			force := o.Repulsion / dist2
			inv := 1 / math.Sqrt(dist2)
			fx := force * dx * inv
			fy := force * dy * inv
			bodies[i].ax -= fx
			bodies[i].ay -= fy
			bodies[j].ax += fx
			bodies[j].ay += fy
		}
	}

	// Springs toward the ideal length
	for _, sp := range springs {
		a, b := &bodies[sp.s], &bodies[sp.t]
		dx := b.x - a.x
		dy := b.y - a.y
		dist := math.Sqrt(dx*dx + dy*dy + distanceEpsilon)
		f := o.SpringStrength * (dist - o.IdealLength)
		fx := f * dx / dist
		fy := f * dy / dist
		a.ax += fx
		a.ay += fy
		b.ax -= fx
		b.ay -= fy
	}

	for i := range bodies {
		b := &bodies[i]
		// Pull toward the origin
		b.ax -= b.x * o.CenterPull
		b.ay -= b.y * o.CenterPull

		b.vx = (b.vx + b.ax*o.Step) * o.Damping
		b.vy = (b.vy + b.ay*o.Step) * o.Damping
		if speed := math.Hypot(b.vx, b.vy); speed > o.MaxSpeed {
			k := o.MaxSpeed / speed
			b.vx *= k
			b.vy *= k
		}
		b.x += b.vx * o.Step
		b.y += b.vy * o.Step
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
