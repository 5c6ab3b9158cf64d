package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/fightweb/pkg/fightweb/graph"
)

func fighters(ids ...string) []graph.FighterNode {
	out := make([]graph.FighterNode, len(ids))
	for i, id := range ids {
		out[i] = graph.FighterNode{ID: id, Name: id, TotalFights: i + 1}
	}
	return out
}

func edge(s, t string, fights int) graph.RivalryEdge {
	return graph.RivalryEdge{Source: s, Target: t, Fights: fights}
}

func TestCompute_Chain(t *testing.T) {
	res := Compute(fighters("A", "B", "C"), []graph.RivalryEdge{edge("A", "B", 3), edge("B", "C", 1)}, nil)

	require.Len(t, res.Nodes, 3)
	require.Len(t, res.Edges, 2)

	idx := res.Index()
	assert.Equal(t, 1, res.Nodes[idx["A"]].Degree)
	assert.Equal(t, 2, res.Nodes[idx["B"]].Degree)
	assert.Equal(t, 1, res.Nodes[idx["C"]].Degree)
	assert.Equal(t, []string{"A", "C"}, res.Nodes[idx["B"]].Neighbors)
}

func TestCompute_SingleNode(t *testing.T) {
	res := Compute(fighters("A"), nil, nil)

	require.Len(t, res.Nodes, 1)
	assert.Empty(t, res.Edges)
	assert.True(t, finite(res.Nodes[0].X))
	assert.True(t, finite(res.Nodes[0].Y))
	assert.Greater(t, res.Bounds.Width(), 0.0)
	assert.Greater(t, res.Bounds.Height(), 0.0)
}

func TestCompute_DropsInvalidEdges(t *testing.T) {
	tests := []struct {
		name  string
		edges []graph.RivalryEdge
		want  int
	}{
		{"unknown target", []graph.RivalryEdge{edge("A", "Z", 2)}, 0},
		{"unknown source", []graph.RivalryEdge{edge("Z", "B", 2)}, 0},
		{"self loop", []graph.RivalryEdge{edge("A", "A", 1)}, 0},
		{"mixed", []graph.RivalryEdge{edge("A", "Z", 2), edge("A", "B", 1), edge("B", "B", 4)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res Result
			require.NotPanics(t, func() {
				res = Compute(fighters("A", "B"), tt.edges, nil)
			})
			assert.Len(t, res.Edges, tt.want)
			assert.Len(t, res.Nodes, 2)
		})
	}
}

func TestCompute_Empty(t *testing.T) {
	res := Compute(nil, []graph.RivalryEdge{edge("A", "B", 1)}, nil)

	assert.Empty(t, res.Nodes)
	assert.Empty(t, res.Edges)
	assert.Equal(t, DefaultBounds(), res.Bounds)
	assert.Greater(t, res.Bounds.Width(), 0.0)
}

func TestCompute_Deterministic(t *testing.T) {
	nodes := fighters("a", "b", "c", "d", "e", "f", "g")
	edges := []graph.RivalryEdge{
		edge("a", "b", 1), edge("b", "c", 2), edge("c", "a", 1),
		edge("d", "e", 5), edge("f", "g", 1), edge("g", "a", 3),
	}

	first := Compute(nodes, edges, nil)
	second := Compute(nodes, edges, nil)

	require.Equal(t, len(first.Nodes), len(second.Nodes))
	for i := range first.Nodes {
		if math.Float64bits(first.Nodes[i].X) != math.Float64bits(second.Nodes[i].X) ||
			math.Float64bits(first.Nodes[i].Y) != math.Float64bits(second.Nodes[i].Y) {
			t.Fatalf("node %s moved between runs: %v vs %v", first.Nodes[i].ID, first.Nodes[i], second.Nodes[i])
		}
	}
	assert.Equal(t, first.Bounds, second.Bounds)
}

func TestCompute_CoincidentNodesStayFinite(t *testing.T) {
	nodes := fighters("a", "b", "c")
	opts := &Options{Initial: map[string]Point{"a": {}, "b": {}, "c": {}}}

	res := Compute(nodes, []graph.RivalryEdge{edge("a", "b", 1)}, opts)

	for _, n := range res.Nodes {
		assert.True(t, finite(n.X) && finite(n.Y), "node %s not finite", n.ID)
	}
	assert.Greater(t, res.Bounds.Width(), 0.0)
	assert.Greater(t, res.Bounds.Height(), 0.0)
}

func TestCompute_DegreeMatchesNeighbors(t *testing.T) {
	nodes := fighters("a", "b", "c", "d")
	edges := []graph.RivalryEdge{
		edge("a", "b", 1), edge("b", "a", 2), // same pair twice
		edge("a", "c", 1), edge("d", "x", 1),
	}

	res := Compute(nodes, edges, nil)

	assert.Len(t, res.Edges, 3)
	for _, n := range res.Nodes {
		assert.Equal(t, len(n.Neighbors), n.Degree, "node %s", n.ID)
	}
	assert.Equal(t, 2, res.Nodes[res.Index()["a"]].Degree)
	assert.Equal(t, 0, res.Nodes[res.Index()["d"]].Degree)
}

func TestCompute_CountsInvariant(t *testing.T) {
	for n := 1; n <= 12; n += 3 {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			ids := make([]string, n)
			for i := range ids {
				ids[i] = fmt.Sprintf("f%d", i)
			}
			var edges []graph.RivalryEdge
			for i := 1; i < n; i++ {
				edges = append(edges, edge(ids[i-1], ids[i], i))
			}
			res := Compute(fighters(ids...), edges, nil)
			assert.Len(t, res.Nodes, n)
			assert.Len(t, res.Edges, len(edges))
		})
	}
}

func TestCompute_SpringsPullLinkedNodesCloser(t *testing.T) {
	nodes := fighters("a", "b", "c", "d", "e", "f")
	res := Compute(nodes, []graph.RivalryEdge{edge("a", "d", 4)}, nil)
	idx := res.Index()

	dist := func(x, y string) float64 {
		p, q := res.Nodes[idx[x]], res.Nodes[idx[y]]
		return math.Hypot(p.X-q.X, p.Y-q.Y)
	}
	// a and d start on opposite sides of the seed circle
	assert.Less(t, dist("a", "d"), dist("b", "e"))
}

func TestOptions_WithDefaults(t *testing.T) {
	var nilOpts *Options
	d := nilOpts.withDefaults(10)
	assert.Equal(t, DefaultIterations(10), d.Iterations)
	assert.Equal(t, 0.85, d.Damping)

	d = (&Options{Iterations: 10_000, CenterPull: -1, Damping: 1.5}).withDefaults(10)
	assert.Equal(t, maxIterations, d.Iterations)
	assert.Equal(t, 0.0, d.CenterPull)
	assert.Equal(t, 0.85, d.Damping)

	assert.Equal(t, minIterations, DefaultIterations(0))
	assert.Equal(t, maxIterations, DefaultIterations(10_000))
}

func TestWarmStartKeepsDeterminism(t *testing.T) {
	nodes := fighters("a", "b", "c")
	edges := []graph.RivalryEdge{edge("a", "b", 1)}
	prev := Compute(nodes, edges, nil)

	opts := &Options{Initial: prev.Positions()}
	one := Compute(append(nodes, graph.FighterNode{ID: "d"}), edges, opts)
	two := Compute(append(nodes, graph.FighterNode{ID: "d"}), edges, opts)

	assert.Equal(t, one, two)
}
