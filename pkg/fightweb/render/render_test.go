package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/fightweb/pkg/fightweb/graph"
	"github.com/recera/fightweb/pkg/fightweb/layout"
	"github.com/recera/fightweb/pkg/fightweb/palette"
	"github.com/recera/fightweb/pkg/fightweb/viewport"
)

func scene(t *testing.T) Scene {
	t.Helper()
	nodes := []graph.FighterNode{
		{ID: "a", Name: "Ana", Division: "Flyweight", Record: "10-2-0", TotalFights: 12},
		{ID: "b", Name: "Bo", Division: "Flyweight", TotalFights: 4},
		{ID: "c", Name: "Cy", Division: "Bantamweight", TotalFights: 100},
		{ID: "d", Name: "Di"},
	}
	edges := []graph.RivalryEdge{
		{Source: "a", Target: "b", Fights: 2},
		{Source: "b", Target: "c", Fights: 1},
	}
	byID := make(map[string]graph.FighterNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	pal := palette.NewAssigner(nodes)
	return Scene{
		Layout:     layout.Compute(nodes, edges, nil),
		Nodes:      byID,
		Colors:     pal.Colors(nodes),
		Projection: viewport.NewProjection(800, 600),
		Transform:  viewport.Identity(),
		Legend:     pal.Legend(),
	}
}

func emphasis(f Frame) map[string]Emphasis {
	out := map[string]Emphasis{}
	for _, n := range f.Nodes {
		out[n.ID] = n.Emphasis
	}
	return out
}

func TestBuild_NoFocus(t *testing.T) {
	f := Surface{}.Build(scene(t))

	require.Len(t, f.Nodes, 4)
	require.Len(t, f.Edges, 2)
	for _, n := range f.Nodes {
		assert.Equal(t, Normal, n.Emphasis, n.ID)
		assert.GreaterOrEqual(t, n.X, 40.0)
		assert.LessOrEqual(t, n.X, 760.0)
	}
	for _, e := range f.Edges {
		assert.Equal(t, Normal, e.Emphasis)
	}
}

func TestBuild_FocusEmphasis(t *testing.T) {
	sc := scene(t)
	sc.Focus = "a"
	sc.Selected = "a"

	f := Surface{}.Build(sc)

	assert.Equal(t, map[string]Emphasis{
		"a": Emphasized,
		"b": Emphasized,
		"c": Dimmed,
		"d": Dimmed,
	}, emphasis(f))
	assert.Equal(t, Active, f.Edges[0].Emphasis)
	assert.Equal(t, Dimmed, f.Edges[1].Emphasis)

	a, ok := f.Node("a")
	require.True(t, ok)
	assert.True(t, a.Selected)
	assert.NotNil(t, f.Root.Find("ring:a"))
	assert.Nil(t, f.Root.Find("ring:b"))
}

func TestBuild_UnknownFocusIgnored(t *testing.T) {
	sc := scene(t)
	sc.Focus = "zz"

	for _, e := range emphasis(Surface{}.Build(sc)) {
		assert.Equal(t, Normal, e)
	}
}

func TestBuild_TransformApplied(t *testing.T) {
	sc := scene(t)
	plain := Surface{}.Build(sc)
	sc.Transform = viewport.Transform{Scale: 2, X: 10, Y: -5}
	moved := Surface{}.Build(sc)

	for i := range plain.Nodes {
		assert.InDelta(t, plain.Nodes[i].X*2+10, moved.Nodes[i].X, 1e-9)
		assert.InDelta(t, plain.Nodes[i].Y*2-5, moved.Nodes[i].Y, 1e-9)
		assert.Equal(t, plain.Nodes[i].Radius, moved.Nodes[i].Radius)
	}
}

func TestNodeRadiusAndEdgeWidth(t *testing.T) {
	assert.Equal(t, 4.0, NodeRadius(0))
	assert.Equal(t, 4.0, NodeRadius(-3))
	assert.InDelta(t, 12.0, NodeRadius(16), 1e-9)
	assert.Equal(t, 18.0, NodeRadius(100))

	assert.Equal(t, 1.0, EdgeWidth(1))
	assert.Equal(t, 1.0, EdgeWidth(0))
	assert.InDelta(t, 3.0, EdgeWidth(4), 1e-9)
}

func TestHitTest(t *testing.T) {
	f := Frame{Nodes: []RenderNode{
		{ID: "under", X: 100, Y: 100, Radius: 10},
		{ID: "over", X: 105, Y: 100, Radius: 10},
	}}

	n, ok := HitTest(f, viewport.Point{X: 103, Y: 100})
	require.True(t, ok)
	assert.Equal(t, "over", n.ID)

	n, ok = HitTest(f, viewport.Point{X: 92, Y: 100})
	require.True(t, ok)
	assert.Equal(t, "under", n.ID)

	_, ok = HitTest(f, viewport.Point{X: 300, Y: 300})
	assert.False(t, ok)
}

func TestRenderSVG(t *testing.T) {
	sc := scene(t)
	sc.Focus = "b"

	out, err := RenderSVG(Surface{}.Build(sc))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<svg "))
	assert.Contains(t, out, "<style>")
	assert.Contains(t, out, `aria-label="Ana, Flyweight, 10-2-0"`)
	assert.Contains(t, out, `tabindex="0"`)
	assert.Contains(t, out, "Ana vs Bo: 2 fights")
	assert.Contains(t, out, Styles.Class("dimmed"))
	assert.Contains(t, out, "Bantamweight")

	again, err := RenderSVG(Surface{}.Build(sc))
	require.NoError(t, err)
	assert.Equal(t, out, again, "render is deterministic")
}

func TestLabels(t *testing.T) {
	sc := scene(t)
	f := Surface{}.Build(sc)
	assert.Nil(t, f.Root.Find("label:a"))

	sc.Focus = "a"
	f = Surface{}.Build(sc)
	assert.NotNil(t, f.Root.Find("label:a"))
	assert.NotNil(t, f.Root.Find("label:b"))
	assert.Nil(t, f.Root.Find("label:c"))

	sc.Focus = ""
	sc.Transform = viewport.Transform{Scale: 2}
	f = Surface{}.Build(sc)
	assert.NotNil(t, f.Root.Find("label:d"))
}

func TestRenderPage(t *testing.T) {
	f := Surface{}.Build(scene(t))

	out, err := RenderPage(Page{Title: "Flyweights", Frame: f, Script: "console.log('ok')"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>\n<html lang=\"en\">"))
	assert.Contains(t, out, "<title>Flyweights</title>")
	assert.Contains(t, out, `id="fightweb-overlay"`)
	assert.Contains(t, out, "console.log('ok')")
}
