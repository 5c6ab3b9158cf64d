package palette

import (
	"fmt"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/fightweb/pkg/fightweb/graph"
)

func TestAssignDivisions_FirstSeenOrder(t *testing.T) {
	nodes := []graph.FighterNode{
		{ID: "1", Division: "Lightweight"},
		{ID: "2", Division: "Welterweight"},
		{ID: "3", Division: "Lightweight"},
	}

	got := AssignDivisions(nodes)

	require.Len(t, got, 2)
	assert.Equal(t, Divisions[0], got["Lightweight"])
	assert.Equal(t, Divisions[1], got["Welterweight"])
	assert.NotEqual(t, got["Lightweight"], got["Welterweight"])
}

func TestAssignDivisions_Wraparound(t *testing.T) {
	var nodes []graph.FighterNode
	for i := 0; i < len(Divisions)+2; i++ {
		nodes = append(nodes, graph.FighterNode{ID: fmt.Sprint(i), Division: fmt.Sprintf("d%d", i)})
	}
	nodes = append(nodes, graph.FighterNode{ID: "none"})

	got := AssignDivisions(nodes)

	assert.Len(t, got, len(Divisions)+2)
	assert.Equal(t, Divisions[0], got[fmt.Sprintf("d%d", len(Divisions))])
	assert.Equal(t, Divisions[1], got[fmt.Sprintf("d%d", len(Divisions)+1)])
}

func TestAssigner_DefaultColor(t *testing.T) {
	a := NewAssigner([]graph.FighterNode{{ID: "x"}})
	assert.Equal(t, DefaultColor, a.Division(""))
	assert.Empty(t, a.Legend())
}

func lightness(t *testing.T, hex string) float64 {
	t.Helper()
	c, err := colorful.Hex(hex)
	require.NoError(t, err)
	_, _, l := c.Hsl()
	return l
}

func TestRecency_Ordering(t *testing.T) {
	nodes := []graph.FighterNode{
		{ID: "old", LatestEventDate: "2015-01-01"},
		{ID: "mid", LatestEventDate: "2020-01-01"},
		{ID: "new", LatestEventDate: "2025-01-01"},
		{ID: "none"},
		{ID: "junk", LatestEventDate: "soon"},
	}

	got := Recency(Divisions[1], nodes)

	require.Len(t, got, len(nodes))
	assert.Greater(t, lightness(t, got["new"]), lightness(t, got["mid"]))
	assert.Greater(t, lightness(t, got["mid"]), lightness(t, got["old"]))
	assert.Equal(t, got["old"], got["none"], "missing dates share the dimmest tier")
	assert.Equal(t, got["none"], got["junk"])
}

func TestRecency_SubLinear(t *testing.T) {
	nodes := []graph.FighterNode{
		{ID: "a", LatestEventDate: "2000-01-01"},
		{ID: "b", LatestEventDate: "2010-01-01"},
		{ID: "c", LatestEventDate: "2020-01-01"},
	}
	r := newActivityRange(nodes)

	mid := r.level("2010-01-01")
	assert.Greater(t, mid, 0.5, "halfway in time is more than halfway in brightness")
	assert.Equal(t, 0.0, r.level("2000-01-01"))
	assert.Equal(t, 1.0, r.level("2020-01-01"))
}

func TestRecency_SingleDate(t *testing.T) {
	nodes := []graph.FighterNode{{ID: "a", LatestEventDate: "2024-05-05"}}
	r := newActivityRange(nodes)
	assert.Equal(t, 1.0, r.level("2024-05-05"))
}

func TestAssigner_NodeColorKeepsDivisionHue(t *testing.T) {
	nodes := []graph.FighterNode{
		{ID: "a", Division: "Flyweight", LatestEventDate: "2024-01-01"},
		{ID: "b", Division: "Flyweight", LatestEventDate: "2019-01-01"},
	}
	a := NewAssigner(nodes)
	colors := a.Colors(nodes)

	base, _ := colorful.Hex(a.Division("Flyweight"))
	bh, _, _ := base.Hsl()
	for id, hex := range colors {
		c, _ := colorful.Hex(hex)
		h, _, _ := c.Hsl()
		assert.InDelta(t, bh, h, 6, "node %s hue drifted", id)
	}
	assert.Equal(t, []Entry{{Division: "Flyweight", Color: Divisions[0]}}, a.Legend())
}
