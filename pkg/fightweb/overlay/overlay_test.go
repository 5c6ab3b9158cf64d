package overlay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/fightweb/pkg/fightweb/graph"
	"github.com/recera/fightweb/pkg/fightweb/interaction"
	"github.com/recera/fightweb/pkg/fightweb/viewport"
	"github.com/recera/fightweb/pkg/renderer/html"
	"github.com/recera/fightweb/pkg/vdom"
)

func TestPosition(t *testing.T) {
	container := viewport.Rect{Width: 800, Height: 600}

	tests := []struct {
		name   string
		anchor viewport.Point
		size   Size
		want   viewport.Point
	}{
		{
			name:   "below right",
			anchor: viewport.Point{X: 100, Y: 100},
			size:   Size{Width: 300, Height: 200},
			want:   viewport.Point{X: 116, Y: 116},
		},
		{
			name:   "flip horizontally near right edge",
			anchor: viewport.Point{X: 780, Y: 100},
			size:   Size{Width: 300, Height: 200},
			want:   viewport.Point{X: 464, Y: 116},
		},
		{
			name:   "flip vertically near bottom edge",
			anchor: viewport.Point{X: 100, Y: 560},
			size:   Size{Width: 300, Height: 200},
			want:   viewport.Point{X: 116, Y: 344},
		},
		{
			name:   "flip then clamp to left margin",
			anchor: viewport.Point{X: 200, Y: 100},
			size:   Size{Width: 700, Height: 100},
			want:   viewport.Point{X: 16, Y: 116},
		},
		{
			name:   "wider than container sticks to margin",
			anchor: viewport.Point{X: 400, Y: 100},
			size:   Size{Width: 900, Height: 100},
			want:   viewport.Point{X: 16, Y: 116},
		},
		{
			name:   "anchor outside container",
			anchor: viewport.Point{X: -500, Y: 2000},
			size:   Size{Width: 100, Height: 100},
			want:   viewport.Point{X: 16, Y: 484},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Position(tt.anchor, container, tt.size, DefaultOffset)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestPosition_StaysInsideContainer(t *testing.T) {
	container := viewport.Rect{Left: 10, Top: 20, Width: 800, Height: 600}
	size := Size{Width: 300, Height: 180}
	for x := -100.0; x <= 1000; x += 37 {
		for y := -100.0; y <= 800; y += 41 {
			got := Position(viewport.Point{X: x, Y: y}, container, size, DefaultOffset)
			assert.GreaterOrEqual(t, got.X, container.Left+DefaultOffset)
			assert.LessOrEqual(t, got.X+size.Width, container.Right()-DefaultOffset)
			assert.GreaterOrEqual(t, got.Y, container.Top+DefaultOffset)
			assert.LessOrEqual(t, got.Y+size.Height, container.Bottom()-DefaultOffset)
		}
	}
}

func node() graph.FighterNode {
	return graph.FighterNode{
		ID:          "f1",
		Name:        "Ana Lima",
		Division:    "Flyweight",
		Record:      "10-2-0",
		TotalFights: 12,
	}
}

func TestNewPanel_Loading(t *testing.T) {
	p := NewPanel(node(), "#e4572e", interaction.Detail{ID: "f1", Status: interaction.FetchLoading})

	assert.Equal(t, "Ana Lima", p.Name)
	assert.Equal(t, "10-2-0", p.Record)
	assert.Equal(t, loadingLine, p.StatusLine())
	assert.Empty(t, p.Upcoming)
}

func TestNewPanel_Loaded(t *testing.T) {
	d := interaction.Detail{
		ID:     "f1",
		Status: interaction.FetchLoaded,
		Data: &graph.FighterDetail{
			Record:             "11-2-0",
			CurrentStreakType:  "W",
			CurrentStreakCount: 4,
			FightHistory: []graph.FightRecord{
				{Opponent: "Bo", Result: "win"},
				{Opponent: "Cy", Result: "upcoming", EventName: "Fight Night 9"},
			},
		},
	}

	p := NewPanel(node(), "#e4572e", d)

	assert.Equal(t, "11-2-0", p.Record)
	assert.Equal(t, "Flyweight", p.Division, "payload division kept when detail has none")
	assert.Equal(t, "4-fight win streak", p.Streak)
	require.Len(t, p.Upcoming, 1)
	assert.Empty(t, p.StatusLine())

	out, err := html.RenderToString(p.Node())
	require.NoError(t, err)
	assert.Contains(t, out, "vs Cy, Fight Night 9, TBA")
}

func TestNewPanel_Failed(t *testing.T) {
	p := NewPanel(node(), "", interaction.Detail{Status: interaction.FetchFailed, Message: interaction.FailureMessage})

	assert.Equal(t, "Details unavailable", p.StatusLine())
	out, err := html.RenderToString(p.Node())
	require.NoError(t, err)
	assert.Contains(t, out, "Details unavailable")
	assert.Contains(t, out, Styles.Class("failed"))
}

func TestPanelNode_Controls(t *testing.T) {
	p := NewPanel(node(), "#e4572e", interaction.Detail{})
	p.Autofocus = true
	root := p.Node()

	var buttons []*vdom.VNode
	root.Walk(func(n *vdom.VNode) bool {
		if n.Tag == "button" {
			buttons = append(buttons, n)
		}
		return true
	})
	require.Len(t, buttons, 2)
	assert.Equal(t, ActionOpenProfile, buttons[0].Props["data-action"])
	assert.Equal(t, true, buttons[0].Props["autofocus"])
	assert.Equal(t, ActionFilterDivision, buttons[1].Props["data-action"])
	assert.Equal(t, "Flyweight", buttons[1].Props["data-division"])

	out, err := html.RenderToString(root)
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Open profile"), strings.Index(out, "Filter by division"))
	assert.Contains(t, out, `<button autofocus data-action="open-profile"`)
}

func TestPanelNode_NoDivision(t *testing.T) {
	n := node()
	n.Division = ""
	root := NewPanel(n, "", interaction.Detail{}).Node()

	assert.NotNil(t, root.Find("overlay-open"))
	assert.Nil(t, root.Find("overlay-filter"))
}

func TestPanelNode_Placement(t *testing.T) {
	p := NewPanel(node(), "", interaction.Detail{})
	p.At = viewport.Point{X: 464, Y: 116.5}

	assert.Equal(t, "left:464px;top:116.5px", p.Node().Props["style"])
}

func TestStreak(t *testing.T) {
	assert.Equal(t, "2-fight loss streak", Streak("L", 2))
	assert.Equal(t, "1-fight draw streak", Streak("draw", 1))
	assert.Empty(t, Streak("", 3))
	assert.Empty(t, Streak("win", 0))
}

func TestEstimate_GrowsWithContent(t *testing.T) {
	loading := NewPanel(node(), "", interaction.Detail{Status: interaction.FetchLoading})
	loaded := NewPanel(node(), "", interaction.Detail{
		Status: interaction.FetchLoaded,
		Data: &graph.FighterDetail{FightHistory: []graph.FightRecord{
			{Result: "next"}, {Result: "scheduled"},
		}},
	})

	a, b := Estimate(loading), Estimate(loaded)

	assert.Greater(t, b.Height, a.Height)
	assert.GreaterOrEqual(t, a.Width, estMinWidth)
	assert.LessOrEqual(t, b.Width, estMaxWidth)
}
