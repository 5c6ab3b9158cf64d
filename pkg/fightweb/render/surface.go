// Package render turns a laid-out graph into a vdom tree of SVG
// primitives with the focus emphasis applied, and writes it as markup.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/recera/fightweb/pkg/fightweb/graph"
	"github.com/recera/fightweb/pkg/fightweb/layout"
	"github.com/recera/fightweb/pkg/fightweb/palette"
	"github.com/recera/fightweb/pkg/fightweb/viewport"
	"github.com/recera/fightweb/pkg/styling"
	"github.com/recera/fightweb/pkg/vdom"
)

const (
	minRadius = 4.0
	maxRadius = 18.0

	// DefaultLabelScale is the zoom at which every node is labelled.
	DefaultLabelScale = 1.5
)

// Styles is the surface stylesheet.
var Styles = styling.Scope(`
.surface { display: block; background: #0d0f13; touch-action: none; user-select: none; }
.background { fill: transparent; cursor: grab; }
.edge { stroke: #59606b; stroke-opacity: 0.55; stroke-linecap: round; }
.edge.active { stroke: #d8dbe2; stroke-opacity: 0.95; }
.edge.dimmed { stroke-opacity: 0.12; }
.node { stroke: #0d0f13; stroke-width: 1.5px; cursor: pointer; }
.node.emphasized { stroke: #f4f5f7; }
.node.dimmed { opacity: 0.25; }
.node:focus { outline: none; stroke: #ffd166; stroke-width: 3px; }
.ring { fill: none; stroke: #ffd166; stroke-width: 2px; pointer-events: none; }
.label { fill: #c9ccd3; font: 11px system-ui, sans-serif; pointer-events: none; }
.legend { fill: #c9ccd3; font: 11px system-ui, sans-serif; }
`)

// Emphasis is the visual state of a node or edge relative to the focus.
type Emphasis uint8

const (
	Normal Emphasis = iota
	Emphasized
	Active
	Dimmed
)

func (e Emphasis) String() string {
	switch e {
	case Emphasized:
		return "emphasized"
	case Active:
		return "active"
	case Dimmed:
		return "dimmed"
	default:
		return "normal"
	}
}

func (e Emphasis) class() string {
	if e == Normal {
		return ""
	}
	return e.String()
}

// Scene is everything one render pass needs.
type Scene struct {
	Layout     layout.Result
	Nodes      map[string]graph.FighterNode
	Colors     map[string]string
	Projection viewport.Projection
	Transform  viewport.Transform
	Focus      string
	Selected   string
	Legend     []palette.Entry
}

// RenderNode is a layout node in screen space. It only lives for one pass.
type RenderNode struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Radius   float64  `json:"r"`
	Color    string   `json:"color"`
	Degree   int      `json:"degree"`
	Emphasis Emphasis `json:"emphasis"`
	Selected bool     `json:"selected,omitempty"`
}

// RenderEdge is a valid edge in screen space.
type RenderEdge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	X1       float64  `json:"x1"`
	Y1       float64  `json:"y1"`
	X2       float64  `json:"x2"`
	Y2       float64  `json:"y2"`
	Width    float64  `json:"width"`
	Fights   int      `json:"fights"`
	Emphasis Emphasis `json:"emphasis"`
}

// Frame is the output of one render pass.
type Frame struct {
	Width  float64
	Height float64
	Root   *vdom.VNode
	Nodes  []RenderNode
	Edges  []RenderEdge
}

// Node returns the render node with id.
func (f Frame) Node(id string) (RenderNode, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return RenderNode{}, false
}

// Surface builds frames. The zero value is usable.
type Surface struct {
	// LabelScale is the zoom from which all nodes get a text label;
	// below it only emphasized nodes are labelled. Zero uses
	// DefaultLabelScale.
	LabelScale float64
}

// NodeRadius grows with the square root of the fight count.
func NodeRadius(totalFights int) float64 {
	if totalFights < 0 {
		totalFights = 0
	}
	return math.Min(maxRadius, minRadius+2*math.Sqrt(float64(totalFights)))
}

// EdgeWidth grows with the log of the head-to-head count.
func EdgeWidth(fights int) float64 {
	if fights < 1 {
		fights = 1
	}
	return 1 + math.Log2(float64(fights))
}

// Build projects, transforms and styles the scene.
func (s Surface) Build(sc Scene) Frame {
	f := Frame{Width: sc.Projection.Width, Height: sc.Projection.Height}
	b := sc.Layout.Bounds

	focus := sc.Focus
	neighbors := map[string]bool{}
	if focus != "" {
		found := false
		for _, n := range sc.Layout.Nodes {
			if n.ID == focus {
				found = true
				for _, id := range n.Neighbors {
					neighbors[id] = true
				}
				break
			}
		}
		if !found {
			focus = ""
		}
	}

	screen := make(map[string]viewport.Point, len(sc.Layout.Nodes))
	f.Nodes = make([]RenderNode, 0, len(sc.Layout.Nodes))
	for _, n := range sc.Layout.Nodes {
		p := sc.Transform.Apply(sc.Projection.Project(b, n.X, n.Y))
		screen[n.ID] = p
		meta := sc.Nodes[n.ID]
		rn := RenderNode{
			ID:       n.ID,
			Label:    meta.Name,
			X:        p.X,
			Y:        p.Y,
			Radius:   NodeRadius(meta.TotalFights),
			Color:    sc.Colors[n.ID],
			Degree:   n.Degree,
			Selected: n.ID == sc.Selected,
		}
		if rn.Label == "" {
			rn.Label = n.ID
		}
		if rn.Color == "" {
			rn.Color = palette.DefaultColor
		}
		switch {
		case focus == "":
		case n.ID == focus || neighbors[n.ID]:
			rn.Emphasis = Emphasized
		default:
			rn.Emphasis = Dimmed
		}
		f.Nodes = append(f.Nodes, rn)
	}

	f.Edges = make([]RenderEdge, 0, len(sc.Layout.Edges))
	for _, e := range sc.Layout.Edges {
		from, to := screen[e.Source], screen[e.Target]
		re := RenderEdge{
			Source: e.Source,
			Target: e.Target,
			X1:     from.X,
			Y1:     from.Y,
			X2:     to.X,
			Y2:     to.Y,
			Width:  EdgeWidth(e.Fights),
			Fights: e.Fights,
		}
		switch {
		case focus == "":
		case e.Source == focus || e.Target == focus:
			re.Emphasis = Active
		default:
			re.Emphasis = Dimmed
		}
		f.Edges = append(f.Edges, re)
	}

	f.Root = s.tree(sc, f)
	return f
}

func (s Surface) labelAll(t viewport.Transform) bool {
	ls := s.LabelScale
	if ls <= 0 {
		ls = DefaultLabelScale
	}
	return t.Scale >= ls
}

func (s Surface) tree(sc Scene, f Frame) *vdom.VNode {
	st := Styles
	fmtf := vdom.FormatFloat

	edges := make([]*vdom.VNode, 0, len(f.Edges))
	for i, e := range f.Edges {
		edges = append(edges, vdom.NewElement("line", vdom.Props{
			"key":          fmt.Sprintf("edge:%d", i),
			"class":        st.Classes("edge", e.Emphasis.class()),
			"x1":           fmtf(e.X1),
			"y1":           fmtf(e.Y1),
			"x2":           fmtf(e.X2),
			"y2":           fmtf(e.Y2),
			"stroke-width": fmtf(e.Width),
			"data-source":  e.Source,
			"data-target":  e.Target,
		}, vdom.NewElement("title", nil, vdom.NewText(edgeTitle(sc, e)))))
	}

	all := s.labelAll(sc.Transform)
	nodes := make([]*vdom.VNode, 0, len(f.Nodes))
	var labels []*vdom.VNode
	for _, n := range f.Nodes {
		if n.Selected {
			nodes = append(nodes, vdom.NewElement("circle", vdom.Props{
				"key":   "ring:" + n.ID,
				"class": st.Class("ring"),
				"cx":    fmtf(n.X),
				"cy":    fmtf(n.Y),
				"r":     fmtf(n.Radius + 4),
			}))
		}
		nodes = append(nodes, vdom.NewElement("circle", vdom.Props{
			"key":          "node:" + n.ID,
			"class":        st.Classes("node", n.Emphasis.class()),
			"cx":           fmtf(n.X),
			"cy":           fmtf(n.Y),
			"r":            fmtf(n.Radius),
			"fill":         n.Color,
			"tabindex":     "0",
			"role":         "button",
			"aria-label":   ariaLabel(sc.Nodes[n.ID], n.Label),
			"aria-pressed": boolString(n.Selected),
			"data-id":      n.ID,
		}, vdom.NewElement("title", nil, vdom.NewText(n.Label))))
		if all || n.Emphasis == Emphasized || n.Selected {
			labels = append(labels, vdom.NewElement("text", vdom.Props{
				"key":   "label:" + n.ID,
				"class": st.Class("label"),
				"x":     fmtf(n.X + n.Radius + 3),
				"y":     fmtf(n.Y + 4),
			}, vdom.NewText(n.Label)))
		}
	}

	var legend *vdom.VNode
	if len(sc.Legend) > 0 {
		rows := make([]*vdom.VNode, 0, 2*len(sc.Legend))
		for i, e := range sc.Legend {
			y := 16 + float64(i)*16
			rows = append(rows,
				vdom.NewElement("circle", vdom.Props{"cx": "12", "cy": fmtf(y - 4), "r": "5", "fill": e.Color}),
				vdom.NewElement("text", vdom.Props{"x": "22", "y": fmtf(y)}, vdom.NewText(e.Division)),
			)
		}
		legend = vdom.NewElement("g", vdom.Props{"key": "legend", "class": st.Class("legend"), "aria-hidden": "true"}, rows...)
	}

	w, h := fmtf(f.Width), fmtf(f.Height)
	return vdom.NewElement("svg", vdom.Props{
		"key":        "surface",
		"xmlns":      "http://www.w3.org/2000/svg",
		"class":      st.Class("surface"),
		"width":      w,
		"height":     h,
		"viewBox":    "0 0 " + w + " " + h,
		"role":       "group",
		"aria-label": fmt.Sprintf("Rivalry network, %d fighters, %d rivalries", len(f.Nodes), len(f.Edges)),
	},
		vdom.NewElement("rect", vdom.Props{
			"key":       "background",
			"class":     st.Class("background"),
			"width":     w,
			"height":    h,
			"data-role": "background",
		}),
		vdom.NewElement("g", vdom.Props{"key": "edges"}, edges...),
		vdom.NewElement("g", vdom.Props{"key": "nodes"}, nodes...),
		vdom.NewElement("g", vdom.Props{"key": "labels"}, labels...),
		legend,
	)
}

func edgeTitle(sc Scene, e RenderEdge) string {
	a, b := sc.Nodes[e.Source].Name, sc.Nodes[e.Target].Name
	if a == "" {
		a = e.Source
	}
	if b == "" {
		b = e.Target
	}
	word := "fights"
	if e.Fights == 1 {
		word = "fight"
	}
	return fmt.Sprintf("%s vs %s: %d %s", a, b, e.Fights, word)
}

func ariaLabel(n graph.FighterNode, label string) string {
	parts := []string{label}
	if n.Division != "" {
		parts = append(parts, n.Division)
	}
	if n.Record != "" {
		parts = append(parts, n.Record)
	}
	return strings.Join(parts, ", ")
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
