package render

import (
	"strings"

	"github.com/recera/fightweb/pkg/fightweb/viewport"
	"github.com/recera/fightweb/pkg/renderer/html"
	"github.com/recera/fightweb/pkg/styling"
	"github.com/recera/fightweb/pkg/vdom"
)

// HitTest returns the top-most node whose disc contains pt. Nodes drawn
// later are on top.
func HitTest(f Frame, pt viewport.Point) (RenderNode, bool) {
	for i := len(f.Nodes) - 1; i >= 0; i-- {
		n := f.Nodes[i]
		dx, dy := pt.X-n.X, pt.Y-n.Y
		if dx*dx+dy*dy <= n.Radius*n.Radius {
			return n, true
		}
	}
	return RenderNode{}, false
}

// RenderSVG writes the frame as a standalone SVG document.
func RenderSVG(f Frame) (string, error) {
	if f.Root == nil {
		return "", nil
	}
	reg := styling.NewRegistry()
	reg.Register(Styles)
	root := *f.Root
	root.Kids = append([]vdom.VNode{*vdom.NewElement("style", nil, vdom.NewText(reg.CSS()))}, root.Kids...)
	return html.RenderToString(&root)
}

// Page is a full HTML document around one surface.
type Page struct {
	Title   string
	Frame   Frame
	Overlay *vdom.VNode
	Sheets  []*styling.Sheet

	// Script is inlined at the end of the body.
	Script string

	// Attrs are extra attributes for the surface container, e.g. the
	// live session endpoint.
	Attrs vdom.Props
}

// RenderPage writes p as an HTML document.
func RenderPage(p Page) (string, error) {
	reg := styling.NewRegistry()
	reg.Register(Styles)
	reg.Register(p.Sheets...)

	title := p.Title
	if title == "" {
		title = "Rivalry network"
	}

	container := vdom.Props{
		"id":    "fightweb",
		"key":   "container",
		"style": "position:relative;width:" + vdom.FormatFloat(p.Frame.Width) + "px",
	}
	for k, v := range p.Attrs {
		container[k] = v
	}

	var script *vdom.VNode
	if p.Script != "" {
		script = vdom.NewElement("script", nil, vdom.NewText(p.Script))
	}

	doc := vdom.NewElement("html", vdom.Props{"lang": "en"},
		vdom.NewElement("head", nil,
			vdom.NewElement("meta", vdom.Props{"charset": "utf-8"}),
			vdom.NewElement("meta", vdom.Props{"name": "viewport", "content": "width=device-width, initial-scale=1"}),
			vdom.NewElement("title", nil, vdom.NewText(title)),
			vdom.NewElement("style", nil, vdom.NewText("body{margin:0;background:#0d0f13}\n"+reg.CSS())),
		),
		vdom.NewElement("body", nil,
			vdom.NewElement("div", container,
				p.Frame.Root,
				vdom.NewElement("div", vdom.Props{"id": "fightweb-overlay", "key": "overlay-host"}, p.Overlay),
			),
			script,
		),
	)

	body, err := html.RenderToString(doc)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString(body)
	return b.String(), nil
}
