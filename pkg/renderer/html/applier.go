// Package html writes vdom trees as HTML/SVG markup. Attributes are
// emitted in sorted order so identical trees always produce identical
// bytes.
package html

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/recera/fightweb/pkg/vdom"
)

// voidElements are HTML elements that cannot have children
var voidElements = map[string]bool{
	"br":     true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
}

// svgElements are written self-closed when they have no children
var svgElements = map[string]bool{
	"circle":   true,
	"line":     true,
	"rect":     true,
	"path":     true,
	"ellipse":  true,
	"polyline": true,
	"use":      true,
}

// booleanAttributes are HTML attributes that are boolean flags
var booleanAttributes = map[string]bool{
	"disabled":  true,
	"hidden":    true,
	"autofocus": true,
	"inert":     true,
}

// Applier renders VNodes to markup
type Applier struct {
	w   io.Writer
	err error
}

// NewApplier creates a new markup applier
func NewApplier(w io.Writer) *Applier {
	return &Applier{w: w}
}

// Apply renders a full VNode tree. Incremental updates are not supported.
func (a *Applier) Apply(prev, next *vdom.VNode) error {
	if prev != nil {
		return fmt.Errorf("html applier does not support incremental updates")
	}
	if next == nil {
		return nil
	}
	a.renderNode(next)
	return a.err
}

// write helper that tracks errors
func (a *Applier) write(s string) {
	if a.err != nil {
		return
	}
	_, a.err = io.WriteString(a.w, s)
}

func (a *Applier) renderNode(node *vdom.VNode) {
	if node == nil || a.err != nil {
		return
	}

	switch node.Kind {
	case vdom.KindText:
		a.write(html.EscapeString(node.Text))
	case vdom.KindElement:
		a.renderElement(node)
	case vdom.KindFragment:
		for i := range node.Kids {
			a.renderNode(&node.Kids[i])
		}
	}
}

func (a *Applier) renderElement(node *vdom.VNode) {
	a.write("<")
	a.write(node.Tag)

	for _, key := range node.Props.SortedKeys() {
		value := node.Props[key]
		if value == nil {
			continue
		}
		// Event handlers are wired by the client script, never inline
		if len(key) > 2 && key[0] == 'o' && key[1] == 'n' {
			continue
		}

		if b, ok := value.(bool); ok && booleanAttributes[key] {
			if b {
				a.write(" ")
				a.write(key)
			}
			continue
		}

		valueStr := vdom.PropString(value)
		// Prevent javascript: URLs in href/src attributes
		if (key == "href" || key == "src") && strings.HasPrefix(strings.ToLower(strings.TrimSpace(valueStr)), "javascript:") {
			valueStr = "#"
		}

		a.write(" ")
		a.write(key)
		a.write(`="`)
		a.write(html.EscapeString(valueStr))
		a.write(`"`)
	}

	if voidElements[node.Tag] {
		a.write(">")
		return
	}
	if svgElements[node.Tag] && len(node.Kids) == 0 {
		a.write("/>")
		return
	}
	a.write(">")

	// Script and style content is written unescaped
	raw := node.Tag == "script" || node.Tag == "style"
	for i := range node.Kids {
		if raw {
			a.renderRawNode(&node.Kids[i])
		} else {
			a.renderNode(&node.Kids[i])
		}
	}

	a.write("</")
	a.write(node.Tag)
	a.write(">")
}

func (a *Applier) renderRawNode(node *vdom.VNode) {
	if node == nil || a.err != nil {
		return
	}
	switch node.Kind {
	case vdom.KindText:
		a.write(node.Text)
	case vdom.KindElement:
		a.renderElement(node)
	case vdom.KindFragment:
		for i := range node.Kids {
			a.renderRawNode(&node.Kids[i])
		}
	}
}

// RenderToString is a convenience function to render a VNode to a string
func RenderToString(node *vdom.VNode) (string, error) {
	var buf strings.Builder
	if err := NewApplier(&buf).Apply(nil, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}
