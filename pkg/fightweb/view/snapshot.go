package view

import (
	"fmt"

	"github.com/recera/fightweb/pkg/fightweb/graph"
	"github.com/recera/fightweb/pkg/fightweb/interaction"
	"github.com/recera/fightweb/pkg/fightweb/overlay"
	"github.com/recera/fightweb/pkg/fightweb/palette"
	"github.com/recera/fightweb/pkg/fightweb/render"
	"github.com/recera/fightweb/pkg/fightweb/viewport"
	"github.com/recera/fightweb/pkg/vdom"
)

// Snapshot is the renderable state of a view at one version.
type Snapshot struct {
	Version   uint64
	Frame     render.Frame
	Panel     *overlay.Panel
	Overlay   *vdom.VNode
	Transform viewport.Transform
	State     interaction.State
	Detail    interaction.Detail
	Legend    []palette.Entry
	Metadata  *graph.Metadata
}

type listener struct {
	id int
	fn func(Snapshot)
}

// Snapshot returns the current state, rebuilding the frame if needed.
func (c *Controller) Snapshot() (Snapshot, error) {
	var s Snapshot
	err := c.do(func() {
		c.refresh()
		s = c.snap
	})
	return s, err
}

// Subscribe registers fn to receive every new snapshot. fn runs on the
// view's loop and must not call back into the controller synchronously.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func(), err error) {
	var id int
	err = c.do(func() {
		c.nextSub++
		id = c.nextSub
		c.listeners = append(c.listeners, listener{id: id, fn: fn})
	})
	if err != nil {
		return func() {}, err
	}
	return func() {
		_ = c.do(func() {
			for i, l := range c.listeners {
				if l.id == id {
					c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
					return
				}
			}
		})
	}, nil
}

// flush runs after every batch of loop tasks.
func (c *Controller) flush() {
	c.refresh()
	if c.version == c.notified {
		return
	}
	c.notified = c.version
	for _, l := range c.listeners {
		l.fn(c.snap)
	}
}

// frame returns the up-to-date frame. Loop only.
func (c *Controller) frame() render.Frame {
	c.refresh()
	return c.snap.Frame
}

func (c *Controller) refresh() {
	if !c.dirty {
		return
	}
	c.dirty = false
	c.version++

	state := c.machine.State()
	sc := render.Scene{
		Layout:     c.result,
		Nodes:      c.nodes,
		Colors:     c.colors,
		Projection: c.proj,
		Transform:  c.transform,
		Focus:      state.Effective(),
		Selected:   state.Selected,
		Legend:     c.palette.Legend(),
	}
	f := c.surface.Build(sc)

	snap := Snapshot{
		Version:   c.version,
		Frame:     f,
		Transform: c.transform,
		State:     state,
		Detail:    c.machine.Detail(),
		Legend:    sc.Legend,
	}
	if c.payload != nil {
		snap.Metadata = c.payload.Metadata
	}
	if p := c.panelModel(); p != nil {
		if anchor, ok := f.Node(p.ID); ok {
			container := viewport.Rect{Width: c.proj.Width, Height: c.proj.Height}
			p.At = overlay.Position(viewport.Point{X: anchor.X, Y: anchor.Y}, container, c.overlaySize(*p), c.opts.OverlayOffset)
			snap.Panel = p
			snap.Overlay = p.Node()
		}
	}
	c.snap = snap
}

// panelModel builds the overlay model for the current target, or nil
// when the overlay is closed.
func (c *Controller) panelModel() *overlay.Panel {
	target := c.machine.State().Target
	if target == "" {
		return nil
	}
	node, ok := c.nodes[target]
	if !ok {
		return nil
	}
	p := overlay.NewPanel(node, c.palette.Division(node.Division), c.machine.Detail())
	p.Autofocus = c.focusOverlay == target
	return &p
}

// overlaySize prefers a measurement of the same content over the
// estimate.
func (c *Controller) overlaySize(p overlay.Panel) overlay.Size {
	if c.measured != nil && c.measuredFor == c.measureKey() {
		return *c.measured
	}
	return overlay.Estimate(p)
}

// measureKey identifies the overlay content a measurement belongs to.
func (c *Controller) measureKey() string {
	d := c.machine.Detail()
	return fmt.Sprintf("%s/%d/%s", c.machine.State().Target, d.Seq, d.Status)
}
