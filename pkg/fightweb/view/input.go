package view

import (
	"go.uber.org/zap"

	"github.com/recera/fightweb/pkg/fightweb/overlay"
	"github.com/recera/fightweb/pkg/fightweb/render"
	"github.com/recera/fightweb/pkg/fightweb/viewport"
)

const (
	keyPanStep  = 40.0
	keyZoomStep = 1.25
	fitPadding  = 24.0
	focusScale  = 1.5
)

// PointerDown starts a pan gesture on the surface and captures pointer.
func (c *Controller) PointerDown(pointer int, pt viewport.Point) error {
	return c.do(func() {
		c.panner.Begin(pointer, pt.X, pt.Y, c.transform)
	})
}

// PointerMove pans while pointer holds the capture.
func (c *Controller) PointerMove(pointer int, pt viewport.Point) error {
	return c.do(func() {
		if t, ok := c.panner.Move(pointer, pt.X, pt.Y); ok {
			c.transform = t
			c.dirty = true
		}
	})
}

// PointerUp releases the capture. A gesture that never moved past the
// click slop is a click: on a node it toggles the selection, on empty
// surface it clears it.
func (c *Controller) PointerUp(pointer int, pt viewport.Point) error {
	return c.do(func() {
		if !c.panner.Active() {
			return
		}
		moved := c.panner.Moved()
		if !c.panner.End(pointer) || moved {
			return
		}
		if n, ok := render.HitTest(c.frame(), pt); ok {
			c.apply(c.machine.Click(n.ID))
		} else {
			c.apply(c.machine.ClickBackground())
		}
	})
}

// PointerCancel aborts the gesture owned by pointer and restores the
// transform it started from.
func (c *Controller) PointerCancel(pointer int) error {
	return c.do(func() {
		t, ok := c.panner.Cancel(pointer)
		if !ok {
			return
		}
		c.transform = t
		c.dirty = true
	})
}

// Wheel zooms around pt.
func (c *Controller) Wheel(pt viewport.Point, deltaY float64) error {
	return c.do(func() {
		c.zoomAt(pt, viewport.WheelFactor(deltaY))
	})
}

// ZoomBy zooms around the surface center.
func (c *Controller) ZoomBy(factor float64) error {
	return c.do(func() {
		c.zoomAt(viewport.Point{X: c.proj.Width / 2, Y: c.proj.Height / 2}, factor)
	})
}

// PanBy translates the view by a screen delta.
func (c *Controller) PanBy(dx, dy float64) error {
	return c.do(func() {
		c.transform = c.transform.PanBy(dx, dy)
		c.dirty = true
	})
}

func (c *Controller) zoomAt(pt viewport.Point, factor float64) {
	if !(factor > 0) {
		return
	}
	c.transform = c.transform.ZoomAt(pt, factor, c.opts.Limits)
	c.dirty = true
}

// PointerEnter hovers node id. Ignored while panning.
func (c *Controller) PointerEnter(id string) error {
	return c.do(func() {
		if c.panner.Panning() || !c.known(id) {
			return
		}
		c.apply(c.machine.PointerEnter(id))
	})
}

// PointerLeave ends the hover of node id. Ignored while panning.
func (c *Controller) PointerLeave(id string) error {
	return c.do(func() {
		if c.panner.Panning() {
			return
		}
		c.apply(c.machine.PointerLeave(id))
	})
}

// Click toggles the selection of node id. Ignored while panning.
func (c *Controller) Click(id string) error {
	return c.do(func() {
		if c.panner.Panning() || !c.known(id) {
			return
		}
		c.apply(c.machine.Click(id))
	})
}

// ClickBackground clears the selection.
func (c *Controller) ClickBackground() error {
	return c.do(func() {
		if c.panner.Panning() {
			return
		}
		c.apply(c.machine.ClickBackground())
	})
}

// Focus gives node id keyboard focus.
func (c *Controller) Focus(id string) error {
	return c.do(func() {
		if !c.known(id) {
			return
		}
		c.apply(c.machine.KeyFocus(id))
	})
}

// Blur ends keyboard focus on node id.
func (c *Controller) Blur(id string) error {
	return c.do(func() {
		c.apply(c.machine.KeyBlur(id))
	})
}

// FocusNext moves keyboard focus step nodes forward (negative: back) in
// layout order, wrapping around.
func (c *Controller) FocusNext(step int) error {
	return c.do(func() {
		n := len(c.result.Nodes)
		if n == 0 {
			return
		}
		cur := c.machine.State().KeyFocused
		next := 0
		if cur != "" {
			if i, ok := c.index[cur]; ok {
				next = ((i+step)%n + n) % n
			}
			c.apply(c.machine.KeyBlur(cur))
		} else if step < 0 {
			next = n - 1
		}
		c.apply(c.machine.KeyFocus(c.result.Nodes[next].ID))
	})
}

// Key handles a key press by its DOM key name. Enter and Space activate
// the keyboard-focused node, Escape clears the selection, arrows pan,
// +/- zoom, 0 resets and f fits the view.
func (c *Controller) Key(key string) error {
	return c.do(func() {
		switch key {
		case "Escape", "Esc":
			c.apply(c.machine.Escape())
		case "Enter", " ", "Spacebar":
			if id := c.machine.State().KeyFocused; id != "" {
				c.apply(c.machine.KeyActivate(id))
			}
		case "ArrowLeft":
			c.transform = c.transform.PanBy(keyPanStep, 0)
		case "ArrowRight":
			c.transform = c.transform.PanBy(-keyPanStep, 0)
		case "ArrowUp":
			c.transform = c.transform.PanBy(0, keyPanStep)
		case "ArrowDown":
			c.transform = c.transform.PanBy(0, -keyPanStep)
		case "+", "=":
			c.zoomAt(c.center(), keyZoomStep)
		case "-", "_":
			c.zoomAt(c.center(), 1/keyZoomStep)
		case "0":
			c.transform = viewport.Identity()
		case "f":
			c.fit()
		default:
			return
		}
		c.dirty = true
	})
}

// OverlayEnter reports pointer or focus entering the overlay.
func (c *Controller) OverlayEnter() error {
	return c.do(func() { c.apply(c.machine.OverlayEnter()) })
}

// OverlayLeave reports pointer or focus leaving the overlay.
func (c *Controller) OverlayLeave() error {
	return c.do(func() { c.apply(c.machine.OverlayLeave()) })
}

// Resize changes the surface size. The transform is kept.
func (c *Controller) Resize(width, height float64) error {
	return c.do(func() {
		if width <= 0 || height <= 0 {
			return
		}
		c.proj.Width, c.proj.Height = width, height
		c.dirty = true
	})
}

// MeasureOverlay reports the rendered overlay size for the current
// target; the overlay is re-positioned when it differs from the last
// measurement.
func (c *Controller) MeasureOverlay(size overlay.Size) error {
	return c.do(func() {
		target := c.machine.State().Target
		if target == "" || size.Width <= 0 || size.Height <= 0 {
			return
		}
		if c.measured != nil && *c.measured == size && c.measuredFor == c.measureKey() {
			return
		}
		c.measured = &size
		c.measuredFor = c.measureKey()
		c.dirty = true
	})
}

// OpenProfile forwards the overlay's primary action for its target.
func (c *Controller) OpenProfile() error {
	var id string
	if err := c.do(func() { id = c.machine.State().Target }); err != nil {
		return err
	}
	if id != "" && c.actions != nil {
		c.log.Debug("open profile", zap.String("id", id))
		c.actions.OpenProfile(id)
	}
	return nil
}

// FilterDivision forwards the overlay's division filter action.
func (c *Controller) FilterDivision() error {
	var division string
	if err := c.do(func() {
		if p := c.panelModel(); p != nil {
			division = p.Division
		}
	}); err != nil {
		return err
	}
	if division != "" && c.actions != nil {
		c.log.Debug("filter by division", zap.String("division", division))
		c.actions.FilterByDivision(division)
	}
	return nil
}

// FitGraph scales and centers the view so the whole graph is visible.
func (c *Controller) FitGraph() error {
	return c.do(func() {
		c.fit()
		c.dirty = true
	})
}

// FocusNode centers the view on node id without changing interaction
// state.
func (c *Controller) FocusNode(id string) error {
	return c.do(func() {
		i, ok := c.index[id]
		if !ok {
			return
		}
		n := c.result.Nodes[i]
		scale := c.opts.Limits.Clamp(max(c.transform.Scale, focusScale))
		c.transform = viewport.Focus(c.proj.Project(c.result.Bounds, n.X, n.Y), c.proj, scale)
		c.dirty = true
	})
}

// ResetView restores the identity transform.
func (c *Controller) ResetView() error {
	return c.do(func() {
		c.transform = viewport.Identity()
		c.dirty = true
	})
}

func (c *Controller) fit() {
	b := c.result.Bounds
	t := viewport.Fit(b, c.proj, fitPadding)
	if s := c.opts.Limits.Clamp(t.Scale); s != t.Scale {
		mid := b.Center()
		t = viewport.Focus(c.proj.Project(b, mid.X, mid.Y), c.proj, s)
	}
	c.transform = t
}

func (c *Controller) center() viewport.Point {
	return viewport.Point{X: c.proj.Width / 2, Y: c.proj.Height / 2}
}

func (c *Controller) known(id string) bool {
	_, ok := c.index[id]
	return ok
}
