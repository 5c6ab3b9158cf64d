package live

import (
	"errors"
	"fmt"
	"strings"

	"github.com/recera/fightweb/pkg/fightweb/overlay"
	"github.com/recera/fightweb/pkg/fightweb/render"
	"github.com/recera/fightweb/pkg/fightweb/view"
	"github.com/recera/fightweb/pkg/fightweb/viewport"
	"github.com/recera/fightweb/pkg/renderer/html"
	"github.com/recera/fightweb/pkg/vdom"
)

// ErrUnknownEvent is returned by Dispatch for an unrecognized event type.
var ErrUnknownEvent = errors.New("live: unknown event")

// EventType names a client event.
type EventType string

const (
	EventPointerDown   EventType = "pointerdown"
	EventPointerMove   EventType = "pointermove"
	EventPointerUp     EventType = "pointerup"
	EventPointerCancel EventType = "pointercancel"
	EventWheel         EventType = "wheel"
	EventEnter         EventType = "enter"
	EventLeave         EventType = "leave"
	EventClick         EventType = "click"
	EventBackground    EventType = "background"
	EventFocus         EventType = "focus"
	EventBlur          EventType = "blur"
	EventKey           EventType = "key"
	EventOverlayEnter  EventType = "overlayenter"
	EventOverlayLeave  EventType = "overlayleave"
	EventResize        EventType = "resize"
	EventMeasure       EventType = "measure"
	EventAction        EventType = "action"
	EventFit           EventType = "fit"
	EventReset         EventType = "reset"
)

// Event is one client message. Only the fields its type needs are set.
type Event struct {
	Type    EventType `json:"type"`
	ID      string    `json:"id,omitempty"`
	X       float64   `json:"x,omitempty"`
	Y       float64   `json:"y,omitempty"`
	Pointer int       `json:"pointer,omitempty"`
	Key     string    `json:"key,omitempty"`
	Width   float64   `json:"width,omitempty"`
	Height  float64   `json:"height,omitempty"`
	Delta   float64   `json:"delta,omitempty"`
	Action  string    `json:"action,omitempty"`
}

func (e Event) point() viewport.Point { return viewport.Point{X: e.X, Y: e.Y} }

// Dispatch applies e to the controller.
func Dispatch(c *view.Controller, e Event) error {
	switch e.Type {
	case EventPointerDown:
		return c.PointerDown(e.Pointer, e.point())
	case EventPointerMove:
		return c.PointerMove(e.Pointer, e.point())
	case EventPointerUp:
		return c.PointerUp(e.Pointer, e.point())
	case EventPointerCancel:
		return c.PointerCancel(e.Pointer)
	case EventWheel:
		return c.Wheel(e.point(), e.Delta)
	case EventEnter:
		return c.PointerEnter(e.ID)
	case EventLeave:
		return c.PointerLeave(e.ID)
	case EventClick:
		return c.Click(e.ID)
	case EventBackground:
		return c.ClickBackground()
	case EventFocus:
		return c.Focus(e.ID)
	case EventBlur:
		return c.Blur(e.ID)
	case EventKey:
		if e.Key == "Tab" {
			return c.FocusNext(1)
		}
		return c.Key(e.Key)
	case EventOverlayEnter:
		return c.OverlayEnter()
	case EventOverlayLeave:
		return c.OverlayLeave()
	case EventResize:
		return c.Resize(e.Width, e.Height)
	case EventMeasure:
		return c.MeasureOverlay(overlay.Size{Width: e.Width, Height: e.Height})
	case EventAction:
		switch e.Action {
		case overlay.ActionOpenProfile:
			return c.OpenProfile()
		case overlay.ActionFilterDivision:
			return c.FilterDivision()
		}
		return fmt.Errorf("%w: action %q", ErrUnknownEvent, e.Action)
	case EventFit:
		return c.FitGraph()
	case EventReset:
		return c.ResetView()
	}
	return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
}

// OverlayFrame is the positioned overlay markup.
type OverlayFrame struct {
	HTML  string  `json:"html"`
	Left  float64 `json:"left"`
	Top   float64 `json:"top"`
	Focus bool    `json:"focus,omitempty"`
}

// Frame is a server message carrying what changed since the last frame.
// An empty SVG means the surface is unchanged; a nil Overlay with
// OverlayChanged set means the overlay closed.
type Frame struct {
	Type           string        `json:"type"`
	Version        uint64        `json:"version"`
	SVG            string        `json:"svg,omitempty"`
	Overlay        *OverlayFrame `json:"overlay,omitempty"`
	OverlayChanged bool          `json:"overlay_changed"`
}

// encodeFrame renders the parts of s that differ from prev. ok is false
// when nothing visible changed.
func encodeFrame(prev *view.Snapshot, s view.Snapshot) (f Frame, ok bool, err error) {
	f = Frame{Type: "frame", Version: s.Version}

	if prev == nil || !sameTree(prev.Frame, s.Frame) {
		if f.SVG, err = render.RenderSVG(s.Frame); err != nil {
			return f, false, err
		}
		ok = true
	}

	if prev == nil || !sameOverlay(*prev, s) {
		f.OverlayChanged = true
		ok = true
		if s.Panel != nil && s.Overlay != nil {
			markup, err := html.RenderToString(s.Overlay)
			if err != nil {
				return f, false, err
			}
			f.Overlay = &OverlayFrame{
				HTML:  strings.TrimSpace(markup),
				Left:  s.Panel.At.X,
				Top:   s.Panel.At.Y,
				Focus: s.Panel.Autofocus,
			}
		}
	}
	return f, ok, nil
}

func sameTree(a, b render.Frame) bool {
	return a.Width == b.Width && a.Height == b.Height && vdom.Equal(a.Root, b.Root)
}

// sameOverlay compares markup only; position and autofocus are both
// attributes of the overlay tree.
func sameOverlay(a, b view.Snapshot) bool {
	return vdom.Equal(a.Overlay, b.Overlay)
}
