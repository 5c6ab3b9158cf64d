package interaction

import (
	"time"

	"github.com/recera/fightweb/pkg/fightweb/graph"
)

// DefaultCloseDelay debounces overlay closes after pointer-leave/blur.
const DefaultCloseDelay = 150 * time.Millisecond

// Machine owns the interaction state of one view. It is not safe for
// concurrent use; the view serializes calls on its event loop.
type Machine struct {
	state      State
	closeDelay time.Duration

	// pending close timer token, 0 when none
	pending   uint64
	lastToken uint64

	fetchSeq uint64
	detail   Detail

	// pointer or input focus is inside the overlay
	overlayHeld bool
}

// NewMachine returns an idle machine. A non-positive delay uses
// DefaultCloseDelay.
func NewMachine(closeDelay time.Duration) *Machine {
	if closeDelay <= 0 {
		closeDelay = DefaultCloseDelay
	}
	return &Machine{closeDelay: closeDelay}
}

// State returns a snapshot.
func (m *Machine) State() State { return m.state }

// Detail returns the fetch state of the overlay target.
func (m *Machine) Detail() Detail { return m.detail }

// ClosePending reports whether a close timer is outstanding.
func (m *Machine) ClosePending() bool { return m.pending != 0 }

// PointerEnter hovers id and makes it the overlay target.
func (m *Machine) PointerEnter(id string) []Effect {
	m.state.Hovered = id
	fx := m.cancelClose(nil)
	return m.retarget(id, fx)
}

// PointerLeave ends the hover of id and debounces the close.
func (m *Machine) PointerLeave(id string) []Effect {
	if m.state.Hovered != id {
		return nil
	}
	m.state.Hovered = ""
	m.updateMode()
	return m.scheduleClose(nil)
}

// Click toggles the selection of id.
func (m *Machine) Click(id string) []Effect {
	if m.state.Selected == id {
		m.state.Selected = ""
	} else {
		m.state.Selected = id
	}
	return m.settle(nil)
}

// KeyActivate is Enter/Space on a focused node; same as Click.
func (m *Machine) KeyActivate(id string) []Effect { return m.Click(id) }

// ClickBackground clears the selection.
func (m *Machine) ClickBackground() []Effect {
	if m.state.Selected == "" {
		return nil
	}
	m.state.Selected = ""
	return m.settle(nil)
}

// Escape clears the selection.
func (m *Machine) Escape() []Effect { return m.ClickBackground() }

// KeyFocus gives id keyboard focus. Keyboard focus ranks below hover and
// selection, so the overlay only moves to id, taking input focus with
// it, when neither is present.
func (m *Machine) KeyFocus(id string) []Effect {
	m.state.KeyFocused = id
	fx := m.cancelClose(nil)
	fx = m.retarget(m.state.Focus(), fx)
	if m.state.Target != id {
		return fx
	}
	return append(fx, FocusOverlay{ID: id})
}

// KeyBlur ends keyboard focus on id and debounces the close.
func (m *Machine) KeyBlur(id string) []Effect {
	if m.state.KeyFocused != id {
		return nil
	}
	m.state.KeyFocused = ""
	m.updateMode()
	return m.scheduleClose(nil)
}

// OverlayEnter is pointer-enter or focus-in on the overlay itself.
func (m *Machine) OverlayEnter() []Effect {
	m.overlayHeld = true
	return m.cancelClose(nil)
}

// OverlayLeave is pointer-leave or focus-out of the overlay.
func (m *Machine) OverlayLeave() []Effect {
	if !m.overlayHeld {
		return nil
	}
	m.overlayHeld = false
	if m.state.Target == "" {
		return nil
	}
	return m.scheduleClose(nil)
}

// CloseTimerFired handles a debounced close. Stale tokens are ignored.
func (m *Machine) CloseTimerFired(token uint64) []Effect {
	if token == 0 || token != m.pending {
		return nil
	}
	m.pending = 0
	if m.overlayHeld {
		return nil
	}
	if next := m.state.Focus(); next != "" {
		return m.retarget(next, nil)
	}
	return m.close(nil)
}

// ResolveFetch applies a detail response. It reports false and changes
// nothing when the response is for an abandoned target.
func (m *Machine) ResolveFetch(id string, seq uint64, data *graph.FighterDetail, err error) bool {
	if id == "" || id != m.state.Target || seq != m.fetchSeq {
		return false
	}
	if err != nil || data == nil {
		m.detail.Status = FetchFailed
		m.detail.Message = FailureMessage
		m.detail.Data = nil
		return true
	}
	m.detail.Status = FetchLoaded
	m.detail.Data = data
	m.detail.Message = ""
	return true
}

// Reset clears all interaction state, e.g. when a new payload arrives.
func (m *Machine) Reset() []Effect {
	var fx []Effect
	fx = m.cancelClose(fx)
	if m.state.Target != "" {
		fx = append(fx, OverlayClosed{})
	}
	m.fetchSeq++
	m.state = State{}
	m.detail = Detail{}
	m.overlayHeld = false
	return fx
}

// settle points the overlay at the current focus after a selection
// change, closing it when nothing holds it open.
func (m *Machine) settle(fx []Effect) []Effect {
	next := m.state.Focus()
	if next == "" {
		if m.overlayHeld || m.pending != 0 {
			m.updateMode()
			return fx
		}
		return m.close(fx)
	}
	fx = m.cancelClose(fx)
	return m.retarget(next, fx)
}

func (m *Machine) retarget(id string, fx []Effect) []Effect {
	if m.state.Target == id {
		m.updateMode()
		return fx
	}
	m.state.Target = id
	m.fetchSeq++
	m.detail = Detail{ID: id, Seq: m.fetchSeq, Status: FetchLoading}
	m.updateMode()
	return append(fx, Fetch{ID: id, Seq: m.fetchSeq})
}

func (m *Machine) close(fx []Effect) []Effect {
	if m.state.Target == "" {
		m.updateMode()
		return fx
	}
	m.state.Target = ""
	m.fetchSeq++
	m.detail = Detail{}
	m.updateMode()
	return append(fx, OverlayClosed{})
}

func (m *Machine) scheduleClose(fx []Effect) []Effect {
	m.lastToken++
	m.pending = m.lastToken
	return append(fx, ScheduleClose{Token: m.pending, Delay: m.closeDelay})
}

func (m *Machine) cancelClose(fx []Effect) []Effect {
	if m.pending == 0 {
		return fx
	}
	m.pending = 0
	return append(fx, CancelClose{})
}

func (m *Machine) updateMode() {
	s := &m.state
	switch {
	case s.Target == "":
		s.Mode = ModeNone
	case s.Target == s.Hovered:
		s.Mode = ModePointer
	case s.Target == s.KeyFocused:
		s.Mode = ModeKeyboard
	case s.Target == s.Selected:
		s.Mode = ModeSelection
	default:
		// target is held by the debounce window or the overlay itself
		s.Mode = ModeNone
	}
}
