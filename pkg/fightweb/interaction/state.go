// Package interaction is the hover/selection/keyboard-focus state machine
// of a graph view. Transitions are pure: they mutate the Machine and
// return the side effects (timers, fetches, focus moves) for the caller
// to perform.
package interaction

import (
	"time"

	"github.com/recera/fightweb/pkg/fightweb/graph"
)

// Mode tags what currently drives the overlay.
type Mode uint8

const (
	ModeNone Mode = iota
	ModePointer
	ModeKeyboard
	ModeSelection
)

func (m Mode) String() string {
	switch m {
	case ModePointer:
		return "pointer"
	case ModeKeyboard:
		return "keyboard"
	case ModeSelection:
		return "selection"
	default:
		return "none"
	}
}

// State is a snapshot of the machine.
type State struct {
	Hovered    string `json:"hovered,omitempty"`
	Selected   string `json:"selected,omitempty"`
	KeyFocused string `json:"key_focused,omitempty"`
	Target     string `json:"target,omitempty"`
	Mode       Mode   `json:"mode"`
}

// Focus is the node the overlay settles on: hover, then selection, then
// keyboard.
func (s State) Focus() string {
	switch {
	case s.Hovered != "":
		return s.Hovered
	case s.Selected != "":
		return s.Selected
	default:
		return s.KeyFocused
	}
}

// Effective is the node both the overlay and the surface emphasis follow.
// It is the overlay target while one is open, which keeps a node held
// through the close debounce emphasized, and Focus otherwise.
func (s State) Effective() string {
	if s.Target != "" {
		return s.Target
	}
	return s.Focus()
}

// FetchStatus is the lifecycle of the overlay's detail request.
type FetchStatus uint8

const (
	FetchIdle FetchStatus = iota
	FetchLoading
	FetchLoaded
	FetchFailed
)

func (s FetchStatus) String() string {
	switch s {
	case FetchLoading:
		return "loading"
	case FetchLoaded:
		return "loaded"
	case FetchFailed:
		return "failed"
	default:
		return "idle"
	}
}

// FailureMessage is shown when a detail fetch fails.
const FailureMessage = "Details unavailable"

// Detail is the fetched data for the overlay target.
type Detail struct {
	ID      string
	Seq     uint64
	Status  FetchStatus
	Data    *graph.FighterDetail
	Message string
}

// Effect is a side effect requested by a transition.
type Effect interface{ effect() }

// ScheduleClose asks for CloseTimerFired(Token) after Delay. It replaces
// any earlier pending close.
type ScheduleClose struct {
	Token uint64
	Delay time.Duration
}

// CancelClose drops the pending close timer.
type CancelClose struct{}

// Fetch asks for the detail of ID; the response must be reported with Seq.
type Fetch struct {
	ID  string
	Seq uint64
}

// FocusOverlay moves input focus to the overlay's first control.
type FocusOverlay struct{ ID string }

// OverlayClosed reports that the overlay no longer has a target.
type OverlayClosed struct{}

func (ScheduleClose) effect() {}
func (CancelClose) effect()   {}
func (Fetch) effect()         {}
func (FocusOverlay) effect()  {}
func (OverlayClosed) effect() {}
