package viewport

// clickSlop is how far a pointer may travel before a press becomes a pan.
const clickSlop = 3.0

// Panner tracks one pan gesture with exclusive pointer capture. Moves
// from any pointer other than the captured one are ignored.
type Panner struct {
	active  bool
	pointer int
	startX  float64
	startY  float64
	origin  Transform
	moved   bool
}

// Begin captures pointer and records the translate origin. It returns
// false if another pointer already owns the gesture.
func (p *Panner) Begin(pointer int, x, y float64, t Transform) bool {
	if p.active && p.pointer != pointer {
		return false
	}
	*p = Panner{
		active:  true,
		pointer: pointer,
		startX:  x,
		startY:  y,
		origin:  t,
	}
	return true
}

// Move applies the cumulative delta since Begin to the origin transform.
func (p *Panner) Move(pointer int, x, y float64) (Transform, bool) {
	if !p.active || pointer != p.pointer {
		return Transform{}, false
	}
	dx := x - p.startX
	dy := y - p.startY
	if !p.moved && dx*dx+dy*dy > clickSlop*clickSlop {
		p.moved = true
	}
	return p.origin.PanBy(dx, dy), true
}

// End releases capture. It reports whether pointer owned the gesture.
func (p *Panner) End(pointer int) bool {
	if !p.active || pointer != p.pointer {
		return false
	}
	p.active = false
	return true
}

// Cancel aborts the gesture owned by pointer and returns the origin
// transform so callers can restore it. Other pointers cannot cancel.
func (p *Panner) Cancel(pointer int) (Transform, bool) {
	if !p.active || pointer != p.pointer {
		return Transform{}, false
	}
	o := p.origin
	p.Reset()
	return o, true
}

// Reset drops any gesture regardless of owner.
func (p *Panner) Reset() {
	p.active = false
	p.moved = false
}

// Active reports whether a pointer is captured.
func (p *Panner) Active() bool { return p.active }

// Panning reports whether the captured gesture has moved past the click
// threshold. Node hit interactions are suppressed while this holds.
func (p *Panner) Panning() bool { return p.active && p.moved }

// Moved reports whether the last gesture travelled past the click threshold.
func (p *Panner) Moved() bool { return p.moved }
