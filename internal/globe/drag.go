package globe

// DragState is the state of a DragHandler.
type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// DragHandler turns pointer events into incremental pixel deltas.
//
// Only the last pointer position is kept: every move contributes the delta
// since the previous move, not since the press. Deltas accumulate until Take
// so several moves inside one frame can be applied together.
type DragHandler struct {
	state        DragState
	lastX, lastY float64
	pendingX     float64
	pendingY     float64
}

// State returns the current state.
func (d *DragHandler) State() DragState { return d.state }

// Down starts a drag session at (x, y). It is ignored while already dragging.
func (d *DragHandler) Down(x, y float64) bool {
	if d.state == Dragging {
		return false
	}
	d.state = Dragging
	d.lastX, d.lastY = x, y
	return true
}

// Move records the delta since the previous pointer position. It returns
// false when no drag is in progress.
func (d *DragHandler) Move(x, y float64) bool {
	if d.state != Dragging {
		return false
	}
	d.pendingX += x - d.lastX
	d.pendingY += y - d.lastY
	d.lastX, d.lastY = x, y
	return true
}

// Up ends the session. Deltas already recorded stay pending.
func (d *DragHandler) Up() {
	d.state = Idle
	d.lastX, d.lastY = 0, 0
}

// Detach ends the session the same way Up does; the pointer left the surface.
func (d *DragHandler) Detach() { d.Up() }

// Pending reports whether an unapplied delta exists.
func (d *DragHandler) Pending() bool {
	return d.pendingX != 0 || d.pendingY != 0
}

// Take returns the accumulated delta and clears it.
func (d *DragHandler) Take() (dx, dy float64) {
	dx, dy = d.pendingX, d.pendingY
	d.pendingX, d.pendingY = 0, 0
	return dx, dy
}

// ApplyDrag rotates r by a pixel delta. Horizontal motion spins the globe,
// vertical motion tilts it; sensitivity is degrees per pixel.
func ApplyDrag(r Rotation, dx, dy, sensitivity float64) Rotation {
	return Rotation{
		Lambda: NormalizeLongitude(r.Lambda + dx*sensitivity),
		Phi:    ClampLatitude(r.Phi - dy*sensitivity),
		Gamma:  r.Gamma,
	}
}
