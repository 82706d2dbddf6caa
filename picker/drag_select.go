package picker

import (
	"fmt"

	"fyne.io/fyne/v2"
)

// bulkSelectVelocityRatio gates bulk selection on strongly horizontal motion:
// a motion update only toggles items when |vx| > ratio * |vy|. Vertical motion
// is the primary scroll gesture and wins by default.
const bulkSelectVelocityRatio float32 = 4.0

type dragPhase int

const (
	dragBegan dragPhase = iota
	dragChanged
	dragEnded
	dragCancelled
)

func (p dragPhase) String() string {
	switch p {
	case dragBegan:
		return "began"
	case dragChanged:
		return "changed"
	case dragEnded:
		return "ended"
	case dragCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("dragPhase(%d)", int(p))
	}
}

// dragEvent is one raw pointer update, already mapped from whatever input
// framework delivered it. Position is in grid-content coordinates; velocity is
// in points per second.
type dragEvent struct {
	phase    dragPhase
	position fyne.Position
	velocity fyne.Delta
}

// dragSurface is everything the drag selector needs from the grid around it.
// The session controller implements it; tests substitute a recording fake.
type dragSurface interface {
	itemIndexAt(p fyne.Position) (int, bool)
	isItemSelected(index int) bool
	canSelectMore() bool
	selectItem(index int)
	deselectItem(index int)
	signalLimitReached()
	setScrollLocked(locked bool)
	scrollGestureActive() bool
}

type dragSelectMode int

const (
	dragModeSelect dragSelectMode = iota
	dragModeDeselect
)

// dragSelector interprets one continuous drag as a run of per-item toggles.
// Mode is fixed at drag start from the selection state of the origin item and
// never flips mid-drag. The session state lives only for the drag's duration.
type dragSelector struct {
	surface dragSurface

	active bool
	mode   dragSelectMode

	// lastLimitIndex dedupes the limit-reached signal: continued dragging
	// over the same over-capacity item must not re-signal every frame.
	lastLimitIndex int
}

func newDragSelector(surface dragSurface) *dragSelector {
	return &dragSelector{surface: surface, lastLimitIndex: -1}
}

// Active reports whether a drag currently owns the pointer stream.
func (d *dragSelector) Active() bool {
	return d.active
}

// Handle advances the state machine with one pointer event. Unrecognised
// phases are logged and ignored; the machine degrades to a no-op rather than
// misinterpreting the stream.
func (d *dragSelector) Handle(ev dragEvent) {
	if d.surface == nil {
		return
	}

	switch ev.phase {
	case dragBegan:
		d.begin(ev)
	case dragChanged:
		d.change(ev)
	case dragEnded, dragCancelled:
		d.finish()
	default:
		fyne.LogError("unexpected drag phase "+ev.phase.String(), nil)
	}
}

func (d *dragSelector) begin(ev dragEvent) {
	if d.active {
		// A began while active means we missed the end of the previous
		// stream; close it out before claiming the new one.
		d.finish()
	}

	// The native scroll gesture and this one are mutually exclusive: never
	// claim a touch stream the scroller already owns.
	if d.surface.scrollGestureActive() {
		return
	}

	index, ok := d.surface.itemIndexAt(ev.position)
	if !ok {
		// Not over an item: the rest of this drag is ignored entirely.
		return
	}

	if d.surface.isItemSelected(index) {
		d.mode = dragModeDeselect
	} else {
		d.mode = dragModeSelect
	}
	d.active = true
	d.lastLimitIndex = -1
	d.surface.setScrollLocked(true)

	// The origin item is not toggled yet. Toggles only come from motion
	// updates that pass the velocity gate, so a mostly vertical drag that
	// happens to start on an item stays a scroll and changes nothing.
}

func (d *dragSelector) change(ev dragEvent) {
	if !d.active {
		return
	}

	vx := ev.velocity.DX
	vy := ev.velocity.DY
	if vx < 0 {
		vx = -vx
	}
	if vy < 0 {
		vy = -vy
	}
	if vx <= bulkSelectVelocityRatio*vy {
		return
	}

	index, ok := d.surface.itemIndexAt(ev.position)
	if !ok {
		return
	}
	d.apply(index)
}

// apply performs the idempotent toggle for the item under the pointer.
// Selection state is re-queried from the surface every time, so repeat passes
// over a cell, and re-entering a previously visited cell, are both safe.
func (d *dragSelector) apply(index int) {
	if d.mode == dragModeDeselect {
		if d.surface.isItemSelected(index) {
			d.surface.deselectItem(index)
		}
		return
	}

	if d.surface.isItemSelected(index) {
		return
	}
	if !d.surface.canSelectMore() {
		if d.lastLimitIndex != index {
			d.lastLimitIndex = index
			d.surface.signalLimitReached()
		}
		return
	}
	d.surface.selectItem(index)
}

func (d *dragSelector) finish() {
	if !d.active {
		return
	}
	d.active = false
	d.lastLimitIndex = -1
	d.surface.setScrollLocked(false)
}
