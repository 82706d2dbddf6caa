package picker

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// dragOverlay is the boundary between Fyne's drag events and the selection
// state machine: it wraps the grid content, claims drags over it and forwards
// them as {phase, content position, velocity} events. The mapping lives here
// so the state machine itself stays free of any input framework.
//
// The overlay lives inside the scroll container, so event positions arrive
// already translated into grid-content coordinates.
type dragOverlay struct {
	widget.BaseWidget
	content fyne.CanvasObject

	onEvent func(dragEvent)

	dragging bool
	lastTime time.Time
}

func newDragOverlay(content fyne.CanvasObject, onEvent func(dragEvent)) *dragOverlay {
	o := &dragOverlay{content: content, onEvent: onEvent}
	o.ExtendBaseWidget(o)
	return o
}

var _ fyne.Draggable = (*dragOverlay)(nil)

func (o *dragOverlay) Dragged(e *fyne.DragEvent) {
	if o.onEvent == nil {
		return
	}
	now := time.Now()

	if !o.dragging {
		o.dragging = true
		o.lastTime = now
		// The gesture began one delta back from where this first event
		// reports the pointer.
		start := e.PointEvent.Position.Subtract(e.Dragged)
		o.onEvent(dragEvent{phase: dragBegan, position: start})
	}

	dt := now.Sub(o.lastTime).Seconds()
	o.lastTime = now
	var velocity fyne.Delta
	if dt > 0 {
		velocity = fyne.Delta{DX: e.Dragged.DX / float32(dt), DY: e.Dragged.DY / float32(dt)}
	}

	o.onEvent(dragEvent{
		phase:    dragChanged,
		position: e.PointEvent.Position,
		velocity: velocity,
	})
}

func (o *dragOverlay) DragEnd() {
	if !o.dragging {
		return
	}
	o.dragging = false
	if o.onEvent != nil {
		o.onEvent(dragEvent{phase: dragEnded})
	}
}

// cancel aborts an in-flight drag, e.g. when the dialog hides mid-gesture.
func (o *dragOverlay) cancel() {
	if !o.dragging {
		return
	}
	o.dragging = false
	if o.onEvent != nil {
		o.onEvent(dragEvent{phase: dragCancelled})
	}
}

func (o *dragOverlay) CreateRenderer() fyne.WidgetRenderer {
	return &dragOverlayRenderer{o: o}
}

type dragOverlayRenderer struct {
	o *dragOverlay
}

func (r *dragOverlayRenderer) Layout(size fyne.Size) {
	r.o.content.Resize(size)
	r.o.content.Move(fyne.NewPos(0, 0))
}

func (r *dragOverlayRenderer) MinSize() fyne.Size {
	return r.o.content.MinSize()
}

func (r *dragOverlayRenderer) Refresh() {
	r.o.content.Refresh()
}

func (r *dragOverlayRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.o.content}
}

func (r *dragOverlayRenderer) Destroy() {}
