package picker

import (
	"time"

	"fyne.io/fyne/v2"
)

// resizeAwareLayout delegates layout to an inner layout and fires a callback
// when the laid-out size, or the hosting canvas size, actually changed.
// Layout passes run for plenty of reasons besides a resize, so both sizes are
// diffed against the previous pass before anything fires.
type resizeAwareLayout struct {
	internal fyne.Layout
	onResize func()

	externalSize     func() fyne.Size
	lastSize         fyne.Size
	lastExternalSize fyne.Size
	lastFired        time.Time
	timer            *time.Timer
}

func (r *resizeAwareLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	r.internal.Layout(objects, size)
	if r.onResize == nil {
		return
	}

	internalChanged := abs32(size.Width-r.lastSize.Width) >= 0.5 || abs32(size.Height-r.lastSize.Height) >= 0.5
	if internalChanged {
		r.lastSize = size
	}

	externalChanged := false
	if r.externalSize != nil {
		external := r.externalSize()
		externalChanged = abs32(external.Width-r.lastExternalSize.Width) >= 0.5 || abs32(external.Height-r.lastExternalSize.Height) >= 0.5
		if externalChanged {
			r.lastExternalSize = external
		}
	}

	if !internalChanged && !externalChanged {
		return
	}

	r.scheduleResize()
}

func (r *resizeAwareLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return r.internal.MinSize(objects)
}

func (r *resizeAwareLayout) scheduleResize() {
	// Defer the callback off the layout pass; mutating widgets mid-layout can
	// panic the Fyne driver. Bursts during a window drag are coalesced.
	const minInterval = 60 * time.Millisecond

	now := time.Now()
	elapsed := now.Sub(r.lastFired)
	if elapsed >= minInterval {
		r.lastFired = now
		fyne.Do(r.onResize)
		return
	}

	delay := minInterval - elapsed
	if delay < 0 {
		delay = 0
	}

	if r.timer == nil {
		r.timer = time.AfterFunc(delay, func() {
			fyne.Do(func() {
				r.timer = nil
				r.lastFired = time.Now()
				if r.onResize != nil {
					r.onResize()
				}
			})
		})
		return
	}
	r.timer.Reset(delay)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
