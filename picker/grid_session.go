package picker

import (
	"fyne.io/fyne/v2"
)

// gridView is the visual surface the session controller drives. The picker
// dialog implements it on top of the scroll container and grid widget; tests
// substitute a fake. Every method tolerates being called at any point of the
// view's lifetime.
type gridView interface {
	ViewportHeight() float32
	ContentHeight() float32
	ScrollToEnd()
	SetScrollLocked(locked bool)
	ScrollGestureActive() bool

	// ReloadCells rebuilds the visible cells from the current contents.
	ReloadCells()
	// RefreshCellStates re-derives each visible cell's checked state from
	// the selection delegate. Never from what the cell showed before: a
	// recycled slot may hold a different item now.
	RefreshCellStates()
	// InvalidateLayout re-runs cell positioning after the cell side changed.
	InvalidateLayout()

	CanvasScale() float32
}

// gridSession owns the active collection and layout metrics and keeps the
// grid consistent with selection state and album switches. Both values are
// replaced wholesale, never mutated in place, so within one event-loop turn
// no reader observes a half-updated state.
type gridSession struct {
	contents CollectionContents
	provider MediaProvider
	delegate SelectionDelegate
	view     gridView

	metrics GridMetrics

	appeared        bool
	needsEndScroll  bool
	endScrollHeight float32
}

var _ dragSurface = (*gridSession)(nil)

func newGridSession(provider MediaProvider, delegate SelectionDelegate, view gridView) *gridSession {
	return &gridSession{provider: provider, delegate: delegate, view: view}
}

// NumberOfItems reports the item count of the active collection.
func (s *gridSession) NumberOfItems() int {
	if s.contents == nil {
		return 0
	}
	return s.contents.Count()
}

// Metrics returns the current layout metrics.
func (s *gridSession) Metrics() GridMetrics {
	return s.metrics
}

// ItemForDisplay returns the thumbnail request for a visible cell, sized to
// the current cell side in device pixels. Requests are issued eagerly per
// visible cell; there is no prefetch ahead of the viewport.
func (s *gridSession) ItemForDisplay(index int) ThumbnailRequest {
	if s.contents == nil {
		return ThumbnailRequest{}
	}
	if !assertf(index >= 0 && index < s.contents.Count(), "display index %d out of range [0,%d)", index, s.contents.Count()) {
		return ThumbnailRequest{}
	}

	scale := float32(1)
	if s.view != nil {
		if c := s.view.CanvasScale(); c > 0 {
			scale = c
		}
	}
	return s.contents.ThumbnailItem(index, s.metrics.CellSide*scale)
}

// DidTapItem toggles a single item. A tap on an unselected item at capacity
// signals the limit and selects nothing; otherwise a tap always changes state,
// selecting when unselected and deselecting when selected.
func (s *gridSession) DidTapItem(index int) {
	if s.contents == nil || s.delegate == nil {
		return
	}
	if index < 0 || index >= s.contents.Count() {
		// Stale tap target after a reload; pointer misses are expected.
		return
	}

	if s.isItemSelected(index) {
		s.deselectItem(index)
		return
	}
	if !s.canSelectMore() {
		s.signalLimitReached()
		return
	}
	s.selectItem(index)
}

// ContainerResized recomputes the layout metrics for a new container width
// and reports whether the cell side changed. When it did not, the caller
// skips the relayout pass entirely.
func (s *gridSession) ContainerResized(width float32) bool {
	m := computeGridMetrics(width, minCellWidth, cellGap)
	changed := m.CellSide != s.metrics.CellSide || m.Columns != s.metrics.Columns
	s.metrics = m
	if changed && s.view != nil {
		s.view.InvalidateLayout()
	}
	return changed
}

// FirstAppearance scrolls to the end of the sequence (newest last) when the
// content spans more than one screenful. It runs once per session; later
// album reloads do not re-trigger it.
func (s *gridSession) FirstAppearance() {
	if s.appeared || s.view == nil {
		return
	}
	s.appeared = true

	if s.view.ContentHeight() <= s.view.ViewportHeight() {
		return
	}
	s.view.ScrollToEnd()
	// Insets may not be final on the first pass; remember the height we
	// scrolled against so LayoutSettled can correct once they settle.
	s.needsEndScroll = true
	s.endScrollHeight = s.view.ViewportHeight()
}

// LayoutSettled is invoked after each layout pass. While the initial
// scroll-to-end is pending it re-applies the end offset whenever the viewport
// height moved underneath it. Best-effort reconciliation: a spurious
// correction just gets corrected again.
func (s *gridSession) LayoutSettled() {
	if !s.needsEndScroll || s.view == nil {
		return
	}
	h := s.view.ViewportHeight()
	if h == s.endScrollHeight {
		s.needsEndScroll = false
		return
	}
	s.endScrollHeight = h
	s.view.ScrollToEnd()
}

// AlbumContentsChanged swaps in a new collection and reloads every visible
// cell. Selection highlighting is re-derived from the delegate per cell;
// indices from the previous collection mean nothing in the new one.
func (s *gridSession) AlbumContentsChanged(contents CollectionContents) {
	s.contents = contents
	if s.view != nil {
		s.view.ReloadCells()
	}
}

// dragSurface implementation

func (s *gridSession) itemIndexAt(p fyne.Position) (int, bool) {
	if s.contents == nil {
		return 0, false
	}
	return s.metrics.indexAt(p, s.contents.Count())
}

func (s *gridSession) isItemSelected(index int) bool {
	if s.contents == nil || s.delegate == nil {
		return false
	}
	if index < 0 || index >= s.contents.Count() {
		return false
	}
	return s.delegate.IsSelected(s.contents.Item(index))
}

func (s *gridSession) canSelectMore() bool {
	if s.delegate == nil {
		return false
	}
	return s.delegate.CanSelectMore()
}

func (s *gridSession) selectItem(index int) {
	if s.contents == nil || s.delegate == nil {
		return
	}
	asset := s.contents.Item(index)
	if asset.Zero() {
		return
	}

	var future *AttachmentFuture
	if s.provider != nil {
		future = s.provider.Attachment(asset)
	}
	s.delegate.Selected(asset, future)
	if s.view != nil {
		s.view.RefreshCellStates()
	}
}

func (s *gridSession) deselectItem(index int) {
	if s.contents == nil || s.delegate == nil {
		return
	}
	asset := s.contents.Item(index)
	if asset.Zero() {
		return
	}
	s.delegate.Deselected(asset)
	if s.view != nil {
		s.view.RefreshCellStates()
	}
}

func (s *gridSession) signalLimitReached() {
	if s.delegate == nil {
		return
	}
	s.delegate.SelectionLimitReached()
}

func (s *gridSession) setScrollLocked(locked bool) {
	if s.view == nil {
		return
	}
	s.view.SetScrollLocked(locked)
}

func (s *gridSession) scrollGestureActive() bool {
	if s.view == nil {
		return false
	}
	return s.view.ScrollGestureActive()
}
