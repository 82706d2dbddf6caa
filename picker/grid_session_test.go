package picker

import (
	"fmt"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
)

func fakeContents(n int) *albumContents {
	assets := make([]Asset, n)
	for i := range assets {
		assets[i] = AssetForURI(storage.NewFileURI(fmt.Sprintf("/media/img-%03d.jpg", i)))
	}
	return &albumContents{assets: assets}
}

// fakeDelegate records every signal the session routes to it.
type fakeDelegate struct {
	selected map[string]bool
	capacity int

	selectEvents   []string
	deselectEvents []string
	limitEvents    int
	futures        []*AttachmentFuture
}

func newFakeDelegate(capacity int) *fakeDelegate {
	return &fakeDelegate{selected: map[string]bool{}, capacity: capacity}
}

func (d *fakeDelegate) IsSelected(a Asset) bool { return d.selected[a.ID()] }
func (d *fakeDelegate) CanSelectMore() bool     { return len(d.selected) < d.capacity }
func (d *fakeDelegate) Selected(a Asset, f *AttachmentFuture) {
	d.selected[a.ID()] = true
	d.selectEvents = append(d.selectEvents, a.ID())
	d.futures = append(d.futures, f)
}
func (d *fakeDelegate) Deselected(a Asset) {
	delete(d.selected, a.ID())
	d.deselectEvents = append(d.deselectEvents, a.ID())
}
func (d *fakeDelegate) SelectionLimitReached() { d.limitEvents++ }

// fakeProvider serves canned albums and counts attachment requests.
type fakeProvider struct {
	albums      []AlbumRef
	contents    map[string]*albumContents
	attachments []string
}

func (p *fakeProvider) Albums() ([]AlbumRef, error) { return p.albums, nil }
func (p *fakeProvider) AlbumContents(ref AlbumRef) (CollectionContents, error) {
	return p.contents[ref.Title], nil
}
func (p *fakeProvider) Attachment(a Asset) *AttachmentFuture {
	p.attachments = append(p.attachments, a.ID())
	return newAttachmentFuture()
}

// fakeGridView records view traffic and serves fixed geometry.
type fakeGridView struct {
	viewportHeight float32
	contentHeight  float32
	scrollActive   bool

	reloads      int
	refreshes    int
	invalidates  int
	endScrolls   int
	lockChanges  []bool
	currentScale float32
}

func (v *fakeGridView) ViewportHeight() float32 { return v.viewportHeight }

func (v *fakeGridView) ContentHeight() float32 { return v.contentHeight }

func (v *fakeGridView) ScrollToEnd() { v.endScrolls++ }

func (v *fakeGridView) SetScrollLocked(locked bool) { v.lockChanges = append(v.lockChanges, locked) }

func (v *fakeGridView) ScrollGestureActive() bool { return v.scrollActive }

func (v *fakeGridView) ReloadCells() { v.reloads++ }

func (v *fakeGridView) RefreshCellStates() { v.refreshes++ }

func (v *fakeGridView) InvalidateLayout() { v.invalidates++ }

func (v *fakeGridView) CanvasScale() float32 {
	if v.currentScale == 0 {
		return 1
	}
	return v.currentScale
}

func newTestSession(n, capacity int) (*gridSession, *fakeDelegate, *fakeProvider, *fakeGridView) {
	delegate := newFakeDelegate(capacity)
	provider := &fakeProvider{}
	view := &fakeGridView{viewportHeight: 600}
	s := newGridSession(provider, delegate, view)
	s.AlbumContentsChanged(fakeContents(n))
	s.ContainerResized(320)
	return s, delegate, provider, view
}

func TestGridSession_TapSelectsAndDeselects(t *testing.T) {
	s, delegate, provider, view := newTestSession(5, 10)

	s.DidTapItem(2)
	if got := delegate.selectEvents; len(got) != 1 {
		t.Fatalf("expected one selection, got %v", got)
	}
	if len(provider.attachments) != 1 {
		t.Fatalf("expected an attachment request at toggle time, got %v", provider.attachments)
	}
	if delegate.futures[0] == nil {
		t.Fatal("expected the future to reach the delegate")
	}
	if view.refreshes == 0 {
		t.Fatal("expected a cell-state refresh after the toggle")
	}

	s.DidTapItem(2)
	if got := delegate.deselectEvents; len(got) != 1 {
		t.Fatalf("expected one deselection, got %v", got)
	}
	if len(delegate.selected) != 0 {
		t.Fatalf("expected empty selection, got %v", delegate.selected)
	}
}

func TestGridSession_TapAtCapacitySignalsWithoutSelecting(t *testing.T) {
	s, delegate, _, _ := newTestSession(5, 1)

	s.DidTapItem(0)
	s.DidTapItem(1)

	if got, want := delegate.limitEvents, 1; got != want {
		t.Fatalf("expected %d limit signal, got %d", want, got)
	}
	if len(delegate.selected) != 1 {
		t.Fatalf("capacity tap changed the selection: %v", delegate.selected)
	}

	// A selected item still deselects at capacity.
	s.DidTapItem(0)
	if len(delegate.selected) != 0 {
		t.Fatalf("expected deselection to work at capacity, got %v", delegate.selected)
	}
}

func TestGridSession_TapOutOfRangeIsIgnored(t *testing.T) {
	s, delegate, _, _ := newTestSession(3, 10)

	s.DidTapItem(-1)
	s.DidTapItem(3)

	if len(delegate.selectEvents) != 0 || delegate.limitEvents != 0 {
		t.Fatalf("out-of-range taps reached the delegate: %+v", delegate)
	}
}

func TestGridSession_ContainerResizedDiffsCellSide(t *testing.T) {
	s, _, _, view := newTestSession(5, 10)
	before := view.invalidates

	// Same metrics: 321 still floors to 3 columns of 105.
	if s.ContainerResized(321) {
		t.Fatal("expected no relayout when the cell side is unchanged")
	}
	if view.invalidates != before {
		t.Fatal("unchanged metrics still invalidated the layout")
	}

	if !s.ContainerResized(500) {
		t.Fatal("expected a relayout for a new column count")
	}
	if view.invalidates != before+1 {
		t.Fatalf("expected one invalidation, got %d", view.invalidates-before)
	}
	if got := s.Metrics().Columns; got != 5 {
		t.Fatalf("expected 5 columns at width 500, got %d", got)
	}
}

func TestGridSession_ItemForDisplayScalesSizeHint(t *testing.T) {
	s, _, _, view := newTestSession(5, 10)
	view.currentScale = 2

	req := s.ItemForDisplay(0)
	if req.Asset.Zero() {
		t.Fatal("expected a real asset")
	}
	if got, want := req.SizeHint, s.Metrics().CellSide*2; got != want {
		t.Fatalf("expected size hint %v at 2x scale, got %v", want, got)
	}
}

func TestGridSession_FirstAppearanceScrollsToEndOnce(t *testing.T) {
	s, _, _, view := newTestSession(60, 10)
	view.contentHeight = 2000
	view.viewportHeight = 600

	s.FirstAppearance()
	if got, want := view.endScrolls, 1; got != want {
		t.Fatalf("expected %d end scroll, got %d", want, got)
	}

	s.FirstAppearance()
	if view.endScrolls != 1 {
		t.Fatalf("first appearance ran twice: %d end scrolls", view.endScrolls)
	}
}

func TestGridSession_FirstAppearanceSkipsShortContent(t *testing.T) {
	s, _, _, view := newTestSession(3, 10)
	view.contentHeight = 200
	view.viewportHeight = 600

	s.FirstAppearance()
	if view.endScrolls != 0 {
		t.Fatalf("short content scrolled to end %d times", view.endScrolls)
	}
}

func TestGridSession_LayoutSettledReappliesEndScroll(t *testing.T) {
	s, _, _, view := newTestSession(60, 10)
	view.contentHeight = 2000
	view.viewportHeight = 600
	s.FirstAppearance()

	// Chrome insets settle: the viewport height moves, the end offset is
	// re-applied against the new height.
	view.viewportHeight = 560
	s.LayoutSettled()
	if got, want := view.endScrolls, 2; got != want {
		t.Fatalf("expected re-applied end scroll, got %d", got)
	}

	// Height stable now: reconciliation stops.
	s.LayoutSettled()
	s.LayoutSettled()
	if view.endScrolls != 2 {
		t.Fatalf("settled layout kept scrolling: %d", view.endScrolls)
	}
}

func TestGridSession_AlbumSwapInvalidatesIndices(t *testing.T) {
	s, delegate, _, view := newTestSession(5, 10)
	s.DidTapItem(4)

	// The new album is shorter; the old index 4 no longer exists.
	s.AlbumContentsChanged(fakeContents(3))
	if got, want := view.reloads, 2; got != want {
		t.Fatalf("expected %d reloads, got %d", want, got)
	}

	s.DidTapItem(4)
	if len(delegate.selectEvents) != 1 {
		t.Fatalf("stale index toggled in the new album: %v", delegate.selectEvents)
	}

	// Membership is keyed by identity, not index, so the original item is
	// still selected in the delegate.
	if !delegate.selected["file:///media/img-004.jpg"] {
		t.Fatal("identity-keyed selection lost across the swap")
	}
}

func TestGridSession_DragSurfaceMapsThroughMetrics(t *testing.T) {
	s, _, _, _ := newTestSession(7, 10)
	m := s.Metrics()

	p := m.cellOrigin(4).Add(fyne.NewPos(m.CellSide/2, m.CellSide/2))
	idx, ok := s.itemIndexAt(p)
	if !ok || idx != 4 {
		t.Fatalf("expected index 4, got %d ok=%v", idx, ok)
	}

	if _, ok := s.itemIndexAt(fyne.NewPos(0, 1e6)); ok {
		t.Fatal("expected a miss far below the content")
	}
}
