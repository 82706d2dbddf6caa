package picker

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// ShowMediaPicker creates and shows a media picker over the user's default
// library. The callback receives the attachment futures for the picked items
// in selection order, or (nil, nil) when the user cancelled.
func ShowMediaPicker(callback func(picks []*AttachmentFuture, err error), parent fyne.Window) {
	d := NewMediaPicker(callback, parent, DefaultSelectionLimit)
	d.Show()
}

// NewMediaPicker creates a media picker over the user's default library,
// bounded to at most limit selected items. A limit of zero or less falls back
// to the saved preference, then to DefaultSelectionLimit.
func NewMediaPicker(callback func(picks []*AttachmentFuture, err error), parent fyne.Window, limit int) dialog.Dialog {
	return newMediaDialog(callback, parent, nil, nil, limit)
}

// SetDefaultSelectionLimit persists the bound applied when a caller passes a
// non-positive limit.
func SetDefaultSelectionLimit(limit int) {
	fyne.CurrentApp().Preferences().SetInt(selectionLimitKey, limit)
}

// NewMediaPickerWithProvider creates a media picker over a caller-supplied
// provider. A nil delegate gets the built-in bounded SelectionModel; with a
// custom delegate the caller owns the picked set and the callback's picks
// slice is nil.
func NewMediaPickerWithProvider(callback func(picks []*AttachmentFuture, err error), parent fyne.Window, provider MediaProvider, delegate SelectionDelegate, limit int) dialog.Dialog {
	return newMediaDialog(callback, parent, provider, delegate, limit)
}

func newMediaDialog(callback func([]*AttachmentFuture, error), parent fyne.Window, provider MediaProvider, delegate SelectionDelegate, limit int) *mediaDialog {
	if limit <= 0 {
		limit = fyne.CurrentApp().Preferences().IntWithFallback(selectionLimitKey, DefaultSelectionLimit)
	}
	d := &mediaDialog{
		callback: callback,
		parent:   parent,
		provider: provider,
		limit:    limit,
	}
	if delegate == nil {
		d.model = NewSelectionModel(limit)
		d.model.OnChanged = func(int) { d.updateFooter() }
		d.model.OnLimit = func() { d.flashLimit() }
		d.delegate = d.model
	} else {
		d.delegate = delegate
	}
	return d
}

type mediaDialog struct {
	callback func([]*AttachmentFuture, error)
	parent   fyne.Window

	provider MediaProvider
	delegate SelectionDelegate
	model    *SelectionModel // nil when the caller brought their own delegate
	limit    int

	session  *gridSession
	selector *dragSelector
	switcher *albumSwitcher
	chooser  *albumChooser

	win      *widget.PopUp
	scroll   *container.Scroll
	gridBox  *fyne.Container
	gridLay  *mediaGridLayout
	overlay  *dragOverlay
	cells    []*mediaCell
	titleBtn *widget.Button
	countLbl *widget.Label
	limitLbl *widget.Label
	done     *widget.Button
	dismiss  *widget.Button

	watcher *AlbumWatcher

	lastScrollAt time.Time
	lastDragEnd  time.Time
	onClosed     func()
}

var (
	_ dialog.Dialog = (*mediaDialog)(nil)
	_ gridView      = (*mediaDialog)(nil)
	_ cellHost      = (*mediaDialog)(nil)
)

func (d *mediaDialog) Show() {
	if mediaPickerOSOverride(d) {
		return
	}

	if d.provider == nil {
		lib, err := DefaultMediaLibrary()
		if err != nil {
			d.finish(nil, err)
			return
		}
		d.provider = lib
	}

	content := d.makeUI()
	d.win = widget.NewModalPopUp(content, d.parent.Canvas())
	d.win.Resize(fyne.NewSize(900, 640))
	d.win.Show()

	if err := d.switcher.OpenInitial(); err != nil {
		fyne.LogError("opening initial album", err)
	}
	d.restartWatcher()

	d.session.ContainerResized(d.scroll.Size().Width)
	d.session.FirstAppearance()
}

func (d *mediaDialog) Hide() {
	if d.overlay != nil {
		d.overlay.cancel()
	}
	d.stopWatcher()
	if d.win != nil {
		d.win.Hide()
	}
	if d.onClosed != nil {
		d.onClosed()
	}
}

func (d *mediaDialog) Dismiss() {
	d.Hide()
}

func (d *mediaDialog) MinSize() fyne.Size {
	return fyne.NewSize(minCellWidth*3, minCellWidth*4)
}

func (d *mediaDialog) Resize(size fyne.Size) {
	if d.win != nil {
		d.win.Resize(size)
	}
}

func (d *mediaDialog) Position() fyne.Position {
	return fyne.NewPos(0, 0)
}

func (d *mediaDialog) Refresh() {
	if d.session != nil {
		d.RefreshCellStates()
	}
}

func (d *mediaDialog) SetOnClosed(closed func()) {
	d.onClosed = closed
}

func (d *mediaDialog) SetDismissText(text string) {
	if d.dismiss != nil {
		d.dismiss.SetText(text)
	}
}

// finish ends the picking session exactly once.
func (d *mediaDialog) finish(picks []*AttachmentFuture, err error) {
	d.Hide()
	if d.callback != nil {
		d.callback(picks, err)
	}
}

func (d *mediaDialog) makeUI() fyne.CanvasObject {
	d.session = newGridSession(d.provider, d.delegate, d)
	d.selector = newDragSelector(d.session)
	d.chooser = newAlbumChooser(d.popCanvas, d.albumChosen)
	d.switcher = newAlbumSwitcher(d.provider, d.session, d.chooser)

	d.gridLay = &mediaGridLayout{}
	d.gridBox = container.New(d.gridLay)
	d.overlay = newDragOverlay(d.gridBox, d.handleDragEvent)
	d.scroll = container.NewVScroll(d.overlay)
	d.scroll.OnScrolled = func(fyne.Position) {
		d.lastScrollAt = time.Now()
	}

	// Header: current album title opens the chooser.
	d.titleBtn = widget.NewButtonWithIcon(lang.L("Album"), nil, func() {
		d.switcher.Present()
	})
	d.limitLbl = widget.NewLabel("")
	d.limitLbl.Hide()
	header := container.NewBorder(nil, nil, d.titleBtn, d.limitLbl)

	// Footer: count badge, cancel and done.
	d.countLbl = widget.NewLabel("")
	d.done = widget.NewButton(lang.L("Done"), d.handleDoneTapped)
	d.done.Importance = widget.HighImportance
	d.done.Disable()
	d.dismiss = widget.NewButton(lang.L("Cancel"), func() {
		d.finish(nil, nil)
	})
	footer := container.NewBorder(nil, nil, d.countLbl, container.NewHBox(d.dismiss, d.done))

	body := container.NewBorder(
		container.NewVBox(header, widget.NewSeparator()),
		footer, nil, nil,
		d.scroll,
	)

	// Wrap in a resize-aware layout so width changes re-derive the grid
	// metrics, coalesced so a window drag doesn't thrash relayouts.
	root := container.New(&resizeAwareLayout{
		internal: layout.NewStackLayout(),
		onResize: d.handleResize,
		externalSize: func() fyne.Size {
			if d.parent == nil || d.parent.Canvas() == nil {
				return fyne.Size{}
			}
			return d.parent.Canvas().Size()
		},
	}, body)

	d.updateFooter()
	return root
}

// handleDragEvent feeds the drag selector and remembers when the drag ended,
// so the synthetic tap Fyne fires right after a release can be swallowed.
func (d *mediaDialog) handleDragEvent(ev dragEvent) {
	d.selector.Handle(ev)
	if ev.phase == dragEnded || ev.phase == dragCancelled {
		d.lastDragEnd = time.Now()
	}
}

func (d *mediaDialog) popCanvas() fyne.Canvas {
	if d.win != nil {
		return d.win.Canvas
	}
	if d.parent != nil {
		return d.parent.Canvas()
	}
	return nil
}

func (d *mediaDialog) handleResize() {
	if d.session == nil || d.scroll == nil {
		return
	}
	if d.session.ContainerResized(d.scroll.Size().Width) {
		// New cell side means new thumbnail size hints.
		d.rebindCells()
	}
	d.session.LayoutSettled()
}

func (d *mediaDialog) albumChosen(ref AlbumRef) {
	d.switcher.AlbumChosen(ref)
	d.titleBtn.SetText(d.switcher.Current().Title)
	d.restartWatcher()
}

// restartWatcher follows the active album with a filesystem watch so outside
// changes reload the grid.
func (d *mediaDialog) restartWatcher() {
	d.stopWatcher()

	current := d.switcher.Current()
	if current.Dir == nil {
		return
	}
	d.titleBtn.SetText(current.Title)

	w, err := WatchAlbum(current, func() {
		fyne.Do(d.reloadActiveAlbum)
	})
	if err != nil {
		// Not every volume supports watching; the picker still works,
		// it just won't see outside changes live.
		return
	}
	d.watcher = w
}

func (d *mediaDialog) stopWatcher() {
	if d.watcher != nil {
		_ = d.watcher.Close()
		d.watcher = nil
	}
}

// reloadActiveAlbum refreshes the same album in place: no scroll reset, and
// selection membership survives because it is keyed by asset identity.
func (d *mediaDialog) reloadActiveAlbum() {
	current := d.switcher.Current()
	if current.Dir == nil || d.provider == nil {
		return
	}
	contents, err := d.provider.AlbumContents(current)
	if err != nil {
		fyne.LogError("reloading album "+current.Title, err)
		return
	}
	d.session.AlbumContentsChanged(contents)
}

func (d *mediaDialog) handleDoneTapped() {
	if d.model != nil {
		d.finish(d.model.Attachments(), nil)
		return
	}
	// Custom delegate: it owns the picked set.
	d.finish(nil, nil)
}

func (d *mediaDialog) updateFooter() {
	if d.countLbl == nil || d.done == nil {
		return
	}

	count := d.selectedCount()
	switch count {
	case 0:
		d.countLbl.SetText("")
		d.done.Disable()
	case 1:
		d.countLbl.SetText(lang.L("1 selected"))
		d.done.Enable()
	default:
		d.countLbl.SetText(fmt.Sprintf(lang.L("%d selected"), count))
		d.done.Enable()
	}
}

func (d *mediaDialog) selectedCount() int {
	if counter, ok := d.delegate.(interface{ Count() int }); ok {
		return counter.Count()
	}
	return 0
}

// flashLimit surfaces the selection-limit rejection in the header for a
// moment. The signal itself already went to the delegate; this is just the
// built-in model's user feedback.
func (d *mediaDialog) flashLimit() {
	if d.limitLbl == nil {
		return
	}
	d.limitLbl.SetText(fmt.Sprintf(lang.L("Limit of %d reached"), d.limit))
	d.limitLbl.Show()
	time.AfterFunc(2*time.Second, func() {
		fyne.Do(d.limitLbl.Hide)
	})
}

// gridView implementation

func (d *mediaDialog) ViewportHeight() float32 {
	if d.scroll == nil {
		return 0
	}
	return d.scroll.Size().Height
}

func (d *mediaDialog) ContentHeight() float32 {
	return d.session.Metrics().contentHeight(d.session.NumberOfItems())
}

func (d *mediaDialog) ScrollToEnd() {
	if d.scroll == nil {
		return
	}
	d.scroll.ScrollToBottom()
}

func (d *mediaDialog) SetScrollLocked(locked bool) {
	if d.scroll == nil {
		return
	}
	if locked {
		d.scroll.Direction = container.ScrollNone
	} else {
		d.scroll.Direction = container.ScrollVerticalOnly
	}
}

func (d *mediaDialog) ScrollGestureActive() bool {
	return time.Since(d.lastScrollAt) < 150*time.Millisecond
}

func (d *mediaDialog) ReloadCells() {
	if d.gridBox == nil {
		return
	}

	count := d.session.NumberOfItems()
	for len(d.cells) < count {
		cell := newMediaCell(d)
		d.cells = append(d.cells, cell)
		d.gridBox.Add(cell)
	}
	for len(d.cells) > count {
		last := len(d.cells) - 1
		d.gridBox.Remove(d.cells[last])
		d.cells = d.cells[:last]
	}

	d.rebindCells()
	d.gridBox.Refresh()
	d.scroll.Refresh()
	d.updateFooter()

	GetThumbnailer().Prewarm(d.session.contents, d.session.Metrics().CellSide*d.CanvasScale())
}

func (d *mediaDialog) rebindCells() {
	for i, cell := range d.cells {
		cell.bind(i)
	}
}

func (d *mediaDialog) RefreshCellStates() {
	for i, cell := range d.cells {
		cell.setSelected(d.session.isItemSelected(i))
	}
	d.updateFooter()
}

func (d *mediaDialog) InvalidateLayout() {
	if d.gridBox != nil {
		d.gridBox.Refresh()
	}
}

func (d *mediaDialog) CanvasScale() float32 {
	if d.parent == nil || d.parent.Canvas() == nil {
		return 1
	}
	return d.parent.Canvas().Scale()
}

// cellHost implementation

func (d *mediaDialog) DidTapItem(index int) {
	d.session.DidTapItem(index)
}

func (d *mediaDialog) ItemForDisplay(index int) ThumbnailRequest {
	return d.session.ItemForDisplay(index)
}

func (d *mediaDialog) isItemSelected(index int) bool {
	return d.session.isItemSelected(index)
}

func (d *mediaDialog) suppressTap() bool {
	if d.selector != nil && d.selector.Active() {
		return true
	}
	return time.Since(d.lastDragEnd) < 200*time.Millisecond
}
