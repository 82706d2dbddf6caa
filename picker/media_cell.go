package picker

import (
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// cellHost is what a grid cell needs from its surroundings: tap routing and
// the current truth for its slot. The dialog implements it on top of the
// session controller.
type cellHost interface {
	DidTapItem(index int)
	ItemForDisplay(index int) ThumbnailRequest
	isItemSelected(index int) bool
	suppressTap() bool
}

// mediaCell renders one grid slot. Slots are recycled across reloads and
// album switches, so bind re-derives both the content and the checked state
// from the host every time; nothing the cell showed before is trusted.
type mediaCell struct {
	widget.BaseWidget
	host  cellHost
	index int

	thumbnail   *canvas.Image
	placeholder *widget.Icon
	selectedBG  *canvas.Rectangle
	check       *widget.Icon

	currentID string
	loadTimer *time.Timer
}

func newMediaCell(host cellHost) *mediaCell {
	c := &mediaCell{
		host:        host,
		index:       -1,
		thumbnail:   canvas.NewImageFromImage(nil),
		placeholder: widget.NewIcon(theme.MediaPhotoIcon()),
		selectedBG:  canvas.NewRectangle(theme.Color(theme.ColorNameSelection)),
		check:       widget.NewIcon(theme.ConfirmIcon()),
	}
	c.thumbnail.FillMode = canvas.ImageFillContain
	c.thumbnail.Hide()
	c.selectedBG.Hide()
	c.check.Hide()
	c.ExtendBaseWidget(c)
	return c
}

// bind points the cell at the item currently occupying its slot.
func (c *mediaCell) bind(index int) {
	c.index = index

	req := c.host.ItemForDisplay(index)
	c.setSelected(c.host.isItemSelected(index))

	if req.Asset.Zero() {
		c.currentID = ""
		c.showPlaceholder()
		return
	}
	if req.Asset.ID() == c.currentID {
		return
	}
	c.currentID = req.Asset.ID()
	c.showPlaceholder()

	if c.loadTimer != nil {
		c.loadTimer.Stop()
	}

	if img := GetThumbnailer().LoadMemoryOnly(req); img != nil {
		c.showThumbnail(img)
		return
	}

	// Defer the queue insert briefly so a fast scroll doesn't flood the
	// workers with cells that are already gone.
	id := c.currentID
	c.loadTimer = time.AfterFunc(200*time.Millisecond, func() {
		GetThumbnailer().Load(req, func(img image.Image) {
			fyne.Do(func() {
				if c.currentID != id || img == nil {
					return
				}
				c.showThumbnail(img)
			})
		})
	})
}

func (c *mediaCell) showPlaceholder() {
	c.thumbnail.Image = nil
	c.thumbnail.Hide()
	c.placeholder.Show()
	c.thumbnail.Refresh()
}

func (c *mediaCell) showThumbnail(img image.Image) {
	c.thumbnail.Image = img
	c.placeholder.Hide()
	c.thumbnail.Show()
	c.thumbnail.Refresh()
}

func (c *mediaCell) setSelected(selected bool) {
	if selected {
		c.selectedBG.Show()
		c.check.Show()
	} else {
		c.selectedBG.Hide()
		c.check.Hide()
	}
	c.Refresh()
}

func (c *mediaCell) Tapped(*fyne.PointEvent) {
	if c.index < 0 {
		return
	}
	// A tap that arrives on the tail of a selection drag is the same touch
	// stream, not a new intent.
	if c.host.suppressTap() {
		return
	}
	c.host.DidTapItem(c.index)
}

var _ fyne.Tappable = (*mediaCell)(nil)

func (c *mediaCell) CreateRenderer() fyne.WidgetRenderer {
	return &mediaCellRenderer{cell: c}
}

type mediaCellRenderer struct {
	cell *mediaCell
}

func (r *mediaCellRenderer) Layout(size fyne.Size) {
	r.cell.thumbnail.Resize(size)
	r.cell.selectedBG.Resize(size)

	iconSide := size.Width / 2
	r.cell.placeholder.Resize(fyne.NewSquareSize(iconSide))
	r.cell.placeholder.Move(fyne.NewPos((size.Width-iconSide)/2, (size.Height-iconSide)/2))

	const checkSide float32 = 20
	pad := theme.Padding()
	r.cell.check.Resize(fyne.NewSquareSize(checkSide))
	r.cell.check.Move(fyne.NewPos(size.Width-checkSide-pad, pad))
}

func (r *mediaCellRenderer) MinSize() fyne.Size {
	return fyne.NewSquareSize(minCellWidth)
}

func (r *mediaCellRenderer) Refresh() {
	r.cell.thumbnail.Refresh()
	r.cell.placeholder.Refresh()
	r.cell.selectedBG.Refresh()
	r.cell.check.Refresh()
}

func (r *mediaCellRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.cell.thumbnail, r.cell.placeholder, r.cell.selectedBG, r.cell.check}
}

func (r *mediaCellRenderer) Destroy() {
	if r.cell.loadTimer != nil {
		r.cell.loadTimer.Stop()
	}
}
