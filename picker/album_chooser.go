package picker

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/FyshOS/fancyfs"
)

// albumChooser is the chooser surface the switch coordinator signals into: a
// popup list of albums with their folder art where available.
type albumChooser struct {
	canvasFor func() fyne.Canvas
	onChosen  func(AlbumRef)

	albums []AlbumRef
	list   *widget.List
	pop    *widget.PopUp
}

var _ albumChooserView = (*albumChooser)(nil)

func newAlbumChooser(canvasFor func() fyne.Canvas, onChosen func(AlbumRef)) *albumChooser {
	return &albumChooser{canvasFor: canvasFor, onChosen: onChosen}
}

func (c *albumChooser) ShowChooser(albums []AlbumRef, current AlbumRef) {
	c.albums = albums

	c.list = widget.NewList(
		func() int { return len(c.albums) },
		func() fyne.CanvasObject {
			return container.NewHBox(
				widget.NewIcon(theme.FolderIcon()),
				widget.NewLabel(lang.L("Template")),
			)
		},
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id >= len(c.albums) {
				return
			}
			ref := c.albums[id]
			box := o.(*fyne.Container)
			box.Objects[0].(*widget.Icon).SetResource(albumIcon(ref))
			box.Objects[1].(*widget.Label).SetText(ref.Title)
		},
	)
	for i, ref := range c.albums {
		if SameAlbum(ref, current) {
			c.list.Select(i)
			break
		}
	}
	// Wired after the highlight above: List.Select invokes OnSelected
	// synchronously, and the initial highlight is not a user choice.
	c.list.OnSelected = func(id widget.ListItemID) {
		if id >= len(c.albums) {
			return
		}
		if c.onChosen != nil {
			c.onChosen(c.albums[id])
		}
	}

	canvas := c.canvasFor()
	if canvas == nil {
		return
	}
	content := container.NewGridWrap(fyne.NewSize(260, 320), c.list)
	c.pop = widget.NewModalPopUp(content, canvas)
	c.pop.Show()
}

func (c *albumChooser) HideChooser() {
	if c.pop == nil {
		return
	}
	c.pop.Hide()
	c.pop = nil
}

// albumIcon prefers the folder's own art over the generic folder glyph.
func albumIcon(ref AlbumRef) fyne.Resource {
	if ref.Dir == nil {
		return theme.FolderIcon()
	}
	if details, err := fancyfs.DetailsForFolder(ref.Dir); err == nil && details != nil && details.BackgroundResource != nil {
		return details.BackgroundResource
	}
	return theme.FolderIcon()
}
