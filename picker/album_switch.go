package picker

import (
	"fyne.io/fyne/v2"
)

// albumChooserView is the externally owned chooser surface. The coordinator
// only signals show/hide into it and receives the choice back through
// AlbumChosen; it never constructs chrome itself.
type albumChooserView interface {
	ShowChooser(albums []AlbumRef, current AlbumRef)
	HideChooser()
}

// albumSwitcher presents the album chooser and, on confirmation of a
// different album, swaps the grid session's collection wholesale. Indices and
// any in-flight selection assumptions from the old album are meaningless in
// the new one; the reload re-derives everything from the delegate.
type albumSwitcher struct {
	provider MediaProvider
	session  *gridSession
	chooser  albumChooserView

	current   AlbumRef
	presented bool
}

func newAlbumSwitcher(provider MediaProvider, session *gridSession, chooser albumChooserView) *albumSwitcher {
	return &albumSwitcher{provider: provider, session: session, chooser: chooser}
}

// Current returns the album the grid is browsing.
func (a *albumSwitcher) Current() AlbumRef {
	return a.current
}

// OpenInitial loads the first available album into the session without any
// chooser interaction. Used once when the picker comes up.
func (a *albumSwitcher) OpenInitial() error {
	if a.provider == nil {
		return nil
	}
	albums, err := a.provider.Albums()
	if err != nil {
		return err
	}
	if len(albums) == 0 {
		return nil
	}
	return a.switchTo(albums[0])
}

// Present shows the chooser. Showing while already shown is a programming
// error; release builds log and ignore it.
func (a *albumSwitcher) Present() {
	if !assertf(!a.presented, "album chooser already presented") {
		return
	}
	a.presented = true

	var albums []AlbumRef
	if a.provider != nil {
		var err error
		albums, err = a.provider.Albums()
		if err != nil {
			fyne.LogError("listing albums", err)
		}
	}
	if a.chooser != nil {
		a.chooser.ShowChooser(albums, a.current)
	}
}

// Dismiss hides the chooser. Hiding while already hidden is a programming
// error; release builds log and ignore it.
func (a *albumSwitcher) Dismiss() {
	if !assertf(a.presented, "album chooser not presented") {
		return
	}
	a.presented = false
	if a.chooser != nil {
		a.chooser.HideChooser()
	}
}

// AlbumChosen handles the user's pick. Choosing the active album just closes
// the chooser: no reload, no scroll change, no flicker. A different album is
// swapped in and the grid scrolled to the end of the new sequence.
func (a *albumSwitcher) AlbumChosen(ref AlbumRef) {
	if a.presented {
		a.Dismiss()
	}
	if SameAlbum(ref, a.current) {
		return
	}
	if err := a.switchTo(ref); err != nil {
		fyne.LogError("opening album "+ref.Title, err)
	}
}

func (a *albumSwitcher) switchTo(ref AlbumRef) error {
	if a.provider == nil || a.session == nil {
		return nil
	}
	contents, err := a.provider.AlbumContents(ref)
	if err != nil {
		return err
	}

	a.current = ref
	a.session.AlbumContentsChanged(contents)
	if a.session.view != nil {
		a.session.view.ScrollToEnd()
	}
	return nil
}
