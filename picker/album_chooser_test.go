package picker

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
)

func showTestChooser(t *testing.T, onChosen func(AlbumRef), titles ...string) (*albumChooser, []AlbumRef) {
	t.Helper()

	a := test.NewApp()
	t.Cleanup(a.Quit)
	win := a.NewWindow("chooser test")
	win.Resize(fyne.NewSize(400, 500))

	_, albums := albumFixture(t, titles...)
	c := newAlbumChooser(func() fyne.Canvas { return win.Canvas() }, onChosen)
	c.ShowChooser(albums, albums[0])
	return c, albums
}

func TestAlbumChooser_ShowingDoesNotReportAChoice(t *testing.T) {
	var chosen []AlbumRef
	c, _ := showTestChooser(t, func(ref AlbumRef) { chosen = append(chosen, ref) }, "Camera", "Screenshots")

	// Highlighting the current album on open goes through List.Select,
	// which fires OnSelected synchronously. That must not count as the
	// user picking an album.
	if len(chosen) != 0 {
		t.Fatalf("showing the chooser reported a choice: %v", chosen)
	}
	if c.pop == nil || !c.pop.Visible() {
		t.Fatal("chooser popup not shown")
	}
}

func TestAlbumChooser_SelectionReportsThePickedAlbum(t *testing.T) {
	var chosen []AlbumRef
	c, albums := showTestChooser(t, func(ref AlbumRef) { chosen = append(chosen, ref) }, "Camera", "Screenshots")

	c.list.Select(1)

	if got, want := len(chosen), 1; got != want {
		t.Fatalf("expected %d choice, got %v", want, chosen)
	}
	if !SameAlbum(chosen[0], albums[1]) {
		t.Fatalf("expected %q chosen, got %q", albums[1].Title, chosen[0].Title)
	}
}

func TestAlbumChooser_ShowingLeavesSwitcherPresented(t *testing.T) {
	a := test.NewApp()
	t.Cleanup(a.Quit)
	win := a.NewWindow("chooser test")
	win.Resize(fyne.NewSize(400, 500))

	provider, albums := albumFixture(t, "Camera", "Screenshots")
	session := newGridSession(provider, newFakeDelegate(10), &fakeGridView{viewportHeight: 600})
	sw := newAlbumSwitcher(provider, session, nil)
	chooser := newAlbumChooser(func() fyne.Canvas { return win.Canvas() }, sw.AlbumChosen)
	sw.chooser = chooser

	if err := sw.OpenInitial(); err != nil {
		t.Fatalf("open initial: %v", err)
	}
	sw.Present()

	// The initial highlight must not loop back as a choice and dismiss
	// the popup the user just opened.
	if !sw.presented {
		t.Fatal("presenting the chooser immediately dismissed it")
	}
	if chooser.pop == nil || !chooser.pop.Visible() {
		t.Fatal("chooser popup not visible after present")
	}

	chooser.list.Select(1)

	if sw.presented {
		t.Fatal("choosing an album left the chooser presented")
	}
	if !SameAlbum(sw.Current(), albums[1]) {
		t.Fatalf("expected %q to be current, got %q", albums[1].Title, sw.Current().Title)
	}
}
