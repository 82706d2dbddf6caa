package picker

import (
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/test"
)

func TestResizeAwareLayout_FiresOnRealChangesOnly(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	callbacks := 0
	external := fyne.NewSize(1200, 800)
	r := &resizeAwareLayout{
		internal: layout.NewStackLayout(),
		onResize: func() {
			callbacks++
		},
		externalSize: func() fyne.Size {
			return external
		},
	}

	contentSize := fyne.NewSize(700, 500)
	r.Layout(nil, contentSize)
	fyne.DoAndWait(func() {})
	if callbacks != 1 {
		t.Fatalf("expected 1 resize callback after initial layout, got %d", callbacks)
	}

	// A layout pass with nothing changed stays silent.
	r.lastFired = time.Now().Add(-time.Second)
	r.Layout(nil, contentSize)
	fyne.DoAndWait(func() {})
	if callbacks != 1 {
		t.Fatalf("expected callback count to stay at 1, got %d", callbacks)
	}

	// A canvas resize fires even when the content size held still.
	external = fyne.NewSize(1300, 800)
	r.lastFired = time.Now().Add(-time.Second)
	r.Layout(nil, contentSize)
	fyne.DoAndWait(func() {})
	if callbacks != 2 {
		t.Fatalf("expected callback count to be 2 after external resize, got %d", callbacks)
	}

	// A content resize fires too.
	r.lastFired = time.Now().Add(-time.Second)
	r.Layout(nil, fyne.NewSize(800, 500))
	fyne.DoAndWait(func() {})
	if callbacks != 3 {
		t.Fatalf("expected callback count to be 3 after content resize, got %d", callbacks)
	}
}

func TestResizeAwareLayout_CoalescesBursts(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	callbacks := 0
	r := &resizeAwareLayout{
		internal: layout.NewStackLayout(),
		onResize: func() {
			callbacks++
		},
	}

	// A burst of distinct sizes inside the minimum interval collapses into
	// the immediate first callback plus one trailing timer callback.
	for i := 0; i < 10; i++ {
		r.Layout(nil, fyne.NewSize(700+float32(i), 500))
	}
	time.Sleep(150 * time.Millisecond)
	fyne.DoAndWait(func() {})

	if callbacks != 2 {
		t.Fatalf("expected burst to coalesce into 2 callbacks, got %d", callbacks)
	}
}
