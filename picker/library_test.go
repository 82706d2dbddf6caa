package picker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/storage"
)

func libraryFixture(t *testing.T) (*MediaLibrary, string) {
	t.Helper()
	root := t.TempDir()

	lister, err := storage.ListerForURI(storage.NewFileURI(root))
	if err != nil {
		t.Fatalf("lister for %s: %v", root, err)
	}
	return NewMediaLibrary(lister), root
}

func writeFixture(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("fixture"), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func TestMediaLibrary_AlbumsRootFirstThenSortedFolders(t *testing.T) {
	lib, root := libraryFixture(t)

	for _, dir := range []string{"zebra", "Camera", ".hidden"} {
		if err := os.Mkdir(filepath.Join(root, dir), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	writeFixture(t, filepath.Join(root, "loose.jpg"), time.Now())

	albums, err := lib.Albums()
	if err != nil {
		t.Fatalf("albums: %v", err)
	}

	if len(albums) != 3 {
		t.Fatalf("expected root + 2 folders, got %d: %+v", len(albums), albums)
	}
	if !SameAlbum(albums[0], AlbumRef{Title: lib.Root().Name(), Dir: lib.Root()}) {
		t.Fatalf("expected the root album first, got %q", albums[0].Title)
	}
	if albums[1].Title != "Camera" || albums[2].Title != "zebra" {
		t.Fatalf("expected case-insensitive name order, got %q %q", albums[1].Title, albums[2].Title)
	}
}

func TestMediaLibrary_AlbumContentsOldestFirst(t *testing.T) {
	lib, root := libraryFixture(t)

	base := time.Now().Add(-time.Hour)
	writeFixture(t, filepath.Join(root, "newest.jpg"), base.Add(30*time.Minute))
	writeFixture(t, filepath.Join(root, "oldest.png"), base)
	writeFixture(t, filepath.Join(root, "middle.mp4"), base.Add(10*time.Minute))

	albums, err := lib.Albums()
	if err != nil {
		t.Fatalf("albums: %v", err)
	}
	contents, err := lib.AlbumContents(albums[0])
	if err != nil {
		t.Fatalf("album contents: %v", err)
	}

	if got, want := contents.Count(), 3; got != want {
		t.Fatalf("expected %d items, got %d", want, got)
	}
	wantOrder := []string{"oldest.png", "middle.mp4", "newest.jpg"}
	for i, want := range wantOrder {
		if got := contents.Item(i).Name(); got != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestMediaLibrary_AlbumContentsFiltersNonMedia(t *testing.T) {
	lib, root := libraryFixture(t)

	now := time.Now()
	writeFixture(t, filepath.Join(root, "photo.jpg"), now)
	writeFixture(t, filepath.Join(root, "notes.txt"), now)
	writeFixture(t, filepath.Join(root, ".hidden.jpg"), now)
	if err := os.Mkdir(filepath.Join(root, "sub"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	albums, err := lib.Albums()
	if err != nil {
		t.Fatalf("albums: %v", err)
	}
	contents, err := lib.AlbumContents(albums[0])
	if err != nil {
		t.Fatalf("album contents: %v", err)
	}

	if got, want := contents.Count(), 1; got != want {
		t.Fatalf("expected only the photo, got %d items", got)
	}
	if got := contents.Item(0).Name(); got != "photo.jpg" {
		t.Fatalf("expected photo.jpg, got %q", got)
	}
}

func TestMediaLibrary_ThumbnailItemCarriesSizeHint(t *testing.T) {
	lib, root := libraryFixture(t)
	writeFixture(t, filepath.Join(root, "photo.jpg"), time.Now())

	albums, _ := lib.Albums()
	contents, err := lib.AlbumContents(albums[0])
	if err != nil {
		t.Fatalf("album contents: %v", err)
	}

	req := contents.ThumbnailItem(0, 210)
	if req.Asset.Zero() || req.SizeHint != 210 {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestWatchAlbum_NotifiesOnNewFile(t *testing.T) {
	lib, root := libraryFixture(t)
	albums, _ := lib.Albums()

	changed := make(chan struct{}, 1)
	w, err := WatchAlbum(albums[0], func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("watch album: %v", err)
	}
	defer w.Close()

	writeFixture(t, filepath.Join(root, "incoming.jpg"), time.Now())

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the change notification")
	}
}

func TestWatchAlbum_RejectsNonFileAlbums(t *testing.T) {
	if _, err := WatchAlbum(AlbumRef{Title: "nowhere"}, func() {}); err == nil {
		t.Fatal("expected an error for an album without a directory")
	}
}
