package picker

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"github.com/fsnotify/fsnotify"
)

// MediaLibrary is the filesystem-backed media provider: every folder under
// the library root is an album, the root itself included. Enumeration order
// inside one contents instance is stable for its lifetime; a fresh instance
// is produced per AlbumContents call.
type MediaLibrary struct {
	root fyne.ListableURI
}

var _ MediaProvider = (*MediaLibrary)(nil)

// NewMediaLibrary creates a library rooted at the given folder.
func NewMediaLibrary(root fyne.ListableURI) *MediaLibrary {
	return &MediaLibrary{root: root}
}

// DefaultMediaLibrary roots the library at the preferred location: the saved
// preference when present, the platform Pictures folder otherwise, the user
// home as a last resort.
func DefaultMediaLibrary() (*MediaLibrary, error) {
	if saved := fyne.CurrentApp().Preferences().String(libraryRootKey); saved != "" {
		if l, err := storage.ListerForURI(storage.NewFileURI(saved)); err == nil {
			return NewMediaLibrary(l), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("library: no home directory: %w", err)
	}

	pictures := picturesDir(home)
	if l, err := storage.ListerForURI(storage.NewFileURI(pictures)); err == nil {
		return NewMediaLibrary(l), nil
	}

	l, err := storage.ListerForURI(storage.NewFileURI(home))
	if err != nil {
		return nil, err
	}
	return NewMediaLibrary(l), nil
}

// SetLibraryRoot persists the folder DefaultMediaLibrary opens.
func SetLibraryRoot(path string) {
	fyne.CurrentApp().Preferences().SetString(libraryRootKey, path)
}

// picturesDir resolves the platform's Pictures folder, honouring XDG user
// dirs where the tool is available.
func picturesDir(home string) string {
	fallback := filepath.Join(home, "Pictures")

	switch runtime.GOOS {
	case "linux", "openbsd", "freebsd", "netbsd":
	default:
		return fallback
	}

	const cmdName = "xdg-user-dir"
	if _, err := exec.LookPath(cmdName); err != nil {
		return fallback
	}
	out, err := exec.Command(cmdName, "PICTURES").Output()
	if err != nil {
		return fallback
	}

	clean := filepath.Clean(strings.TrimSpace(string(out)))
	if clean == "" || clean == filepath.Clean(home) {
		return fallback
	}
	return clean
}

// Root returns the library root.
func (l *MediaLibrary) Root() fyne.ListableURI {
	return l.root
}

// Albums lists the root album followed by its sub-folders, sorted by name.
func (l *MediaLibrary) Albums() ([]AlbumRef, error) {
	if l.root == nil {
		return nil, nil
	}

	albums := []AlbumRef{{Title: l.root.Name(), Dir: l.root}}

	children, err := l.root.List()
	if err != nil {
		return albums, fmt.Errorf("library: list %s: %w", l.root.String(), err)
	}

	var subs []AlbumRef
	for _, child := range children {
		if hiddenEntry(child) {
			continue
		}
		if isDir, _ := storage.CanList(child); !isDir {
			continue
		}
		lister, err := storage.ListerForURI(child)
		if err != nil {
			continue
		}
		subs = append(subs, AlbumRef{Title: child.Name(), Dir: lister})
	}
	sort.Slice(subs, func(i, j int) bool {
		return strings.ToLower(subs[i].Title) < strings.ToLower(subs[j].Title)
	})

	return append(albums, subs...), nil
}

// AlbumContents enumerates the album's media, oldest first so the newest item
// sits at the end of the grid. The returned view never changes; reloads get a
// new one.
func (l *MediaLibrary) AlbumContents(ref AlbumRef) (CollectionContents, error) {
	if ref.Dir == nil {
		return &albumContents{}, nil
	}

	files, err := ref.Dir.List()
	if err != nil {
		return nil, fmt.Errorf("library: list %s: %w", ref.Dir.String(), err)
	}

	type datedAsset struct {
		asset Asset
		mtime time.Time
	}

	var entries []datedAsset
	for _, file := range files {
		if hiddenEntry(file) {
			continue
		}
		if isDir, _ := storage.CanList(file); isDir {
			continue
		}
		ext := strings.ToLower(filepath.Ext(file.Name()))
		if !isSupportedImage(ext) && !isSupportedVideo(ext) {
			continue
		}

		var mtime time.Time
		if file.Scheme() == "file" {
			if info, err := os.Stat(file.Path()); err == nil {
				mtime = info.ModTime()
			}
		}
		entries = append(entries, datedAsset{asset: AssetForURI(file), mtime: mtime})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].mtime.Equal(entries[j].mtime) {
			return entries[i].mtime.Before(entries[j].mtime)
		}
		return entries[i].asset.Name() < entries[j].asset.Name()
	})

	assets := make([]Asset, len(entries))
	for i, e := range entries {
		assets[i] = e.asset
	}
	return &albumContents{assets: assets}, nil
}

// Attachment starts building the byte payload for an asset and returns the
// promise immediately.
func (l *MediaLibrary) Attachment(a Asset) *AttachmentFuture {
	return futureAttachment(a)
}

func hiddenEntry(u fyne.URI) bool {
	name := u.Name()
	return name == "" || name[0] == '.'
}

// albumContents is the immutable ordered view over one enumeration pass.
type albumContents struct {
	assets []Asset
}

var _ CollectionContents = (*albumContents)(nil)

func (c *albumContents) Count() int {
	return len(c.assets)
}

func (c *albumContents) Item(index int) Asset {
	if !assertf(index >= 0 && index < len(c.assets), "item index %d out of range [0,%d)", index, len(c.assets)) {
		return Asset{}
	}
	return c.assets[index]
}

func (c *albumContents) ThumbnailItem(index int, sizeHint float32) ThumbnailRequest {
	a := c.Item(index)
	if a.Zero() {
		return ThumbnailRequest{}
	}
	return ThumbnailRequest{Asset: a, SizeHint: sizeHint}
}

// WatchAlbum reports external changes to an album directory, debounced so a
// burst of filesystem events collapses into one notification. onChange runs
// on a background goroutine; callers marshal to the event loop themselves.
// Close the returned watcher when switching albums.
func WatchAlbum(ref AlbumRef, onChange func()) (*AlbumWatcher, error) {
	if ref.Dir == nil || ref.Dir.Scheme() != "file" {
		return nil, fmt.Errorf("library: album %q is not watchable", ref.Title)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(ref.Dir.Path()); err != nil {
		w.Close()
		return nil, err
	}

	aw := &AlbumWatcher{watcher: w}
	go aw.run(onChange)
	return aw, nil
}

// AlbumWatcher wraps one fsnotify watch on an album directory.
type AlbumWatcher struct {
	watcher *fsnotify.Watcher
}

const albumWatchDebounce = 250 * time.Millisecond

func (aw *AlbumWatcher) run(onChange func()) {
	var pending *time.Timer
	for {
		select {
		case ev, ok := <-aw.watcher.Events:
			if !ok {
				if pending != nil {
					pending.Stop()
				}
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			if pending == nil {
				pending = time.AfterFunc(albumWatchDebounce, onChange)
			} else {
				pending.Reset(albumWatchDebounce)
			}
		case _, ok := <-aw.watcher.Errors:
			if !ok {
				if pending != nil {
					pending.Stop()
				}
				return
			}
		}
	}
}

// Close stops the watch.
func (aw *AlbumWatcher) Close() error {
	return aw.watcher.Close()
}
