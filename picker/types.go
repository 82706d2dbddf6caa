package picker

import (
	"fmt"

	"fyne.io/fyne/v2"
)

const (
	// minCellWidth is the narrowest a grid cell is allowed to be. The
	// column count for a given container width follows from it.
	minCellWidth float32 = 100
	// cellGap is the spacing between neighbouring cells, and between the
	// outermost cells and the container edge (split as the outer inset).
	cellGap float32 = 2

	ffmpegPathKey     = "xmediapicker:ffmpegPath"
	libraryRootKey    = "xmediapicker:libraryRoot"
	selectionLimitKey = "xmediapicker:selectionLimit"
)

// DefaultSelectionLimit bounds the built-in SelectionModel when the caller
// does not configure one.
const DefaultSelectionLimit = 32

// Asset is an opaque handle to one browsable media item. Two assets are the
// same item exactly when their IDs are equal.
type Asset struct {
	uri fyne.URI
}

// AssetForURI wraps a URI as a picker asset.
func AssetForURI(u fyne.URI) Asset {
	return Asset{uri: u}
}

// ID returns the stable identity of the asset.
func (a Asset) ID() string {
	if a.uri == nil {
		return ""
	}
	return a.uri.String()
}

// URI returns the location the asset was resolved from.
func (a Asset) URI() fyne.URI {
	return a.uri
}

// Name returns a display name for the asset.
func (a Asset) Name() string {
	if a.uri == nil {
		return ""
	}
	return a.uri.Name()
}

// Zero reports whether the handle is empty.
func (a Asset) Zero() bool {
	return a.uri == nil
}

// ThumbnailRequest describes one thumbnail the grid wants rendered: which
// asset, and at what edge length in device pixels. Requests are handed to the
// thumbnailer as-is; the grid issues them eagerly per visible cell.
type ThumbnailRequest struct {
	Asset    Asset
	SizeHint float32
}

// CollectionContents is a read-only, ordered view over the active album.
// Instances are immutable; an album switch replaces the whole value.
type CollectionContents interface {
	Count() int
	Item(index int) Asset
	ThumbnailItem(index int, sizeHint float32) ThumbnailRequest
}

// AlbumRef names one album the provider can open.
type AlbumRef struct {
	Title string
	Dir   fyne.ListableURI
}

// SameAlbum reports whether two refs point at the same album.
func SameAlbum(a, b AlbumRef) bool {
	if a.Dir == nil || b.Dir == nil {
		return a.Dir == nil && b.Dir == nil && a.Title == b.Title
	}
	return a.Dir.String() == b.Dir.String()
}

// MediaProvider supplies albums, their contents and the attachment-producing
// operation for a chosen asset.
type MediaProvider interface {
	Albums() ([]AlbumRef, error)
	AlbumContents(ref AlbumRef) (CollectionContents, error)
	Attachment(a Asset) *AttachmentFuture
}

// SelectionDelegate owns the authoritative selection set. The picker never
// caches membership; it re-queries IsSelected whenever a cell is (re)bound and
// routes every toggle through the delegate's signals, in toggle order.
//
// Selected receives the attachment future at toggle time without the picker
// awaiting it. If the item is deselected before the future resolves it is the
// delegate's job to discard the result.
type SelectionDelegate interface {
	IsSelected(a Asset) bool
	CanSelectMore() bool
	Selected(a Asset, attachment *AttachmentFuture)
	Deselected(a Asset)
	SelectionLimitReached()
}

// debugAsserts makes invariant violations panic instead of degrading to a
// logged no-op. Tests switch it on.
var debugAsserts = false

func assertf(cond bool, format string, args ...any) bool {
	if cond {
		return true
	}
	fyne.LogError("invariant violated: "+fmt.Sprintf(format, args...), nil)
	if debugAsserts {
		panic(fmt.Sprintf(format, args...))
	}
	return false
}
