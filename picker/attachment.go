package picker

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/dhowden/tag"
)

// Attachment is the payload derived from a selected asset: the raw bytes plus
// whatever identity could be sniffed from them.
type Attachment struct {
	Asset Asset
	MIME  string
	Title string
	Data  []byte
}

// AttachmentFuture is the promise for an attachment under construction.
// Selection is complete at toggle time; the future is handed to the selection
// delegate immediately and resolves on a background worker. Deselecting an
// item does not cancel its future, the delegate discards unwanted results.
type AttachmentFuture struct {
	done chan struct{}

	mu  sync.Mutex
	att *Attachment
	err error
}

func newAttachmentFuture() *AttachmentFuture {
	return &AttachmentFuture{done: make(chan struct{})}
}

func (f *AttachmentFuture) resolve(att *Attachment, err error) {
	f.mu.Lock()
	f.att, f.err = att, err
	f.mu.Unlock()
	close(f.done)
}

// Done is closed once the attachment has been built (or failed).
func (f *AttachmentFuture) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the attachment resolves or the context is cancelled.
func (f *AttachmentFuture) Await(ctx context.Context) (*Attachment, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.att, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the outcome without blocking. The bool reports whether the
// future has resolved yet.
func (f *AttachmentFuture) Result() (*Attachment, error, bool) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.att, f.err, true
	default:
		return nil, nil, false
	}
}

// futureAttachment kicks off attachment construction for an asset and returns
// the promise right away.
func futureAttachment(a Asset) *AttachmentFuture {
	f := newAttachmentFuture()
	go func() {
		f.resolve(buildAttachment(a))
	}()
	return f
}

func buildAttachment(a Asset) (*Attachment, error) {
	if a.Zero() || a.URI().Scheme() != "file" {
		return nil, fmt.Errorf("attachment: unsupported asset %q", a.ID())
	}

	path := a.URI().Path()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("attachment: read %s: %w", path, err)
	}

	sniff := data
	if len(sniff) > 512 {
		sniff = sniff[:512]
	}
	mime := http.DetectContentType(sniff)

	att := &Attachment{
		Asset: a,
		MIME:  mime,
		Title: a.Name(),
		Data:  data,
	}

	// Container formats often carry a better title than the filename.
	if strings.HasPrefix(mime, "audio/") || strings.HasPrefix(mime, "video/") {
		if file, openErr := os.Open(path); openErr == nil {
			if meta, tagErr := tag.ReadFrom(file); tagErr == nil && meta.Title() != "" {
				att.Title = meta.Title()
			}
			file.Close()
		}
	}

	return att, nil
}
