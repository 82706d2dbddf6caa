//go:build android || ios

package picker

import (
	"fyne.io/fyne/v2"
	fynedialog "fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// Mobile drivers route file access through the platform's own media chooser.
func mediaPickerOSOverride(d *mediaDialog) bool {
	fd := fynedialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			fyne.Do(func() {
				if d.callback != nil {
					d.callback(nil, err)
				}
			})
			return
		}
		uri := reader.URI()
		_ = reader.Close()
		fyne.Do(func() {
			if d.callback != nil {
				d.callback([]*AttachmentFuture{futureAttachment(AssetForURI(uri))}, nil)
			}
		})
	}, d.parent)
	fd.SetFilter(storage.NewMimeTypeFileFilter([]string{"image/*", "video/*"}))
	fd.Show()
	return true
}
