//go:build flatpak && !windows && !android && !ios && !wasm && !js

package picker

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/storage"

	"github.com/rymdport/portal"
	"github.com/rymdport/portal/filechooser"
)

// Inside the flatpak sandbox the media library is not directly readable, so
// the desktop portal's chooser stands in for the grid.
func mediaPickerOSOverride(d *mediaDialog) bool {
	options := &filechooser.OpenFileOptions{
		AcceptLabel: lang.L("Select"),
		Multiple:    true,
		CurrentFilter: &filechooser.Filter{
			Name: lang.L("Photos and videos"),
			Rules: []filechooser.Rule{
				{Type: filechooser.MIMEType, Pattern: "image/*"},
				{Type: filechooser.MIMEType, Pattern: "video/*"},
			},
		},
	}
	options.Filters = []*filechooser.Filter{options.CurrentFilter}
	windowHandle := windowHandleForPortal(d.parent)

	go func() {
		uris, err := filechooser.OpenFile(windowHandle, lang.L("Select Media"), options)
		if err != nil {
			fyne.Do(func() {
				if d.callback != nil {
					d.callback(nil, err)
				}
			})
			return
		}
		if len(uris) == 0 {
			fyne.Do(func() {
				if d.callback != nil {
					d.callback(nil, nil)
				}
			})
			return
		}

		picks := make([]*AttachmentFuture, 0, len(uris))
		for _, raw := range uris {
			uri, parseErr := storage.ParseURI(raw)
			if parseErr != nil {
				err = parseErr
				break
			}
			picks = append(picks, futureAttachment(AssetForURI(uri)))
		}
		if err != nil {
			picks = nil
		}

		fyne.Do(func() {
			if d.callback != nil {
				d.callback(picks, err)
			}
		})
	}()

	return true
}

func windowHandleForPortal(window fyne.Window) string {
	native, ok := window.(driver.NativeWindow)
	if !ok {
		return ""
	}

	windowHandle := ""
	native.RunNative(func(context any) {
		if x11, ok := context.(driver.X11WindowContext); ok {
			windowHandle = portal.FormatX11WindowHandle(x11.WindowHandle)
		}
	})
	return windowHandle
}
