//go:build !android && !ios && (!flatpak || windows || wasm || js)

package picker

func mediaPickerOSOverride(d *mediaDialog) bool {
	return false
}
