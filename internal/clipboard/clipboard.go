// Package clipboard copies edited images to the system clipboard.
//
// On unix-like systems a cgo build uses golang.design/x/clipboard,
// which covers X11 and Wayland desktops. Without cgo a pure-Go X11
// path serves the selection directly over the wire protocol. Other
// platforms report the operation as unsupported.
package clipboard

import (
	"errors"
	"image"
)

// ErrUnsupported is returned when no clipboard backend is available
// on the current platform.
var ErrUnsupported = errors.New("clipboard: not supported on this platform")

// WriteImage places img on the system clipboard as PNG.
func WriteImage(img image.Image) error {
	return writeImage(img)
}

// ReadImage decodes an image from the system clipboard, if any.
func ReadImage() (image.Image, error) {
	return readImage()
}
