//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

package clipboard

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	xclip "golang.design/x/clipboard"
)

var initOnce sync.Once
var initErr error

func ensureInit() error {
	initOnce.Do(func() {
		initErr = xclip.Init()
	})
	return initErr
}

func writeImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return fmt.Errorf("clipboard init: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode clipboard image: %w", err)
	}
	xclip.Write(xclip.FmtImage, buf.Bytes())
	return nil
}

func readImage() (image.Image, error) {
	if err := ensureInit(); err != nil {
		return nil, fmt.Errorf("clipboard init: %w", err)
	}
	data := xclip.Read(xclip.FmtImage)
	if len(data) == 0 {
		return nil, fmt.Errorf("clipboard holds no image")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode clipboard image: %w", err)
	}
	return img, nil
}
