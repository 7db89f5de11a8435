//go:build !linux && !freebsd && !openbsd && !netbsd && !dragonfly

package clipboard

import "image"

func writeImage(image.Image) error { return ErrUnsupported }

func readImage() (image.Image, error) { return nil, ErrUnsupported }
