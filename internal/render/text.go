package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const defaultFontSize = 16

var (
	fontOnce    sync.Once
	fontErr     error
	regularFont *opentype.Font
	faceCache   sync.Map // map[float64]font.Face
)

func loadFont() error {
	fontOnce.Do(func() {
		regularFont, fontErr = opentype.Parse(goregular.TTF)
	})
	return fontErr
}

func faceForSize(size float64) (font.Face, error) {
	if size <= 0 {
		size = defaultFontSize
	}
	size = math.Round(size*4) / 4
	if face, ok := faceCache.Load(size); ok {
		return face.(font.Face), nil
	}
	if err := loadFont(); err != nil {
		return nil, fmt.Errorf("text font: %w", err)
	}
	face, err := opentype.NewFace(regularFont, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	faceCache.Store(size, face)
	return face, nil
}

// MeasureText returns the bounding box of text at the given point size and
// the offset from the top to the baseline.
func MeasureText(text string, size float64) (width, height, baseline int, err error) {
	face, err := faceForSize(size)
	if err != nil {
		return 0, 0, 0, err
	}
	drawer := &font.Drawer{Face: face}
	width = drawer.MeasureString(text).Ceil()
	metrics := face.Metrics()
	baseline = metrics.Ascent.Ceil()
	height = baseline + metrics.Descent.Ceil()
	return width, height, baseline, nil
}

// drawText renders text with its top-left corner at (x, y).
func drawText(img *image.RGBA, x, y int, text string, col color.Color, size float64) {
	face, err := faceForSize(size)
	if err != nil {
		// Missing font data is a build defect; there is nothing useful
		// to draw in its place.
		return
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(text)
}

// drawCenteredLabel renders text centered on (cx, cy), picking black or
// white for contrast against the backing color.
func drawCenteredLabel(img *image.RGBA, cx, cy int, text string, backing color.RGBA, size float64) {
	face, err := faceForSize(size)
	if err != nil {
		return
	}
	textCol := color.Color(color.Black)
	if luminance(backing) < 128 {
		textCol = color.White
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textCol),
		Face: face,
	}
	w := drawer.MeasureString(text).Ceil()
	metrics := face.Metrics()
	h := metrics.Ascent.Ceil() + metrics.Descent.Ceil()
	drawer.Dot = fixed.P(cx-w/2, cy-h/2+metrics.Ascent.Ceil())
	drawer.DrawString(text)
}
