package render

import (
	"image"
	"image/color"
)

// Exported wrappers over the drawing primitives for hosts that paint UI
// chrome (toolbars, selection marquees) around the annotation layer.

// Line draws a thick line between two points.
func Line(dst *image.RGBA, a, b image.Point, col color.Color, width int) {
	drawLine(dst, a.X, a.Y, b.X, b.Y, col, width)
}

// StrokeRect outlines rect.
func StrokeRect(dst *image.RGBA, rect image.Rectangle, col color.Color, width int) {
	drawRect(dst, rect, col, width)
}

// FillRect fills rect with col using source-over blending.
func FillRect(dst *image.RGBA, rect image.Rectangle, col color.Color) {
	fillRect(dst, rect, col)
}

// DashedRect outlines rect with a dashed stroke.
func DashedRect(dst *image.RGBA, rect image.Rectangle, dash, width int, col color.Color) {
	drawDashedRect(dst, rect, dash, width, col)
}

// Checkerboard fills rect with an alternating two-color pattern.
func Checkerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	drawCheckerboard(dst, rect, size, light, dark)
}
