// Package render rasterizes annotation overlays. It draws the committed
// list in painter's order plus one optional in-progress candidate, and
// provides the flatten operation that bakes annotations into the base
// image for saving.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"
)

func setThickPixel(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			blendPixel(img, x+dx, y+dy, col)
		}
	}
}

// blendPixel composites col over the destination pixel so translucent
// strokes (highlighter, previews) layer instead of overwriting.
func blendPixel(img *image.RGBA, x, y int, col color.Color) {
	if !image.Pt(x, y).In(img.Bounds()) {
		return
	}
	_, _, _, a := col.RGBA()
	if a == 0xffff {
		img.Set(x, y, col)
		return
	}
	dst := img.RGBAAt(x, y)
	sr, sg, sb, sa := col.RGBA()
	da := 0xffff - sa
	img.SetRGBA(x, y, color.RGBA{
		R: uint8((sr + uint32(dst.R)*0x101*da/0xffff) >> 8),
		G: uint8((sg + uint32(dst.G)*0x101*da/0xffff) >> 8),
		B: uint8((sb + uint32(dst.B)*0x101*da/0xffff) >> 8),
		A: uint8((sa + uint32(dst.A)*0x101*da/0xffff) >> 8),
	})
}

// erasePixel clears a thick pixel to full transparency.
func erasePixel(img *image.RGBA, x, y, thick int) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			if image.Pt(x+dx, y+dy).In(img.Bounds()) {
				img.SetRGBA(x+dx, y+dy, color.RGBA{})
			}
		}
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	plotLine(x0, y0, x1, y1, func(x, y int) {
		setThickPixel(img, x, y, thick, col)
	})
}

func eraseLine(img *image.RGBA, x0, y0, x1, y1, thick int) {
	plotLine(x0, y0, x1, y1, func(x, y int) {
		erasePixel(img, x, y, thick)
	})
}

// plotLine walks the Bresenham raster between the two points.
func plotLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	drawLine(img, rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Min.Y, col, thick)
	drawLine(img, rect.Max.X-1, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, col, thick)
	drawLine(img, rect.Max.X-1, rect.Max.Y-1, rect.Min.X, rect.Max.Y-1, col, thick)
	drawLine(img, rect.Min.X, rect.Max.Y-1, rect.Min.X, rect.Min.Y, col, thick)
}

func fillRect(img *image.RGBA, rect image.Rectangle, col color.Color) {
	draw.Draw(img, rect, image.NewUniform(col), image.Point{}, draw.Over)
}

func drawEllipse(img *image.RGBA, cx, cy, rx, ry int, col color.Color, thick int) {
	if rx < 1 {
		rx = 1
	}
	if ry < 1 {
		ry = 1
	}
	steps := int(math.Ceil(2 * math.Pi * math.Sqrt(float64(rx*rx+ry*ry))))
	if steps < 8 {
		steps = 8
	}
	var prevX, prevY int
	for i := 0; i <= steps; i++ {
		angle := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Cos(angle)*float64(rx))
		y := cy + int(math.Sin(angle)*float64(ry))
		if i > 0 {
			drawLine(img, prevX, prevY, x, y, col, thick)
		} else {
			setThickPixel(img, x, y, thick, col)
		}
		prevX, prevY = x, y
	}
}

func drawFilledEllipse(img *image.RGBA, cx, cy, rx, ry int, col color.Color) {
	if rx < 1 || ry < 1 {
		return
	}
	for dy := -ry; dy <= ry; dy++ {
		span := int(float64(rx) * math.Sqrt(1.0-float64(dy*dy)/float64(ry*ry)))
		for dx := -span; dx <= span; dx++ {
			blendPixel(img, cx+dx, cy+dy, col)
		}
	}
}

func drawFilledCircle(img *image.RGBA, cx, cy, r int, col color.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				blendPixel(img, cx+dx, cy+dy, col)
			}
		}
	}
}

func drawCircle(img *image.RGBA, cx, cy, r int, col color.Color, thick int) {
	drawEllipse(img, cx, cy, r, r, col, thick)
}

// drawRoundedRect strokes a rectangle with quarter-ellipse corners of the
// given radius.
func drawRoundedRect(img *image.RGBA, rect image.Rectangle, radius int, col color.Color, thick int) {
	r := clampCornerRadius(rect, radius)
	x0, y0 := rect.Min.X, rect.Min.Y
	x1, y1 := rect.Max.X-1, rect.Max.Y-1
	drawLine(img, x0+r, y0, x1-r, y0, col, thick)
	drawLine(img, x0+r, y1, x1-r, y1, col, thick)
	drawLine(img, x0, y0+r, x0, y1-r, col, thick)
	drawLine(img, x1, y0+r, x1, y1-r, col, thick)
	drawArc(img, x0+r, y0+r, r, math.Pi, 3*math.Pi/2, col, thick)
	drawArc(img, x1-r, y0+r, r, 3*math.Pi/2, 2*math.Pi, col, thick)
	drawArc(img, x1-r, y1-r, r, 0, math.Pi/2, col, thick)
	drawArc(img, x0+r, y1-r, r, math.Pi/2, math.Pi, col, thick)
}

func fillRoundedRect(img *image.RGBA, rect image.Rectangle, radius int, col color.Color) {
	r := clampCornerRadius(rect, radius)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		inset := 0
		if y < rect.Min.Y+r {
			inset = cornerInset(r, rect.Min.Y+r-y)
		} else if y >= rect.Max.Y-r {
			inset = cornerInset(r, y-(rect.Max.Y-1-r))
		}
		for x := rect.Min.X + inset; x < rect.Max.X-inset; x++ {
			blendPixel(img, x, y, col)
		}
	}
}

func clampCornerRadius(rect image.Rectangle, radius int) int {
	r := radius
	if max := rect.Dx() / 2; r > max {
		r = max
	}
	if max := rect.Dy() / 2; r > max {
		r = max
	}
	if r < 0 {
		r = 0
	}
	return r
}

// cornerInset returns how far a scanline dy rows into a corner arc starts
// inside the rectangle edge.
func cornerInset(r, dy int) int {
	if dy > r {
		dy = r
	}
	span := int(math.Sqrt(float64(r*r - dy*dy)))
	return r - span
}

func drawArc(img *image.RGBA, cx, cy, r int, from, to float64, col color.Color, thick int) {
	if r < 1 {
		return
	}
	steps := int(math.Ceil(float64(r) * (to - from)))
	if steps < 4 {
		steps = 4
	}
	var prevX, prevY int
	for i := 0; i <= steps; i++ {
		angle := from + (to-from)*float64(i)/float64(steps)
		x := cx + int(math.Cos(angle)*float64(r))
		y := cy + int(math.Sin(angle)*float64(r))
		if i > 0 {
			drawLine(img, prevX, prevY, x, y, col, thick)
		} else {
			setThickPixel(img, x, y, thick, col)
		}
		prevX, prevY = x, y
	}
}

func drawDashedLine(img *image.RGBA, x0, y0, x1, y1, dash, thick int, col color.Color) {
	i := 0
	plotLine(x0, y0, x1, y1, func(x, y int) {
		if (i/dash)%2 == 0 {
			setThickPixel(img, x, y, thick, col)
		}
		i++
	})
}

func drawDashedRect(img *image.RGBA, rect image.Rectangle, dash, thick int, col color.Color) {
	drawDashedLine(img, rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Min.Y, dash, thick, col)
	drawDashedLine(img, rect.Max.X-1, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, dash, thick, col)
	drawDashedLine(img, rect.Max.X-1, rect.Max.Y-1, rect.Min.X, rect.Max.Y-1, dash, thick, col)
	drawDashedLine(img, rect.Min.X, rect.Max.Y-1, rect.Min.X, rect.Min.Y, dash, thick, col)
}

// drawCheckerboard tiles rect with alternating squares of the two colors,
// composited over the existing pixels.
func drawCheckerboard(img *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	if size < 1 {
		size = 1
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				blendPixel(img, x, y, light)
			} else {
				blendPixel(img, x, y, dark)
			}
		}
	}
}

// fillPolygon rasterizes a closed polygon with even-odd scanline filling.
func fillPolygon(img *image.RGBA, pts []image.Point, col color.Color) {
	if len(pts) < 3 {
		return
	}
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	for y := minY; y <= maxY; y++ {
		var xs []int
		j := len(pts) - 1
		for i := 0; i < len(pts); i++ {
			a, b := pts[i], pts[j]
			if (a.Y <= y && b.Y > y) || (b.Y <= y && a.Y > y) {
				t := float64(y-a.Y) / float64(b.Y-a.Y)
				xs = append(xs, a.X+int(t*float64(b.X-a.X)))
			}
			j = i
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := xs[i]; x <= xs[i+1]; x++ {
				blendPixel(img, x, y, col)
			}
		}
	}
}

// withOpacity scales the color's alpha by the factor, clamped to [0, 1].
func withOpacity(c color.RGBA, opacity float64) color.RGBA {
	if opacity >= 1 {
		return c
	}
	if opacity < 0 {
		opacity = 0
	}
	c.A = uint8(float64(c.A)*opacity + 0.5)
	return c
}

// luminance implements the perceived-brightness weighting used to choose a
// readable label color over a filled marker.
func luminance(c color.RGBA) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}
