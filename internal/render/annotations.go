package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/example/inkshot/internal/annotate"
)

const (
	// arrowHeadLen and arrowHeadAngle fix the arrowhead geometry: each of
	// the two head segments leaves the tip at 30 degrees from the
	// reversed shaft direction.
	arrowHeadLen   = 15.0
	arrowHeadAngle = math.Pi / 6

	// candidateOpacity dims in-progress previews relative to their
	// committed appearance.
	candidateOpacity = 0.6

	// highlighterOpacity is the fixed translucency that distinguishes the
	// highlighter from the pen.
	highlighterOpacity = 0.4
)

// Overlay draws the committed annotations onto dst in list order: later
// entries paint over earlier ones, with no reordering.
func Overlay(dst *image.RGBA, annotations []annotate.Annotation) {
	for i := range annotations {
		if !annotations[i].Completed {
			continue
		}
		Draw(dst, annotations[i], false)
	}
}

// Candidate draws the in-progress annotation with preview treatment:
// reduced opacity and outlines instead of fills.
func Candidate(dst *image.RGBA, a annotate.Annotation) {
	Draw(dst, a, true)
}

// Flatten composites the committed annotations over the base image and
// returns the result. The structured list is untouched; discarding it
// after a flatten is the host's call.
func Flatten(base image.Image, annotations []annotate.Annotation) *image.RGBA {
	dst := image.NewRGBA(base.Bounds())
	draw.Draw(dst, dst.Bounds(), base, base.Bounds().Min, draw.Src)
	Overlay(dst, annotations)
	return dst
}

// Draw renders one annotation using its tool's drawing rule.
func Draw(dst *image.RGBA, a annotate.Annotation, preview bool) {
	st := a.Style
	opacity := st.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	if preview {
		opacity *= candidateOpacity
	}
	col := withOpacity(st.Color, opacity)
	width := st.Width
	if width < 1 {
		width = 1
	}

	switch a.Tool {
	case annotate.ToolPen:
		drawPolyline(dst, a.Points, col, width)
	case annotate.ToolHighlighter:
		drawPolyline(dst, a.Points, withOpacity(st.Color, opacity*highlighterOpacity), width)
	case annotate.ToolEraser:
		if preview {
			drawPolyline(dst, a.Points, color.RGBA{128, 128, 128, 96}, width)
		} else {
			erasePolyline(dst, a.Points, width)
		}
	case annotate.ToolLine:
		if len(a.Points) == 2 {
			drawLine(dst, a.Points[0].X, a.Points[0].Y, a.Points[1].X, a.Points[1].Y, col, width)
		}
	case annotate.ToolArrow:
		drawArrowAnnotation(dst, a, col, width)
	case annotate.ToolShape:
		drawShape(dst, a.Rect, st.Shape, st.Filled && !preview, col, width)
	case annotate.ToolText:
		drawText(dst, a.Rect.Min.X, a.Rect.Min.Y, a.Text, col, st.FontSize)
	case annotate.ToolBlur:
		drawBlurStandIn(dst, a.Rect, st, col, width)
	case annotate.ToolSpotlight:
		drawSpotlight(dst, a.Rect, col, width)
	case annotate.ToolCallout:
		drawCallout(dst, a.Rect, st.Filled && !preview, col, width)
	case annotate.ToolCrop:
		drawDashedRect(dst, a.Rect, 4, width, col)
	case annotate.ToolFill:
		drawFillRegion(dst, a.Rect, col)
	case annotate.ToolMagicWand:
		drawMagicWand(dst, a.Rect, col, width)
	case annotate.ToolMagnify:
		drawMagnifier(dst, a.Rect, col, width)
	case annotate.ToolCutOut:
		drawCutOut(dst, a.Rect, col, width)
	case annotate.ToolStamp:
		drawStarStamp(dst, a.Rect, col)
	case annotate.ToolStep:
		drawStepMarker(dst, a.Rect, a.Step, st.Color, opacity, st.FontSize)
	}
}

func drawPolyline(dst *image.RGBA, pts []image.Point, col color.RGBA, width int) {
	for i := 1; i < len(pts); i++ {
		drawLine(dst, pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y, col, width)
	}
}

func erasePolyline(dst *image.RGBA, pts []image.Point, width int) {
	for i := 1; i < len(pts); i++ {
		eraseLine(dst, pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y, width)
	}
}

func drawArrowAnnotation(dst *image.RGBA, a annotate.Annotation, col color.RGBA, width int) {
	if len(a.Points) != 2 {
		return
	}
	start, end := a.Points[0], a.Points[1]
	drawLine(dst, start.X, start.Y, end.X, end.Y, col, width)
	// An arrow with neither flag set still gets a head; a bare segment is
	// what the line tool is for.
	if a.Style.ArrowHead || !a.Style.ArrowTail {
		for _, p := range arrowHead(start, end) {
			drawLine(dst, end.X, end.Y, p.X, p.Y, col, width)
		}
	}
	if a.Style.ArrowTail {
		for _, p := range arrowHead(end, start) {
			drawLine(dst, start.X, start.Y, p.X, p.Y, col, width)
		}
	}
}

// arrowHead returns the far endpoints of the two head segments for an
// arrow from start to end.
func arrowHead(start, end image.Point) [2]image.Point {
	angle := math.Atan2(float64(end.Y-start.Y), float64(end.X-start.X))
	var out [2]image.Point
	for i, da := range [2]float64{arrowHeadAngle, -arrowHeadAngle} {
		out[i] = image.Pt(
			end.X-int(math.Round(math.Cos(angle+da)*arrowHeadLen)),
			end.Y-int(math.Round(math.Sin(angle+da)*arrowHeadLen)),
		)
	}
	return out
}

func drawShape(dst *image.RGBA, rect image.Rectangle, kind annotate.ShapeKind, filled bool, col color.RGBA, width int) {
	switch kind {
	case annotate.ShapeEllipse:
		cx := (rect.Min.X + rect.Max.X) / 2
		cy := (rect.Min.Y + rect.Max.Y) / 2
		rx, ry := rect.Dx()/2, rect.Dy()/2
		if filled {
			drawFilledEllipse(dst, cx, cy, rx, ry, col)
		} else {
			drawEllipse(dst, cx, cy, rx, ry, col, width)
		}
	case annotate.ShapeRounded:
		radius := rect.Dx() / 8
		if r := rect.Dy() / 8; r < radius {
			radius = r
		}
		if radius < 4 {
			radius = 4
		}
		if filled {
			fillRoundedRect(dst, rect, radius, col)
		} else {
			drawRoundedRect(dst, rect, radius, col, width)
		}
	default:
		if filled {
			fillRect(dst, rect, col)
		} else {
			drawRect(dst, rect, col, width)
		}
	}
}

// drawBlurStandIn marks a redaction region: translucent fill, a
// checkerboard keyed to the blur radius, and a border. The host applies
// the real blur when flattening for export if it wants one; on screen the
// stand-in is the contract.
func drawBlurStandIn(dst *image.RGBA, rect image.Rectangle, st annotate.Style, col color.RGBA, width int) {
	fillRect(dst, rect, withOpacity(col, 0.25))
	size := st.BlurRadius
	if size < 4 {
		size = 4
	}
	drawCheckerboard(dst, rect, size,
		color.RGBA{255, 255, 255, 60}, color.RGBA{0, 0, 0, 40})
	drawRect(dst, rect, col, width)
}

func drawSpotlight(dst *image.RGBA, rect image.Rectangle, col color.RGBA, width int) {
	cx := (rect.Min.X + rect.Max.X) / 2
	cy := (rect.Min.Y + rect.Max.Y) / 2
	rx, ry := rect.Dx()/2, rect.Dy()/2
	// Outer ring, inner highlight ring, center glow.
	drawEllipse(dst, cx, cy, rx, ry, col, width)
	drawEllipse(dst, cx, cy, rx*3/4, ry*3/4, withOpacity(col, 0.5), 1)
	drawFilledEllipse(dst, cx, cy, rx*2/5, ry*2/5, withOpacity(col, 0.2))
}

func drawCallout(dst *image.RGBA, rect image.Rectangle, filled bool, col color.RGBA, width int) {
	tail := rect.Dy() / 4
	if tail > 14 {
		tail = 14
	}
	bubble := image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y-tail)
	radius := 8
	apex := image.Pt((rect.Min.X+rect.Max.X)/2, rect.Max.Y-1)
	left := image.Pt(apex.X-tail, bubble.Max.Y-1)
	right := image.Pt(apex.X+tail, bubble.Max.Y-1)
	if filled {
		fillRoundedRect(dst, bubble, radius, col)
		fillPolygon(dst, []image.Point{left, apex, right}, col)
		return
	}
	drawRoundedRect(dst, bubble, radius, col, width)
	drawLine(dst, left.X, left.Y, apex.X, apex.Y, col, width)
	drawLine(dst, apex.X, apex.Y, right.X, right.Y, col, width)
}

// drawFillRegion is decorative: a solid wash with diagonal stripes.
func drawFillRegion(dst *image.RGBA, rect image.Rectangle, col color.RGBA) {
	fillRect(dst, rect, withOpacity(col, 0.45))
	stripe := withOpacity(col, 0.8)
	for x := rect.Min.X - rect.Dy(); x < rect.Max.X; x += 8 {
		clipLine(dst, rect, x, rect.Max.Y-1, x+rect.Dy(), rect.Min.Y, stripe)
	}
}

// clipLine draws the portion of a line that falls inside rect.
func clipLine(dst *image.RGBA, rect image.Rectangle, x0, y0, x1, y1 int, col color.Color) {
	plotLine(x0, y0, x1, y1, func(x, y int) {
		if image.Pt(x, y).In(rect) {
			blendPixel(dst, x, y, col)
		}
	})
}

// drawMagnifier is decorative: glass, handle and crosshair.
func drawMagnifier(dst *image.RGBA, rect image.Rectangle, col color.RGBA, width int) {
	r := rect.Dx()
	if rect.Dy() < r {
		r = rect.Dy()
	}
	r = r * 3 / 8
	cx := rect.Min.X + r + width
	cy := rect.Min.Y + r + width
	drawCircle(dst, cx, cy, r, col, width)
	drawFilledCircle(dst, cx, cy, r-width, withOpacity(col, 0.12))
	// Handle from the lower-right rim to the region corner.
	hx := cx + int(float64(r)*math.Cos(math.Pi/4))
	hy := cy + int(float64(r)*math.Sin(math.Pi/4))
	drawLine(dst, hx, hy, rect.Max.X-1, rect.Max.Y-1, col, width+2)
	// Crosshair.
	drawLine(dst, cx-r/3, cy, cx+r/3, cy, col, 1)
	drawLine(dst, cx, cy-r/3, cx, cy+r/3, col, 1)
}

// drawMagicWand is decorative: wand, star tip, sparkles and a dashed
// marquee around the region.
func drawMagicWand(dst *image.RGBA, rect image.Rectangle, col color.RGBA, width int) {
	drawDashedRect(dst, rect, 4, 1, col)
	tip := image.Pt(rect.Min.X+rect.Dx()/3, rect.Min.Y+rect.Dy()/3)
	base := image.Pt(rect.Max.X-rect.Dx()/6, rect.Max.Y-rect.Dy()/6)
	drawLine(dst, base.X, base.Y, tip.X, tip.Y, col, width+1)
	starRadius := rect.Dx() / 10
	if starRadius < 4 {
		starRadius = 4
	}
	fillPolygon(dst, starPoints(tip, starRadius, starRadius*2/5, 5), col)
	for _, d := range []image.Point{{-2, -1}, {1, -2}, {2, 1}} {
		sx := tip.X + d.X*starRadius
		sy := tip.Y + d.Y*starRadius
		drawFilledCircle(dst, sx, sy, 1, col)
	}
}

// drawCutOut is decorative: dashed boundary, corner brackets and a
// scissors glyph at the bottom edge.
func drawCutOut(dst *image.RGBA, rect image.Rectangle, col color.RGBA, width int) {
	drawDashedRect(dst, rect, 5, width, col)
	arm := rect.Dx() / 6
	if a := rect.Dy() / 6; a < arm {
		arm = a
	}
	if arm > 12 {
		arm = 12
	}
	corners := [4]image.Point{
		rect.Min,
		{rect.Max.X - 1, rect.Min.Y},
		{rect.Max.X - 1, rect.Max.Y - 1},
		{rect.Min.X, rect.Max.Y - 1},
	}
	dirs := [4]image.Point{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}}
	for i, c := range corners {
		drawLine(dst, c.X, c.Y, c.X+dirs[i].X*arm, c.Y, col, width+1)
		drawLine(dst, c.X, c.Y, c.X, c.Y+dirs[i].Y*arm, col, width+1)
	}
	// Scissors: two finger rings and crossed blades.
	sx := (rect.Min.X + rect.Max.X) / 2
	sy := rect.Max.Y - 1
	drawCircle(dst, sx-8, sy+6, 3, col, 1)
	drawCircle(dst, sx+8, sy+6, 3, col, 1)
	drawLine(dst, sx-6, sy+4, sx+6, sy-8, col, 1)
	drawLine(dst, sx+6, sy+4, sx-6, sy-8, col, 1)
}

// drawStarStamp fills a ten-point star inscribed in rect.
func drawStarStamp(dst *image.RGBA, rect image.Rectangle, col color.RGBA) {
	cx := (rect.Min.X + rect.Max.X) / 2
	cy := (rect.Min.Y + rect.Max.Y) / 2
	outer := rect.Dx()
	if rect.Dy() < outer {
		outer = rect.Dy()
	}
	outer /= 2
	if outer < 2 {
		return
	}
	fillPolygon(dst, starPoints(image.Pt(cx, cy), outer, outer*45/100, 10), col)
}

// starPoints returns the 2n vertices of an n-point star, alternating outer
// and inner radius, with the first point straight up.
func starPoints(center image.Point, outer, inner, points int) []image.Point {
	out := make([]image.Point, 0, 2*points)
	for i := 0; i < 2*points; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		angle := -math.Pi/2 + math.Pi*float64(i)/float64(points)
		out = append(out, image.Pt(
			center.X+int(math.Round(math.Cos(angle)*float64(r))),
			center.Y+int(math.Round(math.Sin(angle)*float64(r))),
		))
	}
	return out
}

func drawStepMarker(dst *image.RGBA, rect image.Rectangle, step int, col color.RGBA, opacity, fontSize float64) {
	cx := (rect.Min.X + rect.Max.X) / 2
	cy := (rect.Min.Y + rect.Max.Y) / 2
	r := rect.Dx()
	if rect.Dy() < r {
		r = rect.Dy()
	}
	r /= 2
	drawFilledCircle(dst, cx, cy, r, withOpacity(col, opacity))
	if fontSize <= 0 {
		fontSize = float64(r)
	}
	drawCenteredLabel(dst, cx, cy, fmt.Sprintf("%d", step), col, fontSize)
}
