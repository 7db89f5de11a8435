// Package annotate implements the vector annotation engine: gesture
// handling, the committed annotation store with linear undo/redo, spatial
// hit-testing and the snapshot codec. Rendering lives in internal/render.
//
// The engine is single-goroutine by design: all mutations happen on the
// goroutine that receives pointer events, and readers (renderer,
// hit-tester) run on the same goroutine.
package annotate

import (
	"image"
	"image/color"
)

// Style is the immutable bundle of drawing settings captured when a gesture
// begins. Later settings changes never affect an in-flight candidate.
type Style struct {
	Color      color.RGBA
	Width      int
	Opacity    float64
	FontSize   float64
	Shape      ShapeKind
	Filled     bool
	BlurRadius int
	ArrowHead  bool
	ArrowTail  bool
}

// DefaultStyle returns the settings used before the host configures any.
func DefaultStyle() Style {
	return Style{
		Color:      color.RGBA{255, 0, 0, 255},
		Width:      2,
		Opacity:    1,
		FontSize:   16,
		Shape:      ShapeRectangle,
		BlurRadius: 8,
		ArrowHead:  true,
	}
}

// Annotation is a single vector object. Which geometry fields are populated
// depends on the tool: Points for freehand and two-point tools, Rect for
// rect-based and tap tools, Text for the text tool, Step for step markers.
// Fields irrelevant to the tool stay zero-valued.
type Annotation struct {
	ID    string
	Tool  Tool
	Style Style

	Points []image.Point
	Rect   image.Rectangle
	Text   string
	Step   int

	// Completed is false while the gesture is still in flight. Only
	// completed annotations are stored, rendered and hit-tested.
	Completed bool
}

// Bounds returns the annotation's bounding rectangle padded by half the
// stroke width, suitable for selection marquees and repaint regions.
func (a *Annotation) Bounds() image.Rectangle {
	var r image.Rectangle
	switch a.Tool.Info().Gesture {
	case GestureFreehand, GestureTwoPoint:
		if len(a.Points) == 0 {
			return image.Rectangle{}
		}
		minX, minY := a.Points[0].X, a.Points[0].Y
		maxX, maxY := minX, minY
		for _, p := range a.Points[1:] {
			if p.X < minX {
				minX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}
		r = image.Rect(minX, minY, maxX+1, maxY+1)
	default:
		r = a.Rect
	}
	pad := a.Style.Width/2 + 1
	return r.Inset(-pad)
}

// Translate returns a copy of the annotation shifted by d. Point slices are
// copied so the original geometry is left untouched.
func (a Annotation) Translate(d image.Point) Annotation {
	out := a
	if len(a.Points) > 0 {
		out.Points = make([]image.Point, len(a.Points))
		for i, p := range a.Points {
			out.Points[i] = p.Add(d)
		}
	}
	out.Rect = a.Rect.Add(d)
	return out
}

// orderedRect normalizes two drag corners into a rectangle with
// non-negative width and height.
func orderedRect(a, b image.Point) image.Rectangle {
	minX, maxX := a.X, b.X
	if maxX < minX {
		minX, maxX = maxX, minX
	}
	minY, maxY := a.Y, b.Y
	if maxY < minY {
		minY, maxY = maxY, minY
	}
	return image.Rect(minX, minY, maxX, maxY)
}
