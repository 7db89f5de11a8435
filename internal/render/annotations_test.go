package render

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/example/inkshot/internal/annotate"
)

func whiteCanvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

func TestArrowHeadGeometry(t *testing.T) {
	// Horizontal arrow: each head segment leaves the tip 15px long at 30
	// degrees off the reversed shaft, so the far ends sit at (87, ±8).
	got := arrowHead(image.Pt(0, 0), image.Pt(100, 0))
	want := [2]image.Point{{87, -8}, {87, 8}}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}

	// Pointing left the head mirrors.
	got = arrowHead(image.Pt(100, 0), image.Pt(0, 0))
	want = [2]image.Point{{13, 8}, {13, -8}}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestFlattenLeavesBaseUntouched(t *testing.T) {
	base := whiteCanvas(50, 50)
	a := annotate.Annotation{
		ID: "s", Tool: annotate.ToolShape, Style: annotate.DefaultStyle(),
		Rect: image.Rect(10, 10, 40, 40), Completed: true,
	}

	flat := Flatten(base, []annotate.Annotation{a})
	if got := base.RGBAAt(10, 10); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("flatten must not mutate the base, got %v", got)
	}
	if got := flat.RGBAAt(10, 10); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("expected a red border pixel, got %v", got)
	}
	// Interior stays untouched for an unfilled shape.
	if got := flat.RGBAAt(25, 25); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("unfilled shape must not paint its interior, got %v", got)
	}
}

func TestOverlaySkipsIncomplete(t *testing.T) {
	dst := whiteCanvas(50, 50)
	a := annotate.Annotation{
		ID: "s", Tool: annotate.ToolShape, Style: annotate.DefaultStyle(),
		Rect: image.Rect(10, 10, 40, 40),
	}
	Overlay(dst, []annotate.Annotation{a})
	if got := dst.RGBAAt(10, 10); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("incomplete annotations must not render, got %v", got)
	}
}

func TestOverlayPaintsInListOrder(t *testing.T) {
	dst := whiteCanvas(50, 50)
	st := annotate.DefaultStyle()
	st.Filled = true
	under := annotate.Annotation{
		ID: "under", Tool: annotate.ToolShape, Style: st,
		Rect: image.Rect(0, 0, 30, 30), Completed: true,
	}
	over := under
	over.ID = "over"
	over.Style.Color = color.RGBA{0, 0, 255, 255}
	over.Rect = image.Rect(10, 10, 40, 40)

	Overlay(dst, []annotate.Annotation{under, over})
	if got := dst.RGBAAt(20, 20); got != (color.RGBA{0, 0, 255, 255}) {
		t.Fatalf("later annotations must paint on top, got %v", got)
	}
}

func TestEraserClearsPixels(t *testing.T) {
	base := whiteCanvas(50, 50)
	a := annotate.Annotation{
		ID: "e", Tool: annotate.ToolEraser, Style: annotate.DefaultStyle(),
		Points:    []image.Point{{5, 5}, {10, 5}},
		Completed: true,
	}
	flat := Flatten(base, []annotate.Annotation{a})
	if got := flat.RGBAAt(7, 5); got != (color.RGBA{}) {
		t.Fatalf("eraser must clear to transparency, got %v", got)
	}
}

func TestEraserPreviewDoesNotErase(t *testing.T) {
	dst := whiteCanvas(50, 50)
	a := annotate.Annotation{
		ID: "e", Tool: annotate.ToolEraser, Style: annotate.DefaultStyle(),
		Points: []image.Point{{5, 5}, {10, 5}},
	}
	Candidate(dst, a)
	if got := dst.RGBAAt(7, 5); got.A == 0 {
		t.Fatalf("eraser preview must mark, not erase")
	}
}

func TestStepMarkerFillsDisc(t *testing.T) {
	dst := whiteCanvas(60, 60)
	a := annotate.Annotation{
		ID: "n", Tool: annotate.ToolStep, Style: annotate.DefaultStyle(),
		Rect: image.Rect(16, 16, 44, 44), Step: 1, Completed: true,
	}
	Overlay(dst, []annotate.Annotation{a})
	// Off-center but inside the disc, clear of the numeral.
	if got := dst.RGBAAt(22, 30); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("expected the marker disc fill, got %v", got)
	}
}

func TestBlurStandInCoversRegion(t *testing.T) {
	dst := whiteCanvas(60, 60)
	a := annotate.Annotation{
		ID: "b", Tool: annotate.ToolBlur, Style: annotate.DefaultStyle(),
		Rect: image.Rect(10, 10, 50, 50), Completed: true,
	}
	Overlay(dst, []annotate.Annotation{a})
	if got := dst.RGBAAt(30, 30); got == (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("blur stand-in must visibly alter the region")
	}
}

func TestStarPointsCount(t *testing.T) {
	pts := starPoints(image.Pt(0, 0), 20, 9, 10)
	if len(pts) != 20 {
		t.Fatalf("a 10-point star has 20 vertices, got %d", len(pts))
	}
}

func TestMeasureText(t *testing.T) {
	w, h, baseline, err := MeasureText("hello", 16)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if w <= 0 || h <= 0 || baseline <= 0 || baseline > h {
		t.Fatalf("implausible metrics w=%d h=%d baseline=%d", w, h, baseline)
	}
	wider, _, _, err := MeasureText("hello world", 16)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if wider <= w {
		t.Fatalf("longer text must measure wider: %d vs %d", wider, w)
	}
}

func TestWithOpacity(t *testing.T) {
	c := color.RGBA{200, 100, 50, 255}
	got := withOpacity(c, 0.5)
	if got.A != 128 {
		t.Fatalf("expected alpha 128, got %d", got.A)
	}
	if full := withOpacity(c, 1); full != c {
		t.Fatalf("opacity 1 must be the identity, got %v", full)
	}
}
