package annotate

import (
	"image"
	"testing"
)

func TestToolNamesRoundTrip(t *testing.T) {
	for _, tool := range Tools() {
		got, err := ParseTool(tool.String())
		if err != nil {
			t.Fatalf("%v: %v", tool, err)
		}
		if got != tool {
			t.Fatalf("expected %v, got %v", tool, got)
		}
	}
	if _, err := ParseTool("laser"); err == nil {
		t.Fatalf("unknown tool name must fail")
	}
}

func TestInvalidToolIsInert(t *testing.T) {
	bad := Tool(99)
	if bad.Valid() {
		t.Fatalf("out-of-range tool must be invalid")
	}
	info := bad.Info()
	if info.Gesture != GestureNone || info.Hit != HitNone {
		t.Fatalf("invalid tool must have an inert policy row, got %+v", info)
	}
}

func TestShapeKindRoundTrip(t *testing.T) {
	for _, k := range []ShapeKind{ShapeRectangle, ShapeEllipse, ShapeRounded} {
		got, err := ParseShapeKind(k.String())
		if err != nil {
			t.Fatalf("%v: %v", k, err)
		}
		if got != k {
			t.Fatalf("expected %v, got %v", k, got)
		}
	}
}

func TestAnnotationBounds(t *testing.T) {
	a := Annotation{
		Tool:   ToolLine,
		Style:  Style{Width: 4},
		Points: []image.Point{{10, 10}, {50, 30}},
	}
	want := image.Rect(10, 10, 51, 31).Inset(-3)
	if got := a.Bounds(); got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAnnotationTranslateCopiesPoints(t *testing.T) {
	a := Annotation{
		Tool:   ToolPen,
		Points: []image.Point{{0, 0}, {5, 5}},
		Rect:   image.Rect(0, 0, 10, 10),
	}
	b := a.Translate(image.Pt(3, 4))
	if b.Points[0] != image.Pt(3, 4) || b.Rect.Min != image.Pt(3, 4) {
		t.Fatalf("translate must shift geometry, got %+v", b)
	}
	if a.Points[0] != image.Pt(0, 0) {
		t.Fatalf("translate must not mutate the original")
	}
}
