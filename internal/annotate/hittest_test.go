package annotate

import (
	"image"
	"testing"
)

func TestHitTestEmpty(t *testing.T) {
	if _, ok := HitTest(nil, image.Pt(10, 10)); ok {
		t.Fatalf("empty list must not match")
	}
}

func TestHitTestTopmostWins(t *testing.T) {
	list := []Annotation{
		rectAnnotation("under", 0),
		rectAnnotation("over", 10),
	}
	a, ok := HitTest(list, image.Pt(15, 10))
	if !ok {
		t.Fatalf("expected a hit in the overlap")
	}
	if a.ID != "over" {
		t.Fatalf("expected the most recent annotation, got %s", a.ID)
	}
}

func TestHitTestSegmentDistance(t *testing.T) {
	line := Annotation{
		ID:        "l",
		Tool:      ToolLine,
		Style:     DefaultStyle(), // width 2, reach 7
		Points:    []image.Point{{0, 0}, {100, 0}},
		Completed: true,
	}
	list := []Annotation{line}

	if _, ok := HitTest(list, image.Pt(50, 7)); !ok {
		t.Fatalf("point at distance 7 must hit a width-2 line")
	}
	if _, ok := HitTest(list, image.Pt(50, 8)); ok {
		t.Fatalf("point at distance 8 must miss")
	}
	// Beyond the endpoint the projection clamps, so distance is measured
	// to the endpoint itself.
	if _, ok := HitTest(list, image.Pt(107, 0)); !ok {
		t.Fatalf("point 7 past the endpoint must hit")
	}
	if _, ok := HitTest(list, image.Pt(108, 0)); ok {
		t.Fatalf("point 8 past the endpoint must miss")
	}
}

func TestHitTestFreehandPoints(t *testing.T) {
	pen := Annotation{
		ID:        "p",
		Tool:      ToolPen,
		Style:     DefaultStyle(),
		Points:    []image.Point{{0, 0}, {50, 50}},
		Completed: true,
	}
	list := []Annotation{pen}

	if _, ok := HitTest(list, image.Pt(52, 52)); !ok {
		t.Fatalf("point near a recorded sample must hit")
	}
	// Mid-segment between sparse samples is a known miss of the
	// per-point proximity rule.
	if _, ok := HitTest(list, image.Pt(25, 25)); ok {
		t.Fatalf("midpoint between sparse samples matches no recorded point")
	}
}

func TestHitTestSkipsDecorative(t *testing.T) {
	fill := Annotation{
		ID:        "f",
		Tool:      ToolFill,
		Style:     DefaultStyle(),
		Rect:      image.Rect(0, 0, 100, 100),
		Completed: true,
	}
	if _, ok := HitTest([]Annotation{fill}, image.Pt(50, 50)); ok {
		t.Fatalf("decorative tools must never match")
	}
}

func TestHitTestSkipsIncomplete(t *testing.T) {
	a := rectAnnotation("a", 0)
	a.Completed = false
	if _, ok := HitTest([]Annotation{a}, image.Pt(10, 10)); ok {
		t.Fatalf("in-flight candidates must never match")
	}
}

func TestHitTestStoreConvenience(t *testing.T) {
	s := NewStore(0)
	s.Add(rectAnnotation("a", 0))
	if a, ok := s.HitTest(image.Pt(5, 5)); !ok || a.ID != "a" {
		t.Fatalf("store hit test must find the committed annotation")
	}
}

func TestPointSegmentDistanceDegenerate(t *testing.T) {
	p := image.Pt(3, 4)
	if d := pointSegmentDistance(p, image.Pt(0, 0), image.Pt(0, 0)); d != 5 {
		t.Fatalf("degenerate segment must measure to the point, got %v", d)
	}
}
