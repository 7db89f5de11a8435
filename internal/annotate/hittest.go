package annotate

import (
	"image"
	"math"
)

// hitSlop widens proximity checks beyond the stroke width so thin lines
// stay selectable.
const hitSlop = 5

// HitTest returns the topmost committed annotation containing or near p,
// scanning from most recently added to oldest. Purely decorative tools
// (fill, magic wand, magnify, cut-out) never match.
func HitTest(annotations []Annotation, p image.Point) (Annotation, bool) {
	for i := len(annotations) - 1; i >= 0; i-- {
		a := &annotations[i]
		if !a.Completed {
			continue
		}
		if hits(a, p) {
			return *a, true
		}
	}
	return Annotation{}, false
}

// HitTestStore is a convenience over the store's live list.
func (s *Store) HitTest(p image.Point) (Annotation, bool) {
	return HitTest(s.annotations, p)
}

func hits(a *Annotation, p image.Point) bool {
	reach := float64(a.Style.Width + hitSlop)
	switch a.Tool.Info().Hit {
	case HitRect:
		return p.In(a.Rect)
	case HitSegment:
		if len(a.Points) != 2 {
			return false
		}
		return pointSegmentDistance(p, a.Points[0], a.Points[1]) <= reach
	case HitPoints:
		// Coarse proxy: distance to recorded points, not to the polyline
		// itself. Sparse point runs can miss between samples.
		for _, q := range a.Points {
			if math.Hypot(float64(p.X-q.X), float64(p.Y-q.Y)) <= reach {
				return true
			}
		}
	}
	return false
}

// pointSegmentDistance returns the distance from p to segment ab, clamping
// the projection to the segment's extent.
func pointSegmentDistance(p, a, b image.Point) float64 {
	ax, ay := float64(a.X), float64(a.Y)
	bx, by := float64(b.X), float64(b.Y)
	px, py := float64(p.X), float64(p.Y)
	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}
