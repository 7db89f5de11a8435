package annotate

import (
	"image"
	"math"

	"github.com/google/uuid"
)

// Phase labels a pointer event within a gesture.
type Phase int

const (
	PhaseBegin Phase = iota
	PhaseMove
	PhaseEnd
)

// Event is one element of the pointer stream consumed by a Session.
type Event struct {
	Phase Phase
	Pos   image.Point
}

// Session turns a begin/move/end pointer stream into at most one candidate
// annotation per gesture and commits it to the store when the gesture ends
// and the candidate passes the admission test.
type Session struct {
	store  *Store
	active bool
	cand   Annotation
	start  image.Point
}

// NewSession creates a session committing into store.
func NewSession(store *Store) *Session {
	return &Session{store: store}
}

// Active reports whether a gesture is in flight.
func (s *Session) Active() bool { return s.active }

// Candidate returns the in-flight annotation for preview rendering.
func (s *Session) Candidate() (Annotation, bool) {
	return s.cand, s.active
}

// Handle feeds one pointer event through the session. tool and style are
// only consulted on PhaseBegin; the candidate keeps the snapshot taken
// then. It returns the committed annotation when a PhaseEnd event passes
// admission.
func (s *Session) Handle(ev Event, tool Tool, style Style) (Annotation, bool) {
	switch ev.Phase {
	case PhaseBegin:
		s.Begin(tool, style, ev.Pos)
	case PhaseMove:
		s.Move(ev.Pos)
	case PhaseEnd:
		return s.End(ev.Pos)
	}
	return Annotation{}, false
}

// Begin starts a gesture at p, snapshotting tool and style into the
// candidate. Tools with no gesture (select, move) leave the session idle.
func (s *Session) Begin(tool Tool, style Style, p image.Point) {
	s.active = false
	info := tool.Info()
	if info.Gesture == GestureNone {
		return
	}
	s.start = p
	s.cand = Annotation{
		ID:    uuid.NewString(),
		Tool:  tool,
		Style: style,
	}
	switch info.Gesture {
	case GestureFreehand:
		s.cand.Points = []image.Point{p}
	case GestureTwoPoint:
		s.cand.Points = []image.Point{p, p}
	case GestureRect:
		s.cand.Rect = orderedRect(p, p)
	case GestureTap:
		s.cand.Rect = tapRect(tool, p)
		if tool == ToolStep {
			// Live count, not a stored sequence: deleting an earlier
			// step does not renumber, it only affects the next label.
			s.cand.Step = 1 + s.store.Count(ToolStep)
		}
	}
	s.active = true
}

// Move extends the gesture to p using the tool's accumulation rule.
func (s *Session) Move(p image.Point) {
	if !s.active {
		return
	}
	switch s.cand.Tool.Info().Gesture {
	case GestureFreehand:
		s.cand.Points = append(s.cand.Points, p)
	case GestureTwoPoint:
		s.cand.Points[1] = p
	case GestureRect:
		s.cand.Rect = orderedRect(s.start, p)
	}
}

// SetText replaces the candidate's text. Only meaningful for the text tool,
// whose admission requires a non-empty string.
func (s *Session) SetText(text string) {
	if s.active {
		s.cand.Text = text
	}
}

// End finishes the gesture at p. The candidate is committed to the store
// and returned if it passes the admission test; otherwise it is silently
// discarded with no store mutation.
func (s *Session) End(p image.Point) (Annotation, bool) {
	if !s.active {
		return Annotation{}, false
	}
	s.Move(p)
	cand := s.cand
	s.active = false
	s.cand = Annotation{}
	if !Admit(cand) {
		return Annotation{}, false
	}
	cand.Completed = true
	s.store.Add(cand)
	return cand, true
}

// Cancel discards the in-flight candidate without touching the store.
func (s *Session) Cancel() {
	s.active = false
	s.cand = Annotation{}
}

// Admit is the per-tool minimum-content test gating commits. Degenerate
// geometry never reaches the store, so no downstream code handles it.
func Admit(a Annotation) bool {
	info := a.Tool.Info()
	switch info.Gesture {
	case GestureFreehand:
		return len(a.Points) > 1
	case GestureTwoPoint:
		if len(a.Points) != 2 {
			return false
		}
		dx := float64(a.Points[1].X - a.Points[0].X)
		dy := float64(a.Points[1].Y - a.Points[0].Y)
		return math.Hypot(dx, dy) > float64(info.MinSize)
	case GestureRect:
		return a.Rect.Dx() > info.MinSize && a.Rect.Dy() > info.MinSize
	case GestureTap:
		if a.Tool == ToolText {
			return a.Text != ""
		}
		return true
	}
	return false
}

// tapRect builds the default-sized rect a tap tool commits. Text anchors at
// the tap point; markers center on it.
func tapRect(tool Tool, p image.Point) image.Rectangle {
	size := tool.Info().TapSize
	if tool == ToolText {
		return image.Rect(p.X, p.Y, p.X+size, p.Y+size/4)
	}
	half := size / 2
	return image.Rect(p.X-half, p.Y-half, p.X-half+size, p.Y-half+size)
}
