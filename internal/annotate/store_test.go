package annotate

import (
	"fmt"
	"image"
	"testing"
)

func rectAnnotation(id string, x int) Annotation {
	return Annotation{
		ID:        id,
		Tool:      ToolShape,
		Style:     DefaultStyle(),
		Rect:      image.Rect(x, 0, x+20, 20),
		Completed: true,
	}
}

func ids(s *Store) []string {
	out := make([]string, 0, s.Len())
	for _, a := range s.Annotations() {
		out = append(out, a.ID)
	}
	return out
}

func TestStoreUndoRedo(t *testing.T) {
	s := NewStore(0)
	s.Add(rectAnnotation("a", 0))
	s.Add(rectAnnotation("b", 30))
	if s.Len() != 2 {
		t.Fatalf("expected 2 annotations, got %d", s.Len())
	}

	if !s.Undo() {
		t.Fatalf("undo must succeed")
	}
	if got := ids(s); len(got) != 1 || got[0] != "a" {
		t.Fatalf("expected [a] after undo, got %v", got)
	}
	if !s.CanRedo() {
		t.Fatalf("undo must enable redo")
	}

	if !s.Redo() {
		t.Fatalf("redo must succeed")
	}
	if got := ids(s); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected [a b] after redo, got %v", got)
	}
	if s.CanRedo() {
		t.Fatalf("redo stack must be empty again")
	}

	if !s.Undo() || !s.Undo() {
		t.Fatalf("two more undos must succeed")
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty list, got %d", s.Len())
	}
	if s.Undo() {
		t.Fatalf("undo past the beginning must report false")
	}
}

func TestStoreMutationClearsRedo(t *testing.T) {
	s := NewStore(0)
	s.Add(rectAnnotation("a", 0))
	s.Add(rectAnnotation("b", 30))
	s.Undo()
	if !s.CanRedo() {
		t.Fatalf("expected redo after undo")
	}

	s.Add(rectAnnotation("c", 60))
	if s.CanRedo() {
		t.Fatalf("a new mutation must clear the redo stack")
	}
	if got := ids(s); len(got) != 2 || got[1] != "c" {
		t.Fatalf("expected [a c], got %v", got)
	}
}

func TestStoreDepthCap(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 5; i++ {
		s.Add(rectAnnotation(fmt.Sprintf("a%d", i), i*30))
	}

	undos := 0
	for s.Undo() {
		undos++
	}
	if undos != 3 {
		t.Fatalf("expected the undo stack capped at 3, got %d", undos)
	}
	// The oldest snapshots were evicted, so history bottoms out at the
	// 2-element list, not at empty.
	if s.Len() != 2 {
		t.Fatalf("expected 2 annotations at the bottom of history, got %d", s.Len())
	}
}

func TestStoreUpdatePreservesPosition(t *testing.T) {
	s := NewStore(0)
	s.Add(rectAnnotation("a", 0))
	s.Add(rectAnnotation("b", 30))
	s.Add(rectAnnotation("c", 60))

	moved := rectAnnotation("b", 100)
	moved.Completed = false // Update re-marks it
	s.Update("b", moved)

	got := s.Annotations()
	if got[1].ID != "b" {
		t.Fatalf("update must keep list position, got order %v", ids(s))
	}
	if got[1].Rect.Min.X != 100 {
		t.Fatalf("update must apply new geometry, got %v", got[1].Rect)
	}
	if !got[1].Completed {
		t.Fatalf("updated annotation must stay completed")
	}
}

func TestStoreUnknownIDLeavesListUntouched(t *testing.T) {
	s := NewStore(0)
	s.Add(rectAnnotation("a", 0))

	s.Remove("missing")
	if got := ids(s); len(got) != 1 || got[0] != "a" {
		t.Fatalf("remove of unknown id must not change the list, got %v", got)
	}

	s.Update("missing", rectAnnotation("missing", 50))
	if got := ids(s); len(got) != 1 || got[0] != "a" {
		t.Fatalf("update of unknown id must not change the list, got %v", got)
	}
}

func TestStoreClearAllIsUndoable(t *testing.T) {
	s := NewStore(0)
	s.Add(rectAnnotation("a", 0))
	s.Add(rectAnnotation("b", 30))

	s.ClearAll()
	if s.Len() != 0 {
		t.Fatalf("expected empty list after clear, got %d", s.Len())
	}
	if !s.Undo() {
		t.Fatalf("clear must be undoable")
	}
	if got := ids(s); len(got) != 2 {
		t.Fatalf("expected both annotations restored, got %v", got)
	}
}

func TestStoreModified(t *testing.T) {
	s := NewStore(0)
	if s.Modified() {
		t.Fatalf("fresh store must not be modified")
	}
	s.Add(rectAnnotation("a", 0))
	if !s.Modified() {
		t.Fatalf("add must mark the store modified")
	}
}

func TestStoreUndoSurvivesUpdate(t *testing.T) {
	s := NewStore(0)
	s.Add(rectAnnotation("a", 0))
	s.Update("a", rectAnnotation("a", 90))

	if !s.Undo() {
		t.Fatalf("undo must succeed")
	}
	if got := s.Annotations()[0].Rect.Min.X; got != 0 {
		t.Fatalf("undo must restore the pre-update geometry, got x=%d", got)
	}
	if !s.Redo() {
		t.Fatalf("redo must succeed")
	}
	if got := s.Annotations()[0].Rect.Min.X; got != 90 {
		t.Fatalf("redo must reapply the update, got x=%d", got)
	}
}

func TestStoreSnapshotsAfterUndoUseRestoredState(t *testing.T) {
	s := NewStore(0)
	s.Add(rectAnnotation("a", 0))
	s.Update("a", rectAnnotation("a", 90))

	// Undo the update, then mutate again: the snapshot taken for the new
	// mutation must capture the restored geometry, not bytes cached while
	// the update was live.
	if !s.Undo() {
		t.Fatalf("undo must succeed")
	}
	s.Add(rectAnnotation("b", 30))

	if !s.Undo() {
		t.Fatalf("undo of the add must succeed")
	}
	got := s.Annotations()
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected [a] after undoing the add, got %v", ids(s))
	}
	if got[0].Rect.Min.X != 0 {
		t.Fatalf("undo of the add must restore a at x=0, got x=%d", got[0].Rect.Min.X)
	}
}

func TestStoreCountByTool(t *testing.T) {
	s := NewStore(0)
	s.Add(rectAnnotation("a", 0))
	step := Annotation{ID: "s1", Tool: ToolStep, Style: DefaultStyle(),
		Rect: image.Rect(0, 0, 28, 28), Step: 1, Completed: true}
	s.Add(step)
	if got := s.Count(ToolStep); got != 1 {
		t.Fatalf("expected 1 step, got %d", got)
	}
	if got := s.Count(ToolShape); got != 1 {
		t.Fatalf("expected 1 shape, got %d", got)
	}
}
