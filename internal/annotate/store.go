package annotate

import (
	"bytes"
	"log"
)

// DefaultUndoDepth bounds the undo stack when the host does not configure
// a depth.
const DefaultUndoDepth = 50

// Store owns the ordered committed annotation list for one editing session
// plus bounded undo/redo stacks of codec-encoded snapshots. Order is
// z-order: later entries draw on top. The store is not safe for concurrent
// use; one goroutine owns it for the session's lifetime.
type Store struct {
	annotations []Annotation
	undo        [][]byte
	redo        [][]byte
	depth       int
	modified    bool

	// encoded caches each committed annotation's codec record so pushing
	// a snapshot reuses the bytes of unchanged entries instead of
	// re-encoding their geometry. Entries are invalidated on Update;
	// committed annotations are otherwise immutable.
	encoded map[string][]byte
}

// NewStore creates an empty store. depth bounds the undo stack; values
// below 1 select DefaultUndoDepth.
func NewStore(depth int) *Store {
	if depth < 1 {
		depth = DefaultUndoDepth
	}
	return &Store{
		depth:   depth,
		encoded: make(map[string][]byte),
	}
}

// Annotations returns the live ordered list. Callers must treat it as
// read-only; all mutations go through the store.
func (s *Store) Annotations() []Annotation { return s.annotations }

// Len returns the number of committed annotations.
func (s *Store) Len() int { return len(s.annotations) }

// Count returns how many committed annotations carry the given tool tag.
func (s *Store) Count(tool Tool) int {
	n := 0
	for i := range s.annotations {
		if s.annotations[i].Tool == tool {
			n++
		}
	}
	return n
}

// Find returns the committed annotation with the given id.
func (s *Store) Find(id string) (Annotation, bool) {
	for i := range s.annotations {
		if s.annotations[i].ID == id {
			return s.annotations[i], true
		}
	}
	return Annotation{}, false
}

// Add snapshots the current list onto the undo stack, appends a, and
// clears the redo stack.
func (s *Store) Add(a Annotation) {
	s.pushUndo()
	s.annotations = append(s.annotations, a)
}

// Remove deletes the annotation with the given id. The snapshot is taken
// up front; an unknown id then leaves the list untouched rather than
// erroring.
func (s *Store) Remove(id string) {
	s.pushUndo()
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.annotations = append(s.annotations[:idx], s.annotations[idx+1:]...)
}

// Update replaces the annotation with the given id in place, preserving
// its list position and identity. An unknown id leaves the list untouched.
func (s *Store) Update(id string, a Annotation) {
	s.pushUndo()
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	a.ID = id
	a.Completed = true
	s.annotations[idx] = a
	delete(s.encoded, id)
}

// ClearAll empties the list, keeping it undoable.
func (s *Store) ClearAll() {
	s.pushUndo()
	s.annotations = nil
}

// Undo restores the most recent snapshot. It reports false when there is
// nothing to undo.
func (s *Store) Undo() bool {
	if len(s.undo) == 0 {
		return false
	}
	s.redo = append(s.redo, s.snapshot())
	last := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.restore(last, "undo")
	return true
}

// Redo reverses the most recent undo. It reports false when there is
// nothing to redo.
func (s *Store) Redo() bool {
	if len(s.redo) == 0 {
		return false
	}
	s.undo = append(s.undo, s.snapshot())
	last := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.restore(last, "redo")
	return true
}

// CanUndo reports whether Undo would change state.
func (s *Store) CanUndo() bool { return len(s.undo) > 0 }

// CanRedo reports whether Redo would change state.
func (s *Store) CanRedo() bool { return len(s.redo) > 0 }

// Modified reports whether any mutation happened since creation. The host
// uses it to decide whether a flatten-and-save is worth offering.
func (s *Store) Modified() bool { return s.modified }

// Snapshot returns the codec encoding of the current list.
func (s *Store) Snapshot() []byte { return s.snapshot() }

func (s *Store) indexOf(id string) int {
	for i := range s.annotations {
		if s.annotations[i].ID == id {
			return i
		}
	}
	return -1
}

// pushUndo records the current list before a mutation. The depth cap
// evicts the oldest snapshot, and any redo history dies with the new
// mutation: undo/redo is strictly linear.
func (s *Store) pushUndo() {
	s.undo = append(s.undo, s.snapshot())
	if len(s.undo) > s.depth {
		s.undo = s.undo[1:]
	}
	s.redo = s.redo[:0]
	s.modified = true
}

func (s *Store) snapshot() []byte {
	var buf bytes.Buffer
	for i := range s.annotations {
		buf.Write(s.recordFor(&s.annotations[i]))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func (s *Store) recordFor(a *Annotation) []byte {
	if b, ok := s.encoded[a.ID]; ok {
		return b
	}
	b := EncodeRecord(*a)
	s.encoded[a.ID] = b
	return b
}

// restore decodes a snapshot into the live list. Decoding is fail-soft:
// undecodable records are dropped and logged rather than failing the whole
// restore. The record cache is rebuilt from the decoded list: entries
// cached while snapshotting the pre-restore state would otherwise shadow
// the restored content under the same ids.
func (s *Store) restore(snap []byte, op string) {
	list, dropped := Decode(snap)
	if dropped > 0 {
		log.Printf("%s: dropped %d undecodable annotation records", op, dropped)
	}
	s.annotations = list
	s.encoded = make(map[string][]byte)
	s.modified = true
}
