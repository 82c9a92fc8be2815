package diff

import (
	"github.com/codalotl/affixdiff/internal/intern"
)

// Emitter receives the operations of an edit script in order. Indices are relative to the ID arrays passed to Engine.Diff. Delete carries the new-side index where
// the deleted run sits; Insert carries the old-side insertion point.
//
// If a method returns an error, the engine must stop and return it (optionally wrapped).
type Emitter interface {
	Equal(oldIndex, newIndex, n int) error
	Delete(oldIndex, newIndex, n int) error
	Insert(oldIndex, newIndex, n int) error
	Replace(oldIndex, oldLen, newIndex, newLen int) error
}

// Engine computes an edit script between two arrays of interned IDs. IDs compare equal iff the contents they stand for are equal.
//
// An Engine must emit operations that tile both arrays from index 0 to their ends. Any error it returns aborts the whole diff.
type Engine interface {
	Name() string
	Diff(old, new []intern.ID, emit Emitter) error
}

// runEngine hands the window to e. When one side of the window is empty, the answer is a single delete or insert and e is not consulted.
func runEngine(e Engine, old, new []intern.ID, emit Emitter) error {
	switch {
	case len(old) == 0 && len(new) == 0:
		return nil
	case len(new) == 0:
		return emit.Delete(0, 0, len(old))
	case len(old) == 0:
		return emit.Insert(0, 0, len(new))
	}
	return e.Diff(old, new, emit)
}

// emitEdit emits a non-equal run of oldLen old IDs and newLen new IDs as the narrowest operation that describes it.
func emitEdit(emit Emitter, oldIndex, oldLen, newIndex, newLen int) error {
	switch {
	case oldLen > 0 && newLen > 0:
		return emit.Replace(oldIndex, oldLen, newIndex, newLen)
	case oldLen > 0:
		return emit.Delete(oldIndex, newIndex, oldLen)
	case newLen > 0:
		return emit.Insert(oldIndex, newIndex, newLen)
	}
	return nil
}
