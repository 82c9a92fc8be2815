package diff

import (
	"errors"
	"fmt"
	"slices"

	"github.com/codalotl/affixdiff/internal/intern"
)

var (
	errOutOfOrder  = errors.New("diff: operation does not start where the previous one ended")
	errOutOfRange  = errors.New("diff: operation runs past the end of the window")
	errNotEqual    = errors.New("diff: equal operation covers differing segments")
	errIncomplete  = errors.New("diff: operations do not cover the whole window")
	errNegativeLen = errors.New("diff: negative operation length")
)

// builder turns engine callbacks into Changes. It implements Emitter.
//
// The engine sees only the window, so every index it reports is shifted by the window's offset in the original sequences. Contents are recovered from the
// interning table. The builder also checks that operations arrive in order and tile the window exactly; anything else is reported as an error so the diff aborts.
type builder[C comparable] struct {
	tab    *intern.Table[C]
	old    []intern.ID // Old window.
	new    []intern.ID // New window.
	oldOff int         // Index of old[0] in the original old sequence.
	newOff int         // Index of new[0] in the original new sequence.

	oldNext int // Next window-relative old index an operation must start at.
	newNext int // Next window-relative new index an operation must start at.

	changes []Change[C]
}

func newBuilder[C comparable](tab *intern.Table[C], old, new []intern.ID, oldOff, newOff int) *builder[C] {
	return &builder[C]{tab: tab, old: old, new: new, oldOff: oldOff, newOff: newOff}
}

// advance checks that an operation covering old[oldIndex:oldIndex+oldLen] and new[newIndex:newIndex+newLen] continues where the previous one ended, then consumes
// it.
func (b *builder[C]) advance(oldIndex, oldLen, newIndex, newLen int) error {
	if oldLen < 0 || newLen < 0 {
		return fmt.Errorf("%w: old=%d new=%d", errNegativeLen, oldLen, newLen)
	}
	if oldIndex != b.oldNext || newIndex != b.newNext {
		return fmt.Errorf("%w: got (%d, %d), want (%d, %d)", errOutOfOrder, oldIndex, newIndex, b.oldNext, b.newNext)
	}
	if oldIndex+oldLen > len(b.old) || newIndex+newLen > len(b.new) {
		return fmt.Errorf("%w: old %d+%d of %d, new %d+%d of %d", errOutOfRange, oldIndex, oldLen, len(b.old), newIndex, newLen, len(b.new))
	}
	b.oldNext += oldLen
	b.newNext += newLen
	return nil
}

func (b *builder[C]) Equal(oldIndex, newIndex, n int) error {
	if err := b.advance(oldIndex, n, newIndex, n); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	oldIDs := b.old[oldIndex : oldIndex+n]
	newIDs := b.new[newIndex : newIndex+n]
	if !slices.Equal(oldIDs, newIDs) {
		return fmt.Errorf("%w: old %d, new %d, len %d", errNotEqual, oldIndex, newIndex, n)
	}
	b.add(Change[C]{
		Op:       OpEqual,
		OldIndex: b.oldOff + oldIndex,
		OldLen:   n,
		NewIndex: b.newOff + newIndex,
		NewLen:   n,
		Old:      b.tab.Contents(oldIDs),
		New:      b.tab.Contents(newIDs),
	})
	return nil
}

func (b *builder[C]) Delete(oldIndex, newIndex, n int) error {
	if err := b.advance(oldIndex, n, newIndex, 0); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	b.add(Change[C]{
		Op:       OpDelete,
		OldIndex: b.oldOff + oldIndex,
		OldLen:   n,
		NewIndex: b.newOff + newIndex,
		Old:      b.tab.Contents(b.old[oldIndex : oldIndex+n]),
	})
	return nil
}

func (b *builder[C]) Insert(oldIndex, newIndex, n int) error {
	if err := b.advance(oldIndex, 0, newIndex, n); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	b.add(Change[C]{
		Op:       OpInsert,
		OldIndex: b.oldOff + oldIndex,
		NewIndex: b.newOff + newIndex,
		NewLen:   n,
		New:      b.tab.Contents(b.new[newIndex : newIndex+n]),
	})
	return nil
}

func (b *builder[C]) Replace(oldIndex, oldLen, newIndex, newLen int) error {
	if err := b.advance(oldIndex, oldLen, newIndex, newLen); err != nil {
		return err
	}
	op, ok := editOp(oldLen, newLen)
	if !ok {
		return nil
	}
	b.add(Change[C]{
		Op:       op,
		OldIndex: b.oldOff + oldIndex,
		OldLen:   oldLen,
		NewIndex: b.newOff + newIndex,
		NewLen:   newLen,
		Old:      b.tab.Contents(b.old[oldIndex : oldIndex+oldLen]),
		New:      b.tab.Contents(b.new[newIndex : newIndex+newLen]),
	})
	return nil
}

// finish reports whether the engine covered the whole window.
func (b *builder[C]) finish() error {
	if b.oldNext != len(b.old) || b.newNext != len(b.new) {
		return fmt.Errorf("%w: covered old %d of %d, new %d of %d", errIncomplete, b.oldNext, len(b.old), b.newNext, len(b.new))
	}
	return nil
}

// add appends ch, merging it into the previous change when both are equal or both are non-equal. Callers add changes in sequence order, so a merged change is
// always contiguous.
func (b *builder[C]) add(ch Change[C]) {
	if len(b.changes) == 0 {
		b.changes = append(b.changes, ch)
		return
	}
	last := &b.changes[len(b.changes)-1]
	if (last.Op == OpEqual) != (ch.Op == OpEqual) {
		b.changes = append(b.changes, ch)
		return
	}

	last.OldLen += ch.OldLen
	last.NewLen += ch.NewLen
	last.Old = append(last.Old, ch.Old...)
	last.New = append(last.New, ch.New...)
	if last.Op != OpEqual {
		last.Op, _ = editOp(last.OldLen, last.NewLen)
	}
}

// editOp returns the non-equal Op for a run of oldLen old and newLen new segments. ok is false if both are empty.
func editOp(oldLen, newLen int) (op Op, ok bool) {
	switch {
	case oldLen > 0 && newLen > 0:
		return OpReplace, true
	case oldLen > 0:
		return OpDelete, true
	case newLen > 0:
		return OpInsert, true
	}
	return 0, false
}
