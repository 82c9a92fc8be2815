package diff

import (
	"errors"
	"fmt"

	"github.com/codalotl/affixdiff/internal/intern"
	"github.com/codalotl/affixdiff/internal/segment"
	"github.com/codalotl/affixdiff/internal/simplelogger"
)

// Op is an operation from the old sequence to the new sequence.
type Op int

// Operations from the old sequence to the new sequence.
const (
	OpEqual Op = iota
	OpInsert
	OpDelete
	OpReplace
)

func (o Op) String() string {
	switch o {
	case OpEqual:
		return "equal"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpReplace:
		return "replace"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Change is one contiguous operation of an edit script. Indices are relative to the original (untrimmed) sequences passed to DiffSegments.
//
// Operations:
//   - OpEqual: OldLen == NewLen > 0; Old and New hold the (equal) contents of the run.
//   - OpDelete: OldLen > 0, NewLen == 0; Old holds the deleted contents, New is nil. NewIndex is where the run would sit in the new sequence.
//   - OpInsert: OldLen == 0, NewLen > 0; New holds the inserted contents, Old is nil. OldIndex is the insertion point in the old sequence.
//   - OpReplace: OldLen > 0 and NewLen > 0; Old is replaced by New.
//
// Invariants of a []Change returned by DiffSegments:
//   - Changes tile both sequences: each OldIndex equals the previous OldIndex+OldLen (starting at 0), ending at len(old); likewise for new.
//   - Two OpEqual changes are never adjacent, and two non-equal changes are never adjacent.
type Change[C comparable] struct {
	Op       Op  // Operation for this change.
	OldIndex int // Index of the first old segment covered by this change.
	OldLen   int // Number of old segments covered.
	NewIndex int // Index of the first new segment covered by this change.
	NewLen   int // Number of new segments covered.
	Old      []C // Contents of old[OldIndex:OldIndex+OldLen]; nil for OpInsert.
	New      []C // Contents of new[NewIndex:NewIndex+NewLen]; nil for OpDelete.
}

// ErrEngineAborted is returned (wrapped) when the diff engine fails or reports an inconsistent edit script. No partial result accompanies it.
var ErrEngineAborted = errors.New("diff: diff engine aborted")

// ErrInvalidResult is returned (wrapped) by DiffSegments when WithValidation is set and the result breaks a Change invariant.
var ErrInvalidResult = errors.New("diff: invalid result")

// Option configures DiffSegments and DiffLines.
type Option func(*config)

type config struct {
	engine       Engine
	clampOverlap bool
	validate     bool
}

// WithEngine selects the engine used on the trimmed window. The default is Myers(). A nil engine keeps the default.
func WithEngine(e Engine) Option {
	return func(c *config) {
		if e != nil {
			c.engine = e
		}
	}
}

// WithClampedOverlap changes how overlapping prefix/suffix matches are handled. By default, when the common prefix and common suffix would claim the same segment,
// the suffix is not trimmed and everything after the prefix is diffed. With this option the suffix is instead shortened so the two regions just touch, which
// gives the engine a smaller window.
func WithClampedOverlap() Option {
	return func(c *config) {
		c.clampOverlap = true
	}
}

// WithValidation re-checks the result against the Change invariants (tiling, content, coalescing, and that replaying the changes rebuilds the new sequence)
// before returning it.
func WithValidation() Option {
	return func(c *config) {
		c.validate = true
	}
}

// DiffLines diffs oldText to newText line by line. Lines are split as described by segment.Lines, so contents exclude line terminators.
func DiffLines(oldText, newText string, opts ...Option) ([]Change[string], error) {
	return DiffSegments[segment.Line, string](segment.Lines(oldText), segment.Lines(newText), opts...)
}

// DiffSegments computes an edit script from old to new.
//
// The common prefix and suffix are trimmed first by comparing contents from both ends; only the remaining window is interned and handed to the engine. The result
// is nil when both inputs are empty, a single OpEqual when they are identical, and otherwise an ordered list of changes satisfying the Change invariants.
//
// An error is returned only if the engine aborts (ErrEngineAborted) or, with WithValidation, if the result is invalid (ErrInvalidResult). In both cases the
// returned slice is nil.
func DiffSegments[S segment.Segment[C], C comparable](old, new []S, opts ...Option) ([]Change[C], error) {
	cfg := config{engine: Myers()}
	for _, opt := range opts {
		opt(&cfg)
	}

	tab := intern.New[C]()
	t := trim[S, C](old, new, tab, cfg.clampOverlap)

	b := newBuilder(tab, t.old, t.new, t.prefix, t.prefix)
	addPrefix := func() {
		if t.prefix > 0 {
			b.add(sourced(OpEqual, 0, 0, segment.Contents[S, C](old[:t.prefix]), segment.Contents[S, C](new[:t.prefix])))
		}
	}
	switch t.outcome {
	case outcomeEmpty:
	case outcomeEqual:
		b.add(sourced(OpEqual, 0, 0, segment.Contents[S, C](old), segment.Contents[S, C](new)))
	case outcomeDeleteTail:
		addPrefix()
		b.add(sourced[C](OpDelete, t.prefix, t.prefix, segment.Contents[S, C](old[t.prefix:]), nil))
	case outcomeInsertTail:
		addPrefix()
		b.add(sourced[C](OpInsert, t.prefix, t.prefix, nil, segment.Contents[S, C](new[t.prefix:])))
	case outcomeWindow:
		addPrefix()
		err := runEngine(cfg.engine, t.old, t.new, b)
		if err == nil {
			err = b.finish()
		}
		if err != nil {
			simplelogger.Log("diff: engine %s aborted on %dx%d window: %v", cfg.engine.Name(), len(t.old), len(t.new), err)
			return nil, fmt.Errorf("%w: %s: %w", ErrEngineAborted, cfg.engine.Name(), err)
		}
		if suffix := len(old) - t.oldEnd; suffix > 0 {
			b.add(sourced(OpEqual, t.oldEnd, t.newEnd, segment.Contents[S, C](old[t.oldEnd:]), segment.Contents[S, C](new[t.newEnd:])))
		}
	}

	if simplelogger.Enabled() {
		simplelogger.Log("diff: %s old=%d new=%d prefix=%d suffix=%d window=%dx%d overlap=%t remainder=%t engine=%s interned=%d changes=%d",
			t.outcome, len(old), len(new), t.prefix, len(old)-t.oldEnd, len(t.old), len(t.new), t.overlap, t.remainder, cfg.engine.Name(), tab.Len(), len(b.changes))
	}

	if cfg.validate {
		if err := validate(b.changes, segment.Contents[S, C](old), segment.Contents[S, C](new)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidResult, err)
		}
	}
	return b.changes, nil
}

// sourced builds a change whose contents were taken directly from the inputs rather than from the interning table.
func sourced[C comparable](op Op, oldIndex, newIndex int, old, new []C) Change[C] {
	return Change[C]{Op: op, OldIndex: oldIndex, OldLen: len(old), NewIndex: newIndex, NewLen: len(new), Old: old, New: new}
}
