package diff

import (
	"slices"

	"github.com/codalotl/affixdiff/internal/intern"
	"github.com/codalotl/affixdiff/internal/segment"
)

// stop classifies the slot where an affix scan stopped.
type stop int

const (
	stopExhausted stop = iota // both sides ran out at the same time
	stopDiffer                // both sides have a segment and their contents differ
	stopOldOnly               // new ran out; old still has segments
	stopNewOnly               // old ran out; new still has segments
)

// outcome is the shape of the problem left after trimming.
type outcome int

const (
	outcomeEmpty      outcome = iota // both sequences are empty
	outcomeEqual                     // the sequences are identical
	outcomeDeleteTail                // new is a proper prefix of old
	outcomeInsertTail                // old is a proper prefix of new
	outcomeWindow                    // a middle window must go through the engine
)

func (o outcome) String() string {
	switch o {
	case outcomeEmpty:
		return "empty"
	case outcomeEqual:
		return "equal"
	case outcomeDeleteTail:
		return "delete-tail"
	case outcomeInsertTail:
		return "insert-tail"
	case outcomeWindow:
		return "window"
	}
	return "unknown"
}

// trimmed is the result of affix trimming.
//
// Invariants:
//   - old[:prefix] and new[:prefix] have equal contents.
//   - len(old)-oldEnd == len(new)-newEnd, and old[oldEnd:] and new[newEnd:] have equal contents.
//   - For outcomeWindow, old and new hold the interned IDs of old[prefix:oldEnd] and new[prefix:newEnd]. Otherwise they are nil.
type trimmed struct {
	outcome   outcome
	prefix    int  // Length of the common prefix.
	oldEnd    int  // Exclusive end of the old window.
	newEnd    int  // Exclusive end of the new window.
	overlap   bool // The prefix and suffix matches claimed a common segment.
	remainder bool // The suffix was not trimmed; the window runs to the end of both sequences.
	old       []intern.ID
	new       []intern.ID
}

// trim finds the common prefix and suffix of old and new and interns the window between them into tab.
//
// The forward scan decides the terminal shapes (empty, identical, pure tail delete, pure tail insert). Only when it stops on two differing segments is the backward
// scan run. If the prefix and suffix matches overlap (possible when the sequences repeat, ex: "a b a" vs "a b c b a"), the suffix is dropped and the whole remainder
// is the window, unless clampOverlap is set, in which case the suffix is shortened until the matches just touch.
//
// Otherwise, the window is collected by walking from whichever match is longer: forward from the prefix when prefix >= suffix, else backward from the suffix.
// The walk admits segments until it reaches the occurrence (by Pos) where the other match begins.
func trim[S segment.Segment[C], C comparable](old, new []S, tab *intern.Table[C], clampOverlap bool) trimmed {
	prefix, st := scanForward[S, C](old, new)
	t := trimmed{prefix: prefix, oldEnd: len(old), newEnd: len(new)}

	switch st {
	case stopExhausted:
		t.outcome = outcomeEqual
		if prefix == 0 {
			t.outcome = outcomeEmpty
		}
		return t
	case stopOldOnly:
		t.outcome = outcomeDeleteTail
		return t
	case stopNewOnly:
		t.outcome = outcomeInsertTail
		return t
	}

	t.outcome = outcomeWindow
	suffix, _ := scanBackward[S, C](old, new)

	if affixesOverlap[S, C](old, prefix, suffix) || affixesOverlap[S, C](new, prefix, suffix) {
		t.overlap = true
		if !clampOverlap {
			useRemainder(&t, old, new, tab)
			return t
		}
		suffix = min(len(old), len(new)) - prefix
	}

	if prefix >= suffix {
		oldEnd, oldIDs := admitForward(old, prefix, suffix, tab)
		newEnd, newIDs := admitForward(new, prefix, suffix, tab)
		if len(old)-oldEnd != suffix || len(new)-newEnd != suffix {
			// Positions did not increase strictly along a source.
			useRemainder(&t, old, new, tab)
			return t
		}
		t.oldEnd, t.newEnd, t.old, t.new = oldEnd, newEnd, oldIDs, newIDs
		return t
	}

	oldStart, oldIDs := admitBackward(old, prefix, suffix, tab)
	newStart, newIDs := admitBackward(new, prefix, suffix, tab)
	if oldStart != prefix || newStart != prefix {
		useRemainder(&t, old, new, tab)
		return t
	}
	t.oldEnd, t.newEnd, t.old, t.new = len(old)-suffix, len(new)-suffix, oldIDs, newIDs
	return t
}

// useRemainder makes everything after the prefix the window.
func useRemainder[S segment.Segment[C], C comparable](t *trimmed, old, new []S, tab *intern.Table[C]) {
	t.remainder = true
	t.oldEnd, t.newEnd = len(old), len(new)
	t.old = internAll(old[t.prefix:], tab)
	t.new = internAll(new[t.prefix:], tab)
}

// scanForward walks old and new in lockstep from the front. It returns the number of leading pairs with equal contents and what stopped the walk.
func scanForward[S segment.Segment[C], C comparable](old, new []S) (int, stop) {
	for n := 0; ; n++ {
		switch {
		case n == len(old) && n == len(new):
			return n, stopExhausted
		case n == len(new):
			return n, stopOldOnly
		case n == len(old):
			return n, stopNewOnly
		case old[n].Content() != new[n].Content():
			return n, stopDiffer
		}
	}
}

// scanBackward is scanForward from the back: it returns the number of trailing pairs with equal contents and what stopped the walk.
func scanBackward[S segment.Segment[C], C comparable](old, new []S) (int, stop) {
	for n := 0; ; n++ {
		switch {
		case n == len(old) && n == len(new):
			return n, stopExhausted
		case n == len(new):
			return n, stopOldOnly
		case n == len(old):
			return n, stopNewOnly
		case old[len(old)-1-n].Content() != new[len(new)-1-n].Content():
			return n, stopDiffer
		}
	}
}

// affixesOverlap reports whether, on side, the first prefix segments and the last suffix segments share an occurrence. It compares the position of the last
// prefix segment with the position of the first suffix segment.
func affixesOverlap[S segment.Segment[C], C comparable](side []S, prefix, suffix int) bool {
	if prefix == 0 || suffix == 0 {
		return false
	}
	return side[len(side)-suffix].Pos() <= side[prefix-1].Pos()
}

// admitForward walks side forward from prefix, interning each segment, and stops at the first segment whose position reaches the start of the suffix match. It
// returns the exclusive end of the walk and the interned IDs in order.
func admitForward[S segment.Segment[C], C comparable](side []S, prefix, suffix int, tab *intern.Table[C]) (int, []intern.ID) {
	bounded := suffix > 0
	var bound int
	if bounded {
		bound = side[len(side)-suffix].Pos()
	}

	ids := make([]intern.ID, 0, max(0, len(side)-prefix-suffix))
	i := prefix
	for ; i < len(side); i++ {
		if bounded && side[i].Pos() >= bound {
			break
		}
		ids = append(ids, tab.ID(side[i].Content()))
	}
	return i, ids
}

// admitBackward walks side backward from the start of the suffix match, interning each segment, and stops at the first segment whose position reaches the end of
// the prefix match. It returns the inclusive start of the walk and the interned IDs in forward order.
func admitBackward[S segment.Segment[C], C comparable](side []S, prefix, suffix int, tab *intern.Table[C]) (int, []intern.ID) {
	bounded := prefix > 0
	var bound int
	if bounded {
		bound = side[prefix-1].Pos()
	}

	ids := make([]intern.ID, 0, max(0, len(side)-prefix-suffix))
	i := len(side) - suffix
	for ; i > 0; i-- {
		if bounded && side[i-1].Pos() <= bound {
			break
		}
		ids = append(ids, tab.ID(side[i-1].Content()))
	}
	slices.Reverse(ids)
	return i, ids
}

func internAll[S segment.Segment[C], C comparable](segs []S, tab *intern.Table[C]) []intern.ID {
	ids := make([]intern.ID, len(segs))
	for i, s := range segs {
		ids[i] = tab.ID(s.Content())
	}
	return ids
}
