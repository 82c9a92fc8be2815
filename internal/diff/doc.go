// Package diff computes minimal edit scripts between two sequences of segments (usually the lines of two revisions of a text).
//
// Representation: DiffSegments returns an ordered []Change. Each Change has an Op and covers a run of the old sequence and a run of the new sequence:
//   - OpEqual: the runs are equal (Old == New)
//   - OpInsert: segments present only in the new sequence (OldLen == 0)
//   - OpDelete: segments present only in the old sequence (NewLen == 0)
//   - OpReplace: an old run replaced by a new run of possibly different length
//
// Indices always refer to the original sequences, and Old/New carry the original contents, so a Change can be rendered without consulting the inputs again.
//
// Invariants:
//   - Changes tile both sequences with no gaps or overlaps: OldIndex runs 0..len(old) and NewIndex runs 0..len(new).
//   - Replaying changes in order (keep OpEqual, drop OpDelete, emit New for OpInsert and OpReplace) rebuilds the new sequence.
//   - Equal changes alternate with non-equal changes; neighbors of the same kind are merged.
//   - Both inputs empty gives a nil result; identical inputs give exactly one OpEqual.
//
// How it works: the common prefix and suffix are found by scanning contents from the front and from the back. Pure appends and pure truncations are answered by the
// forward scan alone. Otherwise the window between the two matches is interned (each distinct content becomes a small integer; see package intern) and handed to an
// Engine, which only ever compares integers. When the prefix and suffix matches overlap, which happens with repeating content, the suffix is not trimmed (see
// WithClampedOverlap for the alternative). Positions (Segment.Pos) decide where one match ends and the other begins, so equal content at different offsets is
// never confused.
//
// Engines: Myers (the default) runs Myers' O(ND) algorithm on the IDs. DiffMatchPatch uses diffmatchpatch on rune-encoded IDs. Any Engine can be supplied with
// WithEngine.
//
// Getting a diff:
//
//	changes, err := diff.DiffLines(oldText, newText)
//	if err != nil {
//	    // only possible if the engine aborted
//	}
//	fmt.Println(unified.Render(changes, false, "old.txt", "new.txt", 3))
//
// Every call is independent: no state is shared across calls, so calls may run concurrently.
package diff
