package diff

import (
	"fmt"
	"slices"
)

// validate checks changes against the Change invariants for the given old and new contents and returns an error on the first violation.
func validate[C comparable](changes []Change[C], old, new []C) error {
	oldPos, newPos := 0, 0
	rebuilt := make([]C, 0, len(new))

	for i, ch := range changes {
		switch ch.Op {
		case OpEqual:
			if ch.OldLen <= 0 || ch.OldLen != ch.NewLen {
				return fmt.Errorf("change[%d]: OpEqual requires OldLen == NewLen > 0", i)
			}
			if !slices.Equal(ch.Old, ch.New) {
				return fmt.Errorf("change[%d]: OpEqual requires Old == New", i)
			}
		case OpInsert:
			if ch.OldLen != 0 || ch.NewLen <= 0 || ch.Old != nil {
				return fmt.Errorf("change[%d]: OpInsert requires OldLen == 0, Old == nil and NewLen > 0", i)
			}
		case OpDelete:
			if ch.OldLen <= 0 || ch.NewLen != 0 || ch.New != nil {
				return fmt.Errorf("change[%d]: OpDelete requires OldLen > 0, NewLen == 0 and New == nil", i)
			}
		case OpReplace:
			if ch.OldLen <= 0 || ch.NewLen <= 0 {
				return fmt.Errorf("change[%d]: OpReplace requires OldLen > 0 and NewLen > 0", i)
			}
		default:
			return fmt.Errorf("change[%d]: unknown op %v", i, ch.Op)
		}

		if i > 0 && (changes[i-1].Op == OpEqual) == (ch.Op == OpEqual) {
			return fmt.Errorf("change[%d]: %v follows %v; adjacent changes must be coalesced", i, ch.Op, changes[i-1].Op)
		}

		if ch.OldIndex != oldPos {
			return fmt.Errorf("change[%d]: OldIndex=%d, want %d", i, ch.OldIndex, oldPos)
		}
		if ch.NewIndex != newPos {
			return fmt.Errorf("change[%d]: NewIndex=%d, want %d", i, ch.NewIndex, newPos)
		}
		if oldPos+ch.OldLen > len(old) || newPos+ch.NewLen > len(new) {
			return fmt.Errorf("change[%d]: runs past the end of the sequences", i)
		}
		if len(ch.Old) != ch.OldLen && ch.Op != OpInsert {
			return fmt.Errorf("change[%d]: len(Old)=%d, want %d", i, len(ch.Old), ch.OldLen)
		}
		if len(ch.New) != ch.NewLen && ch.Op != OpDelete {
			return fmt.Errorf("change[%d]: len(New)=%d, want %d", i, len(ch.New), ch.NewLen)
		}
		if !slices.Equal(ch.Old, old[oldPos:oldPos+ch.OldLen]) {
			return fmt.Errorf("change[%d]: Old does not match old[%d:%d]", i, oldPos, oldPos+ch.OldLen)
		}
		if !slices.Equal(ch.New, new[newPos:newPos+ch.NewLen]) {
			return fmt.Errorf("change[%d]: New does not match new[%d:%d]", i, newPos, newPos+ch.NewLen)
		}

		// Replay: equal runs keep old content, deletes drop it, inserts and replaces contribute new content.
		switch ch.Op {
		case OpEqual:
			rebuilt = append(rebuilt, ch.Old...)
		case OpInsert, OpReplace:
			rebuilt = append(rebuilt, ch.New...)
		}

		oldPos += ch.OldLen
		newPos += ch.NewLen
	}

	if oldPos != len(old) {
		return fmt.Errorf("changes cover %d of %d old segments", oldPos, len(old))
	}
	if newPos != len(new) {
		return fmt.Errorf("changes cover %d of %d new segments", newPos, len(new))
	}
	if !slices.Equal(rebuilt, new) {
		return fmt.Errorf("replaying changes does not rebuild new")
	}
	return nil
}
