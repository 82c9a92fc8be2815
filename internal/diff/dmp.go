package diff

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/codalotl/affixdiff/internal/intern"
)

// DiffMatchPatch returns an engine backed by github.com/sergi/go-diff/diffmatchpatch. Each ID is encoded as one rune and the rune slices are diffed with
// DiffMainRunes, the same technique as diffmatchpatch's own line mode.
//
// timeout bounds the time spent; when it expires, the result is still a valid edit script but may not be minimal. A timeout <= 0 means no deadline.
//
// A window with more distinct IDs than there are encodable runes (about 1.1 million) aborts the diff.
func DiffMatchPatch(timeout time.Duration) Engine {
	return dmpEngine{timeout: timeout}
}

type dmpEngine struct {
	timeout time.Duration
}

func (dmpEngine) Name() string { return "diffmatchpatch" }

func (e dmpEngine) Diff(old, new []intern.ID, emit Emitter) error {
	a, err := idsToRunes(old)
	if err != nil {
		return err
	}
	b, err := idsToRunes(new)
	if err != nil {
		return err
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = e.timeout
	diffs := dmp.DiffMainRunes(a, b, false)
	diffs = dmp.DiffCleanupMerge(diffs)

	// Runs of deletes and inserts between two equalities are emitted as one operation.
	oldIndex, newIndex := 0, 0
	dels, ins := 0, 0
	flush := func() error {
		err := emitEdit(emit, oldIndex, dels, newIndex, ins)
		oldIndex += dels
		newIndex += ins
		dels, ins = 0, 0
		return err
	}

	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			if err := flush(); err != nil {
				return err
			}
			if err := emit.Equal(oldIndex, newIndex, n); err != nil {
				return err
			}
			oldIndex += n
			newIndex += n
		case diffmatchpatch.DiffDelete:
			dels += n
		case diffmatchpatch.DiffInsert:
			ins += n
		}
	}
	return flush()
}

const (
	surrogateMin   = 0xD800
	surrogateCount = 0xDFFF - surrogateMin + 1

	// maxRuneID is the largest ID that idToRune can encode.
	maxRuneID = utf8.MaxRune - surrogateCount
)

var errTooManyIDs = errors.New("diff: too many distinct segments to encode as runes")

// idToRune maps id to a valid rune, skipping the surrogate range so that diffmatchpatch's string round trips keep every rune intact.
func idToRune(id intern.ID) rune {
	if id < surrogateMin {
		return rune(id)
	}
	return rune(id) + surrogateCount
}

func idsToRunes(ids []intern.ID) ([]rune, error) {
	out := make([]rune, len(ids))
	for i, id := range ids {
		if id > maxRuneID {
			return nil, fmt.Errorf("%w: id %d", errTooManyIDs, id)
		}
		out[i] = idToRune(id)
	}
	return out, nil
}
