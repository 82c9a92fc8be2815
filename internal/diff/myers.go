package diff

import (
	"context"

	"github.com/pkg/diff/edit"
	"github.com/pkg/diff/myers"

	"github.com/codalotl/affixdiff/internal/intern"
)

// Myers returns the default engine: Myers' O(ND) algorithm (github.com/pkg/diff/myers) run directly on the ID arrays. The edit script is minimal.
func Myers() Engine {
	return myersEngine{}
}

type myersEngine struct{}

func (myersEngine) Name() string { return "myers" }

func (myersEngine) Diff(old, new []intern.ID, emit Emitter) error {
	script := myers.Diff(context.Background(), &idPair{a: old, b: new})
	return emitScript(script, emit)
}

// idPair adapts two ID arrays to the pair interface myers.Diff expects.
type idPair struct {
	a, b []intern.ID
}

func (p *idPair) LenA() int             { return len(p.a) }
func (p *idPair) LenB() int             { return len(p.b) }
func (p *idPair) Equal(ai, bi int) bool { return p.a[ai] == p.b[bi] }

// emitScript forwards script to emit. An edit.Script represents a replacement as a delete range plus an insert range; consecutive non-equal ranges are merged into
// one operation.
func emitScript(script edit.Script, emit Emitter) error {
	var pending edit.Range
	hasPending := false

	flush := func() error {
		if !hasPending {
			return nil
		}
		hasPending = false
		return emitEdit(emit, pending.LowA, pending.HighA-pending.LowA, pending.LowB, pending.HighB-pending.LowB)
	}

	for _, r := range script.Ranges {
		switch r.Op() {
		case edit.Eq:
			if err := flush(); err != nil {
				return err
			}
			if err := emit.Equal(r.LowA, r.LowB, r.HighA-r.LowA); err != nil {
				return err
			}
		case edit.Del, edit.Ins:
			if !hasPending {
				pending = r
				hasPending = true
				continue
			}
			// An Ins range sits at the start of the run on the old side (LowA == HighA), so each op only extends its own side.
			if r.Op() == edit.Del {
				pending.HighA = r.HighA
			} else {
				pending.HighB = r.HighB
			}
		}
	}
	return flush()
}
