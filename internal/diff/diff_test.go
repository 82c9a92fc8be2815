package diff

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codalotl/affixdiff/internal/intern"
	"github.com/codalotl/affixdiff/internal/segment"
	"github.com/codalotl/affixdiff/internal/simplelogger"
)

func TestDiffLines_Changes(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
		want []Change[string]
	}{
		{
			name: "both empty",
			old:  "",
			new:  "",
			want: nil,
		},
		{
			name: "identical",
			old:  "a\nb\nc\n",
			new:  "a\nb\nc\n",
			want: []Change[string]{
				{Op: OpEqual, OldIndex: 0, OldLen: 3, NewIndex: 0, NewLen: 3, Old: []string{"a", "b", "c"}, New: []string{"a", "b", "c"}},
			},
		},
		{
			name: "pure insertion",
			old:  "",
			new:  "a\nb",
			want: []Change[string]{
				{Op: OpInsert, OldIndex: 0, NewIndex: 0, NewLen: 2, New: []string{"a", "b"}},
			},
		},
		{
			name: "pure deletion",
			old:  "a\nb",
			new:  "",
			want: []Change[string]{
				{Op: OpDelete, OldIndex: 0, OldLen: 2, NewIndex: 0, Old: []string{"a", "b"}},
			},
		},
		{
			name: "append after common prefix",
			old:  "a\nb\na",
			new:  "a\nb\na\nb\na",
			want: []Change[string]{
				{Op: OpEqual, OldIndex: 0, OldLen: 3, NewIndex: 0, NewLen: 3, Old: []string{"a", "b", "a"}, New: []string{"a", "b", "a"}},
				{Op: OpInsert, OldIndex: 3, NewIndex: 3, NewLen: 2, New: []string{"b", "a"}},
			},
		},
		{
			name: "truncate after common prefix",
			old:  "a\nb\nc\n",
			new:  "a\nb\n",
			want: []Change[string]{
				{Op: OpEqual, OldIndex: 0, OldLen: 2, NewIndex: 0, NewLen: 2, Old: []string{"a", "b"}, New: []string{"a", "b"}},
				{Op: OpDelete, OldIndex: 2, OldLen: 1, NewIndex: 2, Old: []string{"c"}},
			},
		},
		{
			name: "replace middle line",
			old:  "a\nb\nc\n",
			new:  "a\nX\nc\n",
			want: []Change[string]{
				{Op: OpEqual, OldIndex: 0, OldLen: 1, NewIndex: 0, NewLen: 1, Old: []string{"a"}, New: []string{"a"}},
				{Op: OpReplace, OldIndex: 1, OldLen: 1, NewIndex: 1, NewLen: 1, Old: []string{"b"}, New: []string{"X"}},
				{Op: OpEqual, OldIndex: 2, OldLen: 1, NewIndex: 2, NewLen: 1, Old: []string{"c"}, New: []string{"c"}},
			},
		},
		{
			name: "insert in middle",
			old:  "a\nc",
			new:  "a\nb\nc",
			want: []Change[string]{
				{Op: OpEqual, OldIndex: 0, OldLen: 1, NewIndex: 0, NewLen: 1, Old: []string{"a"}, New: []string{"a"}},
				{Op: OpInsert, OldIndex: 1, NewIndex: 1, NewLen: 1, New: []string{"b"}},
				{Op: OpEqual, OldIndex: 1, OldLen: 1, NewIndex: 2, NewLen: 1, Old: []string{"c"}, New: []string{"c"}},
			},
		},
		{
			name: "delete in middle",
			old:  "a\nb\nb\nc",
			new:  "a\nc",
			want: []Change[string]{
				{Op: OpEqual, OldIndex: 0, OldLen: 1, NewIndex: 0, NewLen: 1, Old: []string{"a"}, New: []string{"a"}},
				{Op: OpDelete, OldIndex: 1, OldLen: 2, NewIndex: 1, Old: []string{"b", "b"}},
				{Op: OpEqual, OldIndex: 3, OldLen: 1, NewIndex: 1, NewLen: 1, Old: []string{"c"}, New: []string{"c"}},
			},
		},
		{
			name: "change at start keeps suffix",
			old:  "x\na\nb",
			new:  "y\na\nb",
			want: []Change[string]{
				{Op: OpReplace, OldIndex: 0, OldLen: 1, NewIndex: 0, NewLen: 1, Old: []string{"x"}, New: []string{"y"}},
				{Op: OpEqual, OldIndex: 1, OldLen: 2, NewIndex: 1, NewLen: 2, Old: []string{"a", "b"}, New: []string{"a", "b"}},
			},
		},
		{
			name: "multiple edits",
			old:  "a\nb\nc\nd\ne\n",
			new:  "a\nz\nc\ny\ne\n",
			want: []Change[string]{
				{Op: OpEqual, OldIndex: 0, OldLen: 1, NewIndex: 0, NewLen: 1, Old: []string{"a"}, New: []string{"a"}},
				{Op: OpReplace, OldIndex: 1, OldLen: 1, NewIndex: 1, NewLen: 1, Old: []string{"b"}, New: []string{"z"}},
				{Op: OpEqual, OldIndex: 2, OldLen: 1, NewIndex: 2, NewLen: 1, Old: []string{"c"}, New: []string{"c"}},
				{Op: OpReplace, OldIndex: 3, OldLen: 1, NewIndex: 3, NewLen: 1, Old: []string{"d"}, New: []string{"y"}},
				{Op: OpEqual, OldIndex: 4, OldLen: 1, NewIndex: 4, NewLen: 1, Old: []string{"e"}, New: []string{"e"}},
			},
		},
		{
			name: "overlapping prefix and suffix",
			old:  "a\nb\na",
			new:  "a\nc\na\nb\na",
			want: []Change[string]{
				{Op: OpEqual, OldIndex: 0, OldLen: 1, NewIndex: 0, NewLen: 1, Old: []string{"a"}, New: []string{"a"}},
				{Op: OpInsert, OldIndex: 1, NewIndex: 1, NewLen: 2, New: []string{"c", "a"}},
				{Op: OpEqual, OldIndex: 1, OldLen: 2, NewIndex: 3, NewLen: 2, Old: []string{"b", "a"}, New: []string{"b", "a"}},
			},
		},
		{
			name: "single line replaced",
			old:  "a\n",
			new:  "b\n",
			want: []Change[string]{
				{Op: OpReplace, OldIndex: 0, OldLen: 1, NewIndex: 0, NewLen: 1, Old: []string{"a"}, New: []string{"b"}},
			},
		},
		{
			name: "two lines replaced",
			old:  "a\nb",
			new:  "z\ny",
			want: []Change[string]{
				{Op: OpReplace, OldIndex: 0, OldLen: 2, NewIndex: 0, NewLen: 2, Old: []string{"a", "b"}, New: []string{"z", "y"}},
			},
		},
		{
			name: "fully different window after prefix",
			old:  "p\na\nb\n",
			new:  "p\nz\n",
			want: []Change[string]{
				{Op: OpEqual, OldIndex: 0, OldLen: 1, NewIndex: 0, NewLen: 1, Old: []string{"p"}, New: []string{"p"}},
				{Op: OpReplace, OldIndex: 1, OldLen: 2, NewIndex: 1, NewLen: 1, Old: []string{"a", "b"}, New: []string{"z"}},
			},
		},
		{
			name: "unterminated cr line equals crlf line",
			old:  "a\r",
			new:  "a\r\n",
			want: []Change[string]{
				{Op: OpEqual, OldIndex: 0, OldLen: 1, NewIndex: 0, NewLen: 1, Old: []string{"a"}, New: []string{"a"}},
			},
		},
		{
			name: "crlf and lf lines compare equal",
			old:  "a\r\nb\r\n",
			new:  "a\nb",
			want: []Change[string]{
				{Op: OpEqual, OldIndex: 0, OldLen: 2, NewIndex: 0, NewLen: 2, Old: []string{"a", "b"}, New: []string{"a", "b"}},
			},
		},
	}

	engines := []Engine{Myers(), DiffMatchPatch(0)}
	for _, tc := range tests {
		for _, e := range engines {
			for _, clamp := range []bool{false, true} {
				t.Run(fmt.Sprintf("%s/%s/clamp=%t", tc.name, e.Name(), clamp), func(t *testing.T) {
					opts := []Option{WithEngine(e), WithValidation()}
					if clamp {
						opts = append(opts, WithClampedOverlap())
					}
					got, err := DiffLines(tc.old, tc.new, opts...)
					require.NoError(t, err)
					require.Equal(t, tc.want, got)
				})
			}
		}
	}
}

func TestDiffLines_IdentityIsOneEqual(t *testing.T) {
	text := "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"
	changes, err := DiffLines(text, text)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, OpEqual, changes[0].Op)
	require.Equal(t, 0, changes[0].OldIndex)
	require.Equal(t, 0, changes[0].NewIndex)
	require.Equal(t, 5, changes[0].OldLen)
	require.Equal(t, 5, changes[0].NewLen)
}

func TestDiffLines_OverlapCoversEachSideOnce(t *testing.T) {
	old := "a\nb\na"
	new := "a\nb\na\nb\na"
	changes, err := DiffLines(old, new)
	require.NoError(t, err)

	oldCovered, newCovered := 0, 0
	for _, ch := range changes {
		oldCovered += ch.OldLen
		newCovered += ch.NewLen
	}
	require.Equal(t, 3, oldCovered)
	require.Equal(t, 5, newCovered)
}

func TestDiffLines_DeleteContainsEveryDeletedLine(t *testing.T) {
	changes, err := DiffLines("keep\ngone1\ngone2\ngone3\nkeep2\n", "keep\nkeep2\n")
	require.NoError(t, err)
	require.Len(t, changes, 3)
	del := changes[1]
	require.Equal(t, OpDelete, del.Op)
	require.Equal(t, 3, del.OldLen)
	require.Equal(t, []string{"gone1", "gone2", "gone3"}, del.Old)
}

// TestDiffSegments_RandomProperties checks the tiling, reconstruction, and minimality properties on many small inputs drawn from a tiny alphabet, which produces
// lots of repeated content and therefore lots of overlapping prefix/suffix matches.
func TestDiffSegments_RandomProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	alphabet := []string{"a", "b", "c"}
	gen := func() []string {
		n := rng.IntN(9)
		if n == 0 {
			return nil
		}
		out := make([]string, n)
		for i := range out {
			out[i] = alphabet[rng.IntN(len(alphabet))]
		}
		return out
	}

	for i := 0; i < 500; i++ {
		old, new := gen(), gen()
		for _, e := range []Engine{Myers(), DiffMatchPatch(0)} {
			for _, clamp := range []bool{false, true} {
				opts := []Option{WithEngine(e)}
				if clamp {
					opts = append(opts, WithClampedOverlap())
				}
				msg := fmt.Sprintf("old=%q new=%q engine=%s clamp=%t", old, new, e.Name(), clamp)

				changes, err := DiffSegments[segment.Item[string], string](segment.Items(old), segment.Items(new), opts...)
				require.NoError(t, err, msg)
				require.NoError(t, validate(changes, old, new), msg)
				require.Equal(t, new, replay(changes), msg)

				if e.Name() == "myers" {
					require.Equal(t, lcsLen(old, new), equalCount(changes), msg)
				}
			}
		}
	}
}

func TestDiffSegments_Deterministic(t *testing.T) {
	old := "func a() {\n\treturn 1\n}\n\nfunc b() {\n\treturn 2\n}\n"
	new := "func a() {\n\treturn 10\n}\n\nfunc c() {}\n\nfunc b() {\n\treturn 2\n}\n"

	for _, e := range []Engine{Myers(), DiffMatchPatch(0)} {
		first, err := DiffLines(old, new, WithEngine(e))
		require.NoError(t, err)
		second, err := DiffLines(old, new, WithEngine(e))
		require.NoError(t, err)
		require.Equal(t, first, second)
	}
}

func TestDiffSegments_Tokens(t *testing.T) {
	old := segment.Items([]int{1, 2, 3, 4, 5})
	new := segment.Items([]int{1, 2, 9, 4, 5})

	changes, err := DiffSegments[segment.Item[int], int](old, new, WithValidation())
	require.NoError(t, err)
	require.Equal(t, []Change[int]{
		{Op: OpEqual, OldIndex: 0, OldLen: 2, NewIndex: 0, NewLen: 2, Old: []int{1, 2}, New: []int{1, 2}},
		{Op: OpReplace, OldIndex: 2, OldLen: 1, NewIndex: 2, NewLen: 1, Old: []int{3}, New: []int{9}},
		{Op: OpEqual, OldIndex: 3, OldLen: 2, NewIndex: 3, NewLen: 2, Old: []int{4, 5}, New: []int{4, 5}},
	}, changes)
}

// flatSeg reports the same position for every segment, which breaks the Segment contract.
type flatSeg string

func (s flatSeg) Content() string { return string(s) }
func (s flatSeg) Pos() int        { return 0 }

func TestDiffSegments_BrokenPositionsStillCorrect(t *testing.T) {
	toSegs := func(s string) []flatSeg {
		var out []flatSeg
		for _, r := range s {
			out = append(out, flatSeg(string(r)))
		}
		return out
	}

	cases := [][2]string{
		{"abcxdef", "abcydef"},
		{"xab", "yab"},
		{"abx", "aby"},
		{"aba", "acaba"},
	}
	for _, c := range cases {
		old, new := toSegs(c[0]), toSegs(c[1])
		changes, err := DiffSegments[flatSeg, string](old, new, WithValidation())
		require.NoError(t, err, "%q -> %q", c[0], c[1])
		require.Equal(t, segment.Contents[flatSeg, string](new), replay(changes))
	}
}

// failingEngine returns err without emitting anything.
type failingEngine struct{ err error }

func (failingEngine) Name() string                                 { return "failing" }
func (e failingEngine) Diff(old, new []intern.ID, _ Emitter) error { return e.err }

// scriptedEngine emits a fixed sequence of calls, ignoring its input.
type scriptedEngine struct {
	calls func(emit Emitter) error
}

func (scriptedEngine) Name() string                                    { return "scripted" }
func (e scriptedEngine) Diff(old, new []intern.ID, emit Emitter) error { return e.calls(emit) }

func TestDiffSegments_EngineAbort(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		engine  Engine
		wantErr error
	}{
		{name: "engine error", engine: failingEngine{err: boom}, wantErr: boom},
		{
			name: "out of order",
			engine: scriptedEngine{calls: func(emit Emitter) error {
				return emit.Replace(1, 1, 1, 1)
			}},
			wantErr: errOutOfOrder,
		},
		{
			name: "past the end",
			engine: scriptedEngine{calls: func(emit Emitter) error {
				return emit.Replace(0, 5, 0, 1)
			}},
			wantErr: errOutOfRange,
		},
		{
			name: "equal over differing content",
			engine: scriptedEngine{calls: func(emit Emitter) error {
				return emit.Equal(0, 0, 1)
			}},
			wantErr: errNotEqual,
		},
		{
			name: "incomplete",
			engine: scriptedEngine{calls: func(emit Emitter) error {
				return emit.Delete(0, 0, 1)
			}},
			wantErr: errIncomplete,
		},
		{
			name: "negative length",
			engine: scriptedEngine{calls: func(emit Emitter) error {
				return emit.Insert(0, 0, -1)
			}},
			wantErr: errNegativeLen,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			changes, err := DiffLines("a\nb\nc\n", "a\nX\nc\n", WithEngine(tc.engine))
			require.Error(t, err)
			require.Nil(t, changes)
			require.ErrorIs(t, err, ErrEngineAborted)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestDiffSegments_EngineNotCalledForTerminalShapes(t *testing.T) {
	e := failingEngine{err: errors.New("should not be called")}
	for _, c := range [][2]string{{"", ""}, {"a", "a"}, {"a", "a\nb"}, {"a\nb", "a"}, {"a\nc", "a\nb\nc"}} {
		_, err := DiffLines(c[0], c[1], WithEngine(e))
		require.NoError(t, err, "%q -> %q", c[0], c[1])
	}
}

func TestDiffSegments_Logs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diff.log")
	t.Setenv(simplelogger.EnvVar, path)

	_, err := DiffLines("a\nb\nc\n", "a\nX\nc\n")
	require.NoError(t, err)
	_, err = DiffLines("a\nb\nc\n", "a\nX\nc\n", WithEngine(failingEngine{err: errors.New("boom")}))
	require.Error(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	log := string(b)
	require.Contains(t, log, "diff: window old=3 new=3 prefix=1 suffix=1 window=1x1")
	require.Contains(t, log, "engine=myers")
	require.Contains(t, log, "diff: engine failing aborted on 1x1 window: boom")
}

func TestOp_String(t *testing.T) {
	require.Equal(t, "equal", OpEqual.String())
	require.Equal(t, "insert", OpInsert.String())
	require.Equal(t, "delete", OpDelete.String())
	require.Equal(t, "replace", OpReplace.String())
	require.Equal(t, "Op(9)", Op(9).String())
}

// replay rebuilds the new sequence from changes.
func replay[C comparable](changes []Change[C]) []C {
	var out []C
	for _, ch := range changes {
		switch ch.Op {
		case OpEqual:
			out = append(out, ch.Old...)
		case OpInsert, OpReplace:
			out = append(out, ch.New...)
		}
	}
	return out
}

func equalCount[C comparable](changes []Change[C]) int {
	n := 0
	for _, ch := range changes {
		if ch.Op == OpEqual {
			n += ch.OldLen
		}
	}
	return n
}

// lcsLen is the textbook dynamic-programming LCS length.
func lcsLen(a, b []string) int {
	dp := make([][]int, len(a)+1)
	for i := range dp {
		dp[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else {
				dp[i][j] = max(dp[i+1][j], dp[i][j+1])
			}
		}
	}
	return dp[0][0]
}

func TestLCSLen(t *testing.T) {
	require.Equal(t, 0, lcsLen(nil, []string{"a"}))
	require.Equal(t, 2, lcsLen(strings.Split("a b a", " "), strings.Split("b a b", " ")))
}
