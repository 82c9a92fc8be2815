// Package unified renders line diffs produced by package diff in unified diff format.
package unified

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/codalotl/affixdiff/internal/diff"
)

// Colors (ANSI). Applied only when rendering with color.
const (
	reset    = "\x1b[0m"
	red      = "\x1b[31m"
	green    = "\x1b[32m"
	magenta  = "\x1b[35m"
	cyanBold = "\x1b[1;36m"
)

type outLine struct {
	tag  byte   // ' ', '+', '-'
	text string // line content without EOL
}

// Render returns changes as a unified diff. If color, the diff will include ANSI color markers.
//
// contextSize controls how many unchanged lines are shown before and after each group of changes. Two change groups separated by at most 2*contextSize unchanged
// lines are merged into a single hunk. Hunk headers use 1-based line numbers; a side with no lines in the hunk reports the line before it, as diff(1) does.
//
// The result uses "\n" as the line separator and has no trailing newline. If changes contains no edits, only the file headers are rendered.
func Render(changes []diff.Change[string], color bool, fromFilename string, toFilename string, contextSize int) string {
	colorize := func(s, code string) string {
		if !color {
			return s
		}
		return code + s + reset
	}
	contextSize = max(contextSize, 0)

	var out []string
	out = append(out, colorize("--- "+fromFilename, cyanBold))
	out = append(out, colorize("+++ "+toFilename, cyanBold))

	i := 0
	for i < len(changes) {
		if changes[i].Op == diff.OpEqual {
			i++
			continue
		}

		var lines []outLine
		oldStart, newStart := changes[i].OldIndex, changes[i].NewIndex

		// Pre-context from the tail of the previous equal run.
		if i > 0 && changes[i-1].Op == diff.OpEqual {
			prev := changes[i-1].Old
			k := min(contextSize, len(prev))
			for _, ln := range prev[len(prev)-k:] {
				lines = append(lines, outLine{tag: ' ', text: ln})
			}
			oldStart -= k
			newStart -= k
		}

		j := i
		for j < len(changes) {
			ch := changes[j]
			if ch.Op != diff.OpEqual {
				lines = appendChange(lines, ch)
				j++
				continue
			}

			// An equal run followed by another change is bridged when it is short enough.
			if j+1 < len(changes) && len(ch.Old) <= 2*contextSize {
				for _, ln := range ch.Old {
					lines = append(lines, outLine{tag: ' ', text: ln})
				}
				j++
				continue
			}

			// Otherwise, post-context from its head ends the hunk.
			k := min(contextSize, len(ch.Old))
			for _, ln := range ch.Old[:k] {
				lines = append(lines, outLine{tag: ' ', text: ln})
			}
			break
		}
		i = j

		oldCount, newCount := 0, 0
		for _, ol := range lines {
			switch ol.tag {
			case ' ':
				oldCount++
				newCount++
			case '-':
				oldCount++
			case '+':
				newCount++
			}
		}

		header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", hunkStart(oldStart, oldCount), oldCount, hunkStart(newStart, newCount), newCount)
		out = append(out, colorize(header, magenta))
		for _, ol := range lines {
			line := string(ol.tag) + ol.text
			switch ol.tag {
			case '+':
				out = append(out, colorize(line, green))
			case '-':
				out = append(out, colorize(line, red))
			default:
				out = append(out, line)
			}
		}
	}

	return strings.Join(out, "\n")
}

// Fprint writes the unified diff of changes to w, followed by a newline. Output is colored iff w is a terminal.
func Fprint(w io.Writer, changes []diff.Change[string], fromFilename string, toFilename string, contextSize int) error {
	_, err := io.WriteString(w, Render(changes, isTerminal(w), fromFilename, toFilename, contextSize)+"\n")
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// hunkStart converts a 0-based index into a hunk header start.
func hunkStart(index, count int) int {
	if count == 0 {
		return index
	}
	return index + 1
}

// appendChange appends the lines of a non-equal change: all old lines as '-', then all new lines as '+'.
func appendChange(lines []outLine, ch diff.Change[string]) []outLine {
	for _, ln := range ch.Old {
		lines = append(lines, outLine{tag: '-', text: ln})
	}
	for _, ln := range ch.New {
		lines = append(lines, outLine{tag: '+', text: ln})
	}
	return lines
}
