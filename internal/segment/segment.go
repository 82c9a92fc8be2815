// Package segment defines the units that are compared by a diff.
//
// A Segment exposes two values: Content, which decides equality, and Pos, which identifies one physical occurrence. Two segments hold "the same content" iff their
// Content values are ==. They are "the same occurrence" iff their Pos values are equal. Pos must strictly increase along a sequence; it is only ever used to tell
// occurrences of equal content apart (ex: two identical lines at different offsets), never to decide equality.
//
// Lines segments text on '\n'. Items wraps any slice of comparable values, so tokens or records can be diffed with the same machinery as lines.
package segment

import "strings"

// Segment is one comparable unit of a sequence.
type Segment[C comparable] interface {
	Content() C // Value used for equality.
	Pos() int   // Strictly increasing along the sequence; unique per occurrence.
}

// Line is one line of a text. Text excludes the line terminator.
type Line struct {
	Text   string // Line contents without "\n" or "\r\n".
	Offset int    // Byte offset of the first byte of the line in the original text.
}

func (l Line) Content() string { return l.Text }
func (l Line) Pos() int        { return l.Offset }

// Lines splits text into lines. Lines are terminated by "\n"; a "\r" immediately before the "\n" is dropped as well, as is a "\r" ending an unterminated last
// line. A final "\n" does not start another (empty) line, so "a\nb" and "a\nb\n" both produce two lines. Lines("") returns nil.
func Lines(text string) []Line {
	if text == "" {
		return nil
	}

	lines := make([]Line, 0, strings.Count(text, "\n")+1)
	offset := 0
	for offset < len(text) {
		rest := text[offset:]
		idx := strings.IndexByte(rest, '\n')
		if idx == -1 {
			lines = append(lines, Line{Text: strings.TrimSuffix(rest, "\r"), Offset: offset})
			break
		}
		lines = append(lines, Line{Text: strings.TrimSuffix(rest[:idx], "\r"), Offset: offset})
		offset += idx + 1
	}
	return lines
}

// Item is a generic segment: a value and its index in the sequence it came from.
type Item[C comparable] struct {
	Value C
	Index int
}

func (it Item[C]) Content() C { return it.Value }
func (it Item[C]) Pos() int   { return it.Index }

// Items wraps values as segments, numbering them by their index.
func Items[C comparable](values []C) []Item[C] {
	if len(values) == 0 {
		return nil
	}
	out := make([]Item[C], len(values))
	for i, v := range values {
		out[i] = Item[C]{Value: v, Index: i}
	}
	return out
}

// Contents returns the Content of each segment in segs.
func Contents[S Segment[C], C comparable](segs []S) []C {
	if len(segs) == 0 {
		return nil
	}
	out := make([]C, len(segs))
	for i, s := range segs {
		out[i] = s.Content()
	}
	return out
}
