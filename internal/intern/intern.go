// Package intern maps content values to small, dense integer IDs for the lifetime of one diff.
//
// A Table owns every content value it has seen, stored in first-sight order and indexed by ID. Callers hold IDs rather than references into the table, and turn
// IDs back into content with Content or Contents. Content equality is equivalent to ID equality within one Table.
//
// A Table is not safe for concurrent use; it is meant to be created, used, and dropped inside a single call.
package intern

// ID is an interned identity. IDs are assigned densely from 0 in first-sight order.
type ID uint32

// Table interns values of type C.
type Table[C comparable] struct {
	ids      map[C]ID
	contents []C // contents[id] is the value interned as id.
}

// New returns an empty Table.
func New[C comparable]() *Table[C] {
	return &Table[C]{ids: make(map[C]ID)}
}

// ID returns the identity of c, allocating a new one if c has not been seen before.
func (t *Table[C]) ID(c C) ID {
	if id, ok := t.ids[c]; ok {
		return id
	}
	id := ID(len(t.contents))
	t.ids[c] = id
	t.contents = append(t.contents, c)
	return id
}

// Content returns the value interned as id. It panics if id was not issued by t.
func (t *Table[C]) Content(id ID) C {
	return t.contents[id]
}

// Contents returns one value per id, in order. Repeated ids yield repeated values. The returned slice is newly allocated and does not alias t.
func (t *Table[C]) Contents(ids []ID) []C {
	if len(ids) == 0 {
		return nil
	}
	out := make([]C, len(ids))
	for i, id := range ids {
		out[i] = t.contents[id]
	}
	return out
}

// Len returns the number of distinct values interned so far.
func (t *Table[C]) Len() int {
	return len(t.contents)
}
