// Package intern deduplicates identifier strings so that the translator can
// release a memory-mapped (or otherwise borrowed) source buffer as soon as it
// finishes translating a file, instead of keeping it alive for the whole
// program's lifetime. A REFAL source re-emits the same function name at every
// call site, so sharing one backing string per distinct atom also cuts
// allocation during translation of anything but the smallest programs.
package intern

import "github.com/dolthub/swiss"

// ID identifies an interned string. The zero ID never refers to a stored
// string; it is returned by Table.Lookup when a string is unknown.
type ID uint32

// Table is the intern pool. The zero value is not usable; use NewTable.
type Table struct {
	byString *swiss.Map[string, ID]
	strings  []string
}

// NewTable returns an empty intern table sized for roughly hint entries.
func NewTable(hint int) *Table {
	if hint <= 0 {
		hint = 64
	}
	t := &Table{
		byString: swiss.NewMap[string, ID](uint32(hint)),
		strings:  make([]string, 1, hint+1), // index 0 is reserved, see ID
	}
	return t
}

// Intern returns the ID for s, allocating a fresh, independently-owned copy
// of s the first time it is seen. The returned ID remains valid for the
// lifetime of the Table regardless of what happens to the string backing s.
func (t *Table) Intern(s string) ID {
	if id, ok := t.byString.Get(s); ok {
		return id
	}
	// Copy the bytes so the entry survives release of a borrowed/mmap'd
	// source buffer; string(append([]byte(nil), s...)) would also copy, but
	// a plain conversion through []byte already forces a fresh allocation.
	owned := string([]byte(s))
	id := ID(len(t.strings))
	t.strings = append(t.strings, owned)
	t.byString.Put(owned, id)
	return id
}

// Lookup returns the ID previously assigned to s, or 0 if s was never
// interned.
func (t *Table) Lookup(s string) ID {
	id, ok := t.byString.Get(s)
	if !ok {
		return 0
	}
	return id
}

// String returns the string previously interned as id. id 0 yields the
// empty string; an id beyond any Intern has returned panics.
func (t *Table) String(id ID) string {
	return t.strings[id]
}

// Len returns the number of distinct strings interned so far.
func (t *Table) Len() int { return len(t.strings) - 1 }
