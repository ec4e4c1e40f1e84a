// Package builtin implements the REFAL-5 standard library: the functions
// that are awkward or impossible to express in REFAL itself (I/O,
// arithmetic, Type/Numb/Symb/Chr/Ord, Mu). It is a named collaborator of the
// core per spec.md §1, consumed through the Table registry spec.md §4.5
// describes.
package builtin

import (
	"bufio"
	"fmt"
	"io"

	"github.com/strusov/refalgo/cellvm"
)

// Verdict is the Go name for spec.md §4.5's C return convention: 0 success,
// >0 "view field does not fit the pattern" (identification impossible).
// Runtime errors (<0 in the original) are reported as a Go error instead.
type Verdict int

const (
	// Matched indicates the call succeeded and the view field was rewritten
	// (or intentionally left untouched, for functions like Print).
	Matched Verdict = 0
	// NoMatch indicates the view field did not fit the function's expected
	// shape (e.g. Add's arguments were not two Number cells).
	NoMatch Verdict = 1
)

// Func is the signature every built-in implements: it may read and rewrite
// the view field delimited by (prev, next) in vm.
type Func func(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error)

type entry struct {
	name string
	fn   Func
}

// Table is the {name, function} registry of spec.md §4.5: a built-in
// library bound to one cell arena's I/O state (open file descriptors,
// standard streams).
type Table struct {
	entries []entry
	byName  map[string]uint32

	files    [maxFiles + 1]*fileHandle
	stdin    io.Reader
	stdinBuf *bufio.Reader
	stdout   io.Writer
}

// maxFiles matches REFAL_LIBRARY_LEGACY_FILES: the legacy REFAL-5 file
// descriptor convention supports descriptors 1..40.
const maxFiles = 40

type fileHandle struct {
	r      io.ReadCloser
	w      io.WriteCloser
	reader *bufio.Reader
}

// MuName is the identifier under which Mu is registered. The interpreter
// special-cases calls to it: Mu searches the active view field for a
// computable function identifier, which requires access to the symbol table
// rmachine has and builtin.Table does not, so Table's registered Mu entry
// only exists to reserve the name and ordinal.
const MuName = "Mu"

// NewStandardTable returns a Table with every function named in spec.md §1
// registered, bound to stdin/stdout for terminal I/O.
func NewStandardTable(stdin io.Reader, stdout io.Writer) *Table {
	t := &Table{
		byName: make(map[string]uint32, 24),
		stdin:  stdin,
		stdout: stdout,
	}
	t.register("Card", t.card)
	t.register("Print", t.print)
	t.register("Prout", t.prout)
	t.register("Open", t.open)
	t.register("Close", t.close)
	t.register("Get", t.get)
	t.register("Put", t.put)
	t.register("Putout", t.putout)

	t.register("Add", t.add)
	t.register("Sub", t.sub)
	t.register("Mul", t.mul)
	t.register("Div", t.div)
	t.register("Mod", t.mod)
	t.register("Compare", t.compare)

	t.register("Type", t.typeOf)
	t.register("Numb", t.numb)
	t.register("Symb", t.symb)
	t.register("Chr", t.chr)
	t.register("Ord", t.ord)

	t.register("Arg", t.arg)
	t.register(MuName, t.mu)
	return t
}

func (t *Table) register(name string, fn Func) uint32 {
	ordinal := uint32(len(t.entries))
	t.entries = append(t.entries, entry{name: name, fn: fn})
	t.byName[name] = ordinal
	return ordinal
}

// Lookup returns the ordinal registered for name and whether it was found.
func (t *Table) Lookup(name string) (uint32, bool) {
	ordinal, ok := t.byName[name]
	return ordinal, ok
}

// Len returns how many functions are registered.
func (t *Table) Len() int { return len(t.entries) }

// Name returns the name registered at ordinal.
func (t *Table) Name(ordinal uint32) string { return t.entries[ordinal].name }

// Call dispatches to the function registered at ordinal. It rejects
// ordinals at or beyond the table size, per spec.md §4.5.
func (t *Table) Call(ordinal uint32, vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	if ordinal >= uint32(len(t.entries)) {
		return NoMatch, fmt.Errorf("builtin: ordinal %d is out of range (table size %d)", ordinal, len(t.entries))
	}
	return t.entries[ordinal].fn(vm, prev, next)
}

func (t *Table) mu(*cellvm.Arena, cellvm.Index, cellvm.Index) (Verdict, error) {
	return NoMatch, fmt.Errorf("builtin: Mu must be dispatched by the interpreter, not called through Table.Call")
}

func (t *Table) arg(*cellvm.Arena, cellvm.Index, cellvm.Index) (Verdict, error) {
	return NoMatch, fmt.Errorf("builtin: Arg is not implemented (no stable place to keep argv state in an embeddable interpreter)")
}
