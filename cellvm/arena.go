package cellvm

import (
	"fmt"

	"github.com/strusov/refalgo/intern"
)

// Arena is a growable array of cells plus a free-list head. Cell 0 is
// reserved as a sentinel: its Next of 0 signals "the backing array must be
// extended here".
type Arena struct {
	cells  []Cell
	free   Index
	failed bool

	Atoms *intern.Table // atom-string interning, see intern.Table and SPEC_FULL.md §3.6
}

// DefaultSize is the initial cell capacity a new Arena allocates.
const DefaultSize = 4096

// NewArena allocates an Arena with room for roughly size cells (at least 3).
func NewArena(size Index) *Arena {
	if size < 3 {
		size = 3
	}
	a := &Arena{
		cells: make([]Cell, size),
		free:  1,
		Atoms: intern.NewTable(256),
	}
	a.cells[1] = Cell{Next: 2}
	return a
}

// Failed reports whether a previous allocation exhausted the addressable
// index space; once true, Alloc* calls are no-ops returning index 0.
func (a *Arena) Failed() bool { return a.failed }

// Cell returns a copy of the cell at i. Callers that need to mutate a cell in
// place should use Set.
func (a *Arena) Cell(i Index) Cell { return a.cells[i] }

// Set overwrites the cell at i.
func (a *Arena) Set(i Index, c Cell) { a.cells[i] = c }

// Next is shorthand for Arena.Cell(i).Next.
func (a *Arena) Next(i Index) Index { return a.cells[i].Next }

// Prev is shorthand for Arena.Cell(i).Prev.
func (a *Arena) Prev(i Index) Index { return a.cells[i].Prev }

// Len returns the number of cells currently backing the arena (including
// unused/free ones), mostly useful for diagnostics and tests.
func (a *Arena) Len() int { return len(a.cells) }

// AllocOne returns a fresh cell index from the free list, extending the
// backing array if necessary. It returns 0 if the arena has already failed
// or if extending it would exceed IndexMax.
func (a *Arena) AllocOne() Index {
	if a.failed {
		return 0
	}
	r := a.free
	i := a.cells[r].Next
	if a.cells[i].Next == 0 {
		// extend the list
		if Index(len(a.cells))-1 >= IndexMax {
			a.failed = true
			a.free = 0
			return 0
		}
		a.cells[i].Next = i + 1
		a.cells[i].Tag2 = 0
		if int(i)+1 >= len(a.cells) {
			grown := make([]Cell, len(a.cells)*2)
			copy(grown, a.cells)
			a.cells = grown
		}
		a.cells[i+1] = Cell{Tag: Undefined, Prev: i}
	}
	a.free = i
	return r
}

// AllocValue allocates a cell and initializes its Payload and Tag.
func (a *Arena) AllocValue(payload uint64, tag Tag) Index {
	i := a.AllocOne()
	a.cells[i].Payload = payload
	a.cells[i].Tag = tag
	return i
}

// AllocCommand allocates an opcode/marker cell carrying no payload.
func (a *Arena) AllocCommand(tag Tag) Index {
	return a.AllocValue(0, tag)
}

// AllocChar allocates a cell holding the Unicode scalar r.
func (a *Arena) AllocChar(r rune) Index {
	return a.AllocValue(uint64(r), Char)
}

// AllocNumber allocates a cell holding the integer n.
func (a *Arena) AllocNumber(n int64) Index {
	return a.AllocValue(uint64(n), Number)
}

// AllocAtom interns s and allocates a cell referencing it.
func (a *Arena) AllocAtom(s string) Index {
	return a.AllocValue(uint64(a.Atoms.Intern(s)), Atom)
}

// AtomString returns the string an Atom cell refers to.
func (a *Arena) AtomString(i Index) string {
	return a.Atoms.String(intern.ID(a.cells[i].Payload))
}

// Fail marks the arena as exhausted: all further Alloc* calls become no-ops
// returning 0, matching the "free := 0" allocation-failure contract.
func (a *Arena) Fail() {
	a.failed = true
	a.free = 0
}

// FreeEvar detaches the half-open range (prev, next) and splices it
// immediately after the free-list head, tagging every freed cell Undefined.
// prev and next themselves are left untouched save for their mutual
// Next/Prev link. A no-op when the range is empty.
func (a *Arena) FreeEvar(prev, next Index) {
	first := a.cells[prev].Next
	if first == next {
		return
	}
	last := a.cells[next].Prev
	for i := first; i != last; i = a.cells[i].Next {
		a.cells[i].Tag = Undefined
	}
	a.cells[last].Tag = Undefined
	a.cells[prev].Next = next
	a.cells[next].Prev = prev

	heap := a.cells[a.free].Next
	a.cells[a.free].Next = first
	a.cells[a.free].Tag2 = 0
	a.cells[first].Prev = a.free
	a.cells[first].Tag = Undefined
	a.cells[last].Next = heap
	a.cells[last].Tag2 = 0
	a.cells[heap].Prev = last
	a.cells[heap].Tag = Undefined
}

// SpliceEvarPrev detaches the half-open range (prev, next) and splices it
// immediately before pos, used by the interpreter to move a substitution
// result into place.
func (a *Arena) SpliceEvarPrev(prev, next, pos Index) {
	first := a.cells[prev].Next
	if first == next {
		return
	}
	last := a.cells[next].Prev
	nPrev := a.cells[pos].Prev
	a.cells[prev].Next = next
	a.cells[next].Prev = prev
	a.cells[pos].Prev = last
	a.cells[last].Next = pos
	a.cells[nPrev].Next = first
	a.cells[first].Prev = nPrev
}

// AllocEvarMove detaches the half-open range (prev, next) and splices it
// immediately before the free-list head, so that subsequent Alloc* calls
// append right after it. Returns the first cell of the moved range. The
// range must be non-empty and must not itself contain the free-list head.
func (a *Arena) AllocEvarMove(prev, next Index) Index {
	first := a.cells[prev].Next
	last := a.cells[next].Prev
	a.cells[prev].Next = next
	a.cells[next].Prev = prev

	allocated := a.cells[a.free].Prev
	a.cells[allocated].Next = first
	a.cells[first].Prev = allocated
	a.cells[a.free].Prev = last
	a.cells[last].Next = a.free
	return first
}

// InsertNext splices the suffix of the free region starting at first (up to
// the cell immediately before the free-list head) into the live list right
// after prev.
func (a *Arena) InsertNext(prev, first Index) {
	last := a.cells[a.free].Prev
	next := a.cells[prev].Next
	a.cells[last].Next = next
	a.cells[next].Prev = last
	a.cells[prev].Next = first
	a.cells[first].Prev = prev
}

// IsEvarEmpty reports whether the half-open range (prev, next) contains no
// cells.
func (a *Arena) IsEvarEmpty(prev, next Index) bool {
	return a.cells[prev].Next == next
}

// SvarEqual reports whether the single-cell values at i and j are equal:
// same tag and same payload, payload compared first since it is cheap and
// usually distinguishing.
func (a *Arena) SvarEqual(i, j Index) bool {
	return a.cells[i].Payload == a.cells[j].Payload && a.cells[i].Tag == a.cells[j].Tag
}

// LinkBrackets cross-links a matched structural bracket pair: each cell's
// Payload becomes the other's index.
func (a *Arena) LinkBrackets(open, next Index) {
	if a.cells[open].Tag != OpenBracket {
		panic(fmt.Sprintf("cellvm: LinkBrackets: cell %d is not an open-bracket", open))
	}
	if a.cells[next].Tag != CloseBracket {
		panic(fmt.Sprintf("cellvm: LinkBrackets: cell %d is not a close-bracket", next))
	}
	a.cells[open].Payload = uint64(next)
	a.cells[next].Payload = uint64(open)
}

// MarkCopy sets Tag2 = CopyFlag on the cell at i, flagging the interpreter
// to copy rather than move its content at substitution time.
func (a *Arena) MarkCopy(i Index) {
	a.cells[i].Tag2 = CopyFlag
}

// NewList allocates a fresh, empty half-open range: two boundary cells with
// head already linked to tail. Callers (the translator building a sentence's
// pattern/result area, a builtin assembling a scratch view field) grow it by
// allocating content cells and calling InsertNext(head, first).
func (a *Arena) NewList() (head, tail Index) {
	head = a.AllocCommand(Sentence)
	tail = a.AllocCommand(Complete)
	t := a.cells[tail]
	t.Prev = head
	a.cells[tail] = t
	return head, tail
}

// MarkTailCall sets Tag2 to the Complete marker on an Execute cell.
func (a *Arena) MarkTailCall(i Index) {
	if a.cells[i].Tag != Execute {
		panic(fmt.Sprintf("cellvm: MarkTailCall: cell %d is not an execute", i))
	}
	a.cells[i].Tag2 = uint8(Complete)
}
