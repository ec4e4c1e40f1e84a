package rmachine

import "github.com/strusov/refalgo/cellvm"

// binding records the half-open view-field range one pattern variable slot
// captured during a match.
type binding struct {
	prev, next cellvm.Index
}

// matcher holds the slot bindings collected while matching one sentence's
// pattern against a view field. A fresh matcher is used per sentence
// attempt, since a failed attempt must not leak bindings into the next.
type matcher struct {
	vm       *cellvm.Arena
	bindings map[uint32]binding
}

func newMatcher(vm *cellvm.Arena) *matcher {
	return &matcher{vm: vm, bindings: map[uint32]binding{}}
}

// match attempts to consume the pattern cells from patCell (inclusive) up
// to patEnd (exclusive) against the view field from viewPrev (exclusive) up
// to viewEnd (exclusive). patCell == patEnd is the base case: the pattern is
// exhausted, so the match succeeds only if the view field is too.
func (m *matcher) match(patCell, patEnd, viewPrev, viewEnd cellvm.Index) bool {
	if patCell == patEnd {
		return m.vm.Next(viewPrev) == viewEnd
	}
	tmpl := m.vm.Cell(patCell)
	switch tmpl.Tag {
	case cellvm.Char, cellvm.Number, cellvm.Atom:
		cand := m.vm.Next(viewPrev)
		if cand == viewEnd {
			return false
		}
		cc := m.vm.Cell(cand)
		if cc.Tag != tmpl.Tag || cc.Payload != tmpl.Payload {
			return false
		}
		return m.match(m.vm.Next(patCell), patEnd, cand, viewEnd)

	case cellvm.OpenBracket:
		cand := m.vm.Next(viewPrev)
		if cand == viewEnd || m.vm.Cell(cand).Tag != cellvm.OpenBracket {
			return false
		}
		tClose := tmpl.Link()
		vClose := m.vm.Cell(cand).Link()
		if !m.match(m.vm.Next(patCell), tClose, cand, vClose) {
			return false
		}
		return m.match(m.vm.Next(tClose), patEnd, vClose, viewEnd)

	case cellvm.SVar:
		return m.matchSingle(patCell, patEnd, viewPrev, viewEnd, false)

	case cellvm.TVar:
		return m.matchSingle(patCell, patEnd, viewPrev, viewEnd, true)

	case cellvm.EVar:
		return m.matchEvar(patCell, patEnd, viewPrev, viewEnd)

	default:
		return false
	}
}

// matchSingle matches an svar (allowBracket false, exactly one non-bracket
// cell) or a tvar (allowBracket true, one cell or one whole bracket group)
// against the next term in the view field.
func (m *matcher) matchSingle(patCell, patEnd, viewPrev, viewEnd cellvm.Index, allowBracket bool) bool {
	slot := uint32(m.vm.Cell(patCell).Payload)
	cand := m.vm.Next(viewPrev)
	if cand == viewEnd {
		return false
	}
	cc := m.vm.Cell(cand)
	var termEnd cellvm.Index
	switch cc.Tag {
	case cellvm.OpenBracket:
		if !allowBracket {
			return false
		}
		termEnd = cc.Link()
	case cellvm.CloseBracket:
		return false
	default:
		termEnd = cand
	}

	nextPatCell := m.vm.Next(patCell)
	termNext := m.vm.Next(termEnd)
	if existing, bound := m.bindings[slot]; bound {
		if !rangesEqual(m.vm, existing.prev, existing.next, viewPrev, termNext) {
			return false
		}
		return m.match(nextPatCell, patEnd, termEnd, viewEnd)
	}

	m.bindings[slot] = binding{viewPrev, termNext}
	if m.match(nextPatCell, patEnd, termEnd, viewEnd) {
		return true
	}
	delete(m.bindings, slot)
	return false
}

// matchEvar matches an evar, which may capture zero or more cells. A fresh
// occurrence tries the longest remaining subrange first and backtracks
// shorter on failure (spec.md §6's mandated order); a repeated occurrence of
// the same slot is instead an equality constraint against its first
// capture.
func (m *matcher) matchEvar(patCell, patEnd, viewPrev, viewEnd cellvm.Index) bool {
	slot := uint32(m.vm.Cell(patCell).Payload)
	nextPatCell := m.vm.Next(patCell)

	if existing, bound := m.bindings[slot]; bound {
		length := rangeLength(m.vm, existing.prev, existing.next)
		end := viewPrev
		for i := 0; i < length; i++ {
			if m.vm.Next(end) == viewEnd {
				return false
			}
			end = m.vm.Next(end)
		}
		if !rangesEqual(m.vm, existing.prev, existing.next, viewPrev, m.vm.Next(end)) {
			return false
		}
		return m.match(nextPatCell, patEnd, end, viewEnd)
	}

	for end := m.vm.Prev(viewEnd); ; end = prevTermBoundary(m.vm, end) {
		m.bindings[slot] = binding{viewPrev, m.vm.Next(end)}
		if m.match(nextPatCell, patEnd, end, viewEnd) {
			return true
		}
		delete(m.bindings, slot)
		if end == viewPrev {
			return false
		}
	}
}

// prevTermBoundary returns the boundary cell just before the term ending at
// pos: one cell back, or all the way past a whole bracket group when pos is
// that group's closing bracket, so an evar's backtracking always shrinks by
// whole terms.
func prevTermBoundary(vm *cellvm.Arena, pos cellvm.Index) cellvm.Index {
	if vm.Cell(pos).Tag == cellvm.CloseBracket {
		open := vm.Cell(pos).Link()
		return vm.Prev(open)
	}
	return vm.Prev(pos)
}

// rangeLength counts the cells in the half-open range (prev, next).
func rangeLength(vm *cellvm.Arena, prev, next cellvm.Index) int {
	n := 0
	for i := vm.Next(prev); i != next; i = vm.Next(i) {
		n++
	}
	return n
}

// rangesEqual reports whether two half-open ranges hold structurally
// identical content: bracket payloads are partner indices private to each
// range, so only the tag matters for those; everything else compares tag
// and payload.
func rangesEqual(vm *cellvm.Arena, p1, n1, p2, n2 cellvm.Index) bool {
	i, j := vm.Next(p1), vm.Next(p2)
	for i != n1 && j != n2 {
		ci, cj := vm.Cell(i), vm.Cell(j)
		if ci.Tag != cj.Tag {
			return false
		}
		if ci.Tag != cellvm.OpenBracket && ci.Tag != cellvm.CloseBracket {
			if ci.Payload != cj.Payload {
				return false
			}
		}
		i, j = vm.Next(i), vm.Next(j)
	}
	return i == n1 && j == n2
}
