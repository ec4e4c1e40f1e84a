package rmachine

import "github.com/strusov/refalgo/cellvm"

// substitute builds the content a matched sentence's result template
// describes, binding slot references from bindings, and returns the first
// cell of the freshly built chain (0 if the result is empty). Every cell it
// allocates is appended in order with no other arena activity interleaved,
// so the whole chain ends up sitting contiguously right before the arena's
// free-list head — exactly what Arena.InsertNext expects to splice into
// place. tailExec is the newly built cell corresponding to resultCells'
// last template cell, when that cell is a tail-marked Execute (0
// otherwise), for the caller to trampoline on.
func substitute(vm *cellvm.Arena, resultCells []cellvm.Index, bindings map[uint32]binding) (first, tailExec cellvm.Index) {
	openMap := map[cellvm.Index]cellvm.Index{}
	for idx, tIdx := range resultCells {
		tmpl := vm.Cell(tIdx)
		var n cellvm.Index
		switch tmpl.Tag {
		case cellvm.OpenBracket:
			n = vm.AllocCommand(cellvm.OpenBracket)
			openMap[tIdx] = n

		case cellvm.CloseBracket:
			n = vm.AllocCommand(cellvm.CloseBracket)
			vm.LinkBrackets(openMap[tmpl.Link()], n)

		case cellvm.SVar, cellvm.TVar, cellvm.EVar:
			slot := uint32(tmpl.Payload)
			b := bindings[slot]
			switch {
			case tmpl.NeedsCopy():
				n = copyRange(vm, b.prev, b.next)
			case !vm.IsEvarEmpty(b.prev, b.next):
				n = vm.AllocEvarMove(b.prev, b.next)
			}

		default: // Char, Number, Atom, Identifier, OpenCall, Execute
			n = vm.AllocValue(tmpl.Payload, tmpl.Tag)
			if tmpl.Tag2 != 0 {
				nc := vm.Cell(n)
				nc.Tag2 = tmpl.Tag2
				vm.Set(n, nc)
			}
		}

		if first == 0 && n != 0 {
			first = n
		}
		if idx == len(resultCells)-1 && tmpl.Tag == cellvm.Execute && tmpl.IsTailCall() {
			tailExec = n
		}
	}
	return first, tailExec
}

// copyRange deep-copies the half-open range (prev, next), preserving nested
// bracket structure, and returns the first cell of the copy (0 if the
// range is empty). Used for a variable's first occurrence in a result when
// the same slot is referenced again later (result.go's
// markPriorOccurrenceForCopy/MarkCopy), so the later, move-semantics occurrence
// does not consume content this copy still needs.
func copyRange(vm *cellvm.Arena, prev, next cellvm.Index) cellvm.Index {
	var first cellvm.Index
	openMap := map[cellvm.Index]cellvm.Index{}
	for i := vm.Next(prev); i != next; i = vm.Next(i) {
		c := vm.Cell(i)
		var n cellvm.Index
		switch c.Tag {
		case cellvm.OpenBracket:
			n = vm.AllocCommand(cellvm.OpenBracket)
			openMap[i] = n
		case cellvm.CloseBracket:
			n = vm.AllocCommand(cellvm.CloseBracket)
			vm.LinkBrackets(openMap[cellvm.Index(c.Payload)], n)
		default:
			n = vm.AllocValue(c.Payload, c.Tag)
		}
		if first == 0 {
			first = n
		}
	}
	return first
}
