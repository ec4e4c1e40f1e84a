// Package disasm turns one compiled function's opcode cell chain into a
// self-contained sequence (Op) that no longer depends on any particular
// cellvm.Arena, and back. Render and Parse give spec.md §8 invariant 6 (the
// disassemble/render/parse round-trip) something concrete to check: a
// bracket partner or a sentence's next-sentence link is an absolute
// cellvm.Index that only means something inside the arena it came from, so
// Disassemble renumbers both to a position within the returned slice
// instead.
package disasm

import (
	"github.com/strusov/refalgo/cellvm"
	"github.com/strusov/refalgo/rtrie"
)

// Op is one opcode or data cell of a disassembled function.
type Op struct {
	Tag           cellvm.Tag
	Slot          uint32 // SVar, TVar, EVar
	Rune          rune   // Char
	Int           int64  // Number
	Atom          string // Atom
	Target        int    // OpenBracket/CloseBracket partner or Sentence's next sentence, as a position in this sequence; -1 = none (last sentence)
	IsMachineCode bool   // OpenCall, Execute, Identifier
	Callee        uint32 // OpenCall, Execute, Identifier: ordinal (machine-code) or cell index (byte-code/enum)
	TailCall      bool   // Execute
	Copy          bool   // SVar, TVar, EVar: the interpreter must copy rather than move this occurrence
}

// Disassemble walks the cell chain of one compiled function starting at
// entry (a rtrie.ByteCode value's Payload) up to and including its
// terminating complete cell, returning it as a self-contained Op sequence.
func Disassemble(vm *cellvm.Arena, entry cellvm.Index) []Op {
	pos := map[cellvm.Index]int{}
	var cells []cellvm.Index
	for cur := entry; ; cur = vm.Next(cur) {
		pos[cur] = len(cells)
		cells = append(cells, cur)
		if vm.Cell(cur).Tag == cellvm.Complete {
			break
		}
	}

	ops := make([]Op, len(cells))
	for i, cur := range cells {
		c := vm.Cell(cur)
		op := Op{Tag: c.Tag}
		switch c.Tag {
		case cellvm.Char:
			op.Rune = c.Rune()
		case cellvm.Number:
			op.Int = c.Int()
		case cellvm.Atom:
			op.Atom = vm.AtomString(cur)
		case cellvm.OpenBracket, cellvm.CloseBracket:
			op.Target = pos[c.Link()]
		case cellvm.Sentence:
			if c.Payload == 0 {
				op.Target = -1
			} else {
				op.Target = pos[c.Link()]
			}
		case cellvm.OpenCall, cellvm.Execute, cellvm.Identifier:
			ordinal, isMC := rtrie.DecodeCallee(c.Payload)
			op.Callee = ordinal
			op.IsMachineCode = isMC
			op.TailCall = c.IsTailCall()
		case cellvm.SVar, cellvm.TVar, cellvm.EVar:
			op.Slot = uint32(c.Payload)
			op.Copy = c.NeedsCopy()
		}
		ops[i] = op
	}
	return ops
}
