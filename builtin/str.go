package builtin

import (
	"strconv"
	"unicode"

	"github.com/strusov/refalgo/cellvm"
)

// typeOf classifies the first element of the view field without consuming
// it: <Type e.Expr> == s.Class s.SubClass e.Expr.
func (t *Table) typeOf(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	first := vm.Next(prev)
	if first == next {
		prependChars(vm, prev, "*0")
		return Matched, nil
	}
	c := vm.Cell(first)
	switch c.Tag {
	case cellvm.Number:
		prependChars(vm, prev, "N0")
	case cellvm.Atom:
		prependChars(vm, prev, "A0")
	case cellvm.OpenBracket, cellvm.CloseBracket:
		prependChars(vm, prev, "B0")
	case cellvm.Char:
		r := c.Rune()
		switch {
		case unicode.IsUpper(r):
			prependChars(vm, prev, "LU")
		case unicode.IsLower(r):
			prependChars(vm, prev, "LL")
		case unicode.IsDigit(r):
			prependChars(vm, prev, "D0")
		case unicode.IsSpace(r):
			prependChars(vm, prev, "W0")
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			prependChars(vm, prev, "P0")
		default:
			prependChars(vm, prev, "O0")
		}
	default:
		prependChars(vm, prev, "O0")
	}
	return Matched, nil
}

// numb parses a maximal leading run of decimal digits (with an optional '-'
// sign) into a Number, leaving the remainder untouched: <Numb s.CHAR*
// e.Rest> == s.NUMBER e.Rest. A view field not starting with a digit yields
// Number(0) without consuming anything.
func (t *Table) numb(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	cur := vm.Next(prev)
	sign := int64(1)
	if cur != next {
		if c := vm.Cell(cur); c.Tag == cellvm.Char && c.Rune() == '-' {
			sign = -1
			cur = vm.Next(cur)
		}
	}
	var val int64
	count := 0
	last := cur
	for cur != next {
		c := vm.Cell(cur)
		if c.Tag != cellvm.Char || c.Rune() < '0' || c.Rune() > '9' {
			break
		}
		val = val*10 + int64(c.Rune()-'0')
		last = cur
		count++
		cur = vm.Next(cur)
	}
	if count == 0 {
		idx := vm.AllocNumber(0)
		vm.InsertNext(prev, idx)
		return Matched, nil
	}
	val *= sign
	remainder := vm.Next(last)
	vm.FreeEvar(prev, remainder)
	idx := vm.AllocNumber(val)
	vm.InsertNext(prev, idx)
	return Matched, nil
}

// symb renders a single Number as its decimal digits: <Symb s.NUMBER> ==
// s.CHAR+.
func (t *Table) symb(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	cells := cellsInRange(vm, prev, next)
	if len(cells) != 1 || cells[0].Tag != cellvm.Number {
		return NoMatch, nil
	}
	replaceWithChars(vm, prev, next, strconv.FormatInt(cells[0].Int(), 10))
	return Matched, nil
}

// chr turns every Number in the view field into the Char of the same code
// point: <Chr e.Expr> == e.Expr'.
func (t *Table) chr(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	for i := vm.Next(prev); i != next; i = vm.Next(i) {
		c := vm.Cell(i)
		if c.Tag == cellvm.Number {
			c.Tag = cellvm.Char
			vm.Set(i, c)
		}
	}
	return Matched, nil
}

// ord is chr's inverse: every Char becomes the Number of its code point.
func (t *Table) ord(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	for i := vm.Next(prev); i != next; i = vm.Next(i) {
		c := vm.Cell(i)
		if c.Tag == cellvm.Char {
			c.Tag = cellvm.Number
			vm.Set(i, c)
		}
	}
	return Matched, nil
}
