package builtin

import "github.com/strusov/refalgo/cellvm"

// twoNumbers reports the two operand values of a <F s.NUMBER s.NUMBER>
// pattern, and whether the view field matched it exactly.
func twoNumbers(vm *cellvm.Arena, prev, next cellvm.Index) (a, b int64, ok bool) {
	first := vm.Next(prev)
	if first == next {
		return 0, 0, false
	}
	c1 := vm.Cell(first)
	if c1.Tag != cellvm.Number {
		return 0, 0, false
	}
	second := vm.Next(first)
	if second == next {
		return 0, 0, false
	}
	c2 := vm.Cell(second)
	if c2.Tag != cellvm.Number {
		return 0, 0, false
	}
	if vm.Next(second) != next {
		return 0, 0, false
	}
	return c1.Int(), c2.Int(), true
}

func (t *Table) add(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	a, b, ok := twoNumbers(vm, prev, next)
	if !ok {
		return NoMatch, nil
	}
	replaceWithOne(vm, prev, next, func() cellvm.Index { return vm.AllocNumber(a + b) })
	return Matched, nil
}

func (t *Table) sub(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	a, b, ok := twoNumbers(vm, prev, next)
	if !ok {
		return NoMatch, nil
	}
	replaceWithOne(vm, prev, next, func() cellvm.Index { return vm.AllocNumber(a - b) })
	return Matched, nil
}

func (t *Table) mul(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	a, b, ok := twoNumbers(vm, prev, next)
	if !ok {
		return NoMatch, nil
	}
	replaceWithOne(vm, prev, next, func() cellvm.Index { return vm.AllocNumber(a * b) })
	return Matched, nil
}

func (t *Table) div(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	a, b, ok := twoNumbers(vm, prev, next)
	if !ok {
		return NoMatch, nil
	}
	if b == 0 {
		return NoMatch, errDivisionByZero
	}
	replaceWithOne(vm, prev, next, func() cellvm.Index { return vm.AllocNumber(a / b) })
	return Matched, nil
}

func (t *Table) mod(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	a, b, ok := twoNumbers(vm, prev, next)
	if !ok {
		return NoMatch, nil
	}
	if b == 0 {
		return NoMatch, errDivisionByZero
	}
	replaceWithOne(vm, prev, next, func() cellvm.Index { return vm.AllocNumber(a % b) })
	return Matched, nil
}

// compare implements <Compare s.NUMBER s.NUMBER> == s.CHAR, where the result
// is '-', '0' or '+'.
func (t *Table) compare(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	a, b, ok := twoNumbers(vm, prev, next)
	if !ok {
		return NoMatch, nil
	}
	var r rune
	switch {
	case a < b:
		r = '-'
	case a > b:
		r = '+'
	default:
		r = '0'
	}
	replaceWithOne(vm, prev, next, func() cellvm.Index { return vm.AllocChar(r) })
	return Matched, nil
}

var errDivisionByZero = divisionByZeroError{}

type divisionByZeroError struct{}

func (divisionByZeroError) Error() string { return "builtin: division by zero" }
