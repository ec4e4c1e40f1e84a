package builtin

import "github.com/strusov/refalgo/cellvm"

// cellsInRange returns copies of every cell in the half-open view field
// (prev, next), in order.
func cellsInRange(vm *cellvm.Arena, prev, next cellvm.Index) []cellvm.Cell {
	var cells []cellvm.Cell
	for i := vm.Next(prev); i != next; i = vm.Next(i) {
		cells = append(cells, vm.Cell(i))
	}
	return cells
}

// textOf renders the view field (prev, next) as a string, succeeding only
// when every cell in it is a Char.
func textOf(vm *cellvm.Arena, prev, next cellvm.Index) (string, bool) {
	var sb []rune
	for i := vm.Next(prev); i != next; i = vm.Next(i) {
		c := vm.Cell(i)
		if c.Tag != cellvm.Char {
			return "", false
		}
		sb = append(sb, c.Rune())
	}
	return string(sb), true
}

// replaceWithChars frees the view field (prev, next) and substitutes the
// characters of s in its place.
func replaceWithChars(vm *cellvm.Arena, prev, next cellvm.Index, s string) {
	vm.FreeEvar(prev, next)
	runes := []rune(s)
	if len(runes) == 0 {
		return
	}
	first := vm.AllocChar(runes[0])
	for _, r := range runes[1:] {
		vm.AllocChar(r)
	}
	vm.InsertNext(prev, first)
}

// replaceWithOne frees the view field (prev, next) and substitutes a single
// cell allocated by alloc (one of vm.AllocNumber, vm.AllocChar, ...).
func replaceWithOne(vm *cellvm.Arena, prev, next cellvm.Index, alloc func() cellvm.Index) {
	vm.FreeEvar(prev, next)
	idx := alloc()
	vm.InsertNext(prev, idx)
}

// prependChars inserts the characters of s immediately after prev, without
// touching whatever already occupies (prev, next).
func prependChars(vm *cellvm.Arena, prev Index, s string) {
	runes := []rune(s)
	if len(runes) == 0 {
		return
	}
	first := vm.AllocChar(runes[0])
	for _, r := range runes[1:] {
		vm.AllocChar(r)
	}
	vm.InsertNext(prev, first)
}

// Index is a local alias so helpers.go doesn't have to repeat the package
// path in every signature above.
type Index = cellvm.Index
