package rmachine

import "github.com/strusov/refalgo/cellvm"

// SeedArgv builds the view field cmd/refal passes to the program's Go
// entry function: each trailing command-line argument wrapped in its own
// matched bracket pair, the convention refal.h's rf_alloc_strv documents
// for argv-style access to a program's invocation arguments. Returns the
// half-open range (head, tail) Run expects as (prev, next); an empty args
// slice yields an empty range.
func SeedArgv(vm *cellvm.Arena, args []string) (head, tail cellvm.Index) {
	head, tail = vm.NewList()
	var first cellvm.Index
	for _, arg := range args {
		open := vm.AllocCommand(cellvm.OpenBracket)
		if first == 0 {
			first = open
		}
		for _, r := range []rune(arg) {
			vm.AllocChar(r)
		}
		closeIdx := vm.AllocCommand(cellvm.CloseBracket)
		vm.LinkBrackets(open, closeIdx)
	}
	if first != 0 {
		vm.InsertNext(head, first)
	}
	return head, tail
}
