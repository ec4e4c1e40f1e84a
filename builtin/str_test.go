package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strusov/refalgo/cellvm"
)

func charList(vm *cellvm.Arena, s string) (prev, next cellvm.Index) {
	prev, next = vm.NewList()
	runes := []rune(s)
	if len(runes) == 0 {
		return prev, next
	}
	first := vm.AllocChar(runes[0])
	for _, r := range runes[1:] {
		vm.AllocChar(r)
	}
	vm.InsertNext(prev, first)
	return prev, next
}

func renderChars(vm *cellvm.Arena, prev, next cellvm.Index) string {
	var out []rune
	for i := vm.Next(prev); i != next; i = vm.Next(i) {
		out = append(out, vm.Cell(i).Rune())
	}
	return string(out)
}

func TestTypeClassifiesFirstElementWithoutConsuming(t *testing.T) {
	tab := newTable()
	vm := cellvm.NewArena(64)

	prev, next := charList(vm, "Abc")
	verdict, err := tab.typeOf(vm, prev, next)
	require.NoError(t, err)
	assert.Equal(t, Matched, verdict)
	assert.Equal(t, "LUAbc", renderChars(vm, prev, next))
}

func TestTypeOnEmptyField(t *testing.T) {
	tab := newTable()
	vm := cellvm.NewArena(64)
	prev, next := vm.NewList()
	_, err := tab.typeOf(vm, prev, next)
	require.NoError(t, err)
	assert.Equal(t, "*0", renderChars(vm, prev, next))
}

func TestNumbParsesLeadingDigits(t *testing.T) {
	tab := newTable()
	vm := cellvm.NewArena(64)
	prev, next := charList(vm, "42rest")

	verdict, err := tab.numb(vm, prev, next)
	require.NoError(t, err)
	assert.Equal(t, Matched, verdict)

	first := vm.Next(prev)
	assert.Equal(t, cellvm.Number, vm.Cell(first).Tag)
	assert.Equal(t, int64(42), vm.Cell(first).Int())
	assert.Equal(t, "rest", renderChars(vm, first, next))
}

func TestNumbWithoutLeadingDigitsYieldsZero(t *testing.T) {
	tab := newTable()
	vm := cellvm.NewArena(64)
	prev, next := charList(vm, "abc")

	_, err := tab.numb(vm, prev, next)
	require.NoError(t, err)
	first := vm.Next(prev)
	assert.Equal(t, int64(0), vm.Cell(first).Int())
	assert.Equal(t, "abc", renderChars(vm, vm.Next(first), next))
}

func TestSymbRendersDigits(t *testing.T) {
	tab := newTable()
	vm := cellvm.NewArena(64)
	prev, next := vm.NewList()
	n := vm.AllocNumber(-17)
	vm.InsertNext(prev, n)

	verdict, err := tab.symb(vm, prev, next)
	require.NoError(t, err)
	assert.Equal(t, Matched, verdict)
	assert.Equal(t, "-17", renderChars(vm, prev, next))
}

func TestChrAndOrdRoundTrip(t *testing.T) {
	tab := newTable()
	vm := cellvm.NewArena(64)
	prev, next := vm.NewList()
	n := vm.AllocNumber(65)
	vm.InsertNext(prev, n)

	_, err := tab.chr(vm, prev, next)
	require.NoError(t, err)
	assert.Equal(t, cellvm.Char, vm.Cell(vm.Next(prev)).Tag)
	assert.Equal(t, 'A', vm.Cell(vm.Next(prev)).Rune())

	_, err = tab.ord(vm, prev, next)
	require.NoError(t, err)
	assert.Equal(t, cellvm.Number, vm.Cell(vm.Next(prev)).Tag)
	assert.Equal(t, int64(65), vm.Cell(vm.Next(prev)).Int())
}
