package builtin

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strusov/refalgo/cellvm"
)

func TestPrintKeepsExprProutConsumesIt(t *testing.T) {
	var out bytes.Buffer
	tab := NewStandardTable(strings.NewReader(""), &out)
	vm := cellvm.NewArena(64)

	prev, next := charList(vm, "Hi")
	_, err := tab.print(vm, prev, next)
	require.NoError(t, err)
	assert.Equal(t, "Hi\n", out.String())
	assert.False(t, vm.IsEvarEmpty(prev, next))

	out.Reset()
	_, err = tab.prout(vm, prev, next)
	require.NoError(t, err)
	assert.Equal(t, "Hi\n", out.String())
	assert.True(t, vm.IsEvarEmpty(prev, next))
}

func TestCardReadsLineThenSignalsEOF(t *testing.T) {
	tab := NewStandardTable(strings.NewReader("one\ntwo\n"), &bytes.Buffer{})
	vm := cellvm.NewArena(64)

	prev, next := vm.NewList()
	_, err := tab.card(vm, prev, next)
	require.NoError(t, err)
	assert.Equal(t, "one", renderChars(vm, prev, next))
	vm.FreeEvar(prev, next)

	_, err = tab.card(vm, prev, next)
	require.NoError(t, err)
	assert.Equal(t, "two", renderChars(vm, prev, next))
	vm.FreeEvar(prev, next)

	_, err = tab.card(vm, prev, next)
	require.NoError(t, err)
	first := vm.Next(prev)
	assert.Equal(t, cellvm.Number, vm.Cell(first).Tag)
	assert.Equal(t, int64(0), vm.Cell(first).Int())
}

func TestTableRegistersEveryStandardFunction(t *testing.T) {
	tab := newTable()
	for _, name := range []string{
		"Card", "Print", "Prout", "Open", "Close", "Get", "Put", "Putout",
		"Add", "Sub", "Mul", "Div", "Mod", "Compare",
		"Type", "Numb", "Symb", "Chr", "Ord", "Arg", MuName,
	} {
		_, ok := tab.Lookup(name)
		assert.True(t, ok, "expected %s to be registered", name)
	}
	assert.Equal(t, 21, tab.Len())
}

func TestCallRejectsOutOfRangeOrdinal(t *testing.T) {
	tab := newTable()
	vm := cellvm.NewArena(8)
	prev, next := vm.NewList()
	_, err := tab.Call(uint32(tab.Len()), vm, prev, next)
	assert.Error(t, err)
}

func TestMuIsNotDirectlyCallable(t *testing.T) {
	tab := newTable()
	ordinal, ok := tab.Lookup(MuName)
	require.True(t, ok)
	vm := cellvm.NewArena(8)
	prev, next := vm.NewList()
	_, err := tab.Call(ordinal, vm, prev, next)
	assert.Error(t, err)
}
