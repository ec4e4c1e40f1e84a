package rtrie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertAndGetValue(t *testing.T) {
	tr := New(16)
	idx := tr.Insert([]rune("Prout"))
	tr.SetValue(idx, Value{Kind: MachineCode, Payload: 3})

	got := tr.GetValue([]rune("Prout"))
	assert.Equal(t, Value{Kind: MachineCode, Payload: 3}, got)

	assert.Equal(t, Value{}, tr.GetValue([]rune("Print")))
}

func TestSharedPrefixesDiverge(t *testing.T) {
	tr := New(16)
	a := tr.Insert([]rune("Go"))
	b := tr.Insert([]rune("Golf"))
	tr.SetValue(a, Value{Kind: Enum, Payload: 1})
	tr.SetValue(b, Value{Kind: Enum, Payload: 2})

	assert.Equal(t, Value{Kind: Enum, Payload: 1}, tr.GetValue([]rune("Go")))
	assert.Equal(t, Value{Kind: Enum, Payload: 2}, tr.GetValue([]rune("Golf")))
}

func TestUndefinedThenRedefined(t *testing.T) {
	tr := New(16)
	idx := tr.Insert([]rune("F"))
	assert.Equal(t, Value{}, tr.Value(idx))
	tr.SetValue(idx, Value{Kind: ByteCode, Payload: 42})
	assert.True(t, tr.Value(idx).IsCallable())
}

func TestLocalVariableScoping(t *testing.T) {
	tr := New(32)
	fn := tr.Insert([]rune("Dup"))

	sentence0 := tr.InsertNext(fn, LocalSeparator(0))
	slotA := tr.InsertUnder(sentence0, []rune("eX"))
	tr.SetValue(slotA, Value{Kind: Enum, Payload: 1})

	sentence1 := tr.InsertNext(fn, LocalSeparator(1))
	assert.NotEqual(t, sentence0, sentence1)
	assert.Equal(t, NoNode, tr.FindUnder(sentence1, []rune("eX")))
	assert.Equal(t, slotA, tr.FindUnder(sentence0, []rune("eX")))
}

func TestModuleEdgeIsolatesPrivateNames(t *testing.T) {
	tr := New(32)
	mod := tr.Insert([]rune("m"))
	tr.SetValue(mod, Value{Kind: Enum, Payload: 0})
	assert.True(t, tr.Value(mod).IsModule())

	priv := tr.InsertNext(mod, ModuleEdge)
	greet := tr.InsertUnder(priv, []rune("Greet"))
	tr.SetValue(greet, Value{Kind: ByteCode, Payload: 7})

	assert.Equal(t, Value{}, tr.GetValue([]rune("Greet")))
	assert.Equal(t, Value{Kind: ByteCode, Payload: 7}, tr.Value(tr.FindUnder(priv, []rune("Greet"))))
}
