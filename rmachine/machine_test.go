package rmachine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strusov/refalgo/builtin"
	"github.com/strusov/refalgo/cellvm"
	"github.com/strusov/refalgo/config"
	"github.com/strusov/refalgo/diag"
	"github.com/strusov/refalgo/rtrie"
	"github.com/strusov/refalgo/translator"
)

type fixture struct {
	vm  *cellvm.Arena
	ids *rtrie.Trie
	tab *builtin.Table
	out *strings.Builder
}

func compile(t *testing.T, src string) fixture {
	t.Helper()
	out := &strings.Builder{}
	tab := builtin.NewStandardTable(strings.NewReader(""), out)
	ids := rtrie.New(64)
	translator.SeedBuiltins(ids, tab)
	vm := cellvm.NewArena(cellvm.DefaultSize)

	var msgs []diag.Message
	sink := diag.Func(func(m diag.Message) { msgs = append(msgs, m) })
	err := translator.Translate(config.Default().Translator, vm, ids, sink, nil, "t.ref", []byte(src))
	require.NoError(t, err, "%v", msgs)
	return fixture{vm: vm, ids: ids, tab: tab, out: out}
}

func (f fixture) run(t *testing.T, name string, prev, next cellvm.Index) builtin.Verdict {
	t.Helper()
	v := f.ids.GetValue([]rune(name))
	require.True(t, v.IsCallable(), "%q is not callable", name)
	entry := cellvm.Index(v.Payload)
	verdict, err := Run(context.Background(), config.Default().Interpreter, f.vm, f.ids, f.tab, entry, prev, next)
	require.NoError(t, err)
	return verdict
}

func (f fixture) text(prev, next cellvm.Index) string {
	var sb strings.Builder
	for i := f.vm.Next(prev); i != next; i = f.vm.Next(i) {
		c := f.vm.Cell(i)
		switch c.Tag {
		case cellvm.Char:
			sb.WriteRune(c.Rune())
		case cellvm.Number:
			sb.WriteString(itoa(c.Int()))
		case cellvm.Atom:
			sb.WriteString(f.vm.AtomString(i))
		}
	}
	return sb.String()
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte('0' + n%10)}, buf...)
		n /= 10
	}
	if neg {
		buf = append([]byte{'-'}, buf...)
	}
	return string(buf)
}

// S1: a Hello-world style inline function calling a built-in.
func TestHelloCallsProut(t *testing.T) {
	f := compile(t, `Go = <Prout "Hello">;`)
	head, tail := f.vm.NewList()
	verdict := f.run(t, "Go", head, tail)
	assert.Equal(t, builtin.Matched, verdict)
	assert.Equal(t, "Hello\n", f.out.String())
	assert.True(t, f.vm.IsEvarEmpty(head, tail))
}

// S2: an empty function is an enum, never reachable through Run.
func TestEmptyFunctionIsNotCallable(t *testing.T) {
	f := compile(t, `Nil;`)
	v := f.ids.GetValue([]rune("Nil"))
	assert.False(t, v.IsCallable())
}

// S3: block fallthrough and "match impossible" on exhaustion.
func TestBlockFallsThroughToTheMatchingSentence(t *testing.T) {
	f := compile(t, `F { 'a' = 1; 'b' = 2; };`)

	head, tail := f.vm.NewList()
	vm := f.vm
	first := vm.AllocChar('b')
	vm.InsertNext(head, first)
	verdict := f.run(t, "F", head, tail)
	require.Equal(t, builtin.Matched, verdict)
	assert.Equal(t, "2", f.text(head, tail))
}

func TestBlockMismatchIsMatchImpossible(t *testing.T) {
	f := compile(t, `F { 'a' = 1; 'b' = 2; };`)
	head, tail := f.vm.NewList()
	first := f.vm.AllocChar('z')
	f.vm.InsertNext(head, first)
	verdict := f.run(t, "F", head, tail)
	assert.Equal(t, builtin.NoMatch, verdict)
}

// S7: a tail-recursive loop runs to completion without overflowing the Go
// call stack; a counted-down loop proves the trampoline actually iterates
// rather than merely compiling.
func TestTailCallRunsManyIterationsInConstantStack(t *testing.T) {
	f := compile(t, `
Count {
  0 = <Prout "done">;
  s.N = <Count <Sub s.N 1>>;
};
`)
	head, tail := f.vm.NewList()
	n := f.vm.AllocNumber(50000)
	f.vm.InsertNext(head, n)
	verdict := f.run(t, "Count", head, tail)
	require.Equal(t, builtin.Matched, verdict)
	assert.Equal(t, "done\n", f.out.String())
}

// Structural bracket matching and substitution.
func TestBracketPatternMatchesAsOneTerm(t *testing.T) {
	f := compile(t, `First (s.A s.B) e.Rest = s.A;`)
	vm := f.vm
	head, tail := vm.NewList()
	open := vm.AllocCommand(cellvm.OpenBracket)
	vm.AllocChar('x')
	vm.AllocChar('y')
	closeIdx := vm.AllocCommand(cellvm.CloseBracket)
	vm.LinkBrackets(open, closeIdx)
	vm.AllocChar('z')
	vm.InsertNext(head, open)

	verdict := f.run(t, "First", head, tail)
	require.Equal(t, builtin.Matched, verdict)
	assert.Equal(t, "x", f.text(head, tail))
}

// A repeated pattern e-variable is an equality constraint, not a fresh bind.
func TestRepeatedPatternEvarRequiresEqualContent(t *testing.T) {
	f := compile(t, `Same e.X e.X = "yes";`)

	vm := f.vm
	head, tail := vm.NewList()
	first := vm.AllocChar('a')
	vm.AllocChar('b')
	vm.AllocChar('a')
	vm.AllocChar('b')
	vm.InsertNext(head, first)
	verdict := f.run(t, "Same", head, tail)
	require.Equal(t, builtin.Matched, verdict)
	assert.Equal(t, "yes", f.text(head, tail))
}

func TestRepeatedPatternEvarRejectsUnequalContent(t *testing.T) {
	f := compile(t, `Same e.X e.X = "yes";`)

	vm := f.vm
	head, tail := vm.NewList()
	first := vm.AllocChar('a')
	vm.AllocChar('b')
	vm.InsertNext(head, first)
	verdict := f.run(t, "Same", head, tail)
	assert.Equal(t, builtin.NoMatch, verdict)
}

// A repeated result variable copies its first occurrence and moves its last.
func TestDupCopiesThenMoves(t *testing.T) {
	f := compile(t, `Dup e.X = e.X e.X;`)
	vm := f.vm
	head, tail := vm.NewList()
	a := vm.AllocChar('a')
	vm.InsertNext(head, a)
	verdict := f.run(t, "Dup", head, tail)
	require.Equal(t, builtin.Matched, verdict)
	assert.Equal(t, "aa", f.text(head, tail))
}

// Nested active expressions inside a result are evaluated before Run
// returns.
func TestNestedCallInResultIsFullyReduced(t *testing.T) {
	f := compile(t, `Go = <Prout <Add 2 3>>;`)
	head, tail := f.vm.NewList()
	verdict := f.run(t, "Go", head, tail)
	require.Equal(t, builtin.Matched, verdict)
	assert.Equal(t, "5\n", f.out.String())
}

func TestMuDispatchesAFunctionNamedByValue(t *testing.T) {
	f := compile(t, `Go = <Mu Prout "hi">;`)
	head, tail := f.vm.NewList()
	verdict := f.run(t, "Go", head, tail)
	require.Equal(t, builtin.Matched, verdict)
}

func TestSeedArgvWrapsEachArgumentInItsOwnBracketPair(t *testing.T) {
	vm := cellvm.NewArena(cellvm.DefaultSize)
	head, tail := SeedArgv(vm, []string{"one", "two"})

	var opens int
	for i := vm.Next(head); i != tail; i = vm.Next(i) {
		if vm.Cell(i).Tag == cellvm.OpenBracket {
			opens++
		}
	}
	assert.Equal(t, 2, opens)
}
