package disasm_test

import (
	"testing"

	"github.com/kylelemons/godebug/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strusov/refalgo/builtin"
	"github.com/strusov/refalgo/cellvm"
	"github.com/strusov/refalgo/config"
	"github.com/strusov/refalgo/diag"
	"github.com/strusov/refalgo/disasm"
	"github.com/strusov/refalgo/internal/filetest"
	"github.com/strusov/refalgo/rtrie"
	"github.com/strusov/refalgo/translator"
)

// translate compiles src and returns the arena plus the byte-code entry
// point of the function named name.
func translate(t *testing.T, src, name string) (*cellvm.Arena, cellvm.Index) {
	t.Helper()
	vm := cellvm.NewArena(cellvm.DefaultSize)
	ids := rtrie.New(64)
	tab := builtin.NewStandardTable(nil, nil)
	translator.SeedBuiltins(ids, tab)

	var msgs []diag.Message
	sink := diag.Func(func(m diag.Message) { msgs = append(msgs, m) })
	err := translator.Translate(config.Default().Translator, vm, ids, sink, nil, "t.ref", []byte(src))
	require.NoError(t, err, "%v", msgs)

	v := ids.GetValue([]rune(name))
	require.Equal(t, rtrie.ByteCode, v.Kind)
	return vm, cellvm.Index(v.Payload)
}

// TestDisassembleRendersTheGoldenOpcodeListing pins the canonical textual
// form of a small function's opcode sequence against a checked-in fixture,
// the disassembler/renderer half of spec.md §8 invariant 6.
func TestDisassembleRendersTheGoldenOpcodeListing(t *testing.T) {
	vm, entry := translate(t, `Id s.X = s.X;`, "Id")
	ops := disasm.Disassemble(vm, entry)
	filetest.Golden(t, "testdata", "id.golden", disasm.Render(ops))
}

// TestRoundTripParsesBackToTheSameOpcodeSequence exercises spec.md §8
// invariant 6 end to end across a function touching every opcode kind:
// literals, an undefined name (compiled to an enum-valued identifier
// cell), a structural bracket group, all three
// variable kinds, a machine-code call, a plain identifier reference to a
// user function, a tail call, and a second sentence (so the sentence
// opcode's next-sentence link, and its absence on the last sentence, both
// get exercised).
func TestRoundTripParsesBackToTheSameOpcodeSequence(t *testing.T) {
	src := `
Helper s.X = s.X;

Go {
	s.A e.B (t.C) = <Prout "hi" 42 Atom1 (e.B)> Helper <Helper s.A>;
	e.Z = e.Z;
};
`
	vm, entry := translate(t, src, "Go")
	ops := disasm.Disassemble(vm, entry)
	require.NotEmpty(t, ops)

	rendered := disasm.Render(ops)
	parsed, err := disasm.Parse(rendered)
	require.NoError(t, err)
	assert.Equal(t, ops, parsed)

	reRendered := disasm.Render(parsed)
	if patch := diff.Diff(rendered, reRendered); patch != "" {
		t.Errorf("re-rendering the parsed opcode sequence diverged:\n%s", patch)
	}
}
