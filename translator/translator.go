// Package translator turns REFAL-5 source text into the compiled cell
// program cellvm.Arena can execute: a single left-to-right pass over the
// token stream that emits bytecode cells as it goes, resolves forward
// references in a pair of fix-up passes once the whole file (and any
// modules it imports) has been scanned, and records every function,
// module, and local variable it meets in a shared rtrie.Trie symbol table.
package translator

import (
	"github.com/strusov/refalgo/builtin"
	"github.com/strusov/refalgo/cellvm"
	"github.com/strusov/refalgo/config"
	"github.com/strusov/refalgo/diag"
	"github.com/strusov/refalgo/rtrie"
)

// SeedBuiltins registers every standard-library function in tab as a
// MachineCode value in ids, so that source calling Prout, Card, and the
// rest resolves them without ever seeing a forward reference. Call it once
// on a fresh Trie before the first Translate.
func SeedBuiltins(ids *rtrie.Trie, tab *builtin.Table) {
	for i := 0; i < tab.Len(); i++ {
		idx := ids.Insert([]rune(tab.Name(uint32(i))))
		ids.SetValue(idx, rtrie.Value{Kind: rtrie.MachineCode, Payload: uint32(i)})
	}
}

// execFrame tracks one level of call-bracket nesting while parsing a
// result. The synthetic frame at the bottom of tr.execStack (openCall == 0)
// represents "not inside any call", so a bare identifier at the outermost
// level of a result is never mistaken for a call's callee.
type execFrame struct {
	openCall     cellvm.Index
	calleeBound  bool
	hasCandidate bool
}

// forwardRef records one occurrence of a not-yet-defined identifier, to be
// resolved once the whole source (including any imported modules) has been
// scanned. isCallCandidate marks the occurrence that, if it turns out
// callable, becomes its enclosing call's target instead of a plain
// identifier cell.
type forwardRef struct {
	cell            cellvm.Index
	trieIdx         rtrie.Index
	pos             Pos
	isCallCandidate bool
	openCall        cellvm.Index
	boundAsCallee   bool
}

type translator struct {
	cfg    config.Translator
	vm     *cellvm.Arena
	ids    *rtrie.Trie
	sink   diag.Sink
	loader ModuleLoader
	source string

	sc  Scanner
	tok Token

	failure *fail

	namespace     rtrie.Index // 0 = global root; a module's private subtree root while translating that module's own source
	pendingModule rtrie.Index // non-zero right after a module identifier, until the member name that follows is consumed

	funcIdx           rtrie.Index
	entry             cellvm.Index
	prev              cellvm.Index
	sentenceOrdinal   int
	nextSlot          uint32
	resultOccurrences map[uint32]cellvm.Index

	execStack      []execFrame
	bracketStack   []cellvm.Index
	execByOpenCall map[cellvm.Index]cellvm.Index
	forwardRefs    []forwardRef
}

// Translate compiles src (named source, for diagnostics) into vm, recording
// every identifier it defines or references in ids. ids may already contain
// built-in names (see SeedBuiltins) or definitions from a previously
// translated file sharing the same symbol table. loader resolves module
// imports; pass nil if src cannot import modules (e.g. when translating a
// module's own body in a context where only built-ins are visible is never
// correct, but a loader that always fails is a reasonable way to forbid
// nested imports).
func Translate(cfg config.Translator, vm *cellvm.Arena, ids *rtrie.Trie, sink diag.Sink, loader ModuleLoader, source string, src []byte) error {
	tr := newTranslator(cfg, vm, ids, sink, loader, source)
	tr.sc.Init(src)
	return tr.run()
}

func newTranslator(cfg config.Translator, vm *cellvm.Arena, ids *rtrie.Trie, sink diag.Sink, loader ModuleLoader, source string) *translator {
	return &translator{
		cfg:            cfg,
		vm:             vm,
		ids:            ids,
		sink:           sink,
		loader:         loader,
		source:         source,
		failure:        &fail{},
		execByOpenCall: map[cellvm.Index]cellvm.Index{},
	}
}

func (tr *translator) next() Token {
	tr.tok = tr.sc.Scan()
	return tr.tok
}

func (tr *translator) run() error {
	tr.next()
	if err := tr.translateBody(); err != nil {
		return err
	}
	if tr.failure.n > 0 {
		return tr.failure
	}
	return tr.resolveForwardReferences()
}

// translateBody consumes top-level declarations until EOF. Both the
// top-level file and each imported module's own source run through this
// same loop (see loadModule), each with its own forward-reference fix-up
// at the end.
func (tr *translator) translateBody() error {
	for tr.tok != EOF {
		switch tr.tok {
		case Illegal:
			return tr.syntaxErrorf(tr.sc.Pos, "%s", tr.sc.Lit)
		case Ident:
			name := tr.sc.Lit
			pos := tr.sc.Pos
			if err := tr.topLevelIdent(name, pos); err != nil {
				return err
			}
		default:
			return tr.syntaxErrorf(tr.sc.Pos, "expected an identifier, got %s", tr.tok)
		}
	}
	return nil
}

func (tr *translator) topLevelIdent(name string, pos Pos) error {
	if _, _, isVar := classifyIdent(name); isVar {
		return tr.syntaxErrorf(pos, "expected a function name")
	}
	tr.next()
	switch tr.tok {
	case Colon:
		return tr.parseModuleImport(name, pos)
	case Semi:
		tr.next()
		return tr.defineEmptyFunction(name, pos)
	case LBrace:
		tr.next()
		return tr.defineBlockFunction(name, pos)
	default:
		return tr.defineInlineFunction(name, pos)
	}
}

// identNode returns the stable trie node for name in the translator's
// current namespace, allocating one if this is the first time name is
// seen. The same call serves definitions and uses: a use that precedes the
// definition gets the same node, which is how forward references work.
func (tr *translator) identNode(name string) rtrie.Index {
	if tr.namespace == 0 {
		return tr.ids.Insert([]rune(name))
	}
	return tr.ids.InsertUnder(tr.namespace, []rune(name))
}

func (tr *translator) beginFunctionDef(name string, pos Pos) (rtrie.Index, error) {
	idx := tr.identNode(name)
	if v := tr.ids.Value(idx); v.Kind != rtrie.Undefined {
		return 0, tr.syntaxErrorf(pos, "%q is already defined", name)
	}
	return idx, nil
}

func (tr *translator) freshEnum() uint32 { return uint32(tr.ids.Len()) }

func (tr *translator) startFunction(idx rtrie.Index) {
	tr.funcIdx = idx
	tr.prev = 0
	tr.entry = 0
	tr.sentenceOrdinal = 0
	tr.nextSlot = 0
	tr.resultOccurrences = map[uint32]cellvm.Index{}
	tr.bracketStack = tr.bracketStack[:0]
	tr.execStack = []execFrame{{}} // root: openCall == 0, "not inside a call"
}

func (tr *translator) defineEmptyFunction(name string, pos Pos) error {
	idx, err := tr.beginFunctionDef(name, pos)
	if err != nil {
		return err
	}
	tr.ids.SetValue(idx, rtrie.Value{Kind: rtrie.Enum, Payload: tr.freshEnum()})
	return nil
}

func (tr *translator) defineInlineFunction(name string, pos Pos) error {
	idx, err := tr.beginFunctionDef(name, pos)
	if err != nil {
		return err
	}
	tr.startFunction(idx)

	if err := tr.parsePattern(); err != nil {
		return err
	}
	if tr.tok != Equal {
		return tr.syntaxErrorf(tr.sc.Pos, "expected '=' in function %q", name)
	}
	tr.emit(cellvm.Equal, 0)
	tr.next()
	if err := tr.parseResult(); err != nil {
		return err
	}
	if tr.tok != Semi {
		return tr.syntaxErrorf(tr.sc.Pos, "expected ';'")
	}
	tr.closeSentenceResult()
	tr.emit(cellvm.Complete, 0)
	tr.next()

	tr.ids.SetValue(idx, rtrie.Value{Kind: rtrie.ByteCode, Payload: uint32(tr.entry)})
	return nil
}

func (tr *translator) defineBlockFunction(name string, pos Pos) error {
	idx, err := tr.beginFunctionDef(name, pos)
	if err != nil {
		return err
	}
	tr.startFunction(idx)

	if tr.tok == RBrace {
		tr.next()
		if tr.tok != Semi {
			return tr.syntaxErrorf(tr.sc.Pos, "expected ';' after '}'")
		}
		tr.next()
		tr.ids.SetValue(idx, rtrie.Value{Kind: rtrie.Enum, Payload: tr.freshEnum()})
		return nil
	}

	sentenceIdx := tr.emit(cellvm.Sentence, 0)
	for {
		tr.nextSlot = 0
		tr.resultOccurrences = map[uint32]cellvm.Index{}

		if err := tr.parsePattern(); err != nil {
			return err
		}
		if tr.tok != Equal {
			return tr.syntaxErrorf(tr.sc.Pos, "expected '=' in function %q", name)
		}
		tr.emit(cellvm.Equal, 0)
		tr.next()
		if err := tr.parseResult(); err != nil {
			return err
		}
		if tr.tok != Semi {
			return tr.syntaxErrorf(tr.sc.Pos, "expected ';'")
		}
		tr.closeSentenceResult()
		tr.next()

		if tr.tok == RBrace {
			tr.emit(cellvm.Complete, 0)
			tr.next()
			if tr.tok != Semi {
				return tr.syntaxErrorf(tr.sc.Pos, "expected ';' after '}'")
			}
			tr.next()
			break
		}

		tr.sentenceOrdinal++
		next := tr.emit(cellvm.Sentence, 0)
		c := tr.vm.Cell(sentenceIdx)
		c.Payload = uint64(next)
		tr.vm.Set(sentenceIdx, c)
		sentenceIdx = next
	}

	tr.ids.SetValue(idx, rtrie.Value{Kind: rtrie.ByteCode, Payload: uint32(tr.entry)})
	return nil
}

// closeSentenceResult marks the sentence's last emitted cell as a tail call
// if (and only if) it is an Execute: the call's closing '>' having balanced
// back to depth 0 right before ';' is exactly what makes it the very last
// cell of the result.
func (tr *translator) closeSentenceResult() {
	if tr.prev == 0 {
		return
	}
	if c := tr.vm.Cell(tr.prev); c.Tag == cellvm.Execute {
		tr.vm.MarkTailCall(tr.prev)
	}
}

// emit appends a cell to the function's straight-line cell chain (not the
// splice-based view-field operations cellvm.Arena also offers: compiled
// bytecode is only ever built once, left to right).
func (tr *translator) emit(tag cellvm.Tag, payload uint64) cellvm.Index {
	idx := tr.vm.AllocValue(payload, tag)
	tr.link(idx)
	if tr.entry == 0 {
		tr.entry = idx
	}
	return idx
}

func (tr *translator) link(idx cellvm.Index) {
	c := tr.vm.Cell(idx)
	c.Prev = tr.prev
	c.Next = 0
	tr.vm.Set(idx, c)
	if tr.prev != 0 {
		p := tr.vm.Cell(tr.prev)
		p.Next = idx
		tr.vm.Set(tr.prev, p)
	}
	tr.prev = idx
}

// unlink removes idx from the chain it was linked into, used only to
// retract a forward-reference placeholder that turned out to be its call's
// resolved callee instead of a plain identifier occurrence.
func (tr *translator) unlink(idx cellvm.Index) {
	c := tr.vm.Cell(idx)
	if c.Prev != 0 {
		p := tr.vm.Cell(c.Prev)
		p.Next = c.Next
		tr.vm.Set(c.Prev, p)
	}
	if c.Next != 0 {
		n := tr.vm.Cell(c.Next)
		n.Prev = c.Prev
		tr.vm.Set(c.Next, n)
	}
}

func (tr *translator) curFrame() *execFrame {
	return &tr.execStack[len(tr.execStack)-1]
}
