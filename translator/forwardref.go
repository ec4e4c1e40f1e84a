package translator

import (
	"github.com/strusov/refalgo/cellvm"
	"github.com/strusov/refalgo/rtrie"
)

// resolveForwardReferences runs the two fix-up passes spec.md §4.3.5
// describes, over an external, ordered list rather than threading the
// cells themselves: pass 1 lets every call candidate bind to a callee that
// turned out to be defined somewhere later in the source; pass 2 gives any
// name still undefined a fresh enum value and turns every remaining
// placeholder cell into a plain identifier (or, for a call candidate that
// still isn't callable, a hard error).
func (tr *translator) resolveForwardReferences() error {
	for i := range tr.forwardRefs {
		ref := &tr.forwardRefs[i]
		if !ref.isCallCandidate {
			continue
		}
		val := tr.ids.Value(ref.trieIdx)
		if !val.IsCallable() {
			continue
		}
		tr.bindCandidateAsCallee(ref, val)
	}

	for i := range tr.forwardRefs {
		ref := &tr.forwardRefs[i]
		if ref.boundAsCallee {
			continue
		}
		val := tr.ids.Value(ref.trieIdx)
		if val.Kind == rtrie.Undefined {
			val = rtrie.Value{Kind: rtrie.Enum, Payload: tr.freshEnum()}
			tr.ids.SetValue(ref.trieIdx, val)
			if tr.cfg.WarnImplicitDeclaration {
				tr.warnf(ref.pos, "implicit declaration of an undefined identifier")
			}
		}
		if ref.isCallCandidate {
			return tr.syntaxErrorf(ref.pos, "active expression must contain a computable function")
		}
		c := tr.vm.Cell(ref.cell)
		c.Tag = cellvm.Identifier
		c.Payload = val.Encode()
		tr.vm.Set(ref.cell, c)
	}

	tr.forwardRefs = nil
	return nil
}

func (tr *translator) bindCandidateAsCallee(ref *forwardRef, val rtrie.Value) {
	c := tr.vm.Cell(ref.openCall)
	c.Payload = val.Encode()
	tr.vm.Set(ref.openCall, c)
	if execIdx, ok := tr.execByOpenCall[ref.openCall]; ok {
		e := tr.vm.Cell(execIdx)
		e.Payload = val.Encode()
		tr.vm.Set(execIdx, e)
	}
	tr.unlink(ref.cell)
	ref.boundAsCallee = true
}
