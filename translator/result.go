package translator

import (
	"github.com/strusov/refalgo/cellvm"
	"github.com/strusov/refalgo/rtrie"
)

// parseResult consumes result tokens up to (but not including) the ';' that
// ends the sentence. tr.tok must already hold the first result token on
// entry (the token right after '=').
func (tr *translator) parseResult() error {
	for {
		switch tr.tok {
		case Semi:
			if len(tr.execStack) != 1 {
				return tr.syntaxErrorf(tr.sc.Pos, "unbalanced call brackets")
			}
			if len(tr.bracketStack) != 0 {
				return tr.syntaxErrorf(tr.sc.Pos, "unbalanced structural brackets")
			}
			return nil
		case EOF:
			return tr.syntaxErrorf(tr.sc.Pos, "unexpected end of file in result")
		case LParen:
			if err := tr.pushBracket(); err != nil {
				return err
			}
			tr.next()
		case RParen:
			if err := tr.popBracket(); err != nil {
				return err
			}
			tr.next()
		case LAngle:
			if err := tr.openCall(); err != nil {
				return err
			}
			tr.next()
		case RAngle:
			if err := tr.closeCall(); err != nil {
				return err
			}
			tr.next()
		case String:
			tr.emitString(tr.sc.Lit)
			tr.next()
		case Number:
			tr.emitNumber()
			tr.next()
		case Ident:
			if err := tr.resultIdent(); err != nil {
				return err
			}
			tr.next()
		default:
			return tr.syntaxErrorf(tr.sc.Pos, "unexpected %s in result", tr.tok)
		}
	}
}

func (tr *translator) resultIdent() error {
	kind, name, isVar := classifyIdent(tr.sc.Lit)
	if isVar {
		slot, declared := tr.referenceResultVar(kind, name)
		if !declared {
			return tr.syntaxErrorf(tr.sc.Pos, "variable %q was never declared in this sentence's pattern", tr.sc.Lit)
		}
		idx := tr.emit(kind.tag(), uint64(slot))
		if kind != svarKind {
			tr.markPriorOccurrenceForCopy(slot, idx)
		}
		return nil
	}
	return tr.emitPlainResultIdent(name, tr.sc.Pos)
}

// markPriorOccurrenceForCopy flags every occurrence of slot but the most
// recent one as needing a copy rather than a move, since a second
// occurrence still needs the first's binding intact.
func (tr *translator) markPriorOccurrenceForCopy(slot uint32, idx cellvm.Index) {
	if prior, seen := tr.resultOccurrences[slot]; seen {
		tr.vm.MarkCopy(prior)
	}
	tr.resultOccurrences[slot] = idx
}

func (tr *translator) openCall() error {
	if uint(len(tr.execStack)-1) >= tr.cfg.ExecsLimit {
		return tr.syntaxErrorf(tr.sc.Pos, "limit exceeded (execs)")
	}
	idx := tr.emit(cellvm.OpenCall, 0)
	tr.execStack = append(tr.execStack, execFrame{openCall: idx})
	return nil
}

func (tr *translator) closeCall() error {
	if len(tr.execStack) == 1 {
		return tr.syntaxErrorf(tr.sc.Pos, "stray '>'")
	}
	frame := tr.execStack[len(tr.execStack)-1]
	tr.execStack = tr.execStack[:len(tr.execStack)-1]
	if !frame.calleeBound && !frame.hasCandidate {
		return tr.syntaxErrorf(tr.sc.Pos, "active expression must contain a computable function")
	}

	var payload uint64
	if frame.calleeBound {
		payload = tr.vm.Cell(frame.openCall).Payload
	} else {
		// The callee is still a pending forward reference (a call with
		// no candidate at all was rejected above): park the open-call's
		// own index here so fix-up can find both cells from the
		// forward-reference record alone.
		payload = uint64(frame.openCall)
	}
	execIdx := tr.emit(cellvm.Execute, payload)
	if !frame.calleeBound {
		tr.execByOpenCall[frame.openCall] = execIdx
	}
	return nil
}

// emitPlainResultIdent resolves a non-variable identifier occurring in a
// result: a pending module switch, an active expression's callee, a plain
// reference to an already-defined name, or a forward reference to be
// resolved once the whole source has been scanned (spec.md §4.3.4).
func (tr *translator) emitPlainResultIdent(name string, pos Pos) error {
	if tr.pendingModule != 0 {
		root := tr.pendingModule
		tr.pendingModule = 0
		return tr.emitModuleMember(root, name, pos)
	}

	idx := tr.identNode(name)
	val := tr.ids.Value(idx)

	if val.IsModule() {
		tr.pendingModule = tr.moduleSubtreeRoot(idx)
		return nil
	}

	frame := tr.curFrame()
	isOpenCandidate := frame.openCall != 0 && !frame.calleeBound && !frame.hasCandidate

	switch val.Kind {
	case rtrie.Undefined:
		cell := tr.emit(cellvm.Undefined, 0)
		ref := forwardRef{cell: cell, trieIdx: idx, pos: pos}
		if isOpenCandidate {
			ref.isCallCandidate = true
			ref.openCall = frame.openCall
			frame.hasCandidate = true
		}
		tr.forwardRefs = append(tr.forwardRefs, ref)
		return nil
	default:
		if val.IsCallable() && isOpenCandidate {
			c := tr.vm.Cell(frame.openCall)
			c.Payload = val.Encode()
			tr.vm.Set(frame.openCall, c)
			frame.calleeBound = true
			return nil
		}
		tr.emit(cellvm.Identifier, val.Encode())
		return nil
	}
}
