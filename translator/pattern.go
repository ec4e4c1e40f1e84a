package translator

import "github.com/strusov/refalgo/cellvm"

// parsePattern consumes pattern tokens up to (but not including) '='. tr.tok
// must already hold the first pattern token (or '=' itself, for an empty
// pattern) on entry.
func (tr *translator) parsePattern() error {
	for {
		switch tr.tok {
		case Equal:
			return nil
		case EOF:
			return tr.syntaxErrorf(tr.sc.Pos, "unexpected end of file in pattern")
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
			return tr.syntaxErrorf(tr.sc.Pos, "call brackets are not allowed in a pattern")
		case String:
			tr.emitString(tr.sc.Lit)
			tr.next()
		case Number:
			tr.emitNumber()
			tr.next()
		case Ident:
			if err := tr.patternIdent(); err != nil {
				return err
			}
			tr.next()
		default:
			return tr.syntaxErrorf(tr.sc.Pos, "unexpected %s in pattern", tr.tok)
		}
	}
}

func (tr *translator) patternIdent() error {
	kind, name, isVar := classifyIdent(tr.sc.Lit)
	if !isVar {
		tr.emit(cellvm.Atom, uint64(tr.vm.Atoms.Intern(name)))
		return nil
	}
	slot, err := tr.declarePatternVar(kind, name)
	if err != nil {
		return tr.syntaxErrorf(tr.sc.Pos, "%s", err)
	}
	tr.emit(kind.tag(), uint64(slot))
	return nil
}

func (tr *translator) pushBracket() error {
	if uint(len(tr.bracketStack)) >= tr.cfg.BracketsLimit {
		return tr.syntaxErrorf(tr.sc.Pos, "limit exceeded (brackets)")
	}
	idx := tr.emit(cellvm.OpenBracket, 0)
	tr.bracketStack = append(tr.bracketStack, idx)
	return nil
}

func (tr *translator) popBracket() error {
	if len(tr.bracketStack) == 0 {
		return tr.syntaxErrorf(tr.sc.Pos, "unbalanced structural brackets")
	}
	open := tr.bracketStack[len(tr.bracketStack)-1]
	tr.bracketStack = tr.bracketStack[:len(tr.bracketStack)-1]
	idx := tr.emit(cellvm.CloseBracket, 0)
	tr.vm.LinkBrackets(open, idx)
	return nil
}

func (tr *translator) emitString(s string) {
	for _, r := range s {
		tr.emit(cellvm.Char, uint64(r))
	}
}

func (tr *translator) emitNumber() {
	if tr.sc.Overflowed {
		tr.warnf(tr.sc.Pos, "number literal overflows 64 bits, truncated")
	}
	tr.emit(cellvm.Number, uint64(tr.sc.NumVal))
}
