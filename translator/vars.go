package translator

import (
	"strings"

	"github.com/strusov/refalgo/cellvm"
	"github.com/strusov/refalgo/rtrie"
)

type varKind uint8

const (
	svarKind varKind = iota
	tvarKind
	evarKind
)

func (k varKind) tag() cellvm.Tag {
	switch k {
	case svarKind:
		return cellvm.SVar
	case tvarKind:
		return cellvm.TVar
	default:
		return cellvm.EVar
	}
}

// dispatch is the rune prepended to a variable's bare name before it is
// inserted into a sentence's local scope, so that s.X, t.X and e.X never
// collide even though REFAL lets the same bare name denote any of them.
func (k varKind) dispatch() rune {
	switch k {
	case svarKind:
		return 's'
	case tvarKind:
		return 't'
	default:
		return 'e'
	}
}

// classifyIdent recognizes the prefix forms spec.md §4.3.3 assigns to
// variable occurrences. A lexeme matching none of them is a plain
// identifier (function name, module name, or literal atom).
func classifyIdent(lit string) (kind varKind, name string, isVar bool) {
	switch {
	case strings.HasPrefix(lit, "s.") && len(lit) > 2:
		return svarKind, lit[2:], true
	case strings.HasPrefix(lit, "?") && len(lit) > 1:
		return svarKind, lit[1:], true
	case strings.HasPrefix(lit, "t.") && len(lit) > 2:
		return tvarKind, lit[2:], true
	case strings.HasPrefix(lit, "!") && len(lit) > 1:
		return tvarKind, lit[1:], true
	case strings.HasPrefix(lit, "e.") && len(lit) > 2:
		return evarKind, lit[2:], true
	case strings.HasPrefix(lit, "…") && len(lit) > len("…"):
		return evarKind, lit[len("…"):], true
	case strings.HasPrefix(lit, ".") && len(lit) > 1:
		return evarKind, lit[1:], true
	default:
		return 0, lit, false
	}
}

func varKey(kind varKind, name string) []rune {
	key := make([]rune, 0, len(name)+1)
	key = append(key, kind.dispatch())
	key = append(key, []rune(name)...)
	return key
}

// sentenceScopeRoot returns the trie node that anchors the current
// sentence's local variables: a child of the enclosing function's own node,
// reached through a synthetic per-sentence code point so that a variable
// declared in one sentence is invisible in the next.
func (tr *translator) sentenceScopeRoot() rtrie.Index {
	return tr.ids.InsertNext(tr.funcIdx, rtrie.LocalSeparator(tr.sentenceOrdinal))
}

// declarePatternVar assigns a fresh slot to (kind, name) the first time it
// is seen in the current sentence's pattern, or returns the slot already
// assigned to it (a repeated pattern variable names an equality
// constraint, handled by the interpreter, not the translator).
func (tr *translator) declarePatternVar(kind varKind, name string) (slot uint32, err error) {
	root := tr.sentenceScopeRoot()
	idx := tr.ids.InsertUnder(root, varKey(kind, name))
	v := tr.ids.Value(idx)
	if v.Kind == rtrie.Enum {
		return v.Payload, nil
	}
	if uint(tr.nextSlot) >= tr.cfg.LocalsLimit {
		return 0, errLocalsLimit
	}
	slot = tr.nextSlot
	tr.nextSlot++
	tr.ids.SetValue(idx, rtrie.Value{Kind: rtrie.Enum, Payload: slot})
	return slot, nil
}

// referenceResultVar looks up a variable occurring in a result; unlike
// declarePatternVar it never creates a slot; the variable must already have
// been declared by this sentence's pattern.
func (tr *translator) referenceResultVar(kind varKind, name string) (slot uint32, declared bool) {
	root := tr.sentenceScopeRoot()
	idx := tr.ids.FindUnder(root, varKey(kind, name))
	if idx == rtrie.NoNode {
		return 0, false
	}
	v := tr.ids.Value(idx)
	return v.Payload, true
}

type limitError struct{ detail string }

func (e *limitError) Error() string { return e.detail }

var errLocalsLimit = &limitError{"limit exceeded (locals)"}
