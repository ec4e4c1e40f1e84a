package translator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/strusov/refalgo/cellvm"
	"github.com/strusov/refalgo/rtrie"
)

// ModuleLoader resolves a REFAL module name (as it appears before ':' in a
// "Name: fn1 fn2;" import) to its source. It is injectable so that tests can
// supply modules from memory instead of the filesystem.
type ModuleLoader interface {
	Load(name string) (source string, src []byte, err error)
}

// FileLoader resolves a module name against a directory, trying first the
// ASCII ".ref" extension and then the Cyrillic ".реф" extension REFAL-5
// source historically also used.
type FileLoader struct {
	Dir string
}

// Load implements ModuleLoader.
func (l FileLoader) Load(name string) (string, []byte, error) {
	for _, ext := range []string{".ref", ".реф"} {
		path := filepath.Join(l.Dir, name+ext)
		data, err := os.ReadFile(path)
		if err == nil {
			return path, data, nil
		}
		if !os.IsNotExist(err) {
			return "", nil, err
		}
	}
	return "", nil, fmt.Errorf("no %s.ref or %s.реф found in %s", name, name, l.Dir)
}

const maxModuleNameLength = 255

// parseModuleImport handles "Name: fn1 fn2 … ;". tr.tok holds Colon on
// entry; name/pos identify the module itself. Module names always live in
// the global namespace, even while translating another module's body, so
// that a module can be imported from anywhere it is visible.
func (tr *translator) parseModuleImport(name string, pos Pos) error {
	if len(name) > maxModuleNameLength {
		return tr.syntaxErrorf(pos, "module name %q exceeds %d characters", name, maxModuleNameLength)
	}

	idx := tr.ids.Insert([]rune(name))
	val := tr.ids.Value(idx)

	var moduleRoot rtrie.Index
	switch {
	case val.IsModule():
		moduleRoot = tr.moduleSubtreeRoot(idx)
	case val.Kind == rtrie.Undefined:
		tr.ids.SetValue(idx, rtrie.Value{Kind: rtrie.Enum, Payload: 0})
		moduleRoot = tr.ids.InsertUnder(idx, []rune{rtrie.ModuleEdge})
		if err := tr.loadModule(name, moduleRoot, pos); err != nil {
			return err
		}
	default:
		return tr.syntaxErrorf(pos, "%q is already defined and cannot be used as a module name", name)
	}

	tr.next() // consume ':'
	for {
		if tr.tok != Ident {
			return tr.syntaxErrorf(tr.sc.Pos, "expected an identifier in the import list of module %q", name)
		}
		memberName := tr.sc.Lit
		memberPos := tr.sc.Pos

		srcIdx := tr.ids.FindUnder(moduleRoot, []rune(memberName))
		if srcIdx == rtrie.NoNode {
			return tr.syntaxErrorf(memberPos, "%q is not exported by module %q", memberName, name)
		}
		v := tr.ids.Value(srcIdx)
		if v.Kind == rtrie.Undefined {
			return tr.syntaxErrorf(memberPos, "%q is not defined in module %q", memberName, name)
		}

		dstIdx := tr.identNode(memberName)
		if existing := tr.ids.Value(dstIdx); existing.Kind != rtrie.Undefined {
			return tr.syntaxErrorf(memberPos, "%q is already defined", memberName)
		}
		tr.ids.SetValue(dstIdx, v)

		tr.next()
		if tr.tok == Semi {
			tr.next()
			return nil
		}
	}
}

// loadModule reads and translates the module named name into its own
// private subtree (moduleRoot), using a fresh translator instance that
// shares vm and ids with tr.
func (tr *translator) loadModule(name string, moduleRoot rtrie.Index, pos Pos) error {
	if tr.loader == nil {
		return tr.criticalErrorf(pos, "module %q cannot be loaded: no module loader configured", name)
	}
	source, src, err := tr.loader.Load(name)
	if err != nil {
		return tr.criticalErrorf(pos, "loading module %q: %s", name, err)
	}

	sub := newTranslator(tr.cfg, tr.vm, tr.ids, tr.sink, tr.loader, source)
	sub.namespace = moduleRoot
	sub.sc.Init(src)
	sub.next()
	if err := sub.translateBody(); err != nil {
		return err
	}
	if sub.failure.n > 0 {
		return sub.failure
	}
	return sub.resolveForwardReferences()
}

// moduleSubtreeRoot returns the node reached through idx's ModuleEdge
// child, under which the module's exported names live.
func (tr *translator) moduleSubtreeRoot(idx rtrie.Index) rtrie.Index {
	return tr.ids.FindUnder(idx, []rune{rtrie.ModuleEdge})
}

// emitModuleMember resolves the identifier immediately following a module
// name in a result (spec.md §4.3.6): it is looked up in the module's own
// subtree, copied into the importing scope under the same bare name, and
// then resolved exactly like any other already-defined plain identifier
// (callee binding or Identifier-cell emission).
func (tr *translator) emitModuleMember(root rtrie.Index, name string, pos Pos) error {
	srcIdx := tr.ids.FindUnder(root, []rune(name))
	if srcIdx == rtrie.NoNode {
		return tr.syntaxErrorf(pos, "%q is not exported by its module", name)
	}
	val := tr.ids.Value(srcIdx)
	if val.Kind == rtrie.Undefined {
		return tr.syntaxErrorf(pos, "%q is not defined in its module", name)
	}

	dstIdx := tr.identNode(name)
	if existing := tr.ids.Value(dstIdx); existing.Kind == rtrie.Undefined {
		tr.ids.SetValue(dstIdx, val)
	}

	frame := tr.curFrame()
	if val.IsCallable() && frame.openCall != 0 && !frame.calleeBound && !frame.hasCandidate {
		c := tr.vm.Cell(frame.openCall)
		c.Payload = val.Encode()
		tr.vm.Set(frame.openCall, c)
		frame.calleeBound = true
		return nil
	}
	tr.emit(cellvm.Identifier, val.Encode())
	return nil
}
