// Package rmachine is the bytecode interpreter: it walks the sentence chain
// a translator.Translate call compiled, matches the active view field
// against each sentence's pattern in turn, and substitutes the matching
// sentence's result back into the view field, dispatching any active
// expressions the result itself contains until nothing remains to reduce.
package rmachine

import (
	"context"

	"github.com/strusov/refalgo/builtin"
	"github.com/strusov/refalgo/cellvm"
	"github.com/strusov/refalgo/config"
	"github.com/strusov/refalgo/rtrie"
)

// cancelCheckEvery bounds how often Run consults ctx, mirroring the
// teacher's lang/machine.Thread step counter rather than checking the
// context on every single sentence attempt.
const cancelCheckEvery = 1024

// Run matches the view field (prev, next) against the sentence chain
// starting at sentence, substitutes the result of whichever sentence
// matches, and fully reduces it: any active expression the result contains
// is dispatched in turn, recursing into Run for byte-code callees or into
// tab for built-ins, until (prev, next) holds no further active
// expressions. A callee in tail position (translator.go's
// closeSentenceResult) is trampolined through the for loop below instead of
// recursing, so spec.md's tail-recursive loops run in constant Go call-stack
// depth.
func Run(ctx context.Context, cfg config.Interpreter, vm *cellvm.Arena, ids *rtrie.Trie, tab *builtin.Table, sentence, prev, next cellvm.Index) (builtin.Verdict, error) {
	steps := 0
	entry := sentence
	tailCalled := false
Outer:
	for {
		steps++
		if steps%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return builtin.NoMatch, err
			}
		}

		v, tailExec, err := matchOnce(vm, entry, prev, next)
		if err != nil {
			return builtin.NoMatch, err
		}
		if v != builtin.Matched {
			return v, nil
		}

		for {
			openCall, execIdx, found := findNextCall(vm, prev, next)
			if !found {
				if tailCalled {
					removeMarkers(vm, prev, next)
				}
				return builtin.Matched, nil
			}

			v, calleeEntry, isMachine, err := resolveCallee(vm, ids, tab, openCall, execIdx)
			if err != nil {
				return builtin.NoMatch, err
			}
			if isMachine {
				if v != builtin.Matched {
					return v, nil
				}
				removeMarkers(vm, openCall, execIdx)
				continue
			}

			if execIdx == tailExec {
				if tailCalled {
					removeMarkers(vm, prev, next)
				}
				tailCalled = true
				entry, prev, next = calleeEntry, openCall, execIdx
				continue Outer
			}

			v, err = Run(ctx, cfg, vm, ids, tab, calleeEntry, openCall, execIdx)
			if err != nil || v != builtin.Matched {
				return v, err
			}
			removeMarkers(vm, openCall, execIdx)
		}
	}
}

// resolveCallee dispatches a ready call's machine-code target immediately
// (built-ins never recurse, so there is nothing to trampoline) and reports
// byte-code targets back to Run for it to decide whether to trampoline or
// recurse. isMachine tells the caller which of (verdict, calleeEntry) is
// meaningful: a machine-code dispatch has already run and verdict is final;
// a byte-code target is merely resolved, not yet invoked.
func resolveCallee(vm *cellvm.Arena, ids *rtrie.Trie, tab *builtin.Table, openCall, execIdx cellvm.Index) (v builtin.Verdict, calleeEntry cellvm.Index, isMachine bool, err error) {
	payload := vm.Cell(execIdx).Payload
	ordinal, isMachine := rtrie.DecodeCallee(payload)
	if !isMachine {
		return builtin.Matched, cellvm.Index(ordinal), false, nil
	}
	if tab.Name(ordinal) == builtin.MuName {
		return resolveMu(vm, ids, tab, openCall, execIdx)
	}
	v, err = tab.Call(ordinal, vm, openCall, execIdx)
	return v, 0, true, err
}

// resolveMu implements spec.md's Mu: its first argument cell names, by
// value, the function to call with the rest of the argument as that
// function's own argument. It is handled here rather than in builtin.Table
// because it needs ids, which Table deliberately has no access to (see
// builtin.MuName's doc comment). A byte-code target is reported back to Run
// exactly like an ordinary call's callee, so it gets the same
// trampoline-or-recurse treatment; a machine-code target is dispatched
// immediately since built-ins never recurse.
func resolveMu(vm *cellvm.Arena, ids *rtrie.Trie, tab *builtin.Table, openCall, execIdx cellvm.Index) (v builtin.Verdict, calleeEntry cellvm.Index, isMachine bool, err error) {
	first := vm.Next(openCall)
	if first == execIdx {
		return builtin.NoMatch, 0, true, nil
	}
	c := vm.Cell(first)

	var payload uint64
	switch c.Tag {
	case cellvm.Identifier:
		// Already resolved at translate time (a plain reference to a known
		// function passed through as data), the common case.
		payload = c.Payload
	case cellvm.Atom:
		// A symbol assembled at runtime (e.g. via Symb); look its name up
		// fresh, the only case that actually needs ids.
		val := ids.GetValue([]rune(vm.AtomString(first)))
		if !val.IsCallable() {
			return builtin.NoMatch, 0, true, nil
		}
		payload = val.Encode()
	default:
		return builtin.NoMatch, 0, true, nil
	}

	ordinal, targetIsMachine := rtrie.DecodeCallee(payload)
	vm.FreeEvar(openCall, vm.Next(first))
	if !targetIsMachine {
		return builtin.Matched, cellvm.Index(ordinal), false, nil
	}
	v, err = tab.Call(ordinal, vm, openCall, execIdx)
	return v, 0, true, err
}

// findNextCall scans the view field (prev, next) forward for the first
// ready active expression: the Execute that closes the innermost
// still-open OpenCall. REFAL's call brackets always nest correctly, so a
// simple stack of OpenCall indices popped by the first Execute reached is
// enough; no OpenCall<->Execute cross-link is needed.
func findNextCall(vm *cellvm.Arena, prev, next cellvm.Index) (openCall, execIdx cellvm.Index, found bool) {
	var stack []cellvm.Index
	for i := vm.Next(prev); i != next; i = vm.Next(i) {
		switch vm.Cell(i).Tag {
		case cellvm.OpenCall:
			stack = append(stack, i)
		case cellvm.Execute:
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			return open, i, true
		}
	}
	return 0, 0, false
}

// removeMarkers splices a resolved call's two boundary cells back out of
// the view field once its (already substituted) content has taken their
// place, the way builtin functions never do themselves (they only rewrite
// the content strictly between prev and next, see builtin/io.go).
func removeMarkers(vm *cellvm.Arena, openCall, execIdx cellvm.Index) {
	unlinkOne(vm, execIdx)
	unlinkOne(vm, openCall)
}

func unlinkOne(vm *cellvm.Arena, idx cellvm.Index) {
	c := vm.Cell(idx)
	p := vm.Cell(c.Prev)
	p.Next = c.Next
	vm.Set(c.Prev, p)
	n := vm.Cell(c.Next)
	n.Prev = c.Prev
	vm.Set(c.Next, n)
}

// matchOnce tries entry's sentence chain in order against (prev, next),
// substituting the first match's result in place. tailExec is the index of
// the newly substituted Execute cell when the matched sentence's result
// ends in a tail call (0 otherwise), for Run to trampoline.
func matchOnce(vm *cellvm.Arena, entry, prev, next cellvm.Index) (builtin.Verdict, cellvm.Index, error) {
	cur := entry
	for {
		hasWrapper := vm.Cell(cur).Tag == cellvm.Sentence
		patternStart := cur
		fallback := cellvm.Index(0)
		if hasWrapper {
			patternStart = vm.Next(cur)
			fallback = vm.Cell(cur).Link()
		}

		equalIdx := patternStart
		for vm.Cell(equalIdx).Tag != cellvm.Equal {
			equalIdx = vm.Next(equalIdx)
		}

		resultStart := vm.Next(equalIdx)
		var resultCells []cellvm.Index
		for j := resultStart; ; j = vm.Next(j) {
			t := vm.Cell(j).Tag
			if t == cellvm.Complete || t == cellvm.Sentence {
				break
			}
			resultCells = append(resultCells, j)
		}

		m := newMatcher(vm)
		if m.match(patternStart, equalIdx, prev, next) {
			first, tailExec := substitute(vm, resultCells, m.bindings)
			vm.FreeEvar(prev, next)
			if first != 0 {
				vm.InsertNext(prev, first)
			}
			return builtin.Matched, tailExec, nil
		}

		if fallback == 0 {
			return builtin.NoMatch, 0, nil
		}
		cur = fallback
	}
}
