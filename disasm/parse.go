package disasm

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/strusov/refalgo/cellvm"
)

// Parse is Render's inverse: it reads text back into the same Op sequence,
// the other half of spec.md §8 invariant 6's round-trip.
func Parse(text string) ([]Op, error) {
	var ops []Op
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		idxStr, rest, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, fmt.Errorf("disasm: malformed line %q", line)
		}
		want := len(ops)
		got, err := strconv.Atoi(idxStr)
		if err != nil || got != want {
			return nil, fmt.Errorf("disasm: expected index %d, got %q", want, idxStr)
		}
		op, err := parseOp(rest)
		if err != nil {
			return nil, fmt.Errorf("disasm: line %d: %w", want, err)
		}
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}

func parseOp(s string) (Op, error) {
	kw, rest := cutField(s)
	switch kw {
	case "char":
		n, _ := cutField(rest)
		v, err := strconv.ParseInt(n, 10, 32)
		if err != nil {
			return Op{}, fmt.Errorf("bad char opcode %q: %w", s, err)
		}
		return Op{Tag: cellvm.Char, Rune: rune(v)}, nil
	case "number":
		v, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return Op{}, fmt.Errorf("bad number opcode %q: %w", s, err)
		}
		return Op{Tag: cellvm.Number, Int: v}, nil
	case "atom":
		v, err := strconv.Unquote(rest)
		if err != nil {
			return Op{}, fmt.Errorf("bad atom opcode %q: %w", s, err)
		}
		return Op{Tag: cellvm.Atom, Atom: v}, nil
	case "open-bracket", "close-bracket":
		t, err := parseTarget(rest, false)
		if err != nil {
			return Op{}, fmt.Errorf("bad %s opcode %q: %w", kw, s, err)
		}
		tag := cellvm.OpenBracket
		if kw == "close-bracket" {
			tag = cellvm.CloseBracket
		}
		return Op{Tag: tag, Target: t}, nil
	case "sentence":
		t, err := parseTarget(rest, true)
		if err != nil {
			return Op{}, fmt.Errorf("bad sentence opcode %q: %w", s, err)
		}
		return Op{Tag: cellvm.Sentence, Target: t}, nil
	case "equal":
		return Op{Tag: cellvm.Equal}, nil
	case "open-call", "execute", "identifier":
		calleeStr, tailStr := cutField(rest)
		isMC, ordinal, err := parseCallee(calleeStr)
		if err != nil {
			return Op{}, fmt.Errorf("bad %s opcode %q: %w", kw, s, err)
		}
		return Op{Tag: callTag(kw), IsMachineCode: isMC, Callee: ordinal, TailCall: tailStr == "tail"}, nil
	case "svar", "tvar", "evar":
		slotStr, copyStr := cutField(rest)
		slot, err := strconv.ParseUint(strings.TrimPrefix(slotStr, "#"), 10, 32)
		if err != nil {
			return Op{}, fmt.Errorf("bad %s opcode %q: %w", kw, s, err)
		}
		return Op{Tag: varTag(kw), Slot: uint32(slot), Copy: copyStr == "copy"}, nil
	case "complete":
		return Op{Tag: cellvm.Complete}, nil
	default:
		return Op{}, fmt.Errorf("unknown opcode %q", kw)
	}
}

func callTag(kw string) cellvm.Tag {
	switch kw {
	case "open-call":
		return cellvm.OpenCall
	case "execute":
		return cellvm.Execute
	default:
		return cellvm.Identifier
	}
}

func varTag(kw string) cellvm.Tag {
	switch kw {
	case "svar":
		return cellvm.SVar
	case "tvar":
		return cellvm.TVar
	default:
		return cellvm.EVar
	}
}

// cutField splits s on its first space: every multi-field opcode Render
// emits packs exactly one free-form field (a quoted atom, a "kind:ordinal"
// callee) that must be taken whole rather than further split.
func cutField(s string) (head, rest string) {
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

func parseTarget(rest string, allowNone bool) (int, error) {
	if rest == "" {
		if allowNone {
			return -1, nil
		}
		return 0, fmt.Errorf("missing target")
	}
	rest = strings.TrimPrefix(rest, "-> ")
	return strconv.Atoi(rest)
}

func parseCallee(s string) (isMachineCode bool, ordinal uint32, err error) {
	kind, n, ok := strings.Cut(s, ":")
	if !ok {
		return false, 0, fmt.Errorf("bad callee %q", s)
	}
	v, err := strconv.ParseUint(n, 10, 32)
	if err != nil {
		return false, 0, err
	}
	switch kind {
	case "machine-code":
		return true, uint32(v), nil
	case "byte-code":
		return false, uint32(v), nil
	default:
		return false, 0, fmt.Errorf("bad callee kind %q", kind)
	}
}
