package disasm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/strusov/refalgo/cellvm"
)

// Render formats ops as one line per opcode, the canonical textual form
// Parse reads back (see spec.md §8 invariant 6).
func Render(ops []Op) string {
	var sb strings.Builder
	for i, op := range ops {
		fmt.Fprintf(&sb, "%d: %s\n", i, renderOp(op))
	}
	return sb.String()
}

func renderOp(op Op) string {
	switch op.Tag {
	case cellvm.Char:
		return fmt.Sprintf("char %d %s", op.Rune, strconv.QuoteRune(op.Rune))
	case cellvm.Number:
		return fmt.Sprintf("number %d", op.Int)
	case cellvm.Atom:
		return "atom " + strconv.Quote(op.Atom)
	case cellvm.OpenBracket:
		return fmt.Sprintf("open-bracket -> %d", op.Target)
	case cellvm.CloseBracket:
		return fmt.Sprintf("close-bracket -> %d", op.Target)
	case cellvm.Sentence:
		if op.Target < 0 {
			return "sentence"
		}
		return fmt.Sprintf("sentence -> %d", op.Target)
	case cellvm.Equal:
		return "equal"
	case cellvm.OpenCall:
		return "open-call " + calleeText(op)
	case cellvm.Execute:
		s := "execute " + calleeText(op)
		if op.TailCall {
			s += " tail"
		}
		return s
	case cellvm.Identifier:
		return "identifier " + calleeText(op)
	case cellvm.SVar:
		return varText("svar", op)
	case cellvm.TVar:
		return varText("tvar", op)
	case cellvm.EVar:
		return varText("evar", op)
	case cellvm.Complete:
		return "complete"
	default:
		return op.Tag.String()
	}
}

func calleeText(op Op) string {
	if op.IsMachineCode {
		return fmt.Sprintf("machine-code:%d", op.Callee)
	}
	return fmt.Sprintf("byte-code:%d", op.Callee)
}

func varText(keyword string, op Op) string {
	s := fmt.Sprintf("%s #%d", keyword, op.Slot)
	if op.Copy {
		s += " copy"
	}
	return s
}
