package builtin

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/strusov/refalgo/cellvm"
)

// card reads one line of text and substitutes it for the (empty) view
// field: <Card> == s.CHAR* 0?. At end of input it substitutes a single
// Number(0) instead, matching library.h's "no more lines" convention.
func (t *Table) card(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	line, err := t.readLine(0)
	return t.substituteLine(vm, prev, next, line, err)
}

// get is Card reading from an already-opened file descriptor instead of
// stdin: <Get s.FileNo> == s.CHAR* 0?.
func (t *Table) get(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	cells := cellsInRange(vm, prev, next)
	if len(cells) != 1 || cells[0].Tag != cellvm.Number {
		return NoMatch, nil
	}
	fd := int(cells[0].Int())
	line, err := t.readLine(fd)
	return t.substituteLine(vm, prev, next, line, err)
}

func (t *Table) readLine(fd int) (string, error) {
	if fd == 0 {
		if t.stdin == nil {
			return "", io.EOF
		}
		if t.stdinBuf == nil {
			t.stdinBuf = bufio.NewReader(t.stdin)
		}
		return readOneLine(t.stdinBuf)
	}
	if fd < 1 || fd > maxFiles || t.files[fd] == nil || t.files[fd].r == nil {
		return "", fmt.Errorf("builtin: Get: file descriptor %d is not open for reading", fd)
	}
	h := t.files[fd]
	if h.reader == nil {
		h.reader = bufio.NewReader(h.r)
	}
	return readOneLine(h.reader)
}

func readOneLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// substituteLine frees the view field and replaces it with line's characters,
// or a single Number(0) if err is io.EOF with no partial line.
func (t *Table) substituteLine(vm *cellvm.Arena, prev, next cellvm.Index, line string, err error) (Verdict, error) {
	vm.FreeEvar(prev, next)
	if err == io.EOF && line == "" {
		idx := vm.AllocNumber(0)
		vm.InsertNext(prev, idx)
		return Matched, nil
	}
	if err != nil && err != io.EOF {
		return NoMatch, err
	}
	runes := []rune(line)
	if len(runes) > 0 {
		first := vm.AllocChar(runes[0])
		for _, r := range runes[1:] {
			vm.AllocChar(r)
		}
		vm.InsertNext(prev, first)
	}
	return Matched, nil
}

// print writes the view field to stdout, leaving it untouched: <Print
// e.Expr> == e.Expr.
func (t *Table) print(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	return t.writeExpr(vm, prev, next, t.stdout, true)
}

// prout is print, but consumes the expression: <Prout e.Expr> == [].
func (t *Table) prout(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	return t.writeExpr(vm, prev, next, t.stdout, false)
}

func (t *Table) writeExpr(vm *cellvm.Arena, prev, next cellvm.Index, w io.Writer, keep bool) (Verdict, error) {
	var sb strings.Builder
	for i := vm.Next(prev); i != next; i = vm.Next(i) {
		c := vm.Cell(i)
		switch c.Tag {
		case cellvm.Char:
			sb.WriteRune(c.Rune())
		case cellvm.Number:
			fmt.Fprintf(&sb, "%d", c.Int())
		case cellvm.Atom:
			sb.WriteString(vm.AtomString(i))
		default:
			sb.WriteRune('?')
		}
	}
	sb.WriteByte('\n')
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return NoMatch, err
	}
	if !keep {
		vm.FreeEvar(prev, next)
	}
	return Matched, nil
}

// open parses <Open s.Mode s.FileNo e.FileName> == [] and binds a legacy
// file descriptor (1..40) to the named file.
func (t *Table) open(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	first := vm.Next(prev)
	if first == next {
		return NoMatch, nil
	}
	mode := vm.Cell(first)
	if mode.Tag != cellvm.Char {
		return NoMatch, nil
	}
	second := vm.Next(first)
	if second == next {
		return NoMatch, nil
	}
	fdCell := vm.Cell(second)
	if fdCell.Tag != cellvm.Number {
		return NoMatch, nil
	}
	fd := int(fdCell.Int())
	if fd < 1 || fd > maxFiles {
		return NoMatch, fmt.Errorf("builtin: Open: file descriptor %d out of range 1..%d", fd, maxFiles)
	}
	name, ok := textOf(vm, second, next)
	if !ok {
		return NoMatch, nil
	}

	var f *os.File
	var err error
	var h fileHandle
	switch mode.Rune() {
	case 'r':
		f, err = os.Open(name)
		h.r = f
	case 'w':
		f, err = os.Create(name)
		h.w = f
	case 'a':
		f, err = os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		h.w = f
	default:
		return NoMatch, nil
	}
	if err != nil {
		return NoMatch, err
	}
	t.files[fd] = &h
	vm.FreeEvar(prev, next)
	return Matched, nil
}

// close releases the file descriptor opened by Open: <Close s.FileNo> == [].
func (t *Table) close(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	cells := cellsInRange(vm, prev, next)
	if len(cells) != 1 || cells[0].Tag != cellvm.Number {
		return NoMatch, nil
	}
	fd := int(cells[0].Int())
	if fd < 1 || fd > maxFiles || t.files[fd] == nil {
		return NoMatch, fmt.Errorf("builtin: Close: file descriptor %d is not open", fd)
	}
	h := t.files[fd]
	t.files[fd] = nil
	var err error
	if h.r != nil {
		err = h.r.Close()
	}
	if h.w != nil {
		err = h.w.Close()
	}
	if err != nil {
		return NoMatch, err
	}
	vm.FreeEvar(prev, next)
	return Matched, nil
}

// put writes s.FileNo's remainder e.Expr to the named file, keeping it:
// <Put s.FileNo e.Expr> == s.FileNo e.Expr.
func (t *Table) put(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	return t.writeToFile(vm, prev, next, true)
}

// putout is put, but consumes e.Expr: <Putout s.FileNo e.Expr> == s.FileNo.
func (t *Table) putout(vm *cellvm.Arena, prev, next cellvm.Index) (Verdict, error) {
	return t.writeToFile(vm, prev, next, false)
}

func (t *Table) writeToFile(vm *cellvm.Arena, prev, next cellvm.Index, keep bool) (Verdict, error) {
	first := vm.Next(prev)
	if first == next {
		return NoMatch, nil
	}
	fdCell := vm.Cell(first)
	if fdCell.Tag != cellvm.Number {
		return NoMatch, nil
	}
	fd := int(fdCell.Int())
	if fd < 1 || fd > maxFiles || t.files[fd] == nil || t.files[fd].w == nil {
		return NoMatch, fmt.Errorf("builtin: Put: file descriptor %d is not open for writing", fd)
	}
	if _, err := t.writeExpr(vm, first, next, t.files[fd].w, keep); err != nil {
		return NoMatch, err
	}
	return Matched, nil
}
