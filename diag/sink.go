package diag

import (
	"fmt"
	"io"
	"strings"
)

// PrintSink formats each Message to an io.Writer, pointing a caret at the
// offending column when line text is available, in the style go/scanner
// renders "file:line:col: message" errors (adapted here, not reused,
// because diag's severity set and source-coordinate fields don't match
// go/scanner.Error's).
type PrintSink struct {
	W    io.Writer
	Text []byte // full source text, used to render the offending line; optional
}

// Emit implements Sink.
func (p PrintSink) Emit(m Message) {
	fmt.Fprintln(p.W, m.String())
	if p.Text == nil || m.LineEnd <= m.LineStart || m.LineStart < 0 || m.LineEnd > len(p.Text) {
		return
	}
	line := string(p.Text[m.LineStart:m.LineEnd])
	line = strings.TrimRight(line, "\r\n")
	fmt.Fprintln(p.W, line)
	if m.Column > 0 && m.Column <= len(line)+1 {
		fmt.Fprintln(p.W, strings.Repeat(" ", m.Column-1)+"^")
	}
}

// ErrorList aggregates messages, as go/scanner.ErrorList aggregates syntax
// errors, for a caller that wants to accumulate diagnostics and report them
// in a batch rather than one at a time.
type ErrorList struct {
	Messages []Message
}

// Add appends m to the list.
func (l *ErrorList) Add(m Message) { l.Messages = append(l.Messages, m) }

// Emit implements Sink.
func (l *ErrorList) Emit(m Message) { l.Add(m) }

// HasErrors reports whether the list contains a Critical or Syntax message.
func (l *ErrorList) HasErrors() bool {
	for _, m := range l.Messages {
		if m.Severity == Critical || m.Severity == Syntax {
			return true
		}
	}
	return false
}

func (l *ErrorList) Error() string {
	var sb strings.Builder
	for i, m := range l.Messages {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(m.String())
	}
	return sb.String()
}

// PrintTo writes every message in the list to w, one per line.
func (l *ErrorList) PrintTo(w io.Writer) {
	for _, m := range l.Messages {
		fmt.Fprintln(w, m.String())
	}
}
