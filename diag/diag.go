// Package diag implements the translator and interpreter's diagnostics
// sink: a uniform way to emit structured messages with source coordinates,
// so the core never concatenates strings for the user.
package diag

import "fmt"

// Severity classifies a Message.
type Severity uint8

//nolint:revive
const (
	Critical Severity = iota // allocation failure, missing source file
	Syntax                   // translation rejects the source at this token
	Warning                  // recoverable
	Notice                   // performance hint
)

func (s Severity) String() string {
	switch s {
	case Critical:
		return "critical error"
	case Syntax:
		return "error"
	case Warning:
		return "warning"
	case Notice:
		return "notice"
	default:
		return fmt.Sprintf("unknown severity (%d)", uint8(s))
	}
}

// Message is one diagnostic: a severity, a human-readable detail, and the
// source coordinates it refers to, mirroring the fields a REFAL toolchain
// needs to point precisely at offending text.
type Message struct {
	Severity  Severity
	Detail    string
	Source    string // path of the source file, or "" for stdin
	Line      int    // 1-based
	Column    int    // 1-based
	LineStart int     // byte offset of the start of Line within Source
	LineEnd   int     // byte offset of the end of Line within Source (exclusive)
}

func (m Message) String() string {
	if m.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", m.Source, m.Line, m.Column, m.Severity, m.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", m.Source, m.Severity, m.Detail)
}

// Sink consumes diagnostic messages, formatting and routing them however the
// embedding application wants. The core never decides how a message is
// displayed; it only ever calls Emit.
type Sink interface {
	Emit(Message)
}

// Func adapts a plain function to the Sink interface.
type Func func(Message)

// Emit implements Sink.
func (f Func) Emit(m Message) { f(m) }

// Discard is a Sink that drops every message.
var Discard Sink = Func(func(Message) {})
