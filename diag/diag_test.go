package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintSinkPointsAtColumn(t *testing.T) {
	var buf bytes.Buffer
	text := []byte("Go = <Prout \"Hello\">\n")
	sink := PrintSink{W: &buf, Text: text}
	sink.Emit(Message{
		Severity:  Syntax,
		Detail:    "undefined identifier",
		Source:    "hello.ref",
		Line:      1,
		Column:    7,
		LineStart: 0,
		LineEnd:   len(text),
	})
	out := buf.String()
	assert.Contains(t, out, "hello.ref:1:7: error: undefined identifier")
	assert.Contains(t, out, "^")
}

func TestErrorListHasErrors(t *testing.T) {
	var l ErrorList
	l.Add(Message{Severity: Notice, Detail: "fyi"})
	assert.False(t, l.HasErrors())
	l.Add(Message{Severity: Syntax, Detail: "bad"})
	assert.True(t, l.HasErrors())
	assert.Len(t, l.Messages, 2)
}
