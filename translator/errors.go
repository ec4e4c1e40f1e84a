package translator

import (
	"fmt"

	"github.com/strusov/refalgo/diag"
)

// fail is the sentinel error Translate returns once it has reported at least
// one diag.Syntax or diag.Critical message; the messages themselves, not
// this value, carry the detail.
type fail struct{ n int }

func (f *fail) Error() string {
	if f.n == 1 {
		return "translation failed: 1 error reported"
	}
	return "translation failed: errors reported"
}

func (tr *translator) syntaxErrorf(pos Pos, format string, args ...any) error {
	tr.emitDiag(diag.Syntax, pos, format, args...)
	return tr.failure
}

func (tr *translator) criticalErrorf(pos Pos, format string, args ...any) error {
	tr.emitDiag(diag.Critical, pos, format, args...)
	return tr.failure
}

func (tr *translator) warnf(pos Pos, format string, args ...any) {
	tr.emitDiag(diag.Warning, pos, format, args...)
}

func (tr *translator) noticef(pos Pos, format string, args ...any) {
	tr.emitDiag(diag.Notice, pos, format, args...)
}

func (tr *translator) emitDiag(sev diag.Severity, pos Pos, format string, args ...any) {
	m := diag.Message{
		Severity:  sev,
		Detail:    fmt.Sprintf(format, args...),
		Source:    tr.source,
		Line:      pos.Line,
		Column:    pos.Column,
		LineStart: pos.LineStart,
	}
	tr.sink.Emit(m)
	if sev == diag.Syntax || sev == diag.Critical {
		tr.failure.n++
	}
}
