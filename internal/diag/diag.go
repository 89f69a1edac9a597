// Package diag implements the compiler's diagnostic taxonomy: the
// accumulated, per-line errors and warnings produced while building the
// syntax tree, and the fatal internal errors raised by the IC generator.
package diag

import (
	"fmt"
	"strings"

	"github.com/kr/text"
	"github.com/pkg/errors"
)

// Severity distinguishes diagnostics that abort the pipeline from ones
// that don't.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kind names the taxonomy entry a Diagnostic belongs to.
type Kind string

const (
	KindLexical       Kind = "LexicalError"
	KindSyntaxBuilder Kind = "SyntaxBuilderError"
	KindSyntaxWarning Kind = "SyntaxBuilderWarning"
	KindICode         Kind = "ICodeError"
)

// Diagnostic is a single user-visible compiler message, always anchored
// to a source line.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Line     int
	Message  string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("Line %d: %s", d.Line, d.Message)
}

func newf(kind Kind, sev Severity, line int, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Severity: sev, Line: line, Message: fmt.Sprintf(format, args...)}
}

// Redeclaration reports a name already bound in the relevant scope.
func Redeclaration(line int, name string) Diagnostic {
	return newf(KindSyntaxBuilder, SeverityError, line, "%q redeclared in this scope", name)
}

// Undeclared reports use of a name with no visible binding.
func Undeclared(line int, name string) Diagnostic {
	return newf(KindSyntaxBuilder, SeverityError, line, "%q is not declared", name)
}

// TypeMismatch reports an illegal implicit coercion.
func TypeMismatch(line int, from, to string) Diagnostic {
	return newf(KindSyntaxBuilder, SeverityError, line, "cannot coerce %s to %s", from, to)
}

// ArityMismatch reports a call whose argument count disagrees with the
// callee's declared parameter count.
func ArityMismatch(line int, name string, want, got int) Diagnostic {
	return newf(KindSyntaxBuilder, SeverityError, line, "%q expects %d argument(s), got %d", name, want, got)
}

// MalformedExpression reports a condition or expression shape §4.2 does
// not define a lowering for.
func MalformedExpression(line int, detail string) Diagnostic {
	return newf(KindSyntaxBuilder, SeverityError, line, "malformed expression: %s", detail)
}

// MissingBody reports a function whose AST root never got attached.
func MissingBody(line int, name string) Diagnostic {
	return newf(KindSyntaxBuilder, SeverityError, line, "function %q has no body", name)
}

// NumericOverflow warns that a literal was saturated to fit Int.
func NumericOverflow(line int, lexeme string) Diagnostic {
	return newf(KindSyntaxWarning, SeverityWarning, line, "numeric literal %q overflows, saturated to int", lexeme)
}

// VoidReturnValue warns that `return;` was used in a non-void function.
func VoidReturnValue(line int, fn string) Diagnostic {
	return newf(KindSyntaxWarning, SeverityWarning, line, "bare return in non-void function %q", fn)
}

// Bag accumulates diagnostics across a single SyntaxBuilder run, the way
// §7 describes: "SyntaxBuilder accumulates errors and warnings with
// their source line, continuing to consume parse events where recovery
// is locally possible."
type Bag struct {
	items []Diagnostic
}

func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

func (b *Bag) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range b.items {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

func (b *Bag) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range b.items {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

func (b *Bag) HasErrors() bool { return len(b.Errors()) > 0 }

func (b *Bag) Empty() bool { return len(b.items) == 0 }

func (b *Bag) All() []Diagnostic { return b.items }

// Summary renders the "Line <n>: <message>" form from §7, one per line,
// followed by an error/warning count line. Every line is indented by
// two spaces with kr/text so the whole block reads as one paragraph
// when spliced into a larger report.
func (b *Bag) Summary() string {
	var body strings.Builder
	for _, d := range b.items {
		body.WriteString(d.Error())
		body.WriteString("\n")
	}
	fmt.Fprintf(&body, "%d error(s), %d warning(s)\n", len(b.Errors()), len(b.Warnings()))
	return text.Indent(body.String(), "  ")
}

// ICodeError is a fatal internal-compiler-error: an invariant failure
// during IC generation (spec §7: "always fatal... no recovery"). It
// wraps its cause with github.com/pkg/errors so a stack trace survives
// to the CLI, since an ICodeError signals a bug in this compiler rather
// than a mistake in the user's program.
type ICodeError struct {
	cause error
}

func NewICodeError(format string, args ...any) *ICodeError {
	return &ICodeError{cause: errors.Errorf(format, args...)}
}

func WrapICodeError(err error, format string, args ...any) *ICodeError {
	return &ICodeError{cause: errors.Wrapf(err, format, args...)}
}

func (e *ICodeError) Error() string { return "ICodeError: " + e.cause.Error() }
func (e *ICodeError) Unwrap() error { return e.cause }

// StackTrace exposes the pkg/errors-captured frames for crash reports.
func (e *ICodeError) StackTrace() errors.StackTrace {
	type stackTracer interface{ StackTrace() errors.StackTrace }
	if st, ok := e.cause.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}
