package lower

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"modernc.org/token"

	"github.com/rubiojr/usinglower/ast"
)

// Kind classifies a lowering diagnostic.
type Kind int

const (
	// KindUnsupported marks a construct the selected disposal protocol
	// cannot express.
	KindUnsupported Kind = iota
	// KindInvalid marks user code that misuses resource declarations.
	KindInvalid
	// KindInternal marks a broken invariant in the lowering itself.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindUnsupported:
		return "unsupported"
	case KindInvalid:
		return "invalid"
	case KindInternal:
		return "internal"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a positioned lowering diagnostic.
type Error struct {
	Kind Kind
	Pos  token.Position
	Msg  string
}

func (e *Error) Error() string {
	if e.Pos.Line == 0 {
		return e.Msg
	}
	if e.Pos.Filename == "" {
		return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Msg)
}

func errorAt(kind Kind, n ast.Node, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: ast.SpanOf(n).Start, Msg: fmt.Sprintf(format, args...)}
}

// Errors returns the individual diagnostics combined in err, in the order
// they were reported. Errors that are not diagnostics are skipped.
func Errors(err error) []*Error {
	var out []*Error
	for _, e := range multierr.Errors(err) {
		var le *Error
		if errors.As(e, &le) {
			out = append(out, le)
		}
	}
	return out
}

// HasKind reports whether err contains a diagnostic of the given kind.
func HasKind(err error, kind Kind) bool {
	for _, e := range Errors(err) {
		if e.Kind == kind {
			return true
		}
	}
	return false
}
