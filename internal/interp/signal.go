package interp

import (
	"fmt"

	"github.com/cwbudde/rox/internal/lexer"
)

// RuntimeError is a runtime failure: undefined variable, type error,
// index error, arity error, division by zero, or a user `throw`. When
// Thrown is true, Value carries the thrown payload (its string form is
// what a surrounding catch binds).
type RuntimeError struct {
	Message string
	Pos     lexer.Position
	Thrown  bool
	Value   Value
}

func (e *RuntimeError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s\n[line %d]", e.Message, e.Pos.Line)
	}
	return e.Message
}

func newRuntimeError(pos lexer.Position, format string, args ...any) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Pos: pos}
}

// signalKind distinguishes the ways evaluating a statement can end.
// Per spec.md §9's design note, this is the Go rendering of the
// recommended FlowResult sum type: Ok is the zero value (nil *signal),
// and Return/Break/Continue/Err are its other variants.
type signalKind int

const (
	sigReturn signalKind = iota + 1
	sigBreak
	sigContinue
	sigError
)

// signal is threaded out of statement execution instead of being thrown
// as a native Go panic/error: a nil *signal means normal completion.
// This mirrors the teacher's own `isError(Value) bool` sentinel-value
// propagation idiom, generalized to the four control-flow variants the
// spec calls for.
type signal struct {
	kind  signalKind
	value Value         // populated for sigReturn
	err   *RuntimeError // populated for sigError
}

func returnSignal(v Value) *signal { return &signal{kind: sigReturn, value: v} }
func breakSignal() *signal         { return &signal{kind: sigBreak} }
func continueSignal() *signal      { return &signal{kind: sigContinue} }
func errorSignal(err *RuntimeError) *signal {
	return &signal{kind: sigError, err: err}
}

// isControlFlow reports whether the signal is break/continue/return
// rather than an error — used by try/catch to decide whether to
// re-propagate instead of binding a catch variable (spec.md §4.4).
func (s *signal) isControlFlow() bool {
	return s != nil && s.kind != sigError
}
