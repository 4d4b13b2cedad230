package errors

import (
	"fmt"
	"strings"

	"github.com/cwbudde/rox/internal/lexer"
)

// StackFrame is one call-stack frame: the function being executed and
// where the call into it happened.
type StackFrame struct {
	Position     *lexer.Position
	FunctionName string
}

func (sf StackFrame) String() string {
	if sf.Position == nil {
		return sf.FunctionName
	}
	return fmt.Sprintf("%s [line: %d, column: %d]", sf.FunctionName, sf.Position.Line, sf.Position.Column)
}

// StackTrace is a call stack, ordered oldest (bottom) to newest (top).
type StackTrace []StackFrame

// String prints the trace most-recent-call-first, the order a user
// expects when reading an uncaught-error report.
func (st StackTrace) String() string {
	if len(st) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(st) - 1; i >= 0; i-- {
		sb.WriteString(st[i].String())
		if i > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Top returns the most recently entered frame, or nil if the stack is empty.
func (st StackTrace) Top() *StackFrame {
	if len(st) == 0 {
		return nil
	}
	return &st[len(st)-1]
}

// Depth returns the number of frames in the stack.
func (st StackTrace) Depth() int {
	return len(st)
}

// NewStackFrame creates a frame for the given function at the given call
// position.
func NewStackFrame(functionName string, position *lexer.Position) StackFrame {
	return StackFrame{FunctionName: functionName, Position: position}
}
