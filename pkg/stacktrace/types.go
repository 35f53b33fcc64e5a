// Package stacktrace normalizes runtime errors into reports with structured
// stack frames.
//
// The entry point is Normalizer.ParseError. It never fails: any problem while
// reading the stack degrades to an empty frame list.
package stacktrace

import (
	"errors"
	"fmt"

	"github.com/ccollicutt/stackreport/pkg/family"
	"github.com/ccollicutt/stackreport/pkg/parser"
)

// RawError is an error value as captured by the host runtime.
type RawError struct {
	// Message is the human-readable error message, passed through untouched.
	Message string `json:"message"`

	// Stack is the raw stack text. Nil means the runtime supplied no stack.
	Stack *string `json:"stack,omitempty"`
}

// NewRawError returns a RawError carrying both a message and a stack.
func NewRawError(message, stack string) RawError {
	return RawError{Message: message, Stack: &stack}
}

// HasStack reports whether a stack was supplied.
func (r RawError) HasStack() bool {
	return r.Stack != nil
}

// ErrorReport is the normalized form of a RawError.
type ErrorReport struct {
	Message string           `json:"message"`
	Stack   parser.FrameList `json:"stack"`
}

// ErrMatcherPanic is wrapped by a FaultError when a matcher panicked.
var ErrMatcherPanic = errors.New("matcher panicked")

// FaultError reports an internal failure of a line matcher.
type FaultError struct {
	// Family is the family whose matcher failed.
	Family family.Family

	// Line is the 1-based line number within the stack.
	Line int

	// Text is the trimmed line being matched.
	Text string

	// Err is the underlying error.
	Err error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%s matcher failed on stack line %d: %v", e.Family, e.Line, e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}
