package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/token"
)

// ErrorKind classifies runtime errors.
type ErrorKind int

const (
	TypeError ErrorKind = iota
	ArityError
	PropertyError
	UndefinedVariable
	ControlFlowError
	NativeError
)

func (k ErrorKind) String() string {
	switch k {
	case TypeError:
		return "TypeError"
	case ArityError:
		return "ArityError"
	case PropertyError:
		return "PropertyError"
	case UndefinedVariable:
		return "UndefinedVariable"
	case ControlFlowError:
		return "ControlFlowError"
	case NativeError:
		return "NativeError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// RuntimeError aborts the current program. Token locates the offending
// operator, name or call.
type RuntimeError struct {
	Kind    ErrorKind
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d]", e.Message, e.Token.Line)
}

func newRuntimeError(kind ErrorKind, tok token.Token, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Token: tok, Message: fmt.Sprintf(format, args...)}
}

// InternalError reports a binding table that does not match the environment
// chain. It is never caused by the user's program.
type InternalError struct {
	Token token.Token
	Err   error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error at line %d: %v", e.Token.Line, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
