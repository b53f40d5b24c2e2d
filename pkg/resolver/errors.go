package resolver

import (
	"fmt"
	"strings"

	"lox/interpreter-go/pkg/token"
)

// StaticError is a resolution error found before execution.
type StaticError struct {
	Token   token.Token
	Message string
}

func (e *StaticError) Error() string {
	if e.Token.Kind == token.EOF {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Token.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Token.Line, e.Token.Lexeme, e.Message)
}

// ErrorList wraps the static errors of one program as a single error value.
type ErrorList []*StaticError

func (l ErrorList) Error() string {
	parts := make([]string, 0, len(l))
	for _, err := range l {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "\n")
}
