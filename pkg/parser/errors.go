package parser

import (
	"errors"
	"fmt"
	"strings"

	"lox/interpreter-go/pkg/scanner"
	"lox/interpreter-go/pkg/token"
)

// Error is a syntax error reported against a token.
type Error struct {
	Token   token.Token
	Message string
	// Incomplete marks errors caused by the input ending early.
	Incomplete bool
}

func (e *Error) Error() string {
	switch e.Token.Kind {
	case token.EOF:
		return fmt.Sprintf("[line %d] Error at end: %s", e.Token.Line, e.Message)
	case token.Illegal:
		return fmt.Sprintf("[line %d] Error: %s", e.Token.Line, e.Message)
	default:
		return fmt.Sprintf("[line %d] Error at '%s': %s", e.Token.Line, e.Token.Lexeme, e.Message)
	}
}

// ErrorList aggregates the syntax errors of one parse.
type ErrorList []*Error

func (l ErrorList) Error() string {
	parts := make([]string, 0, len(l))
	for _, err := range l {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "\n")
}

// IsIncomplete reports whether err only describes input that ended too early,
// so that more input could still make it valid.
func IsIncomplete(err error) bool {
	var list ErrorList
	if !errors.As(err, &list) || len(list) == 0 {
		return false
	}
	for _, e := range list {
		if !e.Incomplete {
			return false
		}
	}
	return true
}

func fromScanErrors(list scanner.ErrorList) ErrorList {
	out := make(ErrorList, 0, len(list))
	for _, e := range list {
		out = append(out, &Error{
			Token:      token.Token{Kind: token.Illegal, Line: e.Line, Column: e.Column},
			Message:    e.Message,
			Incomplete: e.Incomplete,
		})
	}
	return out
}
