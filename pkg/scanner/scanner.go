package scanner

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"lox/interpreter-go/pkg/token"
)

// Error reports a lexical problem at a source position.
type Error struct {
	Line    int
	Column  int
	Message string
	// Incomplete marks errors caused by input ending inside a string or comment.
	Incomplete bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

// ErrorList aggregates every lexical error found in one source text.
type ErrorList []*Error

func (l ErrorList) Error() string {
	parts := make([]string, 0, len(l))
	for _, err := range l {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "\n")
}

// Scanner turns source text into tokens.
type Scanner struct {
	input        string
	position     int // start of the current char
	readPosition int // next char to read
	ch           byte

	line      int
	lineStart int

	errors ErrorList
}

// New creates a scanner positioned at the start of input.
func New(input string) *Scanner {
	s := &Scanner{input: input, line: 1}
	s.readChar()
	return s
}

// Scan tokenizes the whole input. The returned slice always ends with an EOF
// token; lexical errors are collected and returned together.
func Scan(input string) ([]token.Token, error) {
	s := New(input)
	var tokens []token.Token
	for {
		tok := s.NextToken()
		if tok.Kind == token.Illegal {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	if len(s.errors) > 0 {
		return tokens, s.errors
	}
	return tokens, nil
}

// Errors returns the lexical errors seen so far.
func (s *Scanner) Errors() ErrorList {
	return s.errors
}

// NextToken returns the next token. Unrecognised input yields an Illegal token
// and records an error.
func (s *Scanner) NextToken() token.Token {
	if !s.skipTrivia() {
		return s.makeToken(token.EOF, "", s.position)
	}

	if s.atEnd() {
		return s.makeToken(token.EOF, "", s.position)
	}

	start := s.position
	ch := s.ch
	switch ch {
	case '(':
		return s.single(token.LeftParen)
	case ')':
		return s.single(token.RightParen)
	case '{':
		return s.single(token.LeftBrace)
	case '}':
		return s.single(token.RightBrace)
	case ',':
		return s.single(token.Comma)
	case '.':
		return s.single(token.Dot)
	case '-':
		return s.single(token.Minus)
	case '+':
		return s.single(token.Plus)
	case ';':
		return s.single(token.Semicolon)
	case '/':
		return s.single(token.Slash)
	case '*':
		return s.single(token.Star)
	case '?':
		return s.single(token.Question)
	case ':':
		return s.single(token.Colon)
	case '!':
		return s.either('=', token.BangEqual, token.Bang)
	case '=':
		return s.either('=', token.EqualEqual, token.Equal)
	case '<':
		return s.either('=', token.LessEqual, token.Less)
	case '>':
		return s.either('=', token.GreaterEqual, token.Greater)
	case '"':
		return s.readString()
	}

	if isDigit(ch) {
		return s.readNumber()
	}
	if isLetter(ch) {
		return s.readIdentifier()
	}

	r, width := utf8.DecodeRuneInString(s.input[start:])
	s.errorf(s.line, s.column(start), false, "Unexpected character '%s'.", displayRune(r))
	for i := 0; i < width; i++ {
		s.readChar()
	}
	return s.makeToken(token.Illegal, s.input[start:s.position], start)
}

// displayRune renders r for an error message; control characters are shown
// by code point.
func displayRune(r rune) string {
	if unicode.IsPrint(r) {
		return string(r)
	}
	return fmt.Sprintf("%U", r)
}

func (s *Scanner) single(kind token.Kind) token.Token {
	start := s.position
	s.readChar()
	return s.makeToken(kind, s.input[start:s.position], start)
}

func (s *Scanner) either(next byte, matched, plain token.Kind) token.Token {
	start := s.position
	if s.peekChar() == next {
		s.readChar()
		s.readChar()
		return s.makeToken(matched, s.input[start:s.position], start)
	}
	s.readChar()
	return s.makeToken(plain, s.input[start:s.position], start)
}

// skipTrivia consumes whitespace and comments. It returns false when input
// ended inside an unterminated block comment.
func (s *Scanner) skipTrivia() bool {
	for {
		switch {
		case s.ch == ' ' || s.ch == '\t' || s.ch == '\r' || s.ch == '\n':
			s.readChar()
		case s.ch == '/' && s.peekChar() == '/':
			for s.ch != '\n' && !s.atEnd() {
				s.readChar()
			}
		case s.ch == '/' && s.peekChar() == '*':
			line := s.line
			col := s.column(s.position)
			s.readChar()
			s.readChar()
			for !(s.ch == '*' && s.peekChar() == '/') {
				if s.atEnd() {
					s.errorf(line, col, true, "Unterminated block comment.")
					return false
				}
				s.readChar()
			}
			s.readChar()
			s.readChar()
		default:
			return true
		}
	}
}

func (s *Scanner) readString() token.Token {
	start := s.position
	line := s.line
	col := s.column(start)
	s.readChar()
	for s.ch != '"' {
		if s.atEnd() {
			s.errorf(line, col, true, "Unterminated string.")
			return s.makeToken(token.Illegal, s.input[start:s.position], start)
		}
		s.readChar()
	}
	s.readChar()
	lexeme := s.input[start:s.position]
	return token.Token{Kind: token.String, Lexeme: lexeme, Literal: lexeme[1 : len(lexeme)-1], Line: line, Column: col}
}

func (s *Scanner) readNumber() token.Token {
	start := s.position
	for isDigit(s.ch) {
		s.readChar()
	}
	if s.ch == '.' && isDigit(s.peekChar()) {
		s.readChar()
		for isDigit(s.ch) {
			s.readChar()
		}
	}
	lexeme := s.input[start:s.position]
	tok := s.makeToken(token.Number, lexeme, start)
	value, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		s.errorf(tok.Line, tok.Column, false, "Invalid number literal %s.", lexeme)
		value = 0
	}
	tok.Literal = value
	return tok
}

func (s *Scanner) readIdentifier() token.Token {
	start := s.position
	for isLetter(s.ch) || isDigit(s.ch) {
		s.readChar()
	}
	lexeme := s.input[start:s.position]
	return s.makeToken(token.LookupIdent(lexeme), lexeme, start)
}

func (s *Scanner) makeToken(kind token.Kind, lexeme string, start int) token.Token {
	return token.Token{Kind: kind, Lexeme: lexeme, Line: s.line, Column: s.column(start)}
}

func (s *Scanner) column(offset int) int {
	return offset - s.lineStart + 1
}

func (s *Scanner) errorf(line, column int, incomplete bool, format string, args ...any) {
	s.errors = append(s.errors, &Error{
		Line:       line,
		Column:     column,
		Message:    fmt.Sprintf(format, args...),
		Incomplete: incomplete,
	})
}

// atEnd reports whether the whole input has been consumed. A NUL byte in the
// source is an ordinary character.
func (s *Scanner) atEnd() bool {
	return s.position >= len(s.input)
}

func (s *Scanner) peekChar() byte {
	if s.readPosition >= len(s.input) {
		return 0
	}
	return s.input[s.readPosition]
}

func (s *Scanner) readChar() {
	if s.ch == '\n' {
		s.line++
		s.lineStart = s.readPosition
	}
	if s.readPosition >= len(s.input) {
		s.ch = 0
	} else {
		s.ch = s.input[s.readPosition]
	}
	s.position = s.readPosition
	s.readPosition++
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}
