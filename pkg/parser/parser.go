package parser

import (
	"errors"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/scanner"
	"lox/interpreter-go/pkg/token"
)

const maxArguments = 255

// Parser is a recursive-descent parser over a scanned token stream.
type Parser struct {
	tokens  []token.Token
	current int
	errors  ErrorList
}

// New creates a parser. tokens must end with an EOF token.
func New(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, token.Token{Kind: token.EOF, Line: line})
	}
	return &Parser{tokens: tokens}
}

// ParseProgram scans and parses source into a numbered program. Lexical and
// syntax errors are returned together as an ErrorList.
func ParseProgram(source string) (*ast.Program, error) {
	tokens, scanErr := scanner.Scan(source)
	var all ErrorList
	if scanErr != nil {
		var list scanner.ErrorList
		if !errors.As(scanErr, &list) {
			return nil, scanErr
		}
		all = append(all, fromScanErrors(list)...)
	}
	statements, err := New(tokens).Parse()
	if err != nil {
		var list ErrorList
		if !errors.As(err, &list) {
			return nil, err
		}
		all = append(all, list...)
	}
	if len(all) > 0 {
		return nil, all
	}
	return ast.NewProgram(statements), nil
}

// Parse consumes every declaration up to EOF. Parsing recovers at statement
// boundaries so that all syntax errors are reported in one pass.
func (p *Parser) Parse() ([]ast.Statement, error) {
	var statements []ast.Statement
	for !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			statements = append(statements, stmt)
		}
	}
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return statements, nil
}

// declaration parses one declaration, recording any error and resynchronising.
// It returns nil when the declaration was malformed.
func (p *Parser) declaration() ast.Statement {
	stmt, err := p.parseDeclaration()
	if err != nil {
		var perr *Error
		if errors.As(err, &perr) {
			p.errors = append(p.errors, perr)
		}
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Kind == token.Semicolon {
			return
		}
		switch p.peek().Kind {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While,
			token.Print, token.Return, token.Break, token.Continue:
			return
		}
		p.advance()
	}
}
