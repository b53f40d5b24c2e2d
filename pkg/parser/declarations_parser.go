package parser

import (
	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/token"
)

func (p *Parser) parseDeclaration() (ast.Statement, error) {
	switch {
	case p.match(token.Class):
		return p.parseClassDeclaration()
	case p.check(token.Fun) && p.checkNext(token.Identifier):
		p.advance()
		return p.parseFunctionDeclaration("function")
	case p.match(token.Var):
		return p.parseVarDeclaration()
	default:
		return p.parseStatement()
	}
}

func (p *Parser) parseClassDeclaration() (ast.Statement, error) {
	name, err := p.consume(token.Identifier, "Expect class name.")
	if err != nil {
		return nil, err
	}

	var superclass *ast.Variable
	if p.match(token.Less) {
		superName, err := p.consume(token.Identifier, "Expect superclass name.")
		if err != nil {
			return nil, err
		}
		superclass = ast.NewVariable(superName)
	}

	if _, err := p.consume(token.LeftBrace, "Expect '{' before class body."); err != nil {
		return nil, err
	}
	var methods []*ast.FunctionDeclaration
	for !p.check(token.RightBrace) && !p.isAtEnd() {
		method, err := p.parseFunctionDeclaration("method")
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}
	if _, err := p.consume(token.RightBrace, "Expect '}' after class body."); err != nil {
		return nil, err
	}
	return ast.NewClassDeclaration(name, superclass, methods), nil
}

func (p *Parser) parseFunctionDeclaration(kind string) (*ast.FunctionDeclaration, error) {
	name, err := p.consume(token.Identifier, "Expect "+kind+" name.")
	if err != nil {
		return nil, err
	}
	params, body, err := p.parseFunctionBody(kind)
	if err != nil {
		return nil, err
	}
	return ast.NewFunctionDeclaration(name, params, body), nil
}

// parseFunctionBody parses `( params ) { body }` for declarations, methods
// and function expressions.
func (p *Parser) parseFunctionBody(kind string) ([]token.Token, []ast.Statement, error) {
	if _, err := p.consume(token.LeftParen, "Expect '(' after "+kind+" name."); err != nil {
		return nil, nil, err
	}
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= maxArguments {
				p.report(p.peek(), "Can't have more than 255 parameters.")
			}
			param, err := p.consume(token.Identifier, "Expect parameter name.")
			if err != nil {
				return nil, nil, err
			}
			params = append(params, param)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after parameters."); err != nil {
		return nil, nil, err
	}
	if _, err := p.consume(token.LeftBrace, "Expect '{' before "+kind+" body."); err != nil {
		return nil, nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, nil, err
	}
	return params, body, nil
}

func (p *Parser) parseVarDeclaration() (ast.Statement, error) {
	name, err := p.consume(token.Identifier, "Expect variable name.")
	if err != nil {
		return nil, err
	}
	var initializer ast.Expression
	if p.match(token.Equal) {
		initializer, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return ast.NewVarDeclaration(name, initializer), nil
}
