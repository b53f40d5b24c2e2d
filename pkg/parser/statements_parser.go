package parser

import (
	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/token"
)

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch {
	case p.match(token.For):
		return p.parseForStatement()
	case p.match(token.If):
		return p.parseIfStatement()
	case p.match(token.Print):
		return p.parsePrintStatement()
	case p.match(token.Return):
		return p.parseReturnStatement()
	case p.match(token.Break):
		keyword := p.previous()
		if _, err := p.consume(token.Semicolon, "Expect ';' after 'break'."); err != nil {
			return nil, err
		}
		return ast.NewBreak(keyword), nil
	case p.match(token.Continue):
		keyword := p.previous()
		if _, err := p.consume(token.Semicolon, "Expect ';' after 'continue'."); err != nil {
			return nil, err
		}
		return ast.NewContinue(keyword), nil
	case p.match(token.While):
		return p.parseWhileStatement()
	case p.match(token.LeftBrace):
		brace := p.previous()
		body, err := p.parseBlockBody()
		if err != nil {
			return nil, err
		}
		return ast.NewBlock(brace, body), nil
	default:
		return p.parseExpressionStatement()
	}
}

// parseBlockBody parses declarations up to the closing brace. Malformed
// declarations inside the block are recorded and skipped.
func (p *Parser) parseBlockBody() ([]ast.Statement, error) {
	var statements []ast.Statement
	for !p.check(token.RightBrace) && !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			statements = append(statements, stmt)
		}
	}
	if _, err := p.consume(token.RightBrace, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return statements, nil
}

// parseForStatement desugars `for (init; cond; incr) body` into
// `{ init; while (cond) body }` with incr attached to the loop.
func (p *Parser) parseForStatement() (ast.Statement, error) {
	keyword := p.previous()
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var initializer ast.Statement
	var err error
	switch {
	case p.match(token.Semicolon):
	case p.match(token.Var):
		initializer, err = p.parseVarDeclaration()
	default:
		initializer, err = p.parseExpressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var condition ast.Expression
	if !p.check(token.Semicolon) {
		if condition, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	var increment ast.Expression
	if !p.check(token.RightParen) {
		if increment, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	if condition == nil {
		condition = ast.NewBooleanLiteral(true, keyword)
	}
	var loop ast.Statement = ast.NewWhile(keyword, condition, body, increment)
	if initializer != nil {
		loop = ast.NewBlock(keyword, []ast.Statement{initializer, loop})
	}
	return loop, nil
}

func (p *Parser) parseIfStatement() (ast.Statement, error) {
	keyword := p.previous()
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after if condition."); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var otherwise ast.Statement
	if p.match(token.Else) {
		if otherwise, err = p.parseStatement(); err != nil {
			return nil, err
		}
	}
	return ast.NewIf(keyword, condition, then, otherwise), nil
}

func (p *Parser) parsePrintStatement() (ast.Statement, error) {
	keyword := p.previous()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return ast.NewPrint(keyword, value), nil
}

func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	keyword := p.previous()
	var value ast.Expression
	if !p.check(token.Semicolon) {
		var err error
		if value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after return value."); err != nil {
		return nil, err
	}
	return ast.NewReturn(keyword, value), nil
}

func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	keyword := p.previous()
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after condition."); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return ast.NewWhile(keyword, condition, body, nil), nil
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return ast.NewExpressionStatement(expr), nil
}
