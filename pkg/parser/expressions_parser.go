package parser

import (
	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/token"
)

// parseExpression parses the comma operator, the loosest binding form.
func (p *Parser) parseExpression() (ast.Expression, error) {
	expr, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	for p.match(token.Comma) {
		operator := p.previous()
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		expr = ast.NewBinary(expr, operator, right)
	}
	return expr, nil
}

func (p *Parser) parseAssignment() (ast.Expression, error) {
	expr, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if !p.match(token.Equal) {
		return expr, nil
	}
	equals := p.previous()
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	switch target := expr.(type) {
	case *ast.Variable:
		return ast.NewAssign(target.Name, value), nil
	case *ast.Get:
		return ast.NewSet(target.Object, target.Name, value), nil
	default:
		p.report(equals, "Invalid assignment target.")
		return expr, nil
	}
}

func (p *Parser) parseTernary() (ast.Expression, error) {
	condition, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.match(token.Question) {
		return condition, nil
	}
	question := p.previous()
	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Colon, "Expect ':' after then branch of ternary expression."); err != nil {
		return nil, err
	}
	otherwise, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return ast.NewTernary(condition, question, then, otherwise), nil
}

func (p *Parser) parseOr() (ast.Expression, error) {
	return p.parseLogical(p.parseAnd, token.Or)
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	return p.parseLogical(p.parseEquality, token.And)
}

func (p *Parser) parseLogical(operand func() (ast.Expression, error), kind token.Kind) (ast.Expression, error) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}
	for p.match(kind) {
		operator := p.previous()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expr = ast.NewLogical(expr, operator, right)
	}
	return expr, nil
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	return p.parseBinary(p.parseComparison, token.BangEqual, token.EqualEqual)
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	return p.parseBinary(p.parseTerm, token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *Parser) parseTerm() (ast.Expression, error) {
	return p.parseBinary(p.parseFactor, token.Minus, token.Plus)
}

func (p *Parser) parseFactor() (ast.Expression, error) {
	return p.parseBinary(p.parseUnary, token.Slash, token.Star)
}

// parseBinary parses a left-associative chain of operand separated by any of
// the operator kinds.
func (p *Parser) parseBinary(operand func() (ast.Expression, error), kinds ...token.Kind) (ast.Expression, error) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}
	for p.match(kinds...) {
		operator := p.previous()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expr = ast.NewBinary(expr, operator, right)
	}
	return expr, nil
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	if p.match(token.Bang, token.Minus) {
		operator := p.previous()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(operator, right), nil
	}
	return p.parseCall()
}

func (p *Parser) parseCall() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(token.LeftParen):
			if expr, err = p.finishCall(expr); err != nil {
				return nil, err
			}
		case p.match(token.Dot):
			name, err := p.consume(token.Identifier, "Expect property name after '.'.")
			if err != nil {
				return nil, err
			}
			expr = ast.NewGet(expr, name)
		default:
			return expr, nil
		}
	}
}

func (p *Parser) finishCall(callee ast.Expression) (ast.Expression, error) {
	var args []ast.Expression
	if !p.check(token.RightParen) {
		for {
			if len(args) >= maxArguments {
				p.report(p.peek(), "Can't have more than 255 arguments.")
			}
			arg, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren, err := p.consume(token.RightParen, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return ast.NewCall(callee, paren, args), nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.False:
		p.advance()
		return ast.NewBooleanLiteral(false, tok), nil
	case token.True:
		p.advance()
		return ast.NewBooleanLiteral(true, tok), nil
	case token.Nil:
		p.advance()
		return ast.NewNilLiteral(tok), nil
	case token.Number:
		p.advance()
		value, _ := tok.Literal.(float64)
		return ast.NewNumberLiteral(value, tok), nil
	case token.String:
		p.advance()
		value, _ := tok.Literal.(string)
		return ast.NewStringLiteral(value, tok), nil
	case token.This:
		p.advance()
		return ast.NewThis(tok), nil
	case token.Identifier:
		p.advance()
		return ast.NewVariable(tok), nil
	case token.Super:
		p.advance()
		if _, err := p.consume(token.Dot, "Expect '.' after 'super'."); err != nil {
			return nil, err
		}
		method, err := p.consume(token.Identifier, "Expect superclass method name.")
		if err != nil {
			return nil, err
		}
		return ast.NewSuper(tok, method), nil
	case token.Fun:
		p.advance()
		return p.parseFunctionExpression(tok)
	case token.LeftParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RightParen, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return ast.NewGrouping(expr, tok), nil
	default:
		return nil, p.errorAt(tok, "Expect expression.")
	}
}

func (p *Parser) parseFunctionExpression(keyword token.Token) (ast.Expression, error) {
	var name *token.Token
	if p.check(token.Identifier) {
		tok := p.advance()
		name = &tok
	}
	params, body, err := p.parseFunctionBody("function")
	if err != nil {
		return nil, err
	}
	return ast.NewFunctionExpression(keyword, name, params, body), nil
}
