package ast

import (
	"strconv"

	"lox/interpreter-go/pkg/token"
)

// Token helpers. Synthesised tokens sit on line 1.

func Tok(kind token.Kind, lexeme string) token.Token {
	return token.New(kind, lexeme, 1)
}

func Ident(name string) token.Token {
	return Tok(token.Identifier, name)
}

func op(lexeme string) token.Token {
	switch lexeme {
	case "+":
		return Tok(token.Plus, lexeme)
	case "-":
		return Tok(token.Minus, lexeme)
	case "*":
		return Tok(token.Star, lexeme)
	case "/":
		return Tok(token.Slash, lexeme)
	case ",":
		return Tok(token.Comma, lexeme)
	case "==":
		return Tok(token.EqualEqual, lexeme)
	case "!=":
		return Tok(token.BangEqual, lexeme)
	case "<":
		return Tok(token.Less, lexeme)
	case "<=":
		return Tok(token.LessEqual, lexeme)
	case ">":
		return Tok(token.Greater, lexeme)
	case ">=":
		return Tok(token.GreaterEqual, lexeme)
	case "!":
		return Tok(token.Bang, lexeme)
	case "and":
		return Tok(token.And, lexeme)
	case "or":
		return Tok(token.Or, lexeme)
	default:
		return Tok(token.Illegal, lexeme)
	}
}

// Literal helpers.

func Num(value float64) *NumberLiteral {
	return NewNumberLiteral(value, Tok(token.Number, strconv.FormatFloat(value, 'f', -1, 64)))
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value, Tok(token.String, strconv.Quote(value)))
}

func Bool(value bool) *BooleanLiteral {
	if value {
		return NewBooleanLiteral(true, Tok(token.True, "true"))
	}
	return NewBooleanLiteral(false, Tok(token.False, "false"))
}

func Nil() *NilLiteral {
	return NewNilLiteral(Tok(token.Nil, "nil"))
}

// Expression helpers.

func ID(name string) *Variable {
	return NewVariable(Ident(name))
}

func AssignTo(name string, value Expression) *Assign {
	return NewAssign(Ident(name), value)
}

func Bin(left Expression, operator string, right Expression) *Binary {
	return NewBinary(left, op(operator), right)
}

func Logic(left Expression, operator string, right Expression) *Logical {
	return NewLogical(left, op(operator), right)
}

func Neg(right Expression) *Unary {
	return NewUnary(Tok(token.Minus, "-"), right)
}

func Not(right Expression) *Unary {
	return NewUnary(op("!"), right)
}

func Cond(condition, then, otherwise Expression) *Ternary {
	return NewTernary(condition, Tok(token.Question, "?"), then, otherwise)
}

func CallExpr(callee Expression, args ...Expression) *Call {
	return NewCall(callee, Tok(token.RightParen, ")"), args)
}

func Prop(object Expression, name string) *Get {
	return NewGet(object, Ident(name))
}

func SetProp(object Expression, name string, value Expression) *Set {
	return NewSet(object, Ident(name), value)
}

func Self() *This {
	return NewThis(Tok(token.This, "this"))
}

func SuperCall(method string) *Super {
	return NewSuper(Tok(token.Super, "super"), Ident(method))
}

func Lambda(params []string, body ...Statement) *FunctionExpression {
	return NewFunctionExpression(Tok(token.Fun, "fun"), nil, idents(params), body)
}

// Statement helpers.

func Expr(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func PrintStmt(expr Expression) *Print {
	return NewPrint(Tok(token.Print, "print"), expr)
}

func VarDecl(name string, initializer Expression) *VarDeclaration {
	return NewVarDeclaration(Ident(name), initializer)
}

func Blk(stmts ...Statement) *Block {
	return NewBlock(Tok(token.LeftBrace, "{"), stmts)
}

func IfStmt(condition Expression, then, otherwise Statement) *If {
	return NewIf(Tok(token.If, "if"), condition, then, otherwise)
}

func Loop(condition Expression, body Statement) *While {
	return NewWhile(Tok(token.While, "while"), condition, body, nil)
}

func Ret(value Expression) *Return {
	return NewReturn(Tok(token.Return, "return"), value)
}

func Brk() *Break {
	return NewBreak(Tok(token.Break, "break"))
}

func Cont() *Continue {
	return NewContinue(Tok(token.Continue, "continue"))
}

func Fn(name string, params []string, body ...Statement) *FunctionDeclaration {
	return NewFunctionDeclaration(Ident(name), idents(params), body)
}

func Class(name string, superclass string, methods ...*FunctionDeclaration) *ClassDeclaration {
	var super *Variable
	if superclass != "" {
		super = ID(superclass)
	}
	return NewClassDeclaration(Ident(name), super, methods)
}

func Prog(stmts ...Statement) *Program {
	return NewProgram(stmts)
}

func idents(names []string) []token.Token {
	out := make([]token.Token, 0, len(names))
	for _, name := range names {
		out = append(out, Ident(name))
	}
	return out
}
