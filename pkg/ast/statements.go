package ast

import "lox/interpreter-go/pkg/token"

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

func (n *ExpressionStatement) Pos() token.Token { return n.Expression.Pos() }
func (n *ExpressionStatement) Children() []Node { return nodes(n.Expression) }

type Print struct {
	nodeImpl
	statementMarker

	Keyword    token.Token `json:"keyword"`
	Expression Expression  `json:"expression"`
}

func NewPrint(keyword token.Token, expr Expression) *Print {
	return &Print{nodeImpl: newNodeImpl(NodePrint), Keyword: keyword, Expression: expr}
}

func (n *Print) Pos() token.Token { return n.Keyword }
func (n *Print) Children() []Node { return nodes(n.Expression) }

// VarDeclaration binds Name in the current scope. A nil Initializer leaves the
// binding unassigned.
type VarDeclaration struct {
	nodeImpl
	statementMarker

	Name        token.Token `json:"name"`
	Initializer Expression  `json:"initializer,omitempty"`
}

func NewVarDeclaration(name token.Token, initializer Expression) *VarDeclaration {
	return &VarDeclaration{nodeImpl: newNodeImpl(NodeVarDeclaration), Name: name, Initializer: initializer}
}

func (n *VarDeclaration) Pos() token.Token { return n.Name }
func (n *VarDeclaration) Children() []Node { return nodes(n.Initializer) }

type Block struct {
	nodeImpl
	statementMarker

	Brace      token.Token `json:"brace"`
	Statements []Statement `json:"statements"`
}

func NewBlock(brace token.Token, statements []Statement) *Block {
	return &Block{nodeImpl: newNodeImpl(NodeBlock), Brace: brace, Statements: statements}
}

func (n *Block) Pos() token.Token { return n.Brace }
func (n *Block) Children() []Node { return statementNodes(n.Statements) }

type If struct {
	nodeImpl
	statementMarker

	Keyword   token.Token `json:"keyword"`
	Condition Expression  `json:"condition"`
	Then      Statement   `json:"then"`
	Else      Statement   `json:"else,omitempty"`
}

func NewIf(keyword token.Token, condition Expression, then, otherwise Statement) *If {
	return &If{nodeImpl: newNodeImpl(NodeIf), Keyword: keyword, Condition: condition, Then: then, Else: otherwise}
}

func (n *If) Pos() token.Token { return n.Keyword }
func (n *If) Children() []Node { return nodes(n.Condition, n.Then, n.Else) }

// While loops while Condition is truthy. Increment, when present, runs after
// every iteration that completes normally or continues; desugared `for` loops
// carry their increment clause here.
type While struct {
	nodeImpl
	statementMarker

	Keyword   token.Token `json:"keyword"`
	Condition Expression  `json:"condition"`
	Body      Statement   `json:"body"`
	Increment Expression  `json:"increment,omitempty"`
}

func NewWhile(keyword token.Token, condition Expression, body Statement, increment Expression) *While {
	return &While{nodeImpl: newNodeImpl(NodeWhile), Keyword: keyword, Condition: condition, Body: body, Increment: increment}
}

func (n *While) Pos() token.Token { return n.Keyword }
func (n *While) Children() []Node { return nodes(n.Condition, n.Body, n.Increment) }

type Return struct {
	nodeImpl
	statementMarker

	Keyword token.Token `json:"keyword"`
	Value   Expression  `json:"value,omitempty"`
}

func NewReturn(keyword token.Token, value Expression) *Return {
	return &Return{nodeImpl: newNodeImpl(NodeReturn), Keyword: keyword, Value: value}
}

func (n *Return) Pos() token.Token { return n.Keyword }
func (n *Return) Children() []Node { return nodes(n.Value) }

type Break struct {
	nodeImpl
	statementMarker

	Keyword token.Token `json:"keyword"`
}

func NewBreak(keyword token.Token) *Break {
	return &Break{nodeImpl: newNodeImpl(NodeBreak), Keyword: keyword}
}

func (n *Break) Pos() token.Token { return n.Keyword }
func (*Break) Children() []Node   { return nil }

type Continue struct {
	nodeImpl
	statementMarker

	Keyword token.Token `json:"keyword"`
}

func NewContinue(keyword token.Token) *Continue {
	return &Continue{nodeImpl: newNodeImpl(NodeContinue), Keyword: keyword}
}

func (n *Continue) Pos() token.Token { return n.Keyword }
func (*Continue) Children() []Node   { return nil }

// Definitions

type FunctionDeclaration struct {
	nodeImpl
	statementMarker

	Name   token.Token   `json:"name"`
	Params []token.Token `json:"params"`
	Body   []Statement   `json:"body"`
}

func NewFunctionDeclaration(name token.Token, params []token.Token, body []Statement) *FunctionDeclaration {
	return &FunctionDeclaration{nodeImpl: newNodeImpl(NodeFunctionDeclaration), Name: name, Params: params, Body: body}
}

func (n *FunctionDeclaration) Pos() token.Token { return n.Name }
func (n *FunctionDeclaration) Children() []Node { return statementNodes(n.Body) }

type ClassDeclaration struct {
	nodeImpl
	statementMarker

	Name       token.Token            `json:"name"`
	Superclass *Variable              `json:"superclass,omitempty"`
	Methods    []*FunctionDeclaration `json:"methods"`
}

func NewClassDeclaration(name token.Token, superclass *Variable, methods []*FunctionDeclaration) *ClassDeclaration {
	return &ClassDeclaration{nodeImpl: newNodeImpl(NodeClassDeclaration), Name: name, Superclass: superclass, Methods: methods}
}

func (n *ClassDeclaration) Pos() token.Token { return n.Name }
func (n *ClassDeclaration) Children() []Node {
	out := nodes(n.Superclass)
	for _, method := range n.Methods {
		out = append(out, nodes(method)...)
	}
	return out
}
