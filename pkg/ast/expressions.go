package ast

import "lox/interpreter-go/pkg/token"

// Literals

type NumberLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value float64     `json:"value"`
	Token token.Token `json:"token"`
}

func NewNumberLiteral(value float64, tok token.Token) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value, Token: tok}
}

func (n *NumberLiteral) Pos() token.Token { return n.Token }
func (*NumberLiteral) Children() []Node   { return nil }

type StringLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value string      `json:"value"`
	Token token.Token `json:"token"`
}

func NewStringLiteral(value string, tok token.Token) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value, Token: tok}
}

func (n *StringLiteral) Pos() token.Token { return n.Token }
func (*StringLiteral) Children() []Node   { return nil }

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value bool        `json:"value"`
	Token token.Token `json:"token"`
}

func NewBooleanLiteral(value bool, tok token.Token) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value, Token: tok}
}

func (n *BooleanLiteral) Pos() token.Token { return n.Token }
func (*BooleanLiteral) Children() []Node   { return nil }

type NilLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Token token.Token `json:"token"`
}

func NewNilLiteral(tok token.Token) *NilLiteral {
	return &NilLiteral{nodeImpl: newNodeImpl(NodeNilLiteral), Token: tok}
}

func (n *NilLiteral) Pos() token.Token { return n.Token }
func (*NilLiteral) Children() []Node   { return nil }

// Variable uses. Slot is the node's key into a binding table.

type Variable struct {
	nodeImpl
	expressionMarker

	Name token.Token `json:"name"`
	Slot int         `json:"slot"`
}

func NewVariable(name token.Token) *Variable {
	return &Variable{nodeImpl: newNodeImpl(NodeVariable), Name: name, Slot: Unresolved}
}

func (n *Variable) Pos() token.Token { return n.Name }
func (*Variable) Children() []Node   { return nil }

type Assign struct {
	nodeImpl
	expressionMarker

	Name  token.Token `json:"name"`
	Value Expression  `json:"value"`
	Slot  int         `json:"slot"`
}

func NewAssign(name token.Token, value Expression) *Assign {
	return &Assign{nodeImpl: newNodeImpl(NodeAssign), Name: name, Value: value, Slot: Unresolved}
}

func (n *Assign) Pos() token.Token   { return n.Name }
func (n *Assign) Children() []Node   { return nodes(n.Value) }

type This struct {
	nodeImpl
	expressionMarker

	Keyword token.Token `json:"keyword"`
	Slot    int         `json:"slot"`
}

func NewThis(keyword token.Token) *This {
	return &This{nodeImpl: newNodeImpl(NodeThis), Keyword: keyword, Slot: Unresolved}
}

func (n *This) Pos() token.Token { return n.Keyword }
func (*This) Children() []Node   { return nil }

type Super struct {
	nodeImpl
	expressionMarker

	Keyword token.Token `json:"keyword"`
	Method  token.Token `json:"method"`
	Slot    int         `json:"slot"`
}

func NewSuper(keyword, method token.Token) *Super {
	return &Super{nodeImpl: newNodeImpl(NodeSuper), Keyword: keyword, Method: method, Slot: Unresolved}
}

func (n *Super) Pos() token.Token { return n.Keyword }
func (*Super) Children() []Node   { return nil }

// Operators

// Binary covers arithmetic, comparison, equality and the comma operator.
type Binary struct {
	nodeImpl
	expressionMarker

	Left     Expression  `json:"left"`
	Operator token.Token `json:"operator"`
	Right    Expression  `json:"right"`
}

func NewBinary(left Expression, operator token.Token, right Expression) *Binary {
	return &Binary{nodeImpl: newNodeImpl(NodeBinary), Left: left, Operator: operator, Right: right}
}

func (n *Binary) Pos() token.Token { return n.Operator }
func (n *Binary) Children() []Node { return nodes(n.Left, n.Right) }

type Logical struct {
	nodeImpl
	expressionMarker

	Left     Expression  `json:"left"`
	Operator token.Token `json:"operator"`
	Right    Expression  `json:"right"`
}

func NewLogical(left Expression, operator token.Token, right Expression) *Logical {
	return &Logical{nodeImpl: newNodeImpl(NodeLogical), Left: left, Operator: operator, Right: right}
}

func (n *Logical) Pos() token.Token { return n.Operator }
func (n *Logical) Children() []Node { return nodes(n.Left, n.Right) }

type Unary struct {
	nodeImpl
	expressionMarker

	Operator token.Token `json:"operator"`
	Right    Expression  `json:"right"`
}

func NewUnary(operator token.Token, right Expression) *Unary {
	return &Unary{nodeImpl: newNodeImpl(NodeUnary), Operator: operator, Right: right}
}

func (n *Unary) Pos() token.Token { return n.Operator }
func (n *Unary) Children() []Node { return nodes(n.Right) }

type Ternary struct {
	nodeImpl
	expressionMarker

	Condition Expression  `json:"condition"`
	Question  token.Token `json:"question"`
	Then      Expression  `json:"then"`
	Else      Expression  `json:"else"`
}

func NewTernary(condition Expression, question token.Token, then, otherwise Expression) *Ternary {
	return &Ternary{nodeImpl: newNodeImpl(NodeTernary), Condition: condition, Question: question, Then: then, Else: otherwise}
}

func (n *Ternary) Pos() token.Token { return n.Question }
func (n *Ternary) Children() []Node { return nodes(n.Condition, n.Then, n.Else) }

type Grouping struct {
	nodeImpl
	expressionMarker

	Expression Expression  `json:"expression"`
	Paren      token.Token `json:"paren"`
}

func NewGrouping(expr Expression, paren token.Token) *Grouping {
	return &Grouping{nodeImpl: newNodeImpl(NodeGrouping), Expression: expr, Paren: paren}
}

func (n *Grouping) Pos() token.Token { return n.Paren }
func (n *Grouping) Children() []Node { return nodes(n.Expression) }

// Calls and properties

type Call struct {
	nodeImpl
	expressionMarker

	Callee    Expression   `json:"callee"`
	Paren     token.Token  `json:"paren"`
	Arguments []Expression `json:"arguments"`
}

func NewCall(callee Expression, paren token.Token, args []Expression) *Call {
	return &Call{nodeImpl: newNodeImpl(NodeCall), Callee: callee, Paren: paren, Arguments: args}
}

func (n *Call) Pos() token.Token { return n.Paren }
func (n *Call) Children() []Node {
	out := nodes(n.Callee)
	for _, arg := range n.Arguments {
		out = append(out, nodes(arg)...)
	}
	return out
}

type Get struct {
	nodeImpl
	expressionMarker

	Object Expression  `json:"object"`
	Name   token.Token `json:"name"`
}

func NewGet(object Expression, name token.Token) *Get {
	return &Get{nodeImpl: newNodeImpl(NodeGet), Object: object, Name: name}
}

func (n *Get) Pos() token.Token { return n.Name }
func (n *Get) Children() []Node { return nodes(n.Object) }

type Set struct {
	nodeImpl
	expressionMarker

	Object Expression  `json:"object"`
	Name   token.Token `json:"name"`
	Value  Expression  `json:"value"`
}

func NewSet(object Expression, name token.Token, value Expression) *Set {
	return &Set{nodeImpl: newNodeImpl(NodeSet), Object: object, Name: name, Value: value}
}

func (n *Set) Pos() token.Token { return n.Name }
func (n *Set) Children() []Node { return nodes(n.Object, n.Value) }

// FunctionExpression is a function literal. Name is set for the named form
// `fun name(...) {...}` used in expression position.
type FunctionExpression struct {
	nodeImpl
	expressionMarker

	Keyword token.Token   `json:"keyword"`
	Name    *token.Token  `json:"name,omitempty"`
	Params  []token.Token `json:"params"`
	Body    []Statement   `json:"body"`
}

func NewFunctionExpression(keyword token.Token, name *token.Token, params []token.Token, body []Statement) *FunctionExpression {
	return &FunctionExpression{nodeImpl: newNodeImpl(NodeFunctionExpression), Keyword: keyword, Name: name, Params: params, Body: body}
}

func (n *FunctionExpression) Pos() token.Token { return n.Keyword }
func (n *FunctionExpression) Children() []Node { return statementNodes(n.Body) }

func statementNodes(stmts []Statement) []Node {
	out := make([]Node, 0, len(stmts))
	for _, stmt := range stmts {
		out = append(out, nodes(stmt)...)
	}
	return out
}
