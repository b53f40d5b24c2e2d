package ast

import "lox/interpreter-go/pkg/token"

type NodeType string

const (
	NodeAssign              NodeType = "Assign"
	NodeBinary              NodeType = "Binary"
	NodeCall                NodeType = "Call"
	NodeFunctionExpression  NodeType = "FunctionExpression"
	NodeGet                 NodeType = "Get"
	NodeGrouping            NodeType = "Grouping"
	NodeNumberLiteral       NodeType = "NumberLiteral"
	NodeStringLiteral       NodeType = "StringLiteral"
	NodeBooleanLiteral      NodeType = "BooleanLiteral"
	NodeNilLiteral          NodeType = "NilLiteral"
	NodeLogical             NodeType = "Logical"
	NodeSet                 NodeType = "Set"
	NodeSuper               NodeType = "Super"
	NodeTernary             NodeType = "Ternary"
	NodeThis                NodeType = "This"
	NodeUnary               NodeType = "Unary"
	NodeVariable            NodeType = "Variable"
	NodeBlock               NodeType = "Block"
	NodeClassDeclaration    NodeType = "ClassDeclaration"
	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodeFunctionDeclaration NodeType = "FunctionDeclaration"
	NodeIf                  NodeType = "If"
	NodePrint               NodeType = "Print"
	NodeReturn              NodeType = "Return"
	NodeBreak               NodeType = "Break"
	NodeContinue            NodeType = "Continue"
	NodeVarDeclaration      NodeType = "VarDeclaration"
	NodeWhile               NodeType = "While"
	NodeProgram             NodeType = "Program"
)

// Node is implemented by every syntax tree node.
type Node interface {
	NodeType() NodeType
	// Pos is the token used to report errors against this node.
	Pos() token.Token
	// Children returns the immediate child nodes in source order.
	Children() []Node
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

// Unresolved is the slot of a use node that has not been numbered by NewProgram.
const Unresolved = -1

// Program is a parsed source unit. Every variable-use node inside it carries a
// distinct Slot in [0, Slots).
type Program struct {
	nodeImpl

	Statements []Statement `json:"statements"`
	Slots      int         `json:"slots"`
}

// NewProgram wraps statements and numbers their use nodes.
func NewProgram(statements []Statement) *Program {
	p := &Program{nodeImpl: newNodeImpl(NodeProgram), Statements: statements}
	p.number()
	return p
}

func (p *Program) Pos() token.Token {
	if len(p.Statements) == 0 {
		return token.Token{Kind: token.EOF}
	}
	return p.Statements[0].Pos()
}

func (p *Program) Children() []Node {
	out := make([]Node, 0, len(p.Statements))
	for _, stmt := range p.Statements {
		out = append(out, stmt)
	}
	return out
}

func (p *Program) number() {
	next := 0
	for _, stmt := range p.Statements {
		Inspect(stmt, func(n Node) bool {
			switch use := n.(type) {
			case *Variable:
				use.Slot = next
			case *Assign:
				use.Slot = next
			case *This:
				use.Slot = next
			case *Super:
				use.Slot = next
			default:
				return true
			}
			next++
			return true
		})
	}
	p.Slots = next
}

// Inspect walks the tree depth-first in source order. Children of a node are
// skipped when fn returns false for it.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, child := range node.Children() {
		Inspect(child, fn)
	}
}

// nodes collects non-nil children, dropping typed nil pointers held in
// optional fields.
func nodes(items ...Node) []Node {
	out := make([]Node, 0, len(items))
	for _, item := range items {
		if item == nil || isNilNode(item) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func isNilNode(n Node) bool {
	v, ok := n.(*Variable)
	return ok && v == nil
}
