package resolver

import (
	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/token"
)

type functionKind int

const (
	functionNone functionKind = iota
	functionPlain
	functionMethod
	functionInitializer
)

type classKind int

const (
	classNone classKind = iota
	classPlain
	classSubclass
)

// Resolver binds variable uses to lexical distances in a single static pass.
type Resolver struct {
	// scopes holds local scopes, innermost last. A name maps to false while
	// declared and to true once defined. Global scope is never tracked.
	scopes   []map[string]bool
	bindings *Bindings
	errors   []*StaticError

	currentFunction functionKind
	currentClass    classKind
	inLoop          bool
}

// Resolve runs the resolver over a program. Static errors are collected over
// the whole program; any error means the program must not be executed.
func Resolve(program *ast.Program) (*Bindings, []*StaticError) {
	r := &Resolver{bindings: NewBindings(program.Slots)}
	r.resolveStatements(program.Statements)
	return r.bindings, r.errors
}

func (r *Resolver) resolveStatements(stmts []ast.Statement) {
	for _, stmt := range stmts {
		r.resolveStatement(stmt)
	}
}

func (r *Resolver) resolveStatement(node ast.Statement) {
	switch n := node.(type) {
	case *ast.Block:
		r.beginScope()
		r.resolveStatements(n.Statements)
		r.endScope()
	case *ast.VarDeclaration:
		r.declare(n.Name)
		if n.Initializer != nil {
			r.resolveExpression(n.Initializer)
		}
		r.define(n.Name)
	case *ast.FunctionDeclaration:
		r.declare(n.Name)
		r.define(n.Name)
		r.resolveFunction(n.Params, n.Body, functionPlain)
	case *ast.ClassDeclaration:
		r.resolveClass(n)
	case *ast.ExpressionStatement:
		r.resolveExpression(n.Expression)
	case *ast.Print:
		r.resolveExpression(n.Expression)
	case *ast.If:
		r.resolveExpression(n.Condition)
		r.resolveStatement(n.Then)
		if n.Else != nil {
			r.resolveStatement(n.Else)
		}
	case *ast.While:
		r.resolveExpression(n.Condition)
		enclosingLoop := r.inLoop
		r.inLoop = true
		r.resolveStatement(n.Body)
		if n.Increment != nil {
			r.resolveExpression(n.Increment)
		}
		r.inLoop = enclosingLoop
	case *ast.Return:
		if r.currentFunction == functionNone {
			r.error(n.Keyword, "Cannot return from top-level code.")
		}
		if n.Value != nil {
			r.resolveExpression(n.Value)
		}
	case *ast.Break:
		if !r.inLoop {
			r.error(n.Keyword, "Cannot break from non-loop code.")
		}
	case *ast.Continue:
		if !r.inLoop {
			r.error(n.Keyword, "Cannot continue from non-loop code.")
		}
	}
}

func (r *Resolver) resolveClass(n *ast.ClassDeclaration) {
	enclosingClass := r.currentClass
	r.currentClass = classPlain
	defer func() { r.currentClass = enclosingClass }()

	r.declare(n.Name)
	r.define(n.Name)

	if n.Superclass != nil {
		if n.Superclass.Name.Lexeme == n.Name.Lexeme {
			r.error(n.Superclass.Name, "A class cannot inherit from itself.")
		}
		r.currentClass = classSubclass
		r.resolveExpression(n.Superclass)
		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true
	for _, method := range n.Methods {
		kind := functionMethod
		if method.Name.Lexeme == "init" {
			kind = functionInitializer
		}
		r.resolveFunction(method.Params, method.Body, kind)
	}
	r.endScope()

	if n.Superclass != nil {
		r.endScope()
	}
}

// resolveFunction resolves a function body in a fresh scope holding its
// parameters. Loop context never crosses a function boundary.
func (r *Resolver) resolveFunction(params []token.Token, body []ast.Statement, kind functionKind) {
	enclosingFunction := r.currentFunction
	enclosingLoop := r.inLoop
	r.currentFunction = kind
	r.inLoop = false

	r.beginScope()
	for _, param := range params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStatements(body)
	r.endScope()

	r.inLoop = enclosingLoop
	r.currentFunction = enclosingFunction
}

func (r *Resolver) resolveExpression(node ast.Expression) {
	switch n := node.(type) {
	case *ast.Variable:
		if len(r.scopes) > 0 {
			if defined, ok := r.scopes[len(r.scopes)-1][n.Name.Lexeme]; ok && !defined {
				r.error(n.Name, "Cannot read local variable in its own initializer.")
			}
		}
		r.resolveLocal(n.Slot, n.Name.Lexeme)
	case *ast.Assign:
		r.resolveExpression(n.Value)
		r.resolveLocal(n.Slot, n.Name.Lexeme)
	case *ast.This:
		if r.currentClass == classNone {
			r.error(n.Keyword, "Cannot use 'this' outside of a class.")
			return
		}
		r.resolveLocal(n.Slot, "this")
	case *ast.Super:
		switch r.currentClass {
		case classNone:
			r.error(n.Keyword, "Cannot use 'super' outside of a class.")
			return
		case classPlain:
			r.error(n.Keyword, "Cannot use 'super' in a class with no superclass.")
			return
		}
		r.resolveLocal(n.Slot, "super")
	case *ast.FunctionExpression:
		if n.Name != nil {
			r.declare(*n.Name)
			r.define(*n.Name)
		}
		r.resolveFunction(n.Params, n.Body, functionPlain)
	case *ast.Binary:
		r.resolveExpression(n.Left)
		r.resolveExpression(n.Right)
	case *ast.Logical:
		r.resolveExpression(n.Left)
		r.resolveExpression(n.Right)
	case *ast.Unary:
		r.resolveExpression(n.Right)
	case *ast.Ternary:
		r.resolveExpression(n.Condition)
		r.resolveExpression(n.Then)
		r.resolveExpression(n.Else)
	case *ast.Grouping:
		r.resolveExpression(n.Expression)
	case *ast.Call:
		r.resolveExpression(n.Callee)
		for _, arg := range n.Arguments {
			r.resolveExpression(arg)
		}
	case *ast.Get:
		r.resolveExpression(n.Object)
	case *ast.Set:
		r.resolveExpression(n.Value)
		r.resolveExpression(n.Object)
	case ast.Literal:
	}
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare adds name to the innermost local scope. Redeclaration is only an
// error inside local scopes; globals may be redeclared freely.
func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, exists := scope[name.Lexeme]; exists {
		r.error(name, "Variable with this name already declared in this scope.")
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

// resolveLocal records the distance to the innermost scope declaring name.
// Names found in no local scope are left as globals.
func (r *Resolver) resolveLocal(slot int, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.bindings.record(slot, len(r.scopes)-1-i)
			return
		}
	}
}

func (r *Resolver) error(tok token.Token, message string) {
	r.errors = append(r.errors, &StaticError{Token: tok, Message: message})
}
