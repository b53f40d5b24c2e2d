package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/token"
)

type signalKind int

const (
	signalNormal signalKind = iota
	signalReturn
	signalBreak
	signalContinue
)

// signal is the non-error outcome of executing a statement. Anything other
// than signalNormal unwinds until a call or loop consumes it.
type signal struct {
	kind  signalKind
	value runtime.Value
	token token.Token
}

var normal = signal{kind: signalNormal}

// escaped converts a signal that reached a construct unable to consume it.
func (s signal) escaped() error {
	switch s.kind {
	case signalReturn:
		return newRuntimeError(ControlFlowError, s.token, "Cannot return from top-level code.")
	case signalBreak:
		return newRuntimeError(ControlFlowError, s.token, "Cannot break from non-loop code.")
	case signalContinue:
		return newRuntimeError(ControlFlowError, s.token, "Cannot continue from non-loop code.")
	default:
		return nil
	}
}

func (i *Interpreter) executeStatement(node ast.Statement, env *runtime.Environment) (signal, error) {
	switch n := node.(type) {
	case *ast.ExpressionStatement:
		if _, err := i.evaluateExpression(n.Expression, env); err != nil {
			return normal, err
		}
		return normal, nil
	case *ast.Print:
		return i.executePrint(n, env)
	case *ast.VarDeclaration:
		return i.executeVarDeclaration(n, env)
	case *ast.Block:
		return i.executeStatements(n.Statements, env.Extend())
	case *ast.If:
		return i.executeIf(n, env)
	case *ast.While:
		return i.executeWhile(n, env)
	case *ast.Return:
		return i.executeReturn(n, env)
	case *ast.Break:
		return signal{kind: signalBreak, token: n.Keyword}, nil
	case *ast.Continue:
		return signal{kind: signalContinue, token: n.Keyword}, nil
	case *ast.FunctionDeclaration:
		env.Define(n.Name.Lexeme, i.makeFunction(n.Name.Lexeme, n.Params, n.Body, env, false))
		return normal, nil
	case *ast.ClassDeclaration:
		return normal, i.executeClassDeclaration(n, env)
	default:
		return normal, fmt.Errorf("unsupported statement type: %s", node.NodeType())
	}
}

// executeStatements runs stmts in env, stopping at the first error or
// non-normal signal.
func (i *Interpreter) executeStatements(stmts []ast.Statement, env *runtime.Environment) (signal, error) {
	for _, stmt := range stmts {
		sig, err := i.executeStatement(stmt, env)
		if err != nil {
			return normal, err
		}
		if sig.kind != signalNormal {
			return sig, nil
		}
	}
	return normal, nil
}

func (i *Interpreter) executePrint(stmt *ast.Print, env *runtime.Environment) (signal, error) {
	val, err := i.evaluateExpression(stmt.Expression, env)
	if err != nil {
		return normal, err
	}
	fmt.Fprintln(i.out, stringify(val))
	return normal, nil
}

func (i *Interpreter) executeVarDeclaration(stmt *ast.VarDeclaration, env *runtime.Environment) (signal, error) {
	value := runtime.Unassigned
	if stmt.Initializer != nil {
		val, err := i.evaluateExpression(stmt.Initializer, env)
		if err != nil {
			return normal, err
		}
		adoptName(val, stmt.Name.Lexeme)
		value = val
	}
	env.Define(stmt.Name.Lexeme, value)
	return normal, nil
}

func (i *Interpreter) executeIf(stmt *ast.If, env *runtime.Environment) (signal, error) {
	cond, err := i.evaluateExpression(stmt.Condition, env)
	if err != nil {
		return normal, err
	}
	if isTruthy(cond) {
		return i.executeStatement(stmt.Then, env)
	}
	if stmt.Else != nil {
		return i.executeStatement(stmt.Else, env)
	}
	return normal, nil
}

// executeWhile consumes break and continue signals raised by its body. A
// continue skips the rest of the body but still runs the increment of a
// desugared for loop.
func (i *Interpreter) executeWhile(loop *ast.While, env *runtime.Environment) (signal, error) {
	for {
		cond, err := i.evaluateExpression(loop.Condition, env)
		if err != nil {
			return normal, err
		}
		if !isTruthy(cond) {
			return normal, nil
		}
		sig, err := i.executeStatement(loop.Body, env)
		if err != nil {
			return normal, err
		}
		switch sig.kind {
		case signalBreak:
			return normal, nil
		case signalReturn:
			return sig, nil
		}
		if loop.Increment != nil {
			if _, err := i.evaluateExpression(loop.Increment, env); err != nil {
				return normal, err
			}
		}
	}
}

func (i *Interpreter) executeReturn(stmt *ast.Return, env *runtime.Environment) (signal, error) {
	var result runtime.Value = runtime.NilValue{}
	if stmt.Value != nil {
		val, err := i.evaluateExpression(stmt.Value, env)
		if err != nil {
			return normal, err
		}
		result = val
	}
	return signal{kind: signalReturn, value: result, token: stmt.Keyword}, nil
}

// adoptName gives an anonymous function the name it is first stored under.
func adoptName(val runtime.Value, name string) {
	if fn, ok := val.(*runtime.FunctionValue); ok {
		fn.AdoptName(name)
	}
}
