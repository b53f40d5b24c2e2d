package interpreter

import (
	"errors"
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/token"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return runtime.NumberValue{Val: n.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: n.Value}, nil
	case *ast.NilLiteral:
		return runtime.NilValue{}, nil
	case *ast.Grouping:
		return i.evaluateExpression(n.Expression, env)
	case *ast.Variable:
		return i.evaluateVariable(n, env)
	case *ast.Assign:
		return i.evaluateAssign(n, env)
	case *ast.This:
		return i.lookupVariable(n.Keyword, n.Slot, env)
	case *ast.Super:
		return i.evaluateSuper(n, env)
	case *ast.Unary:
		return i.evaluateUnary(n, env)
	case *ast.Binary:
		return i.evaluateBinary(n, env)
	case *ast.Logical:
		return i.evaluateLogical(n, env)
	case *ast.Ternary:
		return i.evaluateTernary(n, env)
	case *ast.Call:
		return i.evaluateCall(n, env)
	case *ast.Get:
		return i.evaluateGet(n, env)
	case *ast.Set:
		return i.evaluateSet(n, env)
	case *ast.FunctionExpression:
		return i.evaluateFunctionExpression(n, env), nil
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", node.NodeType())
	}
}

// lookupVariable reads a use through the active binding table. Uses without
// an entry are read from the global frame.
func (i *Interpreter) lookupVariable(name token.Token, slot int, env *runtime.Environment) (runtime.Value, error) {
	if distance, ok := i.bindings.Lookup(slot); ok {
		val, err := env.GetAt(distance, name.Lexeme)
		if err != nil {
			return nil, &InternalError{Token: name, Err: err}
		}
		return val, nil
	}
	val, err := i.global.Get(name.Lexeme)
	if err != nil {
		return nil, undefinedVariable(name, err)
	}
	return val, nil
}

func (i *Interpreter) evaluateVariable(expr *ast.Variable, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.lookupVariable(expr.Name, expr.Slot, env)
	if err != nil {
		return nil, err
	}
	if val.Kind() == runtime.KindUnassigned {
		return runtime.NilValue{}, nil
	}
	return val, nil
}

func (i *Interpreter) evaluateAssign(expr *ast.Assign, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.evaluateExpression(expr.Value, env)
	if err != nil {
		return nil, err
	}
	adoptName(val, expr.Name.Lexeme)
	if distance, ok := i.bindings.Lookup(expr.Slot); ok {
		if err := env.AssignAt(distance, expr.Name.Lexeme, val); err != nil {
			return nil, &InternalError{Token: expr.Name, Err: err}
		}
		return val, nil
	}
	if err := i.global.Assign(expr.Name.Lexeme, val); err != nil {
		return nil, undefinedVariable(expr.Name, err)
	}
	return val, nil
}

func undefinedVariable(name token.Token, err error) error {
	if errors.Is(err, runtime.ErrUndefinedVariable) {
		return newRuntimeError(UndefinedVariable, name, "Undefined variable '%s'.", name.Lexeme)
	}
	return err
}

func (i *Interpreter) evaluateUnary(expr *ast.Unary, env *runtime.Environment) (runtime.Value, error) {
	right, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}
	switch expr.Operator.Kind {
	case token.Bang:
		return runtime.BoolValue{Val: !isTruthy(right)}, nil
	case token.Minus:
		num, ok := right.(runtime.NumberValue)
		if !ok {
			return nil, newRuntimeError(TypeError, expr.Operator, "Operand must be a number.")
		}
		return runtime.NumberValue{Val: -num.Val}, nil
	default:
		return nil, fmt.Errorf("unsupported unary operator %s", expr.Operator.Lexeme)
	}
}

func (i *Interpreter) evaluateBinary(expr *ast.Binary, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}

	switch expr.Operator.Kind {
	case token.Comma:
		return right, nil
	case token.EqualEqual:
		return runtime.BoolValue{Val: valuesEqual(left, right)}, nil
	case token.BangEqual:
		return runtime.BoolValue{Val: !valuesEqual(left, right)}, nil
	case token.Plus:
		return addValues(expr.Operator, left, right)
	}

	l, r, err := numberOperands(expr.Operator, left, right)
	if err != nil {
		return nil, err
	}
	switch expr.Operator.Kind {
	case token.Minus:
		return runtime.NumberValue{Val: l - r}, nil
	case token.Star:
		return runtime.NumberValue{Val: l * r}, nil
	case token.Slash:
		if r == 0 {
			return nil, newRuntimeError(TypeError, expr.Operator, "Denominator must be non-zero.")
		}
		return runtime.NumberValue{Val: l / r}, nil
	case token.Greater:
		return runtime.BoolValue{Val: l > r}, nil
	case token.GreaterEqual:
		return runtime.BoolValue{Val: l >= r}, nil
	case token.Less:
		return runtime.BoolValue{Val: l < r}, nil
	case token.LessEqual:
		return runtime.BoolValue{Val: l <= r}, nil
	default:
		return nil, fmt.Errorf("unsupported binary operator %s", expr.Operator.Lexeme)
	}
}

func numberOperands(operator token.Token, left, right runtime.Value) (float64, float64, error) {
	l, lok := left.(runtime.NumberValue)
	r, rok := right.(runtime.NumberValue)
	if !lok || !rok {
		return 0, 0, newRuntimeError(TypeError, operator, "Operands must be numbers.")
	}
	return l.Val, r.Val, nil
}

// addValues sums two numbers. When either side is a string both sides are
// rendered and concatenated.
func addValues(operator token.Token, left, right runtime.Value) (runtime.Value, error) {
	l, lok := left.(runtime.NumberValue)
	r, rok := right.(runtime.NumberValue)
	if lok && rok {
		return runtime.NumberValue{Val: l.Val + r.Val}, nil
	}
	_, lstr := left.(runtime.StringValue)
	_, rstr := right.(runtime.StringValue)
	if lstr || rstr {
		return runtime.StringValue{Val: stringify(left) + stringify(right)}, nil
	}
	return nil, newRuntimeError(TypeError, operator, "Operands must be two numbers or two strings.")
}

func (i *Interpreter) evaluateLogical(expr *ast.Logical, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	if expr.Operator.Kind == token.Or {
		if isTruthy(left) {
			return left, nil
		}
	} else if !isTruthy(left) {
		return left, nil
	}
	return i.evaluateExpression(expr.Right, env)
}

func (i *Interpreter) evaluateTernary(expr *ast.Ternary, env *runtime.Environment) (runtime.Value, error) {
	cond, err := i.evaluateExpression(expr.Condition, env)
	if err != nil {
		return nil, err
	}
	if isTruthy(cond) {
		return i.evaluateExpression(expr.Then, env)
	}
	return i.evaluateExpression(expr.Else, env)
}

func (i *Interpreter) evaluateFunctionExpression(expr *ast.FunctionExpression, env *runtime.Environment) runtime.Value {
	name := ""
	if expr.Name != nil {
		name = expr.Name.Lexeme
	}
	fn := i.makeFunction(name, expr.Params, expr.Body, env, false)
	if expr.Name != nil {
		env.Define(name, fn)
	}
	return fn
}

func (i *Interpreter) makeFunction(name string, params []token.Token, body []ast.Statement, closure *runtime.Environment, initializer bool) *runtime.FunctionValue {
	return &runtime.FunctionValue{
		Name:          name,
		Params:        params,
		Body:          body,
		Closure:       closure,
		IsInitializer: initializer,
		Bindings:      i.bindings,
	}
}

func (i *Interpreter) evaluateCall(expr *ast.Call, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evaluateExpression(expr.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, 0, len(expr.Arguments))
	for _, argExpr := range expr.Arguments {
		arg, err := i.evaluateExpression(argExpr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return i.callValue(callee, args, expr.Paren)
}

// callValue invokes a callable with evaluated arguments. paren locates arity
// and call errors.
func (i *Interpreter) callValue(callee runtime.Value, args []runtime.Value, paren token.Token) (runtime.Value, error) {
	switch fn := callee.(type) {
	case *runtime.NativeFunctionValue:
		if err := checkArity(paren, fn.Arity, len(args)); err != nil {
			return nil, err
		}
		return i.callNative(fn, args, paren)
	case *runtime.FunctionValue:
		if err := checkArity(paren, fn.Arity(), len(args)); err != nil {
			return nil, err
		}
		return i.callFunction(fn, args)
	case *runtime.ClassValue:
		if err := checkArity(paren, fn.Arity(), len(args)); err != nil {
			return nil, err
		}
		return i.instantiate(fn, args)
	default:
		return nil, newRuntimeError(TypeError, paren, "Can only call functions and classes.")
	}
}

func checkArity(paren token.Token, want, got int) error {
	if want != got {
		return newRuntimeError(ArityError, paren, "Expected %d arguments but got %d.", want, got)
	}
	return nil
}

func (i *Interpreter) callNative(fn *runtime.NativeFunctionValue, args []runtime.Value, paren token.Token) (runtime.Value, error) {
	result, err := fn.Impl(&runtime.NativeCallContext{Env: i.global}, args)
	if err != nil {
		var rtErr *RuntimeError
		if errors.As(err, &rtErr) {
			return nil, err
		}
		return nil, newRuntimeError(NativeError, paren, "%s: %v", fn.Name, err)
	}
	if result == nil {
		return runtime.NilValue{}, nil
	}
	return result, nil
}

// callFunction runs a user function body in a fresh frame holding its
// parameters. The callee's binding table is active for the duration of the
// call and the caller's is restored on every exit path.
func (i *Interpreter) callFunction(fn *runtime.FunctionValue, args []runtime.Value) (runtime.Value, error) {
	env := runtime.NewEnvironment(fn.Closure)
	for idx, param := range fn.Params {
		env.Define(param.Lexeme, args[idx])
	}

	previous := i.bindings
	if fn.Bindings != nil {
		i.bindings = fn.Bindings
	}
	defer func() { i.bindings = previous }()

	sig, err := i.executeStatements(fn.Body, env)
	if err != nil {
		return nil, err
	}
	if sig.kind == signalBreak || sig.kind == signalContinue {
		return nil, sig.escaped()
	}
	if fn.IsInitializer {
		this, err := fn.Closure.GetAt(0, "this")
		if err != nil {
			return nil, &InternalError{Token: sig.token, Err: err}
		}
		return this, nil
	}
	if sig.kind == signalReturn {
		return sig.value, nil
	}
	return runtime.NilValue{}, nil
}
