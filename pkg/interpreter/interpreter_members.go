package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
)

// executeClassDeclaration binds the class name to nil first so methods can
// refer to the class through their closures, then replaces it with the class.
func (i *Interpreter) executeClassDeclaration(decl *ast.ClassDeclaration, env *runtime.Environment) error {
	name := decl.Name.Lexeme
	env.Define(name, runtime.NilValue{})

	var superclass *runtime.ClassValue
	if decl.Superclass != nil {
		val, err := i.evaluateVariable(decl.Superclass, env)
		if err != nil {
			return err
		}
		class, ok := val.(*runtime.ClassValue)
		if !ok {
			return newRuntimeError(TypeError, decl.Superclass.Name, "Superclass must be a class.")
		}
		superclass = class
	}

	methodEnv := env
	if superclass != nil {
		methodEnv = env.Extend()
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*runtime.FunctionValue, len(decl.Methods))
	for _, method := range decl.Methods {
		methodName := method.Name.Lexeme
		methods[methodName] = i.makeFunction(methodName, method.Params, method.Body, methodEnv, methodName == "init")
	}

	class := &runtime.ClassValue{Name: name, Superclass: superclass, Methods: methods}
	if err := env.Assign(name, class); err != nil {
		return &InternalError{Token: decl.Name, Err: err}
	}
	return nil
}

// instantiate creates an instance and runs the initializer found on the
// class chain, if any. The result is always the instance.
func (i *Interpreter) instantiate(class *runtime.ClassValue, args []runtime.Value) (runtime.Value, error) {
	instance := runtime.NewInstance(class)
	if init := class.FindMethod("init"); init != nil {
		if _, err := i.callFunction(init.Bind(instance), args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

func (i *Interpreter) evaluateGet(expr *ast.Get, env *runtime.Environment) (runtime.Value, error) {
	obj, err := i.evaluateExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*runtime.InstanceValue)
	if !ok {
		return nil, newRuntimeError(PropertyError, expr.Name, "Only instances have properties.")
	}
	val, ok := instance.Get(expr.Name.Lexeme)
	if !ok {
		return nil, newRuntimeError(PropertyError, expr.Name, "Undefined property '%s'.", expr.Name.Lexeme)
	}
	return val, nil
}

func (i *Interpreter) evaluateSet(expr *ast.Set, env *runtime.Environment) (runtime.Value, error) {
	obj, err := i.evaluateExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*runtime.InstanceValue)
	if !ok {
		return nil, newRuntimeError(PropertyError, expr.Name, "Only instances have fields.")
	}
	val, err := i.evaluateExpression(expr.Value, env)
	if err != nil {
		return nil, err
	}
	adoptName(val, expr.Name.Lexeme)
	instance.Set(expr.Name.Lexeme, val)
	return val, nil
}

// evaluateSuper looks the method up from the superclass bound at the
// resolved distance and binds it to the this found one frame closer.
func (i *Interpreter) evaluateSuper(expr *ast.Super, env *runtime.Environment) (runtime.Value, error) {
	distance, ok := i.bindings.Lookup(expr.Slot)
	if !ok {
		return nil, &InternalError{Token: expr.Keyword, Err: fmt.Errorf("%w: 'super' has no resolved distance", runtime.ErrBindingMismatch)}
	}
	superVal, err := env.GetAt(distance, "super")
	if err != nil {
		return nil, &InternalError{Token: expr.Keyword, Err: err}
	}
	thisVal, err := env.GetAt(distance-1, "this")
	if err != nil {
		return nil, &InternalError{Token: expr.Keyword, Err: err}
	}
	superclass, ok := superVal.(*runtime.ClassValue)
	if !ok {
		return nil, &InternalError{Token: expr.Keyword, Err: fmt.Errorf("%w: 'super' holds %s", runtime.ErrBindingMismatch, superVal.Kind())}
	}
	instance, ok := thisVal.(*runtime.InstanceValue)
	if !ok {
		return nil, &InternalError{Token: expr.Keyword, Err: fmt.Errorf("%w: 'this' holds %s", runtime.ErrBindingMismatch, thisVal.Kind())}
	}
	method := superclass.FindMethod(expr.Method.Lexeme)
	if method == nil {
		return nil, newRuntimeError(PropertyError, expr.Method, "Undefined property '%s'.", expr.Method.Lexeme)
	}
	return method.Bind(instance), nil
}
