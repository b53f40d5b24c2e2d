package runtime

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/resolver"
	"lox/interpreter-go/pkg/token"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindNativeFunction
	KindFunction
	KindClass
	KindInstance
	KindUnassigned
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindNativeFunction:
		return "native_function"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindUnassigned:
		return "unassigned"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

// unassignedValue marks a variable declared without an initializer. It never
// escapes a variable read.
type unassignedValue struct{}

func (unassignedValue) Kind() Kind { return KindUnassigned }

// Unassigned is bound by `var name;` until the first assignment.
var Unassigned Value = unassignedValue{}

//-----------------------------------------------------------------------------
// Callables
//-----------------------------------------------------------------------------

// Callable is implemented by natives, user functions and classes.
type Callable interface {
	Value
	callable()
}

// NativeCallContext gives natives access to the interpreter's global frame.
type NativeCallContext struct {
	Env *Environment
}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

type NativeFunctionValue struct {
	Name  string
	Arity int
	Impl  NativeFunc
}

func (v *NativeFunctionValue) Kind() Kind { return KindNativeFunction }
func (*NativeFunctionValue) callable()    {}

// FunctionValue is a user-defined function or method closed over the frame
// active at its definition.
type FunctionValue struct {
	// Name is empty for an anonymous function until it adopts one.
	Name          string
	Params        []token.Token
	Body          []ast.Statement
	Closure       *Environment
	IsInitializer bool
	// Bindings is the resolution table of the program that defined the
	// function. It is active while the body runs.
	Bindings *resolver.Bindings
}

func (v *FunctionValue) Kind() Kind { return KindFunction }
func (*FunctionValue) callable()    {}

func (v *FunctionValue) Arity() int { return len(v.Params) }

// AdoptName names an anonymous function after the variable or field it is
// first stored in. Named functions keep their name.
func (v *FunctionValue) AdoptName(name string) {
	if v.Name == "" {
		v.Name = name
	}
}

// Bind returns a copy of the method whose closure binds this to instance.
func (v *FunctionValue) Bind(instance *InstanceValue) *FunctionValue {
	env := NewEnvironment(v.Closure)
	env.Define("this", instance)
	return &FunctionValue{
		Name:          v.Name,
		Params:        v.Params,
		Body:          v.Body,
		Closure:       env,
		IsInitializer: v.IsInitializer,
		Bindings:      v.Bindings,
	}
}

//-----------------------------------------------------------------------------
// Classes & instances
//-----------------------------------------------------------------------------

type ClassValue struct {
	Name       string
	Superclass *ClassValue
	Methods    map[string]*FunctionValue
}

func (v *ClassValue) Kind() Kind { return KindClass }
func (*ClassValue) callable()    {}

// Arity is the arity of the class's initializer, or zero without one.
func (v *ClassValue) Arity() int {
	if init := v.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// FindMethod searches the class and then each superclass in turn.
func (v *ClassValue) FindMethod(name string) *FunctionValue {
	for class := v; class != nil; class = class.Superclass {
		if method, ok := class.Methods[name]; ok {
			return method
		}
	}
	return nil
}

type InstanceValue struct {
	Class  *ClassValue
	Fields map[string]Value
}

func NewInstance(class *ClassValue) *InstanceValue {
	return &InstanceValue{Class: class, Fields: make(map[string]Value)}
}

func (v *InstanceValue) Kind() Kind { return KindInstance }

// Get returns a field, or else a method bound to the instance. Methods are
// bound afresh on every access.
func (v *InstanceValue) Get(name string) (Value, bool) {
	if field, ok := v.Fields[name]; ok {
		return field, true
	}
	if method := v.Class.FindMethod(name); method != nil {
		return method.Bind(v), true
	}
	return nil, false
}

func (v *InstanceValue) Set(name string, value Value) {
	v.Fields[name] = value
}
