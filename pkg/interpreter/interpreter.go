package interpreter

import (
	"io"
	"os"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/resolver"
	"lox/interpreter-go/pkg/runtime"
)

// Interpreter executes resolved Lox programs against a persistent global frame.
type Interpreter struct {
	global *runtime.Environment
	// bindings is the resolution table of the code currently running. Calls
	// swap in the callee's table and restore the caller's on return.
	bindings *resolver.Bindings
	out      io.Writer
}

// New returns an interpreter whose global frame holds the built-in natives.
func New() *Interpreter {
	i := &Interpreter{
		global: runtime.NewEnvironment(nil),
		out:    os.Stdout,
	}
	i.registerNatives()
	return i
}

// GlobalEnvironment returns the interpreter's global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// SetOutput redirects print statements.
func (i *Interpreter) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	i.out = w
}

// DefineNative installs a host function in the global frame.
func (i *Interpreter) DefineNative(name string, arity int, impl runtime.NativeFunc) {
	i.global.Define(name, &runtime.NativeFunctionValue{Name: name, Arity: arity, Impl: impl})
}

// Interpret runs a program's statements in order in the global frame. It stops
// at the first runtime error and returns it; the global frame keeps every
// binding made before the failure.
func (i *Interpreter) Interpret(program *ast.Program, bindings *resolver.Bindings) error {
	if bindings == nil {
		bindings = resolver.NewBindings(program.Slots)
	}
	previous := i.bindings
	i.bindings = bindings
	defer func() { i.bindings = previous }()

	for _, stmt := range program.Statements {
		sig, err := i.executeStatement(stmt, i.global)
		if err != nil {
			return err
		}
		if sig.kind != signalNormal {
			return sig.escaped()
		}
	}
	return nil
}
