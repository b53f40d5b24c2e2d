package interpreter

import (
	"bytes"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/resolver"
	"lox/interpreter-go/pkg/runtime"
)

// runSource parses, resolves and runs source in interp, returning what it
// printed. Static errors fail the helper.
func runSource(t testingT, interp *Interpreter, source string) (string, error) {
	t.Helper()
	program, err := parser.ParseProgram(source)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return runProgram(t, interp, program)
}

func runProgram(t testingT, interp *Interpreter, program *ast.Program) (string, error) {
	t.Helper()
	bindings, errs := resolver.Resolve(program)
	if len(errs) > 0 {
		t.Fatalf("resolve failed: %v", resolver.ErrorList(errs))
	}
	var out bytes.Buffer
	interp.SetOutput(&out)
	err := interp.Interpret(program, bindings)
	return out.String(), err
}

func globalValue(t testingT, interp *Interpreter, name string) runtime.Value {
	t.Helper()
	val, err := interp.GlobalEnvironment().Get(name)
	if err != nil {
		t.Fatalf("expected global %s: %v", name, err)
	}
	return val
}
