package interpreter

import (
	"errors"
	"math"
	"strings"
	"testing"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
)

func TestEvaluateArithmetic(t *testing.T) {
	interp := New()
	env := interp.GlobalEnvironment()
	cases := []struct {
		expr ast.Expression
		want runtime.Value
	}{
		{ast.Bin(ast.Num(1), "/", ast.Num(2)), runtime.NumberValue{Val: 0.5}},
		{ast.Bin(ast.Num(2), "*", ast.Bin(ast.Num(3), "+", ast.Num(4))), runtime.NumberValue{Val: 14}},
		{ast.Bin(ast.Num(1), "+", ast.Str("x")), runtime.StringValue{Val: "1x"}},
		{ast.Bin(ast.Str("a"), "+", ast.Nil()), runtime.StringValue{Val: "anil"}},
		{ast.Bin(ast.Num(3), "<=", ast.Num(3)), runtime.BoolValue{Val: true}},
		{ast.Bin(ast.Nil(), "==", ast.Bool(false)), runtime.BoolValue{Val: false}},
		{ast.Bin(ast.Num(1), ",", ast.Str("right")), runtime.StringValue{Val: "right"}},
		{ast.Cond(ast.Bool(true), ast.Num(1), ast.Num(2)), runtime.NumberValue{Val: 1}},
		{ast.Cond(ast.Bool(false), ast.Num(1), ast.Num(2)), runtime.NumberValue{Val: 2}},
		{ast.Logic(ast.Nil(), "or", ast.Str("d")), runtime.StringValue{Val: "d"}},
		{ast.Logic(ast.Num(0), "and", ast.Num(7)), runtime.NumberValue{Val: 7}},
		{ast.Neg(ast.Num(4)), runtime.NumberValue{Val: -4}},
		{ast.Not(ast.Str("")), runtime.BoolValue{Val: false}},
	}
	for _, tc := range cases {
		got, err := interp.evaluateExpression(tc.expr, env)
		if err != nil {
			t.Fatalf("evaluation failed: %v", err)
		}
		if got != tc.want {
			t.Fatalf("expected %#v, got %#v", tc.want, got)
		}
	}
}

func TestTernaryEvaluatesOneBranch(t *testing.T) {
	interp := New()
	env := interp.GlobalEnvironment()
	env.Define("hits", runtime.NumberValue{Val: 0})
	bump := ast.AssignTo("hits", ast.Bin(ast.ID("hits"), "+", ast.Num(1)))
	if _, err := interp.evaluateExpression(ast.Cond(ast.Bool(true), bump, ast.Bin(ast.Num(1), "-", ast.Str("x"))), env); err != nil {
		t.Fatalf("ternary evaluation failed: %v", err)
	}
	if hits := globalValue(t, interp, "hits"); hits != (runtime.NumberValue{Val: 1}) {
		t.Fatalf("expected exactly one evaluation, got %#v", hits)
	}
}

func TestTruthiness(t *testing.T) {
	cases := []struct {
		val  runtime.Value
		want bool
	}{
		{runtime.NilValue{}, false},
		{runtime.BoolValue{Val: false}, false},
		{runtime.BoolValue{Val: true}, true},
		{runtime.NumberValue{Val: 0}, true},
		{runtime.StringValue{Val: ""}, true},
		{&runtime.InstanceValue{}, true},
	}
	for _, tc := range cases {
		if got := isTruthy(tc.val); got != tc.want {
			t.Fatalf("isTruthy(%#v): expected %v", tc.val, tc.want)
		}
	}
}

func TestStringify(t *testing.T) {
	class := &runtime.ClassValue{Name: "Point"}
	cases := []struct {
		val  runtime.Value
		want string
	}{
		{runtime.NilValue{}, "nil"},
		{runtime.BoolValue{Val: true}, "true"},
		{runtime.NumberValue{Val: 3}, "3"},
		{runtime.NumberValue{Val: 2.5}, "2.5"},
		{runtime.NumberValue{Val: 1e21}, "1000000000000000000000"},
		{runtime.NumberValue{Val: math.Inf(1)}, "Infinity"},
		{runtime.StringValue{Val: "plain"}, "plain"},
		{&runtime.FunctionValue{Name: "f"}, "<fn f>"},
		{&runtime.FunctionValue{}, "<fn anonymous>"},
		{&runtime.NativeFunctionValue{Name: "clock"}, "<fn clock>"},
		{class, "<class Point>"},
		{runtime.NewInstance(class), "Point instance"},
	}
	for _, tc := range cases {
		if got := Stringify(tc.val); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestEqualityUsesIdentityForObjects(t *testing.T) {
	class := &runtime.ClassValue{Name: "A"}
	a := runtime.NewInstance(class)
	b := runtime.NewInstance(class)
	if !valuesEqual(a, a) || valuesEqual(a, b) {
		t.Fatalf("expected identity equality for instances")
	}
	if valuesEqual(runtime.NumberValue{Val: math.NaN()}, runtime.NumberValue{Val: math.NaN()}) {
		t.Fatalf("NaN must not equal itself")
	}
	if valuesEqual(runtime.NilValue{}, runtime.BoolValue{Val: false}) {
		t.Fatalf("nil equals only nil")
	}
	if !valuesEqual(runtime.StringValue{Val: "x"}, runtime.StringValue{Val: "x"}) {
		t.Fatalf("strings compare by content")
	}
}

func TestBlockScopeIsDiscarded(t *testing.T) {
	interp := New()
	program := ast.Prog(
		ast.VarDecl("outer", ast.Str("kept")),
		ast.Blk(
			ast.VarDecl("inner", ast.Num(1)),
			ast.VarDecl("outer", ast.Str("shadow")),
		),
	)
	if _, err := runProgram(t, interp, program); err != nil {
		t.Fatalf("program failed: %v", err)
	}
	if _, err := interp.GlobalEnvironment().Get("inner"); !errors.Is(err, runtime.ErrUndefinedVariable) {
		t.Fatalf("block binding leaked into global frame: %v", err)
	}
	if got := globalValue(t, interp, "outer"); got != (runtime.StringValue{Val: "kept"}) {
		t.Fatalf("shadowing altered outer binding: %#v", got)
	}
}

func TestUnassignedVariableStoredAsSentinel(t *testing.T) {
	interp := New()
	out, err := runSource(t, interp, "var a; print a;")
	if err != nil {
		t.Fatalf("program failed: %v", err)
	}
	if out != "nil\n" {
		t.Fatalf("expected nil output, got %q", out)
	}
	if got := globalValue(t, interp, "a"); got.Kind() != runtime.KindUnassigned {
		t.Fatalf("expected unassigned sentinel in frame, got %#v", got)
	}
}

func TestProgramsShareGlobalsAndKeepTheirBindings(t *testing.T) {
	interp := New()
	if _, err := runSource(t, interp, `
fun make() {
  var a = "local";
  {
    fun get() { return a; }
    return get;
  }
}
var g = make();
`); err != nil {
		t.Fatalf("first program failed: %v", err)
	}
	out, err := runSource(t, interp, "var x = 1; { var y = x; print g(); }")
	if err != nil {
		t.Fatalf("second program failed: %v", err)
	}
	if out != "local\n" {
		t.Fatalf("expected closure to use its own binding table, got %q", out)
	}
	if interp.bindings != nil {
		t.Fatalf("expected binding table to be released after Interpret")
	}
}

func TestDefineNative(t *testing.T) {
	interp := New()
	interp.DefineNative("double", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		num, ok := args[0].(runtime.NumberValue)
		if !ok {
			return nil, errors.New("expected a number")
		}
		return runtime.NumberValue{Val: num.Val * 2}, nil
	})
	out, err := runSource(t, interp, "print double(21);")
	if err != nil {
		t.Fatalf("program failed: %v", err)
	}
	if out != "42\n" {
		t.Fatalf("expected 42, got %q", out)
	}

	_, err = runSource(t, interp, `double("x");`)
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) || rtErr.Kind != NativeError {
		t.Fatalf("expected native error, got %v", err)
	}
	if rtErr.Message != "double: expected a number" {
		t.Fatalf("unexpected message %q", rtErr.Message)
	}

	_, err = runSource(t, interp, "double();")
	if !errors.As(err, &rtErr) || rtErr.Kind != ArityError {
		t.Fatalf("expected arity error, got %v", err)
	}
}

func TestClassMethodsCloseOverSuperFrame(t *testing.T) {
	interp := New()
	if _, err := runSource(t, interp, "class A { m() {} } class B < A { m() {} }"); err != nil {
		t.Fatalf("program failed: %v", err)
	}
	a := globalValue(t, interp, "A").(*runtime.ClassValue)
	b := globalValue(t, interp, "B").(*runtime.ClassValue)
	if a.Methods["m"].Closure != interp.GlobalEnvironment() {
		t.Fatalf("expected base methods to close over the defining frame")
	}
	closure := b.Methods["m"].Closure
	if keys := closure.Keys(); len(keys) != 1 || keys[0] != "super" {
		t.Fatalf("expected a frame binding only super, got %v", keys)
	}
	if closure.Parent() != interp.GlobalEnvironment() {
		t.Fatalf("expected super frame to wrap the defining frame")
	}
	if b.Superclass != a {
		t.Fatalf("expected superclass link")
	}
}

func TestSetOutputNilDiscards(t *testing.T) {
	interp := New()
	interp.SetOutput(nil)
	if _, err := interp.executeStatement(ast.PrintStmt(ast.Str("dropped")), interp.GlobalEnvironment()); err != nil {
		t.Fatalf("print failed: %v", err)
	}
}

func TestRuntimeErrorKeepsEarlierGlobals(t *testing.T) {
	interp := New()
	_, err := runSource(t, interp, "var a = 1;\nprint nope;\nvar b = 2;")
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected runtime error, got %v", err)
	}
	if rtErr.Kind != UndefinedVariable || rtErr.Error() != "Undefined variable 'nope'.\n[line 2]" {
		t.Fatalf("unexpected error %v (%s)", rtErr, rtErr.Kind)
	}
	globalValue(t, interp, "a")
	if _, err := interp.GlobalEnvironment().Get("b"); err == nil {
		t.Fatalf("statements after the error must not run")
	}
	if !strings.Contains(err.Error(), "[line 2]") {
		t.Fatalf("expected line in rendering, got %q", err.Error())
	}
}
