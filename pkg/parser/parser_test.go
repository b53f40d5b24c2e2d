package parser_test

import (
	"errors"
	"strings"
	"testing"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/token"
)

func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := parser.ParseProgram(source)
	if err != nil {
		t.Fatalf("ParseProgram(%q) returned error: %v", source, err)
	}
	return program
}

func singleExpression(t *testing.T, source string) ast.Expression {
	t.Helper()
	program := mustParse(t, source)
	if len(program.Statements) != 1 {
		t.Fatalf("expected single statement, got %d", len(program.Statements))
	}
	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected expression statement, got %T", program.Statements[0])
	}
	return stmt.Expression
}

func TestParsePrecedence(t *testing.T) {
	expr := singleExpression(t, "1 + 2 * 3 == 7 and !false;")
	logical, ok := expr.(*ast.Logical)
	if !ok || logical.Operator.Kind != token.And {
		t.Fatalf("expected top-level and, got %#v", expr)
	}
	eq, ok := logical.Left.(*ast.Binary)
	if !ok || eq.Operator.Kind != token.EqualEqual {
		t.Fatalf("expected equality on the left, got %#v", logical.Left)
	}
	sum, ok := eq.Left.(*ast.Binary)
	if !ok || sum.Operator.Kind != token.Plus {
		t.Fatalf("expected addition, got %#v", eq.Left)
	}
	if product, ok := sum.Right.(*ast.Binary); !ok || product.Operator.Kind != token.Star {
		t.Fatalf("expected multiplication to bind tighter, got %#v", sum.Right)
	}
	if unary, ok := logical.Right.(*ast.Unary); !ok || unary.Operator.Kind != token.Bang {
		t.Fatalf("expected unary not, got %#v", logical.Right)
	}
}

func TestParseCommaAndTernary(t *testing.T) {
	expr := singleExpression(t, "a = 1, b ? c : d ? e : f;")
	comma, ok := expr.(*ast.Binary)
	if !ok || comma.Operator.Kind != token.Comma {
		t.Fatalf("expected comma at top level, got %#v", expr)
	}
	if _, ok := comma.Left.(*ast.Assign); !ok {
		t.Fatalf("expected assignment on the left of comma, got %T", comma.Left)
	}
	ternary, ok := comma.Right.(*ast.Ternary)
	if !ok {
		t.Fatalf("expected ternary on the right, got %T", comma.Right)
	}
	if _, ok := ternary.Else.(*ast.Ternary); !ok {
		t.Fatalf("expected ternary to be right-associative, got %T", ternary.Else)
	}
}

func TestParseAssignmentTargets(t *testing.T) {
	if _, ok := singleExpression(t, "a = b = 1;").(*ast.Assign); !ok {
		t.Fatalf("expected assignment")
	}
	set, ok := singleExpression(t, "obj.field.inner = 2;").(*ast.Set)
	if !ok {
		t.Fatalf("expected property set")
	}
	if set.Name.Lexeme != "inner" {
		t.Fatalf("expected set of inner, got %s", set.Name.Lexeme)
	}
	if _, ok := set.Object.(*ast.Get); !ok {
		t.Fatalf("expected get chain as set target, got %T", set.Object)
	}

	_, err := parser.ParseProgram("1 + 2 = 3;")
	if err == nil || !strings.Contains(err.Error(), "Invalid assignment target.") {
		t.Fatalf("expected invalid assignment target error, got %v", err)
	}
}

func TestParseForDesugarsToWhileWithIncrement(t *testing.T) {
	program := mustParse(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	block, ok := program.Statements[0].(*ast.Block)
	if !ok || len(block.Statements) != 2 {
		t.Fatalf("expected block wrapping initializer and loop, got %#v", program.Statements[0])
	}
	if _, ok := block.Statements[0].(*ast.VarDeclaration); !ok {
		t.Fatalf("expected var initializer, got %T", block.Statements[0])
	}
	loop, ok := block.Statements[1].(*ast.While)
	if !ok {
		t.Fatalf("expected while loop, got %T", block.Statements[1])
	}
	if loop.Increment == nil {
		t.Fatalf("expected increment to be attached to the loop")
	}
	if _, ok := loop.Body.(*ast.Print); !ok {
		t.Fatalf("expected print body, got %T", loop.Body)
	}

	bare := mustParse(t, "for (;;) break;")
	infinite, ok := bare.Statements[0].(*ast.While)
	if !ok {
		t.Fatalf("expected bare while, got %T", bare.Statements[0])
	}
	if lit, ok := infinite.Condition.(*ast.BooleanLiteral); !ok || !lit.Value {
		t.Fatalf("expected missing condition to become true, got %#v", infinite.Condition)
	}
	if infinite.Increment != nil {
		t.Fatalf("expected no increment")
	}
}

func TestParseFunctionsAndClasses(t *testing.T) {
	program := mustParse(t, `
fun add(a, b) { return a + b; }
var anon = fun (x) { return x; };
var named = fun inner() {};
fun () {};
class B < A {
  init(x) { this.x = x; }
  greet() { return super.greet(); }
}
`)
	if len(program.Statements) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(program.Statements))
	}
	fn, ok := program.Statements[0].(*ast.FunctionDeclaration)
	if !ok || fn.Name.Lexeme != "add" || len(fn.Params) != 2 {
		t.Fatalf("unexpected function declaration %#v", program.Statements[0])
	}
	anon := program.Statements[1].(*ast.VarDeclaration).Initializer.(*ast.FunctionExpression)
	if anon.Name != nil || len(anon.Params) != 1 {
		t.Fatalf("unexpected anonymous function %#v", anon)
	}
	named := program.Statements[2].(*ast.VarDeclaration).Initializer.(*ast.FunctionExpression)
	if named.Name == nil || named.Name.Lexeme != "inner" {
		t.Fatalf("expected named function expression, got %#v", named)
	}
	if _, ok := program.Statements[3].(*ast.ExpressionStatement); !ok {
		t.Fatalf("expected anonymous function statement, got %T", program.Statements[3])
	}
	class, ok := program.Statements[4].(*ast.ClassDeclaration)
	if !ok {
		t.Fatalf("expected class declaration, got %T", program.Statements[4])
	}
	if class.Superclass == nil || class.Superclass.Name.Lexeme != "A" {
		t.Fatalf("expected superclass A, got %#v", class.Superclass)
	}
	if len(class.Methods) != 2 || class.Methods[0].Name.Lexeme != "init" {
		t.Fatalf("unexpected methods %#v", class.Methods)
	}
}

func TestParseNumbersUseSlots(t *testing.T) {
	program := mustParse(t, "var a = 1; { var b = a; b = a; }")
	if program.Slots != 3 {
		t.Fatalf("expected 3 use slots, got %d", program.Slots)
	}
}

func TestParseReportsAllErrors(t *testing.T) {
	_, err := parser.ParseProgram(`
var = 1;
print 2;
if (true print 3;
class { }
`)
	var list parser.ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("expected ErrorList, got %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 errors, got %d:\n%v", len(list), err)
	}
	want := []string{
		"[line 2] Error at '=': Expect variable name.",
		"[line 4] Error at 'print': Expect ')' after if condition.",
		"[line 5] Error at '{': Expect class name.",
	}
	for i, msg := range want {
		if list[i].Error() != msg {
			t.Fatalf("error %d: expected %q, got %q", i, msg, list[i].Error())
		}
	}
	if parser.IsIncomplete(err) {
		t.Fatalf("malformed input should not be reported as incomplete")
	}
}

func TestParseIncompleteInput(t *testing.T) {
	for _, source := range []string{
		"fun f() {",
		"print (1 +",
		"var s = \"unterminated",
		"class A {",
	} {
		_, err := parser.ParseProgram(source)
		if err == nil {
			t.Fatalf("%q: expected error", source)
		}
		if !parser.IsIncomplete(err) {
			t.Fatalf("%q: expected incomplete input, got %v", source, err)
		}
	}
}

func TestParseScanErrorsAreReported(t *testing.T) {
	_, err := parser.ParseProgram("var a = 1; @")
	if err == nil || !strings.Contains(err.Error(), "[line 1] Error: Unexpected character '@'.") {
		t.Fatalf("expected scan error, got %v", err)
	}
}
