package driver

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"lox/interpreter-go/pkg/interpreter"
	"lox/interpreter-go/pkg/resolver"
)

func programFromFiles(t *testing.T, files ...[2]string) *Program {
	t.Helper()
	dir := t.TempDir()
	loader := NewLoader(dir)
	program := &Program{}
	for i, file := range files {
		path := filepath.Join(dir, file[0])
		writeFile(t, path, file[1])
		kind := SourcePrelude
		if i == len(files)-1 {
			kind = SourceEntry
		}
		src, err := loader.parseFile(path, "test", kind)
		if err != nil {
			t.Fatalf("parse %s: %v", file[0], err)
		}
		program.Sources = append(program.Sources, src)
	}
	return program
}

func TestSessionStaticErrorsBlockEveryScript(t *testing.T) {
	program := programFromFiles(t,
		[2]string{"prelude.lox", `print "must not run";`},
		[2]string{"main.lox", "return 1;\n{ var a = a; }"},
	)
	var out bytes.Buffer
	err := NewSession(&out).Run(program)
	if out.Len() != 0 {
		t.Fatalf("expected nothing to run, got %q", out.String())
	}
	var static resolver.ErrorList
	if !errors.As(err, &static) || len(static) != 2 {
		t.Fatalf("expected two static errors, got %v", err)
	}
	want := "[line 1] Error at 'return': Cannot return from top-level code.\n" +
		"[line 2] Error at 'a': Cannot read local variable in its own initializer."
	if err.Error() != want {
		t.Fatalf("rendering = %q, want %q", err.Error(), want)
	}
	if ExitCode(err) != ExitDataErr {
		t.Fatalf("ExitCode = %d, want %d", ExitCode(err), ExitDataErr)
	}
}

func TestSessionCheckReportsEveryFailingScript(t *testing.T) {
	program := programFromFiles(t,
		[2]string{"first.lox", "this;"},
		[2]string{"fine.lox", "var ok = 1;"},
		[2]string{"main.lox", "break;"},
	)
	var out bytes.Buffer
	err := NewSession(&out).Run(program)
	if out.Len() != 0 {
		t.Fatalf("expected nothing to run, got %q", out.String())
	}
	var sources []*SourceError
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var srcErr *SourceError
		if !errors.As(e, &srcErr) {
			t.Fatalf("expected SourceError, got %T", e)
		}
		sources = append(sources, srcErr)
	}
	if len(sources) != 2 {
		t.Fatalf("expected two failing scripts, got %v", err)
	}
	if filepath.Base(sources[0].Path) != "first.lox" || sources[1].Kind != SourceEntry {
		t.Fatalf("unexpected failing scripts %#v, %#v", sources[0], sources[1])
	}
	for _, fragment := range []string{
		"Cannot use 'this' outside of a class.",
		"[line 1] Error at 'break': Cannot break from non-loop code.",
	} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error missing %q: %q", fragment, err.Error())
		}
	}
	if program.Sources[1].Bindings == nil {
		t.Fatalf("expected the valid script to keep its bindings")
	}
	if ExitCode(err) != ExitDataErr {
		t.Fatalf("ExitCode = %d, want %d", ExitCode(err), ExitDataErr)
	}
}

func TestSessionRuntimeErrorInPrelude(t *testing.T) {
	program := programFromFiles(t,
		[2]string{"prelude.lox", "print \"before\";\nprint -\"x\";"},
		[2]string{"main.lox", `print "after";`},
	)
	var out bytes.Buffer
	err := NewSession(&out).Run(program)
	if out.String() != "before\n" {
		t.Fatalf("output = %q", out.String())
	}
	var srcErr *SourceError
	if !errors.As(err, &srcErr) || srcErr.Kind != SourcePrelude {
		t.Fatalf("expected prelude source error, got %v", err)
	}
	var rtErr *interpreter.RuntimeError
	if !errors.As(err, &rtErr) || rtErr.Token.Line != 2 {
		t.Fatalf("expected runtime error on line 2, got %v", err)
	}
	if !strings.HasSuffix(err.Error(), "Operand must be a number.\n[line 2]") {
		t.Fatalf("unexpected rendering %q", err.Error())
	}
	if ExitCode(err) != ExitSoftware || IsFatal(err) {
		t.Fatalf("runtime errors exit %d and are not fatal", ExitSoftware)
	}
}

func TestSessionEvalSharesGlobals(t *testing.T) {
	var out bytes.Buffer
	session := NewSession(&out)
	steps := []string{
		"var count = 0;",
		"fun bump() { count = count + 1; return count; }",
		"{ var local = bump(); print local; }",
		"print bump();",
	}
	for _, step := range steps {
		if err := session.Eval(step); err != nil {
			t.Fatalf("Eval(%q): %v", step, err)
		}
	}
	if out.String() != "1\n2\n" {
		t.Fatalf("output = %q", out.String())
	}

	if err := session.Eval("print nope;"); ExitCode(err) != ExitSoftware {
		t.Fatalf("expected runtime error, got %v", err)
	}
	if err := session.Eval("print count;"); err != nil {
		t.Fatalf("session must survive a runtime error: %v", err)
	}
	if err := session.Eval("print (;"); ExitCode(err) != ExitDataErr {
		t.Fatalf("expected syntax error, got %v", err)
	}
	if out.String() != "1\n2\n2\n" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestSessionEvalDoesNotTruncateAtNulByte(t *testing.T) {
	var out bytes.Buffer
	session := NewSession(&out)
	err := session.Eval("print 1;\x00print 2;")
	if err == nil || !strings.Contains(err.Error(), "Unexpected character 'U+0000'.") {
		t.Fatalf("expected a lexical error for NUL, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected nothing to run, got %q", out.String())
	}
	if err := session.Eval("print \"a\x00b\";"); err != nil {
		t.Fatalf("string holding NUL failed: %v", err)
	}
	if out.String() != "a\x00b\n" {
		t.Fatalf("stdout = %q", out.String())
	}
}

func TestSessionCheckStoresBindings(t *testing.T) {
	program := programFromFiles(t,
		[2]string{"main.lox", "var g = 1; { var l = g; print l; }"},
	)
	if err := NewSession(nil).Check(program); err != nil {
		t.Fatalf("Check: %v", err)
	}
	bindings := program.Sources[0].Bindings
	if bindings == nil || bindings.Locals() != 1 {
		t.Fatalf("expected one local use in binding table, got %#v", bindings)
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{errors.New("boom"), ExitFailure},
		{&interpreter.InternalError{Err: errors.New("mismatch")}, ExitSoftware},
		{&SourceError{Kind: SourceEntry, Err: resolver.ErrorList{&resolver.StaticError{Message: "x"}}}, ExitDataErr},
	}
	for _, tc := range cases {
		if got := ExitCode(tc.err); got != tc.want {
			t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
	if !IsFatal(&SourceError{Err: &interpreter.InternalError{Err: errors.New("x")}}) {
		t.Fatalf("internal errors are fatal")
	}
}
