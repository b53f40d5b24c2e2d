package interpreter

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/resolver"
)

// runFixture replays a fixture directory: it parses and resolves the entry
// script, runs it, and compares static errors, the runtime error and printed
// lines against the manifest.
func runFixture(t testingT, dir string) {
	t.Helper()
	manifest := readManifest(t, dir)
	entry := manifest.Entry
	if entry == "" {
		entry = "source.lox"
	}
	source := readSource(t, filepath.Join(dir, entry))

	program, err := parser.ParseProgram(source)
	if err != nil {
		var list parser.ErrorList
		if !errors.As(err, &list) {
			t.Fatalf("fixture %s: parse failed: %v", dir, err)
		}
		messages := make([]string, 0, len(list))
		for _, perr := range list {
			messages = append(messages, perr.Error())
		}
		checkStaticErrors(t, dir, manifest.Expect.StaticErrors, messages)
		return
	}

	bindings, staticErrs := resolver.Resolve(program)
	if len(staticErrs) > 0 {
		messages := make([]string, 0, len(staticErrs))
		for _, serr := range staticErrs {
			messages = append(messages, serr.Error())
		}
		checkStaticErrors(t, dir, manifest.Expect.StaticErrors, messages)
		return
	}
	if len(manifest.Expect.StaticErrors) > 0 {
		t.Fatalf("fixture %s expected static errors %v", dir, manifest.Expect.StaticErrors)
	}

	interp := New()
	var out bytes.Buffer
	interp.SetOutput(&out)
	err = interp.Interpret(program, bindings)

	if len(manifest.Expect.Errors) > 0 {
		if err == nil {
			t.Fatalf("fixture %s expected evaluation error", dir)
		}
		msg := extractErrorMessage(err)
		if !contains(manifest.Expect.Errors, msg) {
			t.Fatalf("fixture %s expected error in %v, got %s", dir, manifest.Expect.Errors, msg)
		}
	} else if err != nil {
		t.Fatalf("fixture %s evaluation error: %v", dir, err)
	}

	stdout := splitLines(out.String())
	if !equalLines(stdout, manifest.Expect.Stdout) {
		t.Fatalf("fixture %s expected stdout %q, got %q", dir, manifest.Expect.Stdout, stdout)
	}
}

func checkStaticErrors(t testingT, dir string, expected, actual []string) {
	t.Helper()
	if len(expected) == 0 {
		t.Fatalf("fixture %s: unexpected static errors:\n%s", dir, strings.Join(actual, "\n"))
	}
	if !equalLines(expected, actual) {
		t.Fatalf("fixture %s expected static errors %q, got %q", dir, expected, actual)
	}
}

func extractErrorMessage(err error) string {
	var rtErr *RuntimeError
	if errors.As(err, &rtErr) {
		return rtErr.Message
	}
	return err.Error()
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for idx := range a {
		if a[idx] != b[idx] {
			return false
		}
	}
	return true
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
