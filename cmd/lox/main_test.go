package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lox/interpreter-go/pkg/driver"
)

func TestFindManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, driver.ManifestName), "name: test\n")
	child := filepath.Join(root, "src", "app")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	found, err := findManifest(child)
	if err != nil {
		t.Fatalf("findManifest returned error: %v", err)
	}
	if want := filepath.Join(root, driver.ManifestName); found != want {
		t.Fatalf("findManifest = %q, want %q", found, want)
	}
}

func TestResolveLoxHomeEnv(t *testing.T) {
	target := filepath.Join(t.TempDir(), "cache")
	t.Setenv("LOX_HOME", target)

	got, err := resolveLoxHome()
	if err != nil {
		t.Fatalf("resolveLoxHome error: %v", err)
	}
	if got != target {
		t.Fatalf("resolveLoxHome = %q, want %q", got, target)
	}
}

func TestResolveLoxHomeDefault(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("LOX_HOME", "")
	t.Setenv("HOME", tmp)

	got, err := resolveLoxHome()
	if err != nil {
		t.Fatalf("resolveLoxHome error: %v", err)
	}
	if want := filepath.Join(tmp, ".lox"); got != want {
		t.Fatalf("resolveLoxHome = %q, want %q", got, want)
	}
}

func TestLoadLockfileForManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, driver.ManifestName), "name: app\n")
	manifest, err := driver.LoadManifest(filepath.Join(dir, driver.ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if lock, err := loadLockfileForManifest(manifest); err != nil || lock != nil {
		t.Fatalf("expected no lockfile and no error, got %v, %v", lock, err)
	}

	writeFile(t, filepath.Join(dir, driver.ManifestName), "name: app\ndependencies:\n  util: ../util\n")
	manifest, err = driver.LoadManifest(filepath.Join(dir, driver.ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if _, err := loadLockfileForManifest(manifest); err == nil || !strings.Contains(err.Error(), "run `lox deps install`") {
		t.Fatalf("expected missing lockfile error, got %v", err)
	}

	other := driver.NewLockfile("other", cliToolVersion)
	if err := driver.WriteLockfile(other, filepath.Join(dir, driver.LockfileName)); err != nil {
		t.Fatalf("WriteLockfile: %v", err)
	}
	if _, err := loadLockfileForManifest(manifest); err == nil || !strings.Contains(err.Error(), "does not match") {
		t.Fatalf("expected root mismatch error, got %v", err)
	}
}

func TestRunFileExitStatuses(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "ok.lox"), `
class Greeter {
  init(name) { this.name = name; }
  greet() { return "hello " + this.name; }
}
print Greeter("lox").greet();
`)
	writeFile(t, filepath.Join(dir, "static.lox"), "print \"never\";\nreturn 1;\n")
	writeFile(t, filepath.Join(dir, "runtime.lox"), "print \"first\";\nprint 1 + nil;\nprint \"never\";\n")

	cases := []struct {
		args   []string
		code   int
		stdout string
		stderr string
	}{
		{[]string{"ok.lox"}, driver.ExitOK, "hello lox\n", ""},
		{[]string{"run", "./ok.lox"}, driver.ExitOK, "hello lox\n", ""},
		{[]string{"static.lox"}, driver.ExitDataErr, "", "[line 2] Error at 'return': Cannot return from top-level code.\n"},
		{[]string{"runtime.lox"}, driver.ExitSoftware, "first\n", "Operands must be two numbers or two strings.\n[line 2]\n"},
	}
	for _, tc := range cases {
		code, stdout, stderr := captureCLI(t, tc.args)
		if code != tc.code || stdout != tc.stdout || stderr != tc.stderr {
			t.Fatalf("lox %v = (%d, %q, %q), want (%d, %q, %q)", tc.args, code, stdout, stderr, tc.code, tc.stdout, tc.stderr)
		}
	}

	code, _, stderr := captureCLI(t, []string{"missing.lox"})
	if code != driver.ExitFailure || !strings.Contains(stderr, "missing.lox") {
		t.Fatalf("missing file: code %d stderr %q", code, stderr)
	}
}

func TestRunCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.lox")
	bad := filepath.Join(dir, "bad.lox")
	writeFile(t, good, "print \"checked, not run\";")
	writeFile(t, bad, "class A < A {}\nbreak;")

	code, stdout, stderr := captureCLI(t, []string{"check", good})
	if code != driver.ExitOK || stdout != "" || stderr != "" {
		t.Fatalf("check good = (%d, %q, %q)", code, stdout, stderr)
	}

	code, _, stderr = captureCLI(t, []string{"check", good, bad})
	if code != driver.ExitDataErr {
		t.Fatalf("check bad exited %d", code)
	}
	for _, fragment := range []string{
		bad + ":",
		"[line 1] Error at 'A': A class cannot inherit from itself.",
		"[line 2] Error at 'break': Cannot break from non-loop code.",
	} {
		if !strings.Contains(stderr, fragment) {
			t.Fatalf("stderr missing %q: %q", fragment, stderr)
		}
	}

	if code, _, _ := captureCLI(t, []string{"check"}); code != driver.ExitUsage {
		t.Fatalf("check without files exited %d", code)
	}
}

func TestRunUsageAndVersion(t *testing.T) {
	if code, stdout, _ := captureCLI(t, []string{"version"}); code != 0 || stdout != cliToolVersion+"\n" {
		t.Fatalf("version = (%d, %q)", code, stdout)
	}
	if code, _, stderr := captureCLI(t, []string{"--bogus"}); code != driver.ExitUsage || !strings.Contains(stderr, "Usage:") {
		t.Fatalf("unknown flag = (%d, %q)", code, stderr)
	}
	if code, _, _ := captureCLI(t, []string{"run", "a.lox", "b.lox"}); code != driver.ExitUsage {
		t.Fatalf("extra arguments exited %d", code)
	}
	if code, _, _ := captureCLI(t, []string{"deps"}); code != driver.ExitUsage {
		t.Fatalf("deps without subcommand exited %d", code)
	}
	if code, _, _ := captureCLI(t, []string{"repl", "extra"}); code != driver.ExitUsage {
		t.Fatalf("repl with arguments exited %d", code)
	}
}

func TestRunManifestTargets(t *testing.T) {
	project := t.TempDir()
	writeFile(t, filepath.Join(project, driver.ManifestName), `
name: app
prelude: [lib/helpers.lox]
targets:
  shared:
    type: library
  main: src/main.lox
  tool: src/tool.lox
`)
	writeFile(t, filepath.Join(project, "lib", "helpers.lox"), `fun twice(x) { return x * 2; }`)
	writeFile(t, filepath.Join(project, "src", "main.lox"), `print twice(21);`)
	writeFile(t, filepath.Join(project, "src", "tool.lox"), `print "tool " + twice(2);`)
	chdir(t, filepath.Join(project, "src"))

	if code, stdout, stderr := captureCLI(t, []string{"run"}); code != 0 || stdout != "42\n" {
		t.Fatalf("run default target = (%d, %q, %q)", code, stdout, stderr)
	}
	if code, stdout, stderr := captureCLI(t, []string{"run", "tool"}); code != 0 || stdout != "tool 4\n" {
		t.Fatalf("run tool target = (%d, %q, %q)", code, stdout, stderr)
	}
	if code, _, stderr := captureCLI(t, []string{"run", "shared"}); code != driver.ExitFailure || !strings.Contains(stderr, "cannot be run") {
		t.Fatalf("run library target = (%d, %q)", code, stderr)
	}
}

func TestRunWithoutManifestRequiresFile(t *testing.T) {
	chdir(t, t.TempDir())
	code, _, stderr := captureCLI(t, []string{"run"})
	if code != driver.ExitUsage || !strings.Contains(stderr, "requires a target or source file") {
		t.Fatalf("run without manifest = (%d, %q)", code, stderr)
	}
}
