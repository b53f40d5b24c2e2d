package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lox/interpreter-go/pkg/driver"
)

const cliToolVersion = "lox 0.1.0"

var errManifestNotFound = errors.New(driver.ManifestName + " not found")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return runRepl(nil)
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return driver.ExitOK
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return driver.ExitOK
	case "repl":
		return runRepl(args[1:])
	case "run":
		return runEntry(args[1:])
	case "check":
		return runCheck(args[1:])
	case "deps":
		return runDeps(args[1:])
	default:
		if strings.HasPrefix(args[0], "-") {
			fmt.Fprintf(os.Stderr, "unknown flag %s\n", args[0])
			printUsage()
			return driver.ExitUsage
		}
		return runEntry(args)
	}
}

// runEntry runs a script file, a named manifest target, or the manifest's
// default executable target.
func runEntry(args []string) int {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return driver.ExitUsage
	}

	var manifest *driver.Manifest
	if len(args) == 0 || !looksLikePathCandidate(args[0]) {
		m, err := loadManifestFrom("")
		switch {
		case err == nil:
			manifest = m
		case errors.Is(err, errManifestNotFound) && len(args) == 0:
			fmt.Fprintf(os.Stderr, "lox run requires a target or source file (%s not found)\n", driver.ManifestName)
			return driver.ExitUsage
		case errors.Is(err, errManifestNotFound):
			// no manifest; the argument must be a file
		default:
			fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
			return driver.ExitFailure
		}
	}

	if manifest != nil {
		var target *driver.TargetSpec
		if len(args) == 0 {
			t, err := manifest.DefaultExecutableTarget()
			if err != nil {
				fmt.Fprintf(os.Stderr, "manifest error: %v\n", err)
				return driver.ExitFailure
			}
			target = t
		} else if t, ok := manifest.FindTarget(args[0]); ok {
			target = t
		}
		if target != nil {
			return executeTarget(manifest, target)
		}
	}

	return executeFile(args[0])
}

func executeTarget(manifest *driver.Manifest, target *driver.TargetSpec) int {
	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return driver.ExitFailure
	}
	home, err := resolveLoxHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve LOX_HOME: %v\n", err)
		return driver.ExitFailure
	}
	program, err := driver.NewLoader(home).LoadTarget(manifest, lock, target)
	if err != nil {
		return reportError(err)
	}
	return reportError(driver.NewSession(os.Stdout).Run(program))
}

func executeFile(path string) int {
	if strings.TrimSpace(path) == "" {
		fmt.Fprintln(os.Stderr, "lox run requires a source file")
		return driver.ExitUsage
	}
	program, err := driver.NewLoader("").LoadFile(path)
	if err != nil {
		return reportError(err)
	}
	return reportError(driver.NewSession(os.Stdout).Run(program))
}

// runCheck parses and resolves scripts without running them.
func runCheck(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "lox check requires at least one source file")
		return driver.ExitUsage
	}
	status := driver.ExitOK
	for _, path := range args {
		program, err := driver.NewLoader("").LoadFile(path)
		if err == nil {
			err = driver.NewSession(nil).Check(program)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s:\n", path)
			if code := reportError(err); code > status {
				status = code
			}
		}
	}
	return status
}

// reportError prints err to stderr and returns the matching exit status.
// Diagnostics from the program itself are printed as-is.
func reportError(err error) int {
	code := driver.ExitCode(err)
	switch code {
	case driver.ExitOK:
	case driver.ExitDataErr, driver.ExitSoftware:
		fmt.Fprintln(os.Stderr, err.Error())
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return code
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		start = cwd
	}
	manifestPath, err := findManifest(start)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(manifestPath)
}

func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	lockPath := filepath.Join(manifest.Dir(), driver.LockfileName)
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if len(manifest.Dependencies) > 0 {
				return nil, fmt.Errorf("%s missing for %q; run `lox deps install`", driver.LockfileName, manifest.Name)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile %s: %w", lockPath, err)
	}
	if lock.Root != manifest.Name {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	return lock, nil
}

func looksLikePathCandidate(arg string) bool {
	if arg == "" {
		return false
	}
	if strings.Contains(arg, "/") || strings.Contains(arg, "\\") {
		return true
	}
	return filepath.Ext(arg) == ".lox" || strings.HasPrefix(arg, ".")
}

func findManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, driver.ManifestName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", driver.ManifestName, origin, errManifestNotFound)
		}
		dir = parent
	}
}

func resolveLoxHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("LOX_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve LOX_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".lox"), nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lox [repl]")
	fmt.Fprintln(os.Stderr, "  lox <file.lox>")
	fmt.Fprintln(os.Stderr, "  lox run [target | file.lox]")
	fmt.Fprintln(os.Stderr, "  lox check <file.lox> ...")
	fmt.Fprintln(os.Stderr, "  lox deps install")
	fmt.Fprintln(os.Stderr, "  lox deps update [dependency ...]")
	fmt.Fprintln(os.Stderr, "  lox version")
}
