package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/resolver"
)

// SourceKind records why a script is part of a program.
type SourceKind int

const (
	SourceDependency SourceKind = iota
	SourcePrelude
	SourceEntry
)

func (k SourceKind) String() string {
	switch k {
	case SourceDependency:
		return "dependency prelude"
	case SourcePrelude:
		return "prelude"
	case SourceEntry:
		return "entry"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// Source is one parsed script. Bindings is filled in by Session.Check.
type Source struct {
	Path     string
	Package  string
	Kind     SourceKind
	Program  *ast.Program
	Bindings *resolver.Bindings
}

// Program lists scripts in the order they run into one global frame.
type Program struct {
	Sources []*Source
}

// Entry returns the entry script, or nil for prelude-only programs.
func (p *Program) Entry() *Source {
	if p == nil || len(p.Sources) == 0 {
		return nil
	}
	last := p.Sources[len(p.Sources)-1]
	if last.Kind != SourceEntry {
		return nil
	}
	return last
}

// SourceError attributes a failure to the script it came from.
type SourceError struct {
	Path string
	Kind SourceKind
	Err  error
}

func (e *SourceError) Error() string {
	if e.Kind == SourceEntry || e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("in %s %s:\n%v", e.Kind, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// ErrMissingLockfile is returned when a manifest declares dependencies that
// have not been installed.
var ErrMissingLockfile = errors.New("lox.lock not found; run `lox deps install`")

// Loader reads and parses the scripts making up a program. Nothing is
// resolved or executed here.
type Loader struct {
	loxHome string
}

// NewLoader constructs a loader reading git dependencies from the cache
// under loxHome.
func NewLoader(loxHome string) *Loader {
	return &Loader{loxHome: loxHome}
}

// LoadFile builds a program from a single script.
func (l *Loader) LoadFile(path string) (*Program, error) {
	entry, err := l.parseFile(path, "", SourceEntry)
	if err != nil {
		return nil, err
	}
	return &Program{Sources: []*Source{entry}}, nil
}

// LoadTarget assembles dependency preludes, the project prelude and the
// target's main script. A nil target loads the preludes only.
func (l *Loader) LoadTarget(manifest *Manifest, lock *Lockfile, target *TargetSpec) (*Program, error) {
	if manifest == nil {
		return nil, fmt.Errorf("loader: nil manifest")
	}
	if target != nil && !target.Type.RequiresMain() {
		return nil, fmt.Errorf("loader: target %q is a %s and cannot be run", target.OriginalName, target.Type)
	}
	if len(manifest.Dependencies) > 0 && lock == nil {
		return nil, ErrMissingLockfile
	}
	for _, name := range sortedKeys(manifest.Dependencies) {
		if _, ok := lock.Find(name); !ok {
			return nil, fmt.Errorf("loader: dependency %q missing from %s; run `lox deps install`", name, LockfileName)
		}
	}

	program := &Program{}
	packages, err := lock.LoadOrder()
	if err != nil {
		return nil, err
	}
	for _, pkg := range packages {
		dir := pkg.Dir(l.loxHome)
		depManifest, err := LoadManifest(filepath.Join(dir, ManifestName))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("loader: dependency %s: %w", pkg.Name, err)
		}
		for _, path := range depManifest.PreludePaths() {
			src, err := l.parseFile(path, pkg.Name, SourceDependency)
			if err != nil {
				return nil, err
			}
			program.Sources = append(program.Sources, src)
		}
	}

	for _, path := range manifest.PreludePaths() {
		src, err := l.parseFile(path, manifest.Name, SourcePrelude)
		if err != nil {
			return nil, err
		}
		program.Sources = append(program.Sources, src)
	}

	if target != nil {
		entry, err := l.parseFile(manifest.MainPath(target), manifest.Name, SourceEntry)
		if err != nil {
			return nil, err
		}
		program.Sources = append(program.Sources, entry)
	}
	return program, nil
}

func (l *Loader) parseFile(path, pkg string, kind SourceKind) (*Source, error) {
	if path == "" {
		return nil, fmt.Errorf("loader: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", abs, err)
	}
	program, err := parser.ParseProgram(string(data))
	if err != nil {
		return nil, &SourceError{Path: abs, Kind: kind, Err: err}
	}
	return &Source{Path: abs, Package: pkg, Kind: kind, Program: program}, nil
}
