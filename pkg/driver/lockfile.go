package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LockfileName is written next to lox.yml by `lox deps install`.
const LockfileName = "lox.lock"

const (
	sourcePathPrefix = "path:"
	sourceGitPrefix  = "git:"
)

// Lockfile models the lox.lock contents.
type Lockfile struct {
	Path      string
	Root      string
	Generated string
	Tool      string
	Packages  []*LockedPackage
}

// LockedPackage captures a single resolved dependency. For path dependencies
// Version is the dependency manifest's version; for git dependencies it is the
// pin, "<tag or branch>@<commit>" or the bare commit for rev pins.
type LockedPackage struct {
	Name         string
	Version      string
	Source       string
	Checksum     string
	Dependencies []string
}

// NewLockfile constructs a lockfile with metadata seeded for the provided root.
func NewLockfile(root, tool string) *Lockfile {
	return &Lockfile{
		Root:      sanitizeSegment(root),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
		Packages:  []*LockedPackage{},
	}
}

// PathSource renders the lockfile source of a local dependency.
func PathSource(dir string) string {
	return sourcePathPrefix + filepath.ToSlash(filepath.Clean(dir))
}

// GitSource renders the lockfile source of a git dependency.
func GitSource(url string) string {
	return sourceGitPrefix + strings.TrimSpace(url)
}

// LoadLockfile parses lox.lock from disk.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := raw.toLockfile()
	lock.Path = abs
	return lock, nil
}

// WriteLockfile serialises the lockfile back to disk, refreshing metadata.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}

	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs
	lock.normalize()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock.toDisk()); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

// Find returns the locked package with the given name.
func (l *Lockfile) Find(name string) (*LockedPackage, bool) {
	if l == nil {
		return nil, false
	}
	name = sanitizeSegment(name)
	for _, pkg := range l.Packages {
		if pkg != nil && pkg.Name == name {
			return pkg, true
		}
	}
	return nil, false
}

// LoadOrder lists packages so that each appears after the packages it depends
// on. Independent packages keep lockfile (name) order. Edges to packages
// missing from the lockfile are ignored; a cycle is an error.
func (l *Lockfile) LoadOrder() ([]*LockedPackage, error) {
	if l == nil {
		return nil, nil
	}
	byName := make(map[string]*LockedPackage, len(l.Packages))
	for _, pkg := range l.Packages {
		if pkg != nil {
			byName[pkg.Name] = pkg
		}
	}
	const (
		_ = iota
		visiting
		done
	)
	state := make(map[string]int, len(byName))
	order := make([]*LockedPackage, 0, len(byName))
	var visit func(pkg *LockedPackage, chain []string) error
	visit = func(pkg *LockedPackage, chain []string) error {
		switch state[pkg.Name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("lockfile: dependency cycle %s", strings.Join(append(chain, pkg.Name), " -> "))
		}
		state[pkg.Name] = visiting
		chain = append(chain[:len(chain):len(chain)], pkg.Name)
		for _, depName := range pkg.Dependencies {
			dep, ok := byName[depName]
			if !ok {
				continue
			}
			if err := visit(dep, chain); err != nil {
				return err
			}
		}
		state[pkg.Name] = done
		order = append(order, pkg)
		return nil
	}
	for _, pkg := range l.Packages {
		if pkg == nil {
			continue
		}
		if err := visit(pkg, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// IsLocal reports whether the package was resolved from a local path.
func (p *LockedPackage) IsLocal() bool {
	return strings.HasPrefix(p.Source, sourcePathPrefix)
}

// Dir returns the directory holding the package's scripts. Local packages are
// read in place; git packages live in the cache under loxHome.
func (p *LockedPackage) Dir(loxHome string) string {
	if p.IsLocal() {
		return filepath.FromSlash(strings.TrimPrefix(p.Source, sourcePathPrefix))
	}
	return CacheDir(loxHome, p.Name, p.Version)
}

// GitURL returns the repository of a git package, or "" for local packages.
func (p *LockedPackage) GitURL() string {
	if !strings.HasPrefix(p.Source, sourceGitPrefix) {
		return ""
	}
	return strings.TrimPrefix(p.Source, sourceGitPrefix)
}

// CacheDir is where a fetched git dependency is checked out.
func CacheDir(loxHome, name, version string) string {
	return filepath.Join(loxHome, "pkg", "src", sanitizeSegment(name), sanitizePathSegment(version))
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (l *Lockfile) normalize() {
	if l == nil {
		return
	}
	l.Root = sanitizeSegment(l.Root)
	l.Tool = strings.TrimSpace(l.Tool)
	packages := l.Packages[:0]
	for _, pkg := range l.Packages {
		if pkg == nil {
			continue
		}
		pkg.Name = sanitizeSegment(pkg.Name)
		pkg.Version = strings.TrimSpace(pkg.Version)
		pkg.Source = strings.TrimSpace(pkg.Source)
		pkg.Checksum = strings.TrimSpace(pkg.Checksum)
		for k := range pkg.Dependencies {
			pkg.Dependencies[k] = sanitizeSegment(pkg.Dependencies[k])
		}
		sort.Strings(pkg.Dependencies)
		packages = append(packages, pkg)
	}
	sort.SliceStable(packages, func(i, j int) bool {
		return packages[i].Name < packages[j].Name
	})
	l.Packages = packages
}

func (l *Lockfile) toDisk() lockfileDisk {
	pkgs := make([]lockfilePackage, 0, len(l.Packages))
	for _, pkg := range l.Packages {
		if pkg == nil {
			continue
		}
		pkgs = append(pkgs, lockfilePackage{
			Name:         pkg.Name,
			Version:      pkg.Version,
			Source:       pkg.Source,
			Checksum:     pkg.Checksum,
			Dependencies: append([]string(nil), pkg.Dependencies...),
		})
	}
	return lockfileDisk{
		Root:      l.Root,
		Generated: l.Generated,
		Tool:      l.Tool,
		Packages:  pkgs,
	}
}

type lockfileDisk struct {
	Root      string            `yaml:"root"`
	Generated string            `yaml:"generated"`
	Tool      string            `yaml:"tool"`
	Packages  []lockfilePackage `yaml:"packages"`
}

type lockfilePackage struct {
	Name         string   `yaml:"name"`
	Version      string   `yaml:"version"`
	Source       string   `yaml:"source"`
	Checksum     string   `yaml:"checksum,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

func (d lockfileDisk) toLockfile() *Lockfile {
	lock := &Lockfile{
		Root:      d.Root,
		Generated: strings.TrimSpace(d.Generated),
		Tool:      d.Tool,
		Packages:  make([]*LockedPackage, 0, len(d.Packages)),
	}
	for _, pkg := range d.Packages {
		lock.Packages = append(lock.Packages, &LockedPackage{
			Name:         pkg.Name,
			Version:      pkg.Version,
			Source:       pkg.Source,
			Checksum:     pkg.Checksum,
			Dependencies: append([]string(nil), pkg.Dependencies...),
		})
	}
	lock.normalize()
	return lock
}
