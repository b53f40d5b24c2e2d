package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lox/interpreter-go/pkg/driver"
)

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "lox deps requires a subcommand (install, update)")
		return driver.ExitUsage
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "lox deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return driver.ExitUsage
		}
		return runDepsUpdate(nil, false)
	case "update":
		return runDepsUpdate(args[1:], true)
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return driver.ExitUsage
	}
}

// runDepsUpdate installs the manifest's dependencies. Install keeps existing
// git pins; update re-resolves the named dependencies, or all of them.
func runDepsUpdate(targets []string, update bool) int {
	manifest, err := loadManifestFrom("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to load %s: %v\n", driver.ManifestName, err)
		return driver.ExitFailure
	}
	cacheDir, err := resolveLoxHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve LOX_HOME: %v\n", err)
		return driver.ExitFailure
	}

	for _, target := range targets {
		if _, ok := manifest.Dependencies[sanitizeName(target)]; !ok {
			fmt.Fprintf(os.Stderr, "dependency %q not declared in manifest\n", target)
			return driver.ExitUsage
		}
	}

	lockPath := filepath.Join(manifest.Dir(), driver.LockfileName)
	lock, err := driver.LoadLockfile(lockPath)
	lockCreated := false
	switch {
	case err == nil:
		if lock.Root != manifest.Name {
			fmt.Fprintf(os.Stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return driver.ExitFailure
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return driver.ExitFailure
	}
	lock.Tool = cliToolVersion

	installer := newDependencyInstaller(manifest, cacheDir)
	if update {
		installer.unpin(targets)
	}
	changed, logs, err := installer.Install(lock)
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return driver.ExitFailure
	}

	if changed || lockCreated {
		action := "Updated"
		if lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(lock, lockPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return driver.ExitFailure
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", action, driver.LockfileName, lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date: %s\n", driver.LockfileName, lockPath)
	}
	return driver.ExitOK
}

type resolvedPackage struct {
	pkg      *driver.LockedPackage
	manifest *driver.Manifest
	root     string
}

// dependencyInstaller resolves a manifest's dependency graph into locked
// packages, fetching git dependencies into the cache.
type dependencyInstaller struct {
	manifest     *driver.Manifest
	manifestRoot string
	cacheDir     string
	logs         []string
	git          *gitFetcher
	previous     map[string]*driver.LockedPackage
	unpinAll     bool
	unpinned     map[string]bool
	resolved     map[string]*driver.LockedPackage
	resolving    map[string]bool
}

func newDependencyInstaller(manifest *driver.Manifest, cacheDir string) *dependencyInstaller {
	var root string
	if manifest != nil {
		root = manifest.Dir()
	}
	return &dependencyInstaller{
		manifest:     manifest,
		manifestRoot: root,
		cacheDir:     cacheDir,
		logs:         []string{},
		git:          newGitFetcher(cacheDir),
		unpinned:     make(map[string]bool),
	}
}

// unpin marks dependencies whose locked git pins must be re-resolved. No
// names means every dependency.
func (d *dependencyInstaller) unpin(names []string) {
	if len(names) == 0 {
		d.unpinAll = true
		return
	}
	for _, name := range names {
		d.unpinned[sanitizeName(name)] = true
	}
}

// Install resolves every dependency and replaces lock.Packages with the
// result. It reports whether the lockfile contents changed.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	if d.manifest == nil {
		return false, d.logs, nil
	}

	d.previous = make(map[string]*driver.LockedPackage, len(lock.Packages))
	for _, pkg := range lock.Packages {
		if pkg != nil {
			d.previous[pkg.Name] = pkg
		}
	}
	d.resolved = make(map[string]*driver.LockedPackage)
	d.resolving = make(map[string]bool)

	for _, name := range sortedDependencyNames(d.manifest) {
		if err := d.installDependency(name, cloneDependencySpec(d.manifest.Dependencies[name]), d.manifestRoot); err != nil {
			return false, d.logs, err
		}
	}

	desired := make([]*driver.LockedPackage, 0, len(d.resolved))
	for _, pkg := range d.resolved {
		desired = append(desired, pkg)
	}
	sort.SliceStable(desired, func(i, j int) bool {
		return desired[i].Name < desired[j].Name
	})

	changed := len(desired) != len(d.previous)
	for _, pkg := range desired {
		if current, ok := d.previous[pkg.Name]; !ok || !lockedPackageEqual(current, pkg) {
			changed = true
		}
	}

	lock.Packages = desired
	return changed, d.logs, nil
}

func (d *dependencyInstaller) installDependency(name string, spec *driver.DependencySpec, base string) error {
	if spec == nil {
		return fmt.Errorf("dependency %q has no descriptor", name)
	}
	name = sanitizeName(name)
	if d.resolving[name] {
		return fmt.Errorf("dependency cycle detected at %s", name)
	}
	if spec.Path != "" && !filepath.IsAbs(spec.Path) {
		spec.Path = filepath.Clean(filepath.Join(base, filepath.FromSlash(spec.Path)))
	}
	if existing, ok := d.resolved[name]; ok {
		if existing.Source != sourceFor(spec) {
			return fmt.Errorf("dependency %q resolves to both %s and %s", name, existing.Source, sourceFor(spec))
		}
		return nil
	}
	d.resolving[name] = true
	defer delete(d.resolving, name)

	resolved, err := d.resolveDependency(name, spec)
	if err != nil {
		return err
	}
	pkg := resolved.pkg
	pkg.Dependencies = nil
	if resolved.manifest != nil {
		for _, childName := range sortedDependencyNames(resolved.manifest) {
			childSpec := cloneDependencySpec(resolved.manifest.Dependencies[childName])
			if err := d.installDependency(childName, childSpec, resolved.root); err != nil {
				return err
			}
			pkg.Dependencies = append(pkg.Dependencies, sanitizeName(childName))
		}
	}
	d.resolved[name] = pkg
	return nil
}

func (d *dependencyInstaller) resolveDependency(name string, spec *driver.DependencySpec) (*resolvedPackage, error) {
	switch {
	case spec.Path != "":
		return d.resolvePathDependency(name, spec)
	case spec.Git != "":
		return d.resolveGitDependency(name, spec)
	default:
		return nil, fmt.Errorf("dependency %q: must specify git or path", name)
	}
}

func (d *dependencyInstaller) resolvePathDependency(name string, spec *driver.DependencySpec) (*resolvedPackage, error) {
	info, err := os.Stat(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: stat %s: %w", name, spec.Path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dependency %q: expected directory at %s", name, spec.Path)
	}

	depManifest, err := loadOptionalManifest(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	version := "0.0.0-dev"
	if depManifest != nil && depManifest.Version != "" {
		version = depManifest.Version
	}

	d.logs = append(d.logs, fmt.Sprintf("linked %s %s (%s)", name, version, d.displayPath(spec.Path)))
	return &resolvedPackage{
		pkg: &driver.LockedPackage{
			Name:    name,
			Version: version,
			Source:  driver.PathSource(spec.Path),
		},
		manifest: depManifest,
		root:     spec.Path,
	}, nil
}

func (d *dependencyInstaller) resolveGitDependency(name string, spec *driver.DependencySpec) (*resolvedPackage, error) {
	if d.git == nil {
		return nil, fmt.Errorf("dependency %q: git support unavailable", name)
	}
	var (
		pkg *driver.LockedPackage
		err error
	)
	if locked := d.lockedPin(name, spec); locked != nil {
		pkg = locked
		d.logs = append(d.logs, fmt.Sprintf("using locked %s (%s)", name, pkg.Version))
	} else {
		pkg, err = d.git.Fetch(name, spec)
		if err != nil {
			return nil, err
		}
		d.logs = append(d.logs, fmt.Sprintf("fetched git dependency %s (%s)", name, pkg.Version))
	}

	root := pkg.Dir(d.cacheDir)
	depManifest, err := loadOptionalManifest(root)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	return &resolvedPackage{pkg: pkg, manifest: depManifest, root: root}, nil
}

// lockedPin returns a copy of the previously locked git package when its pin
// still matches spec and its checkout is present in the cache.
func (d *dependencyInstaller) lockedPin(name string, spec *driver.DependencySpec) *driver.LockedPackage {
	if d.unpinAll || d.unpinned[name] {
		return nil
	}
	previous, ok := d.previous[name]
	if !ok || previous.GitURL() != strings.TrimSpace(spec.Git) {
		return nil
	}
	_, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil || pinDescriptor(previous.Version) != descriptor {
		return nil
	}
	if info, err := os.Stat(previous.Dir(d.cacheDir)); err != nil || !info.IsDir() {
		return nil
	}
	pkg := *previous
	return &pkg
}

func (d *dependencyInstaller) displayPath(path string) string {
	if d.manifestRoot != "" {
		if rel, err := filepath.Rel(d.manifestRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return path
}

func loadOptionalManifest(dir string) (*driver.Manifest, error) {
	manifest, err := driver.LoadManifest(filepath.Join(dir, driver.ManifestName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return manifest, nil
}

func sourceFor(spec *driver.DependencySpec) string {
	if spec.Path != "" {
		return driver.PathSource(spec.Path)
	}
	return driver.GitSource(spec.Git)
}

func sortedDependencyNames(manifest *driver.Manifest) []string {
	names := make([]string, 0, len(manifest.Dependencies))
	for name := range manifest.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lockedPackageEqual(a, b *driver.LockedPackage) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || a.Version != b.Version || a.Source != b.Source || a.Checksum != b.Checksum {
		return false
	}
	if len(a.Dependencies) != len(b.Dependencies) {
		return false
	}
	for i := range a.Dependencies {
		if a.Dependencies[i] != b.Dependencies[i] {
			return false
		}
	}
	return true
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "-", "_")
	return name
}

func cloneDependencySpec(spec *driver.DependencySpec) *driver.DependencySpec {
	if spec == nil {
		return nil
	}
	clone := *spec
	return &clone
}
