package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestName is the project manifest file searched for by the CLI.
const ManifestName = "lox.yml"

// Manifest represents the parsed contents of lox.yml.
type Manifest struct {
	Path         string
	Name         string
	Version      string
	Authors      []string
	Prelude      []string
	Targets      map[string]*TargetSpec
	TargetOrder  []string
	Dependencies map[string]*DependencySpec

	targetEntries []manifestTargetEntry
}

// TargetSpec describes a runnable or library target from the manifest.
type TargetSpec struct {
	Name         string
	OriginalName string
	Type         TargetType
	Main         string
}

type manifestTargetEntry struct {
	sanitized string
	spec      *TargetSpec
}

// TargetType enumerates supported target kinds.
type TargetType string

const (
	TargetTypeExecutable TargetType = "executable"
	TargetTypeLibrary    TargetType = "library"
)

// DependencySpec describes where a dependency's scripts come from: a local
// path, or a git repository pinned by exactly one of rev, tag or branch.
type DependencySpec struct {
	Git    string
	Rev    string
	Tag    string
	Branch string
	Path   string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses lox.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// Dir returns the directory holding the manifest.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// PreludePaths returns the prelude scripts as absolute paths in declared order.
func (m *Manifest) PreludePaths() []string {
	out := make([]string, 0, len(m.Prelude))
	for _, rel := range m.Prelude {
		out = append(out, m.resolvePath(rel))
	}
	return out
}

// MainPath returns the absolute entry script of target.
func (m *Manifest) MainPath(target *TargetSpec) string {
	if target == nil || target.Main == "" {
		return ""
	}
	return m.resolvePath(target.Main)
}

func (m *Manifest) resolvePath(rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(m.Dir(), filepath.FromSlash(rel))
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	for i, author := range m.Authors {
		if author == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("authors[%d] must be a non-empty string", i))
		}
	}
	for i, script := range m.Prelude {
		if !strings.HasSuffix(script, ".lox") {
			errs.Issues = append(errs.Issues, fmt.Sprintf("prelude[%d] %q must be a .lox script", i, script))
		}
	}

	targetNames := make(map[string]string, len(m.targetEntries))
	for _, entry := range m.targetEntries {
		target := entry.spec
		if target == nil {
			continue
		}
		if other, exists := targetNames[entry.sanitized]; exists {
			errs.Issues = append(errs.Issues, fmt.Sprintf("targets %q and %q collide after sanitization", other, target.OriginalName))
		} else {
			targetNames[entry.sanitized] = target.OriginalName
		}
		if target.Type == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q missing type", target.OriginalName))
		} else if !target.Type.IsValid() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q has unsupported type %q", target.OriginalName, target.Type))
		}
		if target.Type.RequiresMain() && target.Main == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q requires a main entrypoint", target.OriginalName))
		}
	}

	for _, depName := range sortedKeys(m.Dependencies) {
		for _, issue := range m.Dependencies[depName].validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: %s", depName, issue))
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// IsValid reports whether the target type is recognised.
func (t TargetType) IsValid() bool {
	switch t {
	case TargetTypeExecutable, TargetTypeLibrary:
		return true
	default:
		return false
	}
}

// RequiresMain reports if the target requires a main entrypoint.
func (t TargetType) RequiresMain() bool {
	return t == TargetTypeExecutable
}

var ErrNoExecutableTarget = errors.New("manifest: no executable targets defined")

// DefaultExecutableTarget returns the first executable target in manifest order.
func (m *Manifest) DefaultExecutableTarget() (*TargetSpec, error) {
	if m == nil {
		return nil, ErrNoExecutableTarget
	}
	for _, entry := range m.targetEntries {
		if entry.spec != nil && entry.spec.Type == TargetTypeExecutable {
			return entry.spec, nil
		}
	}
	return nil, ErrNoExecutableTarget
}

// FindTarget looks up a target by sanitized or original name.
func (m *Manifest) FindTarget(name string) (*TargetSpec, bool) {
	if m == nil {
		return nil, false
	}
	name = strings.TrimSpace(name)
	if target, ok := m.Targets[sanitizeSegment(name)]; ok && target != nil {
		return target, true
	}
	for _, entry := range m.targetEntries {
		if entry.spec != nil && strings.EqualFold(entry.spec.OriginalName, name) {
			return entry.spec, true
		}
	}
	return nil, false
}

// IsGit reports whether the dependency is fetched from a git repository.
func (d *DependencySpec) IsGit() bool {
	return d != nil && d.Git != ""
}

func (d *DependencySpec) validate() []string {
	var errs []string
	if d == nil {
		return append(errs, "must specify git or path")
	}
	switch {
	case d.Path != "" && d.Git != "":
		errs = append(errs, "path dependencies cannot also specify git")
	case d.Path == "" && d.Git == "":
		errs = append(errs, "must specify git or path")
	}
	pins := 0
	for _, pin := range []string{d.Rev, d.Tag, d.Branch} {
		if pin != "" {
			pins++
		}
	}
	if d.Git != "" && pins != 1 {
		errs = append(errs, "git dependencies must specify exactly one of rev, tag or branch")
	}
	if d.Git == "" && pins > 0 {
		errs = append(errs, "rev, tag and branch apply only to git dependencies")
	}
	return errs
}

type manifestFile struct {
	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	Authors      stringList    `yaml:"authors"`
	Prelude      stringList    `yaml:"prelude"`
	Targets      targetMap     `yaml:"targets"`
	Dependencies dependencyMap `yaml:"dependencies"`
}

type targetYAML struct {
	Type TargetType `yaml:"type"`
	Main string     `yaml:"main"`
}

// targetMap keeps targets in document order so the first executable target
// is well defined. A bare string value is shorthand for an executable.
type targetMap struct {
	items []targetMapEntry
}

type targetMapEntry struct {
	name string
	spec *targetYAML
}

func (tm *targetMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		tm.items = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: targets must be a mapping")
	}
	items := make([]targetMapEntry, 0, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: targets must not use empty keys")
		}
		entry := new(targetYAML)
		node := value.Content[i+1]
		if node.Kind == yaml.ScalarNode {
			entry.Type = TargetTypeExecutable
			entry.Main = node.Value
		} else if err := node.Decode(entry); err != nil {
			return fmt.Errorf("manifest: target %q: %w", key, err)
		}
		items = append(items, targetMapEntry{name: key, spec: entry})
	}
	tm.items = items
	return nil
}

type dependencyMap map[string]*DependencySpec

func sortedKeys(m map[string]*DependencySpec) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type stringList []string

func (mf manifestFile) toManifest(path string) *Manifest {
	targetCapacity := len(mf.Targets.items)
	result := &Manifest{
		Path:          path,
		Name:          sanitizeSegment(mf.Name),
		Version:       strings.TrimSpace(mf.Version),
		Authors:       mf.Authors.Clone(),
		Prelude:       mf.Prelude.Clone(),
		Targets:       make(map[string]*TargetSpec, targetCapacity),
		TargetOrder:   make([]string, 0, targetCapacity),
		Dependencies:  make(map[string]*DependencySpec, len(mf.Dependencies)),
		targetEntries: make([]manifestTargetEntry, 0, targetCapacity),
	}
	for name, dep := range mf.Dependencies {
		if dep == nil {
			result.Dependencies[sanitizeSegment(name)] = nil
			continue
		}
		cloned := *dep
		result.Dependencies[sanitizeSegment(name)] = &cloned
	}

	for _, item := range mf.Targets.items {
		if item.spec == nil {
			continue
		}
		sanitized := sanitizeSegment(item.name)
		spec := &TargetSpec{
			Name:         sanitized,
			OriginalName: item.name,
			Type:         item.spec.Type,
			Main:         strings.TrimSpace(item.spec.Main),
		}
		if _, exists := result.Targets[sanitized]; !exists {
			result.Targets[sanitized] = spec
			result.TargetOrder = append(result.TargetOrder, sanitized)
		}
		result.targetEntries = append(result.targetEntries, manifestTargetEntry{sanitized: sanitized, spec: spec})
	}
	return result
}

func (l stringList) Clone() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			items = append(items, strings.TrimSpace(str))
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}

func (dm *dependencyMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		*dm = make(dependencyMap)
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: dependencies must be a mapping")
	}
	result := make(dependencyMap, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: dependency names must be non-empty")
		}
		var dep DependencySpec
		if err := dep.unmarshalYAML(value.Content[i+1]); err != nil {
			return fmt.Errorf("manifest: dependency %q: %w", key, err)
		}
		result[key] = &dep
	}
	*dm = result
	return nil
}

// unmarshalYAML accepts either a mapping or a bare string, which is taken as
// a local path.
func (d *DependencySpec) unmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*d = DependencySpec{}
			return nil
		}
		*d = DependencySpec{Path: strings.TrimSpace(value.Value)}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Git    string `yaml:"git"`
			Rev    string `yaml:"rev"`
			Tag    string `yaml:"tag"`
			Branch string `yaml:"branch"`
			Path   string `yaml:"path"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*d = DependencySpec{
			Git:    strings.TrimSpace(raw.Git),
			Rev:    strings.TrimSpace(raw.Rev),
			Tag:    strings.TrimSpace(raw.Tag),
			Branch: strings.TrimSpace(raw.Branch),
			Path:   strings.TrimSpace(raw.Path),
		}
		return nil
	case yaml.AliasNode:
		return d.unmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("expected string or mapping, found %s", value.ShortTag())
	}
}

func sanitizeSegment(seg string) string {
	seg = strings.TrimSpace(seg)
	seg = strings.ReplaceAll(seg, "-", "_")
	return seg
}
