package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteAndLoadLockfile(t *testing.T) {
	lock := &Lockfile{
		Root:      "app-kit",
		Tool:      "lox 0.0.0-dev",
		Generated: "2026-01-01T00:00:00Z",
		Packages: []*LockedPackage{
			{
				Name:         "util-strings",
				Version:      " 4b1c0de ",
				Source:       " git:https://example.com/strings.git ",
				Checksum:     " sha256:abc ",
				Dependencies: []string{"text-core", "core-lib"},
			},
			{
				Name:    "core-lib",
				Version: "local",
				Source:  PathSource("/src/core-lib"),
			},
		},
	}

	path := filepath.Join(t.TempDir(), LockfileName)
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile error: %v", err)
	}

	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile error: %v", err)
	}
	if loaded.Root != "app_kit" {
		t.Fatalf("Root = %q, want app_kit", loaded.Root)
	}
	if loaded.Tool != "lox 0.0.0-dev" {
		t.Fatalf("Tool = %q", loaded.Tool)
	}
	if len(loaded.Packages) != 2 {
		t.Fatalf("Packages length = %d, want 2", len(loaded.Packages))
	}
	if loaded.Packages[0].Name != "core_lib" || loaded.Packages[1].Name != "util_strings" {
		t.Fatalf("packages not sorted by sanitized name: %q, %q", loaded.Packages[0].Name, loaded.Packages[1].Name)
	}
	strs := loaded.Packages[1]
	if got := strings.Join(strs.Dependencies, ","); got != "core_lib,text_core" {
		t.Fatalf("Dependencies = %q, want core_lib,text_core", got)
	}
	if strs.Version != "4b1c0de" || strs.Checksum != "sha256:abc" {
		t.Fatalf("fields not trimmed: %#v", strs)
	}
	if strs.GitURL() != "https://example.com/strings.git" || strs.IsLocal() {
		t.Fatalf("git source not recognised: %q", strs.Source)
	}
	if loaded.Path != path {
		t.Fatalf("Path = %q, want %q", loaded.Path, path)
	}
}

func TestLoadLockfileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.lock")
	if _, err := LoadLockfile(path); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error for missing lockfile, got %v", err)
	}
}

func TestLockedPackageDir(t *testing.T) {
	home := t.TempDir()
	local := &LockedPackage{Name: "local", Version: "local", Source: PathSource("/work/local")}
	if got := local.Dir(home); got != filepath.FromSlash("/work/local") {
		t.Fatalf("local Dir = %q", got)
	}
	fetched := &LockedPackage{Name: "strings", Version: "abc123", Source: GitSource("https://example.com/s.git")}
	if got, want := fetched.Dir(home), filepath.Join(home, "pkg", "src", "strings", "abc123"); got != want {
		t.Fatalf("git Dir = %q, want %q", got, want)
	}
	tagged := &LockedPackage{Name: "text-kit", Version: "v1.0/rc@abc123", Source: GitSource("https://example.com/t.git")}
	if got, want := tagged.Dir(home), filepath.Join(home, "pkg", "src", "text_kit", "v1.0_rc_abc123"); got != want {
		t.Fatalf("tagged Dir = %q, want %q", got, want)
	}
}

func TestLockfileLoadOrder(t *testing.T) {
	lock := &Lockfile{Packages: []*LockedPackage{
		{Name: "app_ui", Dependencies: []string{"text", "colors"}},
		{Name: "colors"},
		{Name: "text", Dependencies: []string{"colors", "unlisted"}},
		{Name: "zeta"},
	}}
	order, err := lock.LoadOrder()
	if err != nil {
		t.Fatalf("LoadOrder error: %v", err)
	}
	names := make([]string, 0, len(order))
	for _, pkg := range order {
		names = append(names, pkg.Name)
	}
	if got := strings.Join(names, ","); got != "colors,text,app_ui,zeta" {
		t.Fatalf("LoadOrder = %s", got)
	}

	cyclic := &Lockfile{Packages: []*LockedPackage{
		{Name: "a", Dependencies: []string{"b"}},
		{Name: "b", Dependencies: []string{"a"}},
	}}
	if _, err := cyclic.LoadOrder(); err == nil || !strings.Contains(err.Error(), "a -> b -> a") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}
