package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"lox/interpreter-go/pkg/driver"
)

type gitFetcher struct {
	cacheDir string
}

func newGitFetcher(cacheDir string) *gitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &gitFetcher{cacheDir: cacheDir}
}

// Fetch clones the dependency's repository, checks out the pinned revision
// into the cache and returns its lock entry.
func (g *gitFetcher) Fetch(name string, spec *driver.DependencySpec) (*driver.LockedPackage, error) {
	if g == nil {
		return nil, errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, fmt.Errorf("dependency %q: git URL required", name)
	}

	version, err := g.ensureCheckout(name, url, spec)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	checksum, err := dirChecksum(driver.CacheDir(g.cacheDir, name, version))
	if err != nil {
		return nil, fmt.Errorf("dependency %q: checksum: %w", name, err)
	}
	return &driver.LockedPackage{
		Name:     sanitizeName(name),
		Version:  version,
		Source:   driver.GitSource(url),
		Checksum: checksum,
	}, nil
}

func (g *gitFetcher) ensureCheckout(name, url string, spec *driver.DependencySpec) (string, error) {
	revisions, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", err
	}
	baseDir := filepath.Dir(driver.CacheDir(g.cacheDir, name, "head"))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", err
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{
		URL:               url,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	})
	if err != nil {
		return "", fmt.Errorf("git clone %s: %w", url, err)
	}

	var hash *plumbing.Hash
	for _, revision := range revisions {
		if hash, err = repo.ResolveRevision(revision); err == nil {
			break
		}
	}
	if err != nil {
		return "", fmt.Errorf("resolve revision %s: %w", descriptor, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := driver.CacheDir(g.cacheDir, name, version)
	if info, err := os.Stat(targetDir); err == nil && info.IsDir() {
		return version, nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return "", fmt.Errorf("git checkout %s: %w", descriptor, err)
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		return "", err
	}
	return version, nil
}

// gitRevisionFromSpec lists the revisions to try for a pin, most specific
// first. Branches other than the default exist only as remote refs after a
// clone.
func gitRevisionFromSpec(spec *driver.DependencySpec) ([]plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return []plumbing.Revision{plumbing.Revision(rev)}, rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return []plumbing.Revision{plumbing.Revision("refs/tags/" + tag)}, tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return []plumbing.Revision{
			plumbing.Revision("refs/remotes/origin/" + branch),
			plumbing.Revision("refs/heads/" + branch),
		}, branch, nil
	}
	return nil, "", fmt.Errorf("git dependencies require rev, tag, or branch")
}

func gitPinnedVersion(descriptor, commit string) string {
	commit = strings.TrimSpace(commit)
	descriptor = strings.TrimSpace(descriptor)
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

// pinDescriptor recovers the rev, tag or branch a locked version was pinned by.
func pinDescriptor(version string) string {
	if at := strings.LastIndex(version, "@"); at >= 0 {
		return version[:at]
	}
	return version
}

func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
