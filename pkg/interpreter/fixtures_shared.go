package interpreter

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type fixtureManifest struct {
	Description string `json:"description"`
	Entry       string `json:"entry"`
	Expect      struct {
		Stdout       []string `json:"stdout"`
		Errors       []string `json:"errors"`
		StaticErrors []string `json:"staticErrors"`
	} `json:"expect"`
}

// testingT captures the subset of testing.T used by fixture helpers.
type testingT interface {
	Helper()
	Fatalf(format string, args ...interface{})
}

func readManifest(t testingT, dir string) fixtureManifest {
	t.Helper()
	manifestPath := filepath.Join(dir, "manifest.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fixtureManifest{}
		}
		t.Fatalf("read manifest %s: %v", manifestPath, err)
	}
	var manifest fixtureManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("parse manifest %s: %v", manifestPath, err)
	}
	return manifest
}

func readSource(t testingT, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read source %s: %v", path, err)
	}
	return string(data)
}
