package interpreter

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFixtures(t *testing.T) {
	root := filepath.Join("testdata", "fixtures")
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("reading fixtures: %v", err)
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		count++
		t.Run(entry.Name(), func(t *testing.T) {
			runFixture(t, dir)
		})
	}
	if count == 0 {
		t.Fatalf("no fixtures found under %s", root)
	}
}
