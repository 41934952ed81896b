package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsIgnoredMatchesGitDir(t *testing.T) {
	cases := map[string]bool{
		".git/HEAD":             true,
		"node_modules/pkg/a.js": true,
		"vendor/lib/x.go":       true,
		"src/main.go":           false,
		"":                      false,
	}
	for path, want := range cases {
		if got := IsIgnored(path); got != want {
			t.Fatalf("IsIgnored(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWorkerCountIsPositive(t *testing.T) {
	if WorkerCount() <= 0 {
		t.Fatal("WorkerCount must be positive")
	}
}

func TestDefaultDBPathFallsBackWhenUnset(t *testing.T) {
	t.Setenv("DEEPSEARCH_DB_PATH", "")
	if got := DefaultDBPath(); got != DefaultDBFileName {
		t.Fatalf("DefaultDBPath() = %q, want %q", got, DefaultDBFileName)
	}
}

func TestDefaultDBPathHonorsOverride(t *testing.T) {
	t.Setenv("DEEPSEARCH_DB_PATH", "/tmp/custom.db")
	if got := DefaultDBPath(); got != "/tmp/custom.db" {
		t.Fatalf("DefaultDBPath() = %q, want override", got)
	}
}

func TestLoadOverridesMissingFileReturnsZeroValue(t *testing.T) {
	dir := t.TempDir()
	o, err := LoadOverrides(dir)
	if err != nil {
		t.Fatalf("LoadOverrides: %v", err)
	}
	if o.DBPath != "" || o.Workers != 0 || len(o.IgnoreGlobs) != 0 {
		t.Fatalf("LoadOverrides() = %+v, want zero value", o)
	}
}

func TestLoadOverridesParsesJsonc(t *testing.T) {
	dir := t.TempDir()
	contents := []byte("{\n" +
		"  // dropped into the workspace to override tunables without env vars\n" +
		"  \"dbPath\": \"/tmp/custom.db\",\n" +
		"  \"workers\": 4,\n" +
		"  \"ignoreGlobs\": [\"dist/**\"]\n" +
		"}\n")
	if err := os.WriteFile(filepath.Join(dir, overrideFileName), contents, 0o644); err != nil {
		t.Fatalf("write override file: %v", err)
	}

	o, err := LoadOverrides(dir)
	if err != nil {
		t.Fatalf("LoadOverrides: %v", err)
	}
	if o.DBPath != "/tmp/custom.db" || o.Workers != 4 || len(o.IgnoreGlobs) != 1 || o.IgnoreGlobs[0] != "dist/**" {
		t.Fatalf("LoadOverrides() = %+v, want parsed overrides", o)
	}
}

func TestMergeGlobsDedupsAndNormalizes(t *testing.T) {
	merged := mergeGlobs([]string{".git/**"}, []string{".git/**", "dist/**", "  "})
	if len(merged) != 2 || merged[0] != ".git/**" || merged[1] != "dist/**" {
		t.Fatalf("mergeGlobs() = %v", merged)
	}
}
