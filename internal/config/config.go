// Package config resolves the small set of tunables the core needs: the
// database path, batching/concurrency defaults, and the ignore globs applied
// while walking a root. Everything else (themes, fonts, window state) is a
// presentation-layer concern out of scope for this package.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/muhammadmuzzammil1998/jsonc"
)

// DefaultDBFileName is the on-disk file name used when no override is set.
const DefaultDBFileName = "deepsearch_index.db"

// BatchSize is the number of records accumulated before one WriteBatch
// commit during an initial scan or rescan.
const BatchSize = 50_000

// ScanChannelCapacity bounds the (relative-path, FileRecord) channel the
// walker feeds into the batching consumer.
const ScanChannelCapacity = 4096

// SearchBatchSize is the number of DisplayResult values flushed per
// SearchResultsBatch event.
const SearchBatchSize = 200

// LiveSearchBatchSize is the number of LiveHit values flushed per
// LiveSearchResultsBatch event.
const LiveSearchBatchSize = 100

// overrideFileName is the optional curated config file resolved relative to
// the working directory.
const overrideFileName = ".deepsearch.jsonc"

// Overrides mirrors the curated .deepsearch.jsonc structure: everything in
// it is optional, and a missing file is not an error — callers fall back to
// environment variables and the built-in defaults above.
type Overrides struct {
	DBPath      string   `json:"dbPath,omitempty"`
	Workers     int      `json:"workers,omitempty"`
	IgnoreGlobs []string `json:"ignoreGlobs,omitempty"`
}

// LoadOverrides parses overrideFileName from dir if present, stripping `//`
// and `/* */` comments before decoding. A missing file returns a zero
// Overrides, not an error.
func LoadOverrides(dir string) (Overrides, error) {
	path := filepath.Join(dir, overrideFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Overrides{}, nil
		}
		return Overrides{}, err
	}
	var o Overrides
	if err := json.Unmarshal(jsonc.ToJSON(raw), &o); err != nil {
		return Overrides{}, err
	}
	return o, nil
}

var (
	overridesOnce     sync.Once
	resolvedOverrides Overrides
)

// overrides resolves and caches .deepsearch.jsonc from the working
// directory for the lifetime of the process; a parse or read failure is
// treated as no overrides rather than surfaced to every tunable's caller.
func overrides() Overrides {
	overridesOnce.Do(func() {
		if o, err := LoadOverrides("."); err == nil {
			resolvedOverrides = o
		}
	})
	return resolvedOverrides
}

// DefaultDBPath returns the database file path: the DEEPSEARCH_DB_PATH
// environment variable first, then .deepsearch.jsonc's "dbPath", then
// DefaultDBFileName.
func DefaultDBPath() string {
	if p := strings.TrimSpace(os.Getenv("DEEPSEARCH_DB_PATH")); p != "" {
		return p
	}
	if p := strings.TrimSpace(overrides().DBPath); p != "" {
		return p
	}
	return DefaultDBFileName
}

// WorkerCount returns the traversal/predicate worker-pool size: the
// DEEPSEARCH_WORKERS environment variable first, then .deepsearch.jsonc's
// "workers", then 2x logical cores.
func WorkerCount() int {
	if v := strings.TrimSpace(os.Getenv("DEEPSEARCH_WORKERS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	if n := overrides().Workers; n > 0 {
		return n
	}
	return 2 * runtime.NumCPU()
}

// defaultIgnoreGlobs are doublestar patterns skipped during any filesystem
// walk (scan, rescan, or live search) unless .deepsearch.jsonc adds more.
var defaultIgnoreGlobs = []string{
	".git/**",
	"node_modules/**",
	"vendor/**",
	".deepsearch/**",
}

var (
	ignoreGlobsOnce sync.Once
	ignoreGlobs     []string
)

// effectiveIgnoreGlobs merges defaultIgnoreGlobs with .deepsearch.jsonc's
// "ignoreGlobs", deduplicated and slash-normalized.
func effectiveIgnoreGlobs() []string {
	ignoreGlobsOnce.Do(func() {
		ignoreGlobs = mergeGlobs(defaultIgnoreGlobs, overrides().IgnoreGlobs)
	})
	return ignoreGlobs
}

func mergeGlobs(defaults, user []string) []string {
	seen := make(map[string]struct{})
	var merged []string
	appendIfMissing := func(globs []string) {
		for _, g := range globs {
			norm := normalizeGlob(g)
			if norm == "" {
				continue
			}
			if _, ok := seen[norm]; ok {
				continue
			}
			seen[norm] = struct{}{}
			merged = append(merged, norm)
		}
	}
	appendIfMissing(defaults)
	appendIfMissing(user)
	return merged
}

func normalizeGlob(g string) string {
	trimmed := strings.TrimSpace(g)
	if trimmed == "" {
		return ""
	}
	return filepath.ToSlash(trimmed)
}

// IsIgnored reports whether relPath (slash-separated, relative to the walk
// root) matches one of effectiveIgnoreGlobs. Table keys and display paths
// stay in the platform's native separator form; callers convert with
// filepath.ToSlash only at this matching boundary.
func IsIgnored(relPath string) bool {
	normalized := filepath.ToSlash(relPath)
	for _, g := range effectiveIgnoreGlobs() {
		if ok, err := doublestar.Match(g, normalized); err == nil && ok {
			return true
		}
	}
	return false
}
