// Package walker implements the two-phase parallel directory traversal
// shared by the initial scan, rescan, and live-search pipelines: Phase A
// lists a root's immediate children, Phase B fans out one goroutine per
// top-level subdirectory to walk it recursively.
package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dohuyhoang93/deepsearch-go/internal/config"
	"github.com/dohuyhoang93/deepsearch-go/internal/model"
	"github.com/dohuyhoang93/deepsearch-go/internal/normalize"
	"github.com/dohuyhoang93/deepsearch-go/internal/taskcontrol"
)

// OnRecord receives one discovered file. It is called concurrently from
// multiple subtree goroutines during Phase B, so implementations must be
// concurrency-safe — a channel send is the expected shape.
type OnRecord func(model.PathRecord)

// OnProgress reports the fraction, in [0,1], of Phase-B subtrees that have
// finished. Mapping this fraction into a workflow's overall progress budget
// (e.g. the 5%-45% sub-range reserved for scanning) is the caller's job, not
// the walker's.
type OnProgress func(fraction float64)

// Walk traverses root in two phases. Files found directly under root are
// emitted during Phase A; each subdirectory becomes an independent Phase-B
// root walked in its own goroutine, bounded by config.WorkerCount. Before
// every emitted record the walker calls ctrl.AwaitIfPaused and checks
// ctrl.IsCancelled; on cancellation the current subtree stops promptly and
// emits nothing further. Per-entry permission or IO errors are skipped
// silently — one bad entry never aborts the walk.
func Walk(root string, ctrl *taskcontrol.Controller, onRecord OnRecord, onProgress OnProgress) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("walker: read root %s: %w", root, err)
	}

	var phaseBRoots []string
	for _, e := range entries {
		ctrl.AwaitIfPaused()
		if ctrl.IsCancelled() {
			return nil
		}
		if config.IsIgnored(e.Name()) {
			continue
		}
		full := filepath.Join(root, e.Name())
		if e.IsDir() {
			phaseBRoots = append(phaseBRoots, full)
			continue
		}
		emitFile(root, full, onRecord)
	}

	total := len(phaseBRoots)
	if total == 0 {
		if onProgress != nil {
			onProgress(1)
		}
		return nil
	}

	var (
		progressMu sync.Mutex
		completed  int
	)
	g := new(errgroup.Group)
	g.SetLimit(config.WorkerCount())
	for _, subRoot := range phaseBRoots {
		subRoot := subRoot
		g.Go(func() error {
			walkSubtree(root, subRoot, ctrl, onRecord)
			progressMu.Lock()
			completed++
			if onProgress != nil {
				onProgress(float64(completed) / float64(total))
			}
			progressMu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func walkSubtree(root, subRoot string, ctrl *taskcontrol.Controller, onRecord OnRecord) {
	_ = filepath.WalkDir(subRoot, func(path string, d os.DirEntry, err error) error {
		if ctrl.IsCancelled() {
			return filepath.SkipAll
		}
		if err != nil {
			return nil
		}
		if d.IsDir() {
			rel, relErr := filepath.Rel(root, path)
			if relErr == nil && config.IsIgnored(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		ctrl.AwaitIfPaused()
		if ctrl.IsCancelled() {
			return filepath.SkipAll
		}
		emitFile(root, path, onRecord)
		return nil
	})
}

func emitFile(root, path string, onRecord OnRecord) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return
	}
	// rel keeps the platform's native separator for storage; ToSlash is
	// applied only at the doublestar-match boundary.
	if config.IsIgnored(filepath.ToSlash(rel)) {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	onRecord(model.PathRecord{
		RelPath: rel,
		Record: model.FileRecord{
			NormalizedName: normalize.String(filepath.Base(path)),
			ModifiedTime:   uint64(info.ModTime().Unix()),
		},
	})
}
