// Package query implements the indexed search: given a keyword and a list
// of (root, table) locations, search each table and stream batches of
// display-ready results back to the caller.
package query

import (
	"fmt"
	"path/filepath"

	"github.com/dohuyhoang93/deepsearch-go/internal/config"
	"github.com/dohuyhoang93/deepsearch-go/internal/model"
	"github.com/dohuyhoang93/deepsearch-go/internal/store"
	"github.com/dohuyhoang93/deepsearch-go/internal/taskcontrol"
)

// Location names one (root, table) pair to search.
type Location struct {
	Root  string
	Table string
}

// OnBatch receives up to config.SearchBatchSize results at a time, in the
// order locations were given.
type OnBatch func([]model.DisplayResult)

// OnProgress reports the fraction of locations processed so far.
type OnProgress func(fraction float64)

// Run searches keyword across every location, flushing OnBatch every
// config.SearchBatchSize results (and once more for the tail). With zero
// locations it returns immediately having called OnBatch zero times — the
// caller is still expected to treat that as a normal, non-error completion.
func Run(keyword string, locations []Location, st *store.Store, ctrl *taskcontrol.Controller, onBatch OnBatch, onProgress OnProgress) error {
	if len(locations) == 0 {
		if onProgress != nil {
			onProgress(1)
		}
		return nil
	}

	batch := make([]model.DisplayResult, 0, config.SearchBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if onBatch != nil {
			onBatch(batch)
		}
		batch = make([]model.DisplayResult, 0, config.SearchBatchSize)
	}

	for i, loc := range locations {
		ctrl.AwaitIfPaused()
		if ctrl.IsCancelled() {
			break
		}

		relPaths, err := st.SearchInTable(loc.Table, keyword)
		if err != nil {
			return fmt.Errorf("query: search %s: %w", loc.Table, err)
		}

		for _, rel := range relPaths {
			batch = append(batch, model.DisplayResult{
				AbsolutePath: filepath.Join(loc.Root, rel),
				IconTag:      model.IconTagFor(rel),
			})
			if len(batch) >= config.SearchBatchSize {
				flush()
			}
		}

		if onProgress != nil {
			onProgress(float64(i+1) / float64(len(locations)))
		}
	}
	flush()

	return nil
}
