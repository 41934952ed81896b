// Package livesearch implements the two modes multiplexed by the
// search_in_content flag: a direct filesystem walk matching names (reusing
// the indexed-search predicate) or matching file content by extension.
package livesearch

import (
	"path/filepath"
	"sync"

	"github.com/dohuyhoang93/deepsearch-go/internal/config"
	"github.com/dohuyhoang93/deepsearch-go/internal/model"
	"github.com/dohuyhoang93/deepsearch-go/internal/normalize"
	"github.com/dohuyhoang93/deepsearch-go/internal/taskcontrol"
	"github.com/dohuyhoang93/deepsearch-go/internal/walker"
)

// OnResults receives up to config.LiveSearchBatchSize name-mode matches.
type OnResults func([]model.DisplayResult)

// OnHits receives up to config.LiveSearchBatchSize content-mode hits.
type OnHits func([]model.LiveHit)

// RunNameMode walks root live, matching the normalized, token-split keyword
// against each discovered file's normalized name — the same predicate
// internal/query uses over the index, just against the live filesystem.
func RunNameMode(root, keyword string, ctrl *taskcontrol.Controller, onBatch OnResults) error {
	tokens := normalize.Tokens(normalize.String(keyword))

	var mu sync.Mutex
	batch := make([]model.DisplayResult, 0, config.LiveSearchBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if onBatch != nil {
			onBatch(batch)
		}
		batch = make([]model.DisplayResult, 0, config.LiveSearchBatchSize)
	}

	err := walker.Walk(root, ctrl, func(rec model.PathRecord) {
		if !normalize.ContainsAllTokens(rec.Record.NormalizedName, tokens) {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		batch = append(batch, model.DisplayResult{
			AbsolutePath: filepath.Join(root, rec.RelPath),
			IconTag:      model.IconTagFor(rec.RelPath),
		})
		if len(batch) >= config.LiveSearchBatchSize {
			flush()
		}
	}, nil)
	if err != nil {
		return err
	}

	mu.Lock()
	flush()
	mu.Unlock()
	return nil
}

// RunContentMode walks root live and, for every extension group enabled in
// flags, searches file content for the raw keyword. Content is natural text
// with punctuation, so it is matched as typed rather than with the
// normalized tokens RunNameMode uses for names.
func RunContentMode(root, keyword string, flags ContentFlags, ctrl *taskcontrol.Controller, onHits OnHits) error {
	var mu sync.Mutex
	batch := make([]model.LiveHit, 0, config.LiveSearchBatchSize)

	err := walker.Walk(root, ctrl, func(rec model.PathRecord) {
		hits := searchFileContent(filepath.Join(root, rec.RelPath), keyword, flags)
		if len(hits) == 0 {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		batch = append(batch, hits...)
		for len(batch) >= config.LiveSearchBatchSize {
			if onHits != nil {
				onHits(batch[:config.LiveSearchBatchSize])
			}
			batch = append([]model.LiveHit(nil), batch[config.LiveSearchBatchSize:]...)
		}
	}, nil)
	if err != nil {
		return err
	}

	mu.Lock()
	if len(batch) > 0 && onHits != nil {
		onHits(batch)
	}
	mu.Unlock()
	return nil
}
