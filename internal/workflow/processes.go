package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dohuyhoang93/deepsearch-go/internal/events"
	"github.com/dohuyhoang93/deepsearch-go/internal/livesearch"
	"github.com/dohuyhoang93/deepsearch-go/internal/model"
	"github.com/dohuyhoang93/deepsearch-go/internal/query"
	"github.com/dohuyhoang93/deepsearch-go/internal/scanpipeline"
	"github.com/dohuyhoang93/deepsearch-go/internal/store"
)

// RegisterBuiltins wires the four built-in workflows into registry.
// Registration happens once at worker startup.
func RegisterBuiltins(registry *Registry) {
	registry.RegisterProcess(scanStreamingProcess{})
	registry.RegisterProcess(writeIndexBatchedProcess{})
	registry.RegisterProcess(rescanScanStreamingProcess{})
	registry.RegisterProcess(rescanWriteBatchedProcess{})
	registry.RegisterProcess(rescanSwapFinalProcess{})
	registry.RegisterProcess(queryProcess{})
	registry.RegisterProcess(liveSearchStreamingProcess{})

	registry.RegisterWorkflow("initial_scan", "scan_streaming", "write_index_batched")
	registry.RegisterWorkflow("rescan", "rescan_scan_streaming", "rescan_write_batched", "rescan_swap_final")
	registry.RegisterWorkflow("search", "query")
	registry.RegisterWorkflow("live_search", "live_search_streaming")
}

// remap maps fraction (0..1) into the [lo,hi] sub-range of an overall
// progress budget, so traversal progress occupies only the slice of the
// bar reserved for it.
func remap(fraction, lo, hi float64) float64 {
	return lo + fraction*(hi-lo)
}

type scanStreamingProcess struct{}

func (scanStreamingProcess) Name() string { return "scan_streaming" }

func (scanStreamingProcess) Run(ctx *Context) error {
	if strings.TrimSpace(ctx.ScanPath) == "" {
		return fmt.Errorf("workflow: scan_streaming: %w", model.ErrInvalidInput)
	}
	table, err := ctx.Store.GetOrCreateTableFor(ctx.ScanPath)
	if err != nil {
		return err
	}
	ctx.scanTable = table
	ctx.scanPipeline = scanpipeline.Start(ctx.ScanPath, ctx.Controller, func(fraction float64) {
		ctx.emit(events.ScanProgress{Fraction: remap(fraction, 0.05, 0.45), Status: "scanning"})
	})
	return nil
}

type writeIndexBatchedProcess struct{}

func (writeIndexBatchedProcess) Name() string { return "write_index_batched" }

func (writeIndexBatchedProcess) Run(ctx *Context) error {
	written, err := scanpipeline.Drain(ctx.scanPipeline, ctx.Store, ctx.scanTable, func(written uint64) {
		ctx.emit(events.ScanProgress{Fraction: 0.9, Status: fmt.Sprintf("%d files indexed", written)})
	})
	if err != nil {
		return err
	}
	ctx.writtenCount = written
	ctx.emit(events.ScanCompleted{FinalCount: written})
	return nil
}

type rescanScanStreamingProcess struct{}

func (rescanScanStreamingProcess) Name() string { return "rescan_scan_streaming" }

func (rescanScanStreamingProcess) Run(ctx *Context) error {
	locs, err := ctx.Store.ListLocations()
	if err != nil {
		return err
	}
	var found bool
	for _, l := range locs {
		if l.Root == ctx.ScanPath {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("workflow: rescan_scan_streaming: %s: %w", ctx.ScanPath, store.ErrLocationMissing)
	}

	ctx.rescanNew = store.RescanTableNameFor(ctx.ScanPath, time.Now(), uuid.NewString()[:8])
	ctx.scanPipeline = scanpipeline.Start(ctx.ScanPath, ctx.Controller, func(fraction float64) {
		ctx.emit(events.ScanProgress{Fraction: remap(fraction, 0.05, 0.45), Status: "rescanning"})
	})
	return nil
}

type rescanWriteBatchedProcess struct{}

func (rescanWriteBatchedProcess) Name() string { return "rescan_write_batched" }

func (rescanWriteBatchedProcess) Run(ctx *Context) error {
	written, err := scanpipeline.Drain(ctx.scanPipeline, ctx.Store, ctx.rescanNew, func(written uint64) {
		ctx.emit(events.ScanProgress{Fraction: 0.9, Status: fmt.Sprintf("%d files rescanned", written)})
	})
	if err != nil {
		return err
	}
	ctx.writtenCount = written
	return nil
}

// rescanSwapFinalProcess is R3: commit the swap in one transaction, then
// drop the superseded table in a second. The rescan walk honours pause like
// any other walk; a cancel observed here discards the side table instead of
// committing it.
type rescanSwapFinalProcess struct{}

func (rescanSwapFinalProcess) Name() string { return "rescan_swap_final" }

func (rescanSwapFinalProcess) Run(ctx *Context) error {
	if ctx.Controller.IsCancelled() {
		if err := ctx.Store.DropTable(ctx.rescanNew); err != nil {
			return err
		}
		ctx.emit(events.ScanCompleted{FinalCount: 0})
		return nil
	}

	swappedOld, err := ctx.Store.SwapLocationTable(ctx.ScanPath, ctx.rescanNew)
	if err != nil {
		return err
	}
	if err := ctx.Store.DropTable(swappedOld); err != nil {
		return err
	}
	ctx.emit(events.ScanCompleted{FinalCount: ctx.writtenCount})
	return nil
}

// queryProcess is the whole "search" workflow: an empty keyword or an empty
// location set both resolve to zero results rather than an error, since
// streaming the entire index back is never what an empty query means.
type queryProcess struct{}

func (queryProcess) Name() string { return "query" }

func (queryProcess) Run(ctx *Context) error {
	if strings.TrimSpace(ctx.QueryKeyword) == "" || len(ctx.QueryLocations) == 0 {
		ctx.emit(events.SearchFinished{})
		return nil
	}

	err := query.Run(ctx.QueryKeyword, ctx.QueryLocations, ctx.Store, ctx.Controller, func(batch []model.DisplayResult) {
		ctx.emit(events.SearchResultsBatch{Results: batch})
	}, func(fraction float64) {
		ctx.emit(events.ScanProgress{Fraction: fraction, Status: "searching"})
	})
	if err != nil {
		return err
	}
	ctx.emit(events.SearchFinished{})
	return nil
}

// liveSearchStreamingProcess multiplexes name mode and content mode by
// ctx.LiveContent.
type liveSearchStreamingProcess struct{}

func (liveSearchStreamingProcess) Name() string { return "live_search_streaming" }

func (liveSearchStreamingProcess) Run(ctx *Context) error {
	if strings.TrimSpace(ctx.LiveKeyword) == "" || strings.TrimSpace(ctx.LiveRoot) == "" {
		ctx.emit(events.SearchFinished{})
		return nil
	}

	var err error
	if ctx.LiveContent {
		err = livesearch.RunContentMode(ctx.LiveRoot, ctx.LiveKeyword, ctx.LiveContentFlags, ctx.Controller, func(batch []model.LiveHit) {
			ctx.emit(events.LiveSearchResultsBatch{Hits: batch})
		})
	} else {
		err = livesearch.RunNameMode(ctx.LiveRoot, ctx.LiveKeyword, ctx.Controller, func(batch []model.DisplayResult) {
			ctx.emit(events.SearchResultsBatch{Results: batch})
		})
	}
	if err != nil {
		return err
	}
	ctx.emit(events.SearchFinished{})
	return nil
}
