// Package scanpipeline connects the Walker to the Store through a bounded
// channel: one goroutine walks the filesystem and streams records in,
// another accumulates them into batches and commits each to a table.
package scanpipeline

import (
	"golang.org/x/sync/errgroup"

	"github.com/dohuyhoang93/deepsearch-go/internal/config"
	"github.com/dohuyhoang93/deepsearch-go/internal/model"
	"github.com/dohuyhoang93/deepsearch-go/internal/store"
	"github.com/dohuyhoang93/deepsearch-go/internal/taskcontrol"
	"github.com/dohuyhoang93/deepsearch-go/internal/walker"
)

// OnScanProgress reports Phase-B traversal progress (0..1); the caller
// remaps it into its workflow's own progress budget.
type OnScanProgress func(fraction float64)

// OnWriteProgress reports the running written-record count after each
// committed batch.
type OnWriteProgress func(written uint64)

// Pipeline is a started producer: a Walker feeding a bounded channel on its
// own goroutine. Pair it with Drain to consume it.
type Pipeline struct {
	records chan model.PathRecord
	group   *errgroup.Group
}

// Start launches the Walker over root, streaming discovered records into a
// channel of capacity config.ScanChannelCapacity. The channel closes once
// the walk finishes or is cancelled.
func Start(root string, ctrl *taskcontrol.Controller, onScanProgress OnScanProgress) *Pipeline {
	ch := make(chan model.PathRecord, config.ScanChannelCapacity)
	g := new(errgroup.Group)
	g.Go(func() error {
		defer close(ch)
		return walker.Walk(root, ctrl, func(rec model.PathRecord) {
			ch <- rec
		}, walker.OnProgress(onScanProgress))
	})
	return &Pipeline{records: ch, group: g}
}

// Drain consumes p's channel, batching records into config.BatchSize chunks
// and committing each to table via st.WriteBatch. It returns once the
// channel closes and the final partial batch has been flushed. On a
// cancelled walk the channel simply closes early: whatever was already
// batched and committed stays committed, which is the accepted partial-index
// outcome for a cancelled initial scan.
func Drain(p *Pipeline, st *store.Store, table string, onWrite OnWriteProgress) (uint64, error) {
	var written uint64
	batch := make([]model.PathRecord, 0, config.BatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := st.WriteBatch(table, batch); err != nil {
			return err
		}
		written += uint64(len(batch))
		batch = batch[:0]
		if onWrite != nil {
			onWrite(written)
		}
		return nil
	}

	for rec := range p.records {
		batch = append(batch, rec)
		if len(batch) >= config.BatchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	if err := flush(); err != nil {
		return written, err
	}
	if err := p.group.Wait(); err != nil {
		return written, err
	}
	return written, nil
}

// Run is the common case: walk root and write every discovered record into
// table in one call, used directly by rescan.Run. The initial-scan and
// rescan workflows instead call Start and Drain as two separate stages so
// the registry can name them independently while still streaming
// concurrently.
func Run(root string, st *store.Store, table string, ctrl *taskcontrol.Controller, onScanProgress OnScanProgress, onWrite OnWriteProgress) (uint64, error) {
	p := Start(root, ctrl, onScanProgress)
	return Drain(p, st, table, onWrite)
}
