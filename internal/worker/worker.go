// Package worker is the Command/Event boundary's consumer side: one
// long-lived loop that exclusively owns the Store, receives Commands from
// the presentation layer, runs the matching workflow, and streams Events
// back. The presentation side never touches the Store directly.
package worker

import (
	"log"
	"os"

	"github.com/dohuyhoang93/deepsearch-go/internal/events"
	"github.com/dohuyhoang93/deepsearch-go/internal/livesearch"
	"github.com/dohuyhoang93/deepsearch-go/internal/query"
	"github.com/dohuyhoang93/deepsearch-go/internal/store"
	"github.com/dohuyhoang93/deepsearch-go/internal/taskcontrol"
	"github.com/dohuyhoang93/deepsearch-go/internal/workflow"
)

var logger = log.New(os.Stderr, "deepsearch/worker: ", log.LstdFlags)

// OpenFunc hands an OpenFile/OpenLocation path to the OS shell. The actual
// shell-out lives outside the core; a nil OpenFunc makes both commands
// no-ops.
type OpenFunc func(path string) error

// Worker processes Commands sequentially on whatever goroutine calls Run.
// Sequential dispatch is what gives the boundary its ordering: events
// of one workflow never interleave with another's, and a LocationsUpdated
// emitted after a ScanCompleted reflects the post-scan state.
type Worker struct {
	store  *store.Store
	engine *workflow.Engine
	open   OpenFunc
}

// New builds a Worker over st with the built-in workflows registered.
func New(st *store.Store, open OpenFunc) *Worker {
	r := workflow.NewRegistry()
	workflow.RegisterBuiltins(r)
	return &Worker{store: st, engine: workflow.NewEngine(r), open: open}
}

// Run consumes commands until the channel closes, then closes evs. Every
// event a command produces is sent before the next command is dequeued.
func (w *Worker) Run(commands <-chan events.Command, evs chan<- events.Event) {
	defer close(evs)
	for cmd := range commands {
		w.dispatch(cmd, evs)
	}
}

func (w *Worker) dispatch(cmd events.Command, evs chan<- events.Event) {
	emit := func(e events.Event) { evs <- e }

	switch c := cmd.(type) {
	case events.FetchLocations:
		w.emitLocations(emit)

	case events.StartInitialScan:
		ctx := &workflow.Context{
			Store:      w.store,
			Controller: controllerOr(c.Controller),
			Emit:       emit,
			ScanPath:   c.Path,
		}
		if err := w.engine.RunWorkflow("initial_scan", ctx); err != nil {
			logger.Printf("initial scan of %s failed: %v", c.Path, err)
			return
		}
		w.emitLocations(emit)

	case events.StartRescan:
		ctx := &workflow.Context{
			Store:      w.store,
			Controller: controllerOr(c.Controller),
			Emit:       emit,
			ScanPath:   c.Path,
		}
		if err := w.engine.RunWorkflow("rescan", ctx); err != nil {
			logger.Printf("rescan of %s failed: %v", c.Path, err)
			return
		}
		w.emitLocations(emit)

	case events.StartSearch:
		w.dispatchSearch(c, emit)

	case events.DeleteLocation:
		if err := w.store.DeleteLocation(c.Path); err != nil {
			emit(events.Error{Message: err.Error()})
			return
		}
		w.emitLocations(emit)

	case events.OpenFile:
		w.openPath(c.Path, emit)

	case events.OpenLocation:
		w.openPath(c.Path, emit)
	}
}

func (w *Worker) dispatchSearch(c events.StartSearch, emit func(events.Event)) {
	ctrl := controllerOr(c.Controller)

	if c.LiveActive {
		ctx := &workflow.Context{
			Store:       w.store,
			Controller:  ctrl,
			Emit:        emit,
			LiveRoot:    c.LivePath,
			LiveKeyword: c.Keyword,
			LiveContent: c.SearchInContent,
			LiveContentFlags: livesearch.ContentFlags{
				PDF:       c.SearchInPDF,
				Office:    c.SearchInOffice,
				PlainText: c.SearchInPlainText,
			},
		}
		if err := w.engine.RunWorkflow("live_search", ctx); err != nil {
			logger.Printf("live search under %s failed: %v", c.LivePath, err)
		}
		return
	}

	locations := make([]query.Location, 0, len(c.Locations))
	for _, l := range c.Locations {
		locations = append(locations, query.Location{Root: l.Root, Table: l.Table})
	}
	ctx := &workflow.Context{
		Store:          w.store,
		Controller:     ctrl,
		Emit:           emit,
		QueryKeyword:   c.Keyword,
		QueryLocations: locations,
	}
	if err := w.engine.RunWorkflow("search", ctx); err != nil {
		logger.Printf("search failed: %v", err)
	}
}

func (w *Worker) emitLocations(emit func(events.Event)) {
	locs, err := w.store.ListLocations()
	if err != nil {
		emit(events.Error{Message: err.Error()})
		return
	}
	summaries := make([]events.LocationSummary, 0, len(locs))
	for _, l := range locs {
		count, err := w.store.TableLen(l.Table)
		if err != nil {
			emit(events.Error{Message: err.Error()})
			return
		}
		summaries = append(summaries, events.LocationSummary{Root: l.Root, Table: l.Table, RecordCount: count})
	}
	emit(events.LocationsUpdated{Locations: summaries})
}

func (w *Worker) openPath(path string, emit func(events.Event)) {
	if w.open == nil {
		return
	}
	if err := w.open(path); err != nil {
		emit(events.Error{Message: err.Error()})
	}
}

func controllerOr(ctrl *taskcontrol.Controller) *taskcontrol.Controller {
	if ctrl != nil {
		return ctrl
	}
	return taskcontrol.New()
}
