// Package workflow is the engine that threads a Context through an ordered
// list of named Processes, streaming events out as it goes. A Workflow is
// data — a list of process names in the Registry — never a hard-coded call
// chain.
package workflow

import (
	"github.com/dohuyhoang93/deepsearch-go/internal/events"
	"github.com/dohuyhoang93/deepsearch-go/internal/livesearch"
	"github.com/dohuyhoang93/deepsearch-go/internal/query"
	"github.com/dohuyhoang93/deepsearch-go/internal/scanpipeline"
	"github.com/dohuyhoang93/deepsearch-go/internal/store"
	"github.com/dohuyhoang93/deepsearch-go/internal/taskcontrol"
)

// Context is the mutable bag threaded through one workflow run. Rather than
// one tagged union with a field for every workflow, each workflow only
// populates the fields its own processes read.
type Context struct {
	Store      *store.Store
	Controller *taskcontrol.Controller
	Emit       func(events.Event)

	// initial_scan / rescan
	ScanPath string

	// search (indexed)
	QueryKeyword   string
	QueryLocations []query.Location

	// live_search
	LiveRoot         string
	LiveKeyword      string
	LiveContent      bool
	LiveContentFlags livesearch.ContentFlags

	// carried between processes of the same run
	scanTable    string
	scanPipeline *scanpipeline.Pipeline
	rescanNew    string
	writtenCount uint64
}

func (c *Context) emit(e events.Event) {
	if c.Emit != nil {
		c.Emit(e)
	}
}
