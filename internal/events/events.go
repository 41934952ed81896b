// Package events defines the Command/Event boundary between the
// presentation layer and the worker: the presentation side sends a Command
// over a buffered channel, the worker builds a workflow.Context, runs the
// named workflow, and streams Events back until the workflow terminates.
package events

import (
	"github.com/dohuyhoang93/deepsearch-go/internal/model"
	"github.com/dohuyhoang93/deepsearch-go/internal/taskcontrol"
)

// Command is implemented by every presentation-to-worker request.
type Command interface{ isCommand() }

// FetchLocations asks the worker to emit a fresh LocationsUpdated.
type FetchLocations struct{}

func (FetchLocations) isCommand() {}

// StartInitialScan begins scanning Path into a brand new table.
type StartInitialScan struct {
	Path       string
	Controller *taskcontrol.Controller
}

func (StartInitialScan) isCommand() {}

// StartRescan rebuilds Path's table via the atomic-swap protocol.
type StartRescan struct {
	Path       string
	Controller *taskcontrol.Controller
}

func (StartRescan) isCommand() {}

// SearchLocation names one (root, table) pair to search.
type SearchLocation struct {
	Root  string
	Table string
}

// StartSearch begins either an indexed search over Locations or, when
// LiveActive is set, a direct filesystem search rooted at LivePath.
type StartSearch struct {
	Locations  []SearchLocation
	Keyword    string
	LiveActive bool
	LivePath   string

	SearchInContent   bool
	SearchInPDF       bool
	SearchInOffice    bool
	SearchInPlainText bool

	Controller *taskcontrol.Controller
}

func (StartSearch) isCommand() {}

// DeleteLocation removes a root and its table.
type DeleteLocation struct{ Path string }

func (DeleteLocation) isCommand() {}

// OpenFile delegates opening a file to the OS.
type OpenFile struct{ Path string }

func (OpenFile) isCommand() {}

// OpenLocation delegates opening a directory to the OS.
type OpenLocation struct{ Path string }

func (OpenLocation) isCommand() {}

// Event is implemented by every worker-to-presentation notification.
type Event interface{ isEvent() }

// LocationSummary is one row of a LocationsUpdated event.
type LocationSummary struct {
	Root        string
	Table       string
	RecordCount uint64
}

// LocationsUpdated carries the full current set of indexed locations.
type LocationsUpdated struct{ Locations []LocationSummary }

func (LocationsUpdated) isEvent() {}

// ScanProgress reports fractional progress (0..1) of a scan or rescan.
type ScanProgress struct {
	Fraction float64
	Status   string
}

func (ScanProgress) isEvent() {}

// ScanCompleted signals the end of a scan or rescan, with the final record
// count written (0 on a cancelled rescan; a cancelled initial scan reports
// the records committed before the cancel).
type ScanCompleted struct{ FinalCount uint64 }

func (ScanCompleted) isEvent() {}

// SearchResultsBatch carries up to config.SearchBatchSize indexed results.
type SearchResultsBatch struct{ Results []model.DisplayResult }

func (SearchResultsBatch) isEvent() {}

// LiveSearchResultsBatch carries up to config.LiveSearchBatchSize live hits.
type LiveSearchResultsBatch struct{ Hits []model.LiveHit }

func (LiveSearchResultsBatch) isEvent() {}

// SearchFinished terminates a StartSearch workflow; exactly one is emitted
// per search, after its last results batch.
type SearchFinished struct{}

func (SearchFinished) isEvent() {}

// Error terminates a workflow early with a message suitable for display.
type Error struct{ Message string }

func (Error) isEvent() {}
