// Package rescan implements the atomic-swap rebuild protocol: scan the root
// fresh into a side table, then swap the location to point at it and drop
// the old table. A crash between the swap and the drop leaves an orphan
// table that internal/store sweeps on its next Open.
package rescan

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dohuyhoang93/deepsearch-go/internal/scanpipeline"
	"github.com/dohuyhoang93/deepsearch-go/internal/store"
	"github.com/dohuyhoang93/deepsearch-go/internal/taskcontrol"
)

// Result reports what a completed rescan did.
type Result struct {
	NewTable string
	OldTable string
	Count    uint64
}

// Run executes R1 (scan root into a fresh side table), R2 (batch-write the
// side table), and R3 (swap the location to the side table, then drop the
// old one). ctrl is handed to the walker unchanged, so a paused controller
// pauses the R1 walk exactly as it does an initial scan; pause is not
// ignored here. Cancellation before R3 discards the partially built side
// table instead of committing it.
func Run(root string, st *store.Store, ctrl *taskcontrol.Controller, onScanProgress scanpipeline.OnScanProgress, onWrite scanpipeline.OnWriteProgress) (Result, error) {
	oldTable, err := currentTableFor(st, root)
	if err != nil {
		return Result{}, err
	}

	newTable := store.RescanTableNameFor(root, time.Now(), uuid.NewString()[:8])

	// R1 + R2: streaming scan directly into the side table.
	written, err := scanpipeline.Run(root, st, newTable, ctrl, onScanProgress, onWrite)
	if err != nil {
		return Result{}, fmt.Errorf("rescan: scan %s: %w", root, err)
	}

	if ctrl.IsCancelled() {
		if dropErr := st.DropTable(newTable); dropErr != nil {
			return Result{}, fmt.Errorf("rescan: drop cancelled side table %s: %w", newTable, dropErr)
		}
		return Result{OldTable: oldTable}, nil
	}

	// R3: swap then drop, each its own transaction. A crash before the swap
	// commits leaves the old table authoritative and the new one orphaned; a
	// crash between the swap and the drop leaves the new table authoritative
	// and the old one orphaned. Either orphan is swept on the next Store.Open.
	swappedOld, err := st.SwapLocationTable(root, newTable)
	if err != nil {
		return Result{}, fmt.Errorf("rescan: swap %s to %s: %w", root, newTable, err)
	}
	if err := st.DropTable(swappedOld); err != nil {
		return Result{}, fmt.Errorf("rescan: drop superseded table %s: %w", swappedOld, err)
	}

	return Result{NewTable: newTable, OldTable: swappedOld, Count: written}, nil
}

func currentTableFor(st *store.Store, root string) (string, error) {
	locs, err := st.ListLocations()
	if err != nil {
		return "", fmt.Errorf("rescan: list locations: %w", err)
	}
	for _, l := range locs {
		if l.Root == root {
			return l.Table, nil
		}
	}
	return "", fmt.Errorf("rescan: %s: %w", root, store.ErrLocationMissing)
}
