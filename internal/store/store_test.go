package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/dohuyhoang93/deepsearch-go/internal/model"
	"github.com/dohuyhoang93/deepsearch-go/internal/normalize"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetOrCreateTableForIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	root := "/home/user/docs"

	first, err := s.GetOrCreateTableFor(root)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := s.GetOrCreateTableFor(root)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if first != second {
		t.Fatalf("table name changed across calls: %q vs %q", first, second)
	}
	if first != TableNameFor(root) {
		t.Fatalf("table name %q doesn't match deterministic name %q", first, TableNameFor(root))
	}
}

func TestWriteBatchAndSearchInTable(t *testing.T) {
	s := openTestStore(t)
	table, err := s.GetOrCreateTableFor("/root")
	if err != nil {
		t.Fatalf("get-or-create: %v", err)
	}

	records := []model.PathRecord{
		{RelPath: "alpha beta gamma.txt", Record: model.FileRecord{NormalizedName: normalize.String("alpha beta gamma.txt")}},
		{RelPath: "alpha.txt", Record: model.FileRecord{NormalizedName: normalize.String("alpha.txt")}},
	}
	if err := s.WriteBatch(table, records); err != nil {
		t.Fatalf("write batch: %v", err)
	}

	n, err := s.TableLen(table)
	if err != nil {
		t.Fatalf("table len: %v", err)
	}
	if n != 2 {
		t.Fatalf("table len = %d, want 2", n)
	}

	matches, err := s.SearchInTable(table, "alpha beta")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 || matches[0] != "alpha beta gamma.txt" {
		t.Fatalf("two-token search = %v, want only the file containing both tokens", matches)
	}
}

func TestSearchInTableEmptyQueryReturnsNoResults(t *testing.T) {
	s := openTestStore(t)
	table, _ := s.GetOrCreateTableFor("/root")
	_ = s.WriteBatch(table, []model.PathRecord{
		{RelPath: "a.txt", Record: model.FileRecord{NormalizedName: "a"}},
	})

	matches, err := s.SearchInTable(table, "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("empty query should yield zero results, got %v", matches)
	}
}

func TestDeleteLocationRemovesRootAndTable(t *testing.T) {
	s := openTestStore(t)
	root := "/root"
	table, _ := s.GetOrCreateTableFor(root)
	_ = s.WriteBatch(table, []model.PathRecord{{RelPath: "a.txt", Record: model.FileRecord{NormalizedName: "a"}}})

	if err := s.DeleteLocation(root); err != nil {
		t.Fatalf("delete location: %v", err)
	}

	locs, err := s.ListLocations()
	if err != nil {
		t.Fatalf("list locations: %v", err)
	}
	for _, l := range locs {
		if l.Root == root {
			t.Fatalf("root %q still present after delete", root)
		}
	}

	if n, _ := s.TableLen(table); n != 0 {
		t.Fatalf("table should be gone/empty after delete, got len %d", n)
	}
}

func TestDeleteLocationOnAbsentRootIsNoop(t *testing.T) {
	s := openTestStore(t)
	if err := s.DeleteLocation("/does/not/exist"); err != nil {
		t.Fatalf("delete on absent root should be a no-op, got %v", err)
	}
}

func TestSwapLocationTableReturnsOldNameAndUpdatesPointer(t *testing.T) {
	s := openTestStore(t)
	root := "/root"
	oldTable, _ := s.GetOrCreateTableFor(root)

	newTable := RescanTableNameFor(root, time.Now(), "")
	if err := s.WriteBatch(newTable, []model.PathRecord{{RelPath: "a.txt", Record: model.FileRecord{NormalizedName: "a"}}}); err != nil {
		t.Fatalf("write new table: %v", err)
	}

	returnedOld, err := s.SwapLocationTable(root, newTable)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if returnedOld != oldTable {
		t.Fatalf("swap returned %q, want old table %q", returnedOld, oldTable)
	}

	locs, err := s.ListLocations()
	if err != nil {
		t.Fatalf("list locations: %v", err)
	}
	found := false
	for _, l := range locs {
		if l.Root == root {
			found = true
			if l.Table != newTable {
				t.Fatalf("location points to %q, want %q", l.Table, newTable)
			}
		}
	}
	if !found {
		t.Fatal("root missing from locations after swap")
	}

	if err := s.DropTable(returnedOld); err != nil {
		t.Fatalf("drop old table: %v", err)
	}
}

func TestSwapLocationTableFailsForMissingRoot(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.SwapLocationTable("/nope", "index_whatever"); err == nil {
		t.Fatal("expected ErrLocationMissing for unregistered root")
	}
}

func TestOrphanTableSweptOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	orphanTable := "index_deadbeef"
	if err := s.WriteBatch(orphanTable, []model.PathRecord{{RelPath: "x", Record: model.FileRecord{}}}); err != nil {
		t.Fatalf("write orphan: %v", err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	n, err := s2.TableLen(orphanTable)
	if err != nil {
		t.Fatalf("table len: %v", err)
	}
	if n != 0 {
		t.Fatalf("orphan table should have been swept on open, still has %d rows", n)
	}
}

func TestLocationsPointAtOldTableUntilSwapCommits(t *testing.T) {
	s := openTestStore(t)
	root := "/root"
	oldTable, _ := s.GetOrCreateTableFor(root)

	// Populate the rescan side table. Until the swap commits, readers must
	// still be routed to the old table.
	sideTable := RescanTableNameFor(root, time.Now(), "pre")
	if err := s.WriteBatch(sideTable, []model.PathRecord{{RelPath: "fresh.txt", Record: model.FileRecord{NormalizedName: "fresh"}}}); err != nil {
		t.Fatalf("write side table: %v", err)
	}

	locs, err := s.ListLocations()
	if err != nil {
		t.Fatalf("list locations: %v", err)
	}
	for _, l := range locs {
		if l.Root == root && l.Table != oldTable {
			t.Fatalf("location moved off %q before the swap committed, got %q", oldTable, l.Table)
		}
	}

	if _, err := s.SwapLocationTable(root, sideTable); err != nil {
		t.Fatalf("swap: %v", err)
	}
	locs, _ = s.ListLocations()
	for _, l := range locs {
		if l.Root == root && l.Table != sideTable {
			t.Fatalf("location should point at %q after swap, got %q", sideTable, l.Table)
		}
	}
}
