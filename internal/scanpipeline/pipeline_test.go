package scanpipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dohuyhoang93/deepsearch-go/internal/store"
	"github.com/dohuyhoang93/deepsearch-go/internal/taskcontrol"
)

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunWritesEveryDiscoveredRecord(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.txt"), "x")
	mustWriteFile(t, filepath.Join(root, "sub", "b.txt"), "y")
	mustWriteFile(t, filepath.Join(root, "sub", "deep", "c.txt"), "z")

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	table, err := st.GetOrCreateTableFor(root)
	if err != nil {
		t.Fatalf("get-or-create: %v", err)
	}

	var lastWritten uint64
	n, err := Run(root, st, table, taskcontrol.New(), nil, func(written uint64) {
		lastWritten = written
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 3 {
		t.Fatalf("wrote %d records, want 3", n)
	}
	if lastWritten != 3 {
		t.Fatalf("last progress callback reported %d, want 3", lastWritten)
	}

	length, err := st.TableLen(table)
	if err != nil {
		t.Fatalf("table len: %v", err)
	}
	if length != 3 {
		t.Fatalf("table len = %d, want 3", length)
	}
}

func TestRunOnCancelledControllerWritesNothing(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.txt"), "x")

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	table, err := st.GetOrCreateTableFor(root)
	if err != nil {
		t.Fatalf("get-or-create: %v", err)
	}

	ctrl := taskcontrol.New()
	ctrl.Cancel()

	n, err := Run(root, st, table, ctrl, nil, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 0 {
		t.Fatalf("wrote %d records after cancel, want 0", n)
	}
}
