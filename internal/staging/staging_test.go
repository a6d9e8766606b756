package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mouthpiece/internal/logging"
)

func TestNewWorkspaceCreatesRunDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "staging")
	ws, err := NewWorkspace(root, "abc123")
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	if ws.Dir != filepath.Join(root, "run-abc123") {
		t.Fatalf("unexpected workspace dir %q", ws.Dir)
	}
	if info, err := os.Stat(ws.Dir); err != nil || !info.IsDir() {
		t.Fatalf("workspace not created: %v", err)
	}
	if _, err := NewWorkspace(root, "abc123"); err == nil {
		t.Fatal("expected error for duplicate request id")
	}
	if err := ws.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(ws.Dir); !os.IsNotExist(err) {
		t.Fatalf("workspace still present: %v", err)
	}
}

func TestNewWorkspaceRejectsInvalidInput(t *testing.T) {
	for _, tc := range []struct{ root, id string }{
		{"", "id"},
		{t.TempDir(), ""},
		{t.TempDir(), "../escape"},
	} {
		if _, err := NewWorkspace(tc.root, tc.id); err == nil {
			t.Errorf("expected error for root=%q id=%q", tc.root, tc.id)
		}
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOnlyOldWorkspaces(t *testing.T) {
	root := t.TempDir()
	old := time.Now().Add(-2 * time.Hour)

	oldRun := filepath.Join(root, "run-old")
	foreign := filepath.Join(root, "keep-me")
	for _, dir := range []string{oldRun, foreign} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(dir, old, old); err != nil {
			t.Fatal(err)
		}
	}
	recent, err := NewWorkspace(root, "recent")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "run-file"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := CleanStale(context.Background(), root, time.Hour, logging.NewNop())
	if len(result.Removed) != 1 || result.Removed[0] != oldRun {
		t.Fatalf("unexpected removals: %v", result.Removed)
	}
	for _, keep := range []string{foreign, recent.Dir, filepath.Join(root, "run-file")} {
		if _, err := os.Stat(keep); err != nil {
			t.Errorf("%s should still exist: %v", keep, err)
		}
	}
}

func TestCleanStaleDisabledWithZeroAge(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "run-x")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(dir, old, old); err != nil {
		t.Fatal(err)
	}
	if result := CleanStale(context.Background(), root, 0, nil); len(result.Removed) != 0 {
		t.Fatalf("expected no removals, got %v", result.Removed)
	}
}

func TestListDirectories(t *testing.T) {
	if dirs, err := ListDirectories("/nonexistent/path/12345"); err != nil || dirs != nil {
		t.Fatalf("expected nil result for missing dir, got %v, %v", dirs, err)
	}

	root := t.TempDir()
	ws, err := NewWorkspace(root, "one")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ws.Path("audio.wav"), make([]byte, 100), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "other"), 0o755); err != nil {
		t.Fatal(err)
	}

	dirs, err := ListDirectories(root)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 1 {
		t.Fatalf("expected 1 workspace, got %d", len(dirs))
	}
	if dirs[0].Name != "run-one" || dirs[0].Size != 100 {
		t.Fatalf("unexpected dir info: %+v", dirs[0])
	}
}
