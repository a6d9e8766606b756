package history_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"mouthpiece/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := history.Entry{
		RequestID:  "r1",
		Name:       "greeting",
		InputPath:  "/tmp/greeting.mp3",
		Format:     "json",
		Recognizer: "phonetic",
		CueCount:   4,
		Duration:   2.0,
		Delivered:  true,
		StartedAt:  base,
		Elapsed:    1500 * time.Millisecond,
	}
	second := history.Entry{
		RequestID:    "r2",
		Name:         "farewell",
		InputPath:    "/tmp/farewell.mp3",
		Format:       "tsv",
		Recognizer:   "default",
		Outcome:      history.OutcomeFailed,
		FailedStage:  "analyze",
		ErrorKind:    "ToolNotFound",
		ErrorMessage: "rhubarb executable not found",
		StartedAt:    base.Add(time.Minute),
	}
	for _, e := range []history.Entry{first, second} {
		if _, err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].RequestID != "r2" || got[1].RequestID != "r1" {
		t.Fatalf("expected newest first, got %s then %s", got[0].RequestID, got[1].RequestID)
	}
	if got[0].Outcome != history.OutcomeFailed || got[0].ErrorKind != "ToolNotFound" || got[0].FailedStage != "analyze" {
		t.Fatalf("unexpected failure entry %+v", got[0])
	}
	r1 := got[1]
	if r1.Outcome != history.OutcomeSucceeded || !r1.Delivered || r1.CueCount != 4 || r1.Elapsed != 1500*time.Millisecond {
		t.Fatalf("unexpected success entry %+v", r1)
	}
	if !r1.StartedAt.Equal(base) {
		t.Fatalf("expected start %v, got %v", base, r1.StartedAt)
	}
}

func TestRecentLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for i := range 5 {
		if _, err := store.Record(ctx, history.Entry{RequestID: fmt.Sprint(i), Name: "n", InputPath: "in", Format: "json", Recognizer: "default"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	got, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
}

func TestReopenKeepsRows(t *testing.T) {
	dir := t.TempDir()
	store, err := history.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.Record(context.Background(), history.Entry{RequestID: "a", Name: "n", InputPath: "in", Format: "xml", Recognizer: "default"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	_ = store.Close()

	reopened, err := history.Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Recent(context.Background(), 0)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected persisted row, got %d (%v)", len(got), err)
	}
}

func TestConcurrentRecord(t *testing.T) {
	store := openStore(t)
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Record(context.Background(), history.Entry{RequestID: fmt.Sprint(i), Name: "n", InputPath: "in", Format: "json", Recognizer: "default"})
			if err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Record: %v", err)
	}
	got, err := store.Recent(context.Background(), 100)
	if err != nil || len(got) != 16 {
		t.Fatalf("expected 16 rows, got %d (%v)", len(got), err)
	}
}

func TestOpenRequiresDir(t *testing.T) {
	if _, err := history.Open(" "); err == nil {
		t.Fatal("expected error for empty state dir")
	}
}
