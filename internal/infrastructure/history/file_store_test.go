package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"veillellm/internal/domain"
)

func testRun(i int) domain.PipelineRun {
	return domain.PipelineRun{
		ExecutionID: fmt.Sprintf("run-%03d", i),
		StartedAt:   time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute),
		CompletedAt: time.Date(2025, time.November, 1, 0, 1, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute),
		Status:      domain.RunCompleted,
	}
}

func TestFileStoreAppendAndList(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "history.json"))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.Append(ctx, testRun(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	runs, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].ExecutionID != "run-002" {
		t.Fatalf("expected most recent first, got %s", runs[0].ExecutionID)
	}
	if runs[2].ExecutionID != "run-000" {
		t.Fatalf("expected oldest last, got %s", runs[2].ExecutionID)
	}
}

func TestFileStoreBound(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "history.json"))
	ctx := context.Background()

	for i := 0; i < maxEntries+10; i++ {
		if err := store.Append(ctx, testRun(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	runs, err := store.List(ctx, maxEntries+10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != maxEntries {
		t.Fatalf("expected exactly %d retained runs, got %d", maxEntries, len(runs))
	}
	if runs[0].ExecutionID != fmt.Sprintf("run-%03d", maxEntries+9) {
		t.Fatalf("most recent run missing, got %s", runs[0].ExecutionID)
	}
	if runs[len(runs)-1].ExecutionID != "run-010" {
		t.Fatalf("oldest retained run wrong, got %s", runs[len(runs)-1].ExecutionID)
	}
}

func TestFileStoreLimit(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "history.json"))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, testRun(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ExecutionID != "run-004" || runs[1].ExecutionID != "run-003" {
		t.Fatalf("unexpected order: %s, %s", runs[0].ExecutionID, runs[1].ExecutionID)
	}
}

func TestFileStoreLastOnEmptyStore(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "history.json"))

	last, err := store.Last(context.Background())
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if last != nil {
		t.Fatalf("expected nil on empty store, got %+v", last)
	}
}

func TestFileStoreLast(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "history.json"))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := store.Append(ctx, testRun(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	last, err := store.Last(ctx)
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if last == nil || last.ExecutionID != "run-001" {
		t.Fatalf("unexpected last run: %+v", last)
	}
}
