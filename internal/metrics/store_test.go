package metrics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cookplanner/internal/database"
	"cookplanner/internal/shared"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "recipes.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("RecordAndDailyUsage", func(t *testing.T) {
		store := newTestStore(t)

		err := store.Record(ctx, ExecutionMetric{
			Operation:        "Planner",
			Model:            "gemini-2.5-flash",
			PromptTokens:     100,
			CompletionTokens: 50,
			LatencyMS:        1200,
		})
		if err != nil {
			t.Fatalf("Failed to record metric: %v", err)
		}
		err = store.Record(ctx, ExecutionMetric{
			Operation:        "Consolidator",
			Model:            "gemini-2.5-flash",
			PromptTokens:     30,
			CompletionTokens: 20,
			LatencyMS:        800,
		})
		if err != nil {
			t.Fatalf("Failed to record metric: %v", err)
		}

		usage, err := store.GetDailyUsage(ctx, 7)
		if err != nil {
			t.Fatalf("Failed to load daily usage: %v", err)
		}
		if len(usage) != 1 {
			t.Fatalf("Expected 1 day of usage, got %d", len(usage))
		}
		if usage[0].TotalPrompt != 130 || usage[0].TotalCompletion != 70 || usage[0].TotalExecution != 2 {
			t.Errorf("Unexpected totals: %+v", usage[0])
		}
	})

	t.Run("RecordMetaSkipsEmptyUsage", func(t *testing.T) {
		store := newTestStore(t)

		if err := store.RecordMeta(ctx, shared.CallMeta{Operation: "Planner"}); err != nil {
			t.Fatalf("Failed on empty meta: %v", err)
		}
		usage, err := store.GetDailyUsage(ctx, 7)
		if err != nil {
			t.Fatalf("Failed to load daily usage: %v", err)
		}
		if len(usage) != 0 {
			t.Errorf("Expected no usage rows, got %+v", usage)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		store := newTestStore(t)

		old := ExecutionMetric{
			Operation:    "Planner",
			PromptTokens: 10,
			Timestamp:    time.Now().UTC().AddDate(0, 0, -40),
		}
		recent := ExecutionMetric{
			Operation:    "Planner",
			PromptTokens: 10,
		}
		if err := store.Record(ctx, old); err != nil {
			t.Fatal(err)
		}
		if err := store.Record(ctx, recent); err != nil {
			t.Fatal(err)
		}

		deleted, err := store.Cleanup(ctx, 30)
		if err != nil {
			t.Fatalf("Failed to clean up: %v", err)
		}
		if deleted != 1 {
			t.Errorf("Expected 1 deleted row, got %d", deleted)
		}
	})
}
