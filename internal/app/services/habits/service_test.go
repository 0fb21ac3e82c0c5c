package habits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/user"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/storage"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/storage/memory"
	apperrors "github.com/jakehorton1228-droid/habit-tracker/internal/errors"
)

func setup(t *testing.T) (*Service, *memory.Store, string, string) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	alice, err := store.CreateUser(ctx, user.User{Username: "alice"})
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := store.CreateUser(ctx, user.User{Username: "bob"})
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}
	return New(store, nil), store, alice.ID, bob.ID
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _, alice, _ := setup(t)
	ctx := context.Background()

	h, err := svc.Create(ctx, alice, "  Meditate  ", "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if h.Name != "Meditate" {
		t.Fatalf("name = %q, want trimmed Meditate", h.Name)
	}
	if h.Category != "other" || h.Frequency != "daily" {
		t.Fatalf("expected defaults, got %q/%q", h.Category, h.Frequency)
	}

	_, err = svc.Create(ctx, alice, "   ", "", "")
	if v, ok := apperrors.AsValidation(err); !ok || v.Fields["name"] == "" {
		t.Fatalf("expected name validation error, got %v", err)
	}
}

func TestCrossOwnerAccessIsNotFound(t *testing.T) {
	svc, _, alice, bob := setup(t)
	ctx := context.Background()

	h, err := svc.Create(ctx, alice, "Run", "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Bob reading, updating, or deleting Alice's habit looks like a
	// missing row; existence is not leaked.
	if _, err := svc.Get(ctx, bob, h.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("get: expected not found, got %v", err)
	}
	if _, err := svc.Update(ctx, bob, h.ID, "Stolen", "", ""); !apperrors.IsNotFound(err) {
		t.Fatalf("update: expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, bob, h.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("delete: expected not found, got %v", err)
	}

	// Logging against someone else's habit is forbidden, not hidden.
	if _, err := svc.LogCompletion(ctx, bob, h.ID, "2025-01-15", ""); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("log: expected forbidden, got %v", err)
	}
}

func TestLogCompletionValidatesDate(t *testing.T) {
	svc, _, alice, _ := setup(t)
	ctx := context.Background()

	h, _ := svc.Create(ctx, alice, "Run", "", "")

	l, err := svc.LogCompletion(ctx, alice, h.ID, "", "felt good")
	if err != nil {
		t.Fatalf("log with default date: %v", err)
	}
	if l.Date != time.Now().Format("2006-01-02") {
		t.Fatalf("date = %q, want today", l.Date)
	}
	if l.Note != "felt good" {
		t.Fatalf("note = %q", l.Note)
	}

	_, err = svc.LogCompletion(ctx, alice, h.ID, "15/01/2025", "")
	if v, ok := apperrors.AsValidation(err); !ok || v.Fields["date"] == "" {
		t.Fatalf("expected date validation error, got %v", err)
	}
}

func TestLogCreateThenDeleteRoundTrips(t *testing.T) {
	svc, _, alice, _ := setup(t)
	ctx := context.Background()
	today := "2025-01-15"

	h, _ := svc.Create(ctx, alice, "Run", "", "")

	before, err := svc.Stats(ctx, alice, today, time.Monday)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if before.Habits[0].DoneToday || before.Habits[0].CurrentStreak != 0 {
		t.Fatalf("expected clean slate, got %+v", before.Habits[0])
	}

	l, err := svc.LogCompletion(ctx, alice, h.ID, today, "")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	during, _ := svc.Stats(ctx, alice, today, time.Monday)
	if !during.Habits[0].DoneToday || during.Habits[0].CurrentStreak != 1 {
		t.Fatalf("expected done today with streak 1, got %+v", during.Habits[0])
	}

	if err := svc.DeleteLog(ctx, alice, l.ID); err != nil {
		t.Fatalf("delete log: %v", err)
	}
	after, _ := svc.Stats(ctx, alice, today, time.Monday)
	if after.Habits[0].DoneToday || after.Habits[0].CurrentStreak != 0 {
		t.Fatalf("expected pre-creation view restored, got %+v", after.Habits[0])
	}
}

func TestStats(t *testing.T) {
	svc, _, alice, bob := setup(t)
	ctx := context.Background()
	today := "2025-01-15"

	run, _ := svc.Create(ctx, alice, "Run", "fitness", "")
	read, _ := svc.Create(ctx, alice, "Read", "learning", "")

	for _, d := range []string{"2025-01-13", "2025-01-14", "2025-01-15"} {
		if _, err := svc.LogCompletion(ctx, alice, run.ID, d, ""); err != nil {
			t.Fatalf("log run %s: %v", d, err)
		}
	}
	// Duplicate log for the same day counts once.
	svc.LogCompletion(ctx, alice, run.ID, today, "again")
	svc.LogCompletion(ctx, alice, read.ID, "2025-01-14", "")

	stats, err := svc.Stats(ctx, alice, today, time.Monday)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalHabits != 2 {
		t.Fatalf("total habits = %d, want 2", stats.TotalHabits)
	}
	if stats.CompletionsToday != 1 {
		t.Fatalf("completions today = %d, want 1", stats.CompletionsToday)
	}

	// Habits come back in creation order.
	runStats, readStats := stats.Habits[0], stats.Habits[1]
	if runStats.ID != run.ID || readStats.ID != read.ID {
		t.Fatalf("unexpected habit order: %s then %s", stats.Habits[0].Name, stats.Habits[1].Name)
	}
	if !runStats.DoneToday || runStats.CurrentStreak != 3 || runStats.BestStreak != 3 {
		t.Fatalf("run stats = %+v, want streak 3 done today", runStats)
	}
	if readStats.DoneToday || readStats.CurrentStreak != 1 || readStats.BestStreak != 1 {
		t.Fatalf("read stats = %+v, want grace streak 1", readStats)
	}
	if len(runStats.Heatmap) != 90 {
		t.Fatalf("heatmap cells = %d, want 90", len(runStats.Heatmap))
	}
	// 4 completed slots out of 2 habits * 3 elapsed days this week.
	week := stats.WeeklySeries[len(stats.WeeklySeries)-1]
	if week.Possible != 6 || week.Completed != 4 {
		t.Fatalf("current week = %+v, want 4/6", week)
	}
	if week.Rate != 67 {
		t.Fatalf("rate = %d, want 67", week.Rate)
	}

	// Bob sees none of it.
	bobStats, _ := svc.Stats(ctx, bob, today, time.Monday)
	if bobStats.TotalHabits != 0 || len(bobStats.Habits) != 0 {
		t.Fatalf("expected empty stats for bob, got %+v", bobStats)
	}
}

func TestDeleteCascadesLogsOutOfStats(t *testing.T) {
	svc, store, alice, _ := setup(t)
	ctx := context.Background()
	today := "2025-01-15"

	h, _ := svc.Create(ctx, alice, "Run", "", "")
	svc.LogCompletion(ctx, alice, h.ID, today, "")

	if err := svc.Delete(ctx, alice, h.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	logs, err := store.ListHabitLogs(ctx, alice, storage.LogFilter{})
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 0 {
		t.Fatalf("expected cascade to remove logs, found %d", len(logs))
	}
}
