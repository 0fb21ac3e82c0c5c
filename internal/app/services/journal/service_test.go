package journal

import (
	"context"
	"testing"
	"time"

	domain "github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/journal"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/user"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/storage"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/storage/memory"
	apperrors "github.com/jakehorton1228-droid/habit-tracker/internal/errors"
)

func setup(t *testing.T) (*Service, string, string) {
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
	return New(store, nil), alice.ID, bob.ID
}

func TestCreateValidation(t *testing.T) {
	svc, alice, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, Params{EntryType: "rant", Mood: "meh"})
	v, ok := apperrors.AsValidation(err)
	if !ok || v.Fields["entry_type"] == "" || v.Fields["mood"] == "" {
		t.Fatalf("expected enum failures, got %v", err)
	}

	_, err = svc.Create(ctx, alice, Params{EntryType: domain.TypeFreeform, Mood: domain.MoodGood})
	if v, ok := apperrors.AsValidation(err); !ok || v.Fields["content"] == "" {
		t.Fatalf("expected content required for freeform, got %v", err)
	}

	_, err = svc.Create(ctx, alice, Params{EntryType: domain.TypePrompted, Mood: domain.MoodGood})
	if v, ok := apperrors.AsValidation(err); !ok || v.Fields["responses"] == "" {
		t.Fatalf("expected responses required for prompted, got %v", err)
	}

	_, err = svc.Create(ctx, alice, Params{
		EntryType: domain.TypeFreeform, Mood: domain.MoodGood,
		Content: "fine", Date: "today", Time: "noon",
	})
	if v, ok := apperrors.AsValidation(err); !ok || v.Fields["date"] == "" || v.Fields["time"] == "" {
		t.Fatalf("expected date and time format failures, got %v", err)
	}
}

func TestCreateDefaultsDateAndTime(t *testing.T) {
	svc, alice, _ := setup(t)
	ctx := context.Background()

	e, err := svc.Create(ctx, alice, Params{
		EntryType: domain.TypeFreeform, Mood: domain.MoodGreat, Content: "walked in the sun",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.Date != time.Now().Format("2006-01-02") {
		t.Fatalf("date = %q, want today", e.Date)
	}
	if _, err := time.Parse("15:04:05", e.Time); err != nil {
		t.Fatalf("time = %q, want HH:MM:SS", e.Time)
	}
}

func TestUpdateSwitchingTypeRevalidates(t *testing.T) {
	svc, alice, _ := setup(t)
	ctx := context.Background()

	e, err := svc.Create(ctx, alice, Params{
		EntryType: domain.TypeFreeform, Mood: domain.MoodOkay, Content: "quiet day",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Switching to prompted without responses fails even though the stored
	// entry was valid.
	_, err = svc.Update(ctx, alice, e.ID, Params{EntryType: domain.TypePrompted, Mood: domain.MoodOkay})
	if v, ok := apperrors.AsValidation(err); !ok || v.Fields["responses"] == "" {
		t.Fatalf("expected responses required, got %v", err)
	}

	updated, err := svc.Update(ctx, alice, e.ID, Params{
		EntryType: domain.TypePrompted, Mood: domain.MoodLow,
		Responses: map[string]string{"gratitude": "coffee"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Content != "" || updated.Responses["gratitude"] != "coffee" {
		t.Fatalf("expected content cleared and responses kept, got %+v", updated)
	}
	if updated.Date != e.Date || updated.Time != e.Time {
		t.Fatalf("expected date/time preserved, got %s %s", updated.Date, updated.Time)
	}
}

func TestCrossOwnerAccessIsNotFound(t *testing.T) {
	svc, alice, bob := setup(t)
	ctx := context.Background()

	e, _ := svc.Create(ctx, alice, Params{
		EntryType: domain.TypeFreeform, Mood: domain.MoodGood, Content: "mine",
	})
	if _, err := svc.Get(ctx, bob, e.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("get: expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, bob, e.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("delete: expected not found, got %v", err)
	}
}

func TestStats(t *testing.T) {
	svc, alice, bob := setup(t)
	ctx := context.Background()
	today := "2025-01-15" // a Wednesday

	add := func(date, mood string) {
		t.Helper()
		_, err := svc.Create(ctx, alice, Params{
			Date: date, EntryType: domain.TypeFreeform, Mood: mood, Content: "entry for " + date,
		})
		if err != nil {
			t.Fatalf("create %s: %v", date, err)
		}
	}
	add("2025-01-12", domain.MoodLow) // Sunday, previous Monday-start week
	add("2025-01-13", domain.MoodGood)
	add("2025-01-14", domain.MoodGood)
	add("2025-01-15", domain.MoodGreat)
	if _, err := svc.Create(ctx, alice, Params{
		Date: "2025-01-15", EntryType: domain.TypePrompted, Mood: domain.MoodOkay,
		Responses: map[string]string{"highlight": "sunset"},
	}); err != nil {
		t.Fatalf("create prompted: %v", err)
	}

	stats, err := svc.Stats(ctx, alice, today, time.Monday)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalEntries != 5 {
		t.Fatalf("total = %d, want 5", stats.TotalEntries)
	}
	if stats.EntriesThisWeek != 4 {
		t.Fatalf("this week = %d, want 4 (Monday start excludes Sunday the 12th)", stats.EntriesThisWeek)
	}
	if stats.MoodCounts[domain.MoodGood] != 2 || stats.MoodCounts[domain.MoodGreat] != 1 {
		t.Fatalf("mood counts = %+v", stats.MoodCounts)
	}
	if stats.TypeCounts[domain.TypeFreeform] != 4 || stats.TypeCounts[domain.TypePrompted] != 1 {
		t.Fatalf("type counts = %+v", stats.TypeCounts)
	}
	// 12th through 15th is a four-day run; duplicate dates count once.
	if stats.CurrentStreak != 4 || stats.BestStreak != 4 {
		t.Fatalf("streaks = %d/%d, want 4/4", stats.CurrentStreak, stats.BestStreak)
	}

	// Sunday week start pulls the 12th into the current week.
	sunStats, _ := svc.Stats(ctx, alice, today, time.Sunday)
	if sunStats.EntriesThisWeek != 5 {
		t.Fatalf("sunday week = %d, want 5", sunStats.EntriesThisWeek)
	}

	bobStats, _ := svc.Stats(ctx, bob, today, time.Monday)
	if bobStats.TotalEntries != 0 || bobStats.BestStreak != 0 {
		t.Fatalf("expected empty stats for bob, got %+v", bobStats)
	}
}

func TestListFilters(t *testing.T) {
	svc, alice, _ := setup(t)
	ctx := context.Background()

	svc.Create(ctx, alice, Params{
		Date: "2025-01-10", EntryType: domain.TypeFreeform, Mood: domain.MoodGood,
		Content: "planted tomatoes in the garden",
	})
	svc.Create(ctx, alice, Params{
		Date: "2025-01-11", EntryType: domain.TypePrompted, Mood: domain.MoodLow,
		Responses: map[string]string{"weather": "rain all day"},
	})

	got, err := svc.List(ctx, alice, storage.EntryFilter{Search: "garden"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Date != "2025-01-10" {
		t.Fatalf("search garden = %+v, want the freeform entry", got)
	}

	got, _ = svc.List(ctx, alice, storage.EntryFilter{Mood: domain.MoodLow})
	if len(got) != 1 || got[0].EntryType != domain.TypePrompted {
		t.Fatalf("mood filter = %+v, want the prompted entry", got)
	}
}
