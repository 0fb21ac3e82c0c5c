package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/goal"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/journal"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/user"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "sqlmock")), mock
}

func TestCreateUserMapsUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	_, err := store.CreateUser(context.Background(), user.User{Username: "alice", PasswordHash: "x"})
	if !errors.Is(err, storage.ErrDuplicateUsername) {
		t.Fatalf("expected duplicate username error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "username", "email", "password_hash", "created_at", "updated_at"},
		).AddRow("u1", "alice", "alice@example.com", "hash", now, now))

	u, err := store.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.ID != "u1" || u.PasswordHash != "hash" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestGetHabitMissingRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM habits WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetHabit(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestDeleteHabitZeroRows(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM habits WHERE id").
		WithArgs("h1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.DeleteHabit(context.Background(), "h1"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows for zero-row delete, got %v", err)
	}
}

func TestListHabitLogsAppliesFilters(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT (.+) FROM habit_logs WHERE user_id = \$1 AND habit_id = \$2 AND date >= \$3 AND date <= \$4`).
		WithArgs("u1", "h1", "2025-01-01", "2025-01-31").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "habit_id", "user_id", "date", "note", "created_at"},
		).AddRow("l1", "h1", "u1", "2025-01-15", "", now))

	logs, err := store.ListHabitLogs(context.Background(), "u1", storage.LogFilter{
		HabitID:  "h1",
		DateFrom: "2025-01-01",
		DateTo:   "2025-01-31",
	})
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Date != "2025-01-15" {
		t.Fatalf("unexpected logs %+v", logs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGoalNullableDates(t *testing.T) {
	store, mock := newMockStore(t)

	// Empty start/end dates are stored as NULL and NULLs come back as empty
	// strings.
	mock.ExpectExec("INSERT INTO goals").
		WithArgs(sqlmock.AnyArg(), "u1", "Read books", "", "learning", "books", 12.0, 0.0,
			sql.NullString{}, sql.NullString{}, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := store.CreateGoal(context.Background(), goal.Goal{
		UserID: "u1", Name: "Read books", Category: "learning", Unit: "books", TargetValue: 12,
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM goals WHERE id").
		WithArgs(created.ID).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "name", "description", "category", "unit",
				"target_value", "current_value", "start_date", "end_date", "created_at", "updated_at"},
		).AddRow(created.ID, "u1", "Read books", "", "learning", "books", 12.0, 0.0, nil, nil, now, now))

	got, err := store.GetGoal(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if got.StartDate != "" || got.EndDate != "" {
		t.Fatalf("expected empty dates, got %q/%q", got.StartDate, got.EndDate)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEntryResponsesJSONRoundTrip(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM journal_entries WHERE id").
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "date", "time", "entry_type", "mood",
				"content", "responses", "created_at", "updated_at"},
		).AddRow("e1", "u1", "2025-01-15", "21:00:00", journal.TypePrompted, journal.MoodGood,
			"", []byte(`{"gratitude":"the rain"}`), now, now))

	e, err := store.GetEntry(context.Background(), "e1")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if e.Responses["gratitude"] != "the rain" {
		t.Fatalf("responses = %+v", e.Responses)
	}
}
