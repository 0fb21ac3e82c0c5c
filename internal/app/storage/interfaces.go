// Package storage defines the persistence interfaces the services depend on,
// plus the list filters the stores understand. Missing rows surface as
// sql.ErrNoRows from every implementation; the services translate that into
// the not-found taxonomy.
package storage

import (
	"context"
	"errors"

	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/goal"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/habit"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/journal"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/user"
)

// ErrDuplicateUsername is returned by CreateUser when the username is taken.
// The postgres store maps the unique-violation error onto it; the memory
// store enforces it directly.
var ErrDuplicateUsername = errors.New("username already exists")

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByUsername(ctx context.Context, username string) (user.User, error)
}

// HabitFilter narrows and orders a habit list. Ordering accepts "name",
// "-name", "created_at", and "-created_at"; empty means "-created_at".
type HabitFilter struct {
	Category  string
	Frequency string
	Search    string
	Ordering  string
}

// LogFilter narrows a habit log list. Date bounds are inclusive.
type LogFilter struct {
	HabitID  string
	DateFrom string
	DateTo   string
}

// HabitStore persists habits and their completion logs. Deleting a habit
// deletes its logs.
type HabitStore interface {
	CreateHabit(ctx context.Context, h habit.Habit) (habit.Habit, error)
	UpdateHabit(ctx context.Context, h habit.Habit) (habit.Habit, error)
	GetHabit(ctx context.Context, id string) (habit.Habit, error)
	ListHabits(ctx context.Context, userID string, filter HabitFilter) ([]habit.Habit, error)
	DeleteHabit(ctx context.Context, id string) error

	CreateHabitLog(ctx context.Context, l habit.Log) (habit.Log, error)
	GetHabitLog(ctx context.Context, id string) (habit.Log, error)
	ListHabitLogs(ctx context.Context, userID string, filter LogFilter) ([]habit.Log, error)
	DeleteHabitLog(ctx context.Context, id string) error
}

// GoalFilter narrows a goal list. ActiveOn, when set, keeps goals whose end
// date is empty or on/after that day.
type GoalFilter struct {
	Category string
	Search   string
	ActiveOn string
}

// ProgressFilter narrows a progress ledger list. Date bounds are inclusive.
type ProgressFilter struct {
	GoalID   string
	DateFrom string
	DateTo   string
}

// GoalStore persists goals and their progress ledgers. Deleting a goal
// deletes its ledger entries.
type GoalStore interface {
	CreateGoal(ctx context.Context, g goal.Goal) (goal.Goal, error)
	UpdateGoal(ctx context.Context, g goal.Goal) (goal.Goal, error)
	GetGoal(ctx context.Context, id string) (goal.Goal, error)
	ListGoals(ctx context.Context, userID string, filter GoalFilter) ([]goal.Goal, error)
	DeleteGoal(ctx context.Context, id string) error

	CreateGoalProgress(ctx context.Context, p goal.Progress) (goal.Progress, error)
	GetGoalProgress(ctx context.Context, id string) (goal.Progress, error)
	ListGoalProgress(ctx context.Context, userID string, filter ProgressFilter) ([]goal.Progress, error)
	DeleteGoalProgress(ctx context.Context, id string) error
}

// EntryFilter narrows a journal list. Search matches content and prompted
// response texts, case-insensitively.
type EntryFilter struct {
	Mood      string
	EntryType string
	DateFrom  string
	DateTo    string
	Search    string
}

// JournalStore persists journal entries.
type JournalStore interface {
	CreateEntry(ctx context.Context, e journal.Entry) (journal.Entry, error)
	UpdateEntry(ctx context.Context, e journal.Entry) (journal.Entry, error)
	GetEntry(ctx context.Context, id string) (journal.Entry, error)
	ListEntries(ctx context.Context, userID string, filter EntryFilter) ([]journal.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
}
