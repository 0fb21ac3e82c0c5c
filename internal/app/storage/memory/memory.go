// Package memory is an in-memory implementation of the storage interfaces.
// It is safe for concurrent use and is primarily intended for tests and local
// development runs.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/goal"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/habit"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/journal"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/user"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/storage"
)

// Store holds every entity in maps guarded by one RWMutex. IDs are sequential
// counters, which keeps test fixtures readable.
type Store struct {
	mu              sync.RWMutex
	nextID          int64
	users           map[string]user.User
	usersByUsername map[string]string
	habits          map[string]habit.Habit
	habitLogs       map[string]habit.Log
	goals           map[string]goal.Goal
	goalProgress    map[string]goal.Progress
	entries         map[string]journal.Entry
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.HabitStore = (*Store)(nil)
var _ storage.GoalStore = (*Store)(nil)
var _ storage.JournalStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:          1,
		users:           make(map[string]user.User),
		usersByUsername: make(map[string]string),
		habits:          make(map[string]habit.Habit),
		habitLogs:       make(map[string]habit.Log),
		goals:           make(map[string]goal.Goal),
		goalProgress:    make(map[string]goal.Progress),
		entries:         make(map[string]journal.Entry),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// notFound mirrors the postgres store's missing-row signal so the services
// translate both the same way.
func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, sql.ErrNoRows)
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usersByUsername[u.Username]; taken {
		return user.User{}, storage.ErrDuplicateUsername
	}
	if u.ID == "" {
		u.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	s.users[u.ID] = u
	s.usersByUsername[u.Username] = u.ID
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, notFound("user", id)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByUsername[username]
	if !ok {
		return user.User{}, notFound("user", username)
	}
	return s.users[id], nil
}

// HabitStore implementation ---------------------------------------------------

func (s *Store) CreateHabit(_ context.Context, h habit.Habit) (habit.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h.ID == "" {
		h.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	h.CreatedAt = now
	h.UpdatedAt = now

	s.habits[h.ID] = h
	return h, nil
}

func (s *Store) UpdateHabit(_ context.Context, h habit.Habit) (habit.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.habits[h.ID]
	if !ok {
		return habit.Habit{}, notFound("habit", h.ID)
	}
	h.UserID = original.UserID
	h.CreatedAt = original.CreatedAt
	h.UpdatedAt = time.Now().UTC()

	s.habits[h.ID] = h
	return h, nil
}

func (s *Store) GetHabit(_ context.Context, id string) (habit.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.habits[id]
	if !ok {
		return habit.Habit{}, notFound("habit", id)
	}
	return h, nil
}

func (s *Store) ListHabits(_ context.Context, userID string, filter storage.HabitFilter) ([]habit.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]habit.Habit, 0)
	for _, h := range s.habits {
		if h.UserID != userID {
			continue
		}
		if filter.Category != "" && h.Category != filter.Category {
			continue
		}
		if filter.Frequency != "" && h.Frequency != filter.Frequency {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(h.Name), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, h)
	}
	sortHabits(result, filter.Ordering)
	return result, nil
}

// DeleteHabit removes the habit and every log recorded against it.
func (s *Store) DeleteHabit(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habits[id]; !ok {
		return notFound("habit", id)
	}
	delete(s.habits, id)
	for logID, l := range s.habitLogs {
		if l.HabitID == id {
			delete(s.habitLogs, logID)
		}
	}
	return nil
}

func (s *Store) CreateHabitLog(_ context.Context, l habit.Log) (habit.Log, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habits[l.HabitID]; !ok {
		return habit.Log{}, notFound("habit", l.HabitID)
	}
	if l.ID == "" {
		l.ID = s.nextIDLocked()
	}
	l.CreatedAt = time.Now().UTC()

	s.habitLogs[l.ID] = l
	return l, nil
}

func (s *Store) GetHabitLog(_ context.Context, id string) (habit.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.habitLogs[id]
	if !ok {
		return habit.Log{}, notFound("habit log", id)
	}
	return l, nil
}

func (s *Store) ListHabitLogs(_ context.Context, userID string, filter storage.LogFilter) ([]habit.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]habit.Log, 0)
	for _, l := range s.habitLogs {
		if l.UserID != userID {
			continue
		}
		if filter.HabitID != "" && l.HabitID != filter.HabitID {
			continue
		}
		if !dateInRange(l.Date, filter.DateFrom, filter.DateTo) {
			continue
		}
		result = append(result, l)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *Store) DeleteHabitLog(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habitLogs[id]; !ok {
		return notFound("habit log", id)
	}
	delete(s.habitLogs, id)
	return nil
}

// GoalStore implementation ----------------------------------------------------

func (s *Store) CreateGoal(_ context.Context, g goal.Goal) (goal.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) UpdateGoal(_ context.Context, g goal.Goal) (goal.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.goals[g.ID]
	if !ok {
		return goal.Goal{}, notFound("goal", g.ID)
	}
	g.UserID = original.UserID
	g.CreatedAt = original.CreatedAt
	g.UpdatedAt = time.Now().UTC()

	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) GetGoal(_ context.Context, id string) (goal.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.goals[id]
	if !ok {
		return goal.Goal{}, notFound("goal", id)
	}
	return g, nil
}

func (s *Store) ListGoals(_ context.Context, userID string, filter storage.GoalFilter) ([]goal.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]goal.Goal, 0)
	for _, g := range s.goals {
		if g.UserID != userID {
			continue
		}
		if filter.Category != "" && g.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(g.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.ActiveOn != "" && g.EndDate != "" && g.EndDate < filter.ActiveOn {
			continue
		}
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteGoal removes the goal and its progress ledger.
func (s *Store) DeleteGoal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[id]; !ok {
		return notFound("goal", id)
	}
	delete(s.goals, id)
	for progressID, p := range s.goalProgress {
		if p.GoalID == id {
			delete(s.goalProgress, progressID)
		}
	}
	return nil
}

func (s *Store) CreateGoalProgress(_ context.Context, p goal.Progress) (goal.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[p.GoalID]; !ok {
		return goal.Progress{}, notFound("goal", p.GoalID)
	}
	if p.ID == "" {
		p.ID = s.nextIDLocked()
	}
	p.CreatedAt = time.Now().UTC()

	s.goalProgress[p.ID] = p
	return p, nil
}

func (s *Store) GetGoalProgress(_ context.Context, id string) (goal.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.goalProgress[id]
	if !ok {
		return goal.Progress{}, notFound("goal progress", id)
	}
	return p, nil
}

func (s *Store) ListGoalProgress(_ context.Context, userID string, filter storage.ProgressFilter) ([]goal.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]goal.Progress, 0)
	for _, p := range s.goalProgress {
		if p.UserID != userID {
			continue
		}
		if filter.GoalID != "" && p.GoalID != filter.GoalID {
			continue
		}
		if !dateInRange(p.Date, filter.DateFrom, filter.DateTo) {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *Store) DeleteGoalProgress(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goalProgress[id]; !ok {
		return notFound("goal progress", id)
	}
	delete(s.goalProgress, id)
	return nil
}

// JournalStore implementation ---------------------------------------------

func (s *Store) CreateEntry(_ context.Context, e journal.Entry) (journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	e.Responses = cloneResponses(e.Responses)

	s.entries[e.ID] = e
	return cloneEntry(e), nil
}

func (s *Store) UpdateEntry(_ context.Context, e journal.Entry) (journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.entries[e.ID]
	if !ok {
		return journal.Entry{}, notFound("journal entry", e.ID)
	}
	e.UserID = original.UserID
	e.CreatedAt = original.CreatedAt
	e.UpdatedAt = time.Now().UTC()
	e.Responses = cloneResponses(e.Responses)

	s.entries[e.ID] = e
	return cloneEntry(e), nil
}

func (s *Store) GetEntry(_ context.Context, id string) (journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return journal.Entry{}, notFound("journal entry", id)
	}
	return cloneEntry(e), nil
}

func (s *Store) ListEntries(_ context.Context, userID string, filter storage.EntryFilter) ([]journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]journal.Entry, 0)
	for _, e := range s.entries {
		if e.UserID != userID {
			continue
		}
		if filter.Mood != "" && e.Mood != filter.Mood {
			continue
		}
		if filter.EntryType != "" && e.EntryType != filter.EntryType {
			continue
		}
		if !dateInRange(e.Date, filter.DateFrom, filter.DateTo) {
			continue
		}
		if filter.Search != "" && !entryMatches(e, filter.Search) {
			continue
		}
		result = append(result, cloneEntry(e))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].Time > result[j].Time
	})
	return result, nil
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return notFound("journal entry", id)
	}
	delete(s.entries, id)
	return nil
}

// Helpers --------------------------------------------------------------------

// dateInRange compares YYYY-MM-DD strings lexically; the fixed-width format
// makes that equivalent to chronological order.
func dateInRange(date, from, to string) bool {
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

func entryMatches(e journal.Entry, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(e.Content), needle) {
		return true
	}
	for _, text := range e.Responses {
		if strings.Contains(strings.ToLower(text), needle) {
			return true
		}
	}
	return false
}

func sortHabits(habits []habit.Habit, ordering string) {
	switch ordering {
	case "name":
		sort.Slice(habits, func(i, j int) bool { return habits[i].Name < habits[j].Name })
	case "-name":
		sort.Slice(habits, func(i, j int) bool { return habits[i].Name > habits[j].Name })
	case "created_at":
		sort.Slice(habits, func(i, j int) bool { return habits[i].CreatedAt.Before(habits[j].CreatedAt) })
	default: // "-created_at"
		sort.Slice(habits, func(i, j int) bool { return habits[i].CreatedAt.After(habits[j].CreatedAt) })
	}
}

func cloneResponses(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func cloneEntry(e journal.Entry) journal.Entry {
	e.Responses = cloneResponses(e.Responses)
	return e
}
