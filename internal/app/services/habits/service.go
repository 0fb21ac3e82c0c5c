// Package habits manages habits, their completion logs, and the derived
// streak statistics.
package habits

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/habit"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/storage"
	apperrors "github.com/jakehorton1228-droid/habit-tracker/internal/errors"
	"github.com/jakehorton1228-droid/habit-tracker/internal/streak"
	"github.com/jakehorton1228-droid/habit-tracker/pkg/logger"
)

// Service manages habits and logs scoped to their owner.
type Service struct {
	store storage.HabitStore
	log   *logger.Logger
}

// New constructs a habit service.
func New(store storage.HabitStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("habits")
	}
	return &Service{store: store, log: log}
}

// Create adds a habit. Name is required; category and frequency default.
func (s *Service) Create(ctx context.Context, userID, name, category, frequency string) (habit.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return habit.Habit{}, apperrors.Validationf("name", "name is required")
	}
	if category = strings.TrimSpace(category); category == "" {
		category = habit.DefaultCategory
	}
	if frequency = strings.TrimSpace(frequency); frequency == "" {
		frequency = habit.DefaultFrequency
	}

	created, err := s.store.CreateHabit(ctx, habit.Habit{
		UserID:    userID,
		Name:      name,
		Category:  category,
		Frequency: frequency,
	})
	if err != nil {
		return habit.Habit{}, fmt.Errorf("create habit: %w", err)
	}
	s.log.WithField("habit_id", created.ID).WithField("user_id", userID).Info("habit created")
	return created, nil
}

// List returns the caller's habits, filtered and ordered.
func (s *Service) List(ctx context.Context, userID string, filter storage.HabitFilter) ([]habit.Habit, error) {
	return s.store.ListHabits(ctx, userID, filter)
}

// Get returns one habit. Another user's habit is indistinguishable from a
// missing one.
func (s *Service) Get(ctx context.Context, userID, id string) (habit.Habit, error) {
	h, err := s.store.GetHabit(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return habit.Habit{}, apperrors.NotFound("habit")
		}
		return habit.Habit{}, err
	}
	if h.UserID != userID {
		return habit.Habit{}, apperrors.NotFound("habit")
	}
	return h, nil
}

// Update renames or recategorizes a habit.
func (s *Service) Update(ctx context.Context, userID, id, name, category, frequency string) (habit.Habit, error) {
	h, err := s.Get(ctx, userID, id)
	if err != nil {
		return habit.Habit{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return habit.Habit{}, apperrors.Validationf("name", "name is required")
	}
	h.Name = name
	if category = strings.TrimSpace(category); category != "" {
		h.Category = category
	}
	if frequency = strings.TrimSpace(frequency); frequency != "" {
		h.Frequency = frequency
	}

	updated, err := s.store.UpdateHabit(ctx, h)
	if err != nil {
		return habit.Habit{}, fmt.Errorf("update habit: %w", err)
	}
	s.log.WithField("habit_id", id).Info("habit updated")
	return updated, nil
}

// Delete removes a habit and, through the store, its logs.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteHabit(ctx, id); err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	s.log.WithField("habit_id", id).Info("habit deleted")
	return nil
}

// LogCompletion marks a habit done on a date. The habit must belong to the
// caller; logging against someone else's habit is forbidden rather than
// hidden, since the caller proved they know the id exists. Date defaults to
// today. Duplicate logs for the same day are accepted; the streak engine
// deduplicates on read.
func (s *Service) LogCompletion(ctx context.Context, userID, habitID, date, note string) (habit.Log, error) {
	h, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return habit.Log{}, apperrors.NotFound("habit")
		}
		return habit.Log{}, err
	}
	if h.UserID != userID {
		return habit.Log{}, apperrors.ErrForbidden
	}

	if date = strings.TrimSpace(date); date == "" {
		date = time.Now().Format(streak.DateLayout)
	}
	if _, err := time.Parse(streak.DateLayout, date); err != nil {
		return habit.Log{}, apperrors.Validationf("date", "date must be YYYY-MM-DD")
	}

	created, err := s.store.CreateHabitLog(ctx, habit.Log{
		HabitID: habitID,
		UserID:  userID,
		Date:    date,
		Note:    strings.TrimSpace(note),
	})
	if err != nil {
		return habit.Log{}, fmt.Errorf("create habit log: %w", err)
	}
	s.log.WithField("habit_id", habitID).WithField("date", date).Info("habit completion logged")
	return created, nil
}

// ListLogs returns the caller's logs, optionally narrowed by habit and date
// range.
func (s *Service) ListLogs(ctx context.Context, userID string, filter storage.LogFilter) ([]habit.Log, error) {
	return s.store.ListHabitLogs(ctx, userID, filter)
}

// GetLog returns one log, owner-scoped.
func (s *Service) GetLog(ctx context.Context, userID, logID string) (habit.Log, error) {
	l, err := s.store.GetHabitLog(ctx, logID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return habit.Log{}, apperrors.NotFound("habit log")
		}
		return habit.Log{}, err
	}
	if l.UserID != userID {
		return habit.Log{}, apperrors.NotFound("habit log")
	}
	return l, nil
}

// DeleteLog removes a completion; this is the undo path for marking a habit
// done.
func (s *Service) DeleteLog(ctx context.Context, userID, logID string) error {
	if _, err := s.GetLog(ctx, userID, logID); err != nil {
		return err
	}
	if err := s.store.DeleteHabitLog(ctx, logID); err != nil {
		return fmt.Errorf("delete habit log: %w", err)
	}
	s.log.WithField("log_id", logID).Info("habit completion removed")
	return nil
}

// HabitStats carries the derived figures for one habit.
type HabitStats struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	DoneToday      bool          `json:"done_today"`
	CurrentStreak  int           `json:"current_streak"`
	BestStreak     int           `json:"best_streak"`
	CompletionRate int           `json:"completion_rate"`
	Heatmap        []streak.Cell `json:"heatmap"`
}

// Stats is the dashboard payload: per-habit figures plus totals and the
// cross-habit weekly trend.
type Stats struct {
	TotalHabits       int                `json:"total_habits"`
	CompletionsToday  int                `json:"completions_today"`
	HeatmapLeadingPad int                `json:"heatmap_leading_pad"`
	Habits            []HabitStats       `json:"habits"`
	WeeklySeries      []streak.WeekPoint `json:"weekly_series"`
}

// Stats recomputes every derived figure from the raw logs. Nothing is stored;
// the numbers cannot drift from the log list.
func (s *Service) Stats(ctx context.Context, userID, today string, weekStart time.Weekday) (Stats, error) {
	habits, err := s.store.ListHabits(ctx, userID, storage.HabitFilter{Ordering: "created_at"})
	if err != nil {
		return Stats{}, fmt.Errorf("list habits: %w", err)
	}
	logs, err := s.store.ListHabitLogs(ctx, userID, storage.LogFilter{})
	if err != nil {
		return Stats{}, fmt.Errorf("list habit logs: %w", err)
	}

	datesByHabit := make(map[string][]string, len(habits))
	for _, l := range logs {
		datesByHabit[l.HabitID] = append(datesByHabit[l.HabitID], l.Date)
	}

	stats := Stats{
		TotalHabits:       len(habits),
		HeatmapLeadingPad: streak.LeadingPad(today, weekStart),
		Habits:            make([]HabitStats, 0, len(habits)),
	}
	sets := make([]streak.Set, 0, len(habits))
	for _, h := range habits {
		set := streak.NewSet(datesByHabit[h.ID])
		sets = append(sets, set)
		if streak.DoneOn(set, today) {
			stats.CompletionsToday++
		}
		stats.Habits = append(stats.Habits, HabitStats{
			ID:             h.ID,
			Name:           h.Name,
			DoneToday:      streak.DoneOn(set, today),
			CurrentStreak:  streak.Current(set, today),
			BestStreak:     streak.Best(set),
			CompletionRate: streak.CompletionRate(set, today, streak.HeatmapDays),
			Heatmap:        streak.Heatmap(set, today),
		})
	}
	stats.WeeklySeries = streak.WeeklySeries(sets, today, weekStart)
	return stats, nil
}
