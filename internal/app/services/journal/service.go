// Package journal manages journal entries and the derived writing
// statistics.
package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/journal"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/storage"
	apperrors "github.com/jakehorton1228-droid/habit-tracker/internal/errors"
	"github.com/jakehorton1228-droid/habit-tracker/internal/streak"
	"github.com/jakehorton1228-droid/habit-tracker/pkg/logger"
)

const timeLayout = "15:04:05"

// Service manages journal entries scoped to their owner.
type Service struct {
	store storage.JournalStore
	log   *logger.Logger
}

// New constructs a journal service.
func New(store storage.JournalStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("journal")
	}
	return &Service{store: store, log: log}
}

// Params are the caller-settable entry fields.
type Params struct {
	Date      string            `json:"date"`
	Time      string            `json:"time"`
	EntryType string            `json:"entry_type"`
	Mood      string            `json:"mood"`
	Content   string            `json:"content"`
	Responses map[string]string `json:"responses"`
}

func validate(p Params) error {
	v := apperrors.NewValidation()
	if !journal.ValidType(p.EntryType) {
		v.Add("entry_type", "entry_type must be freeform or prompted")
	}
	if !journal.ValidMood(p.Mood) {
		v.Add("mood", "mood must be one of great, good, okay, low, rough")
	}
	switch p.EntryType {
	case journal.TypeFreeform:
		if strings.TrimSpace(p.Content) == "" {
			v.Add("content", "content is required for freeform entries")
		}
	case journal.TypePrompted:
		if len(p.Responses) == 0 {
			v.Add("responses", "responses are required for prompted entries")
		}
	}
	if p.Date != "" {
		if _, err := time.Parse(streak.DateLayout, p.Date); err != nil {
			v.Add("date", "date must be YYYY-MM-DD")
		}
	}
	if p.Time != "" {
		if _, err := time.Parse(timeLayout, p.Time); err != nil {
			v.Add("time", "time must be HH:MM:SS")
		}
	}
	return v.OrNil()
}

// Create adds an entry. Date defaults to today and time to the current
// wall clock.
func (s *Service) Create(ctx context.Context, userID string, p Params) (journal.Entry, error) {
	if err := validate(p); err != nil {
		return journal.Entry{}, err
	}
	now := time.Now()
	if p.Date == "" {
		p.Date = now.Format(streak.DateLayout)
	}
	if p.Time == "" {
		p.Time = now.Format(timeLayout)
	}

	created, err := s.store.CreateEntry(ctx, journal.Entry{
		UserID:    userID,
		Date:      p.Date,
		Time:      p.Time,
		EntryType: p.EntryType,
		Mood:      p.Mood,
		Content:   strings.TrimSpace(p.Content),
		Responses: p.Responses,
	})
	if err != nil {
		return journal.Entry{}, fmt.Errorf("create journal entry: %w", err)
	}
	s.log.WithField("entry_id", created.ID).WithField("user_id", userID).Info("journal entry created")
	return created, nil
}

// List returns the caller's entries, newest first.
func (s *Service) List(ctx context.Context, userID string, filter storage.EntryFilter) ([]journal.Entry, error) {
	return s.store.ListEntries(ctx, userID, filter)
}

// Get returns one entry, owner-scoped.
func (s *Service) Get(ctx context.Context, userID, id string) (journal.Entry, error) {
	e, err := s.store.GetEntry(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return journal.Entry{}, apperrors.NotFound("journal entry")
		}
		return journal.Entry{}, err
	}
	if e.UserID != userID {
		return journal.Entry{}, apperrors.NotFound("journal entry")
	}
	return e, nil
}

// Update overwrites an entry. Switching the entry type re-applies the
// content/responses requirement.
func (s *Service) Update(ctx context.Context, userID, id string, p Params) (journal.Entry, error) {
	e, err := s.Get(ctx, userID, id)
	if err != nil {
		return journal.Entry{}, err
	}
	if p.Date == "" {
		p.Date = e.Date
	}
	if p.Time == "" {
		p.Time = e.Time
	}
	if err := validate(p); err != nil {
		return journal.Entry{}, err
	}

	e.Date = p.Date
	e.Time = p.Time
	e.EntryType = p.EntryType
	e.Mood = p.Mood
	e.Content = strings.TrimSpace(p.Content)
	e.Responses = p.Responses
	if e.EntryType == journal.TypeFreeform {
		e.Responses = nil
	} else {
		e.Content = ""
	}

	updated, err := s.store.UpdateEntry(ctx, e)
	if err != nil {
		return journal.Entry{}, fmt.Errorf("update journal entry: %w", err)
	}
	s.log.WithField("entry_id", id).Info("journal entry updated")
	return updated, nil
}

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteEntry(ctx, id); err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	s.log.WithField("entry_id", id).Info("journal entry deleted")
	return nil
}

// Stats is the journaling dashboard payload.
type Stats struct {
	TotalEntries    int            `json:"total_entries"`
	EntriesThisWeek int            `json:"entries_this_week"`
	MoodCounts      map[string]int `json:"mood_counts"`
	TypeCounts      map[string]int `json:"type_counts"`
	CurrentStreak   int            `json:"current_streak"`
	BestStreak      int            `json:"best_streak"`
}

// Stats recomputes the figures from the raw entries. The writing streak uses
// the same one-day grace as habit streaks.
func (s *Service) Stats(ctx context.Context, userID, today string, weekStart time.Weekday) (Stats, error) {
	entries, err := s.store.ListEntries(ctx, userID, storage.EntryFilter{})
	if err != nil {
		return Stats{}, fmt.Errorf("list journal entries: %w", err)
	}

	stats := Stats{
		TotalEntries: len(entries),
		MoodCounts:   make(map[string]int),
		TypeCounts:   make(map[string]int),
	}

	weekFrom, err := weekStartOf(today, weekStart)
	if err != nil {
		return Stats{}, apperrors.Validationf("today", "today must be YYYY-MM-DD")
	}

	dates := make([]string, 0, len(entries))
	for _, e := range entries {
		dates = append(dates, e.Date)
		stats.MoodCounts[e.Mood]++
		stats.TypeCounts[e.EntryType]++
		if e.Date >= weekFrom && e.Date <= today {
			stats.EntriesThisWeek++
		}
	}

	set := streak.NewSet(dates)
	stats.CurrentStreak = streak.Current(set, today)
	stats.BestStreak = streak.Best(set)
	return stats, nil
}

// weekStartOf returns the date of the viewer's week-start day on or before
// today.
func weekStartOf(today string, weekStart time.Weekday) (string, error) {
	t, err := time.Parse(streak.DateLayout, today)
	if err != nil {
		return "", err
	}
	back := (int(t.Weekday()) - int(weekStart) + 7) % 7
	return t.AddDate(0, 0, -back).Format(streak.DateLayout), nil
}
